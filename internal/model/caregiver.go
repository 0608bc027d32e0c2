package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Caregiver represents a caregiver profile.
// Stored records are decoded leniently (see caregiver_json.go): nothing a record
// holds is lost when it is read and written back.
type Caregiver struct {
	ID              int        `json:"id" db:"id"`
	Name            string     `json:"name" db:"name"`
	Qualifications  StringList `json:"qualifications" db:"qualifications"`
	FocusConditions StringList `json:"focus_conditions" db:"focus_conditions"`
	Location        string     `json:"location" db:"location"`
	Gender          string     `json:"gender" db:"gender"`
	Availability    StringList `json:"availability" db:"availability"`
	IsAvailable     *bool      `json:"is_available,omitempty" db:"is_available"`

	// Extra holds fields this service does not interpret, and known fields whose
	// stored value had to be coerced. Both are written back verbatim.
	Extra map[string]json.RawMessage `json:"-" db:"-"`

	// raw is set for stored entries that are not JSON objects
	raw json.RawMessage
}

// Available reports the availability flag, treating an absent flag as available
func (c Caregiver) Available() bool {
	if c.IsAvailable == nil {
		return true
	}
	return *c.IsAvailable
}

// Opaque reports whether the stored entry was not a JSON object. Opaque entries
// are kept and counted but never matched.
func (c Caregiver) Opaque() bool {
	return c.raw != nil
}

// CaregiverMatch is a caregiver with the score it earned against a match request
type CaregiverMatch struct {
	Caregiver
	Score          float64  `json:"match_score"`
	MatchedReasons []string `json:"matched_reasons"`
}

// StringList is a list of strings that also accepts a single scalar on decode.
// Stored caregiver files are hand-edited, so "availability": "night" is as valid
// as "availability": ["night"].
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (s *StringList) UnmarshalJSON(data []byte) error {
	decoded, err := decodeAny(data)
	if err != nil {
		return err
	}

	switch v := decoded.(type) {
	case nil:
		*s = nil
	case []any:
		out := make(StringList, 0, len(v))
		for _, item := range v {
			out = append(out, scalarString(item))
		}
		*s = out
	default:
		*s = StringList{scalarString(v)}
	}
	return nil
}

// Lower returns a lower-cased copy of the list
func (s StringList) Lower() []string {
	out := make([]string, len(s))
	for i, v := range s {
		out[i] = strings.ToLower(v)
	}
	return out
}

// Value implements driver.Valuer interface
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (s *StringList) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return s.UnmarshalJSON(v)
	case string:
		return s.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%v", t)
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
