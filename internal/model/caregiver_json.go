package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Caregiver JSON keys, in the order they are written
const (
	fieldID              = "id"
	fieldName            = "name"
	fieldQualifications  = "qualifications"
	fieldFocusConditions = "focus_conditions"
	fieldLocation        = "location"
	fieldGender          = "gender"
	fieldAvailability    = "availability"
	fieldIsAvailable     = "is_available"
)

var caregiverFieldOrder = []string{
	fieldID,
	fieldName,
	fieldQualifications,
	fieldFocusConditions,
	fieldLocation,
	fieldGender,
	fieldAvailability,
	fieldIsAvailable,
}

// UnmarshalJSON decodes a stored caregiver record. It never rejects a record:
// every field is first decoded strictly, and a value that does not fit (a
// string id, "is_available": "yes", null) is coerced for matching while the
// stored value is kept in Extra. Entries that are not objects are kept whole.
func (c *Caregiver) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)

	var fields map[string]json.RawMessage
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &fields) != nil {
		*c = Caregiver{raw: append(json.RawMessage(nil), trimmed...)}
		return nil
	}

	*c = Caregiver{}
	for key, value := range fields {
		exact := false
		switch key {
		case fieldID:
			c.ID, exact = coerceID(value)
		case fieldName:
			c.Name, exact = coerceString(value)
		case fieldLocation:
			c.Location, exact = coerceString(value)
		case fieldGender:
			c.Gender, exact = coerceString(value)
		case fieldQualifications:
			c.Qualifications, exact = coerceList(value)
		case fieldFocusConditions:
			c.FocusConditions, exact = coerceList(value)
		case fieldAvailability:
			c.Availability, exact = coerceList(value)
		case fieldIsAvailable:
			var available bool
			available, exact = coerceFlag(value)
			c.IsAvailable = &available
		}
		if !exact {
			c.keep(key, value)
		}
	}
	return nil
}

// MarshalJSON writes the known fields in a fixed order followed by Extra
func (c Caregiver) MarshalJSON() ([]byte, error) {
	if c.raw != nil {
		return c.raw, nil
	}
	var buf bytes.Buffer
	if err := c.writeFields(&buf); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON writes the caregiver record plus its match score and reasons
func (m CaregiverMatch) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := m.Caregiver.writeFields(&buf); err != nil {
		return nil, err
	}
	reasons := m.MatchedReasons
	if reasons == nil {
		reasons = []string{}
	}
	if err := writeMember(&buf, "match_score", m.Score); err != nil {
		return nil, err
	}
	if err := writeMember(&buf, "matched_reasons", reasons); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (m *CaregiverMatch) UnmarshalJSON(data []byte) error {
	var cg Caregiver
	if err := cg.UnmarshalJSON(data); err != nil {
		return err
	}

	*m = CaregiverMatch{}
	if raw, ok := cg.Extra["match_score"]; ok {
		if err := json.Unmarshal(raw, &m.Score); err != nil {
			return err
		}
		delete(cg.Extra, "match_score")
	}
	if raw, ok := cg.Extra["matched_reasons"]; ok {
		if err := json.Unmarshal(raw, &m.MatchedReasons); err != nil {
			return err
		}
		delete(cg.Extra, "matched_reasons")
	}
	if len(cg.Extra) == 0 {
		cg.Extra = nil
	}
	m.Caregiver = cg
	return nil
}

// writeFields writes an open JSON object holding every caregiver field.
// The caller closes it.
func (c Caregiver) writeFields(buf *bytes.Buffer) error {
	buf.WriteByte('{')

	values := map[string]any{
		fieldID:              c.ID,
		fieldName:            c.Name,
		fieldQualifications:  c.Qualifications,
		fieldFocusConditions: c.FocusConditions,
		fieldLocation:        c.Location,
		fieldGender:          c.Gender,
		fieldAvailability:    c.Availability,
	}
	if c.IsAvailable != nil {
		values[fieldIsAvailable] = *c.IsAvailable
	}

	for _, key := range caregiverFieldOrder {
		if raw, ok := c.Extra[key]; ok {
			if err := writeMember(buf, key, raw); err != nil {
				return err
			}
			continue
		}
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := writeMember(buf, key, value); err != nil {
			return err
		}
	}

	extra := make([]string, 0, len(c.Extra))
	for key := range c.Extra {
		if _, known := values[key]; !known && key != fieldIsAvailable {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		if err := writeMember(buf, key, c.Extra[key]); err != nil {
			return err
		}
	}
	return nil
}

func writeMember(buf *bytes.Buffer, key string, value any) error {
	k, err := marshalUnescaped(key)
	if err != nil {
		return err
	}
	v, err := marshalUnescaped(value)
	if err != nil {
		return err
	}
	if buf.Len() > 1 {
		buf.WriteByte(',')
	}
	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)
	return nil
}

// marshalUnescaped leaves <, > and & as is; callers that want HTML escaping
// get it when the outer encoder compacts the result.
func marshalUnescaped(v any) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(b.Bytes(), "\n"), nil
}

func (c *Caregiver) keep(key string, value json.RawMessage) {
	if c.Extra == nil {
		c.Extra = make(map[string]json.RawMessage)
	}
	c.Extra[key] = append(json.RawMessage(nil), value...)
}

// isNull reports a JSON null. Scalar fields keep a stored null in Extra so it
// round-trips as null.
func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func coerceID(raw json.RawMessage) (int, bool) {
	var id int
	if !isNull(raw) && json.Unmarshal(raw, &id) == nil {
		return id, true
	}

	v, err := decodeAny(raw)
	if err != nil {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case json.Number:
		f, err = strconv.ParseFloat(t.String(), 64)
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	case bool:
		if t {
			f = 1
		}
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(math.Max(math.MinInt32, math.Min(math.MaxInt32, f))), false
}

func coerceString(raw json.RawMessage) (string, bool) {
	var s string
	if !isNull(raw) && json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	v, err := decodeAny(raw)
	if err != nil || v == nil {
		return "", false
	}
	return scalarString(v), false
}

func coerceList(raw json.RawMessage) (StringList, bool) {
	// a nil list writes back as null
	if isNull(raw) {
		return nil, true
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		if list == nil {
			list = []string{}
		}
		return StringList(list), true
	}
	var lenient StringList
	if err := lenient.UnmarshalJSON(raw); err != nil {
		return nil, false
	}
	return lenient, false
}

// coerceFlag applies truthiness: null, false, 0, "" and empty lists or objects
// are false, anything else is true.
func coerceFlag(raw json.RawMessage) (bool, bool) {
	var b bool
	if !isNull(raw) && json.Unmarshal(raw, &b) == nil {
		return b, true
	}
	v, err := decodeAny(raw)
	if err != nil {
		return false, false
	}
	switch t := v.(type) {
	case nil:
		return false, false
	case json.Number:
		f, err := strconv.ParseFloat(t.String(), 64)
		return err != nil || f != 0, false
	case string:
		return t != "", false
	case []any:
		return len(t) > 0, false
	case map[string]any:
		return len(t) > 0, false
	default:
		return true, false
	}
}

// decodeAny decodes a single JSON value keeping numbers as json.Number, so
// literals outside float64 range still decode.
func decodeAny(data []byte) (any, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}
	return v, nil
}
