package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"muuguzi/internal/model"
)

// Profile defaults used when a field is absent or cannot be coerced
const (
	DefaultAge                  = 0.0
	DefaultMMSEScore            = 24.0
	DefaultFASTStage            = 1.0
	DefaultComorbidityCount     = 0
	DefaultSymptomSeverity      = 1.0
	maxSymptomSeverityFromItems = 3.0
	severityPerListedSymptom    = 0.5
	maxComorbidityCount         = math.MaxInt32
)

// Payload keys, including legacy aliases still sent by older clients
const (
	keyAge                  = "age"
	keySex                  = "sex"
	keyDementiaType         = "dementia_type"
	keyMMSEScore            = "mmse_score"
	keyLegacySeverity       = "severity"
	keyFASTStage            = "fast_stage"
	keyLegacyFunctional     = "functional_decline"
	keyComorbidities        = "comorbidities"
	keyNeurologicalSymptoms = "neurological_symptoms"
	keyRespiratoryIssues    = "respiratory_issues"
)

type measureKind int

const (
	measureAbsent measureKind = iota
	measureScalar
	measureList
)

// Measure is a field that may arrive either as a number or as a list of named items
type Measure struct {
	kind   measureKind
	scalar float64
	items  []string
}

// ScalarMeasure builds a scalar measure
func ScalarMeasure(v float64) Measure {
	return Measure{kind: measureScalar, scalar: v}
}

// ListMeasure builds a list measure
func ListMeasure(items ...string) Measure {
	return Measure{kind: measureList, items: items}
}

// measureOf classifies a raw payload value. Values that are neither a list nor
// coercible to a number resolve to an absent measure.
func measureOf(raw any) Measure {
	switch v := raw.(type) {
	case []any:
		items := make([]string, len(v))
		for i, item := range v {
			items[i] = fmt.Sprint(item)
		}
		return ListMeasure(items...)
	case []string:
		return ListMeasure(v...)
	}
	if f, ok := toFloat(raw); ok {
		return ScalarMeasure(f)
	}
	return Measure{}
}

// Count resolves the measure as a count: list length or truncated scalar.
// Unlike a plain int(v) truncation, negative scalars count as 0 and huge ones
// cap at MaxInt32, so a negative count never adds points back.
func (m Measure) Count(def int) int {
	switch m.kind {
	case measureList:
		return len(m.items)
	case measureScalar:
		if m.scalar <= 0 {
			return 0
		}
		if m.scalar >= maxComorbidityCount {
			return maxComorbidityCount
		}
		return int(m.scalar)
	default:
		return def
	}
}

// Severity resolves the measure on the 1-3 scale. Scalars pass through unclamped.
func (m Measure) Severity(def float64) float64 {
	switch m.kind {
	case measureList:
		return math.Min(maxSymptomSeverityFromItems, 1.0+float64(len(m.items))*severityPerListedSymptom)
	case measureScalar:
		return m.scalar
	default:
		return def
	}
}

// NormalizeProfile maps an open payload to a ClinicalProfile. It never fails:
// every malformed field falls back to its default independently.
func NormalizeProfile(payload map[string]any) model.ClinicalProfile {
	if payload == nil {
		payload = map[string]any{}
	}

	profile := model.ClinicalProfile{
		Age:                  floatField(payload, DefaultAge, keyAge),
		Sex:                  strings.ToLower(stringField(payload, keySex)),
		DementiaType:         strings.ToLower(stringField(payload, keyDementiaType)),
		MMSEScore:            floatField(payload, DefaultMMSEScore, keyMMSEScore, keyLegacySeverity),
		FASTStage:            floatField(payload, DefaultFASTStage, keyFASTStage, keyLegacyFunctional),
		ComorbidityCount:     measureField(payload, keyComorbidities).Count(DefaultComorbidityCount),
		NeurologicalSeverity: measureField(payload, keyNeurologicalSymptoms).Severity(DefaultSymptomSeverity),
		RespiratorySeverity:  measureField(payload, keyRespiratoryIssues).Severity(DefaultSymptomSeverity),
	}
	if profile.Sex == "" {
		profile.Sex = "unknown"
	}
	return profile
}

// lookup returns the value of the first present key. Presence, not truthiness,
// decides: a preferred key holding null shadows its legacy alias.
func lookup(payload map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := payload[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func floatField(payload map[string]any, def float64, keys ...string) float64 {
	raw, ok := lookup(payload, keys...)
	if !ok {
		return def
	}
	if f, ok := toFloat(raw); ok {
		return f
	}
	return def
}

func stringField(payload map[string]any, key string) string {
	raw, ok := payload[key]
	if !ok || raw == nil {
		return ""
	}
	if s, ok := raw.(string); ok {
		return s
	}
	return fmt.Sprint(raw)
}

func measureField(payload map[string]any, key string) Measure {
	raw, ok := payload[key]
	if !ok {
		return Measure{}
	}
	return measureOf(raw)
}

// toFloat coerces JSON-ish scalars. NaN, infinities and numbers outside float64
// range count as unconvertible.
func toFloat(raw any) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case int32:
		f = float64(v)
	case bool:
		if v {
			f = 1
		}
	case json.Number:
		parsed, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
