package model

import (
	"bytes"
	"encoding/json"
)

// SurvivalLevel is the coarse prognosis bucket derived from a score
type SurvivalLevel string

const (
	SurvivalHigh   SurvivalLevel = "high chance"
	SurvivalMedium SurvivalLevel = "medium chance"
	SurvivalLow    SurvivalLevel = "low chance"
)

// LevelForScore buckets a score. Lower bounds are inclusive.
func LevelForScore(score float64) SurvivalLevel {
	switch {
	case score >= 70:
		return SurvivalHigh
	case score >= 40:
		return SurvivalMedium
	default:
		return SurvivalLow
	}
}

// PredictionSource identifies which predictor produced a result
type PredictionSource string

const (
	SourceRuleBased PredictionSource = "rule_based"
	SourceLearned   PredictionSource = "learned"
)

// ClinicalProfile is the canonical, strictly typed clinical input
type ClinicalProfile struct {
	Age                  float64 `json:"age"`
	Sex                  string  `json:"sex"`
	DementiaType         string  `json:"dementia_type"`
	MMSEScore            float64 `json:"mmse_score"`
	FASTStage            float64 `json:"fast_stage"`
	ComorbidityCount     int     `json:"comorbidities"`
	NeurologicalSeverity float64 `json:"neurological"`
	RespiratorySeverity  float64 `json:"respiratory"`
}

// FeatureColumns is the column order the learned model was trained on
var FeatureColumns = []string{
	"age",
	"sex",
	"dementia_type",
	"mmse_score",
	"fast_stage",
	"comorbidities",
	"neurological",
	"respiratory",
}

// FeatureRow is a single learned-model input row, fields in FeatureColumns order
type FeatureRow struct {
	Age           float64
	Sex           string
	DementiaType  string
	MMSEScore     float64
	FASTStage     float64
	Comorbidities float64
	Neurological  float64
	Respiratory   float64
}

// FeatureRowFromProfile assembles a learned-model row. Empty categorical values
// map to the catch-all categories used at training time.
func FeatureRowFromProfile(p ClinicalProfile) FeatureRow {
	sex := p.Sex
	if sex == "" {
		sex = "unknown"
	}
	dementiaType := p.DementiaType
	if dementiaType == "" {
		dementiaType = "other"
	}
	return FeatureRow{
		Age:           p.Age,
		Sex:           sex,
		DementiaType:  dementiaType,
		MMSEScore:     p.MMSEScore,
		FASTStage:     p.FASTStage,
		Comorbidities: float64(p.ComorbidityCount),
		Neurological:  p.NeurologicalSeverity,
		Respiratory:   p.RespiratorySeverity,
	}
}

// FeatureVectorSize is the width of FeatureRow.Vector
const FeatureVectorSize = 12

// Vector encodes the row as float32 with one-hot categoricals:
// age, sex (female, male, unknown), dementia type (alzheimers, other, vascular),
// mmse, fast, comorbidities, neurological, respiratory.
// Unrecognized categories fall into unknown/other.
func (f FeatureRow) Vector() []float32 {
	v := make([]float32, 0, FeatureVectorSize)
	v = append(v, float32(f.Age))

	switch f.Sex {
	case "female":
		v = append(v, 1, 0, 0)
	case "male":
		v = append(v, 0, 1, 0)
	default:
		v = append(v, 0, 0, 1)
	}

	switch f.DementiaType {
	case "alzheimers":
		v = append(v, 1, 0, 0)
	case "vascular":
		v = append(v, 0, 0, 1)
	default:
		v = append(v, 0, 1, 0)
	}

	return append(v,
		float32(f.MMSEScore),
		float32(f.FASTStage),
		float32(f.Comorbidities),
		float32(f.Neurological),
		float32(f.Respiratory),
	)
}

// Recommendation is a single titled care-guidance entry
type Recommendation struct {
	Title string
	Text  string
}

// Recommendations is an ordered title->text mapping.
// It marshals as a JSON object whose keys keep slice order.
type Recommendations []Recommendation

// MarshalJSON implements json.Marshaler
func (r Recommendations) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, rec := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(rec.Title)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(rec.Text)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the text for a title
func (r Recommendations) Get(title string) (string, bool) {
	for _, rec := range r {
		if rec.Title == title {
			return rec.Text, true
		}
	}
	return "", false
}

// PredictionResult represents a survival prediction response
type PredictionResult struct {
	SurvivalLevel   SurvivalLevel    `json:"survival_level"`
	Score           float64          `json:"score"`
	Recommendations Recommendations  `json:"recommendations"`
	Source          PredictionSource `json:"-"`
}
