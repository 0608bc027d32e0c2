package service

import (
	"math"
	"strconv"

	"muuguzi/internal/model"
)

// Scoring constants
const (
	baseSurvivalScore = 85.0
	minSurvivalScore  = 0.0
	maxSurvivalScore  = 100.0

	ageThresholdSenior = 65.0
	ageThresholdElder  = 80.0
	ageRateSenior      = 0.4
	ageRateElder       = 0.8

	penaltyAlzheimers    = 10.0
	penaltyVascular      = 15.0
	penaltyOtherDementia = 12.0

	fastRate       = 3.5
	fastPenaltyCap = 20.0

	comorbidityRate  = 3.0
	neurologicalRate = 7.0
	respiratoryRate  = 9.0
)

// Penalties holds the points subtracted from the base score by each rule
type Penalties struct {
	Age          float64 `json:"age"`
	DementiaType float64 `json:"dementia_type"`
	Cognitive    float64 `json:"cognitive"`
	Functional   float64 `json:"functional"`
	Comorbidity  float64 `json:"comorbidity"`
	Neurological float64 `json:"neurological"`
	Respiratory  float64 `json:"respiratory"`
}

// Total sums all penalties
func (p Penalties) Total() float64 {
	return p.Age + p.DementiaType + p.Cognitive + p.Functional + p.Comorbidity + p.Neurological + p.Respiratory
}

// RuleScorer is the deterministic heuristic survival model
type RuleScorer struct{}

// NewRuleScorer creates a new rule-based scorer
func NewRuleScorer() *RuleScorer {
	return &RuleScorer{}
}

// Breakdown computes the per-rule penalties for a profile. Products are wrapped
// in float64 conversions so the compiler cannot fuse them into later subtractions.
func (s *RuleScorer) Breakdown(p model.ClinicalProfile) Penalties {
	return Penalties{
		Age:          agePenalty(p.Age),
		DementiaType: dementiaTypePenalty(p.DementiaType),
		Cognitive:    cognitivePenalty(p.MMSEScore),
		Functional:   clamp(float64((p.FASTStage-1.0)*fastRate), 0, fastPenaltyCap),
		Comorbidity:  float64(float64(p.ComorbidityCount) * comorbidityRate),
		Neurological: float64((p.NeurologicalSeverity - 1.0) * neurologicalRate),
		Respiratory:  float64((p.RespiratorySeverity - 1.0) * respiratoryRate),
	}
}

// Score returns the survival score (0-100, one decimal) and its level.
// Penalties are subtracted one at a time, in rule order, so the floating point
// result is reproducible across runs and implementations.
func (s *RuleScorer) Score(p model.ClinicalProfile) (float64, model.SurvivalLevel) {
	pen := s.Breakdown(p)

	score := baseSurvivalScore
	score -= pen.Age
	score -= pen.DementiaType
	score -= pen.Cognitive
	score -= pen.Functional
	score -= pen.Comorbidity
	score -= pen.Neurological
	score -= pen.Respiratory

	// Level is taken from the rounded score so a reported 70.0 is always "high chance".
	score = roundTenth(clamp(score, minSurvivalScore, maxSurvivalScore))
	return score, model.LevelForScore(score)
}

// agePenalty applies the age tiers. Above 80 only the elder rate applies; the
// 65-80 tier is not carried over, so the penalty drops from 6 to ~0 at 80.
func agePenalty(age float64) float64 {
	switch {
	case age > ageThresholdElder:
		return float64((age - ageThresholdElder) * ageRateElder)
	case age > ageThresholdSenior:
		return float64((age - ageThresholdSenior) * ageRateSenior)
	default:
		return 0
	}
}

func dementiaTypePenalty(t string) float64 {
	switch t {
	case "":
		return 0
	case "alzheimers":
		return penaltyAlzheimers
	case "vascular":
		return penaltyVascular
	default:
		return penaltyOtherDementia
	}
}

// cognitivePenalty maps MMSE (0-30, lower is worse) onto fixed bands
func cognitivePenalty(mmse float64) float64 {
	switch {
	case mmse >= 24:
		return 0
	case mmse >= 20:
		return 5
	case mmse >= 13:
		return 12
	default:
		return 18
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// roundTenth rounds to one decimal using the correctly rounded decimal
// representation rather than x*10 arithmetic, which can misround near ties.
func roundTenth(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return math.Round(v*10) / 10
	}
	return r
}
