package service

import (
	"slices"
	"sort"
	"strings"

	"muuguzi/internal/model"
)

// Match reason constants
const (
	ReasonLocationMatch     = "Location match"
	ReasonGenderMatch       = "Gender preference match"
	ReasonDementiaFocus     = "Dementia care focus"
	ReasonAlzheimersFocus   = "Alzheimer's care focus"
	ReasonVascularFocus     = "Vascular dementia care focus"
	ReasonAvailabilityMatch = "Preferred availability"
	ReasonCurrentlyFree     = "Currently available"
)

// DefaultMaxMatches is the number of caregivers returned per match request
const DefaultMaxMatches = 5

// MatchWeights holds the points awarded by each matching rule
type MatchWeights struct {
	Location        float64
	Gender          float64
	DementiaFocus   float64
	AlzheimersFocus float64
	VascularFocus   float64
	Availability    float64
	Available       float64
}

// DefaultMatchWeights returns the standard matching weights
func DefaultMatchWeights() MatchWeights {
	return MatchWeights{
		Location:        30,
		Gender:          15,
		DementiaFocus:   25,
		AlzheimersFocus: 10,
		VascularFocus:   10,
		Availability:    20,
		Available:       10,
	}
}

// CaregiverRanker handles scoring and ranking of caregivers against a request
type CaregiverRanker struct {
	weights    MatchWeights
	maxMatches int
}

// NewCaregiverRanker creates a new ranker with specified weights
func NewCaregiverRanker(weights MatchWeights, maxMatches int) *CaregiverRanker {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	return &CaregiverRanker{
		weights:    weights,
		maxMatches: maxMatches,
	}
}

// matchCriteria is a MatchRequest normalized for comparison
type matchCriteria struct {
	medicalNeeds string
	location     string
	gender       string
	availability string
}

func newMatchCriteria(req model.MatchRequest) matchCriteria {
	return matchCriteria{
		medicalNeeds: strings.ToLower(req.MedicalNeeds),
		location:     strings.ToLower(strings.TrimSpace(req.Location)),
		gender:       strings.ToLower(strings.TrimSpace(req.GenderPreference)),
		availability: strings.ToLower(strings.TrimSpace(req.PreferredAvailability)),
	}
}

// Rank scores every caregiver in the snapshot and returns the best matches.
// The snapshot is read only. TotalAvailable counts the whole snapshot, not just
// the caregivers that scored, and includes opaque entries that are never matched.
func (r *CaregiverRanker) Rank(req model.MatchRequest, snapshot []model.Caregiver) model.MatchResult {
	criteria := newMatchCriteria(req)

	scored := make([]model.CaregiverMatch, 0, len(snapshot))
	for _, cg := range snapshot {
		if cg.Opaque() {
			continue
		}
		score, reasons := r.scoreCaregiver(criteria, cg)
		scored = append(scored, model.CaregiverMatch{
			Caregiver:      cg,
			Score:          score,
			MatchedReasons: reasons,
		})
	}

	// Sort by score descending; equal scores keep snapshot order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	matches := make([]model.CaregiverMatch, 0, r.maxMatches)
	for _, m := range scored {
		if len(matches) == r.maxMatches {
			break
		}
		if m.Score > 0 {
			matches = append(matches, m)
		}
	}

	return model.MatchResult{
		Matches:        matches,
		TotalAvailable: len(snapshot),
	}
}

// Score returns the match score of a single caregiver
func (r *CaregiverRanker) Score(req model.MatchRequest, cg model.Caregiver) float64 {
	score, _ := r.scoreCaregiver(newMatchCriteria(req), cg)
	return score
}

// scoreCaregiver applies every rule additively and records why points were given
func (r *CaregiverRanker) scoreCaregiver(c matchCriteria, cg model.Caregiver) (float64, []string) {
	score := 0.0
	reasons := []string{}

	cgLocation := strings.ToLower(strings.TrimSpace(cg.Location))
	cgGender := strings.ToLower(cg.Gender)
	focus := cg.FocusConditions.Lower()
	availability := cg.Availability.Lower()

	if c.location != "" && strings.Contains(cgLocation, c.location) {
		score += r.weights.Location
		reasons = append(reasons, ReasonLocationMatch)
	}

	if c.gender != "" && cgGender == c.gender {
		score += r.weights.Gender
		reasons = append(reasons, ReasonGenderMatch)
	}

	if slices.Contains(focus, "dementia") {
		score += r.weights.DementiaFocus
		reasons = append(reasons, ReasonDementiaFocus)
	}

	if strings.Contains(c.medicalNeeds, "alzheimer") && slices.Contains(focus, "alzheimers") {
		score += r.weights.AlzheimersFocus
		reasons = append(reasons, ReasonAlzheimersFocus)
	}
	if strings.Contains(c.medicalNeeds, "vascular") && slices.Contains(focus, "vascular") {
		score += r.weights.VascularFocus
		reasons = append(reasons, ReasonVascularFocus)
	}

	if c.availability != "" && slices.Contains(availability, c.availability) {
		score += r.weights.Availability
		reasons = append(reasons, ReasonAvailabilityMatch)
	}

	if cg.Available() {
		score += r.weights.Available
		reasons = append(reasons, ReasonCurrentlyFree)
	}

	return score, reasons
}
