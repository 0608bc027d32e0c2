package model

import (
	"encoding/json"
	"testing"
)

func TestRecommendations_MarshalKeepsOrder(t *testing.T) {
	recs := Recommendations{
		{Title: "Zeta", Text: "last alphabetically"},
		{Title: "Alpha", Text: "first alphabetically"},
	}

	data, err := json.Marshal(recs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `{"Zeta":"last alphabetically","Alpha":"first alphabetically"}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}

	if text, ok := recs.Get("Alpha"); !ok || text != "first alphabetically" {
		t.Errorf("Get(Alpha) = %q, %v", text, ok)
	}
	if _, ok := recs.Get("Missing"); ok {
		t.Error("Get(Missing) reported found")
	}
}

func TestPredictionResult_JSONOmitsSource(t *testing.T) {
	data, err := json.Marshal(PredictionResult{
		SurvivalLevel:   SurvivalMedium,
		Score:           57.1,
		Recommendations: Recommendations{},
		Source:          SourceLearned,
	})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	want := `{"survival_level":"medium chance","score":57.1,"recommendations":{}}`
	if string(data) != want {
		t.Errorf("Marshal = %s, want %s", data, want)
	}
}

func TestFeatureRow_Vector(t *testing.T) {
	tests := []struct {
		name    string
		profile ClinicalProfile
		want    []float32
	}{
		{
			name: "female alzheimers",
			profile: ClinicalProfile{
				Age: 76, Sex: "female", DementiaType: "alzheimers", MMSEScore: 24, FASTStage: 2,
				ComorbidityCount: 1, NeurologicalSeverity: 2, RespiratorySeverity: 1,
			},
			want: []float32{76, 1, 0, 0, 1, 0, 0, 24, 2, 1, 2, 1},
		},
		{
			name:    "empty categoricals",
			profile: ClinicalProfile{MMSEScore: 24, FASTStage: 1, NeurologicalSeverity: 1, RespiratorySeverity: 1},
			want:    []float32{0, 0, 0, 1, 0, 1, 0, 24, 1, 0, 1, 1},
		},
		{
			name:    "male vascular",
			profile: ClinicalProfile{Age: 90, Sex: "male", DementiaType: "vascular"},
			want:    []float32{90, 0, 1, 0, 0, 0, 1, 0, 0, 0, 0, 0},
		},
		{
			name:    "unrecognized categories",
			profile: ClinicalProfile{Sex: "other", DementiaType: "lewy"},
			want:    []float32{0, 0, 0, 1, 0, 1, 0, 0, 0, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FeatureRowFromProfile(tt.profile).Vector()
			if len(got) != FeatureVectorSize {
				t.Fatalf("len = %d, want %d", len(got), FeatureVectorSize)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Vector()[%d] = %v, want %v (full %v)", i, got[i], tt.want[i], got)
				}
			}
		})
	}
}
