package service

import (
	"testing"

	"muuguzi/internal/model"
)

func TestRuleScorer_Score(t *testing.T) {
	scorer := NewRuleScorer()

	tests := []struct {
		name      string
		payload   map[string]any
		wantScore float64
		wantLevel model.SurvivalLevel
	}{
		{
			name: "moderate alzheimers",
			payload: map[string]any{
				"age": 76.0, "dementia_type": "alzheimers", "mmse_score": 24.0, "fast_stage": 2.0,
				"comorbidities": 1.0, "neurological_symptoms": 2.0, "respiratory_issues": 1.0,
			},
			wantScore: 57.1,
			wantLevel: model.SurvivalMedium,
		},
		{
			name: "severe vascular clamps to zero",
			payload: map[string]any{
				"age": 90.0, "dementia_type": "vascular", "mmse_score": 10.0, "fast_stage": 7.0,
				"comorbidities": 4.0, "neurological_symptoms": 3.0, "respiratory_issues": 3.0,
			},
			wantScore: 0,
			wantLevel: model.SurvivalLow,
		},
		{
			name:      "empty payload",
			payload:   map[string]any{},
			wantScore: 85,
			wantLevel: model.SurvivalHigh,
		},
		{
			name:      "malformed age",
			payload:   map[string]any{"age": "not-a-number"},
			wantScore: 85,
			wantLevel: model.SurvivalHigh,
		},
		{
			name:      "age 80 uses senior tier",
			payload:   map[string]any{"age": 80.0},
			wantScore: 79,
			wantLevel: model.SurvivalHigh,
		},
		{
			name:      "age 81 uses elder tier only",
			payload:   map[string]any{"age": 81.0},
			wantScore: 84.2,
			wantLevel: model.SurvivalHigh,
		},
		{
			name:      "legacy keys and other dementia",
			payload:   map[string]any{"age": 70.0, "dementia_type": "other", "severity": 15.0, "functional_decline": 3.0},
			wantScore: 52,
			wantLevel: model.SurvivalMedium,
		},
		{
			name: "list inputs",
			payload: map[string]any{
				"age": 68.0, "dementia_type": "Alzheimers", "mmse_score": 21.0, "fast_stage": 4.0,
				"comorbidities":         []any{"a", "b"},
				"neurological_symptoms": []any{"x"},
				"respiratory_issues":    []any{"p", "q", "r", "s", "t"},
			},
			wantScore: 30.8,
			wantLevel: model.SurvivalLow,
		},
		{
			name: "unknown type and string numbers",
			payload: map[string]any{
				"age": 72.5, "dementia_type": "lewy", "mmse_score": 12.0, "fast_stage": 5.0,
				"comorbidities": "2", "neurological_symptoms": "1.5",
			},
			wantScore: 28.5,
			wantLevel: model.SurvivalLow,
		},
		{
			name:      "fast penalty capped",
			payload:   map[string]any{"age": 95.0, "fast_stage": 12.0},
			wantScore: 53,
			wantLevel: model.SurvivalMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, level := scorer.Score(NormalizeProfile(tt.payload))
			if score != tt.wantScore {
				t.Errorf("score = %v, want %v", score, tt.wantScore)
			}
			if level != tt.wantLevel {
				t.Errorf("level = %q, want %q", level, tt.wantLevel)
			}
		})
	}
}

func TestRuleScorer_Breakdown(t *testing.T) {
	scorer := NewRuleScorer()
	p := model.ClinicalProfile{
		Age: 76, DementiaType: "alzheimers", MMSEScore: 24, FASTStage: 2,
		ComorbidityCount: 1, NeurologicalSeverity: 2, RespiratorySeverity: 1,
	}

	pen := scorer.Breakdown(p)
	if pen.DementiaType != 10 || pen.Cognitive != 0 || pen.Functional != 3.5 ||
		pen.Comorbidity != 3 || pen.Neurological != 7 || pen.Respiratory != 0 {
		t.Errorf("unexpected penalties: %+v", pen)
	}
	if pen.Age < 4.39 || pen.Age > 4.41 {
		t.Errorf("age penalty = %v, want ~4.4", pen.Age)
	}
	if total := pen.Total(); total < 27.89 || total > 27.91 {
		t.Errorf("total = %v, want ~27.9", total)
	}
}

func TestRuleScorer_Bounds(t *testing.T) {
	scorer := NewRuleScorer()

	for age := 0.0; age <= 110; age += 7.3 {
		for mmse := 0.0; mmse <= 30; mmse += 3 {
			for stage := 1.0; stage <= 7; stage++ {
				p := model.ClinicalProfile{
					Age: age, DementiaType: "vascular", MMSEScore: mmse, FASTStage: stage,
					ComorbidityCount: int(stage) % 4, NeurologicalSeverity: 1 + stage/7*2, RespiratorySeverity: 3 - stage/7*2,
				}
				score, level := scorer.Score(p)
				if score < 0 || score > 100 {
					t.Fatalf("score %v out of range for %+v", score, p)
				}
				if level != model.LevelForScore(score) {
					t.Fatalf("level %q inconsistent with score %v", level, score)
				}
			}
		}
	}

	// Negative severities push the score above base; it must still clamp
	score, _ := scorer.Score(model.ClinicalProfile{MMSEScore: 30, FASTStage: 1, NeurologicalSeverity: -10, RespiratorySeverity: -10})
	if score != 100 {
		t.Errorf("score = %v, want clamp to 100", score)
	}
}

func TestRuleScorer_Deterministic(t *testing.T) {
	scorer := NewRuleScorer()
	p := NormalizeProfile(map[string]any{
		"age": 83.7, "dementia_type": "other", "mmse_score": 17.0, "fast_stage": 4.2,
		"comorbidities": []any{"a"}, "neurological_symptoms": 2.3, "respiratory_issues": []any{"b", "c"},
	})

	first, firstLevel := scorer.Score(p)
	for i := 0; i < 100; i++ {
		score, level := scorer.Score(p)
		if score != first || level != firstLevel {
			t.Fatalf("run %d: got %v/%q, want %v/%q", i, score, level, first, firstLevel)
		}
	}
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score float64
		want  model.SurvivalLevel
	}{
		{100, model.SurvivalHigh},
		{70, model.SurvivalHigh},
		{69.9, model.SurvivalMedium},
		{40, model.SurvivalMedium},
		{39.9, model.SurvivalLow},
		{0, model.SurvivalLow},
	}

	for _, tt := range tests {
		if got := model.LevelForScore(tt.score); got != tt.want {
			t.Errorf("LevelForScore(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}

func TestRoundTenth(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{57.1, 57.1},
		{57.149, 57.1},
		{57.16, 57.2},
		{0, 0},
		{100, 100},
	}

	for _, tt := range tests {
		if got := roundTenth(tt.in); got != tt.want {
			t.Errorf("roundTenth(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
