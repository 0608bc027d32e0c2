package utils

import (
	"encoding/json"
	"testing"
)

func TestParseLenientJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"age": 76, "sex": "female"}`,
			want: map[string]interface{}{
				"age": json.Number("76"),
				"sex": "female",
			},
		},
		{
			name:  "JSON with surrounding text",
			input: `payload={"location": "Nairobi", "gender_preference": "female"} sent`,
			want: map[string]interface{}{
				"location":          "Nairobi",
				"gender_preference": "female",
			},
		},
		{
			name:  "JSON with trailing comma",
			input: `{"age": 80, "mmse_score": 18,}`,
			want: map[string]interface{}{
				"age":        json.Number("80"),
				"mmse_score": json.Number("18"),
			},
		},
		{
			name:  "JSON with unquoted keys",
			input: `{age: 70, dementia_type: "vascular"}`,
			want: map[string]interface{}{
				"age":           json.Number("70"),
				"dementia_type": "vascular",
			},
		},
		{
			name:  "Single quoted strings",
			input: `{'sex': 'male', 'fast_stage': 3}`,
			want: map[string]interface{}{
				"sex":        "male",
				"fast_stage": json.Number("3"),
			},
		},
		{
			name:  "Apostrophe inside double quotes",
			input: `{"medical_needs": "Alzheimer's, wandering",}`,
			want: map[string]interface{}{
				"medical_needs": "Alzheimer's, wandering",
			},
		},
		{
			name:    "Empty string",
			input:   "",
			wantErr: true,
		},
		{
			name:    "Invalid JSON",
			input:   "not json at all",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseLenientJSON(tt.input, &got)

			if (err != nil) != tt.wantErr {
				t.Errorf("ParseLenientJSON() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParseLenientJSON() got = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("ParseLenientJSON()[%q] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantLen int
		wantErr bool
	}{
		{name: "Empty body", body: "", wantLen: 0},
		{name: "Object", body: `{"age": 76}`, wantLen: 1},
		{name: "Null", body: `null`, wantLen: 0},
		{name: "Array is not a payload", body: `[1, 2]`, wantLen: 0, wantErr: true},
		{name: "Garbage", body: `%%%`, wantLen: 0, wantErr: true},
		{name: "Out of range number keeps other fields", body: `{"age": 90, "comorbidities": 1e400}`, wantLen: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePayload([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Errorf("DecodePayload() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got == nil {
				t.Fatal("DecodePayload() returned nil payload")
			}
			if len(got) != tt.wantLen {
				t.Errorf("DecodePayload() len = %d, want %d", len(got), tt.wantLen)
			}
		})
	}
}

func TestExtractBalancedBraces(t *testing.T) {
	tests := []struct {
		name  string
		input string
		open  rune
		close rune
		want  string
	}{
		{
			name:  "Simple object",
			input: `{"a": 1}`,
			open:  '{',
			close: '}',
			want:  `{"a": 1}`,
		},
		{
			name:  "Nested objects",
			input: `{"a": {"b": 2}} trailing`,
			open:  '{',
			close: '}',
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "Object with string containing braces",
			input: `{"text": "Hello {world}"}`,
			open:  '{',
			close: '}',
			want:  `{"text": "Hello {world}"}`,
		},
		{
			name:  "Unbalanced",
			input: `{"a": 1`,
			open:  '{',
			close: '}',
			want:  ``,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractBalancedBraces(tt.input, tt.open, tt.close)
			if got != tt.want {
				t.Errorf("extractBalancedBraces() = %v, want %v", got, tt.want)
			}
		})
	}
}
