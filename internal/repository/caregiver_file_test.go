package repository

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"muuguzi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "caregivers.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileCaregiverStore_LoadTolerant(t *testing.T) {
	tests := []struct {
		name    string
		content *string
		wantLen int
	}{
		{name: "missing file", content: nil, wantLen: 0},
		{name: "corrupt json", content: strPtr(`[{"id": 1,`), wantLen: 0},
		{name: "object instead of array", content: strPtr(`{"id": 1}`), wantLen: 0},
		{name: "empty array", content: strPtr(`[]`), wantLen: 0},
		{name: "malformed records kept", content: strPtr(`[{"id": 1, "name": "A"}, {"id": "two"}, {"id": 3}, "note"]`), wantLen: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "caregivers.json")
			if tt.content != nil {
				path = writeFile(t, *tt.content)
			}
			store := NewFileCaregiverStore(path, nil)

			got := store.Load(context.Background())
			assert.NotNil(t, got)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestFileCaregiverStore_LoadScalarFields(t *testing.T) {
	path := writeFile(t, `[{"id": 5, "name": "Otieno", "location": "Kisumu", "availability": "weekends", "is_available": false}]`)
	store := NewFileCaregiverStore(path, nil)

	got := store.Load(context.Background())
	require.Len(t, got, 1)
	assert.Equal(t, 5, got[0].ID)
	assert.Equal(t, model.StringList{"weekends"}, got[0].Availability)
	assert.False(t, got[0].Available())
}

func TestFileCaregiverStore_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "caregivers.json")
	store := NewFileCaregiverStore(path, nil)
	ctx := context.Background()

	available := true
	caregivers := []model.Caregiver{
		{
			ID:              1,
			Name:            "Grace & Co <nurses>",
			Qualifications:  model.StringList{"RN"},
			FocusConditions: model.StringList{"dementia", "alzheimers"},
			Location:        "Eldoret",
			Gender:          "female",
			Availability:    model.StringList{"weekdays"},
			IsAvailable:     &available,
		},
	}
	require.NoError(t, store.Save(ctx, caregivers))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Grace & Co <nurses>")
	assert.Contains(t, string(data), "\n  {")

	loaded := store.Load(ctx)
	assert.Equal(t, caregivers, loaded)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFileCaregiverStore_SaveNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caregivers.json")
	store := NewFileCaregiverStore(path, nil)

	require.NoError(t, store.Save(context.Background(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
	assert.Equal(t, path, store.Path())
}

func TestFileCaregiverStore_SaveKeepsUninterpretedFields(t *testing.T) {
	path := writeFile(t, `[{"id":1,"phone":"0700"},{"id":2,"is_available":"yes"},{"id":"3"},"note"]`)
	store := NewFileCaregiverStore(path, nil)
	ctx := context.Background()

	loaded := store.Load(ctx)
	require.Len(t, loaded, 4)
	assert.Equal(t, 3, loaded[2].ID)
	assert.True(t, loaded[1].Available())
	assert.True(t, loaded[3].Opaque())

	available := true
	loaded = append(loaded, model.Caregiver{ID: 4, Name: "New", IsAvailable: &available})
	require.NoError(t, store.Save(ctx, loaded))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &entries))
	require.Len(t, entries, 5)
	assert.Contains(t, string(entries[0]), `"phone": "0700"`)
	assert.Contains(t, string(entries[1]), `"is_available": "yes"`)
	assert.Contains(t, string(entries[2]), `"id": "3"`)
	assert.JSONEq(t, `"note"`, string(entries[3]))
	assert.Contains(t, string(entries[4]), `"name": "New"`)

	reloaded := store.Load(ctx)
	assert.Equal(t, loaded, reloaded)
}

func strPtr(s string) *string { return &s }
