package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"muuguzi/internal/model"

	"go.uber.org/zap"
)

// FileCaregiverStore keeps caregivers in a single JSON array file.
// It assumes a single writer.
type FileCaregiverStore struct {
	path   string
	logger *zap.Logger
}

// NewFileCaregiverStore creates a store backed by path
func NewFileCaregiverStore(path string, logger *zap.Logger) *FileCaregiverStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileCaregiverStore{path: path, logger: logger}
}

// Path returns the backing file path
func (s *FileCaregiverStore) Path() string {
	return s.path
}

// Load reads all caregivers. A missing, unreadable or non-array file yields an
// empty list. Every array entry becomes a caregiver, however malformed; fields
// that cannot be interpreted are carried in Caregiver.Extra so Save keeps them.
func (s *FileCaregiverStore) Load(_ context.Context) []model.Caregiver {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read caregiver file", zap.String("path", s.path), zap.Error(err))
		}
		return []model.Caregiver{}
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		s.logger.Warn("caregiver file is not a JSON array", zap.String("path", s.path), zap.Error(err))
		return []model.Caregiver{}
	}

	caregivers := make([]model.Caregiver, len(raw))
	for i, item := range raw {
		// Caregiver decoding never rejects a record
		_ = caregivers[i].UnmarshalJSON(item)
		if caregivers[i].Opaque() {
			s.logger.Warn("caregiver entry is not an object, keeping it unmatched", zap.Int("index", i))
		}
	}
	return caregivers
}

// Save replaces the file contents with caregivers
func (s *FileCaregiverStore) Save(_ context.Context, caregivers []model.Caregiver) error {
	if caregivers == nil {
		caregivers = []model.Caregiver{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(caregivers); err != nil {
		return fmt.Errorf("failed to encode caregivers: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create caregiver dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".caregivers-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write caregivers: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace caregiver file: %w", err)
	}
	return nil
}
