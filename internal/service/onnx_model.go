package service

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"muuguzi/internal/model"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// ONNXConfig describes how to run an exported survival model
type ONNXConfig struct {
	LibraryPath string
	InputName   string
	OutputName  string
}

// ONNXModel runs a survival regressor exported to ONNX.
// The model takes a float32 [1, model.FeatureVectorSize] tensor and yields one score.
type ONNXModel struct {
	mu      sync.Mutex
	session *ort.DynamicAdvancedSession
}

// NewONNXLoader returns a ModelLoader backed by onnxruntime. Any failure (missing
// artifact, missing runtime library, bad graph) is logged and reported as absence.
func NewONNXLoader(cfg ONNXConfig, logger *zap.Logger) ModelLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(path string) (LearnedModel, bool) {
		if _, err := os.Stat(path); err != nil {
			logger.Debug("model artifact not found", zap.String("path", path), zap.Error(err))
			return nil, false
		}

		if !ort.IsInitialized() {
			if cfg.LibraryPath != "" {
				ort.SetSharedLibraryPath(cfg.LibraryPath)
			}
			if err := ort.InitializeEnvironment(); err != nil {
				logger.Warn("onnxruntime init failed", zap.String("library", cfg.LibraryPath), zap.Error(err))
				return nil, false
			}
		}

		session, err := ort.NewDynamicAdvancedSession(
			path,
			[]string{cfg.InputName},
			[]string{cfg.OutputName},
			nil,
		)
		if err != nil {
			logger.Warn("failed to open onnx session", zap.String("path", path), zap.Error(err))
			return nil, false
		}

		return &ONNXModel{session: session}, true
	}
}

// Predict implements LearnedModel
func (m *ONNXModel) Predict(row model.FeatureRow) (float64, error) {
	input, err := ort.NewTensor(ort.NewShape(1, model.FeatureVectorSize), row.Vector())
	if err != nil {
		return 0, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 1))
	if err != nil {
		return 0, fmt.Errorf("failed to create output tensor: %w", err)
	}
	defer output.Destroy()

	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return 0, errors.New("onnx session is closed")
	}
	err = m.session.Run([]ort.Value{input}, []ort.Value{output})
	m.mu.Unlock()
	if err != nil {
		return 0, fmt.Errorf("failed to run onnx session: %w", err)
	}

	data := output.GetData()
	if len(data) == 0 {
		return 0, errors.New("onnx model returned no output")
	}
	return float64(data[0]), nil
}

// Close releases the session and the runtime environment
func (m *ONNXModel) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	if envErr := ort.DestroyEnvironment(); envErr != nil && err == nil {
		err = envErr
	}
	return err
}
