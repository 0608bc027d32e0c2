package service

import (
	"io"
	"sync"

	"muuguzi/internal/metrics"
	"muuguzi/internal/model"

	"go.uber.org/zap"
)

// LearnedModel is an externally trained survival model
type LearnedModel interface {
	// Predict returns the raw model score for one feature row
	Predict(row model.FeatureRow) (float64, error)
}

// ModelLoader loads a learned model from path. A false result means the model
// is absent; loaders never fail loudly.
type ModelLoader func(path string) (LearnedModel, bool)

// ModelCell loads a learned model at most once and memoizes the outcome,
// including absence. It is safe for concurrent use.
type ModelCell struct {
	path   string
	loader ModelLoader
	logger *zap.Logger

	once  sync.Once
	model LearnedModel
	ok    bool
}

// NewModelCell creates a cell that will load path with loader on first use
func NewModelCell(path string, loader ModelLoader, logger *zap.Logger) *ModelCell {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ModelCell{
		path:   path,
		loader: loader,
		logger: logger,
	}
}

// StaticModelCell wraps an already loaded model
func StaticModelCell(m LearnedModel) *ModelCell {
	c := &ModelCell{logger: zap.NewNop(), model: m, ok: m != nil}
	c.once.Do(func() {})
	return c
}

// Get returns the learned model, loading it on first call
func (c *ModelCell) Get() (LearnedModel, bool) {
	if c == nil {
		return nil, false
	}
	c.once.Do(c.load)
	return c.model, c.ok
}

func (c *ModelCell) load() {
	if c.loader == nil || c.path == "" {
		c.logger.Info("no learned model configured, using rule-based scoring")
		metrics.RecordModelLoad("disabled")
		return
	}

	m, ok := c.loader(c.path)
	if !ok || m == nil {
		c.logger.Info("learned model unavailable, using rule-based scoring", zap.String("path", c.path))
		metrics.RecordModelLoad("absent")
		return
	}

	c.model, c.ok = m, true
	c.logger.Info("learned model loaded", zap.String("path", c.path))
	metrics.RecordModelLoad("loaded")
}

// Close releases the model if it was loaded and holds resources
func (c *ModelCell) Close() error {
	if c == nil {
		return nil
	}
	// Prevent a load racing with shutdown
	c.once.Do(func() {})
	if closer, ok := c.model.(io.Closer); ok && c.ok {
		return closer.Close()
	}
	return nil
}
