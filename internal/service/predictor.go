package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"muuguzi/internal/metrics"
	"muuguzi/internal/model"

	"go.uber.org/zap"
)

// AssessmentRecorder stores encoded prediction inputs for later model training
type AssessmentRecorder interface {
	LogAssessment(ctx context.Context, features []float32, source model.PredictionSource) error
}

// assessmentQueueSize bounds the assessments waiting to be recorded
const assessmentQueueSize = 64

type assessment struct {
	features []float32
	source   model.PredictionSource
}

// Predictor chooses between the learned model and the rule-based scorer
type Predictor struct {
	scorer   *RuleScorer
	models   *ModelCell
	recorder AssessmentRecorder
	logger   *zap.Logger

	queue     chan assessment
	done      chan struct{}
	closeOnce sync.Once
}

// NewPredictor creates a new predictor. models and recorder may be nil.
// With a recorder, one background worker drains assessments until Close.
func NewPredictor(scorer *RuleScorer, models *ModelCell, recorder AssessmentRecorder, logger *zap.Logger) *Predictor {
	if scorer == nil {
		scorer = NewRuleScorer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Predictor{
		scorer:   scorer,
		models:   models,
		recorder: recorder,
		logger:   logger,
	}
	if recorder != nil {
		p.queue = make(chan assessment, assessmentQueueSize)
		p.done = make(chan struct{})
		go p.recordLoop()
	}
	return p
}

// Close stops the recorder worker after it drains queued assessments
func (p *Predictor) Close() {
	if p.queue == nil {
		return
	}
	p.closeOnce.Do(func() {
		close(p.queue)
		<-p.done
	})
}

// Predict produces a survival prediction for a raw payload. It always returns a
// well-formed result: malformed input falls back to defaults and a missing or
// failing learned model falls back to rule-based scoring.
func (p *Predictor) Predict(ctx context.Context, payload map[string]any) *model.PredictionResult {
	profile := NormalizeProfile(payload)
	row := model.FeatureRowFromProfile(profile)

	result := p.predictLearned(row)
	if result == nil {
		result = p.predictRuleBased(profile)
	}

	metrics.RecordPrediction(string(result.Source), string(result.SurvivalLevel))
	p.record(row, result.Source)

	return result
}

func (p *Predictor) predictLearned(row model.FeatureRow) *model.PredictionResult {
	learned, ok := p.models.Get()
	if !ok {
		return nil
	}

	raw, err := learned.Predict(row)
	if err == nil && math.IsNaN(raw) {
		err = errors.New("learned model returned NaN")
	}
	if err != nil {
		p.logger.Warn("learned model prediction failed, falling back to rules", zap.Error(err))
		return nil
	}

	score := clamp(raw, minSurvivalScore, maxSurvivalScore)
	p.logger.Debug("learned prediction", zap.Float64("raw", raw), zap.Float64("score", score))

	return &model.PredictionResult{
		SurvivalLevel:   model.LevelForScore(score),
		Score:           score,
		Recommendations: Recommendations(),
		Source:          model.SourceLearned,
	}
}

func (p *Predictor) predictRuleBased(profile model.ClinicalProfile) *model.PredictionResult {
	score, level := p.scorer.Score(profile)

	if ce := p.logger.Check(zap.DebugLevel, "rule-based prediction"); ce != nil {
		ce.Write(
			zap.Any("profile", profile),
			zap.Any("penalties", p.scorer.Breakdown(profile)),
			zap.Float64("score", score),
		)
	}

	return &model.PredictionResult{
		SurvivalLevel:   level,
		Score:           score,
		Recommendations: Recommendations(),
		Source:          model.SourceRuleBased,
	}
}

// record queues the encoded features without blocking the request. When the
// queue is full the assessment is dropped.
func (p *Predictor) record(row model.FeatureRow, source model.PredictionSource) {
	if p.queue == nil {
		return
	}
	select {
	case p.queue <- assessment{features: row.Vector(), source: source}:
	default:
		p.logger.Warn("assessment queue full, dropping assessment")
	}
}

func (p *Predictor) recordLoop() {
	defer close(p.done)
	for a := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.recorder.LogAssessment(ctx, a.features, a.source); err != nil {
			p.logger.Warn("failed to log assessment", zap.Error(err))
		}
		cancel()
	}
}
