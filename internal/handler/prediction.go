package handler

import (
	"io"
	"net/http"
	"time"

	"muuguzi/internal/logger"
	"muuguzi/internal/service"
	"muuguzi/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies read by the lenient decoder
const maxBodyBytes = 1 << 20

// PredictionHandler handles survival prediction HTTP requests
type PredictionHandler struct {
	predictor *service.Predictor
	delay     time.Duration
	logger    *zap.Logger
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictor *service.Predictor, delay time.Duration, logger *zap.Logger) *PredictionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PredictionHandler{
		predictor: predictor,
		delay:     delay,
		logger:    logger,
	}
}

// PredictSurvival handles POST /api/predict_survival
func (h *PredictionHandler) PredictSurvival(c *gin.Context) {
	payload := readPayload(c, h.logger)

	if !waitResponseDelay(c, h.delay) {
		return
	}

	result := h.predictor.Predict(c.Request.Context(), payload)
	c.JSON(http.StatusOK, result)
}

// readPayload decodes the body into an open payload. Bodies that cannot be
// decoded are treated as empty rather than rejected.
func readPayload(c *gin.Context, log *zap.Logger) map[string]any {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		log.Debug("failed to read request body", zap.Error(err))
		return map[string]any{}
	}

	payload, err := utils.DecodePayload(body)
	if err != nil {
		log.Debug("undecodable payload treated as empty",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("body", logger.TruncateForLog(string(body), 200)),
			zap.Error(err),
		)
	}
	return payload
}
