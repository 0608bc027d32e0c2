package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"muuguzi/internal/model"
	"muuguzi/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CaregiverHandler handles caregiver-related HTTP requests
type CaregiverHandler struct {
	caregivers *service.CaregiverService
	delay      time.Duration
	logger     *zap.Logger
}

// NewCaregiverHandler creates a new caregiver handler
func NewCaregiverHandler(caregivers *service.CaregiverService, delay time.Duration, logger *zap.Logger) *CaregiverHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaregiverHandler{
		caregivers: caregivers,
		delay:      delay,
		logger:     logger,
	}
}

// Match handles POST /api/match_caregivers
func (h *CaregiverHandler) Match(c *gin.Context) {
	payload := readPayload(c, h.logger)
	req := model.MatchRequest{
		MedicalNeeds:          stringValue(payload["medical_needs"]),
		Location:              stringValue(payload["location"]),
		GenderPreference:      stringValue(payload["gender_preference"]),
		PreferredAvailability: stringValue(payload["preferred_availability"]),
	}

	if !waitResponseDelay(c, h.delay) {
		return
	}

	result := h.caregivers.Match(c.Request.Context(), req)
	c.JSON(http.StatusOK, result)
}

// List handles GET /api/caregivers
func (h *CaregiverHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.caregivers.List(c.Request.Context()))
}

// Create handles POST /api/admin/caregivers
func (h *CaregiverHandler) Create(c *gin.Context) {
	payload := readPayload(c, h.logger)

	var req model.CaregiverCreateRequest
	if err := decodeInto(payload, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	cg, err := h.caregivers.Create(c.Request.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create caregiver", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create caregiver: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, cg)
}

// decodeInto maps an open payload onto a typed request
func decodeInto(payload map[string]any, target any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
