package service

import (
	"context"
	"fmt"
	"sync"

	"muuguzi/internal/metrics"
	"muuguzi/internal/model"

	"go.uber.org/zap"
)

// CaregiverStore persists caregiver profiles. Load never fails: a missing or
// unreadable backing store yields an empty list.
type CaregiverStore interface {
	Load(ctx context.Context) []model.Caregiver
	Save(ctx context.Context, caregivers []model.Caregiver) error
}

// CaregiverService handles caregiver listing, registration and matching
type CaregiverService struct {
	store  CaregiverStore
	ranker *CaregiverRanker
	logger *zap.Logger

	// serializes read-modify-write on the store within this process
	writeMu sync.Mutex
}

// NewCaregiverService creates a new caregiver service
func NewCaregiverService(store CaregiverStore, ranker *CaregiverRanker, logger *zap.Logger) *CaregiverService {
	if ranker == nil {
		ranker = NewCaregiverRanker(DefaultMatchWeights(), DefaultMaxMatches)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CaregiverService{
		store:  store,
		ranker: ranker,
		logger: logger,
	}
}

// List returns every stored caregiver
func (s *CaregiverService) List(ctx context.Context) []model.Caregiver {
	caregivers := s.store.Load(ctx)
	if caregivers == nil {
		return []model.Caregiver{}
	}
	return caregivers
}

// Create registers a new caregiver with the next free ID
func (s *CaregiverService) Create(ctx context.Context, req *model.CaregiverCreateRequest) (*model.Caregiver, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	caregivers := s.store.Load(ctx)

	cg := newCaregiver(nextCaregiverID(caregivers), req)
	caregivers = append(caregivers, cg)

	if err := s.store.Save(ctx, caregivers); err != nil {
		return nil, fmt.Errorf("failed to save caregiver: %w", err)
	}

	s.logger.Info("caregiver registered", zap.Int("id", cg.ID), zap.String("location", cg.Location))
	return &cg, nil
}

// Match ranks the stored caregivers against a request
func (s *CaregiverService) Match(ctx context.Context, req model.MatchRequest) model.MatchResult {
	snapshot := s.store.Load(ctx)
	result := s.ranker.Rank(req, snapshot)

	metrics.RecordMatches(len(result.Matches))
	s.logger.Debug("caregivers matched",
		zap.Int("matches", len(result.Matches)),
		zap.Int("total_available", result.TotalAvailable),
	)
	return result
}

func nextCaregiverID(caregivers []model.Caregiver) int {
	maxID := 0
	for _, cg := range caregivers {
		if cg.ID > maxID {
			maxID = cg.ID
		}
	}
	return maxID + 1
}

func newCaregiver(id int, req *model.CaregiverCreateRequest) model.Caregiver {
	if req == nil {
		req = &model.CaregiverCreateRequest{}
	}

	focus := req.FocusConditions
	if focus == nil {
		focus = model.StringList{"dementia"}
	}
	qualifications := req.Qualifications
	if qualifications == nil {
		qualifications = model.StringList{}
	}
	availability := req.Availability
	if availability == nil {
		availability = model.StringList{}
	}
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	return model.Caregiver{
		ID:              id,
		Name:            req.Name,
		Qualifications:  qualifications,
		FocusConditions: focus,
		Location:        req.Location,
		Gender:          req.Gender,
		Availability:    availability,
		IsAvailable:     &available,
	}
}
