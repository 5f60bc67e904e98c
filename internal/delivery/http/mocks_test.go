package http_test

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/usecase/dto"
)

type mockPlanner struct {
	mock.Mock
}

func (m *mockPlanner) ProcessUtterance(ctx context.Context, userID, roomID, text string) (*dto.UtteranceResponse, error) {
	args := m.Called(ctx, userID, roomID, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UtteranceResponse), args.Error(1)
}

type mockPlans struct {
	mock.Mock
}

func (m *mockPlans) snapshot(args mock.Arguments) (*domain.PlanSnapshot, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PlanSnapshot), args.Error(1)
}

func (m *mockPlans) CreatePlan(ctx context.Context, userID string, req dto.CreatePlanRequest) (*domain.PlanSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID, req))
}

func (m *mockPlans) GetPlan(ctx context.Context, userID string, planID uuid.UUID) (*domain.PlanSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID, planID))
}

func (m *mockPlans) DeletePlan(ctx context.Context, userID string, planID uuid.UUID) error {
	return m.Called(ctx, userID, planID).Error(0)
}

func (m *mockPlans) ReplaceDestinations(ctx context.Context, userID string, planID uuid.UUID, req dto.ReplaceDestinationsRequest) (*domain.PlanSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID, planID, req))
}

func (m *mockPlans) AddMember(ctx context.Context, userID string, planID uuid.UUID, req dto.AddMemberRequest) (*domain.PlanSnapshot, error) {
	return m.snapshot(m.Called(ctx, userID, planID, req))
}

func (m *mockPlans) ValidatePlan(ctx context.Context, userID string, planID uuid.UUID) (*dto.ValidationResponse, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ValidationResponse), args.Error(1)
}

func (m *mockPlans) DistributePlan(ctx context.Context, userID string, planID uuid.UUID) (*dto.DistributionResponse, error) {
	args := m.Called(ctx, userID, planID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.DistributionResponse), args.Error(1)
}

type mockRecommendations struct {
	mock.Mock
}

func (m *mockRecommendations) ForUser(ctx context.Context, userID string, k int, hybrid bool) ([]string, error) {
	args := m.Called(ctx, userID, k, hybrid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRecommendations) ClusterHybrid(ctx context.Context, clusterID string, k int, simWeight, popWeight *float64) ([]domain.ScoredDestination, error) {
	args := m.Called(ctx, clusterID, k, simWeight, popWeight)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ScoredDestination), args.Error(1)
}

func (m *mockRecommendations) Rerank(ctx context.Context, userID string, hits []dto.SearchHit) []dto.SearchHit {
	return m.Called(ctx, userID, hits).Get(0).([]dto.SearchHit)
}

type mockPreferences struct {
	mock.Mock
}

func (m *mockPreferences) Save(ctx context.Context, userID string, req dto.PreferenceRequest) (*domain.UserPreference, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserPreference), args.Error(1)
}

func (m *mockPreferences) Get(ctx context.Context, userID string) (*domain.UserPreference, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserPreference), args.Error(1)
}

func (m *mockPreferences) RecordActivity(ctx context.Context, userID string, req dto.ActivityRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

type stubHealth struct {
	err error
}

func (s stubHealth) Health(context.Context) error {
	return s.err
}
