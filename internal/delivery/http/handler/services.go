package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/usecase/dto"
)

// Интерфейсы usecase-слоя, которые нужны обработчикам

type PlannerService interface {
	ProcessUtterance(ctx context.Context, userID, roomID, text string) (*dto.UtteranceResponse, error)
}

type PlanService interface {
	CreatePlan(ctx context.Context, userID string, req dto.CreatePlanRequest) (*domain.PlanSnapshot, error)
	GetPlan(ctx context.Context, userID string, planID uuid.UUID) (*domain.PlanSnapshot, error)
	DeletePlan(ctx context.Context, userID string, planID uuid.UUID) error
	ReplaceDestinations(ctx context.Context, userID string, planID uuid.UUID, req dto.ReplaceDestinationsRequest) (*domain.PlanSnapshot, error)
	AddMember(ctx context.Context, userID string, planID uuid.UUID, req dto.AddMemberRequest) (*domain.PlanSnapshot, error)
	ValidatePlan(ctx context.Context, userID string, planID uuid.UUID) (*dto.ValidationResponse, error)
	DistributePlan(ctx context.Context, userID string, planID uuid.UUID) (*dto.DistributionResponse, error)
}

type RecommendationService interface {
	ForUser(ctx context.Context, userID string, k int, hybrid bool) ([]string, error)
	ClusterHybrid(ctx context.Context, clusterID string, k int, simWeight, popWeight *float64) ([]domain.ScoredDestination, error)
	Rerank(ctx context.Context, userID string, hits []dto.SearchHit) []dto.SearchHit
}

type PreferenceService interface {
	Save(ctx context.Context, userID string, req dto.PreferenceRequest) (*domain.UserPreference, error)
	Get(ctx context.Context, userID string) (*domain.UserPreference, error)
	RecordActivity(ctx context.Context, userID string, req dto.ActivityRequest) error
}
