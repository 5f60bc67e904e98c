package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// ClusterRepository - кластеры пользователей (только чтение, кроме пересчёта популярности)
type ClusterRepository interface {
	// GetByID возвращает кластер с участниками
	GetByID(ctx context.Context, id string) (*domain.Cluster, error)

	// TopDestinations возвращает до limit мест кластера по убыванию популярности
	TopDestinations(ctx context.Context, clusterID string, limit int) ([]domain.PopularDestination, error)

	// RecordActivity сохраняет действие пользователя с местом
	RecordActivity(ctx context.Context, userID, destinationID string, activity domain.ActivityType) error

	// RecomputePopularity пересчитывает популярность мест кластера по активностям участников
	RecomputePopularity(ctx context.Context, clusterID string) error
}
