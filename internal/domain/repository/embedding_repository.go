package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// EmbeddingRepository определяет методы для работы с эмбеддингами мест
type EmbeddingRepository interface {
	// Upsert сохраняет вектор места с версией модели
	Upsert(ctx context.Context, e *domain.DestinationEmbedding) error

	// GetByDestinationIDs возвращает векторы по id мест, отсутствующие пропускаются
	GetByDestinationIDs(ctx context.Context, ids []string) (map[string]domain.DestinationEmbedding, error)

	// ListPage возвращает векторы с id > afterID по возрастанию id
	ListPage(ctx context.Context, afterID string, limit int) ([]domain.DestinationEmbedding, error)

	// ListStale возвращает id мест без вектора или с вектором другой версии модели
	ListStale(ctx context.Context, modelVersion string, limit int) ([]string, error)
}
