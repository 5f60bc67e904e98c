package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// DestinationRepository - каталог мест, ключ - внешний place id
type DestinationRepository interface {
	// GetByID возвращает место или ErrDestinationNotFound
	GetByID(ctx context.Context, id string) (*domain.Destination, error)

	// GetByIDs возвращает найденные места по id, отсутствующие пропускаются
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Destination, error)

	// Upsert создаёт или обновляет место. created=true, если запись новая
	Upsert(ctx context.Context, dest *domain.Destination) (created bool, err error)
}
