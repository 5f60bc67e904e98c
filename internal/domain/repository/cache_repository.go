package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// PlaceCache - кеш ответов Place Resolver, ключ включает язык ответа
type PlaceCache interface {
	// GetPlace возвращает nil, nil при промахе
	GetPlace(ctx context.Context, language, placeID string) (*domain.PlaceDetails, error)
	SetPlace(ctx context.Context, language string, place *domain.PlaceDetails) error

	// GetSearch возвращает ok=false при промахе
	GetSearch(ctx context.Context, language, query string) (hits []domain.PlaceDetails, ok bool, err error)
	SetSearch(ctx context.Context, language, query string, hits []domain.PlaceDetails) error
}
