package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// PlaceResolver - внешний каталог мест (Google Places)
type PlaceResolver interface {
	// GetDetails возвращает описание места по place id
	GetDetails(ctx context.Context, placeID string) (*domain.PlaceDetails, error)

	// Search ищет места по тексту
	Search(ctx context.Context, query string) ([]domain.PlaceDetails, error)
}

// TextGenerator - LLM для текста ответа
type TextGenerator interface {
	Generate(ctx context.Context, messages []domain.ChatMessage) (string, error)
}
