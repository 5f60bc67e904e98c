package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// PreferenceRepository определяет методы для работы с предпочтениями пользователей
type PreferenceRepository interface {
	// GetByUserID возвращает предпочтения или ErrPreferenceNotFound
	GetByUserID(ctx context.Context, userID string) (*domain.UserPreference, error)

	// GetByUserIDs возвращает предпочтения нескольких пользователей
	GetByUserIDs(ctx context.Context, userIDs []string) ([]*domain.UserPreference, error)

	// Upsert сохраняет предпочтения вместе с эмбеддингом
	Upsert(ctx context.Context, pref *domain.UserPreference) error
}
