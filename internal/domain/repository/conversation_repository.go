package repository

import (
	"context"

	"github.com/trip-planner/internal/domain"
)

// ConversationStateRepository - состояние диалога по комнате
type ConversationStateRepository interface {
	// Get возвращает состояние комнаты; пустое состояние, если его нет
	Get(ctx context.Context, roomID string) (*domain.ConversationState, error)

	// Save перезаписывает состояние комнаты
	Save(ctx context.Context, roomID string, state *domain.ConversationState) error

	// Clear удаляет состояние комнаты
	Clear(ctx context.Context, roomID string) error
}
