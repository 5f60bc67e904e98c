package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/trip-planner/internal/domain"
)

// PlanRepository определяет методы для работы с планами поездок
type PlanRepository interface {
	// GetByID возвращает план с участниками и пунктами
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Plan, error)

	// FirstOwnedBy возвращает самый ранний план, которым владеет пользователь
	FirstOwnedBy(ctx context.Context, userID string) (*domain.Plan, error)

	// ListByMember возвращает планы, где пользователь участник
	ListByMember(ctx context.Context, userID string, limit int) ([]*domain.Plan, error)

	// Create сохраняет новый план, участников и пункты в одной транзакции
	Create(ctx context.Context, plan *domain.Plan) error

	// Save обновляет атрибуты плана и полностью заменяет список пунктов в одной транзакции
	Save(ctx context.Context, plan *domain.Plan) error

	// Delete удаляет план каскадно
	Delete(ctx context.Context, id uuid.UUID) error

	// AddMember добавляет участника
	AddMember(ctx context.Context, member domain.PlanMember) error
}
