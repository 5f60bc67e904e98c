// Package agent содержит суб-агентов планировщика. Все агенты - чистые функции
// от снимка плана: они не меняют сохранённый план, а возвращают предупреждения
// и предлагаемые изменения.
package agent

import (
	"context"
	"time"

	"github.com/trip-planner/internal/domain"
	"github.com/trip-planner/internal/pkg/errors"
)

// SubAgent - общий контракт суб-агентов
type SubAgent interface {
	Name() string
	Process(ctx context.Context, plan *domain.PlanSnapshot, action string) (*domain.AgentResult, error)
}

// DailyShape - целевая форма дня
type DailyShape struct {
	RestaurantsPerDay    int
	AccommodationsPerDay int
	MaxAttractionsPerDay int
}

func DefaultDailyShape() DailyShape {
	return DailyShape{RestaurantsPerDay: 2, AccommodationsPerDay: 1, MaxAttractionsPerDay: 2}
}

// planRange разбирает даты снимка
func planRange(plan *domain.PlanSnapshot) (time.Time, time.Time, error) {
	if plan.StartDate == "" || plan.EndDate == "" {
		return time.Time{}, time.Time{}, errors.ErrInvalidDateRange
	}
	start, err := domain.ParseDate(plan.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.ErrInvalidDateRange
	}
	end, err := domain.ParseDate(plan.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, errors.ErrInvalidDateRange
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.ErrInvalidDateRange
	}
	return start, end, nil
}

func tripDays(start, end time.Time) int {
	return int(end.Sub(start).Hours()/24) + 1
}

// dayNumber - номер дня с 1, 0 если дата не разбирается
func dayNumber(start time.Time, date string) int {
	t, err := domain.ParseDate(date)
	if err != nil {
		return 0
	}
	return int(t.Sub(start).Hours()/24) + 1
}

func warn(agent, message string) domain.Warning {
	return domain.Warning{Agent: agent, Message: message}
}
