package dto

import "github.com/trip-planner/internal/domain"

// PlanDestinationInput - пункт плана во входящем запросе
type PlanDestinationInput struct {
	DestinationID string   `json:"destination_id" validate:"required"`
	Name          string   `json:"name,omitempty"`
	Kind          string   `json:"kind" validate:"required,oneof=attraction restaurant accommodation transport"`
	VisitDate     string   `json:"visit_date,omitempty" validate:"omitempty,isodate"`
	TimeSlot      string   `json:"time_slot,omitempty" validate:"omitempty,oneof=morning afternoon evening"`
	OrderInDay    int      `json:"order_in_day,omitempty" validate:"omitempty,min=1"`
	EstimatedCost *float64 `json:"estimated_cost,omitempty" validate:"omitempty,min=0"`
	Note          string   `json:"note,omitempty" validate:"omitempty,max=500"`
	URL           string   `json:"url,omitempty" validate:"omitempty,url"`
}

// CreatePlanRequest - создание плана владельцем с начальным набором мест
type CreatePlanRequest struct {
	Name         string                 `json:"name" validate:"required,min=1,max=200"`
	PlaceName    string                 `json:"place_name" validate:"required,min=1,max=200"`
	StartDate    string                 `json:"start_date" validate:"required,isodate"`
	EndDate      string                 `json:"end_date" validate:"required,isodate"`
	BudgetLimit  *float64               `json:"budget_limit,omitempty" validate:"omitempty,min=0"`
	Destinations []PlanDestinationInput `json:"destinations" validate:"omitempty,max=200,dive"`
}

// ReplaceDestinationsRequest - полная замена списка пунктов
type ReplaceDestinationsRequest struct {
	Destinations []PlanDestinationInput `json:"destinations" validate:"omitempty,max=200,dive"`
}

// AddMemberRequest - добавление участника владельцем
type AddMemberRequest struct {
	UserID string `json:"user_id" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=editor viewer"`
}

// PlanResponse - снимок плана
type PlanResponse struct {
	Plan domain.PlanSnapshot `json:"plan"`
}

// ValidationResponse - результат validate_plan
type ValidationResponse struct {
	Valid       bool             `json:"valid"`
	Warnings    []domain.Warning `json:"warnings"`
	Suggestions []string         `json:"suggestions"`
}

// DistributionResponse - результат distribute_plan
type DistributionResponse struct {
	Destinations  []domain.DestinationSnapshot `json:"destinations"`
	Warnings      []domain.Warning             `json:"warnings"`
	Modifications []domain.Modification        `json:"modifications"`
	Message       string                       `json:"message"`
}
