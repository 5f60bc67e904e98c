package dto

import "github.com/trip-planner/internal/domain"

// UtteranceRequest - реплика пользователя в комнате
type UtteranceRequest struct {
	Text string `json:"text" validate:"required,min=1,max=2000"`
}

// UtteranceResponse - ответ планировщика
type UtteranceResponse struct {
	OK            bool                  `json:"ok"`
	Message       string                `json:"message"`
	Plan          *domain.PlanSnapshot  `json:"plan,omitempty"`
	Warnings      []domain.Warning      `json:"warnings"`
	Modifications []domain.Modification `json:"modifications"`
	Intent        domain.ParsedIntent   `json:"intent"`
	MissingParams []string              `json:"missing_params,omitempty"`
	Suggestions   []string              `json:"suggestions,omitempty"`
}
