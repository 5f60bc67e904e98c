package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/delivery/http/middleware"
	"github.com/trip-planner/internal/pkg/utils"
	"github.com/trip-planner/internal/pkg/validator"
	"github.com/trip-planner/internal/usecase/dto"
)

// PlanHandler - CRUD плана, проверка и распределение по дням
type PlanHandler struct {
	plans  PlanService
	logger *zap.Logger
}

// NewPlanHandler - создание нового PlanHandler
func NewPlanHandler(plans PlanService, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{
		plans:  plans,
		logger: logger,
	}
}

// CreatePlan godoc
// @Summary Create a trip plan
// @Tags plans
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param request body dto.CreatePlanRequest true "Plan"
// @Success 201 {object} utils.SuccessResponse{data=dto.PlanResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /plans [post]
func (h *PlanHandler) CreatePlan(c *fiber.Ctx) error {
	var req dto.CreatePlanRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	snap, err := h.plans.CreatePlan(c.UserContext(), middleware.UserID(c), req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendCreated(c, dto.PlanResponse{Plan: *snap})
}

// GetPlan godoc
// @Summary Get a plan snapshot
// @Tags plans
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "Plan id"
// @Success 200 {object} utils.SuccessResponse{data=dto.PlanResponse}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /plans/{id} [get]
func (h *PlanHandler) GetPlan(c *fiber.Ctx) error {
	id, err := planIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	snap, err := h.plans.GetPlan(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.PlanResponse{Plan: *snap}, &utils.Meta{
		Total: len(snap.Destinations),
	})
}

// DeletePlan godoc
// @Summary Delete a plan
// @Description Only the owner may delete a plan
// @Tags plans
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "Plan id"
// @Success 204
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /plans/{id} [delete]
func (h *PlanHandler) DeletePlan(c *fiber.Ctx) error {
	id, err := planIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.plans.DeletePlan(c.UserContext(), middleware.UserID(c), id); err != nil {
		return utils.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// ReplaceDestinations godoc
// @Summary Replace the plan's destination list
// @Tags plans
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "Plan id"
// @Param request body dto.ReplaceDestinationsRequest true "Destinations"
// @Success 200 {object} utils.SuccessResponse{data=dto.PlanResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /plans/{id}/destinations [put]
func (h *PlanHandler) ReplaceDestinations(c *fiber.Ctx) error {
	id, err := planIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ReplaceDestinationsRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	snap, err := h.plans.ReplaceDestinations(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.PlanResponse{Plan: *snap}, &utils.Meta{
		Total: len(snap.Destinations),
	})
}

// AddMember godoc
// @Summary Add an editor or viewer to the plan
// @Tags plans
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "Plan id"
// @Param request body dto.AddMemberRequest true "Member"
// @Success 200 {object} utils.SuccessResponse{data=dto.PlanResponse}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Router /plans/{id}/members [post]
func (h *PlanHandler) AddMember(c *fiber.Ctx) error {
	id, err := planIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.AddMemberRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	snap, err := h.plans.AddMember(c.UserContext(), middleware.UserID(c), id, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, dto.PlanResponse{Plan: *snap}, nil)
}

// ValidatePlan godoc
// @Summary Validate a plan
// @Description Runs the validator agents and returns warnings and suggestions
// @Tags plans
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "Plan id"
// @Success 200 {object} utils.SuccessResponse{data=dto.ValidationResponse}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /plans/{id}/validation [get]
func (h *PlanHandler) ValidatePlan(c *fiber.Ctx) error {
	id, err := planIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	res, err := h.plans.ValidatePlan(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, res, &utils.Meta{
		Total: len(res.Warnings),
	})
}

// DistributePlan godoc
// @Summary Distribute destinations across trip days
// @Tags plans
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "Plan id"
// @Success 200 {object} utils.SuccessResponse{data=dto.DistributionResponse}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /plans/{id}/distribute [post]
func (h *PlanHandler) DistributePlan(c *fiber.Ctx) error {
	id, err := planIDParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	res, err := h.plans.DistributePlan(c.UserContext(), middleware.UserID(c), id)
	if err != nil {
		return utils.SendError(c, err)
	}

	h.logger.Debug("Plan distributed",
		zap.String("plan_id", id.String()),
		zap.Int("modifications", len(res.Modifications)))

	return utils.SendSuccess(c, res, &utils.Meta{
		Total: len(res.Destinations),
	})
}
