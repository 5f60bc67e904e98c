package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/delivery/http/middleware"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/pkg/utils"
	"github.com/trip-planner/internal/pkg/validator"
	"github.com/trip-planner/internal/usecase/dto"
)

// PlannerHandler - диалоговый вход планировщика
type PlannerHandler struct {
	planner PlannerService
	logger  *zap.Logger
}

// NewPlannerHandler - создание нового PlannerHandler
func NewPlannerHandler(planner PlannerService, logger *zap.Logger) *PlannerHandler {
	return &PlannerHandler{
		planner: planner,
		logger:  logger,
	}
}

// ProcessUtterance godoc
// @Summary Process a chat utterance
// @Description Parses the utterance, applies the edit to the caller's active plan and returns the reply
// @Tags planner
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param room_id path string true "Chat room id"
// @Param request body dto.UtteranceRequest true "Utterance"
// @Success 200 {object} utils.SuccessResponse{data=dto.UtteranceResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /rooms/{room_id}/utterances [post]
func (h *PlannerHandler) ProcessUtterance(c *fiber.Ctx) error {
	roomID := c.Params("room_id")
	if roomID == "" {
		return utils.SendError(c, errors.ErrInvalidRequest.WithMessage("room_id is required"))
	}

	var req dto.UtteranceRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	resp, err := h.planner.ProcessUtterance(c.UserContext(), middleware.UserID(c), roomID, req.Text)
	if err != nil {
		h.logger.Debug("Utterance failed",
			zap.String("room_id", roomID),
			zap.Error(err))
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, resp, nil)
}
