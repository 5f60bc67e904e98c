package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/pkg/utils"
	"github.com/trip-planner/internal/pkg/validator"
	"github.com/trip-planner/internal/usecase/dto"
)

// PreferenceHandler - предпочтения и активность пользователя
type PreferenceHandler struct {
	prefs  PreferenceService
	logger *zap.Logger
}

// NewPreferenceHandler - создание нового PreferenceHandler
func NewPreferenceHandler(prefs PreferenceService, logger *zap.Logger) *PreferenceHandler {
	return &PreferenceHandler{
		prefs:  prefs,
		logger: logger,
	}
}

// SavePreferences godoc
// @Summary Save travel preferences
// @Description Stores the profile and re-encodes the preference embedding
// @Tags users
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "User id"
// @Param request body dto.PreferenceRequest true "Preferences"
// @Success 200 {object} utils.SuccessResponse{data=domain.UserPreference}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /users/{id}/preferences [put]
func (h *PreferenceHandler) SavePreferences(c *fiber.Ctx) error {
	userID, err := selfParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.PreferenceRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	pref, err := h.prefs.Save(c.UserContext(), userID, req)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, pref, nil)
}

// GetPreferences godoc
// @Summary Get travel preferences
// @Tags users
// @Produce json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "User id"
// @Success 200 {object} utils.SuccessResponse{data=domain.UserPreference}
// @Failure 403 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /users/{id}/preferences [get]
func (h *PreferenceHandler) GetPreferences(c *fiber.Ctx) error {
	userID, err := selfParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	pref, err := h.prefs.Get(c.UserContext(), userID)
	if err != nil {
		return utils.SendError(c, err)
	}

	return utils.SendSuccess(c, pref, nil)
}

// RecordActivity godoc
// @Summary Record a save, review or search of a destination
// @Tags users
// @Accept json
// @Param X-User-ID header string true "Caller id"
// @Param id path string true "User id"
// @Param request body dto.ActivityRequest true "Activity"
// @Success 204
// @Failure 400 {object} utils.ErrorResponse
// @Failure 403 {object} utils.ErrorResponse
// @Router /users/{id}/activities [post]
func (h *PreferenceHandler) RecordActivity(c *fiber.Ctx) error {
	userID, err := selfParam(c)
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.ActivityRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, err)
	}

	if err := h.prefs.RecordActivity(c.UserContext(), userID, req); err != nil {
		return utils.SendError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
