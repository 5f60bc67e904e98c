package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/trip-planner/internal/delivery/http/middleware"
	"github.com/trip-planner/internal/pkg/errors"
)

const defaultRecommendationK = 10

func planIDParam(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, errors.ErrInvalidRequest.WithMessage("invalid plan id %q", c.Params("id"))
	}
	return id, nil
}

// selfParam - :id пути должен совпадать с вызывающим
func selfParam(c *fiber.Ctx) (string, error) {
	userID := c.Params("id")
	if userID == "" || userID != middleware.UserID(c) {
		return "", errors.ErrNotSelf
	}
	return userID, nil
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errors.ErrInvalidRequest.WithMessage("Invalid request body")
	}
	return nil
}
