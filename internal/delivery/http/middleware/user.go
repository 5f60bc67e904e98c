package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/pkg/utils"
)

const (
	// UserIDHeader - идентификатор вызывающего, проставляется внешним шлюзом аутентификации
	UserIDHeader = "X-User-ID"
	// UserIDKey - ключ в c.Locals
	UserIDKey = "user_id"
)

// RequireUser - отклоняет запросы без X-User-ID
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := strings.TrimSpace(c.Get(UserIDHeader))
		if uid == "" {
			return utils.SendError(c, errors.ErrUnauthorized)
		}
		c.Locals(UserIDKey, uid)
		return c.Next()
	}
}

// UserID - идентификатор вызывающего из контекста запроса
func UserID(c *fiber.Ctx) string {
	uid, _ := c.Locals(UserIDKey).(string)
	return uid
}
