package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// CORS - origins через запятую; "*" (или пусто) выключает credentials
func CORS(origins string) fiber.Handler {
	origins = strings.TrimSpace(origins)
	wildcard := origins == "" || origins == "*"
	if wildcard {
		origins = "*"
	}

	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     strings.Join([]string{"Content-Type", "Accept", "Accept-Language", UserIDHeader}, ","),
		ExposeHeaders:    "Content-Length",
		AllowCredentials: !wildcard,
		MaxAge:           600,
	})
}
