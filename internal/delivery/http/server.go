package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/trip-planner/internal/config"
	"github.com/trip-planner/internal/delivery/http/handler"
	"github.com/trip-planner/internal/delivery/http/middleware"
	"github.com/trip-planner/internal/pkg/errors"
	"github.com/trip-planner/internal/pkg/utils"
)

const healthTimeout = 2 * time.Second

// HealthChecker - зависимость, проверяемая в /health
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handlers - обработчики API
type Handlers struct {
	Planner         *handler.PlannerHandler
	Plans           *handler.PlanHandler
	Recommendations *handler.RecommendationHandler
	Preferences     *handler.PreferenceHandler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app      *fiber.App
	config   *config.Config
	logger   *zap.Logger
	handlers Handlers
	checks   map[string]HealthChecker
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	handlers Handlers,
	checks map[string]HealthChecker,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Trip Planner",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:      app,
		config:   cfg,
		logger:   logger,
		handlers: handlers,
		checks:   checks,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// App - fiber приложение, используется в тестах через app.Test
func (s *Server) App() *fiber.App {
	return s.app
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// setupRoutes - настройка маршрутов
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	api := s.app.Group("/api/v1")

	// Health check без идентификации
	api.Get("/health", s.health)

	api.Use(middleware.RequireUser())

	// Planner
	api.Post("/rooms/:room_id/utterances", s.handlers.Planner.ProcessUtterance)

	// Plans
	api.Post("/plans", s.handlers.Plans.CreatePlan)
	api.Get("/plans/:id", s.handlers.Plans.GetPlan)
	api.Delete("/plans/:id", s.handlers.Plans.DeletePlan)
	api.Put("/plans/:id/destinations", s.handlers.Plans.ReplaceDestinations)
	api.Post("/plans/:id/members", s.handlers.Plans.AddMember)
	api.Get("/plans/:id/validation", s.handlers.Plans.ValidatePlan)
	api.Post("/plans/:id/distribute", s.handlers.Plans.DistributePlan)

	// Recommendations
	api.Get("/users/:id/recommendations", s.handlers.Recommendations.ForUser)
	api.Post("/users/:id/rerank", s.handlers.Recommendations.Rerank)
	api.Get("/clusters/:id/recommendations", s.handlers.Recommendations.ClusterHybrid)

	// Preferences
	api.Put("/users/:id/preferences", s.handlers.Preferences.SavePreferences)
	api.Get("/users/:id/preferences", s.handlers.Preferences.GetPreferences)
	api.Post("/users/:id/activities", s.handlers.Preferences.RecordActivity)
}

// health godoc
// @Summary Health check
// @Tags system
// @Produce json
// @Success 200 {object} utils.SuccessResponse
// @Failure 503 {object} utils.ErrorResponse
// @Router /health [get]
func (s *Server) health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
	defer cancel()

	deps := make(map[string]string, len(s.checks))
	var failed []string
	for name, check := range s.checks {
		if err := check.Health(ctx); err != nil {
			s.logger.Warn("Health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = "unavailable"
			failed = append(failed, name)
			continue
		}
		deps[name] = "ok"
	}

	if len(failed) > 0 {
		return utils.SendError(c, errors.ErrServiceUnavailable.WithDetails(map[string]interface{}{
			"dependencies": deps,
		}))
	}

	return utils.SendSuccess(c, fiber.Map{
		"status":       "healthy",
		"time":         time.Now(),
		"dependencies": deps,
	}, nil)
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - кастомный обработчик ошибок
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := err.(*fiber.Error); ok {
			if e.Code >= fiber.StatusInternalServerError {
				logger.Error("HTTP Error",
					zap.String("path", c.Path()),
					zap.Int("status", e.Code),
					zap.Error(err),
				)
			}
			return c.Status(e.Code).JSON(utils.ErrorResponse{
				Error: errors.New(fiberCode(e.Code), e.Message, e.Code),
			})
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}

func fiberCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return errors.CodeNotFound
	case fiber.StatusMethodNotAllowed, fiber.StatusBadRequest, fiber.StatusRequestEntityTooLarge:
		return errors.CodeInvalidInput
	case fiber.StatusServiceUnavailable:
		return errors.CodeServiceUnavailable
	default:
		return errors.CodeInternal
	}
}
