package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/account-service/internal/api/dto"
	"github.com/spec-kit/account-service/internal/api/http/handlers"
	"github.com/spec-kit/account-service/internal/validation"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Accounts *handlers.AccountsHandler
	Metrics  *handlers.MetricsHandler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics.Snapshot)
	}

	users := app.Group("/api/users")
	users.Post("", validation.Body[dto.CreateAccountRequest](), cfg.Accounts.Create)
	users.Post("/forgotpassword", validation.Body[dto.ForgotPasswordRequest](), cfg.Accounts.ForgotPassword)

	verify := validation.Params[dto.VerifyAccountParams]()
	users.Get("/verify/:id/:verificationCode", verify, cfg.Accounts.Verify)
	users.Post("/verify/:id/:verificationCode", verify, cfg.Accounts.Verify)
}
