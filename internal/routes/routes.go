package routes

import (
	"time"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/config"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	issuer *auth.SessionIssuer,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	userHandler *handlers.UserHandler,
	projectHandler *handlers.ProjectHandler,
	commentHandler *handlers.CommentHandler,
	invoiceHandler *handlers.InvoiceHandler,
	pageHandler *handlers.PageHandler,
) {
	// Session resolution and the gate run before any handler.
	app.Use(middleware.SessionLoader(issuer, cfg.SessionCookie))
	app.Use(middleware.AccessGate(Classify))
	app.Use(middleware.RequestContext(cfg.RequestTimeout))

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", pageHandler.Home)
	app.Get("/login", pageHandler.Login)
	app.Get("/onboarding", pageHandler.Onboarding)
	app.Get("/dashboard", pageHandler.Dashboard)
	app.Get("/admin", pageHandler.Admin)

	api := app.Group("/api")

	// General API rate limiter: 120 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               120,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached:      tooManyRequests,
	}))

	api.Get("/health", healthHandler.Check)

	// Stricter limit on credential checks
	authGroup := api.Group("/auth")
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:               cfg.LoginRateLimit,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
		LimitReached:      tooManyRequests,
	}), authHandler.Login)
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/me", authHandler.Me)

	adminGroup := api.Group("/admin")
	adminGroup.Get("/users", userHandler.List)
	adminGroup.Post("/users", userHandler.Create)

	projects := api.Group("/projects")
	projects.Get("/", projectHandler.List)
	projects.Post("/", projectHandler.Create)
	projects.Get("/:id", projectHandler.Get)
	projects.Delete("/:id", projectHandler.Delete)
	projects.Patch("/:id/status", projectHandler.ChangeStatus)
	projects.Get("/:id/history", projectHandler.History)
	projects.Get("/:id/comments", commentHandler.List)
	projects.Post("/:id/comments", commentHandler.Add)

	invoices := api.Group("/invoices")
	invoices.Get("/", invoiceHandler.List)
	invoices.Post("/", invoiceHandler.Create)
	invoices.Patch("/:id/status", invoiceHandler.UpdateStatus)
}

func tooManyRequests(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
		Error: true, Code: "rate_limited", Message: "Too many requests",
	})
}
