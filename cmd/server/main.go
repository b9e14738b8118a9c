package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/joho/godotenv"

	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/auth"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/config"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/database"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/dto"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/logging"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/middleware"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/routes"
	"github.com/ahmetcoskunkizilkaya/agency-portal/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// .env is optional; real environment wins.
	_ = godotenv.Load()

	cfg := config.Load()
	console := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	if cfg.SessionSecret == "" {
		slog.Error("SESSION_SECRET environment variable is required")
		os.Exit(1)
	}
	if !cfg.UsesSQLite() && cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(database.DB); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// DB log handler (ERROR+ async batch)
	dbLogHandler := logging.NewDBHandler(database.DB, 5*time.Second)
	slog.SetDefault(slog.New(logging.NewMultiHandler(console, dbLogHandler)))

	// Log cleanup
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cfg.LogRetention, cleanupDone)

	// Services
	issuer := auth.NewSessionIssuer(cfg.SessionSecret, cfg.SessionTTL)
	authService := services.NewAuthService(auth.NewCredentialVerifier(database.DB), issuer)
	userService := services.NewUserService(database.DB)
	projectService := services.NewProjectService(database.DB)
	commentService := services.NewCommentService(database.DB)
	invoiceService := services.NewInvoiceService(database.DB)

	// Bootstrap admin
	if cfg.AdminUsername != "" && cfg.AdminPassword != "" {
		created, err := userService.EnsureAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword)
		if err != nil {
			slog.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("bootstrap admin created", "username", cfg.AdminUsername)
		}
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, handlers.CookieConfig{
		Name:   cfg.SessionCookie,
		Secure: cfg.CookieSecure,
	})
	healthHandler := handlers.NewHealthHandler(database.DB)
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService)
	commentHandler := handlers.NewCommentHandler(commentService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	pageHandler := handlers.NewPageHandler(projectService, userService)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	// Sentry middleware
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.RequestMetrics())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path} | ${locals:requestid}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "same-origin")
		return c.Next()
	})

	// Session, access gate and routes
	routes.Setup(app, cfg, issuer, authHandler, healthHandler, userHandler, projectHandler, commentHandler, invoiceHandler, pageHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port, "db_driver", cfg.DBDriver)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	close(cleanupDone)
	dbLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	// Close database connections
	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.ErrorContext(c.UserContext(), "unhandled server error", "method", c.Method(), "path", c.Path(),
			"request_id", c.Locals("requestid"), "error", err.Error())
		if hub := sentryfiber.GetHubFromContext(c); hub != nil {
			hub.CaptureException(err)
		}
		message = "Internal server error"
	}

	return c.Status(code).JSON(dto.ErrorResponse{
		Error:   true,
		Code:    errorCode(code),
		Message: message,
	})
}

func errorCode(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "not_found"
	case fiber.StatusMethodNotAllowed:
		return "method_not_allowed"
	case fiber.StatusRequestEntityTooLarge:
		return "body_too_large"
	case fiber.StatusTooManyRequests:
		return "rate_limited"
	default:
		if status >= 500 {
			return "internal_error"
		}
		return "bad_request"
	}
}
