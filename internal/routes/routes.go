package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rideway/rideway/internal/auth"
	"github.com/rideway/rideway/internal/config"
	"github.com/rideway/rideway/internal/geo"
	"github.com/rideway/rideway/internal/identity"
	"github.com/rideway/rideway/internal/mailer"
	"github.com/rideway/rideway/internal/middleware"
	"github.com/rideway/rideway/internal/product"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDevelopment() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cfg.SMTPHost == "" {
			return fmt.Errorf("SMTP_HOST is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))

	// Health
	RegisterHealthRoutes(app, d)

	// Stores
	var repo identity.Repository
	var productRepo product.Repository
	if d.DB != nil {
		repo = identity.NewPostgresRepository(d.DB)
		productRepo = product.NewPostgresRepository(d.DB)
	} else {
		repo = identity.NewMemoryRepository()
		productRepo = product.NewMemoryRepository()
	}

	// Mail delivery: real SMTP when configured, log previews otherwise.
	var transport mailer.Transport
	if d.Cfg.SMTPHost != "" {
		transport = mailer.NewSMTPTransport(d.Cfg.SMTPHost, d.Cfg.SMTPPort, d.Cfg.SMTPUser, d.Cfg.SMTPPass, d.Cfg.SMTPFrom)
	} else {
		transport = mailer.NewLogTransport(d.Logger)
	}
	var cooldown mailer.Cooldown
	if d.Cache != nil {
		cooldown = mailer.NewRedisCooldown(d.Cache)
	} else {
		cooldown = mailer.NewMemoryCooldown()
	}
	mail := mailer.NewService(transport, cooldown, d.Cfg.OTPResendCooldown, d.Logger)

	// Services and handlers
	restrictor := geo.NewRestrictor(d.Cfg.RestrictedCountries, d.Logger)
	lookup := geo.NewIPAPIClient()
	tokens := auth.NewTokenIssuer(d.Cfg.JWTSecret, d.Cfg.JWTExpiry)
	authSvc := auth.NewService(repo, mail, restrictor, lookup, tokens, auth.ServiceConfig{
		OTPLength:   d.Cfg.OTPLength,
		OTPExpiry:   d.Cfg.OTPExpiry,
		Development: d.Cfg.IsDevelopment(),
	}, d.Logger)
	authHandler := auth.NewHandler(authSvc, d.Logger)
	profileHandler := identity.NewHandler(identity.NewService(repo))
	productHandler := product.NewHandler(product.NewService(productRepo))

	// API routes
	apiGroup := app.Group("/api/v1")
	apiGroup.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	rateLimiter := middleware.LoginRateLimit(d.Cache, 5)
	RegisterAuthRoutes(apiGroup, authHandler, rateLimiter)

	// Protected routes
	authGuard := middleware.AuthRequired(tokens, repo)
	RegisterUserRoutes(apiGroup, profileHandler, authGuard)
	RegisterProductRoutes(apiGroup, productHandler, authGuard)

	return nil
}
