package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/metrics"
	"storefront/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	// Optional file logging
	logOut := io.Writer(os.Stdout)
	if cfg.LogFile != "" {
		f, ferr := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if ferr != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, ferr)
		} else {
			logOut = io.MultiWriter(os.Stdout, f)
		}
	}
	applog.Setup(logOut, cfg.LogLevel)

	st, err := store.Open(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer st.Close()
	if err := st.Seed(); err != nil {
		log.Fatal(err)
	}

	deps := handlers.NewDeps(st, cache.New(cfg.CacheTTL), metrics.New(), cfg.BcryptCost)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"success": false,
				"message": "Something went wrong. Please try again.",
			})
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return p == "/healthz" || strings.HasPrefix(p, "/metrics")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.limit.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Rate limit exceeded, retry soon",
			})
		},
	}))

	// ---------- Routes ----------
	api := app.Group("/api/v1")

	// Auth (login throttled separately)
	auth := api.Group("/auth")
	auth.Post("/register", deps.AuthHandler.Register)
	auth.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"success": false,
				"message": "Too many attempts. Please try again later.",
			})
		},
	}), deps.AuthHandler.Login)
	auth.Post("/logout", deps.AuthHandler.Logout)
	auth.Get("/me", handlers.RequireUser(deps.Auth), deps.AuthHandler.Me)

	// Catalog (public, read only)
	api.Get("/categories", deps.CategoryHandler.List)
	api.Get("/categories/with-products", deps.CategoryHandler.WithProducts)
	api.Get("/categories/name/:name", deps.CategoryHandler.ByName)
	api.Get("/categories/:id", deps.CategoryHandler.Get)

	api.Get("/products", deps.ProductHandler.List)
	api.Get("/products/active", deps.ProductHandler.Active)
	api.Get("/products/name/:name", deps.ProductHandler.ByName)
	api.Get("/products/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.ProductHandler.Search)
	api.Get("/products/category/:id", deps.ProductHandler.ByCategory)
	api.Get("/products/:id", deps.ProductHandler.Get)
	api.Get("/products/:id/availability", deps.ProductHandler.Availability)

	// Orders (logged-in users)
	orders := api.Group("/orders", handlers.RequireUser(deps.Auth))
	orders.Post("/", deps.OrderHandler.Create)
	orders.Get("/", deps.OrderHandler.List)
	orders.Get("/:ref", deps.OrderHandler.Get)
	orders.Post("/:id/cancel", deps.OrderHandler.Cancel)

	// Admin
	admin := api.Group("/admin", handlers.RequireAdmin(deps.Auth))
	admin.Get("/orders", deps.OrderHandler.ListLatest)
	admin.Patch("/orders/:id/status", deps.OrderHandler.UpdateStatus)
	admin.Post("/products", deps.ProductHandler.Create)
	admin.Put("/products/:id", deps.ProductHandler.Update)
	admin.Delete("/products/:id", deps.ProductHandler.Delete)
	admin.Delete("/products/:id/permanent", deps.ProductHandler.HardDelete)
	admin.Get("/users", deps.AuthHandler.ListUsers)
	admin.Post("/categories", deps.CategoryHandler.Create)
	admin.Put("/categories/:id", deps.CategoryHandler.Update)
	admin.Delete("/categories/:id", deps.CategoryHandler.Delete)

	// Health & metrics
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// JSON 404 fallback
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Resource not found",
		})
	})

	log.Fatal(app.Listen(cfg.Addr))
}
