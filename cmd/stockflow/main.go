package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"

	"stockflow/internal/config"
	"stockflow/internal/http/handlers"
	applog "stockflow/internal/log"
	"stockflow/internal/repos"
	"stockflow/internal/services"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	// Auth wiring
	userRepo := repos.NewUserRepo(db)
	authSvc := &services.AuthService{Users: userRepo}
	authH := &handlers.AuthHandler{Auth: authSvc}

	// Templates & app
	engine := html.New("./web/templates", ".html")

	app := fiber.New(fiber.Config{
		Views: engine,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	// Attach user to context if logged in (for templates/headers)
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))
	// CSRF guards the login form; the JSON API authenticates by session+role
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok := c.Locals("csrf"); tok != nil {
			c.Locals("CSRFToken", tok.(string))
		}
		return c.Next()
	})

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db)

	// Pages
	app.Get("/", deps.DashboardHandler.Page)

	// Auth routes (login throttled)
	app.Get("/login", authH.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), authH.Login)
	app.Post("/logout", authH.Logout)

	// API
	api := app.Group("/api/v1")

	api.Get("/dashboard", deps.DashboardHandler.Stats)

	api.Get("/products", deps.ProductHandler.List)
	api.Post("/products", handlers.RequireAdmin(authSvc), deps.ProductHandler.Register)
	api.Get("/products/:id", deps.ProductHandler.Get)

	api.Get("/inventory", deps.InventoryHandler.List)
	api.Post("/inventory/adjust", handlers.RequireAdmin(authSvc), deps.InventoryHandler.Adjust)
	api.Post("/inventory/reset", handlers.RequireAdmin(authSvc), deps.InventoryHandler.Reset)
	api.Get("/inventory/:productID", deps.InventoryHandler.Quantity)

	api.Get("/shipments", deps.ShipmentHandler.List)
	api.Post("/shipments", deps.ShipmentHandler.Create)
	api.Patch("/shipments/items/:itemID", deps.ShipmentHandler.UpdateItem)
	api.Delete("/shipments/items/:itemID", deps.ShipmentHandler.RemoveItem)
	api.Get("/shipments/:id", deps.ShipmentHandler.Get)
	api.Delete("/shipments/:id", deps.ShipmentHandler.Delete)
	api.Post("/shipments/:id/items", deps.ShipmentHandler.AddItem)
	api.Post("/shipments/:id/items/batch", deps.ShipmentHandler.AddItemsBatch)
	api.Put("/shipments/:id/status", deps.ShipmentHandler.UpdateStatus)
	api.Get("/shipments/:id/invoice", deps.ShipmentHandler.Invoice)

	api.Get("/orders", deps.OrderHandler.List)
	api.Post("/orders", deps.OrderHandler.Create)
	api.Get("/orders/:id", deps.OrderHandler.Get)
	api.Post("/orders/:id/allocate", deps.OrderHandler.Allocate)
	api.Post("/orders/:id/hold", deps.OrderHandler.Hold)
	api.Post("/orders/:id/resume", deps.OrderHandler.Resume)
	api.Post("/orders/:id/complete", deps.OrderHandler.Complete)
	api.Post("/orders/:id/cancel", deps.OrderHandler.Cancel)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if strings.HasPrefix(c.Path(), "/api/") {
			return c.Status(404).JSON(fiber.Map{"error": "not found"})
		}
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	log.Fatal(app.Listen(":" + cfg.Port))
}
