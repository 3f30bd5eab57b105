package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the Fiber app with the service's middleware, centralized error
// handler and health endpoint. Routes are added by RegisterRoutes.
//
// corsOrigins is a comma separated origin list; empty allows any origin.
func NewApp(corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "crop-recommendation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Long enough for a full fetch timeout plus scoring.
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: "GET,POST,HEAD",
		AllowHeaders: "Origin,Content-Type,Accept",
		MaxAge:       300,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "crop-recommendation",
		})
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
