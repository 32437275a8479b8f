package api

import (
	"errors"

	"expensero/docs"
	"expensero/internal/api/handlers"
	"expensero/pkg/auth"
	"expensero/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"go.uber.org/zap"
)

// bodyLimit sits well above the 10 MiB upload cap so the extract handler,
// not the transport, is the one rejecting oversized files with a clear
// message. Requests that still exceed it get the same message via the
// error handler below.
const bodyLimit = 32 * 1024 * 1024

func SetupRouter(
	authHandler *handlers.AuthHandler,
	extractHandler *handlers.ExtractHandler,
	expenseHandler *handlers.ExpenseHandler,
	jwtManager *auth.JWTManager,
	appLogger *zap.Logger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, fiber.ErrRequestEntityTooLarge) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": handlers.MsgFileTooLarge,
				})
			}
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error": err.Error(),
			})
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PATCH,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-Client-Info,Apikey",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo // importing docs registers the swagger doc via init()
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	v1 := app.Group("/api/v1")

	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.RefreshToken)

	protected := v1.Group("", middleware.AuthMiddleware(jwtManager, appLogger))

	expenses := protected.Group("/expenses")
	expenses.Post("/extract", extractHandler.Extract)
	expenses.Post("", expenseHandler.Create)
	expenses.Get("", expenseHandler.List)
	expenses.Get("/summary", expenseHandler.Summary)
	expenses.Patch("/:id/status", expenseHandler.UpdateStatus)

	return app
}
