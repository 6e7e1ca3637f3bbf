package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/handlers"
	"github.com/azmoonhq/azmoon_portal/middleware"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)
	auth.Post("/password-reset", handlers.RequestPasswordReset)
	auth.Post("/password-reset-code", handlers.ResetWithRecoveryCode)

	auth.Post("/recovery-codes", middleware.Protected(), handlers.GenerateRecoveryCodes)
}
