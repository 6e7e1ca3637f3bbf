package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/handlers"
	"github.com/azmoonhq/azmoon_portal/middleware"
)

func UploadRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	uploads := api.Group("/uploads", middleware.Protected(), middleware.InstructorRequired())
	uploads.Post("/question-image", handlers.UploadQuestionImage)
	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
