package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/handlers"
	"github.com/azmoonhq/azmoon_portal/middleware"
)

func ReportRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	instructor := api.Group("/instructor", middleware.Protected(), middleware.InstructorRequired())
	instructor.Get("/exams/:examId/report", handlers.InstructorExamReport)

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/exams/:examId/report", handlers.AdminExamReport)
}
