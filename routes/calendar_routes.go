package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/handlers"
	"github.com/azmoonhq/azmoon_portal/middleware"
)

func CalendarRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	calendar := api.Group("/calendar", middleware.Protected())
	calendar.Get("/student", middleware.StudentRequired(), handlers.StudentCalendar)
	calendar.Get("/instructor", middleware.InstructorRequired(), handlers.InstructorCalendar)
}
