package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/handlers"
	"github.com/azmoonhq/azmoon_portal/middleware"
)

func ClassroomRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	classrooms := api.Group("/classrooms", middleware.Protected(), middleware.InstructorRequired())
	classrooms.Get("", handlers.ListClassrooms)
	classrooms.Post("", handlers.CreateClassroom)
	classrooms.Post("/toggle-member", handlers.ToggleClassroomMember)
	classrooms.Delete("/:classId/students/:studentId", handlers.RemoveClassroomStudent)

	api.Get("/students", middleware.Protected(), middleware.InstructorRequired(), handlers.ListStudents)
	api.Get("/my-classes", middleware.Protected(), middleware.StudentRequired(), handlers.StudentListClasses)
}
