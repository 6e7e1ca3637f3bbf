package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/handlers"
	"github.com/azmoonhq/azmoon_portal/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	users := admin.Group("/users")
	users.Get("", handlers.GetAllUsers)
	users.Put("/:userId/role", handlers.UpdateUserRole)
	users.Delete("/:userId", handlers.AdminDeleteUser)

	exams := admin.Group("/exams")
	exams.Get("", handlers.AdminListExams)
	exams.Put("/:examId", handlers.AdminEditExam)
	exams.Delete("/:examId", handlers.AdminDeleteExam)

	classes := admin.Group("/classes")
	classes.Get("", handlers.AdminListClasses)
	classes.Post("", handlers.AdminEditClass)
	classes.Put("/:classId", handlers.AdminEditClass)
}
