package routes

import (
	fiberws "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/handlers"
	"github.com/azmoonhq/azmoon_portal/middleware"
)

func ExamRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	instructor := api.Group("/instructor/exams", middleware.Protected(), middleware.InstructorRequired())
	instructor.Post("", handlers.DefineExam)
	instructor.Get("", handlers.ListMyExams)
	instructor.Put("/:examId", handlers.EditExam)
	instructor.Delete("/:examId", handlers.DeleteExam)

	exams := api.Group("/exams", middleware.Protected(), middleware.StudentRequired())
	exams.Get("", handlers.StudentListExams)
	exams.Get("/:examId/start", handlers.StartExam)
	exams.Post("/:examId/submit", handlers.SubmitExam)
	exams.Get("/:examId/result", handlers.ExamResult)

	student := api.Group("/student", middleware.Protected(), middleware.StudentRequired())
	student.Get("/scores", handlers.StudentScores)
	student.Get("/score-reports", handlers.StudentScoreReports)

	app.Use("/ws/exams/:examId/monitor",
		middleware.Protected(),
		middleware.InstructorRequired(),
		handlers.MonitorUpgrade)
	app.Get("/ws/exams/:examId/monitor", fiberws.New(handlers.MonitorExam()))
}
