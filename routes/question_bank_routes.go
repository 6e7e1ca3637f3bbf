package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/handlers"
	"github.com/azmoonhq/azmoon_portal/middleware"
)

func QuestionBankRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	banks := api.Group("/question-banks", middleware.Protected(), middleware.InstructorRequired())
	banks.Get("", handlers.ListQuestionBanks)
	banks.Post("", handlers.CreateQuestionBank)
	banks.Put("/:bankId", handlers.UpdateQuestionBank)
	banks.Delete("/:bankId", handlers.DeleteQuestionBank)

	banks.Get("/:bankId/questions", handlers.ListBankQuestions)
	banks.Post("/:bankId/questions", handlers.AddQuestion)

	questions := api.Group("/questions", middleware.Protected(), middleware.InstructorRequired())
	questions.Put("/:questionId", handlers.UpdateQuestion)
	questions.Delete("/:questionId", handlers.DeleteQuestion)
}
