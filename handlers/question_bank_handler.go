package handlers

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/azmoonhq/azmoon_portal/database"
	"github.com/azmoonhq/azmoon_portal/middleware"
	"github.com/azmoonhq/azmoon_portal/models"
)

// loadOwnedExam fetches an exam the caller authored. Admins may touch any
// exam.
func loadOwnedExam(c *fiber.Ctx, examID string) (*models.Exam, error) {
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", examID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Exam not found")
	}
	if exam.CreatedByID != currentUserID(c) && !middleware.CurrentRole(c).CanManageUsers() {
		return nil, fiber.NewError(fiber.StatusForbidden, "Not the owner of this exam")
	}
	return &exam, nil
}

// recomputeQuestionCount refreshes the cached question count on the exam.
func recomputeQuestionCount(tx *gorm.DB, examID uuid.UUID) error {
	var count int64
	if err := tx.Model(&models.Question{}).Where("exam_id = ?", examID).Count(&count).Error; err != nil {
		return err
	}
	return tx.Model(&models.Exam{}).Where("id = ?", examID).Update("num_questions", count).Error
}

type BankRequest struct {
	Name string `json:"name" validate:"required"`
}

func ListQuestionBanks(c *fiber.Ctx) error {
	var banks []models.Exam
	query := database.DB.Where("source_exam_id IS NULL AND start_time IS NULL")
	if !middleware.CurrentRole(c).CanManageUsers() {
		query = query.Where("created_by_id = ?", currentUserID(c))
	}
	query.Order("created_at DESC").Find(&banks)
	return c.JSON(banks)
}

func CreateQuestionBank(c *fiber.Ctx) error {
	var req BankRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	bank := models.Exam{
		Name:        req.Name,
		CreatedByID: currentUserID(c),
	}
	if err := database.DB.Create(&bank).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question bank"})
	}
	return c.Status(fiber.StatusCreated).JSON(bank)
}

func UpdateQuestionBank(c *fiber.Ctx) error {
	bank, err := loadOwnedExam(c, c.Params("bankId"))
	if err != nil {
		return err
	}

	var req BankRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	bank.Name = req.Name
	if err := database.DB.Save(bank).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update question bank"})
	}
	return c.JSON(bank)
}

// DeleteQuestionBank removes a bank along with its questions.
func DeleteQuestionBank(c *fiber.Ctx) error {
	bank, err := loadOwnedExam(c, c.Params("bankId"))
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Question{}, "exam_id = ?", bank.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ExamAssignment{}, "exam_id = ?", bank.ID).Error; err != nil {
			return err
		}
		return tx.Delete(bank).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question bank"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type QuestionRequest struct {
	Kind       string                  `json:"kind" validate:"required,oneof=des mcq"`
	Text       string                  `json:"text" validate:"required"`
	Image      *string                 `json:"image"`
	AnswerText string                  `json:"answer_text"`
	Options    []models.QuestionOption `json:"options"`
	// Index into Options of the correct answer; required for mcq.
	CorrectIndex *int `json:"correct_index"`
}

// validateQuestion enforces the authoring invariants before anything is
// persisted: a multiple-choice question needs an in-range correct index and
// at least two options carrying content.
func validateQuestion(req QuestionRequest) string {
	if req.Kind != models.QuestionKindMultipleChoice {
		return ""
	}
	if req.CorrectIndex == nil {
		return "correct_index is required for multiple-choice questions"
	}
	if *req.CorrectIndex < 0 || *req.CorrectIndex >= len(req.Options) {
		return "correct_index is out of range"
	}
	filled := 0
	for _, opt := range req.Options {
		if !opt.Empty() {
			filled++
		}
	}
	if filled < 2 {
		return "at least two options must have text or an image"
	}
	return ""
}

func questionFromRequest(req QuestionRequest, examID uuid.UUID) models.Question {
	question := models.Question{
		ExamID:     examID,
		Kind:       req.Kind,
		Text:       req.Text,
		Image:      req.Image,
		AnswerText: req.AnswerText,
	}
	if req.Kind == models.QuestionKindMultipleChoice {
		raw, _ := json.Marshal(req.Options)
		question.Options = datatypes.JSON(raw)
		question.CorrectIndex = req.CorrectIndex
	}
	return question
}

func AddQuestion(c *fiber.Ctx) error {
	bank, err := loadOwnedExam(c, c.Params("bankId"))
	if err != nil {
		return err
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if msg := validateQuestion(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	question := questionFromRequest(req, bank.ID)
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		return recomputeQuestionCount(tx, bank.ID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create question"})
	}
	return c.Status(fiber.StatusCreated).JSON(question)
}

func ListBankQuestions(c *fiber.Ctx) error {
	bank, err := loadOwnedExam(c, c.Params("bankId"))
	if err != nil {
		return err
	}

	var questions []models.Question
	database.DB.Where("exam_id = ?", bank.ID).Order("created_at ASC").Find(&questions)
	return c.JSON(questions)
}

func UpdateQuestion(c *fiber.Ctx) error {
	var question models.Question
	if err := database.DB.First(&question, "id = ?", c.Params("questionId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if _, err := loadOwnedExam(c, question.ExamID.String()); err != nil {
		return err
	}

	var req QuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if msg := validateQuestion(req); msg != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
	}

	updated := questionFromRequest(req, question.ExamID)
	updated.ID = question.ID
	updated.CreatedAt = question.CreatedAt
	if err := database.DB.Save(&updated).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update question"})
	}
	return c.JSON(updated)
}

func DeleteQuestion(c *fiber.Ctx) error {
	var question models.Question
	if err := database.DB.First(&question, "id = ?", c.Params("questionId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	if _, err := loadOwnedExam(c, question.ExamID.String()); err != nil {
		return err
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&question).Error; err != nil {
			return err
		}
		return recomputeQuestionCount(tx, question.ExamID)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete question"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}
