package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/azmoonhq/azmoon_portal/database"
	"github.com/azmoonhq/azmoon_portal/models"
)

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(users)
}

type UpdateRoleRequest struct {
	Role models.Role `json:"role" validate:"required,oneof=student instructor admin"`
}

func UpdateUserRole(c *fiber.Ctx) error {
	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", c.Params("userId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	user.Role = req.Role
	if err := database.DB.Save(&user).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update role"})
	}
	return c.JSON(user)
}

func AdminDeleteUser(c *fiber.Ctx) error {
	userID := c.Params("userId")
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ExamAssignment{}, "student_id = ?", userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.RecoveryCode{}, "user_id = ?", userID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", userID).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminListExams lists every defined instance with its running/finished
// status and participation counts.
func AdminListExams(c *fiber.Ctx) error {
	var exams []models.Exam
	err := database.DB.
		Preload("CreatedBy").
		Where("source_exam_id IS NOT NULL OR start_time IS NOT NULL").
		Order("created_at DESC").
		Find(&exams).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	now := time.Now()
	completedCount := 0

	type examEntry struct {
		models.Exam
		IsCompleted    bool   `json:"is_completed"`
		InstructorName string `json:"instructor_name"`
		StudentCount   int64  `json:"student_count"`
	}
	entries := make([]examEntry, 0, len(exams))
	for _, exam := range exams {
		entry := examEntry{
			Exam:           exam,
			IsCompleted:    exam.WindowClosed(now),
			InstructorName: exam.CreatedBy.FullName(),
		}
		database.DB.Table("exam_students").Where("exam_id = ?", exam.ID).Count(&entry.StudentCount)
		if entry.IsCompleted {
			completedCount++
		}
		entries = append(entries, entry)
	}

	return c.JSON(fiber.Map{
		"total_count":         len(entries),
		"completed_count":     completedCount,
		"not_completed_count": len(entries) - completedCount,
		"exams":               entries,
	})
}

type AdminEditExamRequest struct {
	EditExamRequest
	StudentIDs []string `json:"student_ids"`
}

// AdminEditExam updates naming, timing and the roster. Timing edits share the
// instructor path's validation. Roster changes keep assignments in sync:
// missing ones are materialized with the full bank order, removed students
// lose theirs.
func AdminEditExam(c *fiber.Ctx) error {
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", c.Params("examId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	var req AdminEditExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := applyExamTiming(&exam, req.EditExamRequest); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&exam).Error; err != nil {
			return err
		}
		if req.StudentIDs == nil {
			return nil
		}

		var students []*models.User
		if err := tx.Where("id IN ?", req.StudentIDs).Find(&students).Error; err != nil {
			return err
		}
		if err := tx.Model(&exam).Association("Students").Replace(students); err != nil {
			return err
		}

		ids, err := bankQuestionIDs(tx, &exam)
		if err != nil {
			return err
		}
		svc := assignmentService(tx)
		keep := make([]uuid.UUID, 0, len(students))
		for _, student := range students {
			if _, err := svc.EnsureAssignment(exam.ID, student.ID, ids); err != nil {
				return err
			}
			keep = append(keep, student.ID)
		}
		return tx.Where("exam_id = ? AND student_id NOT IN ?", exam.ID, keep).
			Delete(&models.ExamAssignment{}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update exam"})
	}
	return c.JSON(exam)
}

// AdminDeleteExam removes an exam with its questions and assignments.
func AdminDeleteExam(c *fiber.Ctx) error {
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", c.Params("examId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ExamAssignment{}, "exam_id = ?", exam.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Question{}, "exam_id = ?", exam.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&exam).Association("Students").Clear(); err != nil {
			return err
		}
		return tx.Delete(&exam).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete exam"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// AdminListClasses shows every classroom, exam rooms included.
func AdminListClasses(c *fiber.Ctx) error {
	var classrooms []models.Classroom
	err := database.DB.
		Preload("Instructor").
		Preload("Students").
		Order("created_at DESC").
		Find(&classrooms).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(classrooms)
}

type AdminEditClassRequest struct {
	Name         string   `json:"name" validate:"required"`
	InstructorID string   `json:"instructor_id" validate:"required,uuid"`
	StudentIDs   []string `json:"student_ids"`
	// Staging classes are hidden from instructor and student listings.
	IsStaging *bool `json:"is_staging"`
}

func AdminEditClass(c *fiber.Ctx) error {
	var req AdminEditClassRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	instructorID, _ := uuid.Parse(req.InstructorID)

	var classroom models.Classroom
	classID := c.Params("classId")
	if classID != "" {
		if err := database.DB.First(&classroom, "id = ?", classID).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Classroom not found"})
		}
	}
	classroom.Name = req.Name
	classroom.InstructorID = instructorID
	if req.IsStaging != nil {
		classroom.IsStaging = *req.IsStaging
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&classroom).Error; err != nil {
			return err
		}
		if req.StudentIDs == nil {
			return nil
		}
		var students []*models.User
		if err := tx.Where("id IN ?", req.StudentIDs).Find(&students).Error; err != nil {
			return err
		}
		return tx.Model(&classroom).Association("Students").Replace(students)
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save classroom"})
	}
	return c.JSON(classroom)
}
