package handlers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/azmoonhq/azmoon_portal/database"
	"github.com/azmoonhq/azmoon_portal/middleware"
	"github.com/azmoonhq/azmoon_portal/models"
)

// loadOwnedClassroom fetches a classroom the caller teaches; admins may
// touch any.
func loadOwnedClassroom(c *fiber.Ctx, classID string) (*models.Classroom, error) {
	var classroom models.Classroom
	if err := database.DB.Preload("Students").First(&classroom, "id = ?", classID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Classroom not found")
	}
	if classroom.InstructorID != currentUserID(c) && !middleware.CurrentRole(c).CanManageUsers() {
		return nil, fiber.NewError(fiber.StatusForbidden, "Not the instructor of this classroom")
	}
	return &classroom, nil
}

// ListClassrooms lists the instructor's regular classes; auto-created exam
// rooms are hidden.
func ListClassrooms(c *fiber.Ctx) error {
	var classrooms []models.Classroom
	query := database.DB.Preload("Students").Where("is_exam_room = false AND is_staging = false")
	if !middleware.CurrentRole(c).CanManageUsers() {
		query = query.Where("instructor_id = ?", currentUserID(c))
	}
	query.Order("created_at DESC").Find(&classrooms)
	return c.JSON(classrooms)
}

type ClassroomRequest struct {
	Name string `json:"name" validate:"required"`
}

func CreateClassroom(c *fiber.Ctx) error {
	var req ClassroomRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classroom := models.Classroom{
		Name:         req.Name,
		InstructorID: currentUserID(c),
	}
	if err := database.DB.Create(&classroom).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create classroom"})
	}
	return c.Status(fiber.StatusCreated).JSON(classroom)
}

// ListStudents lists every student account for roster building.
func ListStudents(c *fiber.Ctx) error {
	var students []models.User
	if err := database.DB.Where("role = ?", models.RoleStudent).Order("last_name ASC").Find(&students).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(students)
}

type ToggleMemberRequest struct {
	ClassroomID string `json:"classroom_id" validate:"required,uuid"`
	StudentID   string `json:"student_id" validate:"required,uuid"`
}

// ToggleClassroomMember adds the student to the roster, or removes them if
// already present.
func ToggleClassroomMember(c *fiber.Ctx) error {
	var req ToggleMemberRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	classroom, err := loadOwnedClassroom(c, req.ClassroomID)
	if err != nil {
		return err
	}

	var student models.User
	if err := database.DB.First(&student, "id = ? AND role = ?", req.StudentID, models.RoleStudent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	enrolled := false
	for _, member := range classroom.Students {
		if member.ID == student.ID {
			enrolled = true
			break
		}
	}

	var assocErr error
	if enrolled {
		assocErr = database.DB.Model(classroom).Association("Students").Delete(&student)
	} else {
		assocErr = database.DB.Model(classroom).Association("Students").Append(&student)
	}
	if assocErr != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update roster"})
	}

	return c.JSON(fiber.Map{"enrolled": !enrolled})
}

func RemoveClassroomStudent(c *fiber.Ctx) error {
	classroom, err := loadOwnedClassroom(c, c.Params("classId"))
	if err != nil {
		return err
	}

	var student models.User
	if err := database.DB.First(&student, "id = ?", c.Params("studentId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	if err := database.DB.Model(classroom).Association("Students").Delete(&student); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to remove student"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StudentListClasses lists the classes the authenticated student belongs to.
func StudentListClasses(c *fiber.Ctx) error {
	var classrooms []models.Classroom
	err := database.DB.
		Preload("Instructor").
		Joins("JOIN classroom_students ON classroom_students.classroom_id = classrooms.id").
		Where("classroom_students.user_id = ? AND is_exam_room = false AND is_staging = false", currentUserID(c)).
		Find(&classrooms).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	return c.JSON(classrooms)
}
