package handlers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/database"
	"github.com/azmoonhq/azmoon_portal/models"
	"github.com/azmoonhq/azmoon_portal/utils"
)

type calendarEvent struct {
	Title      string `json:"title"`
	Start      string `json:"start"`
	JalaliDate string `json:"jalali_date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	Color      string `json:"color"`
	URL        string `json:"url"`
}

func examEvent(exam models.Exam, now time.Time) (calendarEvent, bool) {
	if exam.StartTime == nil {
		return calendarEvent{}, false
	}

	var status, color string
	switch {
	case exam.WindowClosed(now):
		status, color = "finished", "#ef4444"
	case exam.NotYetOpen(now):
		status, color = "pending", "#22c55e"
	default:
		status, color = "active", "#3b82f6"
	}

	url := "#"
	if status == "active" {
		url = fmt.Sprintf("/api/v1/exams/%s/start", exam.ID)
	}

	return calendarEvent{
		Title:      exam.Name,
		Start:      exam.StartTime.Format(time.RFC3339),
		JalaliDate: utils.FormatJalaliDate(*exam.StartTime),
		Time:       exam.StartTime.Format("15:04"),
		Status:     status,
		Color:      color,
		URL:        url,
	}, true
}

// StudentCalendar feeds the student's calendar with their assigned exams.
func StudentCalendar(c *fiber.Ctx) error {
	var assignments []models.ExamAssignment
	err := database.DB.
		Preload("Exam").
		Where("student_id = ?", currentUserID(c)).
		Find(&assignments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	now := time.Now()
	events := make([]calendarEvent, 0, len(assignments))
	for _, a := range assignments {
		if event, ok := examEvent(a.Exam, now); ok {
			events = append(events, event)
		}
	}
	return c.JSON(fiber.Map{"events": events})
}

// InstructorCalendar feeds the instructor's calendar with the exams they
// defined.
func InstructorCalendar(c *fiber.Ctx) error {
	var exams []models.Exam
	err := database.DB.
		Where("created_by_id = ? AND start_time IS NOT NULL", currentUserID(c)).
		Find(&exams).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	now := time.Now()
	events := make([]calendarEvent, 0, len(exams))
	for _, exam := range exams {
		if event, ok := examEvent(exam, now); ok {
			events = append(events, event)
		}
	}
	return c.JSON(fiber.Map{"events": events})
}
