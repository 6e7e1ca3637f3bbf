package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/azmoonhq/azmoon_portal/database"
	"github.com/azmoonhq/azmoon_portal/models"
	"github.com/azmoonhq/azmoon_portal/services"
	"github.com/azmoonhq/azmoon_portal/websocket"
)

// assignmentService wires the lifecycle service over the given DB handle so
// definition-time batch assignment can run inside a transaction.
func assignmentService(db *gorm.DB) *services.AssignmentService {
	return services.NewAssignmentService(database.NewAssignmentStore(db))
}

// bankQuestionIDs returns the exam's own question ids in authoring order,
// falling back to the source bank for instances that carry no questions of
// their own.
func bankQuestionIDs(db *gorm.DB, exam *models.Exam) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := db.Model(&models.Question{}).
		Where("exam_id = ?", exam.ID).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 && exam.SourceExamID != nil {
		err = db.Model(&models.Question{}).
			Where("exam_id = ?", *exam.SourceExamID).
			Order("created_at ASC").
			Pluck("id", &ids).Error
		if err != nil {
			return nil, err
		}
	}
	return ids, nil
}

// questionsInOrder loads questions and returns them in the assignment's
// personalized order.
func questionsInOrder(db *gorm.DB, ids []uuid.UUID) ([]models.Question, error) {
	if len(ids) == 0 {
		return []models.Question{}, nil
	}
	var questions []models.Question
	if err := db.Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}
	ordered := make([]models.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}
	return ordered, nil
}

type DefineExamRequest struct {
	Name        string `json:"name" validate:"required"`
	BankID      string `json:"bank_id" validate:"required,uuid"`
	ClassroomID string `json:"classroom_id" validate:"required,uuid"`
	// 0 means every question in the bank.
	QuestionCount     int     `json:"question_count" validate:"gte=0"`
	DurationMinutes   int     `json:"duration_minutes" validate:"required,gt=0"`
	StartTime         string  `json:"start_time" validate:"required"`
	EndTime           *string `json:"end_time"`
	ShufflePerStudent *bool   `json:"shuffle_per_student"`
}

// DefineExam derives a scheduled instance from a question bank and eagerly
// materializes one assignment per enrolled student, each with its own
// independently sampled question order.
func DefineExam(c *fiber.Ctx) error {
	var req DefineExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	bank, err := loadOwnedExam(c, req.BankID)
	if err != nil {
		return err
	}

	var classroom models.Classroom
	if err := database.DB.Preload("Students").First(&classroom, "id = ?", req.ClassroomID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Classroom not found"})
	}

	startTime, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start_time must be RFC3339"})
	}
	endTime := startTime.Add(time.Duration(req.DurationMinutes) * time.Minute)
	if req.EndTime != nil {
		endTime, err = time.Parse(time.RFC3339, *req.EndTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be RFC3339"})
		}
		if endTime.Before(startTime.Add(time.Duration(req.DurationMinutes) * time.Minute)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "end_time must be at least start_time plus the duration"})
		}
	}

	ids, err := bankQuestionIDs(database.DB, bank)
	if err != nil || len(ids) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Question bank is empty"})
	}

	shuffle := true
	if req.ShufflePerStudent != nil {
		shuffle = *req.ShufflePerStudent
	}

	questionCount := req.QuestionCount
	if questionCount == 0 || questionCount > len(ids) {
		questionCount = len(ids)
	}

	var exam models.Exam
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		// Each instance gets its own hidden exam room so later roster edits
		// never touch the source classroom.
		examRoom := models.Classroom{
			Name:         req.Name,
			InstructorID: currentUserID(c),
			IsExamRoom:   true,
			Students:     classroom.Students,
		}
		if err := tx.Create(&examRoom).Error; err != nil {
			return err
		}

		exam = models.Exam{
			Name:              req.Name,
			ClassroomID:       &examRoom.ID,
			NumQuestions:      questionCount,
			CreatedByID:       currentUserID(c),
			SourceExamID:      &bank.ID,
			ShufflePerStudent: shuffle,
			Duration:          req.DurationMinutes,
			StartTime:         &startTime,
			EndTime:           &endTime,
			Students:          classroom.Students,
		}
		if err := tx.Create(&exam).Error; err != nil {
			return err
		}

		svc := assignmentService(tx)
		rng := services.NewExamRand()
		for _, student := range classroom.Students {
			selected := ids
			if shuffle {
				selected = services.SampleQuestionIDs(ids, questionCount, rng)
			} else if questionCount < len(ids) {
				selected = ids[:questionCount]
			}
			if _, err := svc.EnsureAssignment(exam.ID, student.ID, selected); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to define exam"})
	}

	return c.Status(fiber.StatusCreated).JSON(exam)
}

// ListMyExams lists the instances the instructor has defined.
func ListMyExams(c *fiber.Ctx) error {
	var exams []models.Exam
	database.DB.
		Where("created_by_id = ? AND source_exam_id IS NOT NULL", currentUserID(c)).
		Order("created_at DESC").
		Find(&exams)
	return c.JSON(exams)
}

type EditExamRequest struct {
	Name            string  `json:"name"`
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	DurationMinutes *int    `json:"duration_minutes"`
}

// applyExamTiming folds optional naming and timing edits into the exam. An
// empty timestamp string clears that bound. The window must stay at least as
// long as the duration. Instructor and admin edits both go through here.
func applyExamTiming(exam *models.Exam, req EditExamRequest) error {
	if req.Name != "" {
		exam.Name = req.Name
	}
	if req.StartTime != nil {
		if *req.StartTime == "" {
			exam.StartTime = nil
		} else {
			t, err := time.Parse(time.RFC3339, *req.StartTime)
			if err != nil {
				return errors.New("start_time must be RFC3339")
			}
			exam.StartTime = &t
		}
	}
	if req.EndTime != nil {
		if *req.EndTime == "" {
			exam.EndTime = nil
		} else {
			t, err := time.Parse(time.RFC3339, *req.EndTime)
			if err != nil {
				return errors.New("end_time must be RFC3339")
			}
			exam.EndTime = &t
		}
	}
	if req.DurationMinutes != nil && *req.DurationMinutes > 0 {
		exam.Duration = *req.DurationMinutes
	}
	if exam.StartTime != nil && exam.EndTime != nil &&
		exam.EndTime.Before(exam.StartTime.Add(time.Duration(exam.Duration)*time.Minute)) {
		return errors.New("end_time must be at least start_time plus the duration")
	}
	return nil
}

// EditExam lets the defining instructor adjust naming and timing of an
// instance they own.
func EditExam(c *fiber.Ctx) error {
	exam, err := loadOwnedExam(c, c.Params("examId"))
	if err != nil {
		return err
	}

	var req EditExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := applyExamTiming(exam, req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := database.DB.Save(exam).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update exam"})
	}
	return c.JSON(exam)
}

// DeleteExam removes an instance the instructor owns, cascading to its
// questions and assignments.
func DeleteExam(c *fiber.Ctx) error {
	exam, err := loadOwnedExam(c, c.Params("examId"))
	if err != nil {
		return err
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ExamAssignment{}, "exam_id = ?", exam.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Question{}, "exam_id = ?", exam.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(exam).Association("Students").Clear(); err != nil {
			return err
		}
		return tx.Delete(exam).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete exam"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// StudentListExams lists the exams assigned to the authenticated student.
func StudentListExams(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var exams []models.Exam
	err := database.DB.
		Joins("JOIN exam_students ON exam_students.exam_id = exams.id").
		Where("exam_students.user_id = ?", studentID).
		Order("start_time ASC").
		Find(&exams).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	type examEntry struct {
		models.Exam
		Completed bool     `json:"completed"`
		Score20   *float64 `json:"score_20"`
	}
	entries := make([]examEntry, 0, len(exams))
	for _, exam := range exams {
		entry := examEntry{Exam: exam}
		var assignment models.ExamAssignment
		if err := database.DB.First(&assignment, "exam_id = ? AND student_id = ?", exam.ID, studentID).Error; err == nil {
			entry.Completed = assignment.Completed()
			if assignment.Score != nil {
				rescaled := services.RescaleScore(*assignment.Score)
				entry.Score20 = &rescaled
			}
		}
		entries = append(entries, entry)
	}
	return c.JSON(entries)
}

// notifyExpiry pushes a monitor event for an assignment the window check just
// forced closed.
func notifyExpiry(exam *models.Exam, studentID uuid.UUID, assignment *models.ExamAssignment) {
	var student models.User
	if err := database.DB.First(&student, "id = ?", studentID).Error; err != nil {
		return
	}
	websocket.Notify(websocket.SubmissionEvent{
		ExamID:      exam.ID,
		StudentID:   studentID,
		StudentName: student.FullName(),
		Score:       0,
		Expired:     true,
		CompletedAt: *assignment.CompletedAt,
	})
}

// studentAuthorized reports whether the student is enrolled on the exam or
// was previously assigned to it.
func studentAuthorized(exam *models.Exam, studentID uuid.UUID) bool {
	var count int64
	database.DB.Table("exam_students").
		Where("exam_id = ? AND user_id = ?", exam.ID, studentID).
		Count(&count)
	if count > 0 {
		return true
	}
	database.DB.Model(&models.ExamAssignment{}).
		Where("exam_id = ? AND student_id = ?", exam.ID, studentID).
		Count(&count)
	return count > 0
}

type questionForStudent struct {
	ID      uuid.UUID               `json:"id"`
	Kind    string                  `json:"kind"`
	Text    string                  `json:"text"`
	Image   *string                 `json:"image"`
	Options []models.QuestionOption `json:"options,omitempty"`
}

func stripAnswers(questions []models.Question) []questionForStudent {
	stripped := make([]questionForStudent, len(questions))
	for i, q := range questions {
		stripped[i] = questionForStudent{
			ID:      q.ID,
			Kind:    q.Kind,
			Text:    q.Text,
			Image:   q.Image,
			Options: q.DecodedOptions(),
		}
	}
	return stripped
}

// StartExam is the student's entry point into an exam. The assignment is
// materialized on first access with the full bank order; the window decides
// whether the student gets the questions, a "not started" screen, or the
// stored (possibly force-expired) result.
func StartExam(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", c.Params("examId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}
	if !studentAuthorized(&exam, studentID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You are not enrolled in this exam"})
	}

	ids, err := bankQuestionIDs(database.DB, &exam)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	svc := assignmentService(database.DB)
	assignment, err := svc.EnsureAssignment(exam.ID, studentID, ids)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to prepare assignment"})
	}

	state, assignment, expired, err := svc.Access(&exam, assignment)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to evaluate exam window"})
	}
	if expired {
		notifyExpiry(&exam, studentID, assignment)
	}

	switch state {
	case services.AccessNotStarted:
		return c.JSON(fiber.Map{
			"state":      state,
			"exam_name":  exam.Name,
			"start_time": exam.StartTime,
		})
	case services.AccessCompleted:
		return renderResult(c, &exam, assignment)
	}

	questions, err := questionsInOrder(database.DB, assignment.QuestionIDs())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	response := fiber.Map{
		"state":            state,
		"assignment_id":    assignment.ID,
		"exam_name":        exam.Name,
		"duration_minutes": exam.Duration,
		"questions":        stripAnswers(questions),
		"answers":          assignment.Answers(),
	}
	if exam.EndTime != nil {
		response["ends_at"] = exam.EndTime
	}
	return c.JSON(response)
}

type SubmitExamRequest struct {
	// Question id -> raw answer: an option index for mcq, free text for
	// descriptive.
	Answers map[string]string `json:"answers"`
}

// SubmitExam scores the submission and completes the assignment. Submitting
// against a completed assignment returns the stored result untouched.
func SubmitExam(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", c.Params("examId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	var req SubmitExamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}

	svc := assignmentService(database.DB)
	assignment, err := svc.Store.FindByExamAndStudent(exam.ID, studentID)
	if err != nil {
		if errors.Is(err, services.ErrAssignmentNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "No assignment for this exam"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	state, assignment, expired, err := svc.Access(&exam, assignment)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to evaluate exam window"})
	}
	if expired {
		notifyExpiry(&exam, studentID, assignment)
	}
	if state != services.AccessOpen {
		return renderResult(c, &exam, assignment)
	}

	questions, err := questionsInOrder(database.DB, assignment.QuestionIDs())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	assignment, result, err := svc.Submit(assignment, questions, req.Answers)
	if errors.Is(err, services.ErrAlreadyCompleted) {
		return renderResult(c, &exam, assignment)
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save results"})
	}

	var student models.User
	if err := database.DB.First(&student, "id = ?", studentID).Error; err == nil {
		websocket.Notify(websocket.SubmissionEvent{
			ExamID:      exam.ID,
			StudentID:   studentID,
			StudentName: student.FullName(),
			Score:       result.Percent,
			CompletedAt: *assignment.CompletedAt,
		})
	}
	go services.GenerateScoreReport(database.DB, *assignment)

	return c.JSON(fiber.Map{
		"message":  "Exam submitted successfully",
		"score":    result.Percent,
		"score_20": services.RescaleScore(result.Percent),
		"result":   result,
	})
}

// ExamResult renders the stored result; it tolerates an assignment that has
// not been completed yet.
func ExamResult(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", c.Params("examId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	var assignment models.ExamAssignment
	if err := database.DB.First(&assignment, "exam_id = ? AND student_id = ?", exam.ID, studentID).Error; err != nil {
		return c.JSON(fiber.Map{"state": "not_started", "exam_name": exam.Name})
	}
	return renderResult(c, &exam, &assignment)
}

// renderResult builds the result payload from the stored assignment. The
// stored score is authoritative; details are re-derived from the stored
// answers purely for display.
func renderResult(c *fiber.Ctx, exam *models.Exam, assignment *models.ExamAssignment) error {
	if !assignment.Completed() {
		return c.JSON(fiber.Map{
			"state":      "not_started",
			"exam_name":  exam.Name,
			"start_time": exam.StartTime,
		})
	}

	questions, err := questionsInOrder(database.DB, assignment.QuestionIDs())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	detail := services.ScoreSubmission(questions, assignment.Answers())

	score := 0.0
	if assignment.Score != nil {
		score = *assignment.Score
	}
	return c.JSON(fiber.Map{
		"state":        "completed",
		"exam_name":    exam.Name,
		"score":        score,
		"score_20":     services.RescaleScore(score),
		"completed_at": assignment.CompletedAt,
		"details":      detail.Details,
		"correct":      detail.CorrectCount,
		"incorrect":    detail.IncorrectCount,
		"unanswered":   detail.UnansweredCount,
	})
}
