package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/azmoonhq/azmoon_portal/database"
	"github.com/azmoonhq/azmoon_portal/models"
	"github.com/azmoonhq/azmoon_portal/services"
	"github.com/azmoonhq/azmoon_portal/utils"
)

type rankedResult struct {
	Rank         int     `json:"rank"`
	StudentName  string  `json:"student_name"`
	ScorePercent float64 `json:"score_percent"`
	Score20      float64 `json:"score_20"`
}

// completedAssignments loads an exam's completed assignments, best score
// first, with students preloaded.
func completedAssignments(examID string) ([]models.ExamAssignment, error) {
	var assignments []models.ExamAssignment
	err := database.DB.
		Preload("Student").
		Where("exam_id = ? AND completed_at IS NOT NULL", examID).
		Order("score DESC").
		Find(&assignments).Error
	return assignments, err
}

func rankResults(assignments []models.ExamAssignment) []rankedResult {
	results := make([]rankedResult, 0, len(assignments))
	for i, a := range assignments {
		score := 0.0
		if a.Score != nil {
			score = *a.Score
		}
		results = append(results, rankedResult{
			Rank:         i + 1,
			StudentName:  a.Student.FullName(),
			ScorePercent: score,
			Score20:      services.RescaleScore(score),
		})
	}
	return results
}

// InstructorExamReport is the full per-exam report: ranked results, the
// aggregate statistics, the above/below-average split and chart arrays.
func InstructorExamReport(c *fiber.Ctx) error {
	exam, err := loadOwnedExam(c, c.Params("examId"))
	if err != nil {
		return err
	}

	assignments, err := completedAssignments(exam.ID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	results := rankResults(assignments)
	summary := services.Summarize(assignments)

	aboveAvg := make([]rankedResult, 0, len(results))
	belowAvg := make([]rankedResult, 0, len(results))
	chartLabels := make([]string, 0, len(results))
	chartData := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Score20 >= summary.Mean {
			aboveAvg = append(aboveAvg, r)
		} else {
			belowAvg = append(belowAvg, r)
		}
		chartLabels = append(chartLabels, r.StudentName)
		chartData = append(chartData, r.Score20)
	}

	return c.JSON(fiber.Map{
		"exam_name":     exam.Name,
		"results":       results,
		"summary":       summary,
		"buckets":       services.BucketScores(assignments),
		"radar":         services.Radar(assignments),
		"above_average": aboveAvg,
		"below_average": belowAvg,
		"chart_labels":  chartLabels,
		"chart_data":    chartData,
	})
}

// AdminExamReport is the admin's ranked result list for any exam.
func AdminExamReport(c *fiber.Ctx) error {
	var exam models.Exam
	if err := database.DB.First(&exam, "id = ?", c.Params("examId")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
	}

	assignments, err := completedAssignments(exam.ID.String())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{
		"exam_name": exam.Name,
		"results":   rankResults(assignments),
		"summary":   services.Summarize(assignments),
	})
}

// StudentScores is the student's own dashboard: every completed exam, the
// personal aggregate statistics, the monthly trend and the radar summary.
func StudentScores(c *fiber.Ctx) error {
	studentID := currentUserID(c)

	var assignments []models.ExamAssignment
	err := database.DB.
		Preload("Exam").
		Where("student_id = ? AND completed_at IS NOT NULL", studentID).
		Order("completed_at DESC").
		Find(&assignments).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	type scoreEntry struct {
		ExamName    string  `json:"exam_name"`
		Score20     float64 `json:"score_20"`
		CompletedAt string  `json:"completed_at"`
	}
	entries := make([]scoreEntry, 0, len(assignments))
	for _, a := range assignments {
		score := 0.0
		if a.Score != nil {
			score = *a.Score
		}
		entries = append(entries, scoreEntry{
			ExamName:    a.Exam.Name,
			Score20:     services.RescaleScore(score),
			CompletedAt: utils.FormatJalaliDateTime(*a.CompletedAt),
		})
	}

	return c.JSON(fiber.Map{
		"scores":  entries,
		"summary": services.Summarize(assignments),
		"trend":   services.MonthlyTrend(assignments),
		"radar":   services.Radar(assignments),
	})
}

// StudentScoreReports lists the generated PDF score sheets for the student.
func StudentScoreReports(c *fiber.Ctx) error {
	var reports []models.ScoreReport
	database.DB.
		Where("student_id = ?", currentUserID(c)).
		Order("issued_at DESC").
		Find(&reports)
	return c.JSON(reports)
}
