package services

import (
	"strconv"
	"strings"

	"github.com/azmoonhq/azmoon_portal/models"
)

const (
	AnswerCorrect    = "correct"
	AnswerIncorrect  = "incorrect"
	AnswerUnanswered = "unanswered"
)

// QuestionResult is the per-question breakdown of a scored submission.
type QuestionResult struct {
	QuestionID string `json:"question_id"`
	Kind       string `json:"kind"`
	Status     string `json:"status"`
	Submitted  string `json:"submitted"`
}

type ScoreResult struct {
	Percent         float64          `json:"percent"`
	CorrectCount    int              `json:"correct_count"`
	IncorrectCount  int              `json:"incorrect_count"`
	UnansweredCount int              `json:"unanswered_count"`
	TotalQuestions  int              `json:"total_questions"`
	Details         []QuestionResult `json:"details"`
}

// ScoreSubmission grades a submission against the assignment's question list.
// Multiple-choice answers that fail to parse as an integer index count as
// unanswered; a parsed index, in range or not, is compared against the
// correct index. Descriptive answers have no automated grading rule yet: a
// non-empty answer is folded into the incorrect count pending manual review,
// an empty one is unanswered.
func ScoreSubmission(questions []models.Question, answers map[string]string) ScoreResult {
	result := ScoreResult{
		TotalQuestions: len(questions),
		Details:        make([]QuestionResult, 0, len(questions)),
	}

	for _, q := range questions {
		raw, submitted := answers[q.ID.String()]
		status := AnswerUnanswered

		switch q.Kind {
		case models.QuestionKindMultipleChoice:
			if submitted {
				if idx, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil {
					if q.CorrectIndex != nil && idx == *q.CorrectIndex {
						status = AnswerCorrect
					} else {
						status = AnswerIncorrect
					}
				}
			}
		case models.QuestionKindDescriptive:
			if submitted && strings.TrimSpace(raw) != "" {
				status = AnswerIncorrect
			}
		}

		switch status {
		case AnswerCorrect:
			result.CorrectCount++
		case AnswerIncorrect:
			result.IncorrectCount++
		default:
			result.UnansweredCount++
		}

		result.Details = append(result.Details, QuestionResult{
			QuestionID: q.ID.String(),
			Kind:       q.Kind,
			Status:     status,
			Submitted:  raw,
		})
	}

	if result.TotalQuestions > 0 {
		result.Percent = 100 * float64(result.CorrectCount) / float64(result.TotalQuestions)
	}
	return result
}
