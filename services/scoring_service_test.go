package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/azmoonhq/azmoon_portal/models"
)

func mcqQuestion(correct int) models.Question {
	idx := correct
	return models.Question{
		ID:           uuid.New(),
		Kind:         models.QuestionKindMultipleChoice,
		CorrectIndex: &idx,
	}
}

func descriptiveQuestion() models.Question {
	return models.Question{
		ID:   uuid.New(),
		Kind: models.QuestionKindDescriptive,
	}
}

func TestScoreSubmissionMixedAnswers(t *testing.T) {
	questions := []models.Question{
		mcqQuestion(0),
		mcqQuestion(1),
		mcqQuestion(2),
		mcqQuestion(3),
	}
	answers := map[string]string{
		questions[0].ID.String(): "0",
		questions[1].ID.String(): "1",
		questions[2].ID.String(): "9",
		questions[3].ID.String(): "",
	}

	result := ScoreSubmission(questions, answers)

	if result.Percent != 50.0 {
		t.Errorf("percent = %v, want 50.0", result.Percent)
	}
	if result.CorrectCount != 2 {
		t.Errorf("correct = %d, want 2", result.CorrectCount)
	}
	if result.IncorrectCount != 1 {
		t.Errorf("incorrect = %d, want 1", result.IncorrectCount)
	}
	if result.UnansweredCount != 1 {
		t.Errorf("unanswered = %d, want 1", result.UnansweredCount)
	}
	if result.TotalQuestions != 4 {
		t.Errorf("total = %d, want 4", result.TotalQuestions)
	}
}

func TestScoreSubmissionStatuses(t *testing.T) {
	mcq := mcqQuestion(2)
	des := descriptiveQuestion()

	tests := []struct {
		name     string
		question models.Question
		answer   *string
		want     string
	}{
		{"mcq exact match", mcq, strPtr("2"), AnswerCorrect},
		{"mcq padded match", mcq, strPtr(" 2 "), AnswerCorrect},
		{"mcq wrong index", mcq, strPtr("1"), AnswerIncorrect},
		{"mcq out of range index", mcq, strPtr("17"), AnswerIncorrect},
		{"mcq unparseable", mcq, strPtr("two"), AnswerUnanswered},
		{"mcq empty string", mcq, strPtr(""), AnswerUnanswered},
		{"mcq missing", mcq, nil, AnswerUnanswered},
		{"descriptive attempted", des, strPtr("some essay"), AnswerIncorrect},
		{"descriptive blank", des, strPtr("   "), AnswerUnanswered},
		{"descriptive missing", des, nil, AnswerUnanswered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answers := map[string]string{}
			if tt.answer != nil {
				answers[tt.question.ID.String()] = *tt.answer
			}
			result := ScoreSubmission([]models.Question{tt.question}, answers)
			if len(result.Details) != 1 {
				t.Fatalf("got %d details, want 1", len(result.Details))
			}
			if result.Details[0].Status != tt.want {
				t.Errorf("status = %s, want %s", result.Details[0].Status, tt.want)
			}
		})
	}
}

func TestScoreSubmissionEmptyQuestionList(t *testing.T) {
	result := ScoreSubmission(nil, map[string]string{"whatever": "1"})
	if result.Percent != 0 {
		t.Errorf("percent = %v, want 0", result.Percent)
	}
	if result.TotalQuestions != 0 {
		t.Errorf("total = %d, want 0", result.TotalQuestions)
	}
}

func TestScoreSubmissionAllCorrect(t *testing.T) {
	questions := []models.Question{mcqQuestion(0), mcqQuestion(1)}
	answers := map[string]string{
		questions[0].ID.String(): "0",
		questions[1].ID.String(): "1",
	}
	result := ScoreSubmission(questions, answers)
	if result.Percent != 100.0 {
		t.Errorf("percent = %v, want 100.0", result.Percent)
	}
}

func strPtr(s string) *string { return &s }
