package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExamAssignment binds one student to one exam instance. The pair is unique;
// SelectedQuestionIDs is fixed at creation and never reshuffled, so the
// student sees a stable question order across visits.
type ExamAssignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ExamID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_exam_student" json:"exam_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_exam_student" json:"student_id"`

	SelectedQuestionIDs datatypes.JSON `json:"selected_question_ids"`
	StudentAnswers      datatypes.JSON `json:"student_answers"`
	Score               *float64       `json:"score"`
	CompletedAt         *time.Time     `json:"completed_at"`

	Exam    Exam `gorm:"foreignkey:ExamID" json:"-"`
	Student User `gorm:"foreignkey:StudentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (a ExamAssignment) Completed() bool {
	return a.CompletedAt != nil
}

// QuestionIDs decodes the persisted ordered question id list.
func (a ExamAssignment) QuestionIDs() []uuid.UUID {
	if len(a.SelectedQuestionIDs) == 0 {
		return nil
	}
	var ids []uuid.UUID
	if err := json.Unmarshal(a.SelectedQuestionIDs, &ids); err != nil {
		return nil
	}
	return ids
}

// Answers decodes the persisted question-id -> raw answer map.
func (a ExamAssignment) Answers() map[string]string {
	answers := map[string]string{}
	if len(a.StudentAnswers) == 0 {
		return answers
	}
	if err := json.Unmarshal(a.StudentAnswers, &answers); err != nil {
		return map[string]string{}
	}
	return answers
}

func EncodeQuestionIDs(ids []uuid.UUID) datatypes.JSON {
	if ids == nil {
		ids = []uuid.UUID{}
	}
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}

func EncodeAnswers(answers map[string]string) datatypes.JSON {
	if answers == nil {
		answers = map[string]string{}
	}
	raw, _ := json.Marshal(answers)
	return datatypes.JSON(raw)
}
