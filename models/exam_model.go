package models

import (
	"time"

	"github.com/google/uuid"
)

// Exam doubles as a question bank (SourceExamID nil, no students) and as a
// scheduled instance derived from a bank.
type Exam struct {
	ID           uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string     `gorm:"size:200;not null" json:"name"`
	ClassroomID  *uuid.UUID `gorm:"type:uuid" json:"classroom_id"`
	NumQuestions int        `gorm:"default:0" json:"num_questions"`
	CreatedByID  uuid.UUID  `gorm:"type:uuid;not null" json:"created_by_id"`
	SourceExamID *uuid.UUID `gorm:"type:uuid" json:"source_exam_id"`

	ShufflePerStudent bool `gorm:"default:true" json:"shuffle_per_student"`
	// Duration in minutes.
	Duration  int        `gorm:"default:60" json:"duration"`
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`

	Classroom  *Classroom `gorm:"foreignkey:ClassroomID" json:"-"`
	CreatedBy  User       `gorm:"foreignkey:CreatedByID" json:"-"`
	SourceExam *Exam      `gorm:"foreignkey:SourceExamID" json:"-"`
	Students   []*User    `gorm:"many2many:exam_students;" json:"students,omitempty"`
	Questions  []Question `gorm:"foreignkey:ExamID;constraint:OnDelete:CASCADE" json:"questions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e Exam) IsBank() bool {
	return e.SourceExamID == nil && e.StartTime == nil
}

// WindowClosed reports whether the exam's window has passed at the given time.
func (e Exam) WindowClosed(now time.Time) bool {
	return e.EndTime != nil && e.EndTime.Before(now)
}

// NotYetOpen reports whether the exam has a start time still in the future.
func (e Exam) NotYetOpen(now time.Time) bool {
	return e.StartTime != nil && e.StartTime.After(now)
}
