package models

import (
	"time"

	"github.com/google/uuid"
)

// ScoreReport is a generated PDF score sheet for a completed assignment,
// stored on Cloudinary.
type ScoreReport struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;unique" json:"assignment_id"`
	StudentID    uuid.UUID `gorm:"type:uuid;not null" json:"student_id"`
	ExamName     string    `gorm:"size:200;not null" json:"exam_name"`
	ReportURL    string    `gorm:"size:255;not null" json:"report_url"`
	IssuedAt     time.Time `json:"issued_at"`

	Assignment ExamAssignment `gorm:"foreignkey:AssignmentID" json:"-"`
	Student    User           `gorm:"foreignkey:StudentID" json:"-"`
}
