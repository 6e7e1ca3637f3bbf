package models

import (
	"time"

	"github.com/google/uuid"
)

type Classroom struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name         string    `gorm:"size:200;not null" json:"name"`
	InstructorID uuid.UUID `gorm:"type:uuid;not null" json:"instructor_id"`
	IsStaging    bool      `gorm:"default:false" json:"is_staging"`
	// Exam rooms are auto-created per exam definition and are hidden from
	// the general classes listing.
	IsExamRoom bool `gorm:"default:false" json:"is_exam_room"`

	Instructor User    `gorm:"foreignkey:InstructorID" json:"-"`
	Students   []*User `gorm:"many2many:classroom_students;" json:"students,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
