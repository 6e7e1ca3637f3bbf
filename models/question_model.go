package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	QuestionKindDescriptive    = "des"
	QuestionKindMultipleChoice = "mcq"
)

// QuestionOption is one multiple-choice option; either the text or the image
// may carry the content.
type QuestionOption struct {
	Text  string `json:"text"`
	Image string `json:"image,omitempty"`
}

func (o QuestionOption) Empty() bool {
	return o.Text == "" && o.Image == ""
}

type Question struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ExamID uuid.UUID `gorm:"type:uuid;not null;index" json:"exam_id"`
	Kind   string    `gorm:"size:4;not null" json:"kind"`
	Text   string    `gorm:"type:text;not null" json:"text"`
	Image  *string   `gorm:"size:255" json:"image"`

	// Reference answer for descriptive questions.
	AnswerText string `gorm:"type:text" json:"answer_text"`

	// Multiple-choice payload.
	Options      datatypes.JSON `json:"options"`
	CorrectIndex *int           `json:"correct_index"`

	Exam Exam `gorm:"foreignkey:ExamID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// DecodedOptions unmarshals the stored option list; a missing or malformed
// column decodes to nil.
func (q Question) DecodedOptions() []QuestionOption {
	if len(q.Options) == 0 {
		return nil
	}
	var opts []QuestionOption
	if err := json.Unmarshal(q.Options, &opts); err != nil {
		return nil
	}
	return opts
}
