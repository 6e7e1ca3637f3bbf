package models

import (
	"time"

	"github.com/google/uuid"
)

// RecoveryCode is a hashed one-time code for the no-email password reset flow.
type RecoveryCode struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	CodeHash string    `gorm:"size:128;not null" json:"-"`
	Used     bool      `gorm:"default:false" json:"used"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// PasswordResetAttempt records a reset request for rate limiting.
type PasswordResetAttempt struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email       string    `gorm:"size:255;not null;index:idx_reset_email_time"`
	RequestedAt time.Time `gorm:"not null;index:idx_reset_email_time"`
}
