package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	config "github.com/azmoonhq/azmoon_portal/configs"
	"github.com/azmoonhq/azmoon_portal/models"
	"github.com/azmoonhq/azmoon_portal/notifications"
)

const (
	resetWindow      = 5 * time.Minute
	maxResetRequests = 3
	resetPasswordLen = 8
)

const passwordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// GenerateRandomPassword draws a cryptographically random password of the
// given length from letters and digits.
func GenerateRandomPassword(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(passwordAlphabet))))
		if err != nil {
			return "", err
		}
		b[i] = passwordAlphabet[n.Int64()]
	}
	return string(b), nil
}

// HashRecoveryCode is the stored form of a recovery code.
func HashRecoveryCode(code string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(code)))
	return hex.EncodeToString(sum[:])
}

func isRateLimited(db *gorm.DB, email string) (bool, error) {
	var count int64
	windowStart := time.Now().Add(-resetWindow)
	err := db.Model(&models.PasswordResetAttempt{}).
		Where("LOWER(email) = LOWER(?) AND requested_at >= ?", email, windowStart).
		Count(&count).Error
	return count >= maxResetRequests, err
}

// RequestPasswordReset generates a fresh random password for the account,
// emails it, and records the attempt. The returned message is deliberately
// the same whether or not the email is registered.
func RequestPasswordReset(db *gorm.DB, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("invalid email")
	}

	limited, err := isRateLimited(db, email)
	if err != nil {
		return "", err
	}
	if limited {
		log.Printf("Password reset rate-limited for %s", email)
		return "", fmt.Errorf("too many reset requests, try again later")
	}

	if err := db.Create(&models.PasswordResetAttempt{Email: email, RequestedAt: time.Now()}).Error; err != nil {
		return "", err
	}

	genericMessage := "If the email is registered, a new password has been sent to it."

	var user models.User
	if err := db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		log.Printf("Password reset requested for %s", email)
		return genericMessage, nil
	}

	newPassword, err := GenerateRandomPassword(resetPasswordLen)
	if err != nil {
		return "", err
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	if err := db.Model(&user).Update("password", string(hashed)).Error; err != nil {
		return "", err
	}

	appName := config.Config("APP_NAME")
	if appName == "" {
		appName = "Azmoon"
	}
	subject := fmt.Sprintf("Password reset - %s", appName)
	body := fmt.Sprintf(
		"<p>Your new account password: <b>%s</b></p><p>Please change it to a password of your own right after signing in. If you did not request this, contact support immediately.</p>",
		newPassword,
	)
	go notifications.SendEmail(user.FullName(), user.Email, subject, body)

	log.Printf("Password reset processed for %s", email)
	return genericMessage, nil
}

// ResetWithRecoveryCode sets a new password when the supplied one-time
// recovery code matches an unused code for the account. The code is burned on
// success.
func ResetWithRecoveryCode(db *gorm.DB, email, code, newPassword string) error {
	var user models.User
	if err := db.Where("LOWER(email) = LOWER(?)", strings.TrimSpace(email)).First(&user).Error; err != nil {
		return fmt.Errorf("invalid email or recovery code")
	}

	var recovery models.RecoveryCode
	err := db.Where("user_id = ? AND code_hash = ? AND used = false", user.ID, HashRecoveryCode(code)).
		First(&recovery).Error
	if err != nil {
		return fmt.Errorf("invalid email or recovery code")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Update("password", string(hashed)).Error; err != nil {
			return err
		}
		return tx.Model(&recovery).Update("used", true).Error
	})
}

// GenerateRecoveryCodes issues a batch of fresh one-time codes for a user and
// returns the plaintext codes exactly once.
func GenerateRecoveryCodes(db *gorm.DB, userID uuid.UUID, count int) ([]string, error) {
	codes := make([]string, 0, count)
	err := db.Transaction(func(tx *gorm.DB) error {
		for i := 0; i < count; i++ {
			code, err := GenerateRandomPassword(10)
			if err != nil {
				return err
			}
			record := models.RecoveryCode{UserID: userID, CodeHash: HashRecoveryCode(code)}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
			codes = append(codes, code)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}
