package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func Config(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	return os.Getenv(key)
}

// IsAllowedAdmin reports whether the email is on the ADMIN_EMAILS allow-list
// (comma-separated) consulted at account provisioning.
func IsAllowedAdmin(email string) bool {
	for _, entry := range strings.Split(Config("ADMIN_EMAILS"), ",") {
		if entry = strings.TrimSpace(entry); entry != "" && strings.EqualFold(entry, email) {
			return true
		}
	}
	return false
}
