package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/azmoonhq/azmoon_portal/database"
	"github.com/azmoonhq/azmoon_portal/models"
	"github.com/azmoonhq/azmoon_portal/notifications"
	"github.com/azmoonhq/azmoon_portal/utils"
)

// SendExamReminders emails every student assigned to an exam that starts in
// roughly one hour. Runs every five minutes; the 60-65 minute window keeps a
// student from being reminded twice.
func SendExamReminders() {
	log.Println("Running job: SendExamReminders...")

	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcomingExams []models.Exam
	err := database.DB.
		Preload("Students").
		Where("start_time BETWEEN ? AND ?", lowerBound, upperBound).
		Find(&upcomingExams).Error
	if err != nil {
		log.Printf("Error checking for upcoming exams: %v", err)
		return
	}

	if len(upcomingExams) == 0 {
		return
	}

	for _, exam := range upcomingExams {
		log.Printf("Sending reminders for exam %q to %d student(s)", exam.Name, len(exam.Students))

		emailSubject := fmt.Sprintf("Reminder: exam %q starts in 1 hour", exam.Name)
		emailBody := fmt.Sprintf(
			"<h1>Exam Reminder</h1><p>Your exam <b>%s</b> is scheduled to start at %s (%d minutes).</p>",
			exam.Name,
			utils.FormatJalaliDateTime(*exam.StartTime),
			exam.Duration,
		)

		for _, student := range exam.Students {
			go notifications.SendEmail(student.FullName(), student.Email, emailSubject, emailBody)
		}
	}
}
