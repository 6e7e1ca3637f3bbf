package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	"gorm.io/gorm"

	config "github.com/azmoonhq/azmoon_portal/configs"
	"github.com/azmoonhq/azmoon_portal/models"
	"github.com/azmoonhq/azmoon_portal/utils"
)

// GenerateScoreReport renders a PDF score sheet for a completed assignment
// and stores it on Cloudinary. Called in the background after submission;
// failures are logged, never surfaced to the student.
func GenerateScoreReport(db *gorm.DB, assignment models.ExamAssignment) {
	if !assignment.Completed() || assignment.Score == nil {
		return
	}

	var existing models.ScoreReport
	if err := db.Where("assignment_id = ?", assignment.ID).First(&existing).Error; err == nil {
		return
	}

	var exam models.Exam
	if err := db.First(&exam, "id = ?", assignment.ExamID).Error; err != nil {
		log.Printf("🔥 Score report: exam lookup failed: %v", err)
		return
	}
	var student models.User
	if err := db.First(&student, "id = ?", assignment.StudentID).Error; err != nil {
		log.Printf("🔥 Score report: student lookup failed: %v", err)
		return
	}

	htmlData, err := renderScoreReportHTML(student, exam, assignment)
	if err != nil {
		log.Printf("🔥 Failed to render score report HTML: %v", err)
		return
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		log.Printf("🔥 Failed to generate score report PDF: %v", err)
		return
	}

	reportURL, err := uploadReportToCloudinary(pdfBytes, assignment.StudentID.String())
	if err != nil {
		log.Printf("🔥 Failed to upload score report: %v", err)
		return
	}

	report := models.ScoreReport{
		AssignmentID: assignment.ID,
		StudentID:    assignment.StudentID,
		ExamName:     exam.Name,
		ReportURL:    reportURL,
		IssuedAt:     time.Now(),
	}
	if err := db.Create(&report).Error; err != nil {
		log.Printf("🔥 Failed to save score report for assignment %s: %v", assignment.ID, err)
		return
	}
	log.Printf("✅ Generated score report for student %s, exam %q.", assignment.StudentID, exam.Name)
}

func renderScoreReportHTML(student models.User, exam models.Exam, assignment models.ExamAssignment) (string, error) {
	tmpl, err := template.ParseFiles("templates/score_report.html")
	if err != nil {
		return "", err
	}

	data := struct {
		StudentName string
		ExamName    string
		Score20     float64
		CompletedAt string
	}{
		StudentName: student.FullName(),
		ExamName:    exam.Name,
		Score20:     RescaleScore(*assignment.Score),
		CompletedAt: utils.FormatJalaliDateTime(*assignment.CompletedAt),
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReportToCloudinary(fileBytes []byte, studentID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("score_reports/%s_%s", studentID, uuid.New().String()),
		Folder:       "azmoon_score_reports",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
