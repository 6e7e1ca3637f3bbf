package database

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/azmoonhq/azmoon_portal/models"
	"github.com/azmoonhq/azmoon_portal/services"
)

// GormAssignmentStore backs the assignment lifecycle with Postgres. The
// unique (exam_id, student_id) index makes materialization race-safe and the
// completed_at IS NULL guard makes completion single-shot.
type GormAssignmentStore struct {
	DB *gorm.DB
}

func NewAssignmentStore(db *gorm.DB) *GormAssignmentStore {
	return &GormAssignmentStore{DB: db}
}

func (s *GormAssignmentStore) FindByExamAndStudent(examID, studentID uuid.UUID) (*models.ExamAssignment, error) {
	var assignment models.ExamAssignment
	err := s.DB.First(&assignment, "exam_id = ? AND student_id = ?", examID, studentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (s *GormAssignmentStore) CreateIfAbsent(assignment *models.ExamAssignment) (*models.ExamAssignment, bool, error) {
	res := s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}},
		DoNothing: true,
	}).Create(assignment)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected > 0 {
		return assignment, true, nil
	}

	// Lost the race: another request materialized the pair first.
	existing, err := s.FindByExamAndStudent(assignment.ExamID, assignment.StudentID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *GormAssignmentStore) CompleteIfOpen(id uuid.UUID, score float64, answers map[string]string, completedAt time.Time) (bool, error) {
	var won bool
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.ExamAssignment{}).
			Where("id = ? AND completed_at IS NULL", id).
			Updates(map[string]interface{}{
				"score":           score,
				"student_answers": models.EncodeAnswers(answers),
				"completed_at":    completedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		won = res.RowsAffected > 0
		return nil
	})
	return won, err
}

func (s *GormAssignmentStore) Reload(id uuid.UUID) (*models.ExamAssignment, error) {
	var assignment models.ExamAssignment
	err := s.DB.First(&assignment, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, services.ErrAssignmentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}
