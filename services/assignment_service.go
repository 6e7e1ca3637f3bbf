package services

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/azmoonhq/azmoon_portal/models"
)

// ErrAlreadyCompleted signals a submission against a terminal assignment.
// Callers redirect to the stored result instead of re-scoring.
var ErrAlreadyCompleted = errors.New("assignment already completed")

// Clock abstracts wall-clock time so the lifecycle can be tested.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var SystemClock Clock = systemClock{}

// AssignmentStore is the persistence contract for assignment rows. Both
// mutating operations must be atomic: CreateIfAbsent relies on the unique
// (exam, student) constraint, and CompleteIfOpen must refuse to complete an
// already-completed row so concurrent writers cannot double-score.
type AssignmentStore interface {
	FindByExamAndStudent(examID, studentID uuid.UUID) (*models.ExamAssignment, error)
	// CreateIfAbsent persists the assignment unless one already exists for
	// the pair; it returns the persisted row and whether this call created it.
	CreateIfAbsent(assignment *models.ExamAssignment) (*models.ExamAssignment, bool, error)
	// CompleteIfOpen writes score, answers and completion time if and only if
	// the row is not yet completed. It reports whether this writer won.
	CompleteIfOpen(id uuid.UUID, score float64, answers map[string]string, completedAt time.Time) (bool, error)
	Reload(id uuid.UUID) (*models.ExamAssignment, error)
}

// ErrAssignmentNotFound is returned by stores when no row matches.
var ErrAssignmentNotFound = errors.New("assignment not found")

// AccessState classifies what an authorized student should see when touching
// an exam.
type AccessState string

const (
	// AccessNotStarted renders the result view in its "not started" form.
	AccessNotStarted AccessState = "not_started"
	// AccessOpen lets the student take (or continue) the exam.
	AccessOpen AccessState = "open"
	// AccessCompleted renders the stored result; terminal.
	AccessCompleted AccessState = "completed"
)

// AssignmentService drives the (exam, student) lifecycle: materialization,
// window enforcement, submission and forced expiry.
type AssignmentService struct {
	Store AssignmentStore
	Clock Clock
}

func NewAssignmentService(store AssignmentStore) *AssignmentService {
	return &AssignmentService{Store: store, Clock: SystemClock}
}

// EnsureAssignment returns the assignment for the pair, creating it with the
// given ordered question ids when absent. A concurrent create resolves to the
// winning row; the question order persisted first sticks.
func (s *AssignmentService) EnsureAssignment(examID, studentID uuid.UUID, questionIDs []uuid.UUID) (*models.ExamAssignment, error) {
	assignment := &models.ExamAssignment{
		ExamID:              examID,
		StudentID:           studentID,
		SelectedQuestionIDs: models.EncodeQuestionIDs(questionIDs),
		StudentAnswers:      models.EncodeAnswers(nil),
	}
	persisted, _, err := s.Store.CreateIfAbsent(assignment)
	if err != nil {
		return nil, err
	}
	return persisted, nil
}

// Access evaluates the exam window for an existing assignment. When the
// window has closed and the assignment was never completed, it performs the
// one-time forced completion: score 0, empty answers, completion pinned to
// the exam's nominal end time for deterministic reporting. The bool reports
// whether this call performed that transition, so callers can announce the
// expiry exactly once.
func (s *AssignmentService) Access(exam *models.Exam, assignment *models.ExamAssignment) (AccessState, *models.ExamAssignment, bool, error) {
	if assignment.Completed() {
		return AccessCompleted, assignment, false, nil
	}

	now := s.Clock.Now()
	if exam.NotYetOpen(now) {
		return AccessNotStarted, assignment, false, nil
	}

	if exam.WindowClosed(now) {
		won, err := s.Store.CompleteIfOpen(assignment.ID, 0, map[string]string{}, *exam.EndTime)
		if err != nil {
			return "", nil, false, err
		}
		reloaded, err := s.Store.Reload(assignment.ID)
		if err != nil {
			return "", nil, false, err
		}
		return AccessCompleted, reloaded, won, nil
	}

	return AccessOpen, assignment, false, nil
}

// Submit scores the answers against the assignment's question list and
// completes the assignment. A second completion attempt loses the guarded
// write and surfaces ErrAlreadyCompleted alongside the stored row.
func (s *AssignmentService) Submit(assignment *models.ExamAssignment, questions []models.Question, answers map[string]string) (*models.ExamAssignment, ScoreResult, error) {
	if assignment.Completed() {
		return assignment, ScoreResult{}, ErrAlreadyCompleted
	}

	result := ScoreSubmission(questions, answers)
	won, err := s.Store.CompleteIfOpen(assignment.ID, result.Percent, answers, s.Clock.Now())
	if err != nil {
		return nil, ScoreResult{}, err
	}

	reloaded, err := s.Store.Reload(assignment.ID)
	if err != nil {
		return nil, ScoreResult{}, err
	}
	if !won {
		return reloaded, ScoreResult{}, ErrAlreadyCompleted
	}
	return reloaded, result, nil
}
