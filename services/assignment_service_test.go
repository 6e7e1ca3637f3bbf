package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/azmoonhq/azmoon_portal/models"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

type pairKey struct {
	examID    uuid.UUID
	studentID uuid.UUID
}

// memoryStore is an in-memory AssignmentStore with the same atomicity
// guarantees as the database-backed one.
type memoryStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*models.ExamAssignment
	byPk map[pairKey]uuid.UUID
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		rows: map[uuid.UUID]*models.ExamAssignment{},
		byPk: map[pairKey]uuid.UUID{},
	}
}

func (s *memoryStore) clone(a *models.ExamAssignment) *models.ExamAssignment {
	cp := *a
	return &cp
}

func (s *memoryStore) FindByExamAndStudent(examID, studentID uuid.UUID) (*models.ExamAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byPk[pairKey{examID, studentID}]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	return s.clone(s.rows[id]), nil
}

func (s *memoryStore) CreateIfAbsent(assignment *models.ExamAssignment) (*models.ExamAssignment, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{assignment.ExamID, assignment.StudentID}
	if id, ok := s.byPk[key]; ok {
		return s.clone(s.rows[id]), false, nil
	}
	row := s.clone(assignment)
	row.ID = uuid.New()
	s.rows[row.ID] = row
	s.byPk[key] = row.ID
	return s.clone(row), true, nil
}

func (s *memoryStore) CompleteIfOpen(id uuid.UUID, score float64, answers map[string]string, completedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return false, ErrAssignmentNotFound
	}
	if row.CompletedAt != nil {
		return false, nil
	}
	sc := score
	at := completedAt
	row.Score = &sc
	row.StudentAnswers = models.EncodeAnswers(answers)
	row.CompletedAt = &at
	return true, nil
}

func (s *memoryStore) Reload(id uuid.UUID) (*models.ExamAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return nil, ErrAssignmentNotFound
	}
	return s.clone(row), nil
}

func newTestService(now time.Time) (*AssignmentService, *memoryStore, *fakeClock) {
	store := newMemoryStore()
	clock := &fakeClock{now: now}
	return &AssignmentService{Store: store, Clock: clock}, store, clock
}

func timedExam(start, end time.Time) *models.Exam {
	return &models.Exam{
		ID:        uuid.New(),
		StartTime: &start,
		EndTime:   &end,
	}
}

func TestEnsureAssignmentMaterializesOnce(t *testing.T) {
	now := time.Now()
	svc, _, _ := newTestService(now)
	examID := uuid.New()
	studentID := uuid.New()
	firstOrder := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	first, err := svc.EnsureAssignment(examID, studentID, firstOrder)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}

	second, err := svc.EnsureAssignment(examID, studentID, []uuid.UUID{uuid.New()})
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	if first.ID != second.ID {
		t.Fatal("second ensure created a new row instead of reusing the first")
	}
	got := second.QuestionIDs()
	if len(got) != len(firstOrder) {
		t.Fatalf("question order changed: got %d ids, want %d", len(got), len(firstOrder))
	}
	for i := range got {
		if got[i] != firstOrder[i] {
			t.Fatalf("question order changed at index %d", i)
		}
	}
}

func TestEnsureAssignmentConcurrent(t *testing.T) {
	now := time.Now()
	svc, store, _ := newTestService(now)
	examID := uuid.New()
	studentID := uuid.New()

	var wg sync.WaitGroup
	ids := make(chan uuid.UUID, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := svc.EnsureAssignment(examID, studentID, []uuid.UUID{uuid.New()})
			if err != nil {
				t.Errorf("ensure: %v", err)
				return
			}
			ids <- a.ID
		}()
	}
	wg.Wait()
	close(ids)

	var firstID uuid.UUID
	for id := range ids {
		if firstID == uuid.Nil {
			firstID = id
			continue
		}
		if id != firstID {
			t.Fatal("concurrent ensures produced more than one assignment row")
		}
	}
	if len(store.rows) != 1 {
		t.Fatalf("store holds %d rows, want 1", len(store.rows))
	}
}

func TestAccessNotYetOpen(t *testing.T) {
	now := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)
	exam := timedExam(now.Add(time.Hour), now.Add(3*time.Hour))

	assignment, err := svc.EnsureAssignment(exam.ID, uuid.New(), nil)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	state, _, expired, err := svc.Access(exam, assignment)
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if state != AccessNotStarted {
		t.Errorf("state = %s, want %s", state, AccessNotStarted)
	}
	if expired {
		t.Error("pending exam reported a forced expiry")
	}
}

func TestAccessOpenWindow(t *testing.T) {
	now := time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)
	exam := timedExam(now.Add(-time.Hour), now.Add(time.Hour))

	assignment, err := svc.EnsureAssignment(exam.ID, uuid.New(), nil)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	state, _, expired, err := svc.Access(exam, assignment)
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if state != AccessOpen {
		t.Errorf("state = %s, want %s", state, AccessOpen)
	}
	if expired {
		t.Error("open exam reported a forced expiry")
	}
}

func TestAccessExpiryForcesZeroScore(t *testing.T) {
	end := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	now := end.Add(2 * time.Hour)
	svc, _, _ := newTestService(now)
	exam := timedExam(end.Add(-2*time.Hour), end)

	assignment, err := svc.EnsureAssignment(exam.ID, uuid.New(), []uuid.UUID{uuid.New()})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	state, closed, expired, err := svc.Access(exam, assignment)
	if err != nil {
		t.Fatalf("access: %v", err)
	}
	if state != AccessCompleted {
		t.Fatalf("state = %s, want %s", state, AccessCompleted)
	}
	if !expired {
		t.Error("forced expiry not reported by the access that performed it")
	}
	if closed.Score == nil || *closed.Score != 0 {
		t.Errorf("score = %v, want 0", closed.Score)
	}
	if len(closed.Answers()) != 0 {
		t.Errorf("answers = %v, want empty", closed.Answers())
	}
	if closed.CompletedAt == nil || !closed.CompletedAt.Equal(end) {
		t.Errorf("completed_at = %v, want pinned to window end %v", closed.CompletedAt, end)
	}
}

func TestAccessExpiryIsIdempotent(t *testing.T) {
	end := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	svc, _, clock := newTestService(end.Add(time.Hour))
	exam := timedExam(end.Add(-2*time.Hour), end)

	assignment, err := svc.EnsureAssignment(exam.ID, uuid.New(), nil)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	_, first, firstExpired, err := svc.Access(exam, assignment)
	if err != nil {
		t.Fatalf("first access: %v", err)
	}
	if !firstExpired {
		t.Error("first access should report the forced expiry")
	}

	clock.now = end.Add(48 * time.Hour)
	state, second, secondExpired, err := svc.Access(exam, first)
	if err != nil {
		t.Fatalf("second access: %v", err)
	}
	if state != AccessCompleted {
		t.Fatalf("state = %s, want %s", state, AccessCompleted)
	}
	if secondExpired {
		t.Error("second access reported the expiry again")
	}
	if !second.CompletedAt.Equal(*first.CompletedAt) {
		t.Errorf("completion time drifted: %v then %v", first.CompletedAt, second.CompletedAt)
	}
}

func TestSubmitScoresAndCompletes(t *testing.T) {
	now := time.Date(2025, time.May, 1, 11, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	questions := []models.Question{mcqQuestion(0), mcqQuestion(1)}
	assignment, err := svc.EnsureAssignment(uuid.New(), uuid.New(), []uuid.UUID{questions[0].ID, questions[1].ID})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	answers := map[string]string{
		questions[0].ID.String(): "0",
		questions[1].ID.String(): "2",
	}
	completed, result, err := svc.Submit(assignment, questions, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if result.Percent != 50.0 {
		t.Errorf("percent = %v, want 50.0", result.Percent)
	}
	if completed.Score == nil || *completed.Score != 50.0 {
		t.Errorf("stored score = %v, want 50.0", completed.Score)
	}
	if completed.CompletedAt == nil || !completed.CompletedAt.Equal(now) {
		t.Errorf("completed_at = %v, want %v", completed.CompletedAt, now)
	}
	if got := completed.Answers(); got[questions[0].ID.String()] != "0" {
		t.Errorf("stored answers = %v", got)
	}
}

func TestSubmitAfterCompletionRejected(t *testing.T) {
	now := time.Date(2025, time.May, 1, 11, 0, 0, 0, time.UTC)
	svc, _, _ := newTestService(now)

	questions := []models.Question{mcqQuestion(0)}
	assignment, err := svc.EnsureAssignment(uuid.New(), uuid.New(), []uuid.UUID{questions[0].ID})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	first, _, err := svc.Submit(assignment, questions, map[string]string{questions[0].ID.String(): "0"})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}

	stored, _, err := svc.Submit(first, questions, map[string]string{questions[0].ID.String(): "1"})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
	if stored.Score == nil || *stored.Score != 100.0 {
		t.Errorf("stored score changed to %v, want original 100.0", stored.Score)
	}
}

func TestSubmitRaceLoserGetsStoredRow(t *testing.T) {
	now := time.Date(2025, time.May, 1, 11, 0, 0, 0, time.UTC)
	svc, store, _ := newTestService(now)

	questions := []models.Question{mcqQuestion(0)}
	assignment, err := svc.EnsureAssignment(uuid.New(), uuid.New(), []uuid.UUID{questions[0].ID})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}

	// Another writer completes the row between the caller's read and its
	// guarded write.
	won, err := store.CompleteIfOpen(assignment.ID, 100, map[string]string{questions[0].ID.String(): "0"}, now)
	if err != nil || !won {
		t.Fatalf("seed completion failed: won=%v err=%v", won, err)
	}

	stored, _, err := svc.Submit(assignment, questions, map[string]string{questions[0].ID.String(): "1"})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("err = %v, want ErrAlreadyCompleted", err)
	}
	if stored.Score == nil || *stored.Score != 100.0 {
		t.Errorf("loser saw score %v, want the winner's 100.0", stored.Score)
	}
}
