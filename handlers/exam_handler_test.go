package handlers

import (
	"testing"
	"time"

	"github.com/azmoonhq/azmoon_portal/models"
)

func strPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func scheduledExam(start, end time.Time, duration int) models.Exam {
	return models.Exam{
		Name:      "midterm",
		Duration:  duration,
		StartTime: &start,
		EndTime:   &end,
	}
}

func TestApplyExamTimingRejectsInvalidInput(t *testing.T) {
	base := time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		req  EditExamRequest
	}{
		{"unparseable start_time", EditExamRequest{StartTime: strPtr("not-a-date")}},
		{"unparseable end_time", EditExamRequest{EndTime: strPtr("tomorrow")}},
		{
			"window shorter than duration",
			EditExamRequest{
				StartTime:       strPtr("2026-01-01T10:00:00Z"),
				EndTime:         strPtr("2026-01-01T10:05:00Z"),
				DurationMinutes: intPtr(60),
			},
		},
		{
			"end before start",
			EditExamRequest{EndTime: strPtr("2026-01-01T09:00:00Z")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exam := scheduledExam(base, base.Add(time.Hour), 60)
			if err := applyExamTiming(&exam, tt.req); err == nil {
				t.Fatal("expected a validation error, got nil")
			}
		})
	}
}

func TestApplyExamTimingDoesNotMutateOnParseFailure(t *testing.T) {
	base := time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC)
	exam := scheduledExam(base, base.Add(time.Hour), 60)

	err := applyExamTiming(&exam, EditExamRequest{StartTime: strPtr("not-a-date")})
	if err == nil {
		t.Fatal("expected a validation error, got nil")
	}
	if exam.StartTime == nil || !exam.StartTime.Equal(base) {
		t.Errorf("start_time changed to %v despite parse failure", exam.StartTime)
	}
}

func TestApplyExamTimingAppliesValidEdits(t *testing.T) {
	base := time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC)
	exam := scheduledExam(base, base.Add(time.Hour), 60)

	err := applyExamTiming(&exam, EditExamRequest{
		Name:            "final",
		StartTime:       strPtr("2026-02-01T08:00:00Z"),
		EndTime:         strPtr("2026-02-01T10:00:00Z"),
		DurationMinutes: intPtr(90),
	})
	if err != nil {
		t.Fatalf("applyExamTiming: %v", err)
	}

	if exam.Name != "final" {
		t.Errorf("name = %q, want %q", exam.Name, "final")
	}
	wantStart := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	if !exam.StartTime.Equal(wantStart) {
		t.Errorf("start_time = %v, want %v", exam.StartTime, wantStart)
	}
	if exam.Duration != 90 {
		t.Errorf("duration = %d, want 90", exam.Duration)
	}
}

func TestApplyExamTimingClearsSchedule(t *testing.T) {
	base := time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC)
	exam := scheduledExam(base, base.Add(time.Hour), 60)

	err := applyExamTiming(&exam, EditExamRequest{
		StartTime: strPtr(""),
		EndTime:   strPtr(""),
	})
	if err != nil {
		t.Fatalf("applyExamTiming: %v", err)
	}
	if exam.StartTime != nil || exam.EndTime != nil {
		t.Errorf("schedule not cleared: start=%v end=%v", exam.StartTime, exam.EndTime)
	}
}
