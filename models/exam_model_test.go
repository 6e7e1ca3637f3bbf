package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestExamIsBank(t *testing.T) {
	now := time.Now()
	source := uuid.New()

	tests := []struct {
		name string
		exam Exam
		want bool
	}{
		{"no source, no schedule", Exam{}, true},
		{"scheduled instance", Exam{SourceExamID: &source, StartTime: &now}, false},
		{"scheduled without source", Exam{StartTime: &now}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.exam.IsBank(); got != tt.want {
				t.Errorf("IsBank() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExamWindow(t *testing.T) {
	now := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	open := Exam{StartTime: &past, EndTime: &future}
	if open.WindowClosed(now) {
		t.Error("open exam reported closed")
	}
	if open.NotYetOpen(now) {
		t.Error("open exam reported not yet open")
	}

	closed := Exam{StartTime: &past, EndTime: &past}
	if !closed.WindowClosed(now) {
		t.Error("past exam reported still open")
	}

	pending := Exam{StartTime: &future, EndTime: &future}
	if !pending.NotYetOpen(now) {
		t.Error("future exam reported already open")
	}

	unscheduled := Exam{}
	if unscheduled.WindowClosed(now) || unscheduled.NotYetOpen(now) {
		t.Error("bank without schedule should never close or be pending")
	}
}
