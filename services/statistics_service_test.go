package services

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/azmoonhq/azmoon_portal/models"
)

func completedAssignment(percent float64, completedAt time.Time) models.ExamAssignment {
	score := percent
	at := completedAt
	return models.ExamAssignment{
		ID:          uuid.New(),
		Score:       &score,
		CompletedAt: &at,
	}
}

func TestRescaleScore(t *testing.T) {
	tests := []struct {
		percent float64
		want    float64
	}{
		{100, 20},
		{75, 15},
		{50, 10},
		{0, 0},
	}
	for _, tt := range tests {
		if got := RescaleScore(tt.percent); got != tt.want {
			t.Errorf("RescaleScore(%v) = %v, want %v", tt.percent, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	now := time.Now()
	assignments := []models.ExamAssignment{
		completedAssignment(100, now),
		completedAssignment(80, now),
		completedAssignment(60, now),
		completedAssignment(40, now),
		{ID: uuid.New()}, // still open, must be excluded
	}

	summary := Summarize(assignments)

	if summary.Participants != 4 {
		t.Errorf("participants = %d, want 4", summary.Participants)
	}
	if summary.Mean != 14.0 {
		t.Errorf("mean = %v, want 14.0", summary.Mean)
	}
	if summary.Median != 14.0 {
		t.Errorf("median = %v, want 14.0", summary.Median)
	}
	if summary.StdDev != 4.47 {
		t.Errorf("stddev = %v, want 4.47", summary.StdDev)
	}
	if summary.Min != 8.0 {
		t.Errorf("min = %v, want 8.0", summary.Min)
	}
	if summary.Max != 20.0 {
		t.Errorf("max = %v, want 20.0", summary.Max)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	if summary != (ScoreSummary{}) {
		t.Errorf("empty input summary = %+v, want zero value", summary)
	}
}

func TestBucketScores(t *testing.T) {
	now := time.Now()
	// Rescaled: 0, 39.9->7.98, 40->8, 59.9->11.98, 60->12, 79.9->15.98, 80->16, 100->20.
	assignments := []models.ExamAssignment{
		completedAssignment(0, now),
		completedAssignment(39.9, now),
		completedAssignment(40, now),
		completedAssignment(59.9, now),
		completedAssignment(60, now),
		completedAssignment(79.9, now),
		completedAssignment(80, now),
		completedAssignment(100, now),
	}

	buckets := BucketScores(assignments)

	if buckets.Weak != 2 {
		t.Errorf("weak = %d, want 2", buckets.Weak)
	}
	if buckets.Average != 2 {
		t.Errorf("average = %d, want 2", buckets.Average)
	}
	if buckets.Good != 2 {
		t.Errorf("good = %d, want 2", buckets.Good)
	}
	if buckets.Excellent != 2 {
		t.Errorf("excellent = %d, want 2", buckets.Excellent)
	}
}

func TestMonthlyTrend(t *testing.T) {
	march := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	april := time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)
	assignments := []models.ExamAssignment{
		completedAssignment(100, april),
		completedAssignment(60, march),
		completedAssignment(80, march),
		{ID: uuid.New()}, // open, excluded
	}

	points := MonthlyTrend(assignments)

	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Month != time.March || points[0].Year != 2025 {
		t.Errorf("first point = %d-%v, want 2025-March", points[0].Year, points[0].Month)
	}
	if points[0].Average != 14.0 {
		t.Errorf("march average = %v, want 14.0", points[0].Average)
	}
	if points[0].Count != 2 {
		t.Errorf("march count = %d, want 2", points[0].Count)
	}
	if points[1].Month != time.April {
		t.Errorf("second point month = %v, want April", points[1].Month)
	}
	if points[1].Average != 20.0 {
		t.Errorf("april average = %v, want 20.0", points[1].Average)
	}
	if points[0].Label == "" || points[1].Label == "" {
		t.Error("expected Jalali labels on trend points")
	}
}

func TestRadar(t *testing.T) {
	now := time.Now()
	assignments := []models.ExamAssignment{
		completedAssignment(100, now),
		completedAssignment(80, now),
		completedAssignment(60, now),
		completedAssignment(40, now),
	}

	radar := Radar(assignments)

	if radar.Mean != 14.0 {
		t.Errorf("mean = %v, want 14.0", radar.Mean)
	}
	if radar.Median != 14.0 {
		t.Errorf("median = %v, want 14.0", radar.Median)
	}
	if radar.Max != 20.0 {
		t.Errorf("max = %v, want 20.0", radar.Max)
	}
	if radar.Stability != 15.53 {
		t.Errorf("stability = %v, want 15.53", radar.Stability)
	}
	if radar.Coverage != 2.67 {
		t.Errorf("coverage = %v, want 2.67", radar.Coverage)
	}
}

func TestRadarCoverageCapped(t *testing.T) {
	now := time.Now()
	assignments := make([]models.ExamAssignment, 0, ReferenceClassSize+10)
	for i := 0; i < ReferenceClassSize+10; i++ {
		assignments = append(assignments, completedAssignment(70, now))
	}

	radar := Radar(assignments)
	if radar.Coverage != DisplayScale {
		t.Errorf("coverage = %v, want capped at %v", radar.Coverage, DisplayScale)
	}
}

func TestRadarEmpty(t *testing.T) {
	if got := Radar(nil); got != (RadarSummary{}) {
		t.Errorf("empty radar = %+v, want zero value", got)
	}
}
