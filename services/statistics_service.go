package services

import (
	"math"
	"sort"
	"time"

	"github.com/montanaflynn/stats"
	ptime "github.com/yaa110/go-persian-calendar"

	"github.com/azmoonhq/azmoon_portal/models"
)

// DisplayScale maps stored percentage scores onto the 0-20 scale used for
// all student-facing reporting.
const DisplayScale = 20.0

// ReferenceClassSize is the assumed full class size behind the coverage axis
// of the radar summary. Tunable, not a law.
const ReferenceClassSize = 30

type ScoreSummary struct {
	Participants int     `json:"participants"`
	Mean         float64 `json:"mean"`
	Median       float64 `json:"median"`
	StdDev       float64 `json:"std_dev"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
}

// ScoreBuckets is the fixed-boundary histogram on the 0-20 scale.
type ScoreBuckets struct {
	Weak      int `json:"weak"`      // [0, 8)
	Average   int `json:"average"`   // [8, 12)
	Good      int `json:"good"`      // [12, 16)
	Excellent int `json:"excellent"` // [16, 20]
}

type MonthlyPoint struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Label   string     `json:"label"`
	Average float64    `json:"average"`
	Count   int        `json:"count"`
}

// RadarSummary is the five-axis composite used by the report charts.
type RadarSummary struct {
	Mean      float64 `json:"mean"`
	Median    float64 `json:"median"`
	Max       float64 `json:"max"`
	Stability float64 `json:"stability"`
	Coverage  float64 `json:"coverage"`
}

// RescaleScore converts a 0-100 percentage to the 0-20 display scale.
func RescaleScore(percent float64) float64 {
	return percent * DisplayScale / 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// completedScores collects the rescaled scores of completed assignments.
func completedScores(assignments []models.ExamAssignment) []float64 {
	scores := make([]float64, 0, len(assignments))
	for _, a := range assignments {
		if !a.Completed() || a.Score == nil {
			continue
		}
		scores = append(scores, RescaleScore(*a.Score))
	}
	return scores
}

// Summarize computes descriptive statistics over completed assignments,
// rescaled to 0-20 and rounded to two decimals. Standard deviation is the
// population form. An empty input yields all zeros.
func Summarize(assignments []models.ExamAssignment) ScoreSummary {
	scores := completedScores(assignments)
	if len(scores) == 0 {
		return ScoreSummary{}
	}

	mean, _ := stats.Mean(scores)
	median, _ := stats.Median(scores)
	stdev, _ := stats.StdDevP(scores)
	min, _ := stats.Min(scores)
	max, _ := stats.Max(scores)

	return ScoreSummary{
		Participants: len(scores),
		Mean:         round2(mean),
		Median:       round2(median),
		StdDev:       round2(stdev),
		Min:          round2(min),
		Max:          round2(max),
	}
}

// BucketScores assigns each completed score to the weak/average/good/excellent
// histogram.
func BucketScores(assignments []models.ExamAssignment) ScoreBuckets {
	var buckets ScoreBuckets
	for _, score := range completedScores(assignments) {
		switch {
		case score < 8:
			buckets.Weak++
		case score < 12:
			buckets.Average++
		case score < 16:
			buckets.Good++
		default:
			buckets.Excellent++
		}
	}
	return buckets
}

// MonthlyTrend groups completed assignments by the calendar month of their
// completion and averages the rescaled score per month, oldest first. Labels
// carry the Jalali month for display.
func MonthlyTrend(assignments []models.ExamAssignment) []MonthlyPoint {
	type acc struct {
		sum   float64
		count int
		when  time.Time
	}
	byMonth := map[string]*acc{}

	for _, a := range assignments {
		if !a.Completed() || a.Score == nil {
			continue
		}
		monthStart := time.Date(a.CompletedAt.Year(), a.CompletedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		key := monthStart.Format("2006-01")
		entry, ok := byMonth[key]
		if !ok {
			entry = &acc{when: monthStart}
			byMonth[key] = entry
		}
		entry.sum += RescaleScore(*a.Score)
		entry.count++
	}

	points := make([]MonthlyPoint, 0, len(byMonth))
	for _, entry := range byMonth {
		points = append(points, MonthlyPoint{
			Year:    entry.when.Year(),
			Month:   entry.when.Month(),
			Label:   ptime.New(entry.when).Format("MMM yyyy"),
			Average: round2(entry.sum / float64(entry.count)),
			Count:   entry.count,
		})
	}
	sort.Slice(points, func(i, j int) bool {
		if points[i].Year != points[j].Year {
			return points[i].Year < points[j].Year
		}
		return points[i].Month < points[j].Month
	})
	return points
}

// Radar builds the five-axis composite summary. Stability rewards a tight
// score spread; coverage rewards participation relative to
// ReferenceClassSize.
func Radar(assignments []models.ExamAssignment) RadarSummary {
	summary := Summarize(assignments)
	if summary.Participants == 0 {
		return RadarSummary{}
	}

	stability := DisplayScale - summary.StdDev
	if stability < 0 {
		stability = 0
	}
	coverage := DisplayScale * float64(summary.Participants) / ReferenceClassSize
	if coverage > DisplayScale {
		coverage = DisplayScale
	}

	return RadarSummary{
		Mean:      summary.Mean,
		Median:    summary.Median,
		Max:       summary.Max,
		Stability: round2(stability),
		Coverage:  round2(coverage),
	}
}
