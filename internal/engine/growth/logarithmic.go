package growth

import (
	"fmt"
	"math"
	"time"

	"github.com/claude/raptorfit/internal/models"
)

// GrowthProfile describes how fast a lift is expected to progress and where it
// plateaus.
type GrowthProfile struct {
	WeeklyGrowthRate float64 `json:"weeklyGrowthRate"`
	NaturalMax       float64 `json:"naturalMax"`
}

var (
	// SIGrowthProfile is used for the aggregate strength index series.
	SIGrowthProfile = GrowthProfile{WeeklyGrowthRate: 0.015, NaturalMax: 250}
	// DefaultGrowthProfile covers exercises without their own profile.
	DefaultGrowthProfile = GrowthProfile{WeeklyGrowthRate: 0.01, NaturalMax: 200}
)

var exerciseProfiles = map[string]GrowthProfile{
	"bench press":    {WeeklyGrowthRate: 0.012, NaturalMax: 180},
	"squat":          {WeeklyGrowthRate: 0.015, NaturalMax: 250},
	"back squat":     {WeeklyGrowthRate: 0.015, NaturalMax: 250},
	"front squat":    {WeeklyGrowthRate: 0.013, NaturalMax: 200},
	"deadlift":       {WeeklyGrowthRate: 0.015, NaturalMax: 300},
	"overhead press": {WeeklyGrowthRate: 0.010, NaturalMax: 110},
	"barbell row":    {WeeklyGrowthRate: 0.012, NaturalMax: 160},
	"pull ups":       {WeeklyGrowthRate: 0.008, NaturalMax: 80},
	"leg press":      {WeeklyGrowthRate: 0.018, NaturalMax: 400},
	"bicep curl":     {WeeklyGrowthRate: 0.008, NaturalMax: 70},
	"barbell curl":   {WeeklyGrowthRate: 0.008, NaturalMax: 80},
	"dips":           {WeeklyGrowthRate: 0.010, NaturalMax: 100},
}

// Growth buckets for observed versus expected progress.
const (
	StatusLagging   = "lagging"
	StatusOnTrack   = "on_track"
	StatusExceeding = "exceeding"
)

const (
	DefaultProjectionWeeks = 12
	maxProjectionRatio     = 1.1
)

// ProfileFor returns the growth profile of an exercise, falling back to
// DefaultGrowthProfile.
func ProfileFor(exercise string) GrowthProfile {
	if p, ok := exerciseProfiles[models.NormalizeExerciseName(exercise)]; ok {
		return p
	}
	return DefaultGrowthProfile
}

// ExpectedAt is the logarithmic growth curve from base after weeks.
func ExpectedAt(base float64, p GrowthProfile, weeks float64) float64 {
	if weeks < 0 {
		weeks = 0
	}
	return base + base*p.WeeklyGrowthRate*math.Log(weeks+1)
}

// GrowthAssessment compares the latest observation to the logarithmic curve
// anchored at the first one.
type GrowthAssessment struct {
	Series       string                   `json:"series"`
	Profile      GrowthProfile            `json:"profile"`
	Base         float64                  `json:"base"`
	Observed     float64                  `json:"observed"`
	Expected     float64                  `json:"expected"`
	WeeksElapsed float64                  `json:"weeksElapsed"`
	Ratio        float64                  `json:"ratio"`
	Status       string                   `json:"status"`
	SIAdjustment float64                  `json:"siAdjustment"`
	Projection   []models.TimeSeriesPoint `json:"projection"`
}

// AssessGrowth fits the series to the profile and projects futureWeeks weekly
// points. The first point is the base. An empty series is ErrInsufficientData.
func AssessGrowth(name string, series []models.TimeSeriesPoint, p GrowthProfile, futureWeeks int) (*GrowthAssessment, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("growth assessment for %q: %w", name, ErrInsufficientData)
	}
	if futureWeeks <= 0 {
		futureWeeks = DefaultProjectionWeeks
	}

	points := models.SortPoints(series)
	first, last := points[0], points[len(points)-1]
	weeks := last.Date.Sub(first.Date).Hours() / (24 * 7)
	expected := ExpectedAt(first.Value, p, weeks)

	ratio := 1.0
	if expected > 0 {
		ratio = last.Value / expected
	}

	a := &GrowthAssessment{
		Series:       name,
		Profile:      p,
		Base:         first.Value,
		Observed:     last.Value,
		Expected:     round2(expected),
		WeeksElapsed: round2(weeks),
		Ratio:        round2(ratio),
		Status:       growthStatus(ratio),
		SIAdjustment: round2((ratio - 1) * 5),
		Projection:   make([]models.TimeSeriesPoint, 0, futureWeeks),
	}

	scale := math.Min(ratio, maxProjectionRatio)
	for w := 1; w <= futureWeeks; w++ {
		v := ExpectedAt(first.Value, p, weeks+float64(w)) * scale
		if p.NaturalMax > 0 && v > p.NaturalMax {
			v = p.NaturalMax
		}
		a.Projection = append(a.Projection, models.TimeSeriesPoint{
			Date:  last.Date.Add(time.Duration(w) * 7 * 24 * time.Hour),
			Value: round2(v),
		})
	}
	return a, nil
}

// AssessExerciseGrowth runs AssessGrowth with the exercise's profile.
func AssessExerciseGrowth(exercise string, series []models.TimeSeriesPoint, futureWeeks int) (*GrowthAssessment, error) {
	return AssessGrowth(exercise, series, ProfileFor(exercise), futureWeeks)
}

// ForecastSIGrowth runs AssessGrowth over the strength index series.
func ForecastSIGrowth(series []models.TimeSeriesPoint, futureWeeks int) (*GrowthAssessment, error) {
	return AssessGrowth("si", series, SIGrowthProfile, futureWeeks)
}

func growthStatus(ratio float64) string {
	switch {
	case ratio < 0.9:
		return StatusLagging
	case ratio > 1.1:
		return StatusExceeding
	default:
		return StatusOnTrack
	}
}
