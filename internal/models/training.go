package models

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MuscleGroup is one of the fixed training groups a lift is attributed to.
type MuscleGroup string

const (
	Chest     MuscleGroup = "chest"
	Back      MuscleGroup = "back"
	Legs      MuscleGroup = "legs"
	Shoulders MuscleGroup = "shoulders"
	Arms      MuscleGroup = "arms"
	Core      MuscleGroup = "core"
)

// MuscleGroups lists every group in display order.
var MuscleGroups = []MuscleGroup{Chest, Back, Legs, Shoulders, Arms, Core}

// ParseMuscleGroup normalizes s and reports whether it names a known group.
func ParseMuscleGroup(s string) (MuscleGroup, bool) {
	g := MuscleGroup(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range MuscleGroups {
		if g == known {
			return g, true
		}
	}
	return "", false
}

// SetEntry is one logged set. RPE is nil when the lifter did not track it.
type SetEntry struct {
	Reps   int      `json:"reps"`
	Weight float64  `json:"weight"`
	RPE    *float64 `json:"rpe,omitempty"`
}

// ExerciseEntry groups the sets of one exercise within a session.
type ExerciseEntry struct {
	Name        string      `json:"name"`
	MuscleGroup MuscleGroup `json:"muscleGroup,omitempty"`
	Sets        []SetEntry  `json:"sets"`
}

// WorkoutSession is a single logged training session.
type WorkoutSession struct {
	ID          uuid.UUID       `json:"id"`
	Date        time.Time       `json:"date"`
	Name        string          `json:"name,omitempty"`
	DurationMin int             `json:"durationMinutes,omitempty"`
	Exercises   []ExerciseEntry `json:"exercises"`
}

// RecoveryLog is a daily wellbeing entry. SleepQuality is on the 1-10 scale
// used by the logging UI.
type RecoveryLog struct {
	Date         time.Time `json:"date"`
	SleepHours   float64   `json:"sleepHours"`
	SleepQuality float64   `json:"sleepQuality"`
	Soreness     int       `json:"soreness"`
	Stress       int       `json:"stress"`
}

// TimeSeriesPoint is the generic input of the growth engine.
type TimeSeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// SortPoints returns a date-ordered copy of points. The input is not modified.
func SortPoints(points []TimeSeriesPoint) []TimeSeriesPoint {
	sorted := make([]TimeSeriesPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return sorted
}

// Breakdown holds the strength index contribution of each muscle group.
type Breakdown struct {
	Chest     float64 `json:"chest"`
	Back      float64 `json:"back"`
	Legs      float64 `json:"legs"`
	Shoulders float64 `json:"shoulders"`
	Arms      float64 `json:"arms"`
	Core      float64 `json:"core"`
}

// Get returns the value for group g.
func (b Breakdown) Get(g MuscleGroup) float64 {
	switch g {
	case Chest:
		return b.Chest
	case Back:
		return b.Back
	case Legs:
		return b.Legs
	case Shoulders:
		return b.Shoulders
	case Arms:
		return b.Arms
	case Core:
		return b.Core
	}
	return 0
}

// Add increments the value for group g by v.
func (b *Breakdown) Add(g MuscleGroup, v float64) {
	switch g {
	case Chest:
		b.Chest += v
	case Back:
		b.Back += v
	case Legs:
		b.Legs += v
	case Shoulders:
		b.Shoulders += v
	case Arms:
		b.Arms += v
	case Core:
		b.Core += v
	}
}

// Sum adds up all groups.
func (b Breakdown) Sum() float64 {
	return b.Chest + b.Back + b.Legs + b.Shoulders + b.Arms + b.Core
}

// StrengthIndexSnapshot is a persisted point of the strength index history.
type StrengthIndexSnapshot struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	TotalSI       float64   `json:"totalSI"`
	Breakdown     Breakdown `json:"breakdown"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"changePercent"`
}

// ExercisePerformance is one session's sets for a single exercise.
type ExercisePerformance struct {
	Date        time.Time   `json:"date"`
	Exercise    string      `json:"exercise"`
	MuscleGroup MuscleGroup `json:"muscleGroup,omitempty"`
	Sets        []SetEntry  `json:"sets"`
}

// MaxWeight returns the heaviest set weight, or 0 without sets.
func (p ExercisePerformance) MaxWeight() float64 {
	var best float64
	for _, s := range p.Sets {
		if s.Weight > best {
			best = s.Weight
		}
	}
	return best
}

// NormalizeExerciseName is the canonical key for exercise lookups.
func NormalizeExerciseName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ExerciseHistories splits sessions into per-exercise, date-ordered histories keyed
// by normalized exercise name.
func ExerciseHistories(sessions []WorkoutSession) map[string][]ExercisePerformance {
	out := make(map[string][]ExercisePerformance)
	for _, s := range sessions {
		for _, ex := range s.Exercises {
			if len(ex.Sets) == 0 {
				continue
			}
			key := NormalizeExerciseName(ex.Name)
			out[key] = append(out[key], ExercisePerformance{
				Date:        s.Date,
				Exercise:    ex.Name,
				MuscleGroup: ex.MuscleGroup,
				Sets:        ex.Sets,
			})
		}
	}
	for key := range out {
		hist := out[key]
		sort.SliceStable(hist, func(i, j int) bool {
			return hist[i].Date.Before(hist[j].Date)
		})
	}
	return out
}
