// Package recommend turns exercise history and readiness into next-session
// prescriptions.
package recommend

import (
	"fmt"
	"math"

	"github.com/claude/raptorfit/internal/engine/strength"
	"github.com/claude/raptorfit/internal/models"
)

// Beginner defaults used when an exercise has no history.
const (
	DefaultWeight     = 20.0
	DefaultSets       = 3
	DefaultReps       = 10
	DefaultConfidence = 50
)

const (
	defaultProgressRate = 0.025
	minProgressRate     = 0.01
	maxProgressRate     = 0.10
	minWeightStep       = 0.02
	maxSets             = 5
)

// Recommendation is the suggested prescription for the next session of one exercise.
type Recommendation struct {
	Exercise        string             `json:"exercise"`
	MuscleGroup     models.MuscleGroup `json:"muscleGroup,omitempty"`
	SuggestedWeight float64            `json:"suggestedWeight"`
	SuggestedSets   int                `json:"suggestedSets"`
	SuggestedReps   int                `json:"suggestedReps"`
	Reasoning       string             `json:"reasoning"`
	Confidence      int                `json:"confidence"`
	// LastWeight is the heaviest weight of the latest session, 0 without history.
	LastWeight float64 `json:"lastWeight"`
}

// NextWeight recommends the next session for exercise from its date-ordered
// history. fatigueFactor scales the load increase; recoveryScore is 0-100.
func NextWeight(exercise string, history []models.ExercisePerformance, fatigueFactor float64, recoveryScore int) Recommendation {
	if len(history) == 0 {
		return Recommendation{
			Exercise:        exercise,
			SuggestedWeight: DefaultWeight,
			SuggestedSets:   DefaultSets,
			SuggestedReps:   DefaultReps,
			Reasoning:       "No history for this exercise yet. Start light and focus on form.",
			Confidence:      DefaultConfidence,
		}
	}

	last := history[len(history)-1]
	lastMax := last.MaxWeight()
	rate := progressRate(history)

	avgRPE, rpeTracked := averageRPE(last.Sets)
	adjustment := 0.8
	branch := "standard"
	switch {
	case rpeTracked && avgRPE < 7:
		adjustment = 1.2
		branch = "rpe-low"
	case rpeTracked && avgRPE > 9:
		adjustment = 0.3
		branch = "rpe-high"
	}
	if recoveryScore < 60 {
		adjustment *= 0.5
	}

	increase := lastMax * rate * fatigueFactor * adjustment
	avgReps := averageReps(last.Sets)
	lastSets := len(last.Sets)

	rec := Recommendation{
		Exercise:   exercise,
		LastWeight: lastMax,
		Confidence: confidence(len(history), historyTracksRPE(history)),
	}
	if g, ok := strength.ResolveGroup(models.ExerciseEntry{Name: exercise, MuscleGroup: last.MuscleGroup}); ok {
		rec.MuscleGroup = g
	}

	// Unloaded exercises such as bodyweight pull-ups progress by volume.
	if lastMax <= 0 || increase < minWeightStep*lastMax {
		rec.SuggestedWeight = roundToHalf(lastMax)
		if avgReps < 12 {
			rec.SuggestedSets = lastSets
			rec.SuggestedReps = int(math.Round(avgReps)) + 1
			rec.Reasoning = reasoning(branch, "Hold the weight and add a rep per set.")
		} else {
			rec.SuggestedSets = min(maxSets, lastSets+1)
			rec.SuggestedReps = max(8, int(math.Round(avgReps*0.8)))
			rec.Reasoning = reasoning(branch, "Hold the weight and add a set.")
		}
		return rec
	}

	rec.SuggestedWeight = roundToHalf(lastMax + increase)
	rec.SuggestedSets = lastSets
	rec.SuggestedReps = int(math.Round(avgReps))
	rec.Reasoning = reasoning(branch, fmt.Sprintf("Add %.1f kg.", rec.SuggestedWeight-roundToHalf(lastMax)))
	return rec
}

func reasoning(branch, action string) string {
	switch branch {
	case "rpe-low":
		return "Last session felt easy (RPE under 7), there is room to grow. " + action
	case "rpe-high":
		return "Last session was near max effort (RPE over 9), backing off progression. " + action
	default:
		return "Steady progression based on your recent trend. " + action
	}
}

// progressRate is the weekly fractional change of max weight from the first
// to the last session, clamped to [1%, 10%].
func progressRate(history []models.ExercisePerformance) float64 {
	if len(history) < 2 {
		return defaultProgressRate
	}
	first, last := history[0], history[len(history)-1]
	w0, w1 := first.MaxWeight(), last.MaxWeight()
	weeks := last.Date.Sub(first.Date).Hours() / (24 * 7)
	if w0 <= 0 || weeks <= 0 {
		return defaultProgressRate
	}
	rate := (w1 - w0) / w0 / weeks
	return math.Max(minProgressRate, math.Min(maxProgressRate, rate))
}

func averageRPE(sets []models.SetEntry) (float64, bool) {
	var sum float64
	var n int
	for _, s := range sets {
		if s.RPE != nil {
			sum += *s.RPE
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func averageReps(sets []models.SetEntry) float64 {
	if len(sets) == 0 {
		return 0
	}
	var sum int
	for _, s := range sets {
		sum += s.Reps
	}
	return float64(sum) / float64(len(sets))
}

func historyTracksRPE(history []models.ExercisePerformance) bool {
	for _, h := range history {
		if _, ok := averageRPE(h.Sets); ok {
			return true
		}
	}
	return false
}

func confidence(historyCount int, rpeTracked bool) int {
	dataScore := math.Min(100, float64(historyCount)/10*100)
	rpeScore := 70.0
	if rpeTracked {
		rpeScore = 100
	}
	return int(math.Round(0.6*dataScore + 0.4*rpeScore))
}

func roundToHalf(v float64) float64 {
	return math.Round(v*2) / 2
}
