package recommend

import (
	"math"
	"sort"

	"github.com/claude/raptorfit/internal/engine/growth"
	"github.com/claude/raptorfit/internal/models"
)

// Plan intensities.
const (
	IntensityLight    = "light"
	IntensityModerate = "moderate"
	IntensityHeavy    = "heavy"
)

const deloadPrefix = "DELOAD WEEK: "

// PlanInput carries everything GeneratePlan needs.
type PlanInput struct {
	// Histories maps normalized exercise names to date-ordered history.
	Histories     map[string][]models.ExercisePerformance
	CurrentSI     float64
	ExpectedSI    float64
	RecoveryScore int
	// DeloadThreshold is the relative shortfall below ExpectedSI that triggers
	// a deload; 0 means growth.DefaultDeloadThreshold.
	DeloadThreshold float64
	// FatigueFactor scales load increases; 0 means 1.
	FatigueFactor float64
	// MuscleGroup restricts the plan to one group when set.
	MuscleGroup models.MuscleGroup
}

// WorkoutPlan is the set of recommendations for the coming week.
type WorkoutPlan struct {
	Exercises        []Recommendation `json:"exercises"`
	OverallIntensity string           `json:"overallIntensity"`
	DeloadSuggested  bool             `json:"deloadSuggested"`
	ExpectedSIGain   float64          `json:"expectedSIGain"`
}

// GeneratePlan recommends every exercise in the input, in name order, and
// applies a deload when current strength trails expected by more than the
// deload threshold.
func GeneratePlan(in PlanInput) WorkoutPlan {
	fatigue := in.FatigueFactor
	if fatigue == 0 {
		fatigue = 1
	}
	deload := growth.CheckDeload(in.CurrentSI, in.ExpectedSI, in.DeloadThreshold).NeedsDeload

	plan := WorkoutPlan{
		Exercises:        []Recommendation{},
		DeloadSuggested:  deload,
		OverallIntensity: planIntensity(deload, in.RecoveryScore, in.CurrentSI, in.ExpectedSI),
	}

	names := make([]string, 0, len(in.Histories))
	for name := range in.Histories {
		names = append(names, name)
	}
	sort.Strings(names)

	var deltaSum float64
	for _, name := range names {
		hist := in.Histories[name]
		if len(hist) == 0 {
			continue
		}
		display := hist[len(hist)-1].Exercise
		if display == "" {
			display = name
		}
		rec := NextWeight(display, hist, fatigue, in.RecoveryScore)
		if in.MuscleGroup != "" && rec.MuscleGroup != in.MuscleGroup {
			continue
		}
		if deload {
			rec.SuggestedWeight = roundToHalf(rec.SuggestedWeight * 0.7)
			rec.SuggestedSets = max(2, rec.SuggestedSets-1)
			rec.Reasoning = deloadPrefix + rec.Reasoning
		}
		deltaSum += rec.SuggestedWeight - rec.LastWeight
		plan.Exercises = append(plan.Exercises, rec)
	}

	if n := len(plan.Exercises); n > 0 {
		plan.ExpectedSIGain = math.Round(deltaSum/float64(n)*0.5*100) / 100
	}
	return plan
}

func planIntensity(deload bool, recovery int, current, expected float64) string {
	switch {
	case deload || recovery < 60:
		return IntensityLight
	case recovery > 80 && current >= expected:
		return IntensityHeavy
	default:
		return IntensityModerate
	}
}
