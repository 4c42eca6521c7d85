package models

import "time"

// AlphaSession is one workout as exported by Alpha Progression, before it is
// converted to a WorkoutSession.
type AlphaSession struct {
	Name        string
	Date        time.Time
	DurationMin int
	Exercises   []AlphaExercise
}

// AlphaExercise is a numbered exercise block. TargetReps is the rep goal from
// the block header, not what was performed.
type AlphaExercise struct {
	Number     int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []AlphaSet
}

// WorkingSets returns the sets that count as training, in order, and the
// number of warm-up sets skipped.
func (e AlphaExercise) WorkingSets() (sets []AlphaSet, warmups int) {
	for _, s := range e.Sets {
		if s.IsWarmup {
			warmups++
			continue
		}
		sets = append(sets, s)
	}
	return sets, warmups
}

// AlphaSet is one logged set. WeightKg is the added load for bodyweight-plus
// sets. RIR is negative when not logged.
type AlphaSet struct {
	Number           int
	WeightKg         float64
	IsBodyweightPlus bool
	Reps             int
	RIR              float64
	IsWarmup         bool
}

// RPE converts reps in reserve to an RPE of 10 - RIR, floored at 0. It is
// nil when no RIR was logged.
func (s AlphaSet) RPE() *float64 {
	if s.RIR < 0 {
		return nil
	}
	rpe := max(0, 10-s.RIR)
	return &rpe
}
