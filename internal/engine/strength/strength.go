// Package strength collapses lift history into a bodyweight-normalized
// strength index (SI).
package strength

import (
	"math"
	"sort"

	"github.com/claude/raptorfit/internal/models"
)

// GroupWeights scales each muscle group's contribution to the index.
var GroupWeights = map[models.MuscleGroup]float64{
	models.Legs:      1.2,
	models.Chest:     1.0,
	models.Back:      1.0,
	models.Shoulders: 0.8,
	models.Arms:      0.7,
	models.Core:      0.6,
}

// Result is the computed index for a history.
type Result struct {
	TotalSI   float64          `json:"totalSI"`
	Breakdown models.Breakdown `json:"breakdown"`
	// BestLifts holds the retained best lift per exercise, keyed by normalized name.
	BestLifts map[string]BestLift `json:"bestLifts"`
	// Unmapped lists exercises that could not be attributed to a muscle group.
	// They do not contribute to the index.
	Unmapped []string `json:"unmapped,omitempty"`
}

// BestLift is the highest estimated 1RM observed for one exercise.
type BestLift struct {
	Exercise     string             `json:"exercise"`
	MuscleGroup  models.MuscleGroup `json:"muscleGroup"`
	Weight       float64            `json:"weight"`
	Reps         int                `json:"reps"`
	OneRepMax    float64            `json:"oneRepMax"`
	Contribution float64            `json:"contribution"`
}

// OneRepMax estimates a one-rep max with the Epley formula.
func OneRepMax(weight float64, reps int) float64 {
	if reps <= 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// Compute builds the strength index from workouts for a lifter of the given
// bodyweight. A non-positive bodyweight yields a zero index.
func Compute(workouts []models.WorkoutSession, bodyweight float64) Result {
	res := Result{BestLifts: make(map[string]BestLift)}
	unmapped := make(map[string]struct{})

	for _, w := range workouts {
		for _, ex := range w.Exercises {
			key := models.NormalizeExerciseName(ex.Name)
			if key == "" {
				continue
			}
			group, ok := ResolveGroup(ex)
			if !ok {
				unmapped[key] = struct{}{}
				continue
			}
			for _, set := range ex.Sets {
				if set.Reps <= 0 || set.Weight <= 0 {
					continue
				}
				orm := OneRepMax(set.Weight, set.Reps)
				if cur, seen := res.BestLifts[key]; seen && cur.OneRepMax >= orm {
					continue
				}
				res.BestLifts[key] = BestLift{
					Exercise:    ex.Name,
					MuscleGroup: group,
					Weight:      set.Weight,
					Reps:        set.Reps,
					OneRepMax:   orm,
				}
			}
		}
	}

	var raw models.Breakdown
	if bodyweight > 0 {
		for key, lift := range res.BestLifts {
			lift.Contribution = lift.OneRepMax / bodyweight * GroupWeights[lift.MuscleGroup]
			res.BestLifts[key] = lift
			raw.Add(lift.MuscleGroup, lift.Contribution)
		}
	}

	for _, g := range models.MuscleGroups {
		res.Breakdown.Add(g, round1(raw.Get(g)))
	}
	res.TotalSI = round1(res.Breakdown.Sum())

	for key := range unmapped {
		res.Unmapped = append(res.Unmapped, key)
	}
	sort.Strings(res.Unmapped)
	return res
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
