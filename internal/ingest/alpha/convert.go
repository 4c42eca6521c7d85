package alpha

import (
	"sort"

	"github.com/claude/raptorfit/internal/engine/strength"
	"github.com/claude/raptorfit/internal/models"
)

// ToWorkoutSession converts a parsed session into the training model. Warm-up
// sets are dropped. RIR is turned into RPE as 10 - RIR; sets without RIR carry
// no RPE. Bodyweight-plus sets keep only the added load. Exercises the strength
// table does not know are kept with an empty group and returned as unmapped.
func ToWorkoutSession(a models.AlphaSession) (s models.WorkoutSession, warmups int, unmapped []string) {
	s = models.WorkoutSession{
		Date:        a.Date,
		Name:        a.Name,
		DurationMin: a.DurationMin,
		Exercises:   make([]models.ExerciseEntry, 0, len(a.Exercises)),
	}
	seen := make(map[string]bool)
	for _, ex := range a.Exercises {
		entry := models.ExerciseEntry{Name: ex.Name}
		if g, ok := strength.LookupGroup(ex.Name); ok {
			entry.MuscleGroup = g
		} else if key := models.NormalizeExerciseName(ex.Name); !seen[key] {
			seen[key] = true
			unmapped = append(unmapped, key)
		}
		sets, skipped := ex.WorkingSets()
		warmups += skipped
		for _, set := range sets {
			entry.Sets = append(entry.Sets, models.SetEntry{
				Reps:   set.Reps,
				Weight: set.WeightKg,
				RPE:    set.RPE(),
			})
		}
		if len(entry.Sets) > 0 {
			s.Exercises = append(s.Exercises, entry)
		}
	}
	sort.Strings(unmapped)
	return s, warmups, unmapped
}
