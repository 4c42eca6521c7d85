package alpha

import (
	"strings"
	"testing"

	"github.com/claude/raptorfit/internal/models"
	"github.com/google/go-cmp/cmp"
)

// TestToWorkoutSession verifies warm-ups are dropped, groups resolved and RIR
// turned into RPE.
func TestToWorkoutSession(t *testing.T) {
	parsed, err := Parse(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}

	s, warmups, unmapped := ToWorkoutSession(parsed[0])
	if warmups != 5 {
		t.Errorf("warmups = %d, want 5", warmups)
	}
	if len(unmapped) != 0 {
		t.Errorf("unmapped = %v, want none", unmapped)
	}
	if s.DurationMin != 62 || s.Name != parsed[0].Name {
		t.Errorf("header = %q/%d", s.Name, s.DurationMin)
	}

	var groups []models.MuscleGroup
	for _, ex := range s.Exercises {
		groups = append(groups, ex.MuscleGroup)
	}
	want := []models.MuscleGroup{models.Legs, models.Legs, models.Back, models.Legs, models.Legs, models.Core}
	if diff := cmp.Diff(want, groups); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	hack := s.Exercises[0]
	if len(hack.Sets) != 3 {
		t.Fatalf("hack squat sets = %d, want 3 working sets", len(hack.Sets))
	}
	if hack.Sets[0].Weight != 115 || hack.Sets[0].Reps != 8 {
		t.Errorf("first set = %+v", hack.Sets[0])
	}
	if hack.Sets[0].RPE == nil || *hack.Sets[0].RPE != 9 {
		t.Errorf("rpe = %v, want 9", hack.Sets[0].RPE)
	}

	hyper := s.Exercises[2]
	if hyper.Sets[0].Weight != 35 || *hyper.Sets[0].RPE != 10 {
		t.Errorf("hyperextension set = %+v, want +35 kg at rpe 10", hyper.Sets[0])
	}
}

// TestToWorkoutSessionUnmapped verifies unknown exercises are kept without a
// group and listed once.
func TestToWorkoutSessionUnmapped(t *testing.T) {
	a := models.AlphaSession{
		Name: "Odd day",
		Exercises: []models.AlphaExercise{
			{Number: 1, Name: "Zercher Carry", Sets: []models.AlphaSet{{Number: 1, WeightKg: 60, Reps: 8, RIR: -1}}},
			{Number: 2, Name: "zercher carry", Sets: []models.AlphaSet{{Number: 1, WeightKg: 70, Reps: 6, RIR: 2}}},
			{Number: 3, Name: "Bench Press", Sets: []models.AlphaSet{{Number: 1, WeightKg: 40, Reps: 10, IsWarmup: true}}},
		},
	}

	s, warmups, unmapped := ToWorkoutSession(a)
	if diff := cmp.Diff([]string{"zercher carry"}, unmapped); diff != "" {
		t.Errorf("unmapped mismatch (-want +got):\n%s", diff)
	}
	if warmups != 1 {
		t.Errorf("warmups = %d, want 1", warmups)
	}
	// The bench press block had only a warm-up and is dropped.
	if len(s.Exercises) != 2 {
		t.Fatalf("exercises = %d, want 2", len(s.Exercises))
	}
	if s.Exercises[0].MuscleGroup != "" {
		t.Errorf("group = %q, want empty", s.Exercises[0].MuscleGroup)
	}
	if s.Exercises[0].Sets[0].RPE != nil {
		t.Errorf("rpe = %v, want nil for unlogged RIR", *s.Exercises[0].Sets[0].RPE)
	}
	if *s.Exercises[1].Sets[0].RPE != 8 {
		t.Errorf("rpe = %v, want 8", *s.Exercises[1].Sets[0].RPE)
	}
}
