package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// TestAlphaWorkingSets verifies warm-ups are skipped and counted.
func TestAlphaWorkingSets(t *testing.T) {
	ex := AlphaExercise{Name: "Bench Press", Sets: []AlphaSet{
		{Number: 1, WeightKg: 40, Reps: 10, RIR: -1, IsWarmup: true},
		{Number: 2, WeightKg: 60, Reps: 5, RIR: -1, IsWarmup: true},
		{Number: 3, WeightKg: 100, Reps: 5, RIR: 2},
		{Number: 4, WeightKg: 100, Reps: 4, RIR: 0},
	}}
	sets, warmups := ex.WorkingSets()
	if warmups != 2 {
		t.Errorf("warmups = %d, want 2", warmups)
	}
	if diff := cmp.Diff(ex.Sets[2:], sets); diff != "" {
		t.Errorf("working sets mismatch (-want +got):\n%s", diff)
	}
}

// TestAlphaSetRPE covers missing, regular and out-of-range RIR.
func TestAlphaSetRPE(t *testing.T) {
	if got := (AlphaSet{RIR: -1}).RPE(); got != nil {
		t.Errorf("RPE without RIR = %v, want nil", *got)
	}
	for rir, want := range map[float64]float64{0: 10, 2: 8, 2.5: 7.5, 12: 0} {
		got := AlphaSet{RIR: rir}.RPE()
		if got == nil || *got != want {
			t.Errorf("RPE(RIR %v) = %v, want %v", rir, got, want)
		}
	}
}
