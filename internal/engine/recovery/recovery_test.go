package recovery

import (
	"slices"
	"testing"
	"time"

	"github.com/claude/raptorfit/internal/engine/strength"
	"github.com/claude/raptorfit/internal/models"
	"github.com/google/go-cmp/cmp"
)

var now = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func nights(n int, hours, quality float64) []SleepLog {
	logs := make([]SleepLog, n)
	for i := range logs {
		logs[i] = SleepLog{Date: now.AddDate(0, 0, -i), Hours: hours, Quality: quality}
	}
	return logs
}

func workoutAt(daysAgo int, rpe float64, minutes int, groups ...models.MuscleGroup) IntensityLog {
	d := now.AddDate(0, 0, -daysAgo)
	return IntensityLog{
		Date:            time.Date(d.Year(), d.Month(), d.Day(), 8, 0, 0, 0, time.UTC),
		RPE:             rpe,
		DurationMinutes: minutes,
		MuscleGroups:    groups,
	}
}

// TestComputeWellRested covers a week of good sleep and no training.
func TestComputeWellRested(t *testing.T) {
	s := Compute(nights(7, 8, 5), nil, now)

	if s.Overall != 100 || s.Sleep != 100 || s.Intensity != 100 || s.MuscleFatigue != 100 {
		t.Errorf("scores = %d/%d/%d/%d, want all 100", s.Overall, s.Sleep, s.Intensity, s.MuscleFatigue)
	}
	if s.Recommendation != Heavy {
		t.Errorf("recommendation = %q, want heavy", s.Recommendation)
	}
	if s.Details.SleepDeficitHours != 0 {
		t.Errorf("sleep deficit = %v, want 0", s.Details.SleepDeficitHours)
	}
	if len(s.Advice) != 1 {
		t.Errorf("advice = %v, want a single positive note", s.Advice)
	}
}

// TestComputeEmptyLogs verifies empty input is neutral.
func TestComputeEmptyLogs(t *testing.T) {
	s := Compute(nil, nil, now)
	if s.Overall != 100 || s.Sleep != 100 || s.Intensity != 100 || s.MuscleFatigue != 100 {
		t.Errorf("scores = %d/%d/%d/%d, want all 100", s.Overall, s.Sleep, s.Intensity, s.MuscleFatigue)
	}
	if s.Details.DaysWithoutRest != 0 {
		t.Errorf("daysWithoutRest = %d, want 0", s.Details.DaysWithoutRest)
	}
}

// TestComputePoorSleep verifies the hour and quality sub-scores and the weekly deficit.
func TestComputePoorSleep(t *testing.T) {
	s := Compute(nights(7, 5, 2.5), nil, now)

	// 0.7*40 + 0.3*(60+2.5/5*40)
	if s.Sleep != 52 {
		t.Errorf("sleep = %d, want 52", s.Sleep)
	}
	if s.Details.SleepDeficitHours != 21 {
		t.Errorf("sleep deficit = %v, want 21", s.Details.SleepDeficitHours)
	}
	if len(s.Advice) == 0 {
		t.Error("no advice for poor sleep")
	}
}

// TestComputeSleepWindow verifies only the latest seven nights count.
func TestComputeSleepWindow(t *testing.T) {
	logs := nights(7, 8, 5)
	for i := 10; i < 13; i++ {
		logs = append(logs, SleepLog{Date: now.AddDate(0, 0, -i), Hours: 2, Quality: 1})
	}
	if s := Compute(logs, nil, now); s.Sleep != 100 {
		t.Errorf("sleep = %d, want 100", s.Sleep)
	}
}

// TestComputeHardWeek covers six straight days of heavy training, which forces a rest day.
func TestComputeHardWeek(t *testing.T) {
	var logs []IntensityLog
	for d := 0; d < 6; d++ {
		logs = append(logs, workoutAt(d, 9, 130, models.Legs))
	}
	s := Compute(nil, logs, now)

	// 0.4*60 + 0.4*50 + 0.2*60
	if s.Intensity != 56 {
		t.Errorf("intensity = %d, want 56", s.Intensity)
	}
	// legs trained 10h ago: 10/72
	if s.MuscleFatigue != 14 {
		t.Errorf("muscleFatigue = %d, want 14", s.MuscleFatigue)
	}
	if diff := cmp.Diff([]models.MuscleGroup{models.Legs}, s.Details.FatiguedMuscleGroups); diff != "" {
		t.Errorf("fatigued mismatch (-want +got):\n%s", diff)
	}
	if s.Details.DaysWithoutRest != 6 {
		t.Errorf("daysWithoutRest = %d, want 6", s.Details.DaysWithoutRest)
	}
	if s.Recommendation != Rest {
		t.Errorf("recommendation = %q, want rest", s.Recommendation)
	}
}

// TestStreakMustIncludeToday verifies a streak that ended yesterday is not counted.
func TestStreakMustIncludeToday(t *testing.T) {
	var logs []IntensityLog
	for d := 1; d <= 6; d++ {
		logs = append(logs, workoutAt(d, 0, 45))
	}
	s := Compute(nil, logs, now)
	if s.Details.DaysWithoutRest != 0 {
		t.Errorf("daysWithoutRest = %d, want 0", s.Details.DaysWithoutRest)
	}
	if s.Recommendation == Rest {
		t.Error("recommendation = rest, want no streak override")
	}
}

// TestIntensityWindow verifies workouts older than seven days are ignored.
func TestIntensityWindow(t *testing.T) {
	s := Compute(nil, []IntensityLog{workoutAt(8, 10, 200)}, now)
	if s.Intensity != 100 {
		t.Errorf("intensity = %d, want 100", s.Intensity)
	}
}

// TestMuscleFatigueAveragesTrainedGroups verifies untrained groups are left out
// of the average.
func TestMuscleFatigueAveragesTrainedGroups(t *testing.T) {
	logs := []IntensityLog{
		{Date: now.Add(-24 * time.Hour), MuscleGroups: []models.MuscleGroup{models.Chest}},
		{Date: now.Add(-36 * time.Hour), MuscleGroups: []models.MuscleGroup{models.Arms}},
	}
	score, fatigued := scoreMuscleFatigue(logs, now)
	// chest 50%, arms 100%
	if score != 75 {
		t.Errorf("score = %v, want 75", score)
	}
	if diff := cmp.Diff([]models.MuscleGroup{models.Chest}, fatigued); diff != "" {
		t.Errorf("fatigued mismatch (-want +got):\n%s", diff)
	}
}

// TestScoreBounds verifies scores stay within range for out-of-scale input.
func TestScoreBounds(t *testing.T) {
	sleep := []SleepLog{{Date: now, Hours: 11, Quality: 10}, {Date: now.AddDate(0, 0, -1), Hours: 0, Quality: 0}}
	var logs []IntensityLog
	for d := 0; d < 9; d++ {
		logs = append(logs, workoutAt(d, 10, 300, models.MuscleGroups...))
	}
	for _, s := range []Score{Compute(sleep, logs, now), Compute(nights(3, 12, 10), nil, now)} {
		for name, v := range map[string]int{"overall": s.Overall, "sleep": s.Sleep, "intensity": s.Intensity, "fatigue": s.MuscleFatigue} {
			if v < 0 || v > 100 {
				t.Errorf("%s = %d, out of range", name, v)
			}
		}
	}
}

// TestComputeDeterministic verifies repeated calls give identical scores.
func TestComputeDeterministic(t *testing.T) {
	sleep := nights(5, 6.5, 3)
	logs := []IntensityLog{workoutAt(0, 8.5, 70, models.Chest, models.Arms), workoutAt(2, 7, 95, models.Legs)}
	if diff := cmp.Diff(Compute(sleep, logs, now), Compute(sleep, logs, now)); diff != "" {
		t.Errorf("non-deterministic (-first +second):\n%s", diff)
	}
}

// TestSleepFromLog verifies the 1-10 to 1-5 conversion.
func TestSleepFromLog(t *testing.T) {
	got := SleepFromLog(models.RecoveryLog{Date: now, SleepHours: 7.5, SleepQuality: 8})
	if got.Quality != 4 || got.Hours != 7.5 {
		t.Errorf("SleepFromLog = %+v, want hours 7.5 quality 4", got)
	}
}

// TestIntensityFromSession verifies RPE averaging over tracked sets and group resolution.
func TestIntensityFromSession(t *testing.T) {
	rpe8, rpe9 := 8.0, 9.0
	s := models.WorkoutSession{
		Date:        now,
		DurationMin: 60,
		Exercises: []models.ExerciseEntry{
			{Name: "Squat", Sets: []models.SetEntry{{Reps: 5, Weight: 100, RPE: &rpe8}, {Reps: 5, Weight: 100}}},
			{Name: "Bench Press", Sets: []models.SetEntry{{Reps: 5, Weight: 80, RPE: &rpe9}}},
			{Name: "Front Squat", Sets: []models.SetEntry{{Reps: 5, Weight: 70}}},
			{Name: "Mystery Move", Sets: []models.SetEntry{{Reps: 5, Weight: 10}}},
		},
	}
	got := IntensityFromSession(s, strength.ResolveGroup)
	if got.RPE != 8.5 {
		t.Errorf("rpe = %v, want 8.5", got.RPE)
	}
	if !slices.Equal(got.MuscleGroups, []models.MuscleGroup{models.Legs, models.Chest}) {
		t.Errorf("groups = %v, want [legs chest]", got.MuscleGroups)
	}
}

// TestPredictRecoveryTime verifies the high-RPE multiplier and rounding up to days.
func TestPredictRecoveryTime(t *testing.T) {
	p := PredictRecoveryTime([]models.MuscleGroup{models.Chest, models.Legs}, 8, now)
	if p.Hours < 86.39 || p.Hours > 86.41 {
		t.Errorf("hours = %v, want 86.4", p.Hours)
	}
	if p.RecoveryDays != 4 {
		t.Errorf("recoveryDays = %d, want 4", p.RecoveryDays)
	}
	want := now.Add(86*time.Hour + 24*time.Minute)
	if d := p.ReadyBy.Sub(want); d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("readyBy = %v, want %v", p.ReadyBy, want)
	}

	p = PredictRecoveryTime([]models.MuscleGroup{models.Core}, 6, now)
	if p.Hours != 24 || p.RecoveryDays != 1 {
		t.Errorf("core at rpe 6 = %+v, want 24h / 1 day", p)
	}

	if p := PredictRecoveryTime(nil, 9, now); p.Hours != 0 || !p.ReadyBy.Equal(now) {
		t.Errorf("no groups = %+v, want zero", p)
	}
}
