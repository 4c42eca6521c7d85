package ingest

import (
	"errors"
	"testing"
	"time"

	"github.com/claude/raptorfit/internal/models"
)

func validSession() models.WorkoutSession {
	rpe := 8.0
	return models.WorkoutSession{
		Date: time.Date(2026, 3, 16, 18, 0, 0, 0, time.UTC),
		Exercises: []models.ExerciseEntry{{
			Name: "Bench Press",
			Sets: []models.SetEntry{{Weight: 100, Reps: 5, RPE: &rpe}},
		}},
	}
}

// TestValidateSession covers accepted and rejected workout sessions.
func TestValidateSession(t *testing.T) {
	badRPE := 11.0
	tests := []struct {
		name    string
		mutate  func(*models.WorkoutSession)
		wantErr bool
	}{
		{"valid", func(*models.WorkoutSession) {}, false},
		{"known group", func(s *models.WorkoutSession) { s.Exercises[0].MuscleGroup = "Chest" }, false},
		{"missing date", func(s *models.WorkoutSession) { s.Date = time.Time{} }, true},
		{"no exercises", func(s *models.WorkoutSession) { s.Exercises = nil }, true},
		{"blank name", func(s *models.WorkoutSession) { s.Exercises[0].Name = "  " }, true},
		{"unknown group", func(s *models.WorkoutSession) { s.Exercises[0].MuscleGroup = "glutes" }, true},
		{"negative reps", func(s *models.WorkoutSession) { s.Exercises[0].Sets[0].Reps = -1 }, true},
		{"rpe above 10", func(s *models.WorkoutSession) { s.Exercises[0].Sets[0].RPE = &badRPE }, true},
		{"negative duration", func(s *models.WorkoutSession) { s.DurationMin = -5 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSession()
			tt.mutate(&s)
			err := ValidateSession(s)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

// TestValidateRecoveryLog covers the bounds of a daily recovery entry.
func TestValidateRecoveryLog(t *testing.T) {
	base := models.RecoveryLog{
		Date:         time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC),
		SleepHours:   7.5,
		SleepQuality: 8,
		Soreness:     3,
		Stress:       2,
	}
	if err := ValidateRecoveryLog(base); err != nil {
		t.Fatalf("valid log rejected: %v", err)
	}

	bad := []func(*models.RecoveryLog){
		func(l *models.RecoveryLog) { l.Date = time.Time{} },
		func(l *models.RecoveryLog) { l.SleepHours = 25 },
		func(l *models.RecoveryLog) { l.SleepQuality = 11 },
		func(l *models.RecoveryLog) { l.Soreness = -1 },
		func(l *models.RecoveryLog) { l.Stress = 12 },
	}
	for i, mutate := range bad {
		l := base
		mutate(&l)
		if err := ValidateRecoveryLog(l); !errors.Is(err, ErrInvalid) {
			t.Errorf("case %d: err = %v, want ErrInvalid", i, err)
		}
	}
}
