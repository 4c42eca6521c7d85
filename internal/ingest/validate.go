package ingest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/claude/raptorfit/internal/models"
)

// ErrInvalid marks input rejected before it reaches storage.
var ErrInvalid = errors.New("invalid input")

// Limits for logged values.
const (
	MaxRPE          = 10.0
	MaxSleepHours   = 24.0
	MaxSleepQuality = 10.0
	MaxWellbeing    = 10
)

// ValidateSession checks a workout session logged by a client.
func ValidateSession(s models.WorkoutSession) error {
	if s.Date.IsZero() {
		return fmt.Errorf("%w: session date is required", ErrInvalid)
	}
	if s.DurationMin < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalid)
	}
	if len(s.Exercises) == 0 {
		return fmt.Errorf("%w: session has no exercises", ErrInvalid)
	}
	for i, ex := range s.Exercises {
		if strings.TrimSpace(ex.Name) == "" {
			return fmt.Errorf("%w: exercise %d has no name", ErrInvalid, i+1)
		}
		if ex.MuscleGroup != "" {
			if _, ok := models.ParseMuscleGroup(string(ex.MuscleGroup)); !ok {
				return fmt.Errorf("%w: exercise %q has unknown muscle group %q", ErrInvalid, ex.Name, ex.MuscleGroup)
			}
		}
		for j, set := range ex.Sets {
			if set.Reps < 0 || set.Weight < 0 {
				return fmt.Errorf("%w: %s set %d has negative reps or weight", ErrInvalid, ex.Name, j+1)
			}
			if set.RPE != nil && (*set.RPE < 0 || *set.RPE > MaxRPE) {
				return fmt.Errorf("%w: %s set %d rpe %v outside 0-10", ErrInvalid, ex.Name, j+1, *set.RPE)
			}
		}
	}
	return nil
}

// ValidateRecoveryLog checks a daily recovery entry.
func ValidateRecoveryLog(l models.RecoveryLog) error {
	switch {
	case l.Date.IsZero():
		return fmt.Errorf("%w: date is required", ErrInvalid)
	case l.SleepHours < 0 || l.SleepHours > MaxSleepHours:
		return fmt.Errorf("%w: sleep hours %v outside 0-24", ErrInvalid, l.SleepHours)
	case l.SleepQuality < 0 || l.SleepQuality > MaxSleepQuality:
		return fmt.Errorf("%w: sleep quality %v outside 0-10", ErrInvalid, l.SleepQuality)
	case l.Soreness < 0 || l.Soreness > MaxWellbeing:
		return fmt.Errorf("%w: soreness %d outside 0-10", ErrInvalid, l.Soreness)
	case l.Stress < 0 || l.Stress > MaxWellbeing:
		return fmt.Errorf("%w: stress %d outside 0-10", ErrInvalid, l.Stress)
	}
	return nil
}
