package recommend

import (
	"fmt"
	"time"
)

// DefaultTargetFrequency is the weekly workout target when none is set.
const DefaultTargetFrequency = 4

// Rest-day states, in evaluation order.
const (
	StateTrainedToday = "trained_today"
	StateWeeklyTarget = "weekly_target_met"
	StateTooSoon      = "too_soon"
	StateReadyToTrain = "ready_to_train"
)

const minRestBetween = 24 * time.Hour

// RestDecision says whether to rest now and when training is next appropriate.
type RestDecision struct {
	State            string    `json:"state"`
	ShouldRest       bool      `json:"shouldRest"`
	Reason           string    `json:"reason"`
	NextTrainingDate time.Time `json:"nextTrainingDate"`
}

// NextTrainingDay decides rest at now. A zero lastWorkout means no workout has
// been logged and skips the time-based checks.
func NextTrainingDay(lastWorkout time.Time, workoutsThisWeek, targetFrequency int, now time.Time) RestDecision {
	if targetFrequency <= 0 {
		targetFrequency = DefaultTargetFrequency
	}
	today := startOfDay(now)

	if !lastWorkout.IsZero() && startOfDay(lastWorkout.In(now.Location())).Equal(today) {
		return RestDecision{
			State:            StateTrainedToday,
			ShouldRest:       true,
			Reason:           "You already trained today. Recover and come back tomorrow.",
			NextTrainingDate: today.AddDate(0, 0, 1),
		}
	}
	if workoutsThisWeek >= targetFrequency {
		return RestDecision{
			State:            StateWeeklyTarget,
			ShouldRest:       true,
			Reason:           fmt.Sprintf("Weekly target of %d workouts reached (%d done).", targetFrequency, workoutsThisWeek),
			NextTrainingDate: nextWeekStart(now),
		}
	}
	if !lastWorkout.IsZero() {
		if since := now.Sub(lastWorkout); since < minRestBetween {
			return RestDecision{
				State:            StateTooSoon,
				ShouldRest:       true,
				Reason:           fmt.Sprintf("Only %.0f hours since your last workout.", since.Hours()),
				NextTrainingDate: lastWorkout.Add(minRestBetween),
			}
		}
	}
	return RestDecision{
		State:            StateReadyToTrain,
		Reason:           "Ready to train.",
		NextTrainingDate: now,
	}
}

// WeekStart returns Monday 00:00 of the week containing t.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func nextWeekStart(t time.Time) time.Time {
	return WeekStart(t).AddDate(0, 0, 7)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
