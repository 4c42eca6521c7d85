package recovery

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/claude/raptorfit/internal/models"
)

const adviceThreshold = 70

// Advice returns at most one tip per weak sub-score and a positive note when
// overall readiness is high.
func Advice(s Score) []string {
	tips := []string{}
	if s.Sleep < adviceThreshold {
		if s.Details.SleepDeficitHours > 0 {
			tips = append(tips, fmt.Sprintf("You are %.1f hours short on sleep this week. Aim for 7-9 hours tonight.", s.Details.SleepDeficitHours))
		} else {
			tips = append(tips, "Sleep quality has been low. Keep a consistent bedtime and limit screens before bed.")
		}
	}
	if s.Intensity < adviceThreshold {
		tips = append(tips, "Training load has been high this week. Keep today's session short or lower the RPE.")
	}
	if s.MuscleFatigue < adviceThreshold {
		if len(s.Details.FatiguedMuscleGroups) > 0 {
			names := make([]string, len(s.Details.FatiguedMuscleGroups))
			for i, g := range s.Details.FatiguedMuscleGroups {
				names[i] = string(g)
			}
			tips = append(tips, fmt.Sprintf("Still recovering: %s. Train other muscle groups today.", strings.Join(names, ", ")))
		} else {
			tips = append(tips, "Several muscle groups are still recovering. Favor mobility work today.")
		}
	}
	if s.Overall >= 80 {
		tips = append(tips, "You are well recovered. Good day to push for a heavy session.")
	}
	return tips
}

// Prediction is the time a planned session needs before the same muscles are
// ready again.
type Prediction struct {
	Hours        float64   `json:"hours"`
	RecoveryDays int       `json:"recoveryDays"`
	ReadyBy      time.Time `json:"readyBy"`
}

// PredictRecoveryTime estimates recovery for a session training groups at the
// given RPE. RPE 8 and above adds 20% to every group's requirement.
func PredictRecoveryTime(groups []models.MuscleGroup, rpe float64, now time.Time) Prediction {
	factor := 1.0
	if rpe >= 8 {
		factor = 1.2
	}
	var hours float64
	for _, g := range groups {
		hours = math.Max(hours, RequiredRecoveryHours[g]*factor)
	}
	return Prediction{
		Hours:        hours,
		RecoveryDays: int(math.Ceil(hours / 24)),
		ReadyBy:      now.Add(time.Duration(hours * float64(time.Hour))),
	}
}
