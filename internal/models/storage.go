package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutSetRow is a row of the workout_sets table.
type WorkoutSetRow struct {
	SessionID      uuid.UUID
	UserID         int
	SessionDate    time.Time
	ExerciseNumber int
	ExerciseName   string
	MuscleGroup    string
	SetNumber      int
	WeightKg       float64
	Reps           int
	RPE            *float64
}

// SetRows flattens a session into workout_sets rows. Exercises and sets are
// numbered from 1 in the order given.
func SetRows(s WorkoutSession, userID int) []WorkoutSetRow {
	var rows []WorkoutSetRow
	for i, ex := range s.Exercises {
		for j, set := range ex.Sets {
			rows = append(rows, WorkoutSetRow{
				SessionID:      s.ID,
				UserID:         userID,
				SessionDate:    s.Date,
				ExerciseNumber: i + 1,
				ExerciseName:   ex.Name,
				MuscleGroup:    string(ex.MuscleGroup),
				SetNumber:      j + 1,
				WeightKg:       set.Weight,
				Reps:           set.Reps,
				RPE:            set.RPE,
			})
		}
	}
	return rows
}

// AssembleSession rebuilds a session from its set rows, which must be ordered
// by exercise number then set number.
func AssembleSession(header WorkoutSession, rows []WorkoutSetRow) WorkoutSession {
	s := header
	s.Exercises = nil
	lastNumber := -1
	for _, r := range rows {
		if r.ExerciseNumber != lastNumber {
			s.Exercises = append(s.Exercises, ExerciseEntry{
				Name:        r.ExerciseName,
				MuscleGroup: MuscleGroup(r.MuscleGroup),
			})
			lastNumber = r.ExerciseNumber
		}
		ex := &s.Exercises[len(s.Exercises)-1]
		ex.Sets = append(ex.Sets, SetEntry{Reps: r.Reps, Weight: r.WeightKg, RPE: r.RPE})
	}
	return s
}
