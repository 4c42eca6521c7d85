package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/claude/raptorfit/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertWorkoutSession stores a session and its sets in one transaction. A zero
// session ID is replaced with a new UUID. Returns the ID and the number of sets stored.
func (db *DB) InsertWorkoutSession(ctx context.Context, userID int, source string, s models.WorkoutSession) (uuid.UUID, int64, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if source == "" {
		source = "api"
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, date, name, duration_min, source)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		s.ID, userID, s.Date, s.Name, s.DurationMin, source)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("inserting workout session: %w", err)
	}

	inserted, err := insertWorkoutSets(ctx, tx, models.SetRows(s, userID))
	if err != nil {
		return uuid.Nil, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, 0, fmt.Errorf("committing workout session: %w", err)
	}
	return s.ID, inserted, nil
}

// insertWorkoutSets batch-inserts set rows. Returns count inserted.
func insertWorkoutSets(ctx context.Context, tx pgx.Tx, rows []models.WorkoutSetRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	const cols = 10
	query := `INSERT INTO workout_sets (session_id, user_id, session_date, exercise_number,
		exercise_name, muscle_group, set_number, weight_kg, reps, rpe) VALUES `
	args := make([]any, 0, len(rows)*cols)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		placeholders := make([]string, cols)
		for c := range placeholders {
			placeholders[c] = fmt.Sprintf("$%d", i*cols+c+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		args = append(args, r.SessionID, r.UserID, r.SessionDate, r.ExerciseNumber,
			r.ExerciseName, r.MuscleGroup, r.SetNumber, r.WeightKg, r.Reps, r.RPE)
	}

	query += strings.Join(valueStrings, ",") + " ON CONFLICT DO NOTHING"

	tag, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting workout sets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteWorkoutSessionsOn removes every session, and through the cascade its
// sets, that falls on the calendar day of day. Returns the number of sessions removed.
func (db *DB) DeleteWorkoutSessionsOn(ctx context.Context, userID int, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	tag, err := db.Pool.Exec(ctx,
		`DELETE FROM workout_sessions WHERE user_id = $1 AND date >= $2 AND date < $3`,
		userID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return 0, fmt.Errorf("deleting workout sessions for %s: %w", start.Format("2006-01-02"), err)
	}
	return tag.RowsAffected(), nil
}

// QueryWorkoutSessions retrieves sessions with their sets in a date range,
// oldest first.
func (db *DB) QueryWorkoutSessions(ctx context.Context, start, end time.Time, userID int) ([]models.WorkoutSession, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT s.id, s.date, s.name, s.duration_min,
		 w.exercise_number, w.exercise_name, w.muscle_group, w.set_number, w.weight_kg, w.reps, w.rpe
		 FROM workout_sessions s
		 JOIN workout_sets w ON w.session_id = s.id
		 WHERE s.date >= $1 AND s.date < $2 AND s.user_id = $3
		 ORDER BY s.date ASC, s.id, w.exercise_number ASC, w.set_number ASC`,
		start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying workout sessions: %w", err)
	}
	defer rows.Close()

	var (
		result  []models.WorkoutSession
		header  models.WorkoutSession
		setRows []models.WorkoutSetRow
	)
	flush := func() {
		if header.ID != uuid.Nil {
			result = append(result, models.AssembleSession(header, setRows))
		}
	}
	for rows.Next() {
		var s models.WorkoutSession
		var r models.WorkoutSetRow
		if err := rows.Scan(&s.ID, &s.Date, &s.Name, &s.DurationMin,
			&r.ExerciseNumber, &r.ExerciseName, &r.MuscleGroup, &r.SetNumber, &r.WeightKg, &r.Reps, &r.RPE); err != nil {
			return nil, fmt.Errorf("scanning workout set: %w", err)
		}
		if s.ID != header.ID {
			flush()
			header, setRows = s, nil
		}
		setRows = append(setRows, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	flush()
	return result, nil
}

// QueryExerciseNames returns the distinct exercise names a user has logged.
func (db *DB) QueryExerciseNames(ctx context.Context, userID int) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT ON (lower(exercise_name)) exercise_name
		 FROM workout_sets
		 WHERE user_id = $1
		 ORDER BY lower(exercise_name), session_date DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scanning exercise name: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
