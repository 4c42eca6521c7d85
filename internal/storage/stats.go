package storage

import (
	"context"
	"fmt"
	"time"
)

// DataStats holds aggregate statistics about all stored data.
type DataStats struct {
	TotalSessions     int64          `json:"total_sessions"`
	TotalSets         int64          `json:"total_sets"`
	TotalRecoveryLogs int64          `json:"total_recovery_logs"`
	TotalSnapshots    int64          `json:"total_snapshots"`
	EarliestData      *time.Time     `json:"earliest_data"`
	LatestData        *time.Time     `json:"latest_data"`
	Exercises         []ExerciseStat `json:"exercises"`
}

// ExerciseStat holds lifetime totals for a single exercise.
type ExerciseStat struct {
	Name        string  `json:"name"`
	MuscleGroup string  `json:"muscle_group"`
	Sessions    int64   `json:"sessions"`
	TotalSets   int64   `json:"total_sets"`
	TonnageKg   float64 `json:"tonnage_kg"`
	MaxWeightKg float64 `json:"max_weight_kg"`
}

// GetDataStats returns aggregate statistics for a user's stored data.
func (db *DB) GetDataStats(ctx context.Context, userID int) (*DataStats, error) {
	stats := &DataStats{}

	counts := []struct {
		table string
		dest  *int64
	}{
		{"workout_sessions", &stats.TotalSessions},
		{"workout_sets", &stats.TotalSets},
		{"recovery_logs", &stats.TotalRecoveryLogs},
		{"strength_snapshots", &stats.TotalSnapshots},
	}
	for _, c := range counts {
		err := db.Pool.QueryRow(ctx,
			`SELECT COUNT(*) FROM `+c.table+` WHERE user_id = $1`, userID,
		).Scan(c.dest)
		if err != nil {
			return nil, fmt.Errorf("counting %s: %w", c.table, err)
		}
	}

	// Date range across sessions and recovery logs
	err := db.Pool.QueryRow(ctx,
		`SELECT MIN(t), MAX(t) FROM (
			SELECT date AS t FROM workout_sessions WHERE user_id = $1
			UNION ALL
			SELECT date::timestamptz FROM recovery_logs WHERE user_id = $1
		) sub`, userID,
	).Scan(&stats.EarliestData, &stats.LatestData)
	if err != nil {
		return nil, fmt.Errorf("querying date range: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT min(exercise_name), max(muscle_group), COUNT(DISTINCT session_id), COUNT(*),
		        COALESCE(SUM(weight_kg * reps), 0), COALESCE(MAX(weight_kg), 0)
		 FROM workout_sets
		 WHERE user_id = $1
		 GROUP BY lower(exercise_name)
		 ORDER BY COUNT(*) DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var s ExerciseStat
		if err := rows.Scan(&s.Name, &s.MuscleGroup, &s.Sessions, &s.TotalSets, &s.TonnageKg, &s.MaxWeightKg); err != nil {
			return nil, fmt.Errorf("scanning exercise stat: %w", err)
		}
		s.TonnageKg = round1(s.TonnageKg)
		stats.Exercises = append(stats.Exercises, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
