package storage

import (
	"context"
	"fmt"
	"time"
)

// TrainingSummaryPeriod holds aggregated strength volume for one time period.
type TrainingSummaryPeriod struct {
	Period            string         `json:"period"`
	Sessions          int            `json:"sessions"`
	WorkingSets       int            `json:"working_sets"`
	TotalReps         int            `json:"total_reps"`
	TonnageKg         float64        `json:"tonnage_kg"`
	AvgSetsPerSession float64        `json:"avg_sets_per_session"`
	AvgRPE            *float64       `json:"avg_rpe,omitempty"`
	SetsByGroup       map[string]int `json:"sets_by_group"`
}

// GetTrainingSummary returns set volume and tonnage per week or month bucket.
func (db *DB) GetTrainingSummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]TrainingSummaryPeriod, error) {
	trunc := truncInterval(bucket)

	// Query 1: volume per period
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, session_date)::date AS period,
		        COUNT(DISTINCT session_id)::int,
		        COUNT(*)::int,
		        COALESCE(SUM(reps), 0)::int,
		        COALESCE(SUM(weight_kg * reps), 0),
		        AVG(rpe)
		 FROM workout_sets
		 WHERE session_date >= $2 AND session_date < $3 AND user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		trunc, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying training summary: %w", err)
	}
	defer rows.Close()

	periodMap := make(map[string]*TrainingSummaryPeriod)
	var periodOrder []string
	for rows.Next() {
		var periodTime time.Time
		p := &TrainingSummaryPeriod{SetsByGroup: make(map[string]int)}
		if err := rows.Scan(&periodTime, &p.Sessions, &p.WorkingSets, &p.TotalReps, &p.TonnageKg, &p.AvgRPE); err != nil {
			return nil, fmt.Errorf("scanning training summary: %w", err)
		}
		p.Period = periodTime.Format("2006-01-02")
		p.TonnageKg = round1(p.TonnageKg)
		if p.Sessions > 0 {
			p.AvgSetsPerSession = round1(float64(p.WorkingSets) / float64(p.Sessions))
		}
		if p.AvgRPE != nil {
			v := round1(*p.AvgRPE)
			p.AvgRPE = &v
		}
		periodMap[p.Period] = p
		periodOrder = append(periodOrder, p.Period)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Query 2: sets per muscle group
	groupRows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, session_date)::date AS period,
		        CASE WHEN muscle_group = '' THEN 'unmapped' ELSE muscle_group END,
		        COUNT(*)::int
		 FROM workout_sets
		 WHERE session_date >= $2 AND session_date < $3 AND user_id = $4
		 GROUP BY 1, 2`,
		trunc, start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying sets by group: %w", err)
	}
	defer groupRows.Close()

	for groupRows.Next() {
		var periodTime time.Time
		var group string
		var sets int
		if err := groupRows.Scan(&periodTime, &group, &sets); err != nil {
			return nil, fmt.Errorf("scanning sets by group: %w", err)
		}
		if p, ok := periodMap[periodTime.Format("2006-01-02")]; ok {
			p.SetsByGroup[group] = sets
		}
	}
	if err := groupRows.Err(); err != nil {
		return nil, err
	}

	result := make([]TrainingSummaryPeriod, 0, len(periodOrder))
	for _, key := range periodOrder {
		result = append(result, *periodMap[key])
	}
	return result, nil
}

// truncInterval converts bucket strings like "1 month" to the interval name
// that date_trunc expects (e.g. "month", "week").
func truncInterval(bucket string) string {
	switch bucket {
	case "1 week", "week":
		return "week"
	default:
		return "month"
	}
}
