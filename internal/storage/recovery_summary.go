package storage

import (
	"context"
	"fmt"
	"math"
	"time"
)

// sleepTargetHours is the nightly target used for sleep debt.
const sleepTargetHours = 8.0

// RecoverySummaryPeriod holds aggregated recovery stats for one time period.
type RecoverySummaryPeriod struct {
	Period          string  `json:"period"`
	Nights          int     `json:"nights"`
	AvgSleepHours   float64 `json:"avg_sleep_hours"`
	AvgSleepQuality float64 `json:"avg_sleep_quality"`
	AvgSoreness     float64 `json:"avg_soreness"`
	AvgStress       float64 `json:"avg_stress"`
	SleepDebtHours  float64 `json:"sleep_debt_hours"`
	ShortNights     int     `json:"short_nights"`
}

// GetRecoverySummary returns recovery log averages per week or month bucket.
func (db *DB) GetRecoverySummary(ctx context.Context, start, end time.Time, bucket string, userID int) ([]RecoverySummaryPeriod, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT date_trunc($1, date)::date AS period,
		        COUNT(*)::int,
		        AVG(sleep_hours),
		        AVG(sleep_quality),
		        AVG(soreness),
		        AVG(stress),
		        COUNT(*) FILTER (WHERE sleep_hours < 7)::int
		 FROM recovery_logs
		 WHERE date >= $2 AND date < $3 AND user_id = $4
		 GROUP BY period
		 ORDER BY period DESC`,
		truncInterval(bucket), start, end, userID)
	if err != nil {
		return nil, fmt.Errorf("querying recovery summary: %w", err)
	}
	defer rows.Close()

	var result []RecoverySummaryPeriod
	for rows.Next() {
		var periodTime time.Time
		var p RecoverySummaryPeriod
		if err := rows.Scan(&periodTime, &p.Nights, &p.AvgSleepHours, &p.AvgSleepQuality,
			&p.AvgSoreness, &p.AvgStress, &p.ShortNights); err != nil {
			return nil, fmt.Errorf("scanning recovery summary: %w", err)
		}
		p.Period = periodTime.Format("2006-01-02")
		result = append(result, roundSummary(p))
	}
	return result, rows.Err()
}

// roundSummary rounds the averages for display and derives the sleep debt.
func roundSummary(p RecoverySummaryPeriod) RecoverySummaryPeriod {
	p.SleepDebtHours = round1(math.Max(0, sleepTargetHours*float64(p.Nights)-p.AvgSleepHours*float64(p.Nights)))
	p.AvgSleepHours = round1(p.AvgSleepHours)
	p.AvgSleepQuality = round1(p.AvgSleepQuality)
	p.AvgSoreness = round1(p.AvgSoreness)
	p.AvgStress = round1(p.AvgStress)
	return p
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
