package growth

import (
	"math"
	"time"

	"github.com/claude/raptorfit/internal/models"
)

// SpikeThreshold is the day-over-day change, in percent, that is reported.
const SpikeThreshold = 15.0

// Spike is a sudden rise or fall between consecutive points.
type Spike struct {
	Date          time.Time `json:"date"`
	Previous      float64   `json:"previous"`
	Value         float64   `json:"value"`
	ChangePercent float64   `json:"changePercent"`
	Type          string    `json:"type"`
	Severity      string    `json:"severity"`
}

// DetectSpikes flags consecutive-point changes larger than SpikeThreshold.
// Points following a zero value are skipped.
func DetectSpikes(series []models.TimeSeriesPoint) []Spike {
	points := models.SortPoints(series)
	spikes := []Spike{}
	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1].Value, points[i].Value
		if prev == 0 {
			continue
		}
		change := round2((cur - prev) * 100 / prev)
		if math.Abs(change) <= SpikeThreshold {
			continue
		}
		kind := "drop"
		if change > 0 {
			kind = "spike"
		}
		spikes = append(spikes, Spike{
			Date:          points[i].Date,
			Previous:      prev,
			Value:         cur,
			ChangePercent: change,
			Type:          kind,
			Severity:      spikeSeverity(math.Abs(change)),
		})
	}
	return spikes
}

func spikeSeverity(absChange float64) string {
	switch {
	case absChange > 30:
		return "severe"
	case absChange > 20:
		return "moderate"
	default:
		return "mild"
	}
}
