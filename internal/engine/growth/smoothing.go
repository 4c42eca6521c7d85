package growth

import "github.com/claude/raptorfit/internal/models"

const DefaultMovingAverageWindow = 7

// MovingAverage smooths a series with a centered window. The window shrinks at
// the series edges; a non-positive window uses DefaultMovingAverageWindow.
func MovingAverage(series []models.TimeSeriesPoint, window int) []models.TimeSeriesPoint {
	if window <= 0 {
		window = DefaultMovingAverageWindow
	}
	points := models.SortPoints(series)
	half := window / 2
	out := make([]models.TimeSeriesPoint, len(points))
	for i, p := range points {
		lo := max(0, i-half)
		hi := min(len(points)-1, i+half)
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += points[j].Value
		}
		out[i] = models.TimeSeriesPoint{Date: p.Date, Value: sum / float64(hi-lo+1)}
	}
	return out
}
