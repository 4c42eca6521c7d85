package growth

import (
	"fmt"
	"math"

	"github.com/claude/raptorfit/internal/models"
)

const (
	DefaultEWMAFutureDays = 45
	// SmoothingAlpha weights the newest value in the exponential average.
	SmoothingAlpha = 0.3
	// ForecastFloor is the lowest value a forecast or its bands may take.
	ForecastFloor = 50.0
	MinEWMAPoints = 3
)

// EWMAResult is a trend fitted to the exponentially smoothed series with
// widening confidence bands.
type EWMAResult struct {
	Predicted       []models.TimeSeriesPoint `json:"predicted"`
	Observed        []models.TimeSeriesPoint `json:"observed"`
	Future          []models.TimeSeriesPoint `json:"future"`
	ConfidenceUpper []models.TimeSeriesPoint `json:"confidenceUpper"`
	ConfidenceLower []models.TimeSeriesPoint `json:"confidenceLower"`
	CurrentValue    float64                  `json:"currentValue"`
	ProjectedValue  float64                  `json:"projectedValue"`
	WeeklyGrowth    float64                  `json:"weeklyGrowth"`
	Volatility      float64                  `json:"volatility"`
	ConfidenceScore int                      `json:"confidenceScore"`
	Slope           float64                  `json:"slope"`
	Intercept       float64                  `json:"intercept"`
}

// ComputeEWMAGrowth smooths the series, fits a line over point index and
// forecasts futureDays steps. It needs at least three points.
func ComputeEWMAGrowth(series []models.TimeSeriesPoint, futureDays int) (*EWMAResult, error) {
	if len(series) < MinEWMAPoints {
		return nil, fmt.Errorf("ewma forecast needs %d points, got %d: %w", MinEWMAPoints, len(series), ErrInsufficientData)
	}
	if futureDays < 0 {
		futureDays = 0
	}

	points := models.SortPoints(series)
	n := len(points)

	smoothed := make([]float64, n)
	smoothed[0] = points[0].Value
	for i := 1; i < n; i++ {
		smoothed[i] = SmoothingAlpha*points[i].Value + (1-SmoothingAlpha)*smoothed[i-1]
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}
	slope, intercept := fitLine(xs, smoothed)

	res := &EWMAResult{
		Predicted:       make([]models.TimeSeriesPoint, n),
		Observed:        make([]models.TimeSeriesPoint, n),
		Future:          []models.TimeSeriesPoint{},
		ConfidenceUpper: []models.TimeSeriesPoint{},
		ConfidenceLower: []models.TimeSeriesPoint{},
		Slope:           slope,
		Intercept:       intercept,
	}

	var ss float64
	for i, p := range points {
		fit := intercept + slope*float64(i)
		res.Observed[i] = models.TimeSeriesPoint{Date: p.Date, Value: smoothed[i]}
		res.Predicted[i] = models.TimeSeriesPoint{Date: p.Date, Value: fit}
		r := smoothed[i] - fit
		ss += r * r
	}
	std := math.Sqrt(ss / float64(n))

	last := points[n-1].Date
	for k := 1; k <= futureDays; k++ {
		v := math.Max(ForecastFloor, intercept+slope*float64(n+k-1))
		half := 1.96 * std * math.Sqrt(float64(k)/7)
		date := last.AddDate(0, 0, k)
		res.Future = append(res.Future, models.TimeSeriesPoint{Date: date, Value: v})
		res.ConfidenceUpper = append(res.ConfidenceUpper, models.TimeSeriesPoint{Date: date, Value: math.Max(ForecastFloor, v+half)})
		res.ConfidenceLower = append(res.ConfidenceLower, models.TimeSeriesPoint{Date: date, Value: math.Max(ForecastFloor, v-half)})
	}

	current := smoothed[n-1]
	res.CurrentValue = current
	res.ProjectedValue = current
	if len(res.Future) > 0 {
		res.ProjectedValue = res.Future[len(res.Future)-1].Value
	}
	res.WeeklyGrowth = slope * 7

	var volatilityScore float64
	if current > 0 {
		res.Volatility = std / current * 100
		volatilityScore = math.Max(0, 100-res.Volatility)
	}
	dataScore := math.Min(100, float64(n)/30*100)
	res.ConfidenceScore = clampScore(int(math.Round(0.6*volatilityScore + 0.4*dataScore)))
	return res, nil
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
