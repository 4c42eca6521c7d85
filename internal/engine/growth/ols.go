// Package growth fits trend lines to scalar time series (strength index,
// per-exercise 1RM) and forecasts them forward.
package growth

import (
	"errors"
	"math"
	"time"

	"github.com/claude/raptorfit/internal/models"
)

// ErrInsufficientData is returned when a series is too short for the requested model.
var ErrInsufficientData = errors.New("insufficient data")

const (
	DefaultOLSFutureDays = 30
	// AnomalyThreshold is the relative distance from the regression line above
	// which an observed point is flagged.
	AnomalyThreshold = 0.10
)

const msPerDay = float64(24 * time.Hour / time.Millisecond)

// OLSResult is a least-squares fit of value against days since the first point.
type OLSResult struct {
	Expected  []models.TimeSeriesPoint `json:"expected"`
	Observed  []models.TimeSeriesPoint `json:"observed"`
	Future    []models.TimeSeriesPoint `json:"future"`
	RSquared  float64                  `json:"rSquared"`
	Slope     float64                  `json:"slope"`
	Intercept float64                  `json:"intercept"`
	Anomalies []Anomaly                `json:"anomalies"`
}

// Anomaly is an observed point that strays from the regression line.
type Anomaly struct {
	Date             time.Time `json:"date"`
	Observed         float64   `json:"observed"`
	Expected         float64   `json:"expected"`
	Deviation        float64   `json:"deviation"`
	DeviationPercent float64   `json:"deviationPercent"`
}

// ComputeOLSGrowth fits an ordinary least squares line over the series and
// extrapolates futureDays days past the last observation. Fewer than two points
// yield an empty result.
func ComputeOLSGrowth(series []models.TimeSeriesPoint, futureDays int) OLSResult {
	res := OLSResult{
		Expected:  []models.TimeSeriesPoint{},
		Observed:  []models.TimeSeriesPoint{},
		Future:    []models.TimeSeriesPoint{},
		Anomalies: []Anomaly{},
	}
	if len(series) < 2 {
		return res
	}
	if futureDays < 0 {
		futureDays = 0
	}

	points := models.SortPoints(series)
	first := points[0].Date
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.Date.Sub(first).Milliseconds()) / msPerDay
		ys[i] = p.Value
	}

	slope, intercept := fitLine(xs, ys)
	res.Slope = slope
	res.Intercept = intercept
	res.RSquared = rSquared(xs, ys, slope, intercept)
	res.Observed = points

	for i, p := range points {
		exp := slope*xs[i] + intercept
		res.Expected = append(res.Expected, models.TimeSeriesPoint{Date: p.Date, Value: exp})
		if exp <= 0 {
			continue
		}
		dev := p.Value - exp
		if math.Abs(dev)/exp > AnomalyThreshold {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Date:             p.Date,
				Observed:         p.Value,
				Expected:         exp,
				Deviation:        dev,
				DeviationPercent: round2(dev / exp * 100),
			})
		}
	}

	last := points[len(points)-1].Date
	lastDay := xs[len(xs)-1]
	for k := 1; k <= futureDays; k++ {
		res.Future = append(res.Future, models.TimeSeriesPoint{
			Date:  last.AddDate(0, 0, k),
			Value: slope*(lastDay+float64(k)) + intercept,
		})
	}
	return res
}

// fitLine returns the least squares slope and intercept. A degenerate x range
// gives a flat line through the mean.
func fitLine(xs, ys []float64) (slope, intercept float64) {
	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/n, sumY/n

	var num, den float64
	for i := range xs {
		dx := xs[i] - meanX
		num += dx * (ys[i] - meanY)
		den += dx * dx
	}
	if den == 0 {
		return 0, meanY
	}
	slope = num / den
	return slope, meanY - slope*meanX
}

func rSquared(xs, ys []float64, slope, intercept float64) float64 {
	var mean float64
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))

	var ssRes, ssTot float64
	for i := range xs {
		r := ys[i] - (slope*xs[i] + intercept)
		ssRes += r * r
		d := ys[i] - mean
		ssTot += d * d
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
