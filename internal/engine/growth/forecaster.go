package growth

import (
	"fmt"

	"github.com/claude/raptorfit/internal/models"
)

// Strategy names a forecasting model.
type Strategy string

const (
	StrategyOLS  Strategy = "ols"
	StrategyEWMA Strategy = "ewma"
)

// ParseStrategy accepts "ols" or "ewma". An empty string selects EWMA.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyOLS:
		return StrategyOLS, nil
	case StrategyEWMA, "":
		return StrategyEWMA, nil
	}
	return "", fmt.Errorf("unknown forecast strategy %q", s)
}

// Forecast is the strategy-independent summary of a fitted series. Exactly one
// of OLS or EWMA carries the strategy detail.
type Forecast struct {
	Strategy Strategy `json:"strategy"`
	// Current is the last raw observation.
	Current float64 `json:"current"`
	// Expected is the fitted value at the last observed point.
	Expected float64     `json:"expected"`
	OLS      *OLSResult  `json:"ols,omitempty"`
	EWMA     *EWMAResult `json:"ewma,omitempty"`
}

// Forecaster fits a series and projects it forward.
type Forecaster interface {
	Strategy() Strategy
	Forecast(series []models.TimeSeriesPoint) (*Forecast, error)
}

// OLS forecasts with a least squares line over calendar days.
type OLS struct {
	FutureDays int
}

func (OLS) Strategy() Strategy { return StrategyOLS }

// Forecast needs at least two points.
func (f OLS) Forecast(series []models.TimeSeriesPoint) (*Forecast, error) {
	if len(series) < 2 {
		return nil, fmt.Errorf("ols forecast needs 2 points, got %d: %w", len(series), ErrInsufficientData)
	}
	res := ComputeOLSGrowth(series, f.FutureDays)
	return &Forecast{
		Strategy: StrategyOLS,
		Current:  res.Observed[len(res.Observed)-1].Value,
		Expected: res.Expected[len(res.Expected)-1].Value,
		OLS:      &res,
	}, nil
}

// EWMA forecasts the exponentially smoothed series over point index.
type EWMA struct {
	FutureDays int
}

func (EWMA) Strategy() Strategy { return StrategyEWMA }

// Forecast needs at least three points.
func (f EWMA) Forecast(series []models.TimeSeriesPoint) (*Forecast, error) {
	res, err := ComputeEWMAGrowth(series, f.FutureDays)
	if err != nil {
		return nil, err
	}
	sorted := models.SortPoints(series)
	return &Forecast{
		Strategy: StrategyEWMA,
		Current:  sorted[len(sorted)-1].Value,
		Expected: res.Predicted[len(res.Predicted)-1].Value,
		EWMA:     res,
	}, nil
}

// NewForecaster returns the forecaster for strategy. Non-positive horizons fall
// back to the package defaults.
func NewForecaster(strategy Strategy, olsDays, ewmaDays int) (Forecaster, error) {
	switch strategy {
	case StrategyOLS:
		if olsDays <= 0 {
			olsDays = DefaultOLSFutureDays
		}
		return OLS{FutureDays: olsDays}, nil
	case StrategyEWMA:
		if ewmaDays <= 0 {
			ewmaDays = DefaultEWMAFutureDays
		}
		return EWMA{FutureDays: ewmaDays}, nil
	}
	return nil, fmt.Errorf("unknown forecast strategy %q", strategy)
}
