package growth

import "fmt"

// DefaultDeloadThreshold is the relative shortfall below expected strength at
// which a deload is suggested.
const DefaultDeloadThreshold = 0.10

// DeloadSignal reports whether current strength lags the trend enough to back off.
type DeloadSignal struct {
	NeedsDeload    bool    `json:"needsDeload"`
	DeficitPercent float64 `json:"deficitPercent"`
	Reason         string  `json:"reason"`
}

// CheckDeload compares current against expected strength. The threshold is
// exclusive; a non-positive threshold uses DefaultDeloadThreshold.
func CheckDeload(current, expected, threshold float64) DeloadSignal {
	if threshold <= 0 {
		threshold = DefaultDeloadThreshold
	}
	if expected <= 0 {
		return DeloadSignal{Reason: "No expected strength to compare against"}
	}

	deficit := (expected - current) / expected
	sig := DeloadSignal{DeficitPercent: round2(deficit * 100)}
	if deficit > threshold {
		sig.NeedsDeload = true
		sig.Reason = fmt.Sprintf("Strength is %.1f%% below expected (%.1f vs %.1f); consider a deload week",
			deficit*100, current, expected)
		return sig
	}
	sig.Reason = fmt.Sprintf("Strength is within %.0f%% of expected (%.1f vs %.1f)", threshold*100, current, expected)
	return sig
}
