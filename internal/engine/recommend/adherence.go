package recommend

import "math"

// Prescription is a planned or performed weight, sets and reps.
type Prescription struct {
	Weight float64 `json:"weight"`
	Sets   int     `json:"sets"`
	Reps   int     `json:"reps"`
}

// Adherence ratings.
const (
	RatingExcellent = "excellent"
	RatingGood      = "good"
	RatingFair      = "fair"
	RatingPoor      = "poor"
)

// AdherenceResult scores how closely a session followed its plan.
type AdherenceResult struct {
	Adherence       int     `json:"adherence"`
	WeightAdherence float64 `json:"weightAdherence"`
	VolumeAdherence float64 `json:"volumeAdherence"`
	Rating          string  `json:"rating"`
	Feedback        string  `json:"feedback"`
}

// ScoreAdherence compares actual against planned. A planned weight or volume of
// zero counts as fully met.
func ScoreAdherence(planned, actual Prescription) AdherenceResult {
	weight := 100.0
	if planned.Weight > 0 {
		weight = math.Min(100, actual.Weight/planned.Weight*100)
	}
	volume := 100.0
	if pv := planned.Sets * planned.Reps; pv > 0 {
		volume = math.Min(100, float64(actual.Sets*actual.Reps)/float64(pv)*100)
	}
	weight = math.Max(0, weight)
	volume = math.Max(0, volume)

	score := int(math.Round(0.6*weight + 0.4*volume))
	res := AdherenceResult{
		Adherence:       score,
		WeightAdherence: math.Round(weight*10) / 10,
		VolumeAdherence: math.Round(volume*10) / 10,
	}
	switch {
	case score >= 95:
		res.Rating = RatingExcellent
		res.Feedback = "Excellent! You hit the plan."
	case score >= 85:
		res.Rating = RatingGood
		res.Feedback = "Good work, close to the plan."
	case score >= 70:
		res.Rating = RatingFair
		res.Feedback = "Fair effort. Check whether the plan is too aggressive."
	default:
		res.Rating = RatingPoor
		res.Feedback = "Well short of the plan. Consider lowering the targets or resting more."
	}
	return res
}
