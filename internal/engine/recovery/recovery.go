// Package recovery scores daily training readiness from sleep, recent training
// load and per-muscle rest.
package recovery

import (
	"math"
	"sort"
	"time"

	"github.com/claude/raptorfit/internal/models"
)

// Recommendation buckets.
const (
	Rest     = "rest"
	Light    = "light"
	Moderate = "moderate"
	Heavy    = "heavy"
)

const (
	sleepWeight     = 0.35
	intensityWeight = 0.35
	fatigueWeight   = 0.30

	sleepWindow      = 7
	targetSleepHours = 8.0
	fatiguedBelow    = 75.0
	maxStreak        = 6
)

// RequiredRecoveryHours is the rest each muscle group needs after training.
var RequiredRecoveryHours = map[models.MuscleGroup]float64{
	models.Chest:     48,
	models.Back:      48,
	models.Shoulders: 48,
	models.Arms:      36,
	models.Legs:      72,
	models.Core:      24,
}

// SleepLog is one night of sleep. Quality is on a 1-5 scale.
type SleepLog struct {
	Date    time.Time
	Hours   float64
	Quality float64
}

// SleepFromLog converts a logged recovery entry, whose quality is on a 1-10
// scale, to the 1-5 scale used by the sleep model.
func SleepFromLog(l models.RecoveryLog) SleepLog {
	return SleepLog{Date: l.Date, Hours: l.SleepHours, Quality: l.SleepQuality / 2}
}

// IntensityLog summarizes one workout. RPE is 0 when it was not tracked.
type IntensityLog struct {
	Date            time.Time
	RPE             float64
	DurationMinutes int
	MuscleGroups    []models.MuscleGroup
}

// IntensityFromSession summarizes a workout session. The RPE is the average of
// tracked sets; muscle groups come from resolve, in first-seen order.
func IntensityFromSession(s models.WorkoutSession, resolve func(models.ExerciseEntry) (models.MuscleGroup, bool)) IntensityLog {
	log := IntensityLog{Date: s.Date, DurationMinutes: s.DurationMin}
	seen := make(map[models.MuscleGroup]bool)
	var rpeSum float64
	var rpeCount int
	for _, ex := range s.Exercises {
		if g, ok := resolve(ex); ok && !seen[g] {
			seen[g] = true
			log.MuscleGroups = append(log.MuscleGroups, g)
		}
		for _, set := range ex.Sets {
			if set.RPE != nil {
				rpeSum += *set.RPE
				rpeCount++
			}
		}
	}
	if rpeCount > 0 {
		log.RPE = rpeSum / float64(rpeCount)
	}
	return log
}

// Details explains the sub-scores.
type Details struct {
	SleepDeficitHours    float64              `json:"sleepDeficitHours"`
	FatiguedMuscleGroups []models.MuscleGroup `json:"fatiguedMuscleGroups"`
	DaysWithoutRest      int                  `json:"daysWithoutRest"`
}

// Score is the composite readiness result. All scores are within [0,100].
type Score struct {
	Overall        int      `json:"overall"`
	Sleep          int      `json:"sleep"`
	Intensity      int      `json:"intensity"`
	MuscleFatigue  int      `json:"muscleFatigue"`
	Recommendation string   `json:"recommendation"`
	Details        Details  `json:"details"`
	Advice         []string `json:"advice"`
}

// Compute scores readiness at now. Empty inputs count as fully recovered.
func Compute(sleep []SleepLog, intensity []IntensityLog, now time.Time) Score {
	sleepScore, deficit := scoreSleep(sleep)
	intensityScore := scoreIntensity(intensity, now)
	fatigueScore, fatigued := scoreMuscleFatigue(intensity, now)

	overall := clamp(math.Round(sleepWeight*sleepScore + intensityWeight*intensityScore + fatigueWeight*fatigueScore))
	streak := trainingStreak(intensity, now)

	s := Score{
		Overall:        int(overall),
		Sleep:          int(clamp(math.Round(sleepScore))),
		Intensity:      int(clamp(math.Round(intensityScore))),
		MuscleFatigue:  int(clamp(math.Round(fatigueScore))),
		Recommendation: bucket(overall),
		Details: Details{
			SleepDeficitHours:    deficit,
			FatiguedMuscleGroups: fatigued,
			DaysWithoutRest:      streak,
		},
	}
	if streak >= maxStreak {
		s.Recommendation = Rest
	}
	s.Advice = Advice(s)
	return s
}

func scoreSleep(logs []SleepLog) (score, deficit float64) {
	if len(logs) == 0 {
		return 100, 0
	}
	sorted := make([]SleepLog, len(logs))
	copy(sorted, logs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.After(sorted[j].Date) })
	if len(sorted) > sleepWindow {
		sorted = sorted[:sleepWindow]
	}

	var hours, quality float64
	for _, l := range sorted {
		hours += l.Hours
		quality += l.Quality
	}
	n := float64(len(sorted))
	avgHours, avgQuality := hours/n, quality/n

	var hourScore float64
	switch {
	case avgHours < 6:
		hourScore = 40
	case avgHours < 7:
		hourScore = 65
	case avgHours <= 9:
		hourScore = 100
	default:
		hourScore = 85
	}
	qualityScore := 60 + avgQuality/5*40

	deficit = math.Max(0, targetSleepHours*n-hours)
	return clamp(0.7*hourScore + 0.3*qualityScore), math.Round(deficit*10) / 10
}

// recentWorkouts returns the logs in the trailing seven days up to now.
func recentWorkouts(logs []IntensityLog, now time.Time) []IntensityLog {
	from := now.AddDate(0, 0, -7)
	var out []IntensityLog
	for _, l := range logs {
		if l.Date.After(from) && !l.Date.After(now) {
			out = append(out, l)
		}
	}
	return out
}

func scoreIntensity(logs []IntensityLog, now time.Time) float64 {
	recent := recentWorkouts(logs, now)
	if len(recent) == 0 {
		return 100
	}

	var frequencyScore float64
	switch n := len(recent); {
	case n >= 6:
		frequencyScore = 60
	case n == 5:
		frequencyScore = 85
	case n <= 2:
		frequencyScore = 90
	default:
		frequencyScore = 100
	}

	var rpeSum, minutes float64
	var rpeCount int
	for _, l := range recent {
		if l.RPE > 0 {
			rpeSum += l.RPE
			rpeCount++
		}
		minutes += float64(l.DurationMinutes)
	}

	rpeScore := 100.0
	if rpeCount > 0 {
		switch avg := rpeSum / float64(rpeCount); {
		case avg >= 9:
			rpeScore = 50
		case avg >= 8:
			rpeScore = 70
		case avg < 6:
			rpeScore = 95
		}
	}

	durationScore := 100.0
	switch avg := minutes / float64(len(recent)); {
	case avg > 120:
		durationScore = 60
	case avg > 90:
		durationScore = 80
	}

	return clamp(0.4*frequencyScore + 0.4*rpeScore + 0.2*durationScore)
}

func scoreMuscleFatigue(logs []IntensityLog, now time.Time) (float64, []models.MuscleGroup) {
	lastTrained := make(map[models.MuscleGroup]time.Time)
	for _, l := range logs {
		if l.Date.After(now) {
			continue
		}
		for _, g := range l.MuscleGroups {
			if l.Date.After(lastTrained[g]) {
				lastTrained[g] = l.Date
			}
		}
	}

	fatigued := []models.MuscleGroup{}
	var sum float64
	var trained int
	for _, g := range models.MuscleGroups {
		last, ok := lastTrained[g]
		if !ok {
			continue
		}
		pct := math.Min(100, now.Sub(last).Hours()/RequiredRecoveryHours[g]*100)
		sum += pct
		trained++
		if pct < fatiguedBelow {
			fatigued = append(fatigued, g)
		}
	}
	if trained == 0 {
		return 100, fatigued
	}
	return clamp(sum / float64(trained)), fatigued
}

// trainingStreak counts consecutive training days ending today. A day without
// a workout breaks the streak.
func trainingStreak(logs []IntensityLog, now time.Time) int {
	today := startOfDay(now)
	days := make(map[int]bool)
	for _, l := range logs {
		offset := int(math.Round(today.Sub(startOfDay(l.Date)).Hours() / 24))
		if offset >= 0 {
			days[offset] = true
		}
	}
	streak := 0
	for days[streak] {
		streak++
	}
	return streak
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func bucket(overall float64) string {
	switch {
	case overall < 50:
		return Rest
	case overall < 65:
		return Light
	case overall < 80:
		return Moderate
	default:
		return Heavy
	}
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}
