// Package alpha imports workout CSV exports from the Alpha Progression app.
package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/raptorfit/internal/models"
)

var (
	// sessionHeaderRe matches: "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// exerciseHeaderRe matches: "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// setDataRe matches: 1;115;8;1
	setDataRe = regexp.MustCompile(`^(\d+);(.+);(\d+);(.*)$`)

	// warmupRe matches: WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	// durationRe matches: 1:02 hr, 45 min
	durationRe = regexp.MustCompile(`^(?:(\d+):(\d{2})\s*hr|(\d+)\s*min)$`)

	columnHeaderRe = regexp.MustCompile(`^#;KG;REPS;RIR$`)
)

// parser accumulates the session and exercise currently being read.
type parser struct {
	sessions []models.AlphaSession
	session  *models.AlphaSession
	exercise *models.AlphaExercise
}

func (p *parser) flushExercise() {
	if p.session != nil && p.exercise != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
	}
	p.exercise = nil
}

func (p *parser) flushSession() {
	p.flushExercise()
	if p.session != nil {
		p.sessions = append(p.sessions, *p.session)
	}
	p.session = nil
}

// Parse reads an Alpha Progression CSV export. Sessions are separated by blank
// lines; unrecognised lines such as notes are skipped.
func Parse(r io.Reader) ([]models.AlphaSession, error) {
	scanner := bufio.NewScanner(r)
	p := &parser{}
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			p.flushSession()
			continue
		}
		if columnHeaderRe.MatchString(line) {
			continue
		}

		if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
			p.flushSession()
			date, err := parseSessionDate(m[2])
			if err != nil {
				return nil, fmt.Errorf("line %d: parsing session date %q: %w", lineNo, m[2], err)
			}
			p.session = &models.AlphaSession{
				Name:        m[1],
				Date:        date,
				DurationMin: parseDuration(m[3]),
			}
			continue
		}

		if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
			if p.session == nil {
				return nil, fmt.Errorf("line %d: exercise without session: %q", lineNo, line)
			}
			p.flushExercise()
			num, _ := strconv.Atoi(m[1])
			targetReps, _ := strconv.Atoi(m[4])
			p.exercise = &models.AlphaExercise{
				Number:     num,
				Name:       strings.TrimSpace(m[2]),
				Equipment:  strings.TrimSpace(m[3]),
				TargetReps: targetReps,
			}
			if m[6] != "" {
				p.exercise.Sets = append(p.exercise.Sets, parseWarmups(m[6])...)
			}
			continue
		}

		if m := setDataRe.FindStringSubmatch(line); m != nil {
			if p.exercise == nil {
				return nil, fmt.Errorf("line %d: set data without exercise: %q", lineNo, line)
			}
			setNum, _ := strconv.Atoi(m[1])
			weight, isBW := parseWeight(m[2])
			reps, _ := strconv.Atoi(m[3])
			p.exercise.Sets = append(p.exercise.Sets, models.AlphaSet{
				Number:           setNum,
				WeightKg:         weight,
				IsBodyweightPlus: isBW,
				Reps:             reps,
				RIR:              parseRIR(m[4]),
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}

	p.flushSession()
	return p.sessions, nil
}

// parseSessionDate parses "2026-02-19 4:54" or "2026-02-19 16:54".
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date %q", s)
}

// parseDuration converts "1:02 hr" or "45 min" to minutes. Unknown formats are 0.
func parseDuration(s string) int {
	m := durationRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	if m[3] != "" {
		mins, _ := strconv.Atoi(m[3])
		return mins
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return h*60 + mins
}

// parseWarmups extracts warm-up sets from the exercise header's second field.
// Example: "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
func parseWarmups(s string) []models.AlphaSet {
	var sets []models.AlphaSet
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		weight, isBW := parseWeight(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, models.AlphaSet{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: isBW,
			Reps:             reps,
			RIR:              -1,
			IsWarmup:         true,
		})
	}
	return sets
}

// parseWeight handles European decimals and bodyweight-plus notation.
// "+35" -> (35, true), "102,5" -> (102.5, false), "+0" -> (0, true)
func parseWeight(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseEuropeanFloat(rest), true
	}
	return parseEuropeanFloat(s), false
}

// parseRIR returns -1 for an empty or dashed column.
func parseRIR(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return -1
	}
	return parseEuropeanFloat(s)
}

// parseEuropeanFloat converts "102,5" to 102.5.
func parseEuropeanFloat(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
