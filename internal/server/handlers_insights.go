package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/claude/raptorfit/internal/engine/growth"
	"github.com/claude/raptorfit/internal/engine/recommend"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/models"
	"github.com/go-chi/chi/v5"
)

// writeInsightError maps analytics errors to status codes. Too little history
// is reported as 422 so clients can tell it apart from a server fault.
func writeInsightError(w http.ResponseWriter, err error) {
	if errors.Is(err, growth.ErrInsufficientData) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func (s *Server) handleStrengthIndex(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	report, err := s.insights.StrengthIndex(r.Context(), uid)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleSIHistory(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r, 365)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	snaps, err := s.insights.SIHistory(r.Context(), uid, start, end)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	if snaps == nil {
		snaps = []models.StrengthIndexSnapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

// seriesParam reads ?series, falling back to ?exercise and then to the
// strength index series.
func seriesParam(r *http.Request) string {
	q := r.URL.Query()
	for _, name := range []string{"series", "exercise"} {
		if v := strings.TrimSpace(q.Get(name)); v != "" {
			return v
		}
	}
	return insights.SeriesSI
}

// intParam reads a non-negative integer query parameter.
func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}

func (s *Server) handleGrowth(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	strategy := r.URL.Query().Get("strategy")
	if strategy != "" {
		if _, err := growth.ParseStrategy(strategy); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
	}
	days, err := intParam(r, "days")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	fc, err := s.insights.Growth(r.Context(), uid, seriesParam(r), strategy, days)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fc)
}

func (s *Server) handleExerciseGrowth(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	weeks, err := intParam(r, "weeks")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if weeks == 0 {
		weeks = 12
	}
	a, err := s.insights.ExerciseGrowth(r.Context(), uid, seriesParam(r), weeks)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleAnomalies(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	report, err := s.insights.Anomalies(r.Context(), uid, seriesParam(r))
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleRecoveryScore(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	score, err := s.insights.Recovery(r.Context(), uid)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

// parseGroups reads a comma-separated muscle group list.
func parseGroups(raw string) ([]models.MuscleGroup, error) {
	var groups []models.MuscleGroup
	for _, part := range strings.Split(raw, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		g, ok := models.ParseMuscleGroup(part)
		if !ok {
			return nil, errors.New("unknown muscle group " + strconv.Quote(strings.TrimSpace(part)))
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (s *Server) handleRecoveryPredict(w http.ResponseWriter, r *http.Request) {
	groups, err := parseGroups(r.URL.Query().Get("groups"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if len(groups) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "groups is required"})
		return
	}
	var rpe float64
	if v := r.URL.Query().Get("rpe"); v != "" {
		rpe, err = strconv.ParseFloat(v, 64)
		if err != nil || rpe < 0 || rpe > 10 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rpe must be within 0-10"})
			return
		}
	}
	writeJSON(w, http.StatusOK, s.insights.RecoveryPrediction(groups, rpe))
}

func (s *Server) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	exercise := strings.TrimSpace(chi.URLParam(r, "exercise"))
	if exercise == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise is required"})
		return
	}
	rec, err := s.insights.Recommendation(r.Context(), uid, exercise)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var group models.MuscleGroup
	if raw := r.URL.Query().Get("muscle_group"); raw != "" {
		g, valid := models.ParseMuscleGroup(raw)
		if !valid {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown muscle group " + strconv.Quote(raw)})
			return
		}
		group = g
	}
	plan, err := s.insights.Plan(r.Context(), uid, group)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

type adherenceRequest struct {
	Planned recommend.Prescription `json:"planned"`
	Actual  recommend.Prescription `json:"actual"`
}

func (s *Server) handleAdherence(w http.ResponseWriter, r *http.Request) {
	var req adherenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, s.insights.Adherence(req.Planned, req.Actual))
}

func (s *Server) handleRestDay(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	d, err := s.insights.RestDay(r.Context(), uid)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	rd, err := s.insights.DailyReadiness(r.Context(), uid)
	if err != nil {
		writeInsightError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rd)
}
