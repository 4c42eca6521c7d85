package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/raptorfit/internal/ingest"
	"github.com/claude/raptorfit/internal/ingest/alpha"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/models"
	"github.com/google/uuid"
)

// SourceAPI marks sessions logged through the JSON endpoint.
const SourceAPI = "api"

type createWorkoutResponse struct {
	ID           uuid.UUID               `json:"id"`
	SetsInserted int64                   `json:"sets_inserted"`
	Snapshot     *insights.RefreshResult `json:"snapshot,omitempty"`
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var session models.WorkoutSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := ingest.ValidateSession(session); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	id, sets, err := s.db.InsertWorkoutSession(r.Context(), uid, SourceAPI, session)
	if err != nil {
		s.log.Error("insert workout", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, createWorkoutResponse{
		ID:           id,
		SetsInserted: sets,
		Snapshot:     s.refresh(r, uid),
	})
}

func (s *Server) handleAlphaIngest(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start := time.Now()
	result, err := s.alpha.Ingest(r.Context(), r.Body, uid)
	s.logImport(r, uid, alpha.Source, result, err, time.Since(start))
	if err != nil {
		s.log.Error("alpha ingest error", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if result.SessionsInserted > 0 {
		s.refresh(r, uid)
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	res, err := s.insights.Refresh(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// refresh recomputes the strength index after a write. A failure is logged
// and does not fail the write.
func (s *Server) refresh(r *http.Request, uid int) *insights.RefreshResult {
	res, err := s.insights.Refresh(r.Context(), uid)
	if err != nil {
		s.log.Error("strength index refresh failed", "user_id", uid, "error", err)
		return nil
	}
	return res
}

func (s *Server) handleCreateRecoveryLog(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var entry models.RecoveryLog
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if err := ingest.ValidateRecoveryLog(entry); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if err := s.db.UpsertRecoveryLog(r.Context(), uid, entry); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleQueryWorkouts(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r, 7)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sessions, err := s.db.QueryWorkoutSessions(r.Context(), start, end, uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleExercises(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	names, err := s.db.QueryExerciseNames(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) handleQueryRecovery(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r, 7)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	logs, err := s.db.QueryRecoveryLogs(r.Context(), start, end, uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []models.RecoveryLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) handleRecoverySummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r, 90)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	periods, err := s.db.GetRecoverySummary(r.Context(), start, end, summaryBucket(r), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

func (s *Server) handleTrainingSummary(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r, 90)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	periods, err := s.db.GetTrainingSummary(r.Context(), start, end, summaryBucket(r), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, periods)
}

// summaryBucket maps ?bucket=weekly|monthly to the storage bucket name.
func summaryBucket(r *http.Request) string {
	if r.URL.Query().Get("bucket") == "monthly" {
		return "month"
	}
	return "week"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

var errBadTime = errors.New("times must be RFC3339 or YYYY-MM-DD")

// parseTimeRange reads ?start and ?end. Without start the range is the last
// defaultDays days. A date-only end covers that whole day.
func parseTimeRange(r *http.Request, defaultDays int) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	end = time.Now()
	if endStr != "" {
		var dateOnly bool
		end, dateOnly, err = parseTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		if dateOnly {
			end = end.Add(24 * time.Hour)
		}
	}

	if startStr == "" {
		return end.AddDate(0, 0, -defaultDays), end, nil
	}
	start, _, err = parseTime(startStr)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseTime(s string) (t time.Time, dateOnly bool, err error) {
	if t, err = time.Parse(time.RFC3339, s); err == nil {
		return t, false, nil
	}
	if t, err = time.Parse(time.DateOnly, s); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, errBadTime
}
