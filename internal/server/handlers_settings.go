package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/raptorfit/internal/ingest"
	"github.com/claude/raptorfit/internal/storage"
)

type profileUpdate struct {
	BodyweightKg    float64 `json:"bodyweight_kg"`
	TargetFrequency int     `json:"target_frequency"`
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	p, err := s.db.GetProfile(r.Context(), uid)
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateProfile changes bodyweight or target frequency. A bodyweight
// change rescales the strength index, so the snapshot is refreshed.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.BodyweightKg < 0 || req.TargetFrequency < 0 || req.TargetFrequency > 14 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bodyweight_kg must be >= 0 and target_frequency within 0-14"})
		return
	}
	if err := s.db.UpdateProfile(r.Context(), uid, req.BodyweightKg, req.TargetFrequency); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "profile not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if req.BodyweightKg > 0 {
		s.refresh(r, uid)
	}

	p, err := s.db.GetProfile(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	stats, err := s.db.GetDataStats(r.Context(), uid)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), uid, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if logs == nil {
		logs = []storage.ImportLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(r *http.Request, uid int, source string, result *ingest.Result, importErr error, elapsed time.Duration) {
	entry := storage.ImportLog{UserID: uid, Source: source}
	entry.Finish(importErr, elapsed)
	if result != nil {
		entry.SessionsReceived = result.SessionsReceived
		entry.SessionsInserted = result.SessionsInserted
		entry.SetsInserted = result.SetsInserted
	}

	ctx, cancel := contextWithTimeout(r)
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, entry); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout detaches from the request so a cancelled upload is still
// logged, bounded to 5 seconds.
func contextWithTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second) //nolint:mnd
}
