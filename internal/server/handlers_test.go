package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/claude/raptorfit/internal/models"
	"github.com/claude/raptorfit/internal/storage"
	"github.com/google/go-cmp/cmp"
)

// TestMeWithoutTailscale verifies /me reports the local user when the server
// runs without a tailnet.
func TestMeWithoutTailscale(t *testing.T) {
	s := newTestServer(&memStore{}, nil)
	rec := do(t, s, http.MethodGet, "/api/v1/me", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var info UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(devUser, info); diff != "" {
		t.Errorf("me mismatch (-want +got):\n%s", diff)
	}
}

// TestMeTailnetUser verifies /me echoes the identity stored by the middleware.
func TestMeTailnetUser(t *testing.T) {
	want := UserInfo{Login: "sam@example.com", DisplayName: "Sam"}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), userInfoKey, want))
	rec := httptest.NewRecorder()

	(&Server{}).handleMe(rec, req)

	var got UserInfo
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("me mismatch (-want +got):\n%s", diff)
	}
}

// TestGetProfile verifies the stored profile is returned as JSON.
func TestGetProfile(t *testing.T) {
	want := storage.Profile{UserID: 1, Login: "default", BodyweightKg: 72.5, TargetFrequency: 3}
	s := newTestServer(&memStore{profile: want}, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/profile", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var got storage.Profile
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("profile mismatch (-want +got):\n%s", diff)
	}
}

// TestRecoveryLogRoundTrip verifies a logged night is stored and listed.
func TestRecoveryLogRoundTrip(t *testing.T) {
	store := &memStore{}
	s := newTestServer(store, nil)

	body := `{"date":"2026-03-17T00:00:00Z","sleepHours":7.5,"sleepQuality":8,"soreness":3,"stress":2}`
	if rec := do(t, s, http.MethodPost, "/api/v1/recovery", body, true); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}
	bad := `{"date":"2026-03-17T00:00:00Z","sleepHours":30}`
	if rec := do(t, s, http.MethodPost, "/api/v1/recovery", bad, true); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid log status = %d, want 400", rec.Code)
	}

	rec := do(t, s, http.MethodGet, "/api/v1/recovery?start=2026-03-10&end=2026-03-17", "", false)
	var logs []models.RecoveryLog
	if err := json.NewDecoder(rec.Body).Decode(&logs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(logs) != 1 || logs[0].SleepHours != 7.5 || logs[0].Soreness != 3 {
		t.Errorf("logs = %+v, want the one stored night", logs)
	}
}

// TestStatsAndImportLogs verifies the data overview endpoints.
func TestStatsAndImportLogs(t *testing.T) {
	store := &memStore{sessions: []models.WorkoutSession{benchSession(3, 100), benchSession(1, 100)}}
	s := newTestServer(store, nil)

	var stats storage.DataStats
	if err := json.NewDecoder(do(t, s, http.MethodGet, "/api/v1/stats", "", false).Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.TotalSessions != 2 {
		t.Errorf("total_sessions = %d, want 2", stats.TotalSessions)
	}

	rec := do(t, s, http.MethodGet, "/api/v1/import-logs?limit=5", "", false)
	if got := rec.Body.String(); got != "[]\n" {
		t.Errorf("import logs body = %q, want empty list", got)
	}
}
