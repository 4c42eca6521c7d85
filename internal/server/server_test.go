package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/claude/raptorfit/internal/config"
	"github.com/claude/raptorfit/internal/ingest"
	"github.com/claude/raptorfit/internal/insights"
	"github.com/claude/raptorfit/internal/models"
	"github.com/claude/raptorfit/internal/storage"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

const testKey = "secret"

var testNow = time.Date(2026, 3, 18, 15, 0, 0, 0, time.UTC)

// memStore backs both the handlers and the analytics service.
type memStore struct {
	profile    storage.Profile
	sessions   []models.WorkoutSession
	logs       []models.RecoveryLog
	snaps      []models.StrengthIndexSnapshot
	importLogs []storage.ImportLog
}

func (m *memStore) GetOrCreateUser(_ context.Context, _, _ string) (int, error) { return 1, nil }

func (m *memStore) InsertWorkoutSession(_ context.Context, _ int, _ string, s models.WorkoutSession) (uuid.UUID, int64, error) {
	s.ID = uuid.New()
	m.sessions = append(m.sessions, s)
	var sets int64
	for _, ex := range s.Exercises {
		sets += int64(len(ex.Sets))
	}
	return s.ID, sets, nil
}

func (m *memStore) QueryWorkoutSessions(_ context.Context, start, end time.Time, _ int) ([]models.WorkoutSession, error) {
	var out []models.WorkoutSession
	for _, s := range m.sessions {
		if !s.Date.Before(start) && !s.Date.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) QueryExerciseNames(_ context.Context, _ int) ([]string, error) { return nil, nil }

func (m *memStore) UpsertRecoveryLog(_ context.Context, _ int, l models.RecoveryLog) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *memStore) QueryRecoveryLogs(_ context.Context, start, end time.Time, _ int) ([]models.RecoveryLog, error) {
	var out []models.RecoveryLog
	for _, l := range m.logs {
		if !l.Date.Before(start) && !l.Date.After(end) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memStore) GetRecoverySummary(_ context.Context, _, _ time.Time, _ string, _ int) ([]storage.RecoverySummaryPeriod, error) {
	return []storage.RecoverySummaryPeriod{}, nil
}

func (m *memStore) GetTrainingSummary(_ context.Context, _, _ time.Time, _ string, _ int) ([]storage.TrainingSummaryPeriod, error) {
	return []storage.TrainingSummaryPeriod{}, nil
}

func (m *memStore) GetProfile(_ context.Context, _ int) (*storage.Profile, error) {
	p := m.profile
	return &p, nil
}

func (m *memStore) UpdateProfile(_ context.Context, _ int, bw float64, freq int) error {
	if bw > 0 {
		m.profile.BodyweightKg = bw
	}
	if freq > 0 {
		m.profile.TargetFrequency = freq
	}
	return nil
}

func (m *memStore) GetDataStats(_ context.Context, _ int) (*storage.DataStats, error) {
	return &storage.DataStats{TotalSessions: int64(len(m.sessions))}, nil
}

func (m *memStore) InsertImportLog(_ context.Context, l storage.ImportLog) (int64, error) {
	l.ID = int64(len(m.importLogs) + 1)
	m.importLogs = append(m.importLogs, l)
	return l.ID, nil
}

func (m *memStore) QueryImportLogs(_ context.Context, _, _ int) ([]storage.ImportLog, error) {
	return m.importLogs, nil
}

func (m *memStore) LatestSnapshot(_ context.Context, _ int) (*models.StrengthIndexSnapshot, error) {
	if len(m.snaps) == 0 {
		return nil, storage.ErrNotFound
	}
	s := m.snaps[len(m.snaps)-1]
	return &s, nil
}

func (m *memStore) InsertSnapshot(_ context.Context, _ int, s models.StrengthIndexSnapshot) (int64, error) {
	s.ID = int64(len(m.snaps) + 1)
	m.snaps = append(m.snaps, s)
	return s.ID, nil
}

func (m *memStore) QuerySnapshots(_ context.Context, start, end time.Time, _ int) ([]models.StrengthIndexSnapshot, error) {
	var out []models.StrengthIndexSnapshot
	for _, s := range m.snaps {
		if !s.Date.Before(start) && !s.Date.After(end) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeIngester struct {
	result *ingest.Result
	err    error
}

func (f *fakeIngester) Ingest(_ context.Context, r io.Reader, _ int) (*ingest.Result, error) {
	io.Copy(io.Discard, r)
	return f.result, f.err
}

func newTestServer(store *memStore, ing Ingester) *Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := insights.New(store, config.DefaultAnalytics(), log)
	svc.SetClock(func() time.Time { return testNow })
	if ing == nil {
		ing = &fakeIngester{result: &ingest.Result{}}
	}
	return New(store, svc, ing, testKey, log)
}

func do(t *testing.T, s *Server, method, target, body string, withKey bool) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if withKey {
		req.Header.Set("X-API-Key", testKey)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

const benchWorkout = `{"date":"2026-03-17T18:00:00Z","exercises":[{"name":"Bench Press","sets":[{"reps":5,"weight":100}]}]}`

// TestCreateWorkoutRefreshesSnapshot verifies a logged session is stored and
// produces the first strength index snapshot.
func TestCreateWorkoutRefreshesSnapshot(t *testing.T) {
	store := &memStore{profile: storage.Profile{UserID: 1, BodyweightKg: 80}}
	s := newTestServer(store, nil)

	rec := do(t, s, http.MethodPost, "/api/v1/workouts", benchWorkout, true)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		SetsInserted int64 `json:"sets_inserted"`
		Snapshot     struct {
			Persisted bool `json:"persisted"`
		} `json:"snapshot"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SetsInserted != 1 {
		t.Errorf("sets_inserted = %d, want 1", resp.SetsInserted)
	}
	if len(store.snaps) != 1 || store.snaps[0].TotalSI != 1.5 {
		t.Errorf("snapshots = %+v, want one with totalSI 1.5", store.snaps)
	}
}

// TestCreateWorkoutRequiresKey verifies writes are rejected without an API key.
func TestCreateWorkoutRequiresKey(t *testing.T) {
	s := newTestServer(&memStore{}, nil)
	if rec := do(t, s, http.MethodPost, "/api/v1/workouts", benchWorkout, false); rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

// TestCreateWorkoutValidation verifies malformed sessions never reach storage.
func TestCreateWorkoutValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad json", `{`},
		{"no exercises", `{"date":"2026-03-17T18:00:00Z","exercises":[]}`},
		{"negative weight", `{"date":"2026-03-17T18:00:00Z","exercises":[{"name":"Squat","sets":[{"reps":5,"weight":-1}]}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			s := newTestServer(store, nil)
			rec := do(t, s, http.MethodPost, "/api/v1/workouts", tt.body, true)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if len(store.sessions) != 0 {
				t.Errorf("stored %d sessions, want 0", len(store.sessions))
			}
		})
	}
}

// TestStrengthIndexEndpoint verifies the reference 80 kg lifter benching 100x5.
func TestStrengthIndexEndpoint(t *testing.T) {
	store := &memStore{
		profile: storage.Profile{UserID: 1, BodyweightKg: 80},
		sessions: []models.WorkoutSession{{
			Date:      testNow.AddDate(0, 0, -1),
			Exercises: []models.ExerciseEntry{{Name: "Bench Press", Sets: []models.SetEntry{{Reps: 5, Weight: 100}}}},
		}},
	}
	s := newTestServer(store, nil)

	rec := do(t, s, http.MethodGet, "/api/v1/strength-index", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		TotalSI   float64          `json:"totalSI"`
		Breakdown models.Breakdown `json:"breakdown"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(models.Breakdown{Chest: 1.5}, got.Breakdown); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
	if got.TotalSI != 1.5 {
		t.Errorf("totalSI = %v, want 1.5", got.TotalSI)
	}
}

// TestInsightErrorStatus verifies bad parameters are 400 and too little history
// is 422.
func TestInsightErrorStatus(t *testing.T) {
	tests := []struct {
		target string
		want   int
	}{
		{"/api/v1/growth?strategy=arima", http.StatusBadRequest},
		{"/api/v1/growth?days=-1", http.StatusBadRequest},
		{"/api/v1/growth?strategy=ols", http.StatusUnprocessableEntity},
		{"/api/v1/plan?muscle_group=wings", http.StatusBadRequest},
		{"/api/v1/recovery/predict", http.StatusBadRequest},
		{"/api/v1/recovery/predict?groups=legs&rpe=11", http.StatusBadRequest},
		{"/api/v1/recovery/predict?groups=tail", http.StatusBadRequest},
		{"/api/v1/workouts?start=yesterday", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			s := newTestServer(&memStore{profile: storage.Profile{UserID: 1, BodyweightKg: 80}}, nil)
			if rec := do(t, s, http.MethodGet, tt.target, "", false); rec.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

// TestRecoveryPredictEndpoint verifies a heavy leg session needs 72h plus 20%.
func TestRecoveryPredictEndpoint(t *testing.T) {
	s := newTestServer(&memStore{}, nil)
	rec := do(t, s, http.MethodGet, "/api/v1/recovery/predict?groups=legs,chest&rpe=9", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Hours float64 `json:"hours"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if math.Abs(got.Hours-86.4) > 1e-9 {
		t.Errorf("hours = %v, want 86.4", got.Hours)
	}
}

// TestAdherenceEndpoint verifies a session matching its plan rates excellent.
func TestAdherenceEndpoint(t *testing.T) {
	s := newTestServer(&memStore{}, nil)
	body := `{"planned":{"weight":100,"sets":3,"reps":5},"actual":{"weight":100,"sets":3,"reps":5}}`
	rec := do(t, s, http.MethodPost, "/api/v1/adherence", body, false)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var got struct {
		Adherence int    `json:"adherence"`
		Rating    string `json:"rating"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Adherence != 100 || got.Rating != "excellent" {
		t.Errorf("got %+v, want 100 excellent", got)
	}
}

// TestAlphaIngestLogsImport verifies the upload is recorded in import_logs.
func TestAlphaIngestLogsImport(t *testing.T) {
	store := &memStore{profile: storage.Profile{UserID: 1, BodyweightKg: 80}}
	ing := &fakeIngester{result: &ingest.Result{SessionsReceived: 2, SessionsInserted: 2, SetsInserted: 12}}
	s := newTestServer(store, ing)

	rec := do(t, s, http.MethodPost, "/api/v1/ingest/alpha", "csv", true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if len(store.importLogs) != 1 {
		t.Fatalf("import logs = %d, want 1", len(store.importLogs))
	}
	got := store.importLogs[0]
	if got.Source != "alpha_progression" || got.Status != "success" || got.SetsInserted != 12 {
		t.Errorf("import log = %+v", got)
	}
}

// TestAlphaIngestError verifies a rejected upload returns 400 and is logged.
func TestAlphaIngestError(t *testing.T) {
	store := &memStore{}
	ing := &fakeIngester{err: ingest.ErrInvalid}
	s := newTestServer(store, ing)

	rec := do(t, s, http.MethodPost, "/api/v1/ingest/alpha", "csv", true)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(store.importLogs) != 1 || store.importLogs[0].Status != "error" {
		t.Errorf("import logs = %+v, want one error entry", store.importLogs)
	}
}

// TestUpdateProfileRefreshes verifies a bodyweight change rescales the index.
func TestUpdateProfileRefreshes(t *testing.T) {
	store := &memStore{
		profile: storage.Profile{UserID: 1, BodyweightKg: 80},
		sessions: []models.WorkoutSession{{
			Date:      testNow.AddDate(0, 0, -1),
			Exercises: []models.ExerciseEntry{{Name: "Bench Press", Sets: []models.SetEntry{{Reps: 5, Weight: 100}}}},
		}},
	}
	s := newTestServer(store, nil)

	rec := do(t, s, http.MethodPut, "/api/v1/profile", `{"bodyweight_kg":100}`, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if store.profile.BodyweightKg != 100 {
		t.Errorf("bodyweight = %v, want 100", store.profile.BodyweightKg)
	}
	// 116.67 / 100 = 1.2
	if len(store.snaps) != 1 || store.snaps[0].TotalSI != 1.2 {
		t.Errorf("snapshots = %+v, want one with totalSI 1.2", store.snaps)
	}

	if rec := do(t, s, http.MethodPut, "/api/v1/profile", `{"target_frequency":20}`, true); rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

// TestParseTimeRange covers defaults, RFC3339 and date-only bounds.
func TestParseTimeRange(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?start=2026-03-01&end=2026-03-10", nil)
	start, end, err := parseTimeRange(req, 7)
	if err != nil {
		t.Fatalf("parseTimeRange: %v", err)
	}
	if !start.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want the day after the date-only end", end)
	}

	req = httptest.NewRequest(http.MethodGet, "/?end=2026-03-10T12:00:00Z", nil)
	start, end, err = parseTimeRange(req, 7)
	if err != nil {
		t.Fatalf("parseTimeRange: %v", err)
	}
	if got := end.Sub(start); got != 7*24*time.Hour {
		t.Errorf("range = %v, want 7 days", got)
	}
}

// TestSummaryBucket verifies weekly is the default bucket.
func TestSummaryBucket(t *testing.T) {
	for q, want := range map[string]string{"": "week", "weekly": "week", "monthly": "month"} {
		req := httptest.NewRequest(http.MethodGet, "/?bucket="+q, nil)
		if got := summaryBucket(req); got != want {
			t.Errorf("summaryBucket(%q) = %q, want %q", q, got, want)
		}
	}
}

// TestQueryWorkoutsEmpty verifies an empty range encodes as [] not null.
func TestQueryWorkoutsEmpty(t *testing.T) {
	s := newTestServer(&memStore{}, nil)
	rec := do(t, s, http.MethodGet, "/api/v1/workouts", "", false)
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, want []", got)
	}
}

func benchSession(daysAgo int, weight float64) models.WorkoutSession {
	return models.WorkoutSession{
		Date: testNow.AddDate(0, 0, -daysAgo),
		Exercises: []models.ExerciseEntry{{
			Name: "Bench Press",
			Sets: []models.SetEntry{{Reps: 5, Weight: weight}},
		}},
	}
}

// TestSeriesParam verifies growth and anomaly endpoints select an exercise
// series through ?series, with ?exercise accepted as an alias.
func TestSeriesParam(t *testing.T) {
	store := &memStore{
		profile: storage.Profile{UserID: 1, BodyweightKg: 80},
		sessions: []models.WorkoutSession{
			benchSession(14, 100), benchSession(7, 102.5), benchSession(1, 105),
		},
	}
	s := newTestServer(store, nil)

	for _, target := range []string{
		"/api/v1/growth?series=bench%20press&strategy=ols",
		"/api/v1/growth?exercise=bench%20press&strategy=ols",
	} {
		rec := do(t, s, http.MethodGet, target, "", false)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d, want 200: %s", target, rec.Code, rec.Body.String())
		}
		var fc struct {
			Current float64 `json:"current"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&fc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if fc.Current != 122.5 {
			t.Errorf("%s: current = %v, want 122.5", target, fc.Current)
		}
	}

	rec := do(t, s, http.MethodGet, "/api/v1/anomalies?series=Bench%20Press", "", false)
	if rec.Code != http.StatusOK {
		t.Fatalf("anomalies status = %d: %s", rec.Code, rec.Body.String())
	}
	var report struct {
		Series string `json:"series"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Series != "bench press" {
		t.Errorf("anomalies series = %q, want %q", report.Series, "bench press")
	}

	rec = do(t, s, http.MethodGet, "/api/v1/growth/exercise?exercise=bench%20press", "", false)
	if rec.Code != http.StatusOK {
		t.Errorf("exercise growth status = %d: %s", rec.Code, rec.Body.String())
	}
}
