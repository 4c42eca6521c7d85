// Package observability exposes the Prometheus collectors shared by the
// server, the importer and the insights pipeline.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	snapshotCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raptorfit",
		Subsystem: "insights",
		Name:      "snapshot_refreshes_total",
		Help:      "Strength index refreshes grouped by outcome (persisted, unchanged, error).",
	}, []string{"outcome"})

	strengthIndexGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "raptorfit",
		Subsystem: "insights",
		Name:      "strength_index",
		Help:      "Most recently computed total strength index per user.",
	}, []string{"user"})

	unmappedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "raptorfit",
		Subsystem: "insights",
		Name:      "unmapped_exercises_total",
		Help:      "Exercise names seen during refresh that have no muscle group.",
	})

	importSessionsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "raptorfit",
		Subsystem: "ingest",
		Name:      "sessions_total",
		Help:      "Workout sessions handled by the importers grouped by source and result.",
	}, []string{"source", "result"})

	lastImportGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "raptorfit",
		Subsystem: "ingest",
		Name:      "last_import_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful import per source.",
	}, []string{"source"})

	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "raptorfit",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency grouped by route pattern and status code.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "status"})
)

func init() {
	prometheus.MustRegister(
		snapshotCounter,
		strengthIndexGauge,
		unmappedCounter,
		importSessionsCounter,
		lastImportGauge,
		requestDuration,
	)
}

// Refresh outcomes.
const (
	OutcomePersisted = "persisted"
	OutcomeUnchanged = "unchanged"
	OutcomeError     = "error"
)

// RecordRefresh counts one strength index refresh.
func RecordRefresh(outcome string) {
	snapshotCounter.WithLabelValues(outcome).Inc()
}

// RecordStrengthIndex publishes the latest total for user.
func RecordStrengthIndex(user string, total float64) {
	strengthIndexGauge.WithLabelValues(user).Set(total)
}

// RecordUnmapped adds n unmapped exercise names.
func RecordUnmapped(n int) {
	if n <= 0 {
		return
	}
	unmappedCounter.Add(float64(n))
}

// RecordImport counts received and inserted sessions for source and moves the
// import watermark.
func RecordImport(source string, received, inserted int, ts time.Time) {
	importSessionsCounter.WithLabelValues(source, "received").Add(float64(received))
	importSessionsCounter.WithLabelValues(source, "inserted").Add(float64(inserted))
	if !ts.IsZero() {
		lastImportGauge.WithLabelValues(source).Set(float64(ts.Unix()))
	}
}

// ObserveRequest records the latency of one HTTP request.
func ObserveRequest(route string, status int, d time.Duration) {
	requestDuration.WithLabelValues(route, statusClass(status)).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
