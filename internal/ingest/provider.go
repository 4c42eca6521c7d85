// Package ingest holds what the workout importers share: the import result and
// validation of incoming training data.
package ingest

// Result holds the outcome of an ingest operation.
type Result struct {
	SessionsReceived int   `json:"sessions_received"`
	SessionsInserted int   `json:"sessions_inserted"`
	SessionsReplaced int64 `json:"sessions_replaced"`

	SetsReceived   int   `json:"sets_received"`
	SetsInserted   int64 `json:"sets_inserted"`
	WarmupsSkipped int   `json:"warmups_skipped"`

	// Unmapped lists exercise names stored without a muscle group.
	Unmapped []string `json:"unmapped,omitempty"`

	Message string `json:"message,omitempty"`
}
