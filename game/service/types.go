package service

import (
	"time"

	"go.uber.org/multierr"

	"github.com/wricardo/mcp-training/recminimap/game/store"
)

// Event names published to the Notifier.
const (
	EventReplayProcessed = "replay_processed"
	EventReplayFailed    = "replay_failed"
	EventBatchCompleted  = "batch_completed"
)

// ReplayInfo describes a recorded game in the replay directory
type ReplayInfo struct {
	Name      string    `json:"name"`
	ID        string    `json:"id"`
	Size      int64     `json:"size"`
	ModTime   time.Time `json:"mod_time"`
	Processed bool      `json:"processed"`
}

// ReportInfo is the listing view of a stored record
type ReportInfo struct {
	ID          string    `json:"id"`
	Replay      string    `json:"replay"`
	RunID       string    `json:"run_id"`
	Minimap     string    `json:"minimap,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
	OK          bool      `json:"ok"`
	Errors      []string  `json:"errors,omitempty"`
}

// ProcessOptions tunes a processing call
type ProcessOptions struct {
	Locale  string `json:"locale,omitempty"`  // empty uses the default locale
	Workers int    `json:"workers,omitempty"` // batch concurrency, at least 1
	RunID   string `json:"run_id,omitempty"`  // empty generates one
}

// BatchResult summarizes a ProcessAll run
type BatchResult struct {
	RunID     string          `json:"run_id"`
	Processed int             `json:"processed"`
	Failed    int             `json:"failed"`
	Records   []*store.Record `json:"records"`
	Duration  time.Duration   `json:"duration"`

	errs []error
}

// Err combines the failures of every file in the batch.
func (b *BatchResult) Err() error {
	return multierr.Combine(b.errs...)
}

// ProcessEvent is the payload of replay events.
type ProcessEvent struct {
	RunID   string   `json:"run_id"`
	ID      string   `json:"id"`
	Replay  string   `json:"replay"`
	Minimap string   `json:"minimap,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

func reportInfo(rec *store.Record) *ReportInfo {
	return &ReportInfo{
		ID:          rec.ID,
		Replay:      rec.Replay,
		RunID:       rec.RunID,
		Minimap:     rec.Minimap,
		ProcessedAt: rec.ProcessedAt,
		OK:          rec.OK(),
		Errors:      rec.Errors,
	}
}
