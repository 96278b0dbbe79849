package service

import (
	"context"
	"errors"

	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/minimap"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
	"github.com/wricardo/mcp-training/recminimap/game/report"
	"github.com/wricardo/mcp-training/recminimap/game/store"
)

var (
	ErrReplayNotFound = errors.New("recorded game not found")
	ErrReportNotFound = errors.New("report not found")
	ErrMinimapTaken   = errors.New("minimap name taken by another recorded game")
)

// ReplayService defines all replay processing operations
type ReplayService interface {
	// Replays
	ListReplays(ctx context.Context) ([]*ReplayInfo, error)
	ProcessReplay(ctx context.Context, name string, opts ProcessOptions) (*store.Record, error)
	ProcessAll(ctx context.Context, opts ProcessOptions) (*BatchResult, error)

	// Results
	GetReport(ctx context.Context, id string) (*store.Record, error)
	ListReports(ctx context.Context) ([]*ReportInfo, error)
	MinimapPath(ctx context.Context, id string) (string, error)

	// Localization
	ListLocales(ctx context.Context) ([]locale.Info, error)
}

// Renderer draws and exports the minimap of a summary.
type Renderer interface {
	Render(summary *replay.Summary, source string) (*minimap.Result, error)
}

// ReportBuilder builds a match report with a given locale.
type ReportBuilder func(loc *locale.Locale, source string, summary *replay.Summary) (*report.MatchReport, error)

// BuildReport is the default ReportBuilder.
func BuildReport(loc *locale.Locale, source string, summary *replay.Summary) (*report.MatchReport, error) {
	return report.NewBuilder(loc).Build(source, summary)
}

// LocaleManager handles locale loading
type LocaleManager interface {
	Load(name string) (*locale.Locale, error)
	GetDefault() *locale.Locale
	List() ([]locale.Info, error)
}

// RecordStore persists processing records
type RecordStore interface {
	Save(rec *store.Record) error
	Load(id string) (*store.Record, error)
	ListAll() ([]string, error)
}

// Notifier receives processing events.
type Notifier interface {
	Publish(topic, event string, data interface{})
}
