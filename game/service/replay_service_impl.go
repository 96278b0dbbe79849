package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/wricardo/mcp-training/recminimap/game/locale"
	"github.com/wricardo/mcp-training/recminimap/game/replay"
	"github.com/wricardo/mcp-training/recminimap/game/store"
)

// Config wires the collaborators of the replay service
type Config struct {
	ReplayDir string
	Parser    replay.Parser
	Renderer  Renderer
	Reports   ReportBuilder // defaults to BuildReport
	Locales   LocaleManager
	Store     RecordStore
	Notifier  Notifier // optional
	Logger    logrus.FieldLogger
}

// replayServiceImpl implements the ReplayService interface
type replayServiceImpl struct {
	replayDir string
	parser    replay.Parser
	renderer  Renderer
	reports   ReportBuilder
	locales   LocaleManager
	store     RecordStore
	notifier  Notifier
	log       logrus.FieldLogger

	records map[string]*store.Record
	mu      sync.RWMutex
}

// NewReplayService creates a new replay service instance
func NewReplayService(cfg Config) ReplayService {
	s := &replayServiceImpl{
		replayDir: cfg.ReplayDir,
		parser:    cfg.Parser,
		renderer:  cfg.Renderer,
		reports:   cfg.Reports,
		locales:   cfg.Locales,
		store:     cfg.Store,
		notifier:  cfg.Notifier,
		log:       cfg.Logger,
		records:   make(map[string]*store.Record),
	}
	if s.parser == nil {
		s.parser = replay.JSONParser{}
	}
	if s.reports == nil {
		s.reports = BuildReport
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// ListReplays returns the recorded games of the replay directory
func (s *replayServiceImpl) ListReplays(ctx context.Context) ([]*ReplayInfo, error) {
	files, err := replay.Discover(s.replayDir)
	if errors.Is(err, replay.ErrNoReplays) {
		return []*ReplayInfo{}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := assignIDs(files)
	infos := make([]*ReplayInfo, 0, len(files))
	for _, path := range files {
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		id := ids[path].id
		infos = append(infos, &ReplayInfo{
			Name:      filepath.Base(path),
			ID:        id,
			Size:      fi.Size(),
			ModTime:   fi.ModTime(),
			Processed: s.isProcessed(id),
		})
	}
	return infos, nil
}

// ProcessReplay renders and reports a single recorded game by file name
func (s *replayServiceImpl) ProcessReplay(ctx context.Context, name string, opts ProcessOptions) (*store.Record, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	loc, err := s.locale(opts.Locale)
	if err != nil {
		return nil, err
	}
	runID := opts.RunID
	if runID == "" {
		runID = store.NewRunID()
	}
	files, err := replay.Discover(s.replayDir)
	if err != nil {
		return nil, err
	}
	return s.process(ctx, path, assignIDs(files)[path], loc, runID)
}

// ProcessAll processes every recorded game. A failing file never stops the
// batch; the returned error is reserved for failures that prevent the batch
// from starting.
func (s *replayServiceImpl) ProcessAll(ctx context.Context, opts ProcessOptions) (*BatchResult, error) {
	start := time.Now()

	files, err := replay.Discover(s.replayDir)
	if err != nil {
		return nil, err
	}
	loc, err := s.locale(opts.Locale)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{RunID: opts.RunID}
	if batch.RunID == "" {
		batch.RunID = store.NewRunID()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	ids := assignIDs(files)
	records := make([]*store.Record, len(files))
	errs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			records[i], errs[i] = s.process(gctx, path, ids[path], loc, batch.RunID)
			return nil
		})
	}
	_ = g.Wait()

	for i, path := range files {
		if records[i] != nil {
			batch.Records = append(batch.Records, records[i])
		}
		if errs[i] != nil {
			batch.Failed++
			batch.errs = append(batch.errs, fmt.Errorf("%s: %w", filepath.Base(path), errs[i]))
			continue
		}
		batch.Processed++
	}
	batch.Duration = time.Since(start)

	s.log.WithFields(logrus.Fields{
		"run_id":    batch.RunID,
		"processed": batch.Processed,
		"failed":    batch.Failed,
		"workers":   workers,
		"duration":  batch.Duration,
	}).Info("batch completed")
	s.publish(batch.RunID, EventBatchCompleted, batch)

	return batch, nil
}

// replayID is the record id of a recorded game. Games sharing a stem share
// the minimap name, so only the first one in name order renders; the others
// are keyed by their file name and point at the owner.
type replayID struct {
	id    string
	owner string
}

// assignIDs maps each of the sorted paths to its record id.
func assignIDs(files []string) map[string]replayID {
	ids := make(map[string]replayID, len(files))
	owners := make(map[string]string, len(files))
	for _, path := range files {
		stem := replay.Stem(path)
		if owner, ok := owners[stem]; ok {
			ids[path] = replayID{id: filepath.Base(path), owner: filepath.Base(owner)}
			continue
		}
		owners[stem] = path
		ids[path] = replayID{id: stem}
	}
	return ids
}

// process runs parse, render and report for one file and saves the record.
func (s *replayServiceImpl) process(ctx context.Context, path string, rid replayID, loc *locale.Locale, runID string) (*store.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	log := s.log.WithFields(logrus.Fields{
		"replay": filepath.Base(path),
		"run_id": runID,
	})

	rec := &store.Record{
		ID:          rid.id,
		RunID:       runID,
		Replay:      filepath.Base(path),
		Locale:      loc.Name,
		ProcessedAt: time.Now().UTC(),
	}

	var err error
	summary, parseErr := s.parser.Parse(path)
	if parseErr != nil {
		err = fmt.Errorf("parse: %w", parseErr)
	} else {
		if rid.owner != "" {
			err = fmt.Errorf("render: %w: %s", ErrMinimapTaken, rid.owner)
		} else if result, renderErr := s.renderer.Render(summary, path); renderErr != nil {
			err = multierr.Append(err, fmt.Errorf("render: %w", renderErr))
		} else {
			rec.Minimap = result.Path
		}

		if r, reportErr := s.reports(loc, path, summary); reportErr != nil {
			err = multierr.Append(err, fmt.Errorf("report: %w", reportErr))
		} else {
			rec.Report = r
		}
	}

	for _, e := range multierr.Errors(err) {
		rec.Errors = append(rec.Errors, e.Error())
	}
	if saveErr := s.store.Save(rec); saveErr != nil {
		err = multierr.Append(err, fmt.Errorf("save: %w", saveErr))
	}
	s.remember(rec)

	event := &ProcessEvent{
		RunID:   runID,
		ID:      rec.ID,
		Replay:  rec.Replay,
		Minimap: rec.Minimap,
		Errors:  rec.Errors,
	}
	log = log.WithField("duration", time.Since(start))
	if err != nil {
		log.WithError(err).Warn("replay failed")
		s.publish(rec.ID, EventReplayFailed, event)
		return rec, err
	}

	log.Info("replay processed")
	s.publish(rec.ID, EventReplayProcessed, event)
	return rec, nil
}

// GetReport returns the stored record of a processed replay
func (s *replayServiceImpl) GetReport(ctx context.Context, id string) (*store.Record, error) {
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return rec, nil
	}

	rec, err := s.store.Load(id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) || errors.Is(err, store.ErrInvalidID) {
			return nil, fmt.Errorf("%w: %s", ErrReportNotFound, id)
		}
		return nil, err
	}
	s.remember(rec)
	return rec, nil
}

// ListReports returns every stored record
func (s *replayServiceImpl) ListReports(ctx context.Context) ([]*ReportInfo, error) {
	ids, err := s.store.ListAll()
	if err != nil {
		return nil, err
	}

	infos := make([]*ReportInfo, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetReport(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("id", id).Warn("skipping unreadable report")
			continue
		}
		infos = append(infos, reportInfo(rec))
	}
	return infos, nil
}

// MinimapPath returns the image file of a processed replay
func (s *replayServiceImpl) MinimapPath(ctx context.Context, id string) (string, error) {
	rec, err := s.GetReport(ctx, id)
	if err != nil {
		return "", err
	}
	if rec.Minimap == "" {
		return "", fmt.Errorf("%w: %s has no minimap", ErrReportNotFound, id)
	}
	return rec.Minimap, nil
}

// ListLocales returns the available locales
func (s *replayServiceImpl) ListLocales(ctx context.Context) ([]locale.Info, error) {
	return s.locales.List()
}

func (s *replayServiceImpl) locale(name string) (*locale.Locale, error) {
	if name == "" {
		return s.locales.GetDefault(), nil
	}
	return s.locales.Load(name)
}

// resolve maps a bare file name to a recorded game in the replay directory.
func (s *replayServiceImpl) resolve(name string) (string, error) {
	if name == "" || filepath.Base(name) != name || !replay.IsReplay(name) {
		return "", fmt.Errorf("%w: %q", ErrReplayNotFound, name)
	}
	path := filepath.Join(s.replayDir, name)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrReplayNotFound, name)
	}
	return path, nil
}

func (s *replayServiceImpl) remember(rec *store.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = rec
}

func (s *replayServiceImpl) isProcessed(id string) bool {
	s.mu.RLock()
	_, ok := s.records[id]
	s.mu.RUnlock()
	if ok {
		return true
	}
	_, err := s.store.Load(id)
	return err == nil
}

func (s *replayServiceImpl) publish(topic, event string, data interface{}) {
	if s.notifier != nil {
		s.notifier.Publish(topic, event, data)
	}
}
