package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/mcp-training/recminimap/game/report"
)

var (
	ErrRecordNotFound = errors.New("report not found")
	ErrInvalidID      = errors.New("invalid report id")
)

// Record is the persisted outcome of processing one recorded game.
type Record struct {
	ID          string              `json:"id"`
	RunID       string              `json:"run_id"`
	Replay      string              `json:"replay"`
	Minimap     string              `json:"minimap,omitempty"`
	Locale      string              `json:"locale"`
	ProcessedAt time.Time           `json:"processed_at"`
	Report      *report.MatchReport `json:"report,omitempty"`
	Errors      []string            `json:"errors,omitempty"`
}

// OK reports whether both the minimap and the report were produced.
func (r *Record) OK() bool {
	return len(r.Errors) == 0 && r.Report != nil && r.Minimap != ""
}

// Persistence defines the interface for persisting report records
type Persistence interface {
	// Save persists a record, replacing any previous one with the same ID
	Save(rec *Record) error

	// Load retrieves a record by ID
	Load(id string) (*Record, error)

	// Delete removes a record
	Delete(id string) error

	// ListAll returns all persisted record IDs, sorted
	ListAll() ([]string, error)

	// Exists checks if a record exists
	Exists(id string) bool
}

// FileStore implements Persistence on the file system
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed and returns a store over it.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create reports directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the directory records are written to.
func (fs *FileStore) Dir() string {
	return fs.dir
}

// NewRunID returns a fresh identifier for a processing run.
func NewRunID() string {
	return uuid.NewString()
}

// Save persists a record to a JSON file
func (fs *FileStore) Save(rec *Record) error {
	if rec == nil {
		return fmt.Errorf("record cannot be nil")
	}
	if err := validateID(rec.ID); err != nil {
		return err
	}
	if rec.RunID == "" {
		rec.RunID = NewRunID()
	}
	if rec.ProcessedAt.IsZero() {
		rec.ProcessedAt = time.Now().UTC()
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Write through a temp file so readers never see a partial record
	tmp, err := os.CreateTemp(fs.dir, rec.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create record file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write record file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write record file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fs.path(rec.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write record file: %w", err)
	}
	return nil
}

// Load retrieves a record from its JSON file
func (fs *FileStore) Load(id string) (*Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(fs.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &rec, nil
}

// Delete removes a record file
func (fs *FileStore) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	if !fs.Exists(id) {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	if err := os.Remove(fs.path(id)); err != nil {
		return fmt.Errorf("failed to remove record file: %w", err)
	}
	return nil
}

// ListAll returns all persisted record IDs
func (fs *FileStore) ListAll() ([]string, error) {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read reports directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Exists checks if a record file exists
func (fs *FileStore) Exists(id string) bool {
	if validateID(id) != nil {
		return false
	}
	_, err := os.Stat(fs.path(id))
	return err == nil
}

func (fs *FileStore) path(id string) string {
	return filepath.Join(fs.dir, id+".json")
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
