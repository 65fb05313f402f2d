// Package history persists processed weekly snapshots to flat files so
// re-visits avoid re-upload. Layout under the data dir:
//
//	metadata.json   ordered week labels + update timestamps
//	mapping.json    automation mapping snapshot
//	week_<slug>.json  cleaned records of one week
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
	"github.com/Manuqueiroz1/relatorio-email/ports"
)

const (
	metadataFile = "metadata.json"
	mappingFile  = "mapping.json"
)

// FileStore implements ports.HistoryStore on the local filesystem.
type FileStore struct {
	dataDir string
	mu      sync.Mutex
}

// NewFileStore creates the store and its data directory.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create data directory %s", dataDir)
	}
	return &FileStore{dataDir: dataDir}, nil
}

var _ ports.HistoryStore = (*FileStore)(nil)

// SaveWeek snapshots the cleaned records of one week and registers the
// label in the metadata. Re-saving a week overwrites its snapshot and
// keeps the original label order.
func (s *FileStore) SaveWeek(ctx context.Context, week core.WeekLabel, records []email.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMetadata()
	if err != nil {
		return err
	}

	if err := writeJSON(s.weekPath(week), records); err != nil {
		return errors.Wrapf(err, "failed to write snapshot for week %s", week)
	}

	if !meta.HasWeek(week) {
		meta.Weeks = append(meta.Weeks, week)
	}
	now := core.Now()
	meta.LastUpdated = &now

	return s.writeMetadata(meta)
}

// SaveMapping snapshots the automation mapping table.
func (s *FileStore) SaveMapping(ctx context.Context, mapping *email.Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMetadata()
	if err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(s.dataDir, mappingFile), mapping); err != nil {
		return errors.Wrap(err, "failed to write mapping snapshot")
	}

	now := core.Now()
	meta.AutomationMapUpdated = &now
	return s.writeMetadata(meta)
}

// LoadAll restores the mapping and every week listed in the metadata.
// Week snapshots load concurrently; a missing or corrupt snapshot file
// becomes a warning, not a failure.
func (s *FileStore) LoadAll(ctx context.Context) (*ports.HistorySnapshot, error) {
	s.mu.Lock()
	meta, err := s.readMetadata()
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	snapshot := &ports.HistorySnapshot{
		Metadata: *meta,
		Weeks:    make(map[core.WeekLabel][]email.Record, len(meta.Weeks)),
	}

	var mapping email.Mapping
	if ok, err := readJSON(filepath.Join(s.dataDir, mappingFile), &mapping); err != nil {
		snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("mapping snapshot unreadable: %v", err))
	} else if ok {
		snapshot.Mapping = &mapping
	}

	var resMu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, week := range meta.Weeks {
		week := week
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var records []email.Record
			ok, err := readJSON(s.weekPath(week), &records)
			resMu.Lock()
			defer resMu.Unlock()
			switch {
			case err != nil:
				snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("week %s snapshot unreadable: %v", week, err))
			case !ok:
				snapshot.Warnings = append(snapshot.Warnings, fmt.Sprintf("week %s snapshot missing", week))
			default:
				snapshot.Weeks[week] = records
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "history load interrupted")
	}
	return snapshot, nil
}

// Weeks returns the ordered week labels currently on record.
func (s *FileStore) Weeks(ctx context.Context) ([]core.WeekLabel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMetadata()
	if err != nil {
		return nil, err
	}
	return meta.Weeks, nil
}

func (s *FileStore) weekPath(week core.WeekLabel) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("week_%s.json", week.Slug()))
}

func (s *FileStore) readMetadata() (*email.Metadata, error) {
	var meta email.Metadata
	ok, err := readJSON(filepath.Join(s.dataDir, metadataFile), &meta)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read history metadata")
	}
	if !ok {
		return &email.Metadata{}, nil
	}
	return &meta, nil
}

func (s *FileStore) writeMetadata(meta *email.Metadata) error {
	if err := writeJSON(filepath.Join(s.dataDir, metadataFile), meta); err != nil {
		return errors.Wrap(err, "failed to write history metadata")
	}
	return nil
}

// writeJSON writes atomically via a temp file and rename so a crash
// mid-write never leaves a truncated snapshot.
func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// readJSON returns (false, nil) when the file does not exist.
func readJSON(path string, v interface{}) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", filepath.Base(path), err)
	}
	return true, nil
}
