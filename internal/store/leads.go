package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ladytrish-Devops/avaloniccornwell.com/internal/model"
)

// LeadStore persists leads as a single JSON array on disk, newest first.
// Every append rewrites the whole file; mutations are serialized by a
// mutex so concurrent submissions cannot lose each other's writes.
type LeadStore struct {
	mu   sync.RWMutex
	path string

	// lastID is the highest id handed out so far, so ids stay strictly
	// increasing even when two appends land in the same millisecond.
	lastID int64
}

func NewLeadStore(path string) *LeadStore {
	return &LeadStore{path: path}
}

// All returns every lead, newest first. A missing or unparsable backing
// file is treated as an empty store, never surfaced as an error.
func (s *LeadStore) All() ([]model.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.load(), nil
}

// Append assigns an id and receive time, prepends the lead and rewrites
// the backing file. The completed lead is returned.
func (s *LeadStore) Append(lead model.Lead) (model.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads := s.load()

	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	if len(leads) > 0 && id <= leads[0].ID {
		id = leads[0].ID + 1
	}
	s.lastID = id

	lead.ID = id
	lead.ReceivedAt = time.Now().UTC()
	if lead.Files == nil {
		lead.Files = []model.FileMeta{}
	}

	leads = append([]model.Lead{lead}, leads...)

	data, err := json.MarshalIndent(leads, "", "  ")
	if err != nil {
		return model.Lead{}, fmt.Errorf("encoding leads: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return model.Lead{}, fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return model.Lead{}, fmt.Errorf("writing leads file: %w", err)
	}
	return lead, nil
}

// load reads the backing file under whichever lock the caller holds.
func (s *LeadStore) load() []model.Lead {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("leads: read failed, treating store as empty", "path", s.path, "err", err)
		}
		return nil
	}
	var leads []model.Lead
	if err := json.Unmarshal(data, &leads); err != nil {
		slog.Debug("leads: malformed store file, treating as empty", "path", s.path, "err", err)
		return nil
	}
	return leads
}
