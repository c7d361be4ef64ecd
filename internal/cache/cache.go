// Package cache persists probe outcomes per target so repeated scans skip
// paths that were already checked. The cache is advisory: any read failure
// yields an empty cache and any write failure is swallowed, since caching
// is an optimization rather than a correctness requirement.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/PentesterFlow/LocalScan/internal/logger"
)

// Entry records the last known probe outcome for one path against one target.
type Entry struct {
	Path        string    `json:"path"`
	Exists      bool      `json:"exists"`
	Status      int       `json:"status,omitempty"`
	LastChecked time.Time `json:"lastChecked"`
}

// TargetRecord holds all entries ever recorded for one target.
type TargetRecord struct {
	BaseURL string  `json:"baseUrl"`
	Entries []Entry `json:"entries"`
}

// Store is a JSON-file-backed route cache. One record per distinct target,
// keyed by a stable hash of the target's base URL.
type Store struct {
	path string
	data map[string]*TargetRecord
	log  *logger.Logger
}

// TargetKey derives the cache partition key for a base URL. Different hosts
// or ports produce different partitions by design.
func TargetKey(baseURL string) string {
	sum := sha256.Sum256([]byte(baseURL))
	return hex.EncodeToString(sum[:8])
}

// Open loads the store at path. A missing, unreadable, or corrupt file
// results in an empty store, never an error.
func Open(path string, log *logger.Logger) *Store {
	s := &Store{
		path: path,
		data: make(map[string]*TargetRecord),
		log:  log,
	}
	if s.log == nil {
		s.log = logger.Global().WithComponent("cache")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.WithError(err).Debug("Cache file unreadable, starting empty")
		}
		return s
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		s.log.WithError(err).Debug("Cache file corrupt, starting empty")
		s.data = make(map[string]*TargetRecord)
	}
	return s
}

// CachedPaths returns every path ever recorded for the target, whether or
// not it existed. Callers use it to skip re-probing.
func (s *Store) CachedPaths(baseURL string) map[string]struct{} {
	paths := make(map[string]struct{})
	rec, ok := s.data[TargetKey(baseURL)]
	if !ok {
		return paths
	}
	for _, e := range rec.Entries {
		paths[e.Path] = struct{}{}
	}
	return paths
}

// ExistingEntries returns only the entries where the path was seen to exist,
// used to seed discovery without network calls.
func (s *Store) ExistingEntries(baseURL string) []Entry {
	rec, ok := s.data[TargetKey(baseURL)]
	if !ok {
		return nil
	}
	var existing []Entry
	for _, e := range rec.Entries {
		if e.Exists {
			existing = append(existing, e)
		}
	}
	return existing
}

// Update upserts entries for the target and persists the whole store.
// An entry with the same path replaces the old one in place; entries are
// never duplicated.
func (s *Store) Update(baseURL string, entries []Entry) {
	if len(entries) == 0 {
		return
	}

	key := TargetKey(baseURL)
	rec, ok := s.data[key]
	if !ok {
		rec = &TargetRecord{BaseURL: baseURL}
		s.data[key] = rec
	}

	index := make(map[string]int, len(rec.Entries))
	for i, e := range rec.Entries {
		index[e.Path] = i
	}

	for _, e := range entries {
		if i, seen := index[e.Path]; seen {
			rec.Entries[i] = e
		} else {
			index[e.Path] = len(rec.Entries)
			rec.Entries = append(rec.Entries, e)
		}
	}

	s.save()
}

// Clear removes the record for one target, or the entire store when
// baseURL is empty.
func (s *Store) Clear(baseURL string) {
	if baseURL == "" {
		s.data = make(map[string]*TargetRecord)
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			s.log.WithError(err).Debug("Failed to remove cache file")
		}
		return
	}

	delete(s.data, TargetKey(baseURL))
	s.save()
}

// save writes the full store back to disk, best-effort. Corruption is
// self-healing on the next successful write.
func (s *Store) save() {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		s.log.WithError(err).Debug("Failed to marshal cache")
		return
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			s.log.WithError(err).Debug("Failed to create cache directory")
			return
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		s.log.WithError(err).Debug("Failed to write cache file")
	}
}

// DefaultPath returns the cache location under the user's home directory.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".localscan-cache.json"
	}
	return filepath.Join(home, ".localscan", "routes.json")
}
