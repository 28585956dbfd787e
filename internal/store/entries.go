// Package store owns the persisted log entries and user settings. Both
// stores keep their state in memory and write it back wholesale to the
// key-value store after every mutation.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"fitjournal/internal/db"
	"fitjournal/internal/models"
)

const (
	entriesKey  = "log.entries"
	settingsKey = "user.settings"

	dateLayout = "2006-01-02"
)

// ErrInvalidDate is returned when an entry date is not a YYYY-MM-DD
// calendar date.
var ErrInvalidDate = errors.New("invalid date; expected YYYY-MM-DD")

// EntryStore holds the de-duplicated set of log entries, keyed by date.
// At most one entry exists per date.
type EntryStore struct {
	mu      sync.Mutex
	kv      *db.KV
	logger  *zap.Logger
	entries map[string]models.LogEntry
}

// NewEntryStore loads the persisted entries. A missing or unreadable
// record degrades to an empty store; corruption is logged, not surfaced.
func NewEntryStore(kv *db.KV, logger *zap.Logger) *EntryStore {
	s := &EntryStore{kv: kv, logger: logger, entries: make(map[string]models.LogEntry)}

	raw, ok, err := kv.Get(entriesKey)
	if err != nil {
		logger.Warn("could not read persisted entries; starting empty", zap.Error(err))
		return s
	}
	if !ok {
		return s
	}

	var list []models.LogEntry
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.Warn("persisted entries are corrupt; starting empty", zap.Error(err))
		return s
	}
	for _, e := range list {
		if _, err := time.Parse(dateLayout, e.Date); err != nil {
			continue
		}
		s.entries[e.Date] = normalize(e)
	}
	return s
}

// normalize maps non-positive weight and duration to "absent".
func normalize(e models.LogEntry) models.LogEntry {
	if e.Weight != nil && *e.Weight <= 0 {
		e.Weight = nil
	}
	if e.DurationMinutes != nil && *e.DurationMinutes <= 0 {
		e.DurationMinutes = nil
	}
	return e
}

// AddOrReplace inserts the entry, replacing any existing entry for the
// same date. The whole record is replaced; fields are never merged.
func (s *EntryStore) AddOrReplace(e models.LogEntry) error {
	if _, err := time.Parse(dateLayout, e.Date); err != nil {
		return ErrInvalidDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[e.Date]
	s.entries[e.Date] = normalize(e)
	if err := s.persistLocked(); err != nil {
		if existed {
			s.entries[e.Date] = prev
		} else {
			delete(s.entries, e.Date)
		}
		return err
	}
	return nil
}

// Delete removes the entry for the given date and reports whether one
// existed. Confirmation is the caller's concern.
func (s *EntryStore) Delete(date string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.entries[date]
	if !existed {
		return false, nil
	}
	delete(s.entries, date)
	if err := s.persistLocked(); err != nil {
		s.entries[date] = prev
		return false, err
	}
	return true, nil
}

// MergeImport overwrites-or-inserts each record by date, leaving dates
// not present in the import untouched. The batch commits atomically:
// either all records land or the store is unchanged. Records without a
// usable date are skipped. Returns the total entry count after the merge.
func (s *EntryStore) MergeImport(records []models.LogEntry) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make(map[string]models.LogEntry, len(s.entries)+len(records))
	for d, e := range s.entries {
		merged[d] = e
	}
	for _, r := range records {
		if r.Date == "" {
			continue
		}
		if _, err := time.Parse(dateLayout, r.Date); err != nil {
			continue
		}
		merged[r.Date] = normalize(r)
	}

	prev := s.entries
	s.entries = merged
	if err := s.persistLocked(); err != nil {
		s.entries = prev
		return 0, err
	}
	return len(s.entries), nil
}

// ListAll returns an unordered snapshot. Callers sort as needed.
func (s *EntryStore) ListAll() []models.LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, copyEntry(e))
	}
	return out
}

// Count returns the number of stored entries.
func (s *EntryStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// ClearAll empties the store. Irreversible.
func (s *EntryStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.entries
	s.entries = make(map[string]models.LogEntry)
	if err := s.persistLocked(); err != nil {
		s.entries = prev
		return err
	}
	return nil
}

// copyEntry detaches pointer fields so callers never share memory with
// the store.
func copyEntry(e models.LogEntry) models.LogEntry {
	if e.Weight != nil {
		w := *e.Weight
		e.Weight = &w
	}
	if e.DurationMinutes != nil {
		d := *e.DurationMinutes
		e.DurationMinutes = &d
	}
	return e
}

func (s *EntryStore) persistLocked() error {
	list := make([]models.LogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		list = append(list, e)
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}
	return s.kv.Put(entriesKey, string(raw))
}
