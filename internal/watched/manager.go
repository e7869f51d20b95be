package watched

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pders01/popcorn/internal/debuglog"
	"github.com/pders01/popcorn/internal/storage"
)

var (
	ErrMissingRating = errors.New("a rating is required")
	ErrDuplicate     = errors.New("already in watched list")
	ErrMissingID     = errors.New("entry has no id")
)

// Store is the slice of the persistent store the manager needs.
type Store interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

// Summary aggregates the watched list. Averages are zero when the list is
// empty.
type Summary struct {
	Count             int
	AvgExternalRating float64
	AvgUserRating     float64
	AvgRuntime        float64
}

// Manager owns the watched list. It is the only writer of the watched key
// and is driven from the UI event loop, so it does no locking.
type Manager struct {
	store     Store
	entries   []storage.WatchedEntry
	listeners []func([]storage.WatchedEntry)
}

// NewManager loads the persisted list once. Missing or unreadable data
// starts an empty list.
func NewManager(store Store) *Manager {
	m := &Manager{store: store}
	m.entries = load(store)
	return m
}

func load(store Store) []storage.WatchedEntry {
	if store == nil {
		return nil
	}
	raw, ok, err := store.Get(storage.WatchedKey)
	if err != nil {
		debuglog.Warnf("reading watched list: %v", err)
		return nil
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}

	var entries []storage.WatchedEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		debuglog.Warnf("watched list is malformed, starting empty: %v", err)
		return nil
	}

	// Older snapshots may hold the same id twice; keep the first.
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if e.ID == "" || seen[e.ID] {
			debuglog.Warnf("watched list: skipping entry %q (empty or repeated id)", e.ID)
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}
	return out
}

// OnChange registers fn to receive the committed list after every mutation.
func (m *Manager) OnChange(fn func([]storage.WatchedEntry)) {
	m.listeners = append(m.listeners, fn)
}

// Add appends entry. The write reaches the store before the in-memory list
// changes, so a failed write leaves the manager untouched.
func (m *Manager) Add(entry storage.WatchedEntry) error {
	if entry.ID == "" {
		return ErrMissingID
	}
	if entry.UserRating <= 0 {
		return ErrMissingRating
	}
	if m.Contains(entry.ID) {
		return fmt.Errorf("%w: %s", ErrDuplicate, entry.ID)
	}

	next := make([]storage.WatchedEntry, len(m.entries), len(m.entries)+1)
	copy(next, m.entries)
	next = append(next, entry)

	if err := m.commit(next); err != nil {
		return err
	}
	debuglog.WithFields(map[string]interface{}{
		"id":     entry.ID,
		"rating": entry.UserRating,
	}).Infof("added to watched list")
	return nil
}

// Remove deletes every entry with id. Removing an unknown id is a no-op.
func (m *Manager) Remove(id string) error {
	next := make([]storage.WatchedEntry, 0, len(m.entries))
	for _, e := range m.entries {
		if e.ID != id {
			next = append(next, e)
		}
	}
	if len(next) == len(m.entries) {
		return nil
	}

	if err := m.commit(next); err != nil {
		return err
	}
	debuglog.Infof("removed %s from watched list", id)
	return nil
}

func (m *Manager) commit(next []storage.WatchedEntry) error {
	if m.store != nil {
		// Marshal a non-nil slice so an empty list is stored as [].
		snapshot := next
		if snapshot == nil {
			snapshot = []storage.WatchedEntry{}
		}
		data, err := json.Marshal(snapshot)
		if err != nil {
			return fmt.Errorf("encoding watched list: %w", err)
		}
		if err := m.store.Put(storage.WatchedKey, string(data)); err != nil {
			debuglog.Errorf("persisting watched list: %v", err)
			return fmt.Errorf("saving watched list: %w", err)
		}
	}

	m.entries = next
	for _, fn := range m.listeners {
		fn(m.Entries())
	}
	return nil
}

// Entries returns a copy of the list in insertion order.
func (m *Manager) Entries() []storage.WatchedEntry {
	out := make([]storage.WatchedEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manager) Get(id string) (storage.WatchedEntry, bool) {
	for _, e := range m.entries {
		if e.ID == id {
			return e, true
		}
	}
	return storage.WatchedEntry{}, false
}

func (m *Manager) Contains(id string) bool {
	_, ok := m.Get(id)
	return ok
}

func (m *Manager) Len() int {
	return len(m.entries)
}

func (m *Manager) Summary() Summary {
	s := Summary{Count: len(m.entries)}
	if s.Count == 0 {
		return s
	}

	var ext, user, runtime float64
	for _, e := range m.entries {
		ext += e.ExternalRating
		user += e.UserRating
		runtime += float64(e.RuntimeMinutes)
	}
	n := float64(s.Count)
	s.AvgExternalRating = ext / n
	s.AvgUserRating = user / n
	s.AvgRuntime = runtime / n
	return s
}
