package vaultdb

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dmitrijs2005/vaultsync/internal/client/models"
	"github.com/dmitrijs2005/vaultsync/internal/common"
	"github.com/google/uuid"
)

// Store holds the entries of one vault. It is not safe for concurrent use;
// the owning session serializes access.
type Store struct {
	entries  map[string]models.Entry
	revision int

	now   func() time.Time
	newID func() string
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid based id generator.
func WithIDGenerator(f func() string) Option {
	return func(s *Store) { s.newID = f }
}

// New returns an empty store at revision 0.
func New(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]models.Entry),
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) stamp() time.Time {
	return s.now().UTC().Round(0)
}

func noSuchEntry(id string) error {
	return fmt.Errorf("%w: %s", common.ErrNoSuchEntry, id)
}

// Revision returns the current revision.
func (s *Store) Revision() int { return s.revision }

// BumpRevision increments the revision without touching any entry.
func (s *Store) BumpRevision() { s.revision++ }

// Size returns the number of entries.
func (s *Store) Size() int { return len(s.entries) }

// Add inserts a new entry built from the content fields and flags of attrs
// and returns its id. Any id, timestamps or counters on attrs are ignored.
func (s *Store) Add(attrs models.Entry) string {
	id := s.newID()
	for _, taken := s.entries[id]; taken; _, taken = s.entries[id] {
		id = s.newID()
	}

	ts := s.stamp()
	s.entries[id] = models.Entry{
		ID:               id,
		Title:            attrs.Title,
		URL:              attrs.URL,
		Login:            attrs.Login,
		Password:         attrs.Password,
		Created:          ts,
		Updated:          ts,
		Hidden:           attrs.Hidden,
		PasswordStrength: attrs.PasswordStrength,
	}
	s.revision++
	return id
}

// Remove deletes the entry id.
func (s *Store) Remove(id string) error {
	if _, ok := s.entries[id]; !ok {
		return noSuchEntry(id)
	}
	delete(s.entries, id)
	s.revision++
	return nil
}

// Update applies p to entry id and stamps its update time.
func (s *Store) Update(id string, p models.Patch) error {
	e, ok := s.entries[id]
	if !ok {
		return noSuchEntry(id)
	}
	p.Apply(&e)
	e.Updated = s.stamp()
	s.entries[id] = e
	s.revision++
	return nil
}

// UpdateEntry is Update with the id and values taken from a full entry.
func (s *Store) UpdateEntry(e models.Entry) error {
	return s.Update(e.ID, models.PatchFromEntry(e))
}

// EntryUsed increments the usage counter of id. The update time is kept.
func (s *Store) EntryUsed(id string) error {
	e, ok := s.entries[id]
	if !ok {
		return noSuchEntry(id)
	}
	e.UsageCount++
	s.entries[id] = e
	s.revision++
	return nil
}

// Get returns a copy of entry id.
func (s *Store) Get(id string) (models.Entry, error) {
	e, ok := s.entries[id]
	if !ok {
		return models.Entry{}, noSuchEntry(id)
	}
	e.ReuseCount = s.reuse()[e.Password]
	return e.Clone(), nil
}

// Find returns copies of all entries whose id, title, url or login contain
// sub, sorted by title and then id. An empty sub matches everything.
func (s *Store) Find(sub string) []models.Entry {
	reuse := s.reuse()
	out := make([]models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if sub != "" && !matches(e, sub) {
			continue
		}
		e.ReuseCount = reuse[e.Password]
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// All returns copies of every entry.
func (s *Store) All() []models.Entry {
	return s.Find("")
}

func matches(e models.Entry, sub string) bool {
	return strings.Contains(e.ID, sub) ||
		strings.Contains(e.Title, sub) ||
		strings.Contains(e.URL, sub) ||
		strings.Contains(e.Login, sub)
}

// reuse maps each non-empty password to the number of other entries sharing
// it. It is rebuilt on every read so it cannot drift from the entries.
func (s *Store) reuse() map[string]int {
	groups := make(map[string]int)
	for _, e := range s.entries {
		if e.Password != "" {
			groups[e.Password]++
		}
	}
	out := make(map[string]int, len(groups))
	for pw, n := range groups {
		out[pw] = n - 1
	}
	return out
}

// sorted returns the raw entries ordered by id.
func (s *Store) sorted() []models.Entry {
	out := make([]models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
