// Package session keeps interactive explorer sessions for the HTTP surface.
//
// A [Session] owns one [explorer.Explorer] and serializes access to it. The
// [Store] holds sessions in memory only: they expire after a sliding TTL and
// the least recently used session is evicted when the store is full. UI state
// is never written anywhere.
//
//	store := session.NewStore(64, 30*time.Minute)
//	sess := store.Create(ex, "app.json")
//	err := sess.Do(func(ex *explorer.Explorer) error {
//	    ex.Toggle("lodash")
//	    return nil
//	})
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/explorer"
)

// Default store limits.
const (
	DefaultMaxSessions = 64
	DefaultTTL         = 30 * time.Minute
)

// Session is one explorer bound to an ID.
type Session struct {
	ID        string    `json:"id"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	explorer *explorer.Explorer
}

// Do runs fn with exclusive access to the session's explorer.
func (s *Session) Do(fn func(*explorer.Explorer) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.explorer)
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.explorer.Close()
}

// Store is an in-memory session registry. It is safe for concurrent use.
type Store struct {
	cache *expirable.LRU[string, *Session]
	ttl   time.Duration

	mu       sync.Mutex
	onChange func(n int)

	// ops counts explicit mutations in flight; they report the count
	// themselves once the LRU call returns.
	ops      atomic.Int32
	notifyMu sync.Mutex
}

// NewStore returns a store holding at most max sessions, each expiring ttl
// after its last use. Non-positive values use the defaults.
func NewStore(max int, ttl time.Duration) *Store {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	s := &Store{ttl: ttl}
	s.cache = expirable.NewLRU[string, *Session](max, s.evicted, ttl)
	return s
}

// OnChange registers fn to receive the session count after every change.
func (s *Store) OnChange(fn func(n int)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Create registers ex under a fresh ID.
func (s *Store) Create(ex *explorer.Explorer, source string) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Source:    source,
		CreatedAt: time.Now(),
		explorer:  ex,
	}
	s.ops.Add(1)
	s.cache.Add(sess.ID, sess)
	s.ops.Add(-1)
	s.changed()
	return sess
}

// Get returns the session with id and refreshes its TTL.
func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeSessionNotFound, "session %s not found or expired", id)
	}
	s.cache.Add(id, sess)
	return sess, nil
}

// Delete closes and removes the session with id. Unknown IDs are ignored.
func (s *Store) Delete(id string) {
	s.ops.Add(1)
	removed := s.cache.Remove(id)
	s.ops.Add(-1)
	if removed {
		s.changed()
	}
}

// Len returns the number of live sessions.
func (s *Store) Len() int { return s.cache.Len() }

// Close closes every session.
func (s *Store) Close() {
	s.ops.Add(1)
	s.cache.Purge()
	s.ops.Add(-1)
	s.changed()
}

// evicted runs with the LRU lock held and must not call back into the cache.
// Expiry sweeps and evictions outside Create, Delete and Close report the new
// count from a separate goroutine.
func (s *Store) evicted(_ string, sess *Session) {
	sess.close()
	if s.ops.Load() == 0 {
		go s.changed()
	}
}

func (s *Store) changed() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	fn(s.cache.Len())
}
