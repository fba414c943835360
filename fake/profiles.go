package fake

import (
	"context"
	"sync"
	"time"

	hostwise "github.com/hostwise/hostwise-go"
)

// ProfileStore is an in-memory hostwise.ProfileStore with per-method call
// counters and injectable errors.
type ProfileStore struct {
	mu          sync.Mutex
	profiles    map[string]hostwise.Profile
	getErr      error
	insertErr   error
	getCalls    int
	insertCalls int
}

var _ hostwise.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates an in-memory profile store seeded with the given
// rows.
func NewProfileStore(seed ...hostwise.Profile) *ProfileStore {
	s := &ProfileStore{profiles: make(map[string]hostwise.Profile)}
	for _, p := range seed {
		s.profiles[p.ID] = p
	}
	return s
}

// Get returns the profile keyed by subject id, or ErrNotFound.
func (s *ProfileStore) Get(ctx context.Context, id string) (*hostwise.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++
	if s.getErr != nil {
		return nil, s.getErr
	}
	p, ok := s.profiles[id]
	if !ok {
		return nil, hostwise.ErrNotFound
	}
	return &p, nil
}

// Insert stores the profile, stamping CreatedAt/UpdatedAt.
func (s *ProfileStore) Insert(ctx context.Context, p hostwise.Profile) (*hostwise.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insertCalls++
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	s.profiles[p.ID] = p
	return &p, nil
}

// SetGetError forces Get to fail with err. Pass nil to clear.
func (s *ProfileStore) SetGetError(err error) {
	s.mu.Lock()
	s.getErr = err
	s.mu.Unlock()
}

// SetInsertError forces Insert to fail with err. Pass nil to clear.
func (s *ProfileStore) SetInsertError(err error) {
	s.mu.Lock()
	s.insertErr = err
	s.mu.Unlock()
}

// GetCalls returns how many times Get was called.
func (s *ProfileStore) GetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

// InsertCalls returns how many times Insert was called.
func (s *ProfileStore) InsertCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertCalls
}
