// Package dateblock provides the DateBlockService implementation.
package dateblock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/entitycache"
)

const kind = "date_block"

// Backend is the remote store contract for date blocks.
// Implementations: supabase/ (hosted REST store), fake/ (testing).
type Backend interface {
	List(ctx context.Context) ([]hostwise.DateBlock, error)
	ListByProperty(ctx context.Context, propertyID string) ([]hostwise.DateBlock, error)
	ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.DateBlock, error)
	Get(ctx context.Context, id string) (*hostwise.DateBlock, error)
	Insert(ctx context.Context, input hostwise.DateBlockInput) (*hostwise.DateBlock, error)
	Delete(ctx context.Context, id string) error
}

// Service implements hostwise.DateBlockService with a configurable backend.
type Service struct {
	backend Backend
	cache   *entitycache.Cache[hostwise.DateBlock]
}

// compile-time check
var _ hostwise.DateBlockService = (*Service)(nil)

// Option configures the Service.
type Option func(*settings)

type settings struct {
	ttl      time.Duration
	logger   *slog.Logger
	recorder entitycache.Recorder
	clock    func() time.Time
}

// WithCacheTTL sets the cache entry lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithRecorder sets the cache observability recorder.
func WithRecorder(r entitycache.Recorder) Option {
	return func(s *settings) { s.recorder = r }
}

// WithClock overrides the cache time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.clock = now }
}

// New creates a date-block service over the given backend.
func New(backend Backend, opts ...Option) *Service {
	cfg := settings{
		ttl:    hostwise.DefaultCacheTTL,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}

	cacheOpts := []entitycache.Option[hostwise.DateBlock]{
		entitycache.WithLogger[hostwise.DateBlock](cfg.logger),
		entitycache.WithClock[hostwise.DateBlock](cfg.clock),
	}
	if cfg.recorder != nil {
		cacheOpts = append(cacheOpts, entitycache.WithRecorder[hostwise.DateBlock](cfg.recorder))
	}
	return &Service{
		backend: backend,
		cache: entitycache.New(kind, cfg.ttl, func(ctx context.Context) ([]hostwise.DateBlock, error) {
			return backend.List(ctx)
		}, cacheOpts...),
	}
}

// List returns the cached block list, fetching through on a cold or stale
// cache.
func (s *Service) List(ctx context.Context, forceRefresh bool) ([]hostwise.DateBlock, error) {
	records, err := s.cache.Get(ctx, forceRefresh)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// GetByID scans the warm cache first; on a cold cache it performs a remote
// point lookup. An absent row maps to (nil, nil).
func (s *Service) GetByID(ctx context.Context, id string) (*hostwise.DateBlock, error) {
	if records, ok := s.cache.Peek(); ok {
		for i := range records {
			if records[i].ID == id {
				b := records[i]
				return &b, nil
			}
		}
	}

	b, err := s.backend.Get(ctx, id)
	if errors.Is(err, hostwise.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "get", Kind: kind, Err: err}
	}
	return b, nil
}

// ListByProperty prefers filtering the warm cache; on a cold cache it
// issues a scoped remote query.
func (s *Service) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.DateBlock, error) {
	if records, ok := s.cache.Peek(); ok {
		out := make([]hostwise.DateBlock, 0, len(records))
		for _, b := range records {
			if b.PropertyID == propertyID {
				out = append(out, b)
			}
		}
		return out, nil
	}

	records, err := s.backend.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// ListInRange returns blocks overlapping [from, to], preferring the warm
// cache.
func (s *Service) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.DateBlock, error) {
	if records, ok := s.cache.Peek(); ok {
		out := make([]hostwise.DateBlock, 0, len(records))
		for _, b := range records {
			if !b.EndDate.Before(from) && !b.StartDate.After(to) {
				out = append(out, b)
			}
		}
		return out, nil
	}

	records, err := s.backend.ListInRange(ctx, from, to)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// Create writes remotely first and invalidates the cache on success.
func (s *Service) Create(ctx context.Context, input hostwise.DateBlockInput) (*hostwise.DateBlock, error) {
	b, err := s.backend.Insert(ctx, input)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "create", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return b, nil
}

// Delete removes remotely first and invalidates the cache on success.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return &hostwise.PersistenceError{Op: "delete", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return nil
}

// Invalidate clears the cache.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
}
