// Package property provides the PropertyService implementation: a
// time-boxed read-through cache in front of the remote property store,
// invalidated on every local mutation.
package property

import (
	"context"
	"errors"
	"log/slog"
	"time"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/entitycache"
)

const kind = "property"

// Backend is the remote store contract for properties.
// Implementations: supabase/ (hosted REST store), fake/ (testing).
type Backend interface {
	// List returns up to limit properties, newest first.
	List(ctx context.Context, limit int) ([]hostwise.Property, error)

	// ListByStatus returns properties with the given status, newest first.
	ListByStatus(ctx context.Context, status hostwise.PropertyStatus) ([]hostwise.Property, error)

	// Get returns one property, or ErrNotFound.
	Get(ctx context.Context, id string) (*hostwise.Property, error)

	// Insert creates a property; the store assigns id and timestamps.
	Insert(ctx context.Context, input hostwise.PropertyInput) (*hostwise.Property, error)

	// Update applies a patch and returns the updated row, or ErrNotFound.
	Update(ctx context.Context, id string, patch hostwise.PropertyPatch) (*hostwise.Property, error)

	// Delete removes a property, or ErrNotFound.
	Delete(ctx context.Context, id string) error
}

// Service implements hostwise.PropertyService with a configurable backend.
type Service struct {
	backend Backend
	cache   *entitycache.Cache[hostwise.Property]
	limit   int
}

// compile-time check
var _ hostwise.PropertyService = (*Service)(nil)

// Option configures the Service.
type Option func(*settings)

type settings struct {
	ttl      time.Duration
	limit    int
	logger   *slog.Logger
	recorder entitycache.Recorder
	clock    func() time.Time
}

// WithCacheTTL sets the cache entry lifetime. Default: hostwise.DefaultCacheTTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithListLimit caps full list fetches. Default: hostwise.DefaultPropertyListLimit.
func WithListLimit(limit int) Option {
	return func(s *settings) { s.limit = limit }
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

// New creates a property service over the given backend.
func New(backend Backend, opts ...Option) *Service {
	cfg := settings{
		ttl:    hostwise.DefaultCacheTTL,
		limit:  hostwise.DefaultPropertyListLimit,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}

	svc := &Service{backend: backend, limit: cfg.limit}
	cacheOpts := []entitycache.Option[hostwise.Property]{
		entitycache.WithLogger[hostwise.Property](cfg.logger),
		entitycache.WithClock[hostwise.Property](cfg.clock),
	}
	if cfg.recorder != nil {
		cacheOpts = append(cacheOpts, entitycache.WithRecorder[hostwise.Property](cfg.recorder))
	}
	svc.cache = entitycache.New(kind, cfg.ttl, func(ctx context.Context) ([]hostwise.Property, error) {
		return backend.List(ctx, svc.limit)
	}, cacheOpts...)
	return svc
}

// List returns the cached property list, fetching through on a cold or
// stale cache.
func (s *Service) List(ctx context.Context, forceRefresh bool) ([]hostwise.Property, error) {
	records, err := s.cache.Get(ctx, forceRefresh)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// GetByID scans the warm cache first; on a cold cache it performs a remote
// point lookup. An absent row maps to (nil, nil).
func (s *Service) GetByID(ctx context.Context, id string) (*hostwise.Property, error) {
	if records, ok := s.cache.Peek(); ok {
		for i := range records {
			if records[i].ID == id {
				p := records[i]
				return &p, nil
			}
		}
	}

	p, err := s.backend.Get(ctx, id)
	if errors.Is(err, hostwise.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "get", Kind: kind, Err: err}
	}
	return p, nil
}

// ListByStatus filters the warm cache in-process; on a cold cache it issues
// a scoped remote query instead of backfilling the full list.
func (s *Service) ListByStatus(ctx context.Context, status hostwise.PropertyStatus) ([]hostwise.Property, error) {
	if records, ok := s.cache.Peek(); ok {
		filtered := make([]hostwise.Property, 0, len(records))
		for _, p := range records {
			if p.Status == status {
				filtered = append(filtered, p)
			}
		}
		return filtered, nil
	}

	records, err := s.backend.ListByStatus(ctx, status)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// Create writes remotely first and invalidates the cache on success.
func (s *Service) Create(ctx context.Context, input hostwise.PropertyInput) (*hostwise.Property, error) {
	p, err := s.backend.Insert(ctx, input)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "create", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return p, nil
}

// Update writes remotely first and invalidates the cache on success.
func (s *Service) Update(ctx context.Context, id string, patch hostwise.PropertyPatch) (*hostwise.Property, error) {
	p, err := s.backend.Update(ctx, id, patch)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "update", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return p, nil
}

// Delete removes remotely first and invalidates the cache on success.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.backend.Delete(ctx, id); err != nil {
		return &hostwise.PersistenceError{Op: "delete", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return nil
}

// Invalidate clears the cache. Callable by collaborators that changed
// underlying data out-of-band.
func (s *Service) Invalidate() {
	s.cache.Invalidate()
}
