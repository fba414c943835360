// Package accesscode provides the AccessCodeService implementation.
package accesscode

import (
	"context"
	"errors"
	"log/slog"
	"time"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/entitycache"
)

const kind = "access_code"

// Backend is the remote store contract for door codes.
// Implementations: supabase/ (hosted REST store), fake/ (testing).
type Backend interface {
	List(ctx context.Context) ([]hostwise.AccessCode, error)
	ListByProperty(ctx context.Context, propertyID string) ([]hostwise.AccessCode, error)
	ListValidOn(ctx context.Context, day hostwise.Date) ([]hostwise.AccessCode, error)
	Get(ctx context.Context, id string) (*hostwise.AccessCode, error)
	Insert(ctx context.Context, input hostwise.AccessCodeInput) (*hostwise.AccessCode, error)
	Update(ctx context.Context, id string, patch hostwise.AccessCodePatch) (*hostwise.AccessCode, error)
	Delete(ctx context.Context, id string) error
}

// Service implements hostwise.AccessCodeService with a configurable backend.
type Service struct {
	backend Backend
	cache   *entitycache.Cache[hostwise.AccessCode]
}

// compile-time check
var _ hostwise.AccessCodeService = (*Service)(nil)

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

// New creates an access-code service over the given backend.
func New(backend Backend, opts ...Option) *Service {
	cfg := settings{
		ttl:    hostwise.DefaultCacheTTL,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}

	cacheOpts := []entitycache.Option[hostwise.AccessCode]{
		entitycache.WithLogger[hostwise.AccessCode](cfg.logger),
		entitycache.WithClock[hostwise.AccessCode](cfg.clock),
	}
	if cfg.recorder != nil {
		cacheOpts = append(cacheOpts, entitycache.WithRecorder[hostwise.AccessCode](cfg.recorder))
	}
	return &Service{
		backend: backend,
		cache: entitycache.New(kind, cfg.ttl, func(ctx context.Context) ([]hostwise.AccessCode, error) {
			return backend.List(ctx)
		}, cacheOpts...),
	}
}

// List returns the cached code list, fetching through on a cold or stale
// cache.
func (s *Service) List(ctx context.Context, forceRefresh bool) ([]hostwise.AccessCode, error) {
	records, err := s.cache.Get(ctx, forceRefresh)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// GetByID scans the warm cache first; on a cold cache it performs a remote
// point lookup. An absent row maps to (nil, nil).
func (s *Service) GetByID(ctx context.Context, id string) (*hostwise.AccessCode, error) {
	if records, ok := s.cache.Peek(); ok {
		for i := range records {
			if records[i].ID == id {
				c := records[i]
				return &c, nil
			}
		}
	}

	c, err := s.backend.Get(ctx, id)
	if errors.Is(err, hostwise.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "get", Kind: kind, Err: err}
	}
	return c, nil
}

// ListByProperty prefers filtering the warm cache; on a cold cache it
// issues a scoped remote query.
func (s *Service) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.AccessCode, error) {
	if records, ok := s.cache.Peek(); ok {
		out := make([]hostwise.AccessCode, 0, len(records))
		for _, c := range records {
			if c.PropertyID == propertyID {
				out = append(out, c)
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

// ListValidOn returns codes usable on the given calendar day, preferring
// the warm cache.
func (s *Service) ListValidOn(ctx context.Context, day hostwise.Date) ([]hostwise.AccessCode, error) {
	if records, ok := s.cache.Peek(); ok {
		out := make([]hostwise.AccessCode, 0, len(records))
		for _, c := range records {
			if c.ValidOn(day) {
				out = append(out, c)
			}
		}
		return out, nil
	}

	records, err := s.backend.ListValidOn(ctx, day)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// Create writes remotely first and invalidates the cache on success.
func (s *Service) Create(ctx context.Context, input hostwise.AccessCodeInput) (*hostwise.AccessCode, error) {
	c, err := s.backend.Insert(ctx, input)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "create", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return c, nil
}

// Update patches remotely first and invalidates the cache on success.
func (s *Service) Update(ctx context.Context, id string, patch hostwise.AccessCodePatch) (*hostwise.AccessCode, error) {
	c, err := s.backend.Update(ctx, id, patch)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "update", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return c, nil
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
