// Package reservation provides the ReservationService implementation.
package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/entitycache"
)

const kind = "reservation"

// Backend is the remote store contract for reservations.
// Implementations: supabase/ (hosted REST store), fake/ (testing).
type Backend interface {
	// List returns up to limit reservations, newest check-in first.
	List(ctx context.Context, limit int) ([]hostwise.Reservation, error)

	// ListByProperty returns a property's reservations.
	ListByProperty(ctx context.Context, propertyID string) ([]hostwise.Reservation, error)

	// ListByStatus returns reservations with the given status.
	ListByStatus(ctx context.Context, status hostwise.ReservationStatus) ([]hostwise.Reservation, error)

	// ListInRange returns reservations whose stay overlaps [from, to].
	ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.Reservation, error)

	// Get returns one reservation, or ErrNotFound.
	Get(ctx context.Context, id string) (*hostwise.Reservation, error)

	Insert(ctx context.Context, input hostwise.ReservationInput) (*hostwise.Reservation, error)
	Update(ctx context.Context, id string, patch hostwise.ReservationPatch) (*hostwise.Reservation, error)
	Delete(ctx context.Context, id string) error
}

// Service implements hostwise.ReservationService with a configurable backend.
type Service struct {
	backend Backend
	cache   *entitycache.Cache[hostwise.Reservation]
	limit   int
}

// compile-time check
var _ hostwise.ReservationService = (*Service)(nil)

// Option configures the Service.
type Option func(*settings)

type settings struct {
	ttl      time.Duration
	limit    int
	logger   *slog.Logger
	recorder entitycache.Recorder
	clock    func() time.Time
}

// WithCacheTTL sets the cache entry lifetime.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *settings) { s.ttl = ttl }
}

// WithListLimit caps full list fetches.
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

// New creates a reservation service over the given backend.
func New(backend Backend, opts ...Option) *Service {
	cfg := settings{
		ttl:    hostwise.DefaultCacheTTL,
		limit:  hostwise.DefaultReservationListLimit,
		logger: slog.Default(),
		clock:  time.Now,
	}
	for _, o := range opts {
		o(&cfg)
	}

	svc := &Service{backend: backend, limit: cfg.limit}
	cacheOpts := []entitycache.Option[hostwise.Reservation]{
		entitycache.WithLogger[hostwise.Reservation](cfg.logger),
		entitycache.WithClock[hostwise.Reservation](cfg.clock),
	}
	if cfg.recorder != nil {
		cacheOpts = append(cacheOpts, entitycache.WithRecorder[hostwise.Reservation](cfg.recorder))
	}
	svc.cache = entitycache.New(kind, cfg.ttl, func(ctx context.Context) ([]hostwise.Reservation, error) {
		return backend.List(ctx, svc.limit)
	}, cacheOpts...)
	return svc
}

// List returns the cached reservation list, fetching through on a cold or
// stale cache.
func (s *Service) List(ctx context.Context, forceRefresh bool) ([]hostwise.Reservation, error) {
	records, err := s.cache.Get(ctx, forceRefresh)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// GetByID scans the warm cache first; on a cold cache it performs a remote
// point lookup. An absent row maps to (nil, nil).
func (s *Service) GetByID(ctx context.Context, id string) (*hostwise.Reservation, error) {
	if records, ok := s.cache.Peek(); ok {
		for i := range records {
			if records[i].ID == id {
				r := records[i]
				return &r, nil
			}
		}
	}

	r, err := s.backend.Get(ctx, id)
	if errors.Is(err, hostwise.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "get", Kind: kind, Err: err}
	}
	return r, nil
}

// ListByProperty prefers filtering the warm cache; on a cold cache it
// issues a scoped remote query.
func (s *Service) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.Reservation, error) {
	if records, ok := s.cache.Peek(); ok {
		return filter(records, func(r hostwise.Reservation) bool {
			return r.PropertyID == propertyID
		}), nil
	}

	records, err := s.backend.ListByProperty(ctx, propertyID)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// ListByStatus prefers filtering the warm cache; on a cold cache it issues
// a scoped remote query.
func (s *Service) ListByStatus(ctx context.Context, status hostwise.ReservationStatus) ([]hostwise.Reservation, error) {
	if records, ok := s.cache.Peek(); ok {
		return filter(records, func(r hostwise.Reservation) bool {
			return r.Status == status
		}), nil
	}

	records, err := s.backend.ListByStatus(ctx, status)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// ListInRange returns reservations whose stay overlaps the [from, to]
// calendar range, preferring the warm cache.
func (s *Service) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.Reservation, error) {
	if records, ok := s.cache.Peek(); ok {
		return filter(records, func(r hostwise.Reservation) bool {
			return r.Overlaps(from, to)
		}), nil
	}

	records, err := s.backend.ListInRange(ctx, from, to)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "list", Kind: kind, Err: err}
	}
	return records, nil
}

// Create writes remotely first and invalidates the cache on success.
func (s *Service) Create(ctx context.Context, input hostwise.ReservationInput) (*hostwise.Reservation, error) {
	r, err := s.backend.Insert(ctx, input)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "create", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return r, nil
}

// Update writes remotely first and invalidates the cache on success.
func (s *Service) Update(ctx context.Context, id string, patch hostwise.ReservationPatch) (*hostwise.Reservation, error) {
	r, err := s.backend.Update(ctx, id, patch)
	if err != nil {
		return nil, &hostwise.PersistenceError{Op: "update", Kind: kind, Err: err}
	}
	s.cache.Invalidate()
	return r, nil
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

func filter(records []hostwise.Reservation, keep func(hostwise.Reservation) bool) []hostwise.Reservation {
	out := make([]hostwise.Reservation, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
