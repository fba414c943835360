// Package hostwise provides a Go SDK for property-rental management
// dashboards backed by a hosted auth/database service.
//
// The SDK defines interfaces for the remote session provider and the
// row-level-secured entity stores; concrete implementations are injected via
// Option functions, making the SDK independent of any specific backend.
//
// Example usage with the hosted backend adapter:
//
//	cfg, _ := supabase.ConfigFromEnv()
//	client, err := supabase.NewClient(cfg)
//	if err != nil { ... }
//	defer client.Close()
//
//	client.Auth().Start(ctx)
//	properties, err := client.Properties().List(ctx, false)
package hostwise

import (
	"io"
	"log/slog"
	"time"
)

// DefaultCacheTTL is the default maximum age of a cached entity list.
const DefaultCacheTTL = 30 * time.Second

// Default remote fetch caps for full-list reads, per entity kind.
const (
	DefaultPropertyListLimit    = 100
	DefaultReservationListLimit = 200
	DefaultTransactionListLimit = 500
)

// Config holds behavior configuration shared across services.
type Config struct {
	// CacheTTL controls how long cached entity lists stay fresh.
	// Default: 30 seconds.
	CacheTTL time.Duration

	// PropertyListLimit caps full property list fetches. Default: 100.
	PropertyListLimit int

	// ReservationListLimit caps full reservation list fetches. Default: 200.
	ReservationListLimit int

	// TransactionListLimit caps full transaction list fetches. Default: 500.
	TransactionListLimit int
}

// Client is the main entry point for dashboard operations.
// Service implementations are injected via Option functions.
type Client struct {
	config       Config
	logger       *slog.Logger
	auth         AuthService
	properties   PropertyService
	reservations ReservationService
	transactions TransactionService
	dateBlocks   DateBlockService
	accessCodes  AccessCodeService
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithAuth sets the auth service implementation.
func WithAuth(a AuthService) Option {
	return func(c *Client) { c.auth = a }
}

// WithProperties sets the property service implementation.
func WithProperties(s PropertyService) Option {
	return func(c *Client) { c.properties = s }
}

// WithReservations sets the reservation service implementation.
func WithReservations(s ReservationService) Option {
	return func(c *Client) { c.reservations = s }
}

// WithTransactions sets the transaction service implementation.
func WithTransactions(s TransactionService) Option {
	return func(c *Client) { c.transactions = s }
}

// WithDateBlocks sets the date-block service implementation.
func WithDateBlocks(s DateBlockService) Option {
	return func(c *Client) { c.dateBlocks = s }
}

// WithAccessCodes sets the access-code service implementation.
func WithAccessCodes(s AccessCodeService) Option {
	return func(c *Client) { c.accessCodes = s }
}

// NewClient creates a new client with the given configuration and options.
func NewClient(cfg Config, opts ...Option) *Client {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = DefaultCacheTTL
	}
	if cfg.PropertyListLimit == 0 {
		cfg.PropertyListLimit = DefaultPropertyListLimit
	}
	if cfg.ReservationListLimit == 0 {
		cfg.ReservationListLimit = DefaultReservationListLimit
	}
	if cfg.TransactionListLimit == 0 {
		cfg.TransactionListLimit = DefaultTransactionListLimit
	}

	c := &Client{config: cfg, logger: slog.Default()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() Config { return c.config }

// Auth returns the auth service, or nil if not configured.
func (c *Client) Auth() AuthService { return c.auth }

// Properties returns the property service, or nil if not configured.
func (c *Client) Properties() PropertyService { return c.properties }

// Reservations returns the reservation service, or nil if not configured.
func (c *Client) Reservations() ReservationService { return c.reservations }

// Transactions returns the transaction service, or nil if not configured.
func (c *Client) Transactions() TransactionService { return c.transactions }

// DateBlocks returns the date-block service, or nil if not configured.
func (c *Client) DateBlocks() DateBlockService { return c.dateBlocks }

// AccessCodes returns the access-code service, or nil if not configured.
func (c *Client) AccessCodes() AccessCodeService { return c.accessCodes }

// InvalidateAll clears every entity cache. Useful when an external
// collaborator changed underlying data out-of-band.
func (c *Client) InvalidateAll() {
	if c.properties != nil {
		c.properties.Invalidate()
	}
	if c.reservations != nil {
		c.reservations.Invalidate()
	}
	if c.transactions != nil {
		c.transactions.Invalidate()
	}
	if c.dateBlocks != nil {
		c.dateBlocks.Invalidate()
	}
	if c.accessCodes != nil {
		c.accessCodes.Invalidate()
	}
}

// Close releases all resources held by the client.
// Any injected service that implements io.Closer will be closed.
func (c *Client) Close() error {
	closers := []interface{}{
		c.auth, c.properties, c.reservations,
		c.transactions, c.dateBlocks, c.accessCodes,
	}
	var firstErr error
	for _, svc := range closers {
		if cl, ok := svc.(io.Closer); ok && cl != nil {
			if err := cl.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
