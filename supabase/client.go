// Package supabase adapts the hostwise interfaces to a hosted
// Supabase-style backend: password auth and token refresh against the auth
// API, row-level-secured entity tables behind the row API, and realtime
// change notifications over websocket.
//
// Usage:
//
//	cfg, err := supabase.ConfigFromEnv()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := supabase.NewClient(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.Auth().Start(ctx)
package supabase

import (
	"context"
	"io"
	"log/slog"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/accesscode"
	"github.com/hostwise/hostwise-go/audit"
	"github.com/hostwise/hostwise-go/authstate"
	"github.com/hostwise/hostwise-go/dateblock"
	"github.com/hostwise/hostwise-go/metrics"
	"github.com/hostwise/hostwise-go/profile"
	"github.com/hostwise/hostwise-go/property"
	"github.com/hostwise/hostwise-go/reservation"
	"github.com/hostwise/hostwise-go/transaction"
)

// ClientOption configures the adapter assembly.
type ClientOption func(*clientConfig)

type clientConfig struct {
	client  hostwise.Config
	logger  *slog.Logger
	metrics bool
	stream  bool
	audit   *audit.Logger
}

// WithClientConfig overrides the cache TTL and list limits.
func WithClientConfig(cfg hostwise.Config) ClientOption {
	return func(c *clientConfig) { c.client = cfg }
}

// WithLogger sets a structured logger shared by all services.
func WithLogger(l *slog.Logger) ClientOption {
	return func(c *clientConfig) { c.logger = l }
}

// WithMetrics enables prometheus metrics registration.
func WithMetrics() ClientOption {
	return func(c *clientConfig) { c.metrics = true }
}

// WithRealtime enables the websocket change stream; out-of-band row
// changes then invalidate the matching entity cache.
func WithRealtime() ClientOption {
	return func(c *clientConfig) { c.stream = true }
}

// WithAudit sets an audit logger for auth events.
func WithAudit(a *audit.Logger) ClientOption {
	return func(c *clientConfig) { c.audit = a }
}

// NewClient assembles a *hostwise.Client with every service backed by the
// hosted APIs.
func NewClient(cfg Config, opts ...ClientOption) (*hostwise.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cc := clientConfig{logger: slog.Default()}
	for _, o := range opts {
		o(&cc)
	}
	if cc.client.CacheTTL == 0 {
		cc.client.CacheTTL = hostwise.DefaultCacheTTL
	}
	if cc.client.PropertyListLimit == 0 {
		cc.client.PropertyListLimit = hostwise.DefaultPropertyListLimit
	}
	if cc.client.ReservationListLimit == 0 {
		cc.client.ReservationListLimit = hostwise.DefaultReservationListLimit
	}
	if cc.client.TransactionListLimit == 0 {
		cc.client.TransactionListLimit = hostwise.DefaultTransactionListLimit
	}

	m := metrics.New(cc.metrics)

	auth := NewAuth(cfg, cc.logger)
	rows := NewRows(cfg, auth.AccessToken, cc.logger)

	resolverOpts := []profile.Option{
		profile.WithLogger(cc.logger),
		profile.WithRecorder(m),
	}
	if cc.audit != nil {
		resolverOpts = append(resolverOpts, profile.WithAudit(cc.audit))
	}
	resolver := profile.New(&profileStore{rows: rows}, resolverOpts...)

	authOpts := []authstate.Option{
		authstate.WithLogger(cc.logger),
		authstate.WithRecorder(m),
	}
	if cc.audit != nil {
		authOpts = append(authOpts, authstate.WithAudit(cc.audit))
	}
	manager := authstate.New(auth, resolver, authOpts...)
	authSvc := &authService{Manager: manager, closers: []io.Closer{auth}}

	properties := property.New(&propertyBackend{rows: rows},
		property.WithCacheTTL(cc.client.CacheTTL),
		property.WithListLimit(cc.client.PropertyListLimit),
		property.WithLogger(cc.logger),
		property.WithRecorder(m),
	)
	reservations := reservation.New(&reservationBackend{rows: rows},
		reservation.WithCacheTTL(cc.client.CacheTTL),
		reservation.WithListLimit(cc.client.ReservationListLimit),
		reservation.WithLogger(cc.logger),
		reservation.WithRecorder(m),
	)
	transactions := transaction.New(&transactionBackend{rows: rows},
		transaction.WithCacheTTL(cc.client.CacheTTL),
		transaction.WithListLimit(cc.client.TransactionListLimit),
		transaction.WithLogger(cc.logger),
		transaction.WithRecorder(m),
	)
	dateBlocks := dateblock.New(&dateBlockBackend{rows: rows},
		dateblock.WithCacheTTL(cc.client.CacheTTL),
		dateblock.WithLogger(cc.logger),
		dateblock.WithRecorder(m),
	)
	accessCodes := accesscode.New(&accessCodeBackend{rows: rows},
		accesscode.WithCacheTTL(cc.client.CacheTTL),
		accesscode.WithLogger(cc.logger),
		accesscode.WithRecorder(m),
	)

	if cc.stream {
		stream := NewStream(cfg, cc.logger)
		stream.OnTableChange(tableProperties, properties.Invalidate)
		stream.OnTableChange(tableReservations, reservations.Invalidate)
		stream.OnTableChange(tableTransactions, transactions.Invalidate)
		stream.OnTableChange(tableDateBlocks, dateBlocks.Invalidate)
		stream.OnTableChange(tableAccessCodes, accessCodes.Invalidate)
		stream.Start(context.Background())
		authSvc.closers = append(authSvc.closers, stream)
	}

	return hostwise.NewClient(cc.client,
		hostwise.WithLogger(cc.logger),
		hostwise.WithAuth(authSvc),
		hostwise.WithProperties(properties),
		hostwise.WithReservations(reservations),
		hostwise.WithTransactions(transactions),
		hostwise.WithDateBlocks(dateBlocks),
		hostwise.WithAccessCodes(accessCodes),
	), nil
}

// authService layers adapter-owned resources (the refresh loop, the
// realtime stream) onto the session manager's shutdown path.
type authService struct {
	*authstate.Manager
	closers []io.Closer
}

func (s *authService) Close() error {
	err := s.Manager.Close()
	for _, c := range s.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
