package hostwise

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{})

	cfg := c.Config()
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.PropertyListLimit)
	assert.Equal(t, 200, cfg.ReservationListLimit)
	assert.Equal(t, 500, cfg.TransactionListLimit)
}

func TestNewClient_ConfigOverrides(t *testing.T) {
	c := NewClient(Config{
		CacheTTL:          5 * time.Second,
		PropertyListLimit: 10,
	})

	cfg := c.Config()
	assert.Equal(t, 5*time.Second, cfg.CacheTTL)
	assert.Equal(t, 10, cfg.PropertyListLimit)
	// untouched fields still default
	assert.Equal(t, 200, cfg.ReservationListLimit)
}

func TestClient_NilServices(t *testing.T) {
	c := NewClient(Config{})

	assert.Nil(t, c.Auth())
	assert.Nil(t, c.Properties())
	assert.Nil(t, c.Reservations())
	assert.Nil(t, c.Transactions())
	assert.Nil(t, c.DateBlocks())
	assert.Nil(t, c.AccessCodes())

	// both must tolerate unconfigured services
	c.InvalidateAll()
	assert.NoError(t, c.Close())
}

type stubPropertyService struct {
	PropertyService
	invalidated int
}

func (s *stubPropertyService) Invalidate() { s.invalidated++ }

func TestClient_InvalidateAll(t *testing.T) {
	props := &stubPropertyService{}
	c := NewClient(Config{}, WithProperties(props))

	c.InvalidateAll()
	c.InvalidateAll()

	assert.Equal(t, 2, props.invalidated)
}

type closingAuthService struct {
	AuthService
	closed bool
}

func (s *closingAuthService) Close() error {
	s.closed = true
	return nil
}

func (s *closingAuthService) Start(context.Context) {}

func TestClient_CloseClosesServices(t *testing.T) {
	auth := &closingAuthService{}
	c := NewClient(Config{}, WithAuth(auth))

	assert.NoError(t, c.Close())
	assert.True(t, auth.closed)
}
