// Package fake provides in-memory implementations of the hostwise backend
// interfaces for testing.
//
// Use fake.NewClient() in unit tests to avoid network calls and external
// dependencies; the individual fakes (Provider, ProfileStore, entity
// stores) can also be wired into the real services directly.
package fake

import (
	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/accesscode"
	"github.com/hostwise/hostwise-go/authstate"
	"github.com/hostwise/hostwise-go/dateblock"
	"github.com/hostwise/hostwise-go/profile"
	"github.com/hostwise/hostwise-go/property"
	"github.com/hostwise/hostwise-go/reservation"
	"github.com/hostwise/hostwise-go/transaction"
)

// NewClient creates a *hostwise.Client with every service wired to
// in-memory fakes, configured through the given provider options.
func NewClient(opts ...ProviderOption) *hostwise.Client {
	provider := NewProvider(opts...)
	resolver := profile.New(NewProfileStore())

	return hostwise.NewClient(hostwise.Config{},
		hostwise.WithAuth(authstate.New(provider, resolver)),
		hostwise.WithProperties(property.New(NewPropertyStore())),
		hostwise.WithReservations(reservation.New(NewReservationStore())),
		hostwise.WithTransactions(transaction.New(NewTransactionStore())),
		hostwise.WithDateBlocks(dateblock.New(NewDateBlockStore())),
		hostwise.WithAccessCodes(accesscode.New(NewAccessCodeStore())),
	)
}
