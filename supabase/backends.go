package supabase

import (
	"context"

	hostwise "github.com/hostwise/hostwise-go"
)

// Table names in the hosted database.
const (
	tableProfiles     = "profiles"
	tableProperties   = "properties"
	tableReservations = "reservations"
	tableTransactions = "transactions"
	tableDateBlocks   = "date_blocks"
	tableAccessCodes  = "access_codes"
)

// profileStore implements hostwise.ProfileStore over the row API.
type profileStore struct {
	rows *Rows
}

var _ hostwise.ProfileStore = (*profileStore)(nil)

func (s *profileStore) Get(ctx context.Context, id string) (*hostwise.Profile, error) {
	raw, err := s.rows.SelectOne(ctx, tableProfiles, Query{Filters: []Filter{Eq("id", id)}})
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

func (s *profileStore) Insert(ctx context.Context, p hostwise.Profile) (*hostwise.Profile, error) {
	raw, err := s.rows.Insert(ctx, tableProfiles, profilePayload(p))
	if err != nil {
		return nil, err
	}
	return decodeProfile(raw)
}

// propertyBackend implements property.Backend over the row API.
type propertyBackend struct {
	rows *Rows
}

func (b *propertyBackend) List(ctx context.Context, limit int) ([]hostwise.Property, error) {
	raw, err := b.rows.Select(ctx, tableProperties, Query{Order: "created_at", Desc: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return decodeProperties(raw)
}

func (b *propertyBackend) ListByStatus(ctx context.Context, status hostwise.PropertyStatus) ([]hostwise.Property, error) {
	raw, err := b.rows.Select(ctx, tableProperties, Query{
		Filters: []Filter{Eq("status", string(status))},
		Order:   "created_at", Desc: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeProperties(raw)
}

func (b *propertyBackend) Get(ctx context.Context, id string) (*hostwise.Property, error) {
	raw, err := b.rows.SelectOne(ctx, tableProperties, Query{Filters: []Filter{Eq("id", id)}})
	if err != nil {
		return nil, err
	}
	return decodeProperty(raw)
}

func (b *propertyBackend) Insert(ctx context.Context, input hostwise.PropertyInput) (*hostwise.Property, error) {
	raw, err := b.rows.Insert(ctx, tableProperties, propertyInsertPayload(input))
	if err != nil {
		return nil, err
	}
	return decodeProperty(raw)
}

func (b *propertyBackend) Update(ctx context.Context, id string, patch hostwise.PropertyPatch) (*hostwise.Property, error) {
	raw, err := b.rows.Update(ctx, tableProperties, Query{Filters: []Filter{Eq("id", id)}}, propertyPatchPayload(patch))
	if err != nil {
		return nil, err
	}
	return decodeProperty(raw)
}

func (b *propertyBackend) Delete(ctx context.Context, id string) error {
	return b.rows.Delete(ctx, tableProperties, Query{Filters: []Filter{Eq("id", id)}})
}

// reservationBackend implements reservation.Backend over the row API.
type reservationBackend struct {
	rows *Rows
}

func (b *reservationBackend) List(ctx context.Context, limit int) ([]hostwise.Reservation, error) {
	raw, err := b.rows.Select(ctx, tableReservations, Query{Order: "check_in", Desc: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return decodeReservations(raw)
}

func (b *reservationBackend) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.Reservation, error) {
	raw, err := b.rows.Select(ctx, tableReservations, Query{
		Filters: []Filter{Eq("property_id", propertyID)},
		Order:   "check_in", Desc: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeReservations(raw)
}

func (b *reservationBackend) ListByStatus(ctx context.Context, status hostwise.ReservationStatus) ([]hostwise.Reservation, error) {
	raw, err := b.rows.Select(ctx, tableReservations, Query{
		Filters: []Filter{Eq("status", string(status))},
		Order:   "check_in", Desc: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeReservations(raw)
}

func (b *reservationBackend) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.Reservation, error) {
	// A stay overlaps [from, to] when it starts before the range ends and
	// ends after the range starts.
	raw, err := b.rows.Select(ctx, tableReservations, Query{
		Filters: []Filter{
			Lte("check_in", to.String()),
			Gte("check_out", from.String()),
		},
		Order: "check_in",
	})
	if err != nil {
		return nil, err
	}
	return decodeReservations(raw)
}

func (b *reservationBackend) Get(ctx context.Context, id string) (*hostwise.Reservation, error) {
	raw, err := b.rows.SelectOne(ctx, tableReservations, Query{Filters: []Filter{Eq("id", id)}})
	if err != nil {
		return nil, err
	}
	return decodeReservation(raw)
}

func (b *reservationBackend) Insert(ctx context.Context, input hostwise.ReservationInput) (*hostwise.Reservation, error) {
	raw, err := b.rows.Insert(ctx, tableReservations, reservationInsertPayload(input))
	if err != nil {
		return nil, err
	}
	return decodeReservation(raw)
}

func (b *reservationBackend) Update(ctx context.Context, id string, patch hostwise.ReservationPatch) (*hostwise.Reservation, error) {
	raw, err := b.rows.Update(ctx, tableReservations, Query{Filters: []Filter{Eq("id", id)}}, reservationPatchPayload(patch))
	if err != nil {
		return nil, err
	}
	return decodeReservation(raw)
}

func (b *reservationBackend) Delete(ctx context.Context, id string) error {
	return b.rows.Delete(ctx, tableReservations, Query{Filters: []Filter{Eq("id", id)}})
}

// transactionBackend implements transaction.Backend over the row API.
type transactionBackend struct {
	rows *Rows
}

func (b *transactionBackend) List(ctx context.Context, limit int) ([]hostwise.Transaction, error) {
	raw, err := b.rows.Select(ctx, tableTransactions, Query{Order: "transaction_date", Desc: true, Limit: limit})
	if err != nil {
		return nil, err
	}
	return decodeTransactions(raw)
}

func (b *transactionBackend) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.Transaction, error) {
	raw, err := b.rows.Select(ctx, tableTransactions, Query{
		Filters: []Filter{Eq("property_id", propertyID)},
		Order:   "transaction_date", Desc: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeTransactions(raw)
}

func (b *transactionBackend) ListByType(ctx context.Context, typ hostwise.TransactionType) ([]hostwise.Transaction, error) {
	raw, err := b.rows.Select(ctx, tableTransactions, Query{
		Filters: []Filter{Eq("transaction_type", string(typ))},
		Order:   "transaction_date", Desc: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeTransactions(raw)
}

func (b *transactionBackend) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.Transaction, error) {
	raw, err := b.rows.Select(ctx, tableTransactions, Query{
		Filters: []Filter{
			Gte("transaction_date", from.String()),
			Lte("transaction_date", to.String()),
		},
		Order: "transaction_date",
	})
	if err != nil {
		return nil, err
	}
	return decodeTransactions(raw)
}

func (b *transactionBackend) Get(ctx context.Context, id string) (*hostwise.Transaction, error) {
	raw, err := b.rows.SelectOne(ctx, tableTransactions, Query{Filters: []Filter{Eq("id", id)}})
	if err != nil {
		return nil, err
	}
	return decodeTransaction(raw)
}

func (b *transactionBackend) Insert(ctx context.Context, input hostwise.TransactionInput) (*hostwise.Transaction, error) {
	raw, err := b.rows.Insert(ctx, tableTransactions, transactionInsertPayload(input))
	if err != nil {
		return nil, err
	}
	return decodeTransaction(raw)
}

func (b *transactionBackend) Update(ctx context.Context, id string, patch hostwise.TransactionPatch) (*hostwise.Transaction, error) {
	raw, err := b.rows.Update(ctx, tableTransactions, Query{Filters: []Filter{Eq("id", id)}}, transactionPatchPayload(patch))
	if err != nil {
		return nil, err
	}
	return decodeTransaction(raw)
}

func (b *transactionBackend) Delete(ctx context.Context, id string) error {
	return b.rows.Delete(ctx, tableTransactions, Query{Filters: []Filter{Eq("id", id)}})
}

// dateBlockBackend implements dateblock.Backend over the row API.
type dateBlockBackend struct {
	rows *Rows
}

func (b *dateBlockBackend) List(ctx context.Context) ([]hostwise.DateBlock, error) {
	raw, err := b.rows.Select(ctx, tableDateBlocks, Query{Order: "start_date"})
	if err != nil {
		return nil, err
	}
	return decodeDateBlocks(raw)
}

func (b *dateBlockBackend) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.DateBlock, error) {
	raw, err := b.rows.Select(ctx, tableDateBlocks, Query{
		Filters: []Filter{Eq("property_id", propertyID)},
		Order:   "start_date",
	})
	if err != nil {
		return nil, err
	}
	return decodeDateBlocks(raw)
}

func (b *dateBlockBackend) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.DateBlock, error) {
	raw, err := b.rows.Select(ctx, tableDateBlocks, Query{
		Filters: []Filter{
			Lte("start_date", to.String()),
			Gte("end_date", from.String()),
		},
		Order: "start_date",
	})
	if err != nil {
		return nil, err
	}
	return decodeDateBlocks(raw)
}

func (b *dateBlockBackend) Get(ctx context.Context, id string) (*hostwise.DateBlock, error) {
	raw, err := b.rows.SelectOne(ctx, tableDateBlocks, Query{Filters: []Filter{Eq("id", id)}})
	if err != nil {
		return nil, err
	}
	return decodeDateBlock(raw)
}

func (b *dateBlockBackend) Insert(ctx context.Context, input hostwise.DateBlockInput) (*hostwise.DateBlock, error) {
	raw, err := b.rows.Insert(ctx, tableDateBlocks, dateBlockInsertPayload(input))
	if err != nil {
		return nil, err
	}
	return decodeDateBlock(raw)
}

func (b *dateBlockBackend) Delete(ctx context.Context, id string) error {
	return b.rows.Delete(ctx, tableDateBlocks, Query{Filters: []Filter{Eq("id", id)}})
}

// accessCodeBackend implements accesscode.Backend over the row API.
type accessCodeBackend struct {
	rows *Rows
}

func (b *accessCodeBackend) List(ctx context.Context) ([]hostwise.AccessCode, error) {
	raw, err := b.rows.Select(ctx, tableAccessCodes, Query{Order: "created_at", Desc: true})
	if err != nil {
		return nil, err
	}
	return decodeAccessCodes(raw)
}

func (b *accessCodeBackend) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.AccessCode, error) {
	raw, err := b.rows.Select(ctx, tableAccessCodes, Query{
		Filters: []Filter{Eq("property_id", propertyID)},
		Order:   "created_at", Desc: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeAccessCodes(raw)
}

func (b *accessCodeBackend) ListValidOn(ctx context.Context, day hostwise.Date) ([]hostwise.AccessCode, error) {
	raw, err := b.rows.Select(ctx, tableAccessCodes, Query{
		Filters: []Filter{
			Eq("active", "true"),
			Lte("valid_from", day.String()),
			Gte("valid_until", day.String()),
		},
		Order: "created_at", Desc: true,
	})
	if err != nil {
		return nil, err
	}
	return decodeAccessCodes(raw)
}

func (b *accessCodeBackend) Get(ctx context.Context, id string) (*hostwise.AccessCode, error) {
	raw, err := b.rows.SelectOne(ctx, tableAccessCodes, Query{Filters: []Filter{Eq("id", id)}})
	if err != nil {
		return nil, err
	}
	return decodeAccessCode(raw)
}

func (b *accessCodeBackend) Insert(ctx context.Context, input hostwise.AccessCodeInput) (*hostwise.AccessCode, error) {
	raw, err := b.rows.Insert(ctx, tableAccessCodes, accessCodeInsertPayload(input))
	if err != nil {
		return nil, err
	}
	return decodeAccessCode(raw)
}

func (b *accessCodeBackend) Update(ctx context.Context, id string, patch hostwise.AccessCodePatch) (*hostwise.AccessCode, error) {
	raw, err := b.rows.Update(ctx, tableAccessCodes, Query{Filters: []Filter{Eq("id", id)}}, accessCodePatchPayload(patch))
	if err != nil {
		return nil, err
	}
	return decodeAccessCode(raw)
}

func (b *accessCodeBackend) Delete(ctx context.Context, id string) error {
	return b.rows.Delete(ctx, tableAccessCodes, Query{Filters: []Filter{Eq("id", id)}})
}
