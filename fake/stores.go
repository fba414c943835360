package fake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	hostwise "github.com/hostwise/hostwise-go"
)

// --- properties ---

// PropertyStore is an in-memory property backend with a list-call counter
// and an injectable error.
type PropertyStore struct {
	mu        sync.Mutex
	rows      []hostwise.Property
	err       error
	listCalls int
}

// NewPropertyStore creates an in-memory property store seeded with rows.
func NewPropertyStore(seed ...hostwise.Property) *PropertyStore {
	return &PropertyStore{rows: append([]hostwise.Property(nil), seed...)}
}

// SetError forces every operation to fail with err. Pass nil to clear.
func (s *PropertyStore) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// ListCalls returns how many times List was called.
func (s *PropertyStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *PropertyStore) List(ctx context.Context, limit int) ([]hostwise.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := append([]hostwise.Property(nil), s.rows...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *PropertyStore) ListByStatus(ctx context.Context, status hostwise.PropertyStatus) ([]hostwise.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]hostwise.Property, 0, len(s.rows))
	for _, p := range s.rows {
		if p.Status == status {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PropertyStore) Get(ctx context.Context, id string) (*hostwise.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			p := s.rows[i]
			return &p, nil
		}
	}
	return nil, hostwise.ErrNotFound
}

func (s *PropertyStore) Insert(ctx context.Context, input hostwise.PropertyInput) (*hostwise.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	now := time.Now()
	p := hostwise.Property{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Address:     input.Address,
		Type:        input.Type,
		Status:      input.Status,
		Bedrooms:    input.Bedrooms,
		Bathrooms:   input.Bathrooms,
		NightlyRate: input.NightlyRate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.rows = append(s.rows, p)
	return &p, nil
}

func (s *PropertyStore) Update(ctx context.Context, id string, patch hostwise.PropertyPatch) (*hostwise.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		p := &s.rows[i]
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Address != nil {
			p.Address = *patch.Address
		}
		if patch.Type != nil {
			p.Type = *patch.Type
		}
		if patch.Status != nil {
			p.Status = *patch.Status
		}
		if patch.Bedrooms != nil {
			p.Bedrooms = *patch.Bedrooms
		}
		if patch.Bathrooms != nil {
			p.Bathrooms = *patch.Bathrooms
		}
		if patch.NightlyRate != nil {
			p.NightlyRate = *patch.NightlyRate
		}
		p.UpdatedAt = time.Now()
		out := *p
		return &out, nil
	}
	return nil, hostwise.ErrNotFound
}

func (s *PropertyStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return hostwise.ErrNotFound
}

// --- reservations ---

// ReservationStore is an in-memory reservation backend.
type ReservationStore struct {
	mu        sync.Mutex
	rows      []hostwise.Reservation
	err       error
	listCalls int
}

// NewReservationStore creates an in-memory reservation store seeded with rows.
func NewReservationStore(seed ...hostwise.Reservation) *ReservationStore {
	return &ReservationStore{rows: append([]hostwise.Reservation(nil), seed...)}
}

// SetError forces every operation to fail with err. Pass nil to clear.
func (s *ReservationStore) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// ListCalls returns how many times List was called.
func (s *ReservationStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *ReservationStore) List(ctx context.Context, limit int) ([]hostwise.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := append([]hostwise.Reservation(nil), s.rows...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *ReservationStore) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.Reservation, error) {
	return s.listWhere(func(r hostwise.Reservation) bool { return r.PropertyID == propertyID })
}

func (s *ReservationStore) ListByStatus(ctx context.Context, status hostwise.ReservationStatus) ([]hostwise.Reservation, error) {
	return s.listWhere(func(r hostwise.Reservation) bool { return r.Status == status })
}

func (s *ReservationStore) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.Reservation, error) {
	return s.listWhere(func(r hostwise.Reservation) bool { return r.Overlaps(from, to) })
}

func (s *ReservationStore) listWhere(keep func(hostwise.Reservation) bool) ([]hostwise.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]hostwise.Reservation, 0, len(s.rows))
	for _, r := range s.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *ReservationStore) Get(ctx context.Context, id string) (*hostwise.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			r := s.rows[i]
			return &r, nil
		}
	}
	return nil, hostwise.ErrNotFound
}

func (s *ReservationStore) Insert(ctx context.Context, input hostwise.ReservationInput) (*hostwise.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	now := time.Now()
	r := hostwise.Reservation{
		ID:          uuid.NewString(),
		PropertyID:  input.PropertyID,
		GuestName:   input.GuestName,
		GuestEmail:  input.GuestEmail,
		CheckIn:     input.CheckIn,
		CheckOut:    input.CheckOut,
		Status:      input.Status,
		Source:      input.Source,
		TotalAmount: input.TotalAmount,
		Notes:       input.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.rows = append(s.rows, r)
	return &r, nil
}

func (s *ReservationStore) Update(ctx context.Context, id string, patch hostwise.ReservationPatch) (*hostwise.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		r := &s.rows[i]
		if patch.GuestName != nil {
			r.GuestName = *patch.GuestName
		}
		if patch.GuestEmail != nil {
			r.GuestEmail = *patch.GuestEmail
		}
		if patch.CheckIn != nil {
			r.CheckIn = *patch.CheckIn
		}
		if patch.CheckOut != nil {
			r.CheckOut = *patch.CheckOut
		}
		if patch.Status != nil {
			r.Status = *patch.Status
		}
		if patch.Source != nil {
			r.Source = *patch.Source
		}
		if patch.TotalAmount != nil {
			r.TotalAmount = *patch.TotalAmount
		}
		if patch.Notes != nil {
			r.Notes = *patch.Notes
		}
		r.UpdatedAt = time.Now()
		out := *r
		return &out, nil
	}
	return nil, hostwise.ErrNotFound
}

func (s *ReservationStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return hostwise.ErrNotFound
}

// --- transactions ---

// TransactionStore is an in-memory transaction backend.
type TransactionStore struct {
	mu        sync.Mutex
	rows      []hostwise.Transaction
	err       error
	listCalls int
}

// NewTransactionStore creates an in-memory transaction store seeded with rows.
func NewTransactionStore(seed ...hostwise.Transaction) *TransactionStore {
	return &TransactionStore{rows: append([]hostwise.Transaction(nil), seed...)}
}

// SetError forces every operation to fail with err. Pass nil to clear.
func (s *TransactionStore) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// ListCalls returns how many times List was called.
func (s *TransactionStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *TransactionStore) List(ctx context.Context, limit int) ([]hostwise.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	out := append([]hostwise.Transaction(nil), s.rows...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *TransactionStore) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.Transaction, error) {
	return s.listWhere(func(t hostwise.Transaction) bool { return t.PropertyID == propertyID })
}

func (s *TransactionStore) ListByType(ctx context.Context, typ hostwise.TransactionType) ([]hostwise.Transaction, error) {
	return s.listWhere(func(t hostwise.Transaction) bool { return t.Type == typ })
}

func (s *TransactionStore) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.Transaction, error) {
	return s.listWhere(func(t hostwise.Transaction) bool {
		return !t.Date.Before(from) && !t.Date.After(to)
	})
}

func (s *TransactionStore) listWhere(keep func(hostwise.Transaction) bool) ([]hostwise.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]hostwise.Transaction, 0, len(s.rows))
	for _, t := range s.rows {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *TransactionStore) Get(ctx context.Context, id string) (*hostwise.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			t := s.rows[i]
			return &t, nil
		}
	}
	return nil, hostwise.ErrNotFound
}

func (s *TransactionStore) Insert(ctx context.Context, input hostwise.TransactionInput) (*hostwise.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	now := time.Now()
	t := hostwise.Transaction{
		ID:          uuid.NewString(),
		PropertyID:  input.PropertyID,
		Type:        input.Type,
		Category:    input.Category,
		Amount:      input.Amount,
		Date:        input.Date,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.rows = append(s.rows, t)
	return &t, nil
}

func (s *TransactionStore) Update(ctx context.Context, id string, patch hostwise.TransactionPatch) (*hostwise.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		t := &s.rows[i]
		if patch.Type != nil {
			t.Type = *patch.Type
		}
		if patch.Category != nil {
			t.Category = *patch.Category
		}
		if patch.Amount != nil {
			t.Amount = *patch.Amount
		}
		if patch.Date != nil {
			t.Date = *patch.Date
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		t.UpdatedAt = time.Now()
		out := *t
		return &out, nil
	}
	return nil, hostwise.ErrNotFound
}

func (s *TransactionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return hostwise.ErrNotFound
}

// --- date blocks ---

// DateBlockStore is an in-memory date-block backend.
type DateBlockStore struct {
	mu        sync.Mutex
	rows      []hostwise.DateBlock
	err       error
	listCalls int
}

// NewDateBlockStore creates an in-memory date-block store seeded with rows.
func NewDateBlockStore(seed ...hostwise.DateBlock) *DateBlockStore {
	return &DateBlockStore{rows: append([]hostwise.DateBlock(nil), seed...)}
}

// SetError forces every operation to fail with err. Pass nil to clear.
func (s *DateBlockStore) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// ListCalls returns how many times List was called.
func (s *DateBlockStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *DateBlockStore) List(ctx context.Context) ([]hostwise.DateBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]hostwise.DateBlock(nil), s.rows...), nil
}

func (s *DateBlockStore) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.DateBlock, error) {
	return s.listWhere(func(b hostwise.DateBlock) bool { return b.PropertyID == propertyID })
}

func (s *DateBlockStore) ListInRange(ctx context.Context, from, to hostwise.Date) ([]hostwise.DateBlock, error) {
	return s.listWhere(func(b hostwise.DateBlock) bool {
		return !b.EndDate.Before(from) && !b.StartDate.After(to)
	})
}

func (s *DateBlockStore) listWhere(keep func(hostwise.DateBlock) bool) ([]hostwise.DateBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]hostwise.DateBlock, 0, len(s.rows))
	for _, b := range s.rows {
		if keep(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *DateBlockStore) Get(ctx context.Context, id string) (*hostwise.DateBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			b := s.rows[i]
			return &b, nil
		}
	}
	return nil, hostwise.ErrNotFound
}

func (s *DateBlockStore) Insert(ctx context.Context, input hostwise.DateBlockInput) (*hostwise.DateBlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	b := hostwise.DateBlock{
		ID:         uuid.NewString(),
		PropertyID: input.PropertyID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		Reason:     input.Reason,
		Notes:      input.Notes,
		CreatedAt:  time.Now(),
	}
	s.rows = append(s.rows, b)
	return &b, nil
}

func (s *DateBlockStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return hostwise.ErrNotFound
}

// --- access codes ---

// AccessCodeStore is an in-memory access-code backend.
type AccessCodeStore struct {
	mu        sync.Mutex
	rows      []hostwise.AccessCode
	err       error
	listCalls int
}

// NewAccessCodeStore creates an in-memory access-code store seeded with rows.
func NewAccessCodeStore(seed ...hostwise.AccessCode) *AccessCodeStore {
	return &AccessCodeStore{rows: append([]hostwise.AccessCode(nil), seed...)}
}

// SetError forces every operation to fail with err. Pass nil to clear.
func (s *AccessCodeStore) SetError(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// ListCalls returns how many times List was called.
func (s *AccessCodeStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *AccessCodeStore) List(ctx context.Context) ([]hostwise.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	return append([]hostwise.AccessCode(nil), s.rows...), nil
}

func (s *AccessCodeStore) ListByProperty(ctx context.Context, propertyID string) ([]hostwise.AccessCode, error) {
	return s.listWhere(func(c hostwise.AccessCode) bool { return c.PropertyID == propertyID })
}

func (s *AccessCodeStore) ListValidOn(ctx context.Context, day hostwise.Date) ([]hostwise.AccessCode, error) {
	return s.listWhere(func(c hostwise.AccessCode) bool { return c.ValidOn(day) })
}

func (s *AccessCodeStore) listWhere(keep func(hostwise.AccessCode) bool) ([]hostwise.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]hostwise.AccessCode, 0, len(s.rows))
	for _, c := range s.rows {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *AccessCodeStore) Get(ctx context.Context, id string) (*hostwise.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			c := s.rows[i]
			return &c, nil
		}
	}
	return nil, hostwise.ErrNotFound
}

func (s *AccessCodeStore) Insert(ctx context.Context, input hostwise.AccessCodeInput) (*hostwise.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	now := time.Now()
	c := hostwise.AccessCode{
		ID:         uuid.NewString(),
		PropertyID: input.PropertyID,
		Code:       input.Code,
		Label:      input.Label,
		Type:       input.Type,
		ValidFrom:  input.ValidFrom,
		ValidUntil: input.ValidUntil,
		Active:     input.Active,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.rows = append(s.rows, c)
	return &c, nil
}

func (s *AccessCodeStore) Update(ctx context.Context, id string, patch hostwise.AccessCodePatch) (*hostwise.AccessCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.rows {
		if s.rows[i].ID != id {
			continue
		}
		c := &s.rows[i]
		if patch.Code != nil {
			c.Code = *patch.Code
		}
		if patch.Label != nil {
			c.Label = *patch.Label
		}
		if patch.Type != nil {
			c.Type = *patch.Type
		}
		if patch.ValidFrom != nil {
			c.ValidFrom = *patch.ValidFrom
		}
		if patch.ValidUntil != nil {
			c.ValidUntil = *patch.ValidUntil
		}
		if patch.Active != nil {
			c.Active = *patch.Active
		}
		c.UpdatedAt = time.Now()
		out := *c
		return &out, nil
	}
	return nil, hostwise.ErrNotFound
}

func (s *AccessCodeStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	for i := range s.rows {
		if s.rows[i].ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return hostwise.ErrNotFound
}
