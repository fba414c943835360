package supabase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	hostwise "github.com/hostwise/hostwise-go"
)

// Wire rows use the database's snake_case column names; domain records use
// Go naming. Decoding validates enum columns instead of coercing them, so
// a schema drift surfaces as a DecodeError rather than a zero value.

func enumErr[T ~string](kind, field string, v T) error {
	return &hostwise.DecodeError{Kind: kind, Field: field, Err: fmt.Errorf("unknown value %q", string(v))}
}

// --- profiles ---

type profileRow struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func decodeProfile(raw json.RawMessage) (*hostwise.Profile, error) {
	var row profileRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, &hostwise.DecodeError{Kind: "profile", Err: err}
	}
	role, err := hostwise.ParseRole(row.Role)
	if err != nil {
		return nil, &hostwise.DecodeError{Kind: "profile", Field: "role", Err: err}
	}
	return &hostwise.Profile{
		ID:          row.ID,
		Email:       row.Email,
		DisplayName: row.DisplayName,
		Role:        role,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
	}, nil
}

func profilePayload(p hostwise.Profile) map[string]any {
	return map[string]any{
		"id":           p.ID,
		"email":        p.Email,
		"display_name": p.DisplayName,
		"role":         string(p.Role),
	}
}

// --- properties ---

type propertyRow struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Type        string          `json:"property_type"`
	Status      string          `json:"status"`
	Bedrooms    int             `json:"bedrooms"`
	Bathrooms   int             `json:"bathrooms"`
	NightlyRate decimal.Decimal `json:"nightly_rate"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r propertyRow) domain() (hostwise.Property, error) {
	typ := hostwise.PropertyType(r.Type)
	switch typ {
	case hostwise.PropertyTypeApartment, hostwise.PropertyTypeHouse,
		hostwise.PropertyTypeCondo, hostwise.PropertyTypeVilla:
	default:
		return hostwise.Property{}, enumErr("property", "property_type", typ)
	}
	status := hostwise.PropertyStatus(r.Status)
	switch status {
	case hostwise.PropertyStatusActive, hostwise.PropertyStatusInactive,
		hostwise.PropertyStatusMaintenance:
	default:
		return hostwise.Property{}, enumErr("property", "status", status)
	}
	return hostwise.Property{
		ID:          r.ID,
		Name:        r.Name,
		Address:     r.Address,
		Type:        typ,
		Status:      status,
		Bedrooms:    r.Bedrooms,
		Bathrooms:   r.Bathrooms,
		NightlyRate: r.NightlyRate,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func decodeProperty(raw json.RawMessage) (*hostwise.Property, error) {
	var row propertyRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, &hostwise.DecodeError{Kind: "property", Err: err}
	}
	p, err := row.domain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func decodeProperties(raw json.RawMessage) ([]hostwise.Property, error) {
	var rows []propertyRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &hostwise.DecodeError{Kind: "property", Err: err}
	}
	out := make([]hostwise.Property, 0, len(rows))
	for _, row := range rows {
		p, err := row.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func propertyInsertPayload(in hostwise.PropertyInput) map[string]any {
	return map[string]any{
		"name":          in.Name,
		"address":       in.Address,
		"property_type": string(in.Type),
		"status":        string(in.Status),
		"bedrooms":      in.Bedrooms,
		"bathrooms":     in.Bathrooms,
		"nightly_rate":  in.NightlyRate,
	}
}

func propertyPatchPayload(p hostwise.PropertyPatch) map[string]any {
	out := map[string]any{}
	if p.Name != nil {
		out["name"] = *p.Name
	}
	if p.Address != nil {
		out["address"] = *p.Address
	}
	if p.Type != nil {
		out["property_type"] = string(*p.Type)
	}
	if p.Status != nil {
		out["status"] = string(*p.Status)
	}
	if p.Bedrooms != nil {
		out["bedrooms"] = *p.Bedrooms
	}
	if p.Bathrooms != nil {
		out["bathrooms"] = *p.Bathrooms
	}
	if p.NightlyRate != nil {
		out["nightly_rate"] = *p.NightlyRate
	}
	return out
}

// --- reservations ---

type reservationRow struct {
	ID          string          `json:"id"`
	PropertyID  string          `json:"property_id"`
	GuestName   string          `json:"guest_name"`
	GuestEmail  string          `json:"guest_email"`
	CheckIn     hostwise.Date   `json:"check_in"`
	CheckOut    hostwise.Date   `json:"check_out"`
	Status      string          `json:"status"`
	Source      string          `json:"source"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r reservationRow) domain() (hostwise.Reservation, error) {
	status := hostwise.ReservationStatus(r.Status)
	switch status {
	case hostwise.ReservationStatusPending, hostwise.ReservationStatusConfirmed,
		hostwise.ReservationStatusCancelled, hostwise.ReservationStatusCompleted:
	default:
		return hostwise.Reservation{}, enumErr("reservation", "status", status)
	}
	source := hostwise.ReservationSource(r.Source)
	switch source {
	case hostwise.ReservationSourceAirbnb, hostwise.ReservationSourceVrbo,
		hostwise.ReservationSourceBooking, hostwise.ReservationSourceDirect:
	default:
		return hostwise.Reservation{}, enumErr("reservation", "source", source)
	}
	return hostwise.Reservation{
		ID:          r.ID,
		PropertyID:  r.PropertyID,
		GuestName:   r.GuestName,
		GuestEmail:  r.GuestEmail,
		CheckIn:     r.CheckIn,
		CheckOut:    r.CheckOut,
		Status:      status,
		Source:      source,
		TotalAmount: r.TotalAmount,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func decodeReservation(raw json.RawMessage) (*hostwise.Reservation, error) {
	var row reservationRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, &hostwise.DecodeError{Kind: "reservation", Err: err}
	}
	r, err := row.domain()
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func decodeReservations(raw json.RawMessage) ([]hostwise.Reservation, error) {
	var rows []reservationRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &hostwise.DecodeError{Kind: "reservation", Err: err}
	}
	out := make([]hostwise.Reservation, 0, len(rows))
	for _, row := range rows {
		r, err := row.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

func reservationInsertPayload(in hostwise.ReservationInput) map[string]any {
	return map[string]any{
		"property_id":  in.PropertyID,
		"guest_name":   in.GuestName,
		"guest_email":  in.GuestEmail,
		"check_in":     in.CheckIn.String(),
		"check_out":    in.CheckOut.String(),
		"status":       string(in.Status),
		"source":       string(in.Source),
		"total_amount": in.TotalAmount,
		"notes":        in.Notes,
	}
}

func reservationPatchPayload(p hostwise.ReservationPatch) map[string]any {
	out := map[string]any{}
	if p.GuestName != nil {
		out["guest_name"] = *p.GuestName
	}
	if p.GuestEmail != nil {
		out["guest_email"] = *p.GuestEmail
	}
	if p.CheckIn != nil {
		out["check_in"] = p.CheckIn.String()
	}
	if p.CheckOut != nil {
		out["check_out"] = p.CheckOut.String()
	}
	if p.Status != nil {
		out["status"] = string(*p.Status)
	}
	if p.Source != nil {
		out["source"] = string(*p.Source)
	}
	if p.TotalAmount != nil {
		out["total_amount"] = *p.TotalAmount
	}
	if p.Notes != nil {
		out["notes"] = *p.Notes
	}
	return out
}

// --- transactions ---

type transactionRow struct {
	ID          string          `json:"id"`
	PropertyID  string          `json:"property_id"`
	Type        string          `json:"transaction_type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Date        hostwise.Date   `json:"transaction_date"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (r transactionRow) domain() (hostwise.Transaction, error) {
	typ := hostwise.TransactionType(r.Type)
	switch typ {
	case hostwise.TransactionTypeIncome, hostwise.TransactionTypeExpense:
	default:
		return hostwise.Transaction{}, enumErr("transaction", "transaction_type", typ)
	}
	category := hostwise.TransactionCategory(r.Category)
	switch category {
	case hostwise.TransactionCategoryRent, hostwise.TransactionCategoryCleaning,
		hostwise.TransactionCategoryMaintenance, hostwise.TransactionCategorySupplies,
		hostwise.TransactionCategoryUtilities, hostwise.TransactionCategoryFees,
		hostwise.TransactionCategoryOther:
	default:
		return hostwise.Transaction{}, enumErr("transaction", "category", category)
	}
	return hostwise.Transaction{
		ID:          r.ID,
		PropertyID:  r.PropertyID,
		Type:        typ,
		Category:    category,
		Amount:      r.Amount,
		Date:        r.Date,
		Description: r.Description,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func decodeTransaction(raw json.RawMessage) (*hostwise.Transaction, error) {
	var row transactionRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, &hostwise.DecodeError{Kind: "transaction", Err: err}
	}
	t, err := row.domain()
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func decodeTransactions(raw json.RawMessage) ([]hostwise.Transaction, error) {
	var rows []transactionRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &hostwise.DecodeError{Kind: "transaction", Err: err}
	}
	out := make([]hostwise.Transaction, 0, len(rows))
	for _, row := range rows {
		t, err := row.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func transactionInsertPayload(in hostwise.TransactionInput) map[string]any {
	return map[string]any{
		"property_id":      in.PropertyID,
		"transaction_type": string(in.Type),
		"category":         string(in.Category),
		"amount":           in.Amount,
		"transaction_date": in.Date.String(),
		"description":      in.Description,
	}
}

func transactionPatchPayload(p hostwise.TransactionPatch) map[string]any {
	out := map[string]any{}
	if p.Type != nil {
		out["transaction_type"] = string(*p.Type)
	}
	if p.Category != nil {
		out["category"] = string(*p.Category)
	}
	if p.Amount != nil {
		out["amount"] = *p.Amount
	}
	if p.Date != nil {
		out["transaction_date"] = p.Date.String()
	}
	if p.Description != nil {
		out["description"] = *p.Description
	}
	return out
}

// --- date blocks ---

type dateBlockRow struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"property_id"`
	StartDate  hostwise.Date `json:"start_date"`
	EndDate    hostwise.Date `json:"end_date"`
	Reason     string        `json:"reason"`
	Notes      string        `json:"notes"`
	CreatedAt  time.Time     `json:"created_at"`
}

func (r dateBlockRow) domain() (hostwise.DateBlock, error) {
	reason := hostwise.BlockReason(r.Reason)
	switch reason {
	case hostwise.BlockReasonMaintenance, hostwise.BlockReasonPersonalUse,
		hostwise.BlockReasonOther:
	default:
		return hostwise.DateBlock{}, enumErr("date_block", "reason", reason)
	}
	return hostwise.DateBlock{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		StartDate:  r.StartDate,
		EndDate:    r.EndDate,
		Reason:     reason,
		Notes:      r.Notes,
		CreatedAt:  r.CreatedAt,
	}, nil
}

func decodeDateBlock(raw json.RawMessage) (*hostwise.DateBlock, error) {
	var row dateBlockRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, &hostwise.DecodeError{Kind: "date_block", Err: err}
	}
	b, err := row.domain()
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func decodeDateBlocks(raw json.RawMessage) ([]hostwise.DateBlock, error) {
	var rows []dateBlockRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &hostwise.DecodeError{Kind: "date_block", Err: err}
	}
	out := make([]hostwise.DateBlock, 0, len(rows))
	for _, row := range rows {
		b, err := row.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func dateBlockInsertPayload(in hostwise.DateBlockInput) map[string]any {
	return map[string]any{
		"property_id": in.PropertyID,
		"start_date":  in.StartDate.String(),
		"end_date":    in.EndDate.String(),
		"reason":      string(in.Reason),
		"notes":       in.Notes,
	}
}

// --- access codes ---

type accessCodeRow struct {
	ID         string        `json:"id"`
	PropertyID string        `json:"property_id"`
	Code       string        `json:"code"`
	Label      string        `json:"label"`
	Type       string        `json:"code_type"`
	ValidFrom  hostwise.Date `json:"valid_from"`
	ValidUntil hostwise.Date `json:"valid_until"`
	Active     bool          `json:"active"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

func (r accessCodeRow) domain() (hostwise.AccessCode, error) {
	typ := hostwise.AccessCodeType(r.Type)
	switch typ {
	case hostwise.AccessCodeTypeGuest, hostwise.AccessCodeTypeCleaner,
		hostwise.AccessCodeTypeMaintenance, hostwise.AccessCodeTypePermanent:
	default:
		return hostwise.AccessCode{}, enumErr("access_code", "code_type", typ)
	}
	return hostwise.AccessCode{
		ID:         r.ID,
		PropertyID: r.PropertyID,
		Code:       r.Code,
		Label:      r.Label,
		Type:       typ,
		ValidFrom:  r.ValidFrom,
		ValidUntil: r.ValidUntil,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}, nil
}

func decodeAccessCode(raw json.RawMessage) (*hostwise.AccessCode, error) {
	var row accessCodeRow
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, &hostwise.DecodeError{Kind: "access_code", Err: err}
	}
	c, err := row.domain()
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func decodeAccessCodes(raw json.RawMessage) ([]hostwise.AccessCode, error) {
	var rows []accessCodeRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, &hostwise.DecodeError{Kind: "access_code", Err: err}
	}
	out := make([]hostwise.AccessCode, 0, len(rows))
	for _, row := range rows {
		c, err := row.domain()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func accessCodeInsertPayload(in hostwise.AccessCodeInput) map[string]any {
	return map[string]any{
		"property_id": in.PropertyID,
		"code":        in.Code,
		"label":       in.Label,
		"code_type":   string(in.Type),
		"valid_from":  in.ValidFrom.String(),
		"valid_until": in.ValidUntil.String(),
		"active":      in.Active,
	}
}

func accessCodePatchPayload(p hostwise.AccessCodePatch) map[string]any {
	out := map[string]any{}
	if p.Code != nil {
		out["code"] = *p.Code
	}
	if p.Label != nil {
		out["label"] = *p.Label
	}
	if p.Type != nil {
		out["code_type"] = string(*p.Type)
	}
	if p.ValidFrom != nil {
		out["valid_from"] = p.ValidFrom.String()
	}
	if p.ValidUntil != nil {
		out["valid_until"] = p.ValidUntil.String()
	}
	if p.Active != nil {
		out["active"] = *p.Active
	}
	return out
}
