package hostwise

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Identity is the stable principal identifier issued by the session provider,
// independent of any particular session or token.
type Identity struct {
	ID       string
	Email    string
	Metadata map[string]any
}

// Session is the token bundle issued by the provider. It is mirrored locally
// and never owned by this SDK; it is created on login, register or token
// refresh and destroyed on logout or expiry.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         Identity
}

// SignUpMetadata is attached to the subject identity at registration time.
type SignUpMetadata struct {
	DisplayName string
}

// Role is the application-level privilege of a profile, totally ordered
// viewer < manager < admin.
type Role string

const (
	RoleViewer  Role = "viewer"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Rank returns the role's position in the fixed privilege order.
// Unknown roles rank below viewer.
func (r Role) Rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleViewer:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether the role grants at least the required role.
func (r Role) Satisfies(required Role) bool {
	return r.Rank() >= required.Rank()
}

// ParseRole validates a wire-level role string.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleViewer, RoleManager, RoleAdmin:
		return Role(s), nil
	default:
		return "", fmt.Errorf("hostwise: unknown role %q", s)
	}
}

// Profile is the application-level user record associated 1:1 with a subject
// identity. It is provisioned lazily on first successful session resolution.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
	Role        Role
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// --- Entity records ---

type PropertyType string

const (
	PropertyTypeApartment PropertyType = "apartment"
	PropertyTypeHouse     PropertyType = "house"
	PropertyTypeCondo     PropertyType = "condo"
	PropertyTypeVilla     PropertyType = "villa"
)

type PropertyStatus string

const (
	PropertyStatusActive      PropertyStatus = "active"
	PropertyStatusInactive    PropertyStatus = "inactive"
	PropertyStatusMaintenance PropertyStatus = "maintenance"
)

// Property is a rental unit managed through the dashboard.
type Property struct {
	ID          string
	Name        string
	Address     string
	Type        PropertyType
	Status      PropertyStatus
	Bedrooms    int
	Bathrooms   int
	NightlyRate decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PropertyInput holds the caller-supplied fields for creating a property.
// The store assigns id and timestamps.
type PropertyInput struct {
	Name        string
	Address     string
	Type        PropertyType
	Status      PropertyStatus
	Bedrooms    int
	Bathrooms   int
	NightlyRate decimal.Decimal
}

// PropertyPatch holds optional field updates; nil fields are left unchanged.
type PropertyPatch struct {
	Name        *string
	Address     *string
	Type        *PropertyType
	Status      *PropertyStatus
	Bedrooms    *int
	Bathrooms   *int
	NightlyRate *decimal.Decimal
}

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusCompleted ReservationStatus = "completed"
)

type ReservationSource string

const (
	ReservationSourceAirbnb  ReservationSource = "airbnb"
	ReservationSourceVrbo    ReservationSource = "vrbo"
	ReservationSourceBooking ReservationSource = "booking"
	ReservationSourceDirect  ReservationSource = "direct"
)

// Reservation is a guest stay. Check-in and check-out are calendar days with
// no time-of-day component.
type Reservation struct {
	ID          string
	PropertyID  string
	GuestName   string
	GuestEmail  string
	CheckIn     Date
	CheckOut    Date
	Status      ReservationStatus
	Source      ReservationSource
	TotalAmount decimal.Decimal
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Overlaps reports whether the stay intersects the [from, to] calendar range.
func (r Reservation) Overlaps(from, to Date) bool {
	return !r.CheckOut.Before(from) && !r.CheckIn.After(to)
}

type ReservationInput struct {
	PropertyID  string
	GuestName   string
	GuestEmail  string
	CheckIn     Date
	CheckOut    Date
	Status      ReservationStatus
	Source      ReservationSource
	TotalAmount decimal.Decimal
	Notes       string
}

type ReservationPatch struct {
	GuestName   *string
	GuestEmail  *string
	CheckIn     *Date
	CheckOut    *Date
	Status      *ReservationStatus
	Source      *ReservationSource
	TotalAmount *decimal.Decimal
	Notes       *string
}

type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

type TransactionCategory string

const (
	TransactionCategoryRent        TransactionCategory = "rent"
	TransactionCategoryCleaning    TransactionCategory = "cleaning"
	TransactionCategoryMaintenance TransactionCategory = "maintenance"
	TransactionCategorySupplies    TransactionCategory = "supplies"
	TransactionCategoryUtilities   TransactionCategory = "utilities"
	TransactionCategoryFees        TransactionCategory = "fees"
	TransactionCategoryOther       TransactionCategory = "other"
)

// Transaction is a financial entry against a property. Amount is always
// positive; Type distinguishes income from expense.
type Transaction struct {
	ID          string
	PropertyID  string
	Type        TransactionType
	Category    TransactionCategory
	Amount      decimal.Decimal
	Date        Date
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type TransactionInput struct {
	PropertyID  string
	Type        TransactionType
	Category    TransactionCategory
	Amount      decimal.Decimal
	Date        Date
	Description string
}

type TransactionPatch struct {
	Type        *TransactionType
	Category    *TransactionCategory
	Amount      *decimal.Decimal
	Date        *Date
	Description *string
}

// TransactionSummary aggregates transactions over a query window.
type TransactionSummary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
	Count    int
}

type BlockReason string

const (
	BlockReasonMaintenance BlockReason = "maintenance"
	BlockReasonPersonalUse BlockReason = "personal_use"
	BlockReasonOther       BlockReason = "other"
)

// DateBlock marks a calendar range on a property as unavailable.
type DateBlock struct {
	ID         string
	PropertyID string
	StartDate  Date
	EndDate    Date
	Reason     BlockReason
	Notes      string
	CreatedAt  time.Time
}

type DateBlockInput struct {
	PropertyID string
	StartDate  Date
	EndDate    Date
	Reason     BlockReason
	Notes      string
}

type AccessCodeType string

const (
	AccessCodeTypeGuest       AccessCodeType = "guest"
	AccessCodeTypeCleaner     AccessCodeType = "cleaner"
	AccessCodeTypeMaintenance AccessCodeType = "maintenance"
	AccessCodeTypePermanent   AccessCodeType = "permanent"
)

// AccessCode is a door/lock code with a calendar validity window.
type AccessCode struct {
	ID         string
	PropertyID string
	Code       string
	Label      string
	Type       AccessCodeType
	ValidFrom  Date
	ValidUntil Date
	Active     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidOn reports whether the code is active and its window covers the day.
func (a AccessCode) ValidOn(day Date) bool {
	return a.Active && !day.Before(a.ValidFrom) && !day.After(a.ValidUntil)
}

type AccessCodeInput struct {
	PropertyID string
	Code       string
	Label      string
	Type       AccessCodeType
	ValidFrom  Date
	ValidUntil Date
	Active     bool
}

type AccessCodePatch struct {
	Code       *string
	Label      *string
	Type       *AccessCodeType
	ValidFrom  *Date
	ValidUntil *Date
	Active     *bool
}
