package hostwise

import "context"

// SessionEvent identifies a session-change notification from the provider.
type SessionEvent string

const (
	EventInitialSession SessionEvent = "INITIAL_SESSION"
	EventSignedIn       SessionEvent = "SIGNED_IN"
	EventSignedOut      SessionEvent = "SIGNED_OUT"
	EventTokenRefreshed SessionEvent = "TOKEN_REFRESHED"
	EventUserUpdated    SessionEvent = "USER_UPDATED"
)

// SessionListener receives session-change notifications. The session is nil
// for signed-out events.
type SessionListener func(event SessionEvent, session *Session)

// SessionProvider is the remote auth service contract.
// Implementations: supabase/ (hosted service), fake/ (testing).
type SessionProvider interface {
	// SignInWithPassword exchanges credentials for a session.
	SignInWithPassword(ctx context.Context, email, password string) (*Session, error)

	// SignUp registers a new account, attaching metadata to the identity.
	// It does not assume a session or profile was created.
	SignUp(ctx context.Context, email, password string, meta SignUpMetadata) error

	// SignOut terminates the current session. Best-effort.
	SignOut(ctx context.Context) error

	// GetSession returns the current session, or nil when signed out.
	GetSession(ctx context.Context) (*Session, error)

	// OnSessionChange subscribes to the provider's event stream and returns
	// an unsubscribe function.
	OnSessionChange(fn SessionListener) (unsubscribe func())

	// StartAutoRefresh hints the provider to resume background token
	// refresh, typically when the tab returns to the foreground.
	StartAutoRefresh()
}

// ProfileStore is the remote profile-row contract consumed by the resolver.
type ProfileStore interface {
	// Get fetches the profile keyed by subject id. Returns ErrNotFound
	// when no row exists.
	Get(ctx context.Context, id string) (*Profile, error)

	// Insert provisions a new profile row and returns the inserted row.
	Insert(ctx context.Context, p Profile) (*Profile, error)
}

// ProfileResolver resolves a subject identity to its profile, provisioning
// one lazily when absent. A nil profile with a nil error means "absent":
// the subject carries no permissions but sign-in is not blocked.
type ProfileResolver interface {
	Resolve(ctx context.Context, ident Identity) (*Profile, error)
}

// AuthService owns process-wide auth state: the mirrored session, the
// cached subject id and profile, and the loading flag.
// Implementation: authstate/.
type AuthService interface {
	// Start pulls the current session, runs the first reconciliation, and
	// subscribes to the provider's event stream. Failures are logged; the
	// loading flag clears when the first reconciliation settles.
	Start(ctx context.Context)

	// Login delegates the credential exchange to the provider. State is
	// updated by the subsequent provider event, not by Login itself.
	Login(ctx context.Context, email, password string) error

	// Register delegates sign-up with the display name as identity metadata.
	Register(ctx context.Context, email, password, displayName string) error

	// Logout signs out best-effort and unconditionally clears local state.
	Logout(ctx context.Context)

	// HandleVisibilityResume recovers session state after the tab returns
	// to the foreground. It never fails; pull errors are logged.
	HandleVisibilityResume(ctx context.Context)

	// HasPermission compares the cached profile's role against required.
	// Returns false while no profile is cached.
	HasPermission(required Role) bool

	// Session returns the mirrored session, or nil when signed out.
	Session() *Session

	// Profile returns the cached profile, or nil when absent.
	Profile() *Profile

	// Loading reports whether the first reconciliation has not yet settled.
	Loading() bool

	// Close unsubscribes from the provider's event stream.
	Close() error
}

// PropertyService provides cached reads and write-through mutations for
// properties.
type PropertyService interface {
	List(ctx context.Context, forceRefresh bool) ([]Property, error)
	GetByID(ctx context.Context, id string) (*Property, error)
	ListByStatus(ctx context.Context, status PropertyStatus) ([]Property, error)
	Create(ctx context.Context, input PropertyInput) (*Property, error)
	Update(ctx context.Context, id string, patch PropertyPatch) (*Property, error)
	Delete(ctx context.Context, id string) error
	Invalidate()
}

// ReservationService provides cached reads and write-through mutations for
// reservations.
type ReservationService interface {
	List(ctx context.Context, forceRefresh bool) ([]Reservation, error)
	GetByID(ctx context.Context, id string) (*Reservation, error)
	ListByProperty(ctx context.Context, propertyID string) ([]Reservation, error)
	ListByStatus(ctx context.Context, status ReservationStatus) ([]Reservation, error)
	ListInRange(ctx context.Context, from, to Date) ([]Reservation, error)
	Create(ctx context.Context, input ReservationInput) (*Reservation, error)
	Update(ctx context.Context, id string, patch ReservationPatch) (*Reservation, error)
	Delete(ctx context.Context, id string) error
	Invalidate()
}

// TransactionService provides cached reads, write-through mutations and
// aggregation for financial transactions.
type TransactionService interface {
	List(ctx context.Context, forceRefresh bool) ([]Transaction, error)
	GetByID(ctx context.Context, id string) (*Transaction, error)
	ListByProperty(ctx context.Context, propertyID string) ([]Transaction, error)
	ListByType(ctx context.Context, typ TransactionType) ([]Transaction, error)
	ListInRange(ctx context.Context, from, to Date) ([]Transaction, error)
	Summarize(ctx context.Context, propertyID string, from, to Date) (*TransactionSummary, error)
	Create(ctx context.Context, input TransactionInput) (*Transaction, error)
	Update(ctx context.Context, id string, patch TransactionPatch) (*Transaction, error)
	Delete(ctx context.Context, id string) error
	Invalidate()
}

// DateBlockService provides cached reads and write-through mutations for
// calendar blocks.
type DateBlockService interface {
	List(ctx context.Context, forceRefresh bool) ([]DateBlock, error)
	GetByID(ctx context.Context, id string) (*DateBlock, error)
	ListByProperty(ctx context.Context, propertyID string) ([]DateBlock, error)
	ListInRange(ctx context.Context, from, to Date) ([]DateBlock, error)
	Create(ctx context.Context, input DateBlockInput) (*DateBlock, error)
	Delete(ctx context.Context, id string) error
	Invalidate()
}

// AccessCodeService provides cached reads and write-through mutations for
// door codes.
type AccessCodeService interface {
	List(ctx context.Context, forceRefresh bool) ([]AccessCode, error)
	GetByID(ctx context.Context, id string) (*AccessCode, error)
	ListByProperty(ctx context.Context, propertyID string) ([]AccessCode, error)
	ListValidOn(ctx context.Context, day Date) ([]AccessCode, error)
	Create(ctx context.Context, input AccessCodeInput) (*AccessCode, error)
	Update(ctx context.Context, id string, patch AccessCodePatch) (*AccessCode, error)
	Delete(ctx context.Context, id string) error
	Invalidate()
}
