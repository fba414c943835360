// Package authstate owns process-wide auth state: the mirrored session, the
// cached subject id and profile, and the loading flag.
//
// The provider may emit overlapping asynchronous events — a TOKEN_REFRESHED
// arriving while a SIGNED_IN profile fetch is still in flight, or a
// visibility-triggered pull racing the event-stream callback. Reconciliation
// is keyed on subject identity equality: a rotated token for the same
// subject never re-fetches the profile, and every in-flight resolution is
// tagged with a generation counter so a slow, stale resolution can never
// overwrite state established for a newer subject.
package authstate

import (
	"context"
	"log/slog"
	"sync"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/audit"
)

// Recorder receives auth observability events.
// Implementations: metrics/ (prometheus), or nil for none.
type Recorder interface {
	RecordAuthSuccess(method string)
	RecordAuthFailure(method string)
	SetSignedIn(signedIn bool)
}

// Manager implements hostwise.AuthService.
type Manager struct {
	provider hostwise.SessionProvider
	resolver hostwise.ProfileResolver
	logger   *slog.Logger
	recorder Recorder
	audit    *audit.Logger

	mu        sync.Mutex
	session   *hostwise.Session
	subjectID string
	profile   *hostwise.Profile
	loading   bool
	gen       uint64

	unsubscribe func()
}

// compile-time check
var _ hostwise.AuthService = (*Manager)(nil)

// Option configures the Manager.
type Option func(*Manager)

// WithLogger sets a structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithRecorder sets the observability recorder.
func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.recorder = r }
}

// WithAudit sets an audit logger for auth lifecycle events.
func WithAudit(a *audit.Logger) Option {
	return func(m *Manager) { m.audit = a }
}

// New creates a session manager. Call Start to run the first reconciliation
// and subscribe to the provider's event stream; call Close to unsubscribe.
func New(provider hostwise.SessionProvider, resolver hostwise.ProfileResolver, opts ...Option) *Manager {
	m := &Manager{
		provider: provider,
		resolver: resolver,
		logger:   slog.Default(),
		loading:  true,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Start pulls the current session once, reconciles against it, clears the
// loading flag, and subscribes to the provider's event stream. Pull
// failures settle into the signed-out state; Start never fails.
func (m *Manager) Start(ctx context.Context) {
	sess, err := m.provider.GetSession(ctx)
	if err != nil {
		m.logger.Warn("initial session pull failed", "error", err)
		sess = nil
	}
	m.reconcile(ctx, sess)

	m.mu.Lock()
	m.loading = false
	m.mu.Unlock()

	m.unsubscribe = m.provider.OnSessionChange(m.onSessionChange)
}

// onSessionChange handles provider events. INITIAL_SESSION is ignored: the
// synchronous pull in Start already covers startup and handling both would
// double-resolve the profile.
func (m *Manager) onSessionChange(event hostwise.SessionEvent, sess *hostwise.Session) {
	if event == hostwise.EventInitialSession {
		return
	}
	m.reconcile(context.Background(), sess)
}

// reconcile establishes local state for the given session.
//
// Absent session: terminal signed-out state, everything cleared. Present
// session with the current subject and a cached profile: no-op refresh —
// only the mirrored token rotates. Otherwise the profile is resolved and
// committed only if the subject is still current when resolution completes.
func (m *Manager) reconcile(ctx context.Context, sess *hostwise.Session) {
	if sess == nil {
		m.clear()
		return
	}

	m.mu.Lock()
	if sess.User.ID == m.subjectID && m.profile != nil {
		// Token rotation or duplicate sign-in notification for the
		// subject we already resolved: mirror the session, keep the
		// profile.
		m.session = sess
		m.mu.Unlock()
		return
	}

	m.session = sess
	m.subjectID = sess.User.ID
	m.profile = nil // never retain another subject's profile across a switch
	m.gen++
	gen := m.gen
	ident := sess.User
	m.mu.Unlock()

	m.setSignedIn(true)

	p, err := m.resolver.Resolve(ctx, ident)
	if err != nil {
		m.logger.Warn("profile resolution failed", "subject_id", ident.ID, "error", err)
		p = nil
	}

	m.mu.Lock()
	if m.gen == gen && m.subjectID == ident.ID {
		m.profile = p
	} else {
		m.logger.Debug("discarding stale profile resolution", "subject_id", ident.ID)
	}
	m.mu.Unlock()
}

// clear resets all session and profile state and invalidates any in-flight
// resolution.
func (m *Manager) clear() {
	m.mu.Lock()
	m.session = nil
	m.subjectID = ""
	m.profile = nil
	m.gen++
	m.mu.Unlock()

	m.setSignedIn(false)
}

// HandleVisibilityResume recovers session state after the tab returns to
// the foreground: resume background refresh, pull the session, then either
// mirror a rotated token, run a full reconcile for a new subject, or treat
// an absent session as expiry and clear immediately. Pull failures are
// logged and swallowed; recovery must never crash or block the UI, and a
// failed pull leaves state untouched.
func (m *Manager) HandleVisibilityResume(ctx context.Context) {
	m.provider.StartAutoRefresh()

	sess, err := m.provider.GetSession(ctx)
	if err != nil {
		m.logger.Warn("session pull on resume failed", "error", err)
		return
	}

	m.mu.Lock()
	cached := m.subjectID
	m.mu.Unlock()

	switch {
	case sess == nil && cached != "":
		m.logger.Info("session expired while backgrounded", "subject_id", cached)
		m.auditLog(audit.Event{SubjectID: cached, Action: audit.ActionSessionExpired, Result: "success"})
		m.clear()

	case sess == nil:
		// still signed out

	case sess.User.ID == cached:
		// Silent token rotation: mirror session fields only, the
		// profile stays valid for the same subject.
		m.mu.Lock()
		if m.subjectID == sess.User.ID {
			m.session = sess
		}
		m.mu.Unlock()

	default:
		m.reconcile(ctx, sess)
	}
}

// Login delegates the credential exchange to the provider. On success no
// local state changes here; the provider's SIGNED_IN event drives the
// update.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	_, err := m.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		if m.recorder != nil {
			m.recorder.RecordAuthFailure("password")
		}
		m.auditLog(audit.Event{Email: email, Action: audit.ActionSignIn, Result: "failure", Error: err.Error()})
		return &hostwise.AuthenticationError{Message: err.Error()}
	}

	if m.recorder != nil {
		m.recorder.RecordAuthSuccess("password")
	}
	m.auditLog(audit.Event{Email: email, Action: audit.ActionSignIn, Result: "success"})
	return nil
}

// Register delegates sign-up, attaching the display name as identity
// metadata. No profile row is assumed; the first successful reconcile after
// sign-up provisions it lazily.
func (m *Manager) Register(ctx context.Context, email, password, displayName string) error {
	err := m.provider.SignUp(ctx, email, password, hostwise.SignUpMetadata{DisplayName: displayName})
	if err != nil {
		if m.recorder != nil {
			m.recorder.RecordAuthFailure("signup")
		}
		m.auditLog(audit.Event{Email: email, Action: audit.ActionSignUp, Result: "failure", Error: err.Error()})
		return &hostwise.AuthenticationError{Message: err.Error()}
	}

	if m.recorder != nil {
		m.recorder.RecordAuthSuccess("signup")
	}
	m.auditLog(audit.Event{Email: email, Action: audit.ActionSignUp, Result: "success"})
	return nil
}

// Logout signs out at the provider (failure logged, not propagated) and
// unconditionally clears all local session and profile state.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	subject := m.subjectID
	m.mu.Unlock()

	if err := m.provider.SignOut(ctx); err != nil {
		m.logger.Warn("provider sign-out failed", "error", err)
	}
	m.clear()
	m.auditLog(audit.Event{SubjectID: subject, Action: audit.ActionSignOut, Result: "success"})
}

// HasPermission compares the cached profile's role against the required
// role under the fixed order viewer < manager < admin. No cached profile
// means no permissions.
func (m *Manager) HasPermission(required hostwise.Role) bool {
	m.mu.Lock()
	p := m.profile
	m.mu.Unlock()

	if p == nil {
		return false
	}
	return p.Role.Satisfies(required)
}

// Session returns the mirrored session, or nil when signed out.
func (m *Manager) Session() *hostwise.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Profile returns the cached profile, or nil when absent.
func (m *Manager) Profile() *hostwise.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// SubjectID returns the cached subject id, or "" when signed out.
func (m *Manager) SubjectID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.subjectID
}

// Loading reports whether the first reconciliation has not yet settled.
func (m *Manager) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Close unsubscribes from the provider's event stream.
func (m *Manager) Close() error {
	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
	}
	return nil
}

func (m *Manager) setSignedIn(signedIn bool) {
	if m.recorder != nil {
		m.recorder.SetSignedIn(signedIn)
	}
}

func (m *Manager) auditLog(e audit.Event) {
	if m.audit != nil {
		m.audit.Log(e)
	}
}
