package fake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	hostwise "github.com/hostwise/hostwise-go"
)

type account struct {
	id           string
	passwordHash []byte
	metadata     map[string]any
}

// Provider is an in-memory hostwise.SessionProvider. It authenticates
// against bcrypt-hashed accounts and dispatches session events
// synchronously to subscribed listeners.
type Provider struct {
	mu           sync.Mutex
	accounts     map[string]*account // email → account
	session      *hostwise.Session
	getErr       error
	listeners    map[int]hostwise.SessionListener
	nextListener int
	autoRefresh  bool
	signOutErr   error
}

var _ hostwise.SessionProvider = (*Provider)(nil)

// ProviderOption configures the fake provider.
type ProviderOption func(*Provider)

// WithAccount pre-registers a sign-in account.
func WithAccount(id, email, password string, metadata map[string]any) ProviderOption {
	return func(p *Provider) {
		hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		p.accounts[email] = &account{id: id, passwordHash: hash, metadata: metadata}
	}
}

// NewProvider creates an in-memory session provider.
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		accounts:  make(map[string]*account),
		listeners: make(map[int]hostwise.SessionListener),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// SignInWithPassword checks the credentials against the registered accounts
// and, on success, installs a fresh session and emits SIGNED_IN.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*hostwise.Session, error) {
	p.mu.Lock()
	acct, ok := p.accounts[email]
	if !ok || bcrypt.CompareHashAndPassword(acct.passwordHash, []byte(password)) != nil {
		p.mu.Unlock()
		return nil, fmt.Errorf("invalid login credentials")
	}

	sess := &hostwise.Session{
		AccessToken:  "fake-access-" + uuid.NewString(),
		RefreshToken: "fake-refresh-" + uuid.NewString(),
		ExpiresAt:    time.Now().Add(time.Hour),
		User: hostwise.Identity{
			ID:       acct.id,
			Email:    email,
			Metadata: acct.metadata,
		},
	}
	p.session = sess
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(hostwise.EventSignedIn, sess)
	}
	return sess, nil
}

// SignUp registers a new account. No session is created and no event is
// emitted, matching providers that require confirmation before sign-in.
func (p *Provider) SignUp(ctx context.Context, email, password string, meta hostwise.SignUpMetadata) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.accounts[email]; exists {
		return fmt.Errorf("user already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	p.accounts[email] = &account{
		id:           uuid.NewString(),
		passwordHash: hash,
		metadata:     map[string]any{"display_name": meta.DisplayName},
	}
	return nil
}

// SignOut drops the session and emits SIGNED_OUT. A configured sign-out
// error fails the call before any state changes or events.
func (p *Provider) SignOut(ctx context.Context) error {
	p.mu.Lock()
	if p.signOutErr != nil {
		err := p.signOutErr
		p.mu.Unlock()
		return err
	}
	p.session = nil
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(hostwise.EventSignedOut, nil)
	}
	return nil
}

// GetSession returns the current session, or the configured error.
func (p *Provider) GetSession(ctx context.Context) (*hostwise.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.getErr != nil {
		return nil, p.getErr
	}
	return p.session, nil
}

// OnSessionChange registers a listener and returns its unsubscribe function.
func (p *Provider) OnSessionChange(fn hostwise.SessionListener) func() {
	p.mu.Lock()
	id := p.nextListener
	p.nextListener++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

// StartAutoRefresh records that background refresh was requested.
func (p *Provider) StartAutoRefresh() {
	p.mu.Lock()
	p.autoRefresh = true
	p.mu.Unlock()
}

// --- test helpers ---

// AutoRefreshStarted reports whether StartAutoRefresh was called.
func (p *Provider) AutoRefreshStarted() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.autoRefresh
}

// SetSession installs a session directly without emitting an event.
func (p *Provider) SetSession(sess *hostwise.Session) {
	p.mu.Lock()
	p.session = sess
	p.mu.Unlock()
}

// SetSignOutError forces SignOut to fail with err. Pass nil to clear.
func (p *Provider) SetSignOutError(err error) {
	p.mu.Lock()
	p.signOutErr = err
	p.mu.Unlock()
}

// SetGetSessionError forces GetSession to fail with err. Pass nil to clear.
func (p *Provider) SetGetSessionError(err error) {
	p.mu.Lock()
	p.getErr = err
	p.mu.Unlock()
}

// RotateToken replaces the access token of the held session and emits
// TOKEN_REFRESHED, simulating a background refresh.
func (p *Provider) RotateToken() {
	p.mu.Lock()
	if p.session == nil {
		p.mu.Unlock()
		return
	}
	rotated := *p.session
	rotated.AccessToken = "fake-access-" + uuid.NewString()
	rotated.ExpiresAt = time.Now().Add(time.Hour)
	p.session = &rotated
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(hostwise.EventTokenRefreshed, &rotated)
	}
}

// ExpireSession drops the session without emitting an event, simulating an
// expiry that the provider only notices on the next GetSession.
func (p *Provider) ExpireSession() {
	p.mu.Lock()
	p.session = nil
	p.mu.Unlock()
}

// Emit dispatches an arbitrary event to all listeners.
func (p *Provider) Emit(event hostwise.SessionEvent, sess *hostwise.Session) {
	p.mu.Lock()
	listeners := p.snapshotListeners()
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(event, sess)
	}
}

// snapshotListeners must be called with mu held.
func (p *Provider) snapshotListeners() []hostwise.SessionListener {
	out := make([]hostwise.SessionListener, 0, len(p.listeners))
	for _, fn := range p.listeners {
		out = append(out, fn)
	}
	return out
}
