package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	hostwise "github.com/hostwise/hostwise-go"
)

// refreshLeeway is how close to expiry a session gets before GetSession
// rotates the refresh token instead of returning the old token bundle.
const refreshLeeway = 60 * time.Second

// autoRefreshInterval is how often the background refresher re-checks the
// held session.
const autoRefreshInterval = 30 * time.Second

// Auth implements hostwise.SessionProvider against the hosted auth API.
// It holds the current token bundle in memory and dispatches session
// events to subscribed listeners.
type Auth struct {
	baseURL string
	anonKey string
	http    *http.Client
	logger  *slog.Logger

	mu            sync.Mutex
	session       *hostwise.Session
	listeners     map[int]hostwise.SessionListener
	nextListener  int
	refreshCancel context.CancelFunc
}

var _ hostwise.SessionProvider = (*Auth)(nil)

// NewAuth creates an auth adapter for the given project configuration.
func NewAuth(cfg Config, logger *slog.Logger) *Auth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auth{
		baseURL:   cfg.URL + "/auth/v1",
		anonKey:   cfg.AnonKey,
		http:      cfg.httpClient(),
		logger:    logger,
		listeners: make(map[int]hostwise.SessionListener),
	}
}

// tokenResponse is the raw token bundle from the auth API.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	User         struct {
		ID           string         `json:"id"`
		Email        string         `json:"email"`
		UserMetadata map[string]any `json:"user_metadata"`
	} `json:"user"`
}

// authError is the error payload from the auth API. Older and newer API
// versions use different field names.
type authError struct {
	Message          string `json:"msg"`
	ErrorDescription string `json:"error_description"`
	ErrorCode        string `json:"error"`
}

func (e authError) text() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.ErrorDescription != "":
		return e.ErrorDescription
	case e.ErrorCode != "":
		return e.ErrorCode
	default:
		return "authentication request failed"
	}
}

// SignInWithPassword exchanges credentials for a session and emits
// SIGNED_IN on success. The provider's own error message is surfaced.
func (a *Auth) SignInWithPassword(ctx context.Context, email, password string) (*hostwise.Session, error) {
	payload := map[string]string{"email": email, "password": password}
	var tok tokenResponse
	if err := a.post(ctx, "/token?grant_type=password", "", payload, &tok); err != nil {
		return nil, err
	}

	sess := a.sessionFromToken(tok)
	a.mu.Lock()
	a.session = sess
	listeners := a.snapshotListeners()
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(hostwise.EventSignedIn, sess)
	}
	return sess, nil
}

// SignUp registers a new account, attaching the display name as identity
// metadata. Depending on project settings the account may require email
// confirmation, so no session is assumed and no event is emitted.
func (a *Auth) SignUp(ctx context.Context, email, password string, meta hostwise.SignUpMetadata) error {
	payload := map[string]any{
		"email":    email,
		"password": password,
		"data":     map[string]any{"display_name": meta.DisplayName},
	}
	return a.post(ctx, "/signup", "", payload, nil)
}

// SignOut revokes the session remotely, then drops it locally and emits
// SIGNED_OUT. The local state is cleared even when revocation fails.
func (a *Auth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	var token string
	if a.session != nil {
		token = a.session.AccessToken
	}
	a.mu.Unlock()

	var revokeErr error
	if token != "" {
		revokeErr = a.post(ctx, "/logout", token, nil, nil)
	}

	a.mu.Lock()
	a.session = nil
	listeners := a.snapshotListeners()
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(hostwise.EventSignedOut, nil)
	}
	return revokeErr
}

// GetSession returns the current session, rotating the refresh token when
// the access token is near expiry. A rejected refresh token means the
// session is gone; that maps to (nil, nil), not an error.
func (a *Auth) GetSession(ctx context.Context) (*hostwise.Session, error) {
	a.mu.Lock()
	sess := a.session
	a.mu.Unlock()

	if sess == nil {
		return nil, nil
	}
	if time.Until(sess.ExpiresAt) > refreshLeeway {
		return sess, nil
	}
	return a.refresh(ctx, sess.RefreshToken)
}

// refresh exchanges the refresh token for a new bundle and emits
// TOKEN_REFRESHED. Only transport failures are errors.
func (a *Auth) refresh(ctx context.Context, refreshToken string) (*hostwise.Session, error) {
	payload := map[string]string{"refresh_token": refreshToken}
	var tok tokenResponse
	err := a.post(ctx, "/token?grant_type=refresh_token", "", payload, &tok)
	if err != nil {
		var rejected *hostwise.AuthenticationError
		if errors.As(err, &rejected) {
			a.logger.Info("refresh token rejected, session ended", "reason", rejected.Message)
			a.mu.Lock()
			a.session = nil
			a.mu.Unlock()
			return nil, nil
		}
		return nil, err
	}

	sess := a.sessionFromToken(tok)
	a.mu.Lock()
	a.session = sess
	listeners := a.snapshotListeners()
	a.mu.Unlock()

	for _, fn := range listeners {
		fn(hostwise.EventTokenRefreshed, sess)
	}
	return sess, nil
}

// snapshotListeners copies the registered listeners; the caller must hold
// a.mu.
func (a *Auth) snapshotListeners() []hostwise.SessionListener {
	fns := make([]hostwise.SessionListener, 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	return fns
}

// OnSessionChange registers a listener and returns its unsubscribe
// function.
func (a *Auth) OnSessionChange(fn hostwise.SessionListener) func() {
	a.mu.Lock()
	id := a.nextListener
	a.nextListener++
	a.listeners[id] = fn
	a.mu.Unlock()

	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

// StartAutoRefresh launches the background refresh loop. Calling it again
// while a loop is running is a no-op.
func (a *Auth) StartAutoRefresh() {
	a.mu.Lock()
	if a.refreshCancel != nil {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.refreshCancel = cancel
	a.mu.Unlock()

	go func() {
		ticker := time.NewTicker(autoRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := a.GetSession(ctx); err != nil {
					a.logger.Warn("background session refresh failed", "error", err)
				}
			}
		}
	}()
}

// Close stops the background refresh loop.
func (a *Auth) Close() error {
	a.mu.Lock()
	cancel := a.refreshCancel
	a.refreshCancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	return nil
}

// AccessToken returns the current bearer token, or "" when signed out.
// The row client uses it so reads run under the subject's row-level
// security policies.
func (a *Auth) AccessToken() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return ""
	}
	return a.session.AccessToken
}

// sessionFromToken converts a token bundle into a Session. The expiry
// claim inside the JWT is authoritative; expires_in is the fallback.
func (a *Auth) sessionFromToken(tok tokenResponse) *hostwise.Session {
	expiresAt := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	ident := hostwise.Identity{
		ID:       tok.User.ID,
		Email:    tok.User.Email,
		Metadata: tok.User.UserMetadata,
	}

	// The token is already trusted here: it came over TLS from the auth
	// endpoint. Parsing without verification only extracts claims.
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok.AccessToken, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			expiresAt = exp.Time
		}
		if ident.ID == "" {
			if sub, err := claims.GetSubject(); err == nil {
				ident.ID = sub
			}
		}
		if ident.Email == "" {
			if email, ok := claims["email"].(string); ok {
				ident.Email = email
			}
		}
	}

	return &hostwise.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         ident,
	}
}

// post issues a JSON request to the auth API. 4xx responses become
// AuthenticationError carrying the provider's message.
func (a *Auth) post(ctx context.Context, path, bearer string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("hostwise/supabase: encode auth payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("hostwise/supabase: build auth request: %w", err)
	}
	req.Header.Set("apikey", a.anonKey)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("hostwise/supabase: auth request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("hostwise/supabase: read auth response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var apiErr authError
		_ = json.Unmarshal(raw, &apiErr)
		if resp.StatusCode >= 500 {
			return fmt.Errorf("hostwise/supabase: auth service error: status %d: %s",
				resp.StatusCode, apiErr.text())
		}
		return &hostwise.AuthenticationError{Message: apiErr.text()}
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("hostwise/supabase: decode auth response: %w", err)
		}
	}
	return nil
}
