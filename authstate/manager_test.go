package authstate_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hostwise "github.com/hostwise/hostwise-go"
	"github.com/hostwise/hostwise-go/authstate"
	"github.com/hostwise/hostwise-go/fake"
)

// mockResolver implements hostwise.ProfileResolver with per-subject roles
// and an optional gate that blocks a subject's resolution until released.
type mockResolver struct {
	mu      sync.Mutex
	calls   []string
	roleFor map[string]hostwise.Role
	gates   map[string]chan struct{}
	entered chan string
	err     error
}

func newMockResolver() *mockResolver {
	return &mockResolver{
		roleFor: make(map[string]hostwise.Role),
		gates:   make(map[string]chan struct{}),
	}
}

func (r *mockResolver) Resolve(ctx context.Context, ident hostwise.Identity) (*hostwise.Profile, error) {
	r.mu.Lock()
	r.calls = append(r.calls, ident.ID)
	gate := r.gates[ident.ID]
	role, known := r.roleFor[ident.ID]
	entered := r.entered
	err := r.err
	r.mu.Unlock()

	if entered != nil {
		entered <- ident.ID
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if !known {
		role = hostwise.RoleViewer
	}
	return &hostwise.Profile{ID: ident.ID, Role: role}, nil
}

func (r *mockResolver) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func session(subjectID, token string) *hostwise.Session {
	return &hostwise.Session{
		AccessToken:  token,
		RefreshToken: "refresh-" + token,
		ExpiresAt:    time.Now().Add(time.Hour),
		User:         hostwise.Identity{ID: subjectID, Email: subjectID + "@example.com"},
	}
}

func TestStart_SignedOut(t *testing.T) {
	provider := fake.NewProvider()
	m := authstate.New(provider, newMockResolver())

	assert.True(t, m.Loading())
	m.Start(context.Background())

	assert.False(t, m.Loading())
	assert.Nil(t, m.Session())
	assert.Nil(t, m.Profile())
	assert.Empty(t, m.SubjectID())
}

func TestStart_ExistingSession(t *testing.T) {
	provider := fake.NewProvider()
	provider.SetSession(session("sub-1", "tok-1"))
	resolver := newMockResolver()
	resolver.roleFor["sub-1"] = hostwise.RoleManager
	m := authstate.New(provider, resolver)

	m.Start(context.Background())

	require.NotNil(t, m.Session())
	assert.Equal(t, "sub-1", m.SubjectID())
	require.NotNil(t, m.Profile())
	assert.Equal(t, hostwise.RoleManager, m.Profile().Role)
	assert.False(t, m.Loading())
}

func TestStart_SessionPullFailure(t *testing.T) {
	provider := fake.NewProvider()
	provider.SetGetSessionError(errors.New("network down"))
	m := authstate.New(provider, newMockResolver())

	m.Start(context.Background())

	// settles into signed-out, never stuck loading
	assert.False(t, m.Loading())
	assert.Nil(t, m.Session())
}

func TestLogin_EventDrivesState(t *testing.T) {
	provider := fake.NewProvider(
		fake.WithAccount("sub-1", "jane@example.com", "secret", nil),
	)
	resolver := newMockResolver()
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	err := m.Login(context.Background(), "jane@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "sub-1", m.SubjectID())
	require.NotNil(t, m.Profile())
	assert.Equal(t, 1, resolver.callCount())
}

func TestLogin_BadCredentials(t *testing.T) {
	provider := fake.NewProvider(
		fake.WithAccount("sub-1", "jane@example.com", "secret", nil),
	)
	m := authstate.New(provider, newMockResolver())
	m.Start(context.Background())

	err := m.Login(context.Background(), "jane@example.com", "wrong")

	var authErr *hostwise.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Nil(t, m.Session())
	assert.Nil(t, m.Profile())
}

func TestRegister_NoSessionAssumed(t *testing.T) {
	provider := fake.NewProvider()
	resolver := newMockResolver()
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	err := m.Register(context.Background(), "new@example.com", "secret", "New Person")

	require.NoError(t, err)
	// sign-up alone never establishes local state
	assert.Nil(t, m.Session())
	assert.Equal(t, 0, resolver.callCount())

	// the new account can sign in afterwards
	require.NoError(t, m.Login(context.Background(), "new@example.com", "secret"))
	require.NotNil(t, m.Session())
	assert.Equal(t, "New Person", m.Session().User.Metadata["display_name"])
}

func TestRegister_DuplicateEmail(t *testing.T) {
	provider := fake.NewProvider(
		fake.WithAccount("sub-1", "jane@example.com", "secret", nil),
	)
	m := authstate.New(provider, newMockResolver())
	m.Start(context.Background())

	err := m.Register(context.Background(), "jane@example.com", "other", "Jane")

	var authErr *hostwise.AuthenticationError
	require.ErrorAs(t, err, &authErr)
}

func TestReconcile_DuplicateSignInIsIdempotent(t *testing.T) {
	provider := fake.NewProvider()
	resolver := newMockResolver()
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	sess := session("sub-1", "tok-1")
	provider.Emit(hostwise.EventSignedIn, sess)
	provider.Emit(hostwise.EventSignedIn, sess)

	assert.Equal(t, 1, resolver.callCount())
	require.NotNil(t, m.Profile())
}

func TestReconcile_TokenRefreshKeepsProfile(t *testing.T) {
	provider := fake.NewProvider(
		fake.WithAccount("sub-1", "jane@example.com", "secret", nil),
	)
	resolver := newMockResolver()
	m := authstate.New(provider, resolver)
	m.Start(context.Background())
	require.NoError(t, m.Login(context.Background(), "jane@example.com", "secret"))

	before := m.Session().AccessToken
	profileBefore := m.Profile()
	provider.RotateToken()

	assert.NotEqual(t, before, m.Session().AccessToken)
	assert.Same(t, profileBefore, m.Profile())
	assert.Equal(t, 1, resolver.callCount())
}

func TestReconcile_SubjectSwitchDiscardsStaleResolution(t *testing.T) {
	provider := fake.NewProvider()
	resolver := newMockResolver()
	resolver.roleFor["sub-a"] = hostwise.RoleAdmin
	resolver.roleFor["sub-b"] = hostwise.RoleViewer
	gateA := make(chan struct{})
	resolver.gates["sub-a"] = gateA
	resolver.entered = make(chan string, 2)
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	// subject A signs in; its resolution blocks on the gate
	done := make(chan struct{})
	go func() {
		provider.Emit(hostwise.EventSignedIn, session("sub-a", "tok-a"))
		close(done)
	}()
	require.Equal(t, "sub-a", <-resolver.entered)

	// subject B takes over while A's resolution is still in flight
	provider.Emit(hostwise.EventSignedIn, session("sub-b", "tok-b"))
	require.Equal(t, "sub-b", <-resolver.entered)
	require.NotNil(t, m.Profile())
	require.Equal(t, "sub-b", m.Profile().ID)

	// A's slow resolution completes and must not overwrite B's state
	close(gateA)
	<-done

	require.NotNil(t, m.Profile())
	assert.Equal(t, "sub-b", m.Profile().ID)
	assert.Equal(t, hostwise.RoleViewer, m.Profile().Role)
}

func TestReconcile_SignOutDiscardsInFlightResolution(t *testing.T) {
	provider := fake.NewProvider()
	resolver := newMockResolver()
	gate := make(chan struct{})
	resolver.gates["sub-a"] = gate
	resolver.entered = make(chan string, 1)
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	done := make(chan struct{})
	go func() {
		provider.Emit(hostwise.EventSignedIn, session("sub-a", "tok-a"))
		close(done)
	}()
	require.Equal(t, "sub-a", <-resolver.entered)

	provider.Emit(hostwise.EventSignedOut, nil)
	close(gate)
	<-done

	assert.Nil(t, m.Session())
	assert.Nil(t, m.Profile())
	assert.Empty(t, m.SubjectID())
}

func TestReconcile_InitialSessionEventIgnored(t *testing.T) {
	provider := fake.NewProvider()
	resolver := newMockResolver()
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	provider.Emit(hostwise.EventInitialSession, session("sub-1", "tok-1"))

	assert.Nil(t, m.Session())
	assert.Equal(t, 0, resolver.callCount())
}

func TestReconcile_ResolutionFailureLeavesProfileAbsent(t *testing.T) {
	provider := fake.NewProvider()
	resolver := newMockResolver()
	resolver.err = errors.New("row api down")
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	provider.Emit(hostwise.EventSignedIn, session("sub-1", "tok-1"))

	// sign-in completes, permissions stay denied
	require.NotNil(t, m.Session())
	assert.Nil(t, m.Profile())
	assert.False(t, m.HasPermission(hostwise.RoleViewer))
}

func TestLogout_ClearsStateDespiteProviderError(t *testing.T) {
	provider := fake.NewProvider()
	provider.SetSession(session("sub-1", "tok-1"))
	m := authstate.New(provider, newMockResolver())
	m.Start(context.Background())
	require.NotNil(t, m.Session())

	provider.SetSignOutError(errors.New("network down"))
	m.Logout(context.Background())

	assert.Nil(t, m.Session())
	assert.Nil(t, m.Profile())
	assert.Empty(t, m.SubjectID())
}

func TestHandleVisibilityResume_SessionExpired(t *testing.T) {
	provider := fake.NewProvider()
	provider.SetSession(session("sub-1", "tok-1"))
	m := authstate.New(provider, newMockResolver())
	m.Start(context.Background())
	require.NotNil(t, m.Profile())

	provider.ExpireSession()
	m.HandleVisibilityResume(context.Background())

	assert.Nil(t, m.Session())
	assert.Nil(t, m.Profile())
	assert.True(t, provider.AutoRefreshStarted())
}

func TestHandleVisibilityResume_SameSubjectRotation(t *testing.T) {
	provider := fake.NewProvider()
	provider.SetSession(session("sub-1", "tok-1"))
	resolver := newMockResolver()
	m := authstate.New(provider, resolver)
	m.Start(context.Background())
	profileBefore := m.Profile()

	provider.SetSession(session("sub-1", "tok-2"))
	m.HandleVisibilityResume(context.Background())

	assert.Equal(t, "tok-2", m.Session().AccessToken)
	assert.Same(t, profileBefore, m.Profile())
	assert.Equal(t, 1, resolver.callCount())
}

func TestHandleVisibilityResume_PullFailureLeavesStateUntouched(t *testing.T) {
	provider := fake.NewProvider()
	provider.SetSession(session("sub-1", "tok-1"))
	m := authstate.New(provider, newMockResolver())
	m.Start(context.Background())

	provider.SetGetSessionError(errors.New("network down"))
	m.HandleVisibilityResume(context.Background())

	require.NotNil(t, m.Session())
	assert.Equal(t, "sub-1", m.SubjectID())
	require.NotNil(t, m.Profile())
}

func TestHandleVisibilityResume_SubjectSwitch(t *testing.T) {
	provider := fake.NewProvider()
	provider.SetSession(session("sub-a", "tok-a"))
	resolver := newMockResolver()
	resolver.roleFor["sub-b"] = hostwise.RoleAdmin
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	provider.SetSession(session("sub-b", "tok-b"))
	m.HandleVisibilityResume(context.Background())

	assert.Equal(t, "sub-b", m.SubjectID())
	require.NotNil(t, m.Profile())
	assert.Equal(t, hostwise.RoleAdmin, m.Profile().Role)
}

func TestHasPermission_Matrix(t *testing.T) {
	provider := fake.NewProvider()
	provider.SetSession(session("sub-1", "tok-1"))
	resolver := newMockResolver()
	resolver.roleFor["sub-1"] = hostwise.RoleManager
	m := authstate.New(provider, resolver)
	m.Start(context.Background())

	assert.True(t, m.HasPermission(hostwise.RoleViewer))
	assert.True(t, m.HasPermission(hostwise.RoleManager))
	assert.False(t, m.HasPermission(hostwise.RoleAdmin))
}

func TestHasPermission_NoProfile(t *testing.T) {
	provider := fake.NewProvider()
	m := authstate.New(provider, newMockResolver())
	m.Start(context.Background())

	assert.False(t, m.HasPermission(hostwise.RoleViewer))
}

func TestClose_Unsubscribes(t *testing.T) {
	provider := fake.NewProvider()
	resolver := newMockResolver()
	m := authstate.New(provider, resolver)
	m.Start(context.Background())
	require.NoError(t, m.Close())

	provider.Emit(hostwise.EventSignedIn, session("sub-1", "tok-1"))

	assert.Nil(t, m.Session())
	assert.Equal(t, 0, resolver.callCount())
}
