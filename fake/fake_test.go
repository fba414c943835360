package fake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hostwise "github.com/hostwise/hostwise-go"
)

func TestProvider_SignInAndOut(t *testing.T) {
	p := NewProvider(WithAccount("sub-1", "jane@example.com", "secret", map[string]any{"display_name": "Jane"}))

	var events []hostwise.SessionEvent
	unsubscribe := p.OnSessionChange(func(event hostwise.SessionEvent, _ *hostwise.Session) {
		events = append(events, event)
	})
	defer unsubscribe()

	sess, err := p.SignInWithPassword(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", sess.User.ID)
	assert.Equal(t, "Jane", sess.User.Metadata["display_name"])
	assert.NotEmpty(t, sess.AccessToken)

	got, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Same(t, sess, got)

	require.NoError(t, p.SignOut(context.Background()))
	got, err = p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	assert.Equal(t, []hostwise.SessionEvent{hostwise.EventSignedIn, hostwise.EventSignedOut}, events)
}

func TestProvider_WrongPassword(t *testing.T) {
	p := NewProvider(WithAccount("sub-1", "jane@example.com", "secret", nil))

	_, err := p.SignInWithPassword(context.Background(), "jane@example.com", "wrong")
	assert.Error(t, err)

	_, err = p.SignInWithPassword(context.Background(), "nobody@example.com", "secret")
	assert.Error(t, err)
}

func TestProvider_SignUpThenSignIn(t *testing.T) {
	p := NewProvider()

	err := p.SignUp(context.Background(), "new@example.com", "pw", hostwise.SignUpMetadata{DisplayName: "New Person"})
	require.NoError(t, err)

	// no session until an explicit sign-in
	got, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)

	sess, err := p.SignInWithPassword(context.Background(), "new@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "New Person", sess.User.Metadata["display_name"])
}

func TestProvider_SignUpDuplicate(t *testing.T) {
	p := NewProvider(WithAccount("sub-1", "jane@example.com", "secret", nil))

	err := p.SignUp(context.Background(), "jane@example.com", "pw", hostwise.SignUpMetadata{})
	assert.Error(t, err)
}

func TestProvider_RotateToken(t *testing.T) {
	p := NewProvider(WithAccount("sub-1", "jane@example.com", "secret", nil))
	sess, err := p.SignInWithPassword(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)

	var rotated *hostwise.Session
	p.OnSessionChange(func(event hostwise.SessionEvent, s *hostwise.Session) {
		if event == hostwise.EventTokenRefreshed {
			rotated = s
		}
	})

	p.RotateToken()

	require.NotNil(t, rotated)
	assert.NotEqual(t, sess.AccessToken, rotated.AccessToken)
	assert.Equal(t, sess.User.ID, rotated.User.ID)
}

func TestProvider_ExpireSessionIsSilent(t *testing.T) {
	p := NewProvider(WithAccount("sub-1", "jane@example.com", "secret", nil))
	_, err := p.SignInWithPassword(context.Background(), "jane@example.com", "secret")
	require.NoError(t, err)

	var fired int
	p.OnSessionChange(func(hostwise.SessionEvent, *hostwise.Session) { fired++ })

	p.ExpireSession()

	got, err := p.GetSession(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, fired)
}

func TestProvider_Unsubscribe(t *testing.T) {
	p := NewProvider()
	var fired int
	unsubscribe := p.OnSessionChange(func(hostwise.SessionEvent, *hostwise.Session) { fired++ })

	p.Emit(hostwise.EventSignedOut, nil)
	unsubscribe()
	p.Emit(hostwise.EventSignedOut, nil)

	assert.Equal(t, 1, fired)
}

func TestProfileStore_GetInsert(t *testing.T) {
	s := NewProfileStore()

	_, err := s.Get(context.Background(), "sub-1")
	assert.ErrorIs(t, err, hostwise.ErrNotFound)

	inserted, err := s.Insert(context.Background(), hostwise.Profile{ID: "sub-1", Role: hostwise.RoleViewer})
	require.NoError(t, err)
	assert.False(t, inserted.CreatedAt.IsZero())

	got, err := s.Get(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, hostwise.RoleViewer, got.Role)

	assert.Equal(t, 2, s.GetCalls())
	assert.Equal(t, 1, s.InsertCalls())
}

func TestProfileStore_InjectedErrors(t *testing.T) {
	s := NewProfileStore()
	boom := errors.New("boom")
	s.SetGetError(boom)
	s.SetInsertError(boom)

	_, err := s.Get(context.Background(), "sub-1")
	assert.ErrorIs(t, err, boom)
	_, err = s.Insert(context.Background(), hostwise.Profile{ID: "sub-1"})
	assert.ErrorIs(t, err, boom)
}

func TestPropertyStore_CRUD(t *testing.T) {
	s := NewPropertyStore()
	ctx := context.Background()

	created, err := s.Insert(ctx, hostwise.PropertyInput{Name: "Unit 1", Type: hostwise.PropertyTypeCondo, Status: hostwise.PropertyStatusActive})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unit 1", got.Name)

	name := "Unit 1 renamed"
	updated, err := s.Update(ctx, created.ID, hostwise.PropertyPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, updated.Name)

	require.NoError(t, s.Delete(ctx, created.ID))
	_, err = s.Get(ctx, created.ID)
	assert.ErrorIs(t, err, hostwise.ErrNotFound)
}

func TestPropertyStore_UpdateMissing(t *testing.T) {
	s := NewPropertyStore()
	name := "x"

	_, err := s.Update(context.Background(), "no-such-id", hostwise.PropertyPatch{Name: &name})
	assert.ErrorIs(t, err, hostwise.ErrNotFound)
	assert.ErrorIs(t, s.Delete(context.Background(), "no-such-id"), hostwise.ErrNotFound)
}

func TestNewClient_AllServicesWired(t *testing.T) {
	c := NewClient(WithAccount("sub-1", "jane@example.com", "secret", nil))
	defer c.Close()

	require.NotNil(t, c.Auth())
	require.NotNil(t, c.Properties())
	require.NotNil(t, c.Reservations())
	require.NotNil(t, c.Transactions())
	require.NotNil(t, c.DateBlocks())
	require.NotNil(t, c.AccessCodes())

	ctx := context.Background()
	c.Auth().Start(ctx)
	require.NoError(t, c.Auth().Login(ctx, "jane@example.com", "secret"))
	assert.NotNil(t, c.Auth().Session())
	assert.True(t, c.Auth().HasPermission(hostwise.RoleViewer))

	properties, err := c.Properties().List(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, properties)
}
