package session_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/session"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/jrsteele09/go-storefront/storage/memstore"
)

const (
	testUserID    = "user-1"
	testUserEmail = "john.doe@example.com"
	testUserName  = "John Doe"
	testPassword  = "password123"
	testToken     = "tok-1"
)

// fakeAuthAPI scripts the backend's auth behavior.
type fakeAuthAPI struct {
	healthErr   error
	loginCreds  api.Credentials
	loginErr    error
	loginCalls  int
	registerErr error
}

var _ session.AuthAPI = (*fakeAuthAPI)(nil)

func (f *fakeAuthAPI) Health(ctx context.Context) error {
	return f.healthErr
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (api.Credentials, error) {
	f.loginCalls++
	if f.loginErr != nil {
		return api.Credentials{}, f.loginErr
	}
	return f.loginCreds, nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, name, email, password string) (api.Credentials, error) {
	if f.registerErr != nil {
		return api.Credentials{}, f.registerErr
	}
	return f.loginCreds, nil
}

func testCredentials() api.Credentials {
	return api.Credentials{
		Token: testToken,
		User:  api.User{ID: testUserID, Email: testUserEmail, Name: testUserName},
	}
}

type fixture struct {
	authAPI *fakeAuthAPI
	storage storage.Storage
	store   *session.Store
}

func setupFixture(t *testing.T, options ...session.Option) *fixture {
	t.Helper()

	authAPI := &fakeAuthAPI{loginCreds: testCredentials()}
	mem := memstore.New()

	store, err := session.NewStore(authAPI, mem, options...)
	require.NoError(t, err)

	return &fixture{authAPI: authAPI, storage: mem, store: store}
}

// requireCredentialInvariant checks that user and token are both present
// or both absent, in memory and in storage.
func requireCredentialInvariant(t *testing.T, f *fixture) {
	t.Helper()

	snapshot := f.store.Current()
	require.Equal(t, snapshot.User != nil, snapshot.Token != "", "in-memory user/token must be paired")

	_, hasToken, err := f.storage.Get(storage.KeyToken)
	require.NoError(t, err)
	_, hasUser, err := f.storage.Get(storage.KeyUser)
	require.NoError(t, err)
	require.Equal(t, hasToken, hasUser, "stored user/token must be paired")
}

func TestNewStoreValidation(t *testing.T) {
	_, err := session.NewStore(nil, memstore.New())
	require.Error(t, err)

	_, err = session.NewStore(&fakeAuthAPI{}, nil)
	require.Error(t, err)
}

func TestRehydration(t *testing.T) {
	t.Run("no stored session starts anonymous", func(t *testing.T) {
		f := setupFixture(t)
		require.Equal(t, session.StatusAnonymous, f.store.Current().Status)
		requireCredentialInvariant(t, f)
	})

	t.Run("stored session is restored", func(t *testing.T) {
		mem := memstore.New()
		userJSON, err := json.Marshal(testCredentials().User)
		require.NoError(t, err)
		require.NoError(t, mem.Set(storage.KeyToken, testToken))
		require.NoError(t, mem.Set(storage.KeyUser, string(userJSON)))

		store, err := session.NewStore(&fakeAuthAPI{}, mem)
		require.NoError(t, err)

		snapshot := store.Current()
		require.Equal(t, session.StatusAuthenticated, snapshot.Status)
		require.Equal(t, testToken, snapshot.Token)
		require.Equal(t, testUserEmail, snapshot.User.Email)
	})

	t.Run("token without user is corrupt and cleared", func(t *testing.T) {
		mem := memstore.New()
		require.NoError(t, mem.Set(storage.KeyToken, testToken))

		store, err := session.NewStore(&fakeAuthAPI{}, mem)
		require.NoError(t, err)
		require.Equal(t, session.StatusAnonymous, store.Current().Status)

		_, hasToken, err := mem.Get(storage.KeyToken)
		require.NoError(t, err)
		require.False(t, hasToken)
	})

	t.Run("unparsable stored user is corrupt and cleared", func(t *testing.T) {
		mem := memstore.New()
		require.NoError(t, mem.Set(storage.KeyToken, testToken))
		require.NoError(t, mem.Set(storage.KeyUser, "{not json"))

		store, err := session.NewStore(&fakeAuthAPI{}, mem)
		require.NoError(t, err)
		require.Equal(t, session.StatusAnonymous, store.Current().Status)
	})

	t.Run("expired JWT is discarded", func(t *testing.T) {
		expired := signedJWT(t, time.Now().Add(-time.Hour))
		mem := memstore.New()
		userJSON, err := json.Marshal(testCredentials().User)
		require.NoError(t, err)
		require.NoError(t, mem.Set(storage.KeyToken, expired))
		require.NoError(t, mem.Set(storage.KeyUser, string(userJSON)))

		store, err := session.NewStore(&fakeAuthAPI{}, mem)
		require.NoError(t, err)
		require.Equal(t, session.StatusAnonymous, store.Current().Status)
	})

	t.Run("unexpired JWT is kept", func(t *testing.T) {
		valid := signedJWT(t, time.Now().Add(time.Hour))
		mem := memstore.New()
		userJSON, err := json.Marshal(testCredentials().User)
		require.NoError(t, err)
		require.NoError(t, mem.Set(storage.KeyToken, valid))
		require.NoError(t, mem.Set(storage.KeyUser, string(userJSON)))

		store, err := session.NewStore(&fakeAuthAPI{}, mem)
		require.NoError(t, err)
		require.Equal(t, session.StatusAuthenticated, store.Current().Status)
	})
}

func TestLogin(t *testing.T) {
	t.Run("success persists credentials in memory and storage", func(t *testing.T) {
		f := setupFixture(t)

		require.NoError(t, f.store.Login(context.Background(), testUserEmail, testPassword))

		snapshot := f.store.Current()
		require.Equal(t, session.StatusAuthenticated, snapshot.Status)
		require.Equal(t, testToken, snapshot.Token)
		require.Equal(t, testUserName, snapshot.User.Name)
		require.Equal(t, "Login successful", snapshot.LastSuccess)

		storedToken, ok, err := f.storage.Get(storage.KeyToken)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, testToken, storedToken)
		requireCredentialInvariant(t, f)
	})

	t.Run("rejected credentials set error state and return the failure", func(t *testing.T) {
		f := setupFixture(t)
		f.authAPI.loginErr = &api.StatusError{Status: 401, Message: "Invalid credentials"}

		err := f.store.Login(context.Background(), testUserEmail, "bad")
		require.Error(t, err)

		snapshot := f.store.Current()
		require.Equal(t, session.StatusError, snapshot.Status)
		require.Equal(t, "Invalid credentials", snapshot.LastError)
		require.Nil(t, snapshot.User)
		requireCredentialInvariant(t, f)
	})

	t.Run("unreachable backend fails fast before the login request", func(t *testing.T) {
		f := setupFixture(t)
		f.authAPI.healthErr = api.ServerUnreachableErr

		err := f.store.Login(context.Background(), testUserEmail, testPassword)
		require.Error(t, err)
		require.Zero(t, f.authAPI.loginCalls, "login endpoint must not be called when the probe fails")

		snapshot := f.store.Current()
		require.Equal(t, session.StatusError, snapshot.Status)
		require.Equal(t, api.ServerUnreachableErr.Error(), snapshot.LastError)
	})

	t.Run("failure after a previous login leaves no residual credentials", func(t *testing.T) {
		f := setupFixture(t)
		require.NoError(t, f.store.Login(context.Background(), testUserEmail, testPassword))

		f.authAPI.loginErr = &api.StatusError{Status: 401, Message: "Invalid credentials"}
		require.Error(t, f.store.Login(context.Background(), testUserEmail, "bad"))

		requireCredentialInvariant(t, f)
		_, hasToken, err := f.storage.Get(storage.KeyToken)
		require.NoError(t, err)
		require.False(t, hasToken)
	})
}

func TestRegister(t *testing.T) {
	t.Run("success signs the new account in", func(t *testing.T) {
		f := setupFixture(t)

		require.NoError(t, f.store.Register(context.Background(), testUserName, testUserEmail, testPassword))

		snapshot := f.store.Current()
		require.Equal(t, session.StatusAuthenticated, snapshot.Status)
		require.Equal(t, "Registration successful", snapshot.LastSuccess)
		requireCredentialInvariant(t, f)
	})

	t.Run("failure follows the same contract as login", func(t *testing.T) {
		f := setupFixture(t)
		f.authAPI.registerErr = &api.StatusError{Status: 409, Message: "Email already registered"}

		err := f.store.Register(context.Background(), testUserName, testUserEmail, testPassword)
		require.Error(t, err)

		snapshot := f.store.Current()
		require.Equal(t, session.StatusError, snapshot.Status)
		require.Equal(t, "Email already registered", snapshot.LastError)
		requireCredentialInvariant(t, f)
	})
}

func TestLogout(t *testing.T) {
	f := setupFixture(t)
	require.NoError(t, f.store.Login(context.Background(), testUserEmail, testPassword))

	f.store.Logout()

	snapshot := f.store.Current()
	require.Equal(t, session.StatusAnonymous, snapshot.Status)
	require.Nil(t, snapshot.User)
	require.Empty(t, snapshot.Token)

	_, hasToken, err := f.storage.Get(storage.KeyToken)
	require.NoError(t, err)
	require.False(t, hasToken)
	_, hasUser, err := f.storage.Get(storage.KeyUser)
	require.NoError(t, err)
	require.False(t, hasUser)

	// logout is unconditional and idempotent
	f.store.Logout()
	require.Equal(t, session.StatusAnonymous, f.store.Current().Status)
}

func TestSubscribe(t *testing.T) {
	f := setupFixture(t)

	var statuses []session.Status
	unsubscribe := f.store.Subscribe(func(s session.Snapshot) {
		statuses = append(statuses, s.Status)
	})

	require.NoError(t, f.store.Login(context.Background(), testUserEmail, testPassword))
	require.Equal(t, []session.Status{session.StatusLoading, session.StatusAuthenticated}, statuses)

	unsubscribe()
	f.store.Logout()
	require.Len(t, statuses, 2, "no notifications after unsubscribe")
}

func TestTokenReader(t *testing.T) {
	f := setupFixture(t)

	_, ok := f.store.Token()
	require.False(t, ok)

	require.NoError(t, f.store.Login(context.Background(), testUserEmail, testPassword))
	token, ok := f.store.Token()
	require.True(t, ok)
	require.Equal(t, testToken, token)
}

func signedJWT(t *testing.T, expiry time.Time) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": testUserID,
		"exp": expiry.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}
