package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/internal/utils"
	"github.com/jrsteele09/go-storefront/storage"
)

const (
	loginSuccessMsg    = "Login successful"
	registerSuccessMsg = "Registration successful"
)

// AuthAPI is the slice of the backend client the store needs.
type AuthAPI interface {
	Health(ctx context.Context) error
	Login(ctx context.Context, email, password string) (api.Credentials, error)
	Register(ctx context.Context, name, email, password string) (api.Credentials, error)
}

// Store is the single authority for the current session. All mutation goes
// through Login, Register, and Logout; everything else reads snapshots.
type Store struct {
	authAPI AuthAPI
	store   storage.Storage
	log     zerolog.Logger
	nowTime func() time.Time

	mu          sync.RWMutex
	snapshot    Snapshot
	subscribers map[int]func(Snapshot)
	nextSubID   int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Store) {
		s.log = log
	}
}

// WithNowTime sets the now time function (primarily for testing token
// expiry handling).
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Store) {
		s.nowTime = nowFunc
	}
}

// NewStore creates the session store and immediately rehydrates it from
// durable storage: a stored token/user pair makes the session
// authenticated, anything else (absent, partial, corrupt, or expired)
// makes it anonymous with the stale keys cleared.
func NewStore(authAPI AuthAPI, store storage.Storage, options ...Option) (*Store, error) {
	if authAPI == nil {
		return nil, errors.New("[NewStore] authAPI is required")
	}
	if store == nil {
		return nil, errors.New("[NewStore] storage is required")
	}

	s := &Store{
		authAPI:     authAPI,
		store:       store,
		log:         zerolog.Nop(),
		nowTime:     time.Now,
		snapshot:    Snapshot{Status: StatusUninitialized},
		subscribers: make(map[int]func(Snapshot)),
	}
	for _, opt := range options {
		opt(s)
	}

	s.rehydrate()
	return s, nil
}

// Current returns the session snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Subscribe registers fn to be called after every committed transition and
// returns its unsubscribe function. This is how identity-dependent views
// learn about a new session without a full reload.
func (s *Store) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// Login authenticates against the backend. It probes /api/health first so
// a systemic outage fails fast with a distinct "server unreachable"
// message instead of a confusing credential error. The failure is both
// recorded on the snapshot (LastError) and returned, so a submitted form
// can stay open.
func (s *Store) Login(ctx context.Context, email, password string) error {
	s.beginAttempt()

	if err := s.authAPI.Health(ctx); err != nil {
		s.failAttempt(err)
		return errors.Wrap(err, "[Store.Login] health probe")
	}

	creds, err := s.authAPI.Login(ctx, email, password)
	if err != nil {
		s.failAttempt(err)
		return errors.Wrap(err, "[Store.Login]")
	}

	if err := s.commitCredentials(creds, loginSuccessMsg); err != nil {
		s.failAttempt(err)
		return errors.Wrap(err, "[Store.Login] persist credentials")
	}
	return nil
}

// Register creates an account and signs it in. Same contract as Login —
// the failure is recorded on the snapshot and returned — but without the
// health probe.
func (s *Store) Register(ctx context.Context, name, email, password string) error {
	s.beginAttempt()

	creds, err := s.authAPI.Register(ctx, name, email, password)
	if err != nil {
		s.failAttempt(err)
		return errors.Wrap(err, "[Store.Register]")
	}

	if err := s.commitCredentials(creds, registerSuccessMsg); err != nil {
		s.failAttempt(err)
		return errors.Wrap(err, "[Store.Register] persist credentials")
	}
	return nil
}

// Logout clears the session unconditionally. It never fails: a storage
// error is logged and the in-memory session still becomes anonymous.
func (s *Store) Logout() {
	s.mu.Lock()
	s.clearStoredCredentials()
	s.snapshot = Snapshot{Status: StatusAnonymous}
	s.mu.Unlock()

	s.notify()
}

// rehydrate restores the session from durable storage on construction.
func (s *Store) rehydrate() {
	s.mu.Lock()

	token, userJSON, ok := s.readStoredCredentials()
	if !ok {
		s.clearStoredCredentials()
		s.snapshot = Snapshot{Status: StatusAnonymous}
		s.mu.Unlock()
		s.notify()
		return
	}

	var user api.User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil || user.ID == "" || tokenExpired(token, s.nowTime()) {
		s.log.Debug().Msg("discarding stale stored session")
		s.clearStoredCredentials()
		s.snapshot = Snapshot{Status: StatusAnonymous}
		s.mu.Unlock()
		s.notify()
		return
	}

	s.snapshot = Snapshot{User: utils.Ptr(user), Token: token, Status: StatusAuthenticated}
	s.mu.Unlock()
	s.notify()
}

// readStoredCredentials returns the stored token/user pair. ok is false
// unless BOTH are present — one without the other violates the session
// invariant and is treated as corrupt.
func (s *Store) readStoredCredentials() (token, userJSON string, ok bool) {
	token, hasToken, err := s.store.Get(storage.KeyToken)
	if err != nil {
		s.log.Error().Err(err).Msg("read stored token")
		return "", "", false
	}
	userJSON, hasUser, err := s.store.Get(storage.KeyUser)
	if err != nil {
		s.log.Error().Err(err).Msg("read stored user")
		return "", "", false
	}
	if !hasToken || !hasUser || token == "" || userJSON == "" {
		return "", "", false
	}
	return token, userJSON, true
}

// beginAttempt moves the session to loading, clearing any previous
// outcome.
func (s *Store) beginAttempt() {
	s.mu.Lock()
	s.snapshot.Status = StatusLoading
	s.snapshot.LastError = ""
	s.snapshot.LastSuccess = ""
	s.mu.Unlock()

	s.notify()
}

// failAttempt clears any partial credentials from memory and storage and
// records the classified failure.
func (s *Store) failAttempt(err error) {
	message := api.ErrorMessage(err)

	s.mu.Lock()
	s.clearStoredCredentials()
	s.snapshot = Snapshot{Status: StatusError, LastError: message}
	s.mu.Unlock()

	s.log.Debug().Err(err).Msg("auth attempt failed")
	s.notify()
}

// commitCredentials persists the credentials and promotes the session to
// authenticated. Storage is written before memory so a persistence failure
// leaves no half-committed session.
func (s *Store) commitCredentials(creds api.Credentials, successMsg string) error {
	userJSON, err := json.Marshal(creds.User)
	if err != nil {
		return errors.Wrap(err, "[Store.commitCredentials] marshal user")
	}

	s.mu.Lock()
	if err := s.store.Set(storage.KeyToken, creds.Token); err != nil {
		s.clearStoredCredentials()
		s.mu.Unlock()
		return errors.Wrap(err, "[Store.commitCredentials] store token")
	}
	if err := s.store.Set(storage.KeyUser, string(userJSON)); err != nil {
		s.clearStoredCredentials()
		s.mu.Unlock()
		return errors.Wrap(err, "[Store.commitCredentials] store user")
	}

	s.snapshot = Snapshot{
		User:        utils.Ptr(creds.User),
		Token:       creds.Token,
		Status:      StatusAuthenticated,
		LastSuccess: successMsg,
	}
	s.mu.Unlock()

	s.notify()
	return nil
}

// clearStoredCredentials removes both credential keys. Callers must hold
// the lock.
func (s *Store) clearStoredCredentials() {
	if err := s.store.Delete(storage.KeyToken); err != nil {
		s.log.Error().Err(err).Msg("delete stored token")
	}
	if err := s.store.Delete(storage.KeyUser); err != nil {
		s.log.Error().Err(err).Msg("delete stored user")
	}
}

// notify calls subscribers with the current snapshot, outside the lock so
// a callback may read the store.
func (s *Store) notify() {
	s.mu.RLock()
	snapshot := s.snapshot
	fns := make([]func(Snapshot), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}

// Token returns the current bearer token, satisfying the narrow reader
// interface the cart controller scopes its requests with.
func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Token, s.snapshot.Token != ""
}
