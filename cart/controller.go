package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/storage"
)

var (
	// NonPositiveQuantityErr rejects a quantity below one at the call
	// site. Zero means removal, which is a distinct operation; a
	// non-positive quantity is never sent to the server.
	NonPositiveQuantityErr = errors.New("quantity must be at least 1")

	// ControllerClosedErr reports an operation on a closed controller.
	ControllerClosedErr = errors.New("cart controller is closed")
)

// CartAPI is the slice of the backend client the controller needs.
type CartAPI interface {
	FetchCart(ctx context.Context, scope api.Scope) ([]api.Line, error)
	UpdateItemQuantity(ctx context.Context, scope api.Scope, lineID string, quantity int) error
	RemoveItem(ctx context.Context, scope api.Scope, lineID string) error
}

// SessionReader exposes the current bearer token. The session store
// satisfies it; the controller reads the credential but owns no other
// part of the session.
type SessionReader interface {
	Token() (string, bool)
}

// Controller owns the cart snapshot for the active session. A fetch
// failure keeps the previously displayed snapshot — stale-but-visible
// beats blank-on-transient-failure.
type Controller struct {
	cartAPI  CartAPI
	store    storage.Storage
	sessions SessionReader
	log      zerolog.Logger
	newID    func() string

	mu        sync.RWMutex
	snapshot  Snapshot
	lastError string
	closed    bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// WithIDGenerator sets the anonymous session identifier generator
// (primarily for testing).
func WithIDGenerator(newID func() string) Option {
	return func(c *Controller) {
		c.newID = newID
	}
}

// NewController creates a cart controller. sessions may be nil, in which
// case every request is scoped by the anonymous session identifier.
func NewController(cartAPI CartAPI, store storage.Storage, sessions SessionReader, options ...Option) (*Controller, error) {
	if cartAPI == nil {
		return nil, errors.New("[NewController] cartAPI is required")
	}
	if store == nil {
		return nil, errors.New("[NewController] storage is required")
	}

	c := &Controller{
		cartAPI:  cartAPI,
		store:    store,
		sessions: sessions,
		log:      zerolog.Nop(),
		newID:    uuid.NewString,
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Snapshot returns the last successfully fetched cart.
func (c *Controller) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// LastError returns the message of the last failed operation, cleared on
// the next success.
func (c *Controller) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Refresh fetches the cart from the server and replaces the snapshot. On
// failure the previous snapshot stays visible and only the error message
// changes.
func (c *Controller) Refresh(ctx context.Context) error {
	scope, err := c.scope()
	if err != nil {
		c.recordFailure(err)
		return errors.Wrap(err, "[Controller.Refresh] resolve scope")
	}

	lines, err := c.cartAPI.FetchCart(ctx, scope)
	if err != nil {
		c.recordFailure(err)
		return errors.Wrap(err, "[Controller.Refresh]")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		// The owning view unmounted while the fetch was in flight;
		// applying the result now would update a dead view.
		return ControllerClosedErr
	}
	c.snapshot = Snapshot{Lines: lines}
	c.lastError = ""
	return nil
}

// UpdateQuantity sets a line's quantity and refetches the cart so the
// displayed totals are the server's, never a local patch.
func (c *Controller) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity < 1 {
		return NonPositiveQuantityErr
	}

	scope, err := c.scope()
	if err != nil {
		c.recordFailure(err)
		return errors.Wrap(err, "[Controller.UpdateQuantity] resolve scope")
	}

	if err := c.cartAPI.UpdateItemQuantity(ctx, scope, lineID, quantity); err != nil {
		c.recordFailure(err)
		return errors.Wrap(err, "[Controller.UpdateQuantity]")
	}

	return c.Refresh(ctx)
}

// RemoveLine deletes a line and refetches the cart.
func (c *Controller) RemoveLine(ctx context.Context, lineID string) error {
	scope, err := c.scope()
	if err != nil {
		c.recordFailure(err)
		return errors.Wrap(err, "[Controller.RemoveLine] resolve scope")
	}

	if err := c.cartAPI.RemoveItem(ctx, scope, lineID); err != nil {
		c.recordFailure(err)
		return errors.Wrap(err, "[Controller.RemoveLine]")
	}

	return c.Refresh(ctx)
}

// Close marks the controller as unmounted. In-flight operations finish
// but their results are discarded instead of applied.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// scope resolves whose cart requests operate on: the bearer token when a
// user is signed in, otherwise the persisted anonymous session
// identifier, created lazily on first use. An identifier that is already
// stored is authoritative and never overwritten.
func (c *Controller) scope() (api.Scope, error) {
	if c.sessions != nil {
		if token, ok := c.sessions.Token(); ok {
			return api.Scope{Token: token}, nil
		}
	}

	sessionID, err := c.store.GetOrSet(storage.KeySessionID, c.newID())
	if err != nil {
		return api.Scope{}, errors.Wrap(err, "[Controller.scope] session identifier")
	}
	return api.Scope{SessionID: sessionID}, nil
}

// recordFailure keeps the stale snapshot and records the classified error
// message, unless the controller was closed mid-flight.
func (c *Controller) recordFailure(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.lastError = api.ErrorMessage(err)
	c.log.Debug().Err(err).Msg("cart operation failed")
}
