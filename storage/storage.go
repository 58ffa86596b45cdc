// Package storage defines the durable client-side key/value store that
// survives application restarts — the equivalent of a browser's
// localStorage for this client. The session store persists the bearer
// token and user identity here; the cart controller persists the
// anonymous session identifier.
package storage

// Well-known keys. Consumers must use these constants rather than raw
// strings so that Logout and rehydration agree on what to clear.
const (
	KeyToken     = "token"
	KeyUser      = "user"
	KeySessionID = "sessionId"
)

// Storage is the persistence interface for client state.
// Implementations must be safe for concurrent use.
type Storage interface {
	// Get returns the stored value for key, and whether it was present.
	Get(key string) (string, bool, error)

	// Set stores value under key, replacing any existing value.
	Set(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// GetOrSet stores value under key only if the key is absent, and
	// returns the value that is now stored. An existing value is
	// authoritative and is never overwritten.
	GetOrSet(key, value string) (string, error)
}
