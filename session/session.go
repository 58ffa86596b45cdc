// Package session owns the authenticated-user identity for the running
// client: who is signed in, their bearer token, and the outcome of the
// last auth operation. One Store is created at application start,
// rehydrates itself from durable storage, and is the only writer of the
// token and user storage keys.
package session

import "github.com/jrsteele09/go-storefront/api"

// Status is the session lifecycle state.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
	StatusError         Status = "error"
)

// Snapshot is a point-in-time view of the session. User and Token are
// always both set or both empty.
type Snapshot struct {
	User        *api.User
	Token       string
	Status      Status
	LastError   string
	LastSuccess string
}

// Authenticated reports whether the snapshot carries a signed-in user.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated && s.User != nil && s.Token != ""
}
