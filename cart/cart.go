// Package cart maintains the client's view of the current cart and
// applies quantity and removal mutations with server-confirmed results.
// The server is the source of truth: every successful mutation is
// followed by a full refetch, and totals are always derived from the
// latest snapshot rather than cached.
package cart

import "github.com/jrsteele09/go-storefront/api"

// Snapshot is an immutable view of the cart at one fetch.
type Snapshot struct {
	Lines []api.Line
}

// TotalItems sums the line quantities.
func (s Snapshot) TotalItems() int {
	total := 0
	for _, line := range s.Lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums the server-supplied line totals. Line totals are never
// recomputed from quantity × unit price here — money arithmetic stays on
// the server.
func (s Snapshot) TotalPrice() float64 {
	var total float64
	for _, line := range s.Lines {
		total += line.TotalPrice
	}
	return total
}

// Empty reports whether the cart has no lines.
func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0
}
