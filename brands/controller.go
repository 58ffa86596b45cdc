// Package brands is the read-only controller behind the brand listing
// dropdown. No mutations and no session scoping — just a fetch with the
// same stale-on-error behavior as the cart.
package brands

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront/api"
)

// BrandAPI is the slice of the backend client the controller needs.
type BrandAPI interface {
	Brands(ctx context.Context) ([]api.Brand, error)
}

// Controller holds the brand listing for display.
type Controller struct {
	brandAPI BrandAPI
	log      zerolog.Logger

	mu        sync.RWMutex
	brands    []api.Brand
	lastError string
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// NewController creates a brand listing controller.
func NewController(brandAPI BrandAPI, options ...Option) (*Controller, error) {
	if brandAPI == nil {
		return nil, errors.New("[brands.NewController] brandAPI is required")
	}

	c := &Controller{
		brandAPI: brandAPI,
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

// Brands returns the last successfully fetched listing.
func (c *Controller) Brands() []api.Brand {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.brands
}

// LastError returns the message of the last failed fetch, cleared on the
// next success.
func (c *Controller) LastError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

// Refresh fetches the brand listing. On failure the previous listing
// stays visible.
func (c *Controller) Refresh(ctx context.Context) error {
	brands, err := c.brandAPI.Brands(ctx)
	if err != nil {
		c.mu.Lock()
		c.lastError = api.ErrorMessage(err)
		c.mu.Unlock()
		c.log.Debug().Err(err).Msg("brand listing fetch failed")
		return errors.Wrap(err, "[Controller.Refresh]")
	}

	c.mu.Lock()
	c.brands = brands
	c.lastError = ""
	c.mu.Unlock()
	return nil
}
