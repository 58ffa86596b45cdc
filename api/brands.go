package api

import (
	"context"
	"net/http"
)

// Brands lists the storefront's brands via GET /api/brands.
func (c *Client) Brands(ctx context.Context) ([]Brand, error) {
	var brands []Brand
	if err := c.doJSON(ctx, http.MethodGet, "/api/brands", nil, nil, &brands); err != nil {
		return nil, err
	}
	return brands, nil
}
