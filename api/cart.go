package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-storefront/internal/utils"
)

// FetchCart returns the cart scoped by scope via GET /api/cart, normalized
// to canonical lines. Two backend variants exist in the wild: one returns a
// bare array of lines, the other wraps them as {"items": [...]}. Both are
// accepted.
func (c *Client) FetchCart(ctx context.Context, scope Scope) ([]Line, error) {
	var raw json.RawMessage
	if err := c.doJSON(ctx, http.MethodGet, "/api/cart", &scope, nil, &raw); err != nil {
		return nil, err
	}

	wireLines, err := decodeCartBody(raw)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(wireLines))
	for _, wl := range wireLines {
		line, err := wl.normalize()
		if err != nil {
			return nil, err
		}
		// A zero-quantity line is an artifact of a removal in flight;
		// never surface it.
		if line.Quantity < 1 {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItemQuantity sets a line's quantity via PUT /api/cart/items/{id}.
// The server recomputes the line total; callers refetch rather than trust
// the mutation response.
func (c *Client) UpdateItemQuantity(ctx context.Context, scope Scope, lineID string, quantity int) error {
	path := fmt.Sprintf("/api/cart/items/%s", lineID)
	return c.doJSON(ctx, http.MethodPut, path, &scope, updateQuantityRequest{Quantity: quantity}, nil)
}

// RemoveItem deletes a cart line via DELETE /api/cart/items/{id}.
func (c *Client) RemoveItem(ctx context.Context, scope Scope, lineID string) error {
	path := fmt.Sprintf("/api/cart/items/%s", lineID)
	return c.doJSON(ctx, http.MethodDelete, path, &scope, nil, nil)
}

// decodeCartBody accepts either cart body shape and returns the raw wire
// lines.
func decodeCartBody(raw json.RawMessage) ([]wireLine, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var wireLines []wireLine
		if err := json.Unmarshal(trimmed, &wireLines); err != nil {
			return nil, errors.Wrapf(MalformedResponseErr, "[decodeCartBody] decode array body: %v", err)
		}
		return wireLines, nil
	}

	var wrapped struct {
		Items []wireLine `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, errors.Wrapf(MalformedResponseErr, "[decodeCartBody] decode wrapped body: %v", err)
	}
	return wrapped.Items, nil
}

// flexID tolerates identifiers arriving as JSON numbers or strings.
type flexID string

func (id *flexID) UnmarshalJSON(data []byte) error {
	if len(data) == 0 || string(data) == "null" {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*id = flexID(n.String())
	return nil
}

// wireLine is the union of both observed cart line encodings: flat
// product_* fields on the line itself, or nested product/variant objects.
type wireLine struct {
	ID          flexID  `json:"id"`
	ProductID   flexID  `json:"product_id"`
	ProductName string  `json:"product_name"`
	ProductSKU  string  `json:"product_sku"`
	VariantID   flexID  `json:"variant_id"`
	VariantName *string `json:"variant_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`

	Product *wireProduct `json:"product"`
	Variant *wireVariant `json:"variant"`
}

type wireProduct struct {
	ID       flexID `json:"id"`
	Name     string `json:"name"`
	SKU      string `json:"sku"`
	ImageURL string `json:"image_url"`
}

type wireVariant struct {
	ID        flexID  `json:"id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
}

// normalize folds either encoding into the canonical Line, preferring the
// nested objects when both are present.
func (wl wireLine) normalize() (Line, error) {
	if wl.ID == "" {
		return Line{}, errors.Wrap(MalformedResponseErr, "[wireLine.normalize] line has no id")
	}

	line := Line{
		ID:          string(wl.ID),
		ProductID:   string(wl.ProductID),
		ProductName: wl.ProductName,
		ProductSKU:  wl.ProductSKU,
		Quantity:    wl.Quantity,
		UnitPrice:   wl.UnitPrice,
		TotalPrice:  wl.TotalPrice,
	}

	if wl.Product != nil {
		if line.ProductID == "" {
			line.ProductID = string(wl.Product.ID)
		}
		if line.ProductName == "" {
			line.ProductName = wl.Product.Name
		}
		if line.ProductSKU == "" {
			line.ProductSKU = wl.Product.SKU
		}
		line.ImageURL = wl.Product.ImageURL
	}

	switch {
	case wl.Variant != nil:
		unitPrice := wl.Variant.UnitPrice
		if unitPrice == 0 {
			unitPrice = wl.UnitPrice
		}
		line.Variant = &Variant{
			ID:        string(wl.Variant.ID),
			Name:      wl.Variant.Name,
			UnitPrice: unitPrice,
		}
	case utils.Value(wl.VariantName) != "":
		line.Variant = &Variant{
			ID:        string(wl.VariantID),
			Name:      utils.Value(wl.VariantName),
			UnitPrice: wl.UnitPrice,
		}
	}

	return line, nil
}
