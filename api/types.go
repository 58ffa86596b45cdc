package api

// User is the authenticated identity returned by the auth endpoints and
// persisted by the session store.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Credentials is a successful authentication result. Token and User are
// always both set — a response missing either is rejected as malformed.
type Credentials struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Brand is one entry of the storefront's brand listing.
type Brand struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	LogoURL  string `json:"logo_url"`
	Featured bool   `json:"featured"`
}

// Scope identifies whose cart a request operates on. When Token is set the
// request authenticates as that user; otherwise SessionID scopes the cart
// to an anonymous visitor.
type Scope struct {
	Token     string
	SessionID string
}

// Line is the canonical cart line. The backend serves two divergent wire
// encodings (flat product fields vs. nested product/variant objects);
// both normalize to this one shape so nothing downstream branches on the
// wire format.
type Line struct {
	ID          string
	ProductID   string
	ProductName string
	ProductSKU  string
	ImageURL    string
	Variant     *Variant
	Quantity    int

	// UnitPrice and TotalPrice are the server's values. TotalPrice is
	// authoritative — it is never recomputed from Quantity × UnitPrice on
	// this side.
	UnitPrice  float64
	TotalPrice float64
}

// Variant is an optional product variant attached to a cart line.
type Variant struct {
	ID        string
	Name      string
	UnitPrice float64
}
