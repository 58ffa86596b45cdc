// Package app wires the storefront client together exactly once at
// application start: storage, API client, session store, and the cart and
// brand controllers. Nothing here is a mutable global — consumers receive
// the App and pass its parts down explicitly.
package app

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-storefront/api"
	"github.com/jrsteele09/go-storefront/brands"
	"github.com/jrsteele09/go-storefront/cart"
	"github.com/jrsteele09/go-storefront/internal/config"
	"github.com/jrsteele09/go-storefront/session"
	"github.com/jrsteele09/go-storefront/storage"
	"github.com/jrsteele09/go-storefront/storage/filestore"
	"github.com/jrsteele09/go-storefront/storage/memstore"
)

const storeFileName = "storefront.json"

// App holds the client's long-lived components for the life of the
// process.
type App struct {
	Config  config.Config
	Storage storage.Storage
	API     *api.Client
	Session *session.Store
	Cart    *cart.Controller
	Brands  *brands.Controller
}

// New builds the application container. The session store rehydrates from
// durable storage during construction, so the App starts with the
// previous session already restored.
func New(cfg config.Config, log zerolog.Logger) (*App, error) {
	store, err := newStorage(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] storage")
	}

	apiOptions := []api.Option{
		api.WithTimeout(cfg.RequestTimeout),
		api.WithLogger(log.With().Str("component", "api").Logger()),
	}
	if cfg.Tracing {
		apiOptions = append(apiOptions, api.WithTracing())
	}
	apiClient, err := api.New(cfg.APIBaseURL, apiOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] api client")
	}

	sessionStore, err := session.NewStore(apiClient, store,
		session.WithLogger(log.With().Str("component", "session").Logger()))
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] session store")
	}

	cartController, err := cart.NewController(apiClient, store, sessionStore,
		cart.WithLogger(log.With().Str("component", "cart").Logger()))
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] cart controller")
	}

	brandController, err := brands.NewController(apiClient,
		brands.WithLogger(log.With().Str("component", "brands").Logger()))
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] brand controller")
	}

	return &App{
		Config:  cfg,
		Storage: store,
		API:     apiClient,
		Session: sessionStore,
		Cart:    cartController,
		Brands:  brandController,
	}, nil
}

// Close tears down the controllers. The session store is not torn down —
// it persists for the life of the process and is only superseded by the
// next start's rehydration.
func (a *App) Close() {
	a.Cart.Close()
}

func newStorage(cfg config.Config) (storage.Storage, error) {
	if cfg.Ephemeral {
		return memstore.New(), nil
	}
	return filestore.New(filepath.Join(cfg.DataFolder, storeFileName))
}
