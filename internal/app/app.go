package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"go-shop-client/internal/api"
	"go-shop-client/internal/cart"
	"go-shop-client/internal/config"
	"go-shop-client/internal/event"
	"go-shop-client/internal/model"
	"go-shop-client/internal/store"
	"go-shop-client/internal/token"
	"go-shop-client/pkg/apierror"
)

// App wires the data-access layer together: config, local stores, token
// manager, dispatcher, endpoint wrappers and the hybrid cart facade. It is
// the only place that knows about the session boundary - the moment a
// credential is installed, the guest cart is merged into the server cart.
type App struct {
	Config     *config.Config
	Tokens     *token.Manager
	Auth       *api.AuthAPI
	Users      *api.UserAPI
	Products   *api.ProductsAPI
	Categories *api.CategoriesAPI
	Orders     *api.OrdersAPI
	Reviews    *api.ReviewsAPI
	Cart       *cart.Facade
	Bus        *event.InMemoryBus
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return NewWithConfig(cfg)
}

func NewWithConfig(cfg *config.Config) (*App, error) {
	credStore, err := store.NewCredentialStore(cfg.StateDir, cfg.StateEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credential store: %w", err)
	}

	guestStore, err := store.NewGuestCartStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize guest cart store: %w", err)
	}

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	tokens := token.NewManager(credStore, cfg.APIBaseURL, httpClient, cfg.TokenStaleMargin)
	client := api.NewClient(cfg.APIBaseURL, httpClient, tokens, cfg.RateLimitRPS, cfg.RateLimitBurst)

	bus := event.NewBus()
	gateway := cart.NewServerGateway(client)

	return &App{
		Config:     cfg,
		Tokens:     tokens,
		Auth:       api.NewAuthAPI(client),
		Users:      api.NewUserAPI(client),
		Products:   api.NewProductsAPI(client),
		Categories: api.NewCategoriesAPI(client),
		Orders:     api.NewOrdersAPI(client),
		Reviews:    api.NewReviewsAPI(client),
		Cart:       cart.NewFacade(tokens, guestStore, gateway, bus),
		Bus:        bus,
	}, nil
}

// Login authenticates, installs the credential, then carries the guest cart
// into the account. A merge failure is logged but never fails the login -
// the user is signed in either way and the cart self-corrects on the next
// fetch.
func (a *App) Login(ctx context.Context, email string, password string) (model.User, error) {
	resp, err := a.Auth.Login(ctx, model.LoginRequest{Email: email, Password: password})
	if err != nil {
		return model.User{}, err
	}

	return a.establishSession(ctx, resp)
}

// Signup registers a new account and establishes the session the same way
// login does, merge included.
func (a *App) Signup(ctx context.Context, req model.SignupRequest) (model.User, error) {
	resp, err := a.Auth.Signup(ctx, req)
	if err != nil {
		return model.User{}, err
	}

	return a.establishSession(ctx, resp)
}

func (a *App) establishSession(ctx context.Context, resp model.AuthResponse) (model.User, error) {
	if err := a.Tokens.Install(resp.Session); err != nil {
		return model.User{}, fmt.Errorf("failed to store credential: %w", err)
	}

	if _, err := a.Cart.MergeOnLogin(ctx); err != nil {
		slog.Warn("cart merge after login failed", "error", err)
	}

	a.Bus.Emit(event.TypeLoggedIn, resp.User)
	return resp.User, nil
}

// Logout tells the remote API to drop the session, then clears the local
// credential no matter what the API said.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Auth.Logout(ctx); err != nil {
		slog.Debug("remote logout failed", "error", err)
	}

	if err := a.Tokens.Clear(); err != nil {
		return err
	}

	a.Bus.Emit(event.TypeLoggedOut, nil)
	return nil
}

// Bootstrap restores a previous session at startup: when a credential
// exists it is refreshed if stale and the profile is fetched. An invalid
// credential is cleared silently and a nil user returned.
func (a *App) Bootstrap(ctx context.Context) (*model.User, error) {
	if !a.Tokens.HasCredential() {
		return nil, nil
	}

	if _, err := a.Tokens.EnsureFresh(ctx); err != nil {
		if apierror.IsUnauthenticated(err) {
			a.Bus.Emit(event.TypeSessionExpired, nil)
			return nil, nil
		}
		return nil, err
	}

	user, err := a.Users.Profile(ctx)
	if err != nil {
		if apierror.IsUnauthenticated(err) {
			a.Bus.Emit(event.TypeSessionExpired, nil)
			return nil, nil
		}
		return nil, err
	}

	return &user, nil
}
