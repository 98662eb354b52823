package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-shop-client/internal/model"
	"go-shop-client/internal/store"
	"go-shop-client/internal/token"
	"go-shop-client/pkg/apierror"
)

type fixture struct {
	client *Client
	tokens *token.Manager
	store  *store.CredentialStore
}

func newFixture(t *testing.T, srv *httptest.Server) *fixture {
	t.Helper()

	credStore, err := store.NewCredentialStore(t.TempDir(), "")
	require.NoError(t, err)

	tokens := token.NewManager(credStore, srv.URL, srv.Client(), time.Minute)
	client := NewClient(srv.URL, srv.Client(), tokens, 1000, 1000)

	return &fixture{client: client, tokens: tokens, store: credStore}
}

func freshCredential() model.Credential {
	return model.Credential{
		AccessToken:  "valid-access",
		RefreshToken: "valid-refresh",
		ExpiresAt:    time.Now().Add(10 * time.Minute),
	}
}

func TestClient_Dispatch(t *testing.T) {
	t.Run("decodes response body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
			_ = json.NewEncoder(w).Encode(model.Message{Message: "pong"})
		}))
		defer srv.Close()

		f := newFixture(t, srv)

		var out model.Message
		require.NoError(t, f.client.Get(context.Background(), "/ping", nil, &out, false))
		assert.Equal(t, "pong", out.Message)
	})

	t.Run("attaches bearer credential when auth is required", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer valid-access", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		f := newFixture(t, srv)
		require.NoError(t, f.store.Save(freshCredential()))

		require.NoError(t, f.client.Delete(context.Background(), "/cart", nil, true))
	})

	t.Run("empty body yields unit result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		f := newFixture(t, srv)

		var out model.Message
		require.NoError(t, f.client.Get(context.Background(), "/empty", nil, &out, false))
		assert.Empty(t, out.Message)
	})

	t.Run("validation failure is surfaced verbatim and never retried", func(t *testing.T) {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "quantity exceeds stock"})
		}))
		defer srv.Close()

		f := newFixture(t, srv)
		require.NoError(t, f.store.Save(freshCredential()))

		err := f.client.Post(context.Background(), "/cart/items", model.CartLineCreate{ProductID: "p", Quantity: 99}, nil, true)
		require.Error(t, err)
		assert.True(t, apierror.IsValidation(err))
		assert.Contains(t, err.Error(), "quantity exceeds stock")
		assert.Equal(t, int64(1), hits.Load())
	})

	t.Run("server failure is transient and never retried", func(t *testing.T) {
		var hits atomic.Int64
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		f := newFixture(t, srv)
		require.NoError(t, f.store.Save(freshCredential()))

		err := f.client.Get(context.Background(), "/cart", nil, nil, true)
		assert.True(t, apierror.IsTransient(err))
		assert.Equal(t, int64(1), hits.Load())
	})

	t.Run("transport failure is transient", func(t *testing.T) {
		credStore, err := store.NewCredentialStore(t.TempDir(), "")
		require.NoError(t, err)

		tokens := token.NewManager(credStore, "http://127.0.0.1:1", &http.Client{Timeout: time.Second}, time.Minute)
		client := NewClient("http://127.0.0.1:1", &http.Client{Timeout: time.Second}, tokens, 1000, 1000)

		getErr := client.Get(context.Background(), "/products", nil, nil, false)
		assert.True(t, apierror.IsTransient(getErr))
	})
}

// An authorization failure despite a fresh-looking credential gets exactly
// one refresh-and-retry cycle; a second failure surfaces unauthenticated
// and clears the store.
func TestClient_RetryBound(t *testing.T) {
	t.Run("retry succeeds after refresh", func(t *testing.T) {
		var refreshCalls, cartCalls atomic.Int64

		r := chi.NewRouter()
		r.Post("/auth/refresh", func(w http.ResponseWriter, req *http.Request) {
			refreshCalls.Add(1)
			_ = json.NewEncoder(w).Encode(model.Session{
				AccessToken:  "rotated-access",
				RefreshToken: "rotated-refresh",
				ExpiresIn:    3600,
			})
		})
		r.Get("/cart", func(w http.ResponseWriter, req *http.Request) {
			cartCalls.Add(1)
			if req.Header.Get("Authorization") != "Bearer rotated-access" {
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{"detail": "token revoked"})
				return
			}
			_ = json.NewEncoder(w).Encode(model.ServerCart{})
		})

		srv := httptest.NewServer(r)
		defer srv.Close()

		f := newFixture(t, srv)
		require.NoError(t, f.store.Save(freshCredential()))

		var cart model.ServerCart
		require.NoError(t, f.client.Get(context.Background(), "/cart", nil, &cart, true))
		assert.Equal(t, int64(1), refreshCalls.Load())
		assert.Equal(t, int64(2), cartCalls.Load())
		assert.True(t, f.tokens.HasCredential())
	})

	t.Run("second rejection clears credential", func(t *testing.T) {
		var refreshCalls, cartCalls atomic.Int64

		r := chi.NewRouter()
		r.Post("/auth/refresh", func(w http.ResponseWriter, req *http.Request) {
			refreshCalls.Add(1)
			_ = json.NewEncoder(w).Encode(model.Session{
				AccessToken:  "rotated-access",
				RefreshToken: "rotated-refresh",
				ExpiresIn:    3600,
			})
		})
		r.Get("/cart", func(w http.ResponseWriter, req *http.Request) {
			cartCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"detail": "session invalidated"})
		})

		srv := httptest.NewServer(r)
		defer srv.Close()

		f := newFixture(t, srv)
		require.NoError(t, f.store.Save(freshCredential()))

		err := f.client.Get(context.Background(), "/cart", nil, nil, true)
		require.Error(t, err)
		assert.True(t, apierror.IsUnauthenticated(err))
		assert.Equal(t, int64(1), refreshCalls.Load())
		assert.Equal(t, int64(2), cartCalls.Load())
		assert.False(t, f.tokens.HasCredential())
	})

	t.Run("failed refresh surfaces unauthenticated without retry", func(t *testing.T) {
		var cartCalls atomic.Int64

		r := chi.NewRouter()
		r.Post("/auth/refresh", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})
		r.Get("/cart", func(w http.ResponseWriter, req *http.Request) {
			cartCalls.Add(1)
			w.WriteHeader(http.StatusUnauthorized)
		})

		srv := httptest.NewServer(r)
		defer srv.Close()

		f := newFixture(t, srv)
		require.NoError(t, f.store.Save(freshCredential()))

		err := f.client.Get(context.Background(), "/cart", nil, nil, true)
		assert.True(t, apierror.IsUnauthenticated(err))
		assert.Equal(t, int64(1), cartCalls.Load())
		assert.False(t, f.tokens.HasCredential())
	})
}
