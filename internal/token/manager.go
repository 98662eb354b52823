package token

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"go-shop-client/internal/model"
	"go-shop-client/internal/store"
	"go-shop-client/pkg/apierror"
)

const refreshKey = "refresh"

// Manager owns the credential lifecycle: it is the only component allowed
// to read or write the credential store, and it guarantees that at most one
// refresh exchange is in flight at any time. Many refresh-token schemes are
// single-use, so a second concurrent exchange would consume a secret the
// first one already rotated.
type Manager struct {
	store       *store.CredentialStore
	baseURL     string
	http        *http.Client
	staleMargin time.Duration
	group       singleflight.Group

	now func() time.Time
}

func NewManager(credStore *store.CredentialStore, baseURL string, httpClient *http.Client, staleMargin time.Duration) *Manager {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if staleMargin <= 0 {
		staleMargin = 60 * time.Second
	}

	return &Manager{
		store:       credStore,
		baseURL:     baseURL,
		http:        httpClient,
		staleMargin: staleMargin,
		now:         time.Now,
	}
}

// HasCredential reports whether both secrets are present. This is the
// routing signal for the hybrid cart: it says "a session exists", not "the
// access secret is currently fresh".
func (m *Manager) HasCredential() bool {
	cred, err := m.store.Load()
	if err != nil {
		return false
	}

	return cred.Complete()
}

// IsAuthenticated is the route-guard view of HasCredential.
func (m *Manager) IsAuthenticated() bool {
	return m.HasCredential()
}

// IsStale reports whether the access secret needs a refresh before use.
// A credential counts as stale inside the safety margin before true expiry
// to absorb clock skew and in-flight request latency.
func (m *Manager) IsStale() bool {
	cred, err := m.store.Load()
	if err != nil || !cred.Complete() {
		return true
	}

	return m.staleAt(cred)
}

func (m *Manager) staleAt(cred model.Credential) bool {
	expiry := cred.ExpiresAt
	if expiry.IsZero() {
		// Older state files predate the stored expiry instant; fall back to
		// the exp claim carried by the access token itself.
		claimExpiry, ok := accessTokenExpiry(cred.AccessToken)
		if !ok {
			return true
		}
		expiry = claimExpiry
	}

	return !m.now().Before(expiry.Add(-m.staleMargin))
}

// Install atomically replaces the stored credential from a session returned
// by login, signup or refresh.
func (m *Manager) Install(session model.Session) error {
	cred := model.Credential{
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}

	if session.ExpiresIn > 0 {
		cred.ExpiresAt = m.now().Add(time.Duration(session.ExpiresIn) * time.Second)
	} else if expiry, ok := accessTokenExpiry(session.AccessToken); ok {
		cred.ExpiresAt = expiry
	}

	return m.store.Save(cred)
}

// Clear deletes the stored credential. Idempotent.
func (m *Manager) Clear() error {
	return m.store.Clear()
}

// EnsureFresh returns an access secret that is safe to attach to a request,
// refreshing first when the stored one is stale. Concurrent callers that
// observe staleness share a single refresh exchange and all receive its
// result.
func (m *Manager) EnsureFresh(ctx context.Context) (string, error) {
	cred, err := m.store.Load()
	if err != nil {
		return "", err
	}
	if !cred.Complete() {
		return "", apierror.Unauthenticated("no credential stored")
	}

	if !m.staleAt(cred) {
		return cred.AccessToken, nil
	}

	return m.refresh(ctx)
}

// ForceRefresh performs a refresh exchange regardless of apparent
// freshness. The dispatcher uses it when the remote API rejects a
// credential that still looked valid locally.
func (m *Manager) ForceRefresh(ctx context.Context) (string, error) {
	return m.refresh(ctx)
}

func (m *Manager) refresh(ctx context.Context) (string, error) {
	v, err, shared := m.group.Do(refreshKey, func() (interface{}, error) {
		return m.exchange(ctx)
	})
	if err != nil {
		return "", err
	}
	if shared {
		slog.Debug("token refresh shared with concurrent caller")
	}

	return v.(string), nil
}

// exchange presents the refresh secret to the remote API and installs the
// rotated pair. A rejected exchange is irrecoverable: the store is cleared
// and the caller gets an unauthenticated failure.
func (m *Manager) exchange(ctx context.Context) (string, error) {
	cred, err := m.store.Load()
	if err != nil {
		return "", err
	}
	if cred.RefreshToken == "" {
		_ = m.store.Clear()
		return "", apierror.Unauthenticated("no refresh secret stored")
	}

	body, err := json.Marshal(map[string]string{"refresh_token": cred.RefreshToken})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/auth/refresh", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		// Network failure, not a revoked secret: keep the credential so a
		// later attempt can retry the exchange.
		return "", apierror.Transient(fmt.Sprintf("refresh exchange: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_ = m.store.Clear()
		slog.Warn("refresh exchange rejected", "status", resp.StatusCode)
		return "", apierror.Unauthenticated("refresh secret rejected")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierror.Transient(fmt.Sprintf("refresh exchange: %v", err))
	}

	var session model.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}

	if err := m.Install(session); err != nil {
		return "", err
	}

	slog.Debug("credential refreshed")
	return session.AccessToken, nil
}

// accessTokenExpiry reads the exp claim without verifying the signature.
// The client never trusts the claim for authorization, only for scheduling
// the next refresh.
func accessTokenExpiry(accessToken string) (time.Time, bool) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(accessToken, claims); err != nil {
		return time.Time{}, false
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return time.Time{}, false
	}

	return expiry.Time, true
}
