package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"go-shop-client/internal/token"
	"go-shop-client/pkg/apierror"
)

// Client is the request dispatcher. Every outbound call goes through it: it
// attaches the bearer credential when required, triggers the token manager
// on staleness, retries exactly once after an authorization failure, and
// normalizes every failure into an *apierror.APIError.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *token.Manager
	limiter *rate.Limiter
}

func NewClient(baseURL string, httpClient *http.Client, tokens *token.Manager, rps float64, burst int) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = int(rps) * 2
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tokens:  tokens,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any, requiresAuth bool) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out, requiresAuth)
}

func (c *Client) Post(ctx context.Context, path string, body any, out any, requiresAuth bool) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out, requiresAuth)
}

func (c *Client) Put(ctx context.Context, path string, body any, out any, requiresAuth bool) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out, requiresAuth)
}

func (c *Client) Delete(ctx context.Context, path string, out any, requiresAuth bool) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, out, requiresAuth)
}

// remoteError is the error body shape the commerce API uses.
type remoteError struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any, requiresAuth bool) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apierror.Transient(fmt.Sprintf("rate limit wait: %v", err))
	}

	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = data
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	accessToken := ""
	if requiresAuth {
		tok, err := c.tokens.EnsureFresh(ctx)
		if err != nil {
			return err
		}
		accessToken = tok
	}

	requestID := uuid.NewString()
	status, data, err := c.send(ctx, method, target, payload, accessToken, requestID)
	if err != nil {
		return err
	}

	// The remote API may reject a credential that still looked fresh
	// locally (clock skew, server-side revocation). Exactly one
	// refresh-and-retry cycle is permitted; a second rejection means the
	// session is gone.
	if status == http.StatusUnauthorized && requiresAuth {
		tok, refreshErr := c.tokens.ForceRefresh(ctx)
		if refreshErr != nil {
			return refreshErr
		}

		status, data, err = c.send(ctx, method, target, payload, tok, requestID)
		if err != nil {
			return err
		}

		if status == http.StatusUnauthorized {
			_ = c.tokens.Clear()
			slog.Warn("request rejected twice with fresh credential", "method", method, "path", path, "request_id", requestID)
			return apierror.Unauthenticated(describeRemoteError(data))
		}
	}

	if status < 200 || status >= 300 {
		return apierror.FromStatus(status, describeRemoteError(data))
	}

	// Confirmation-only operations answer with no body.
	if out == nil || status == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response for %s %s: %w", method, path, err)
	}

	return nil
}

func (c *Client) send(ctx context.Context, method string, target string, payload []byte, accessToken string, requestID string) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return 0, nil, err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, apierror.Transient(fmt.Sprintf("%s %s: %v", method, target, err))
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, apierror.Transient(fmt.Sprintf("read response: %v", err))
	}

	return resp.StatusCode, data, nil
}

func describeRemoteError(data []byte) string {
	var remote remoteError
	if err := json.Unmarshal(data, &remote); err == nil && remote.Detail != "" {
		return remote.Detail
	}

	return strings.TrimSpace(string(data))
}
