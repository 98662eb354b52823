package api

import (
	"context"
	"net/http"
	"net/url"

	"go-shop-client/internal/model"
)

type AuthAPI struct {
	client *Client
}

func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

func (a *AuthAPI) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := a.client.Post(ctx, "/auth/login", req, &resp, false); err != nil {
		return model.AuthResponse{}, err
	}

	return resp, nil
}

func (a *AuthAPI) Signup(ctx context.Context, req model.SignupRequest) (model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := a.client.Post(ctx, "/auth/signup", req, &resp, false); err != nil {
		return model.AuthResponse{}, err
	}

	return resp, nil
}

// Logout tells the remote API to drop the session. Best-effort: the caller
// clears the local credential regardless of the outcome.
func (a *AuthAPI) Logout(ctx context.Context) error {
	return a.client.Post(ctx, "/auth/logout", nil, nil, true)
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, email string) (model.Message, error) {
	q := url.Values{}
	q.Set("email", email)

	var resp model.Message
	if err := a.client.do(ctx, http.MethodPost, "/auth/forgot-password", q, nil, &resp, false); err != nil {
		return model.Message{}, err
	}

	return resp, nil
}

func (a *AuthAPI) ResetPassword(ctx context.Context, resetToken string, newPassword string) (model.Message, error) {
	q := url.Values{}
	q.Set("token", resetToken)
	q.Set("new_password", newPassword)

	var resp model.Message
	if err := a.client.do(ctx, http.MethodPost, "/auth/reset-password", q, nil, &resp, false); err != nil {
		return model.Message{}, err
	}

	return resp, nil
}
