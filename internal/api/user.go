package api

import (
	"context"

	"go-shop-client/internal/model"
)

type UserAPI struct {
	client *Client
}

func NewUserAPI(client *Client) *UserAPI {
	return &UserAPI{client: client}
}

func (u *UserAPI) Profile(ctx context.Context) (model.User, error) {
	var user model.User
	if err := u.client.Get(ctx, "/users/me", nil, &user, true); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (u *UserAPI) UpdateProfile(ctx context.Context, update model.UserUpdate) (model.User, error) {
	var user model.User
	if err := u.client.Put(ctx, "/users/me", update, &user, true); err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (u *UserAPI) ChangePassword(ctx context.Context, req model.PasswordChangeRequest) (model.Message, error) {
	var resp model.Message
	if err := u.client.Post(ctx, "/users/me/change-password", req, &resp, true); err != nil {
		return model.Message{}, err
	}

	return resp, nil
}
