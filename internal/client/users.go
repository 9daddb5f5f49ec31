package client

import (
	"context"
	"fmt"
	"net/http"

	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
)

type Users struct{ gw *gateway.Client }

func (u *Users) List(ctx context.Context) (gateway.Result[[]model.User], error) {
	return gateway.Get[[]model.User](ctx, u.gw, "/users/", nil)
}

func (u *Users) Get(ctx context.Context, id int64) (gateway.Result[model.User], error) {
	return gateway.Get[model.User](ctx, u.gw, itemPath("users", id), nil)
}

func (u *Users) Create(ctx context.Context, req model.UserRequest) (gateway.Result[model.User], error) {
	return send[model.User](ctx, u.gw, http.MethodPost, "/users/", req)
}

func (u *Users) Update(ctx context.Context, id int64, req model.UserRequest) (gateway.Result[model.User], error) {
	return send[model.User](ctx, u.gw, http.MethodPut, itemPath("users", id), req)
}

func (u *Users) Delete(ctx context.Context, id int64) error {
	return remove(ctx, u.gw, itemPath("users", id))
}

// ResetPassword sets a new password; no old-password confirmation is sent.
func (u *Users) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	path := fmt.Sprintf("/users/%d/reset_password/", id)
	_, err := send[struct{}](ctx, u.gw, http.MethodPost, path, model.ResetPasswordRequest{NewPassword: newPassword})
	return err
}

func (u *Users) Statistics(ctx context.Context) (gateway.Result[model.UserStatistics], error) {
	return gateway.Get[model.UserStatistics](ctx, u.gw, "/users/statistics/", nil)
}
