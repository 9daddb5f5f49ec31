package client

import (
	"context"
	"fmt"
	"net/http"

	"bizconsole/internal/apierror"
	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
	"bizconsole/internal/session"
)

// Auth exchanges credentials for a token and keeps the session current.
type Auth struct {
	gw      *gateway.Client
	session *session.Session
}

// Login posts credentials to /auth/login/ and persists the returned token and
// profile. A missing login endpoint is never answered with synthesized data.
func (a *Auth) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	res, err := send[model.LoginResponse](ctx, a.gw, http.MethodPost, "/auth/login/", creds)
	if err != nil {
		return model.User{}, err
	}
	if res.Data.Access == "" {
		return model.User{}, apierror.Decode("POST /auth/login/", http.StatusOK, nil, fmt.Errorf("response carried no access token"))
	}
	if a.session != nil {
		if err := a.session.Login(ctx, res.Data.Access, res.Data.User); err != nil {
			return model.User{}, err
		}
	}
	return res.Data.User, nil
}

// Logout clears the local session. The backend keeps no server-side state.
func (a *Auth) Logout(ctx context.Context) error {
	if a.session == nil {
		return nil
	}
	return a.session.Logout(ctx)
}
