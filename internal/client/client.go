// Package client exposes typed, resource-scoped operations on top of the
// gateway. Each operation returns gateway.Result (data plus provenance) or a
// classified *apierror.Error; none of them retry or cache.
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

// API groups the resource clients sharing one gateway.
type API struct {
	Auth         *Auth
	Products     *Products
	Sales        *Sales
	Transactions *Transactions
	Users        *Users
	Reports      *Reports
	Health       *Health
}

func New(gw *gateway.Client, sess *session.Session) *API {
	return &API{
		Auth:         &Auth{gw: gw, session: sess},
		Products:     &Products{gw: gw},
		Sales:        &Sales{gw: gw},
		Transactions: &Transactions{gw: gw},
		Users:        &Users{gw: gw},
		Reports:      &Reports{gw: gw},
		Health:       &Health{gw: gw},
	}
}

// checked validates body before anything is sent.
func checked(op string, body any) error {
	if fields := model.Validate(body); fields != nil {
		return apierror.Invalid(op, fields)
	}
	return nil
}

func send[T any](ctx context.Context, gw *gateway.Client, method, path string, body any) (gateway.Result[T], error) {
	if body != nil {
		if err := checked(method+" "+path, body); err != nil {
			return gateway.Result[T]{}, err
		}
	}
	return gateway.Call[T](ctx, gw, gateway.Request{Method: method, Path: path, Body: body})
}

func remove(ctx context.Context, gw *gateway.Client, path string) error {
	_, err := gw.Do(ctx, gateway.Request{Method: http.MethodDelete, Path: path}, nil)
	return err
}

func itemPath(collection string, id int64) string {
	return fmt.Sprintf("/%s/%d/", collection, id)
}
