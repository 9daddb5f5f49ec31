package client

import (
	"context"
	"net/http"

	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
)

type Transactions struct{ gw *gateway.Client }

func (t *Transactions) List(ctx context.Context) (gateway.Result[[]model.Transaction], error) {
	return gateway.Get[[]model.Transaction](ctx, t.gw, "/transactions/", nil)
}

func (t *Transactions) Create(ctx context.Context, req model.TransactionRequest) (gateway.Result[model.Transaction], error) {
	return send[model.Transaction](ctx, t.gw, http.MethodPost, "/transactions/", req)
}

func (t *Transactions) Update(ctx context.Context, id int64, req model.TransactionRequest) (gateway.Result[model.Transaction], error) {
	return send[model.Transaction](ctx, t.gw, http.MethodPut, itemPath("transactions", id), req)
}

func (t *Transactions) Delete(ctx context.Context, id int64) error {
	return remove(ctx, t.gw, itemPath("transactions", id))
}
