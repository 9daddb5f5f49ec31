package client

import (
	"context"
	"net/http"
	"net/url"

	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
	"bizconsole/internal/report"
)

type Products struct{ gw *gateway.Client }

// ProductFilter narrows List.
type ProductFilter struct {
	ActiveOnly bool
}

func (p *Products) List(ctx context.Context, f ProductFilter) (gateway.Result[[]model.Product], error) {
	var q url.Values
	if f.ActiveOnly {
		q = url.Values{"is_active": {"true"}}
	}
	res, err := gateway.Get[[]model.Product](ctx, p.gw, "/products/", q)
	if err != nil {
		return res, err
	}
	if f.ActiveOnly {
		active := make([]model.Product, 0, len(res.Data))
		for _, pr := range res.Data {
			if pr.Active {
				active = append(active, pr)
			}
		}
		res.Data = active
	}
	return res, nil
}

func (p *Products) Get(ctx context.Context, id int64) (gateway.Result[model.Product], error) {
	return gateway.Get[model.Product](ctx, p.gw, itemPath("products", id), nil)
}

// LowStock returns products whose stock is below their own minimum level.
// The backend's answer is re-filtered so the rule holds for any source.
func (p *Products) LowStock(ctx context.Context) (gateway.Result[[]model.Product], error) {
	res, err := gateway.Get[[]model.Product](ctx, p.gw, "/products/low-stock/", nil)
	if err != nil {
		return res, err
	}
	res.Data = report.LowStock(res.Data)
	return res, nil
}

func (p *Products) Create(ctx context.Context, req model.ProductRequest) (gateway.Result[model.Product], error) {
	return send[model.Product](ctx, p.gw, http.MethodPost, "/products/", req)
}

func (p *Products) Update(ctx context.Context, id int64, req model.ProductRequest) (gateway.Result[model.Product], error) {
	return send[model.Product](ctx, p.gw, http.MethodPut, itemPath("products", id), req)
}

func (p *Products) Delete(ctx context.Context, id int64) error {
	return remove(ctx, p.gw, itemPath("products", id))
}
