package client

import (
	"context"
	"errors"
	"net/http"

	"bizconsole/internal/apierror"
	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
)

// MsgProfitReportForbidden is surfaced when a non-BOSS asks for profit data.
const MsgProfitReportForbidden = "Only Boss can access profit reports"

type Sales struct{ gw *gateway.Client }

func (s *Sales) List(ctx context.Context) (gateway.Result[[]model.Sale], error) {
	return gateway.Get[[]model.Sale](ctx, s.gw, "/sales/", nil)
}

func (s *Sales) Get(ctx context.Context, id int64) (gateway.Result[model.Sale], error) {
	return gateway.Get[model.Sale](ctx, s.gw, itemPath("sales", id), nil)
}

// Create submits either a flattened single-product sale or a multi-item
// cart sale.
func (s *Sales) Create(ctx context.Context, payload model.SalePayload) (gateway.Result[model.Sale], error) {
	if payload == nil {
		return gateway.Result[model.Sale]{}, apierror.Invalid("POST /sales/", map[string]string{"items": "required"})
	}
	return send[model.Sale](ctx, s.gw, http.MethodPost, "/sales/", payload)
}

// ProfitLossReport is restricted to BOSS by the backend; a 403 comes back
// as a Forbidden error carrying MsgProfitReportForbidden.
func (s *Sales) ProfitLossReport(ctx context.Context) (gateway.Result[model.ProfitLossReport], error) {
	res, err := gateway.Get[model.ProfitLossReport](ctx, s.gw, "/sales/profit_loss_report/", nil)
	var e *apierror.Error
	if errors.As(err, &e) && e.Kind == apierror.Forbidden {
		e.Message = MsgProfitReportForbidden
	}
	return res, err
}
