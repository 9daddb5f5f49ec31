package client

import (
	"context"

	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
)

type Health struct{ gw *gateway.Client }

func (h *Health) Check(ctx context.Context) (gateway.Result[model.HealthStatus], error) {
	return gateway.Get[model.HealthStatus](ctx, h.gw, "/health/", nil)
}
