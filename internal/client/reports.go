package client

import (
	"context"

	"bizconsole/internal/gateway"
	"bizconsole/internal/model"
)

type Reports struct{ gw *gateway.Client }

func (r *Reports) All(ctx context.Context) (gateway.Result[model.ReportBundle], error) {
	return gateway.Get[model.ReportBundle](ctx, r.gw, "/reports/", nil)
}

func (r *Reports) Daily(ctx context.Context) (gateway.Result[model.PeriodReport], error) {
	return r.period(ctx, model.PeriodDaily)
}

func (r *Reports) Weekly(ctx context.Context) (gateway.Result[model.PeriodReport], error) {
	return r.period(ctx, model.PeriodWeekly)
}

func (r *Reports) Monthly(ctx context.Context) (gateway.Result[model.PeriodReport], error) {
	return r.period(ctx, model.PeriodMonthly)
}

func (r *Reports) Yearly(ctx context.Context) (gateway.Result[model.PeriodReport], error) {
	return r.period(ctx, model.PeriodYearly)
}

func (r *Reports) period(ctx context.Context, kind model.PeriodKind) (gateway.Result[model.PeriodReport], error) {
	res, err := gateway.Get[model.PeriodReport](ctx, r.gw, "/reports/"+string(kind)+"/", nil)
	if err == nil && res.Data.Kind == "" {
		res.Data.Kind = kind
	}
	return res, err
}

func (r *Reports) LowStock(ctx context.Context) (gateway.Result[[]model.Product], error) {
	return gateway.Get[[]model.Product](ctx, r.gw, "/reports/low_stock/", nil)
}

func (r *Reports) GenerateAllSummaries(ctx context.Context) (gateway.Result[model.ReportBundle], error) {
	return gateway.Get[model.ReportBundle](ctx, r.gw, "/reports/generate_all_summaries/", nil)
}

// Transactions lists raw transactions for client-side aggregation.
func (r *Reports) Transactions(ctx context.Context) (gateway.Result[[]model.Transaction], error) {
	return gateway.Get[[]model.Transaction](ctx, r.gw, "/transactions/", nil)
}
