package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"bizconsole/internal/apierror"
	"bizconsole/internal/cart"
	"bizconsole/internal/client"
	"bizconsole/internal/dashboard"
	"bizconsole/internal/model"
	"bizconsole/internal/receipt"
)

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func runLogin(ctx context.Context, a *app, args []string) error {
	fs := newFlags("login")
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password (default $BIZCONSOLE_PASSWORD)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *password == "" {
		*password = os.Getenv("BIZCONSOLE_PASSWORD")
	}
	user, err := a.api.Auth.Login(ctx, model.Credentials{Username: *username, Password: *password})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}

func runLogout(ctx context.Context, a *app, _ []string) error {
	if err := a.api.Auth.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func runWhoami(_ context.Context, a *app, _ []string) error {
	user, ok := a.session.User()
	if !ok || !a.session.Authenticated() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", user.Username, a.session.Role())
	if exp := a.session.ExpiresAt(); !exp.IsZero() {
		fmt.Fprintf(a.out, "token expires %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

func runDashboard(ctx context.Context, a *app, args []string) error {
	fs := newFlags("dashboard")
	watch := fs.Bool("watch", false, "keep refreshing every REFRESH_INTERVAL_SECONDS")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	loader := dashboard.NewLoader(a.api)
	if !*watch {
		renderSnapshot(a.out, loader.Load(ctx))
		return nil
	}

	if a.cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: a.cfg.MetricsAddr, Handler: metricsHandler(a)}
		go func() {
			log.Info().Str("addr", a.cfg.MetricsAddr).Msg("metrics endpoint listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("metrics server error")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	r := dashboard.NewRefresher(loader, a.cfg.RefreshInterval(), func(s dashboard.Snapshot) {
		renderSnapshot(a.out, s)
	})
	if err := r.Start(ctx); err != nil {
		return err
	}
	defer r.Stop()
	<-ctx.Done()
	return nil
}

func metricsHandler(a *app) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	return mux
}

func runStock(ctx context.Context, a *app, args []string) error {
	fs := newFlags("stock")
	activeOnly := fs.Bool("active", true, "only active products")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	res, err := a.api.Products.List(ctx, client.ProductFilter{ActiveOnly: *activeOnly})
	if err != nil {
		return err
	}
	renderStock(a.out, res.Data, res.Source)
	return nil
}

func runSell(ctx context.Context, a *app, args []string) error {
	fs := newFlags("sell")
	items := fs.String("items", "", "product_id:quantity pairs, comma separated")
	method := fs.String("method", "CASH", "CASH, CARD or MOBILE_MONEY")
	withReceipt := fs.Bool("receipt", false, "write a PDF receipt")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	lines, err := parseItems(*items)
	if err != nil {
		return err
	}

	c := cart.New(a.api.Sales)
	names := map[int64]string{}
	for _, l := range lines {
		res, err := a.api.Products.Get(ctx, l.ProductID)
		if err != nil {
			return fmt.Errorf("product %d: %w", l.ProductID, err)
		}
		if res.Source.IsFallback() {
			return fmt.Errorf("product %d: catalog endpoint unavailable, refusing to sell demo data", l.ProductID)
		}
		if err := c.Add(res.Data, l.Quantity); err != nil {
			return fmt.Errorf("%s: %w", res.Data.Name, err)
		}
		names[res.Data.ID] = res.Data.Name
	}

	fmt.Fprintf(a.out, "Cart %s: %d lines, total %s\n", c.ID(), len(c.Lines()), c.Total().StringFixed(2))
	sale, err := c.Submit(ctx, model.ParsePaymentMethod(*method))
	if err != nil {
		if apierror.Is(err, apierror.EndpointNotFound) {
			return fmt.Errorf("sales endpoint is not deployed: %w", err)
		}
		return err
	}
	fmt.Fprintf(a.out, "Sale #%d recorded: %s via %s\n", sale.ID, sale.TotalAmount.StringFixed(2), sale.PaymentMethod)

	if *withReceipt {
		path, err := receipt.Save(sale, a.cfg.ReceiptStoragePath, receipt.Options{Names: names})
		if err != nil {
			return err
		}
		fmt.Fprintf(a.out, "Receipt written to %s\n", path)
	}
	return nil
}

func runHealth(ctx context.Context, a *app, _ []string) error {
	res, err := a.api.Health.Check(ctx)
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	defer w.Flush()
	fmt.Fprintf(w, "backend\t%s\n", a.gateway.BaseURL())
	fmt.Fprintf(w, "fallback\t%t\n", a.gateway.FallbackEnabled())
	fmt.Fprintf(w, "breaker\t%s\n", a.gateway.BreakerState())
	if err != nil {
		fmt.Fprintf(w, "status\tunreachable (%s)\n", apierror.KindOf(err))
		return err
	}
	fmt.Fprintf(w, "status\t%s [%s]\n", res.Data.Status, res.Source)
	return nil
}

// parseItems reads "1:2,3:1" into sale lines.
func parseItems(s string) ([]model.SaleLine, error) {
	var out []model.SaleLine
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		idStr, qtyStr, found := strings.Cut(part, ":")
		if !found {
			qtyStr = "1"
		}
		id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid product id %q", idStr)
		}
		qty, err := strconv.Atoi(strings.TrimSpace(qtyStr))
		if err != nil || qty < 1 {
			return nil, fmt.Errorf("invalid quantity %q for product %d", qtyStr, id)
		}
		out = append(out, model.SaleLine{ProductID: id, Quantity: qty})
	}
	if len(out) == 0 {
		return nil, cart.ErrEmptyCart
	}
	return out, nil
}
