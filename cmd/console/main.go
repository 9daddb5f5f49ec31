// Command console is the operator front-end for the business backend.
//
//	console <command> [flags]
//
// Commands: login, logout, whoami, dashboard, stock, sell, health.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"bizconsole/internal/client"
	"bizconsole/internal/config"
	"bizconsole/internal/gateway"
	"bizconsole/internal/logging"
	"bizconsole/internal/session"
)

// app is the composition root shared by every command.
type app struct {
	cfg      *config.Config
	store    session.Store
	session  *session.Session
	gateway  *gateway.Client
	api      *client.API
	registry *prometheus.Registry
	out      io.Writer
}

func newApp(ctx context.Context, cfg *config.Config, out io.Writer) (*app, error) {
	store, err := session.Open(ctx, cfg.SessionBackend, cfg.SessionFile, cfg.RedisURL, cfg.SessionKey, cfg.SessionTTL())
	if err != nil {
		return nil, err
	}
	sess, err := session.New(ctx, store)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	gw := gateway.New(gateway.Options{
		BaseURL:  cfg.BaseURL(),
		Timeout:  cfg.RequestTimeout(),
		Fallback: cfg.FallbackEnabled(),
		Session:  sess,
		Breaker: gateway.BreakerConfig{
			FailureThreshold: cfg.BreakerFailureThreshold,
			OpenTimeout:      cfg.BreakerOpenTimeout(),
		},
		Metrics: gateway.NewMetrics(reg),
	})
	return &app{
		cfg:      cfg,
		store:    store,
		session:  sess,
		gateway:  gw,
		api:      client.New(gw, sess),
		registry: reg,
		out:      out,
	}, nil
}

func (a *app) Close() {
	if c, ok := a.store.(io.Closer); ok {
		_ = c.Close()
	}
}

type command struct {
	name  string
	usage string
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"login", "authenticate and persist the session", runLogin},
	{"logout", "clear the persisted session", runLogout},
	{"whoami", "show the current session", runWhoami},
	{"dashboard", "load and print the reporting dashboard", runDashboard},
	{"stock", "list products with stock levels", runStock},
	{"sell", "submit a sale from a cart of products", runSell},
	{"health", "check backend health", runHealth},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: console <command> [flags]")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-10s %s\n", c.name, c.usage)
	}
}

var errUsage = errors.New("usage")

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			log.Error().Err(err).Msg("console: command failed")
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		usage(os.Stderr)
		return errUsage
	}
	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		usage(os.Stderr)
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.Close()
	return cmd.run(ctx, a, args[1:])
}
