package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"bizconsole/internal/config"
	"bizconsole/internal/devserver"
	"bizconsole/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	hash := cfg.DevSeedPasswordHash
	if hash == "" {
		hash, err = devserver.HashPassword(devserver.DefaultSeedPassword, devserver.DefaultBcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to hash seed password")
		}
	}

	disabled := cfg.DisabledRouteGroups()
	r := devserver.NewRouter(devserver.Options{
		Store:    devserver.NewStore(time.Now, hash),
		Secret:   cfg.JWTSecret,
		TokenTTL: time.Duration(cfg.JWTExpirationHours) * time.Hour,
		Disabled: disabled,
		Release:  cfg.Env == "production",
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.DevPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Strs("disabled_routes", keys(disabled)).Msgf("dev backend listening on :%d", cfg.DevPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}
	log.Info().Msg("server exited")
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
