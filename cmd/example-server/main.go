package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"endpoint-gateway/middleware/ratelimit"
	"endpoint-gateway/middleware/ratelimit/domain"
	"endpoint-gateway/middleware/ratelimit/infra"

	"github.com/rs/zerolog/log"
)

func main() {
	// Exemplo: middleware direto no webserver (sem proxy).
	// /orders aceita 1 req a cada 5s por cliente; /health não tem limite.
	store := infra.NewStore()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	table, err := ratelimit.NewPolicyTable(map[string]domain.Policy{
		"/orders": domain.DefaultPolicy(domain.ByEndpointAndClientIP),
		"/search": {
			Strategy:    domain.ByEndpointAndAPIKey,
			Algorithm:   domain.TokenBucket,
			Window:      time.Second,
			MaxRequests: 10,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("invalid policy table")
	}

	stats := infra.NewMemoryStatsStore()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		total := stats.Total()
		log.Debug().Int64("admitted", total.Admitted).Int64("rejected", total.Rejected).Int("keys", store.Len()).Msg("health")
		w.WriteHeader(http.StatusOK)
	})

	h := ratelimit.Middleware(ratelimit.Options{
		Engine:  ratelimit.NewEngine(store),
		Resolve: table.Resolve,
		Stats:   stats,
	})(mux)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Msg("example server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
}
