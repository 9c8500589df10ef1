package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"endpoint-gateway/config"
	"endpoint-gateway/middleware/ratelimit"
	"endpoint-gateway/middleware/ratelimit/domain"
	"endpoint-gateway/middleware/ratelimit/infra"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

func runGateway(ctx context.Context, cfg config.Config) error {
	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return fmt.Errorf("invalid upstream_url: %w", err)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("proxy error")
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}

	var routes []config.RoutePolicy
	if cfg.PoliciesFile != "" {
		routes, err = config.LoadPolicies(cfg.PoliciesFile)
		if err != nil {
			return err
		}
	}
	if len(routes) == 0 {
		log.Warn().Msg("no rate limit policies configured, proxying without limits")
	}

	store := infra.NewStore(
		infra.WithShards(cfg.Store.Shards),
		infra.WithGrace(cfg.Store.Grace),
		infra.WithCleanupEvery(cfg.Store.CleanupEvery),
	)
	store.StartJanitor(ctx)

	var stats domain.StatsStore
	if cfg.Stats.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Stats.RedisAddr,
			Password: cfg.Stats.RedisPassword,
			DB:       cfg.Stats.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			return fmt.Errorf("redis stats ping: %w", err)
		}

		stats = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.Stats.Prefix),
			infra.WithStatsTTL(cfg.Stats.TTL),
			infra.WithStatsBucket(cfg.Stats.Bucket),
			infra.WithStatsTrackKeys(cfg.Stats.TrackKeys),
		)
	}

	h, err := newRouter(cfg, routes, ratelimit.NewEngine(store), stats, proxy)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().
		Str("listen", cfg.ListenAddr).
		Str("upstream", target.String()).
		Int("routes", len(routes)).
		Bool("trust_xff", cfg.TrustXFF).
		Int("shards", cfg.Store.Shards).
		Dur("grace", cfg.Store.Grace).
		Bool("stats", cfg.Stats.Enabled).
		Msg("gateway listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// newRouter registra uma rota chi por política (path pode usar padrões do chi,
// ex: /orders/{id}); o resto vai direto para o upstream.
func newRouter(cfg config.Config, routes []config.RoutePolicy, engine ratelimit.Admitter, stats domain.StatsStore, upstream http.Handler) (http.Handler, error) {
	r := chi.NewRouter()
	if cfg.TrustXFF {
		// RealIP reescreve RemoteAddr a partir de X-Real-IP / X-Forwarded-For.
		r.Use(middleware.RealIP)
	}

	opts := ratelimit.Options{
		Engine:       engine,
		Stats:        stats,
		APIKeyHeader: cfg.APIKeyHeader,
	}
	for _, route := range routes {
		// chi entra em pânico com padrões sem "/" inicial.
		if !strings.HasPrefix(route.Path, "/") {
			return nil, fmt.Errorf("route %q: path must begin with '/'", route.Path)
		}
		limit, err := ratelimit.Protect(route.Policy, opts)
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", route.Path, err)
		}
		r.With(limit).Handle(route.Path, upstream)
	}
	r.Handle("/*", upstream)
	return r, nil
}
