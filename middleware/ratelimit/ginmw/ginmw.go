// Package ginmw aplica o rate limit por endpoint em rotas gin.
package ginmw

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"endpoint-gateway/middleware/ratelimit"
	"endpoint-gateway/middleware/ratelimit/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// PolicyResolver retorna a política da rota atual, se houver.
type PolicyResolver func(c *gin.Context) (domain.Policy, bool)

type Options struct {
	// APIKeyHeader é lido pela estratégia ByEndpointAndAPIKey (padrão X-Api-Key).
	APIKeyHeader string
	Stats        domain.StatsStore
}

// RouteTable resolve pela rota registrada (c.FullPath(), ex: "/orders/:id").
func RouteTable(routes map[string]domain.Policy) (PolicyResolver, error) {
	table := make(map[string]domain.Policy, len(routes))
	for route, p := range routes {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("route %q: %w", route, err)
		}
		table[route] = p
	}
	return func(c *gin.Context) (domain.Policy, bool) {
		p, ok := table[c.FullPath()]
		return p, ok
	}, nil
}

// Middleware usa c.ClientIP() como endereço do cliente, então respeita a
// configuração de proxies confiáveis do engine gin (SetTrustedProxies).
func Middleware(engine ratelimit.Admitter, resolve PolicyResolver, opts Options) gin.HandlerFunc {
	if opts.APIKeyHeader == "" {
		opts.APIKeyHeader = "X-Api-Key"
	}

	return func(c *gin.Context) {
		if engine == nil || resolve == nil {
			c.Next()
			return
		}
		policy, ok := resolve(c)
		if !ok {
			c.Next()
			return
		}

		path := c.Request.URL.Path
		dec := engine.Admit(domain.Request{
			Path:       path,
			ClientAddr: c.ClientIP(),
			APIKey:     strings.TrimSpace(c.GetHeader(opts.APIKeyHeader)),
		}, policy)

		if opts.Stats != nil {
			err := opts.Stats.Record(c.Request.Context(), domain.StatsEvent{
				Key:      dec.Key,
				Strategy: policy.Strategy,
				Admitted: dec.Allowed,
				Method:   c.Request.Method,
				Path:     path,
				At:       time.Now(),
			})
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("rate limit stats record failed")
			}
		}

		if !dec.Allowed {
			log.Debug().Str("path", path).Dur("retry_after", dec.RetryAfter).Msg("rate limit exceeded")
			c.Header("Retry-After", ratelimit.FormatRetryAfter(dec.RetryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":     "rate limit exceeded",
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}

		c.Next()
	}
}
