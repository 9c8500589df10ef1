package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const requestIDHeader = "X-Request-Id"

type Options struct {
	Engine             Admitter
	Resolve            PolicyResolver
	Stats              domain.StatsStore
	ClientAddrFn       ClientAddrFunc
	TrustXForwardedFor bool
	// APIKeyHeader é lido pela estratégia ByEndpointAndAPIKey.
	APIKeyHeader string
	RejectStatus int
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.ClientAddrFn == nil {
		opts.ClientAddrFn = DefaultClientAddrFunc(opts.TrustXForwardedFor)
	}
	if opts.APIKeyHeader == "" {
		opts.APIKeyHeader = "X-Api-Key"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if opts.Engine == nil || opts.Resolve == nil {
				next.ServeHTTP(w, r)
				return
			}
			policy, ok := opts.Resolve(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			dec := opts.Engine.Admit(domain.Request{
				Path:       r.URL.Path,
				ClientAddr: opts.ClientAddrFn(r),
				APIKey:     strings.TrimSpace(r.Header.Get(opts.APIKeyHeader)),
			}, policy)

			if opts.Stats != nil {
				err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:      dec.Key,
					Strategy: policy.Strategy,
					Admitted: dec.Allowed,
					Method:   r.Method,
					Path:     r.URL.Path,
					At:       time.Now(),
				})
				if err != nil {
					log.Warn().Err(err).Str("path", r.URL.Path).Msg("rate limit stats record failed")
				}
			}

			if !dec.Allowed {
				requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
				if requestID == "" {
					requestID = uuid.NewString()
				}
				log.Debug().
					Str("request_id", requestID).
					Str("key", printableKey(dec.Key)).
					Str("path", r.URL.Path).
					Dur("retry_after", dec.RetryAfter).
					Msg("rate limit exceeded")

				w.Header().Set(requestIDHeader, requestID)
				w.Header().Set("Retry-After", formatRetryAfter(dec.RetryAfter))
				http.Error(w, http.StatusText(opts.RejectStatus), opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
