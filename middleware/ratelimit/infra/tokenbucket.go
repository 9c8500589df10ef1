package infra

import (
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"

	"golang.org/x/time/rate"
)

// TokenBucketCounter é a alternativa ao FixedWindowCounter baseada em
// golang.org/x/time/rate: MaxRequests tokens de capacidade, repostos
// continuamente ao longo de Window. Não tem o pico na virada da janela.
type TokenBucketCounter struct {
	lim    *rate.Limiter
	fullAt time.Time
}

func tokenRate(p domain.Policy) rate.Limit {
	return rate.Limit(float64(p.MaxRequests) / p.Window.Seconds())
}

func (c *TokenBucketCounter) Take(now time.Time, p domain.Policy) domain.Decision {
	limit := tokenRate(p)
	switch {
	case c.lim == nil:
		c.lim = rate.NewLimiter(limit, p.MaxRequests)
	case c.lim.Limit() != limit || c.lim.Burst() != p.MaxRequests:
		c.lim.SetLimitAt(now, limit)
		c.lim.SetBurstAt(now, p.MaxRequests)
	}

	if !c.lim.AllowN(now, 1) {
		// não reserva: requisição rejeitada não consome token.
		missing := 1 - c.lim.TokensAt(now)
		return domain.Decision{Allowed: false, RetryAfter: durationFor(missing, limit)}
	}

	missing := float64(p.MaxRequests) - c.lim.TokensAt(now)
	c.fullAt = now.Add(durationFor(missing, limit))
	return domain.Decision{Allowed: true}
}

// IdleSince retorna quando o balde volta a ficar cheio.
func (c *TokenBucketCounter) IdleSince() time.Time { return c.fullAt }

func durationFor(tokens float64, limit rate.Limit) time.Duration {
	if tokens <= 0 || limit <= 0 {
		return 0
	}
	return time.Duration(tokens / float64(limit) * float64(time.Second))
}
