package infra

import (
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"
)

// FixedWindowCounter conta requisições em janelas fixas que não se sobrepõem.
//
// Na virada da janela podem passar até 2×MaxRequests em sequência; é o custo
// aceito por estado O(1) por chave.
type FixedWindowCounter struct {
	windowStart time.Time
	window      time.Duration
	count       int
}

func (c *FixedWindowCounter) Take(now time.Time, p domain.Policy) domain.Decision {
	c.window = p.Window
	if c.windowStart.IsZero() || !now.Before(c.windowStart.Add(p.Window)) {
		c.windowStart = now
		c.count = 0
	}

	if c.count >= p.MaxRequests {
		return domain.Decision{Allowed: false, RetryAfter: c.windowStart.Add(p.Window).Sub(now)}
	}
	c.count++
	return domain.Decision{Allowed: true}
}

func (c *FixedWindowCounter) IdleSince() time.Time {
	return c.windowStart.Add(c.window)
}

// Count retorna as admissões da janela atual (sem considerar expiração).
func (c *FixedWindowCounter) Count() int { return c.count }
