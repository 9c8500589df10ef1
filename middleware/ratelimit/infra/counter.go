package infra

import "endpoint-gateway/middleware/ratelimit/domain"

// NewCounter escolhe o WindowCounter pelo algoritmo da política.
// Algoritmo vazio ou desconhecido cai na janela fixa.
func NewCounter(p domain.Policy) domain.WindowCounter {
	if p.Algorithm == domain.TokenBucket {
		return &TokenBucketCounter{}
	}
	return &FixedWindowCounter{}
}
