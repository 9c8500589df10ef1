package application

import (
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"
)

// Service é o engine de admissão.
//
// Ele não sabe nada sobre HTTP (headers/status) e não faz I/O nem log,
// apenas deriva a chave, consulta o store e retorna uma decisão.
type Service struct {
	Store domain.LimiterStore
	// NewCounter cria o estado de uma chave nova.
	NewCounter func(domain.Policy) domain.WindowCounter
	// Clock permite fixar o tempo nos testes. Se nil, usa time.Now.
	Clock func() time.Time
}

// Admit decide se a requisição pode seguir. Assume política já validada.
func (s Service) Admit(r domain.Request, p domain.Policy) domain.Decision {
	key := DeriveKey(p, r)
	if s.Store == nil || s.NewCounter == nil {
		return domain.Decision{Allowed: true, Key: key}
	}

	now := s.now()
	var dec domain.Decision
	s.Store.Do(key,
		func() domain.WindowCounter { return s.NewCounter(p) },
		func(c domain.WindowCounter) { dec = c.Take(now, p) },
	)
	dec.Key = key
	return dec
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}
