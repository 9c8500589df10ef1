package ratelimit

import (
	"endpoint-gateway/middleware/ratelimit/application"
	"endpoint-gateway/middleware/ratelimit/domain"
	"endpoint-gateway/middleware/ratelimit/infra"
)

// Admitter é o contrato do engine visto pelos adapters (HTTP, gin, gRPC).
type Admitter interface {
	Admit(domain.Request, domain.Policy) domain.Decision
}

// NewEngine liga o engine ao store com os contadores padrão de infra.
func NewEngine(store domain.LimiterStore) application.Service {
	return application.Service{
		Store:      store,
		NewCounter: infra.NewCounter,
	}
}
