package domain

import "time"

// Strategy define como a chave de limitação é composta.
// O conjunto é aberto: novas estratégias são apenas novas constantes + um caso no deriver.
type Strategy string

const (
	// ByEndpointOnly agrega todos os clientes de uma rota em um único contador.
	ByEndpointOnly Strategy = "endpoint"
	// ByEndpointAndClientIP separa os contadores por rota e endereço do cliente.
	ByEndpointAndClientIP Strategy = "endpoint_ip"
	// ByEndpointAndAPIKey separa os contadores por rota e API key.
	ByEndpointAndAPIKey Strategy = "endpoint_api_key"
)

// Valid informa se a estratégia é conhecida.
func (s Strategy) Valid() bool {
	switch s {
	case ByEndpointOnly, ByEndpointAndClientIP, ByEndpointAndAPIKey:
		return true
	}
	return false
}

// Algorithm escolhe a implementação de WindowCounter.
type Algorithm string

const (
	FixedWindow Algorithm = "fixed_window"
	TokenBucket Algorithm = "token_bucket"
)

func (a Algorithm) Valid() bool {
	return a == FixedWindow || a == TokenBucket
}

const (
	DefaultWindow      = 5 * time.Second
	DefaultMaxRequests = 1
)

// Policy é a configuração associada a uma operação protegida.
// É um valor imutável: resolvido uma vez e só lido durante as requisições.
type Policy struct {
	Strategy    Strategy
	Algorithm   Algorithm
	Window      time.Duration
	MaxRequests int
}

// DefaultPolicy retorna uma requisição a cada 5 segundos em janela fixa.
func DefaultPolicy(strategy Strategy) Policy {
	return Policy{
		Strategy:    strategy,
		Algorithm:   FixedWindow,
		Window:      DefaultWindow,
		MaxRequests: DefaultMaxRequests,
	}
}

// Validate deve ser chamado no registro da política, nunca por requisição.
// Algorithm vazio é tratado como FixedWindow.
func (p Policy) Validate() error {
	if !p.Strategy.Valid() {
		return &ConfigurationError{Field: "strategy", Value: p.Strategy, Reason: "unsupported strategy"}
	}
	if p.Algorithm != "" && !p.Algorithm.Valid() {
		return &ConfigurationError{Field: "algorithm", Value: p.Algorithm, Reason: "unsupported algorithm"}
	}
	if p.Window <= 0 {
		return &ConfigurationError{Field: "window", Value: p.Window, Reason: "must be > 0"}
	}
	if p.MaxRequests <= 0 {
		return &ConfigurationError{Field: "max_requests", Value: p.MaxRequests, Reason: "must be > 0"}
	}
	return nil
}
