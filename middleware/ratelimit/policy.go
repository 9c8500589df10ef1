package ratelimit

import (
	"fmt"
	"net/http"

	"endpoint-gateway/middleware/ratelimit/domain"
)

// PolicyResolver retorna a política da operação alvo, se houver.
// Sem política, a requisição passa direto sem consultar o engine.
type PolicyResolver func(r *http.Request) (domain.Policy, bool)

// PolicyTable associa paths exatos a políticas já validadas.
type PolicyTable map[string]domain.Policy

// NewPolicyTable valida todas as políticas no registro (falha cedo, não por requisição).
func NewPolicyTable(routes map[string]domain.Policy) (PolicyTable, error) {
	t := make(PolicyTable, len(routes))
	for path, p := range routes {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("route %q: %w", path, err)
		}
		t[path] = p
	}
	return t, nil
}

func (t PolicyTable) Resolve(r *http.Request) (domain.Policy, bool) {
	p, ok := t[r.URL.Path]
	return p, ok
}

// Protect retorna um middleware de rota com a política fixa, equivalente a
// decorar o handler. Ex.: r.With(mw).Get("/orders", h) no chi.
func Protect(p domain.Policy, opts Options) (func(next http.Handler) http.Handler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	opts.Resolve = func(*http.Request) (domain.Policy, bool) { return p, true }
	return Middleware(opts), nil
}
