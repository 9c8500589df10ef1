package application

import (
	"strings"

	"endpoint-gateway/middleware/ratelimit/domain"
)

// UnknownClient substitui um componente de chave ausente (ex: endereço não resolvido).
//
// Ponto fraco conhecido: todos os clientes sem endereço dividem o mesmo contador,
// e um cliente que envie literalmente "unknown" como API key cai nesse mesmo contador.
const UnknownClient = "unknown"

// keySep separa os componentes da chave. O path já vem decodificado e pode
// conter \x1f (%1F), mas o último componente (endereço ou API key) nunca contém:
// headers HTTP e metadata gRPC rejeitam caracteres de controle. Lida a partir do
// último separador, a chave continua sem ambiguidade.
const keySep = "\x1f"

// DeriveKey compõe a chave de limitação a partir da política e da requisição.
//
// Função pura: mesmas entradas, mesma chave.
func DeriveKey(p domain.Policy, r domain.Request) domain.Key {
	var b strings.Builder
	b.Grow(len(p.Strategy) + len(r.Path) + len(r.ClientAddr) + 2)
	b.WriteString(string(p.Strategy))
	b.WriteString(keySep)
	b.WriteString(r.Path)

	switch p.Strategy {
	case domain.ByEndpointAndClientIP:
		b.WriteString(keySep)
		b.WriteString(orUnknown(r.ClientAddr))
	case domain.ByEndpointAndAPIKey:
		b.WriteString(keySep)
		b.WriteString(orUnknown(r.APIKey))
	}

	return domain.Key(b.String())
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return UnknownClient
}
