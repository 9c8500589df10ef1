package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// Key identifica um escopo de limitação (ex: rota, rota+IP).
type Key string

// Request descreve o que o engine precisa saber sobre uma requisição.
//
// ClientAddr é fornecido pela camada de integração (RemoteAddr, XFF, peer gRPC).
// APIKey só é lido pela estratégia ByEndpointAndAPIKey.
type Request struct {
	Path       string
	ClientAddr string
	APIKey     string
}

// Decision é o resultado de uma admissão.
type Decision struct {
	Allowed bool
	// RetryAfter é o tempo até a janela atual liberar uma vaga.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
	// Key é a chave derivada para a requisição (útil para logs/estatísticas).
	Key Key
}

// WindowCounter mantém o estado de um algoritmo de limitação para uma única chave.
//
// Implementações não precisam ser seguras para uso concorrente: o LimiterStore
// garante acesso exclusivo por chave durante Take.
type WindowCounter interface {
	// Take aplica uma requisição no instante now segundo a política p.
	// Requisições rejeitadas não consomem vaga.
	Take(now time.Time, p Policy) Decision
	// IdleSince retorna o instante a partir do qual o estado equivale a um contador novo.
	IdleSince() time.Time
}

// LimiterStore mapeia chaves para contadores.
//
// Do cria o contador via init se ainda não existir e executa fn com acesso
// exclusivo a ele: criação + leitura + incremento são atômicos por chave.
type LimiterStore interface {
	Do(key Key, init func() WindowCounter, fn func(WindowCounter))
}
