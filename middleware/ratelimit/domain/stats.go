package domain

import (
	"context"
	"time"
)

// StatsEvent representa uma decisão de admissão.
//
// Method/Path são strings genéricas: para gRPC, Path é o método completo.
//
// Observação: cuidado com cardinalidade (salvar Key sem controle pode
// explodir o número de chaves em uma base como Redis).
type StatsEvent struct {
	Key      Key
	Strategy Strategy
	Admitted bool

	Method string
	Path   string

	At time.Time
}

// StatsStore persiste estatísticas das decisões.
//
// O middleware trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
