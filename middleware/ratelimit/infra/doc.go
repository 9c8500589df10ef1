// Package infra contém implementações concretas (infraestrutura) para os contratos
// definidos no pacote domain.
//
// Exemplos:
//   - Store: mapa particionado (shards) de chave -> WindowCounter, com limpeza periódica
//   - FixedWindowCounter: janela fixa (padrão)
//   - TokenBucketCounter: token bucket usando golang.org/x/time/rate
//   - MemoryStatsStore / RedisStatsStore: estatísticas das decisões
package infra
