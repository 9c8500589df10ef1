package infra

import (
	"sync"
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog/log"
)

// Store guarda um WindowCounter por chave, particionado em shards.
//
// Cada shard tem seu próprio mutex: chaves em shards diferentes não disputam lock,
// e o lock do shard cobre todo o ciclo criar/ler/incrementar de uma chave.
// A limpeza periódica remove chaves ociosas para limitar memória.
type Store struct {
	shards       []*shard
	grace        time.Duration
	cleanupEvery time.Duration
}

type shard struct {
	mu      sync.Mutex
	entries map[domain.Key]domain.WindowCounter
}

type StoreOption func(*Store)

// WithShards define o número de partições (padrão 32). Valores <= 0 são ignorados.
func WithShards(n int) StoreOption {
	return func(s *Store) {
		if n > 0 {
			s.shards = make([]*shard, n)
		}
	}
}

// WithGrace define por quanto tempo uma chave expirada sobrevive antes da remoção.
func WithGrace(d time.Duration) StoreOption {
	return func(s *Store) { s.grace = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		shards:       make([]*shard, 32),
		grace:        15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.shards {
		s.shards[i] = &shard{entries: make(map[domain.Key]domain.WindowCounter)}
	}
	return s
}

func (s *Store) Grace() time.Duration        { return s.grace }
func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

func (s *Store) shardFor(key domain.Key) *shard {
	return s.shards[xxhash.Sum64String(string(key))%uint64(len(s.shards))]
}

// Do implementa domain.LimiterStore.
func (s *Store) Do(key domain.Key, init func() domain.WindowCounter, fn func(domain.WindowCounter)) {
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	c, ok := sh.entries[key]
	if !ok {
		c = init()
		sh.entries[key] = c
	}
	fn(c)
}

// Len retorna o número de chaves vivas.
func (s *Store) Len() int {
	n := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		n += len(sh.entries)
		sh.mu.Unlock()
	}
	return n
}

// EvictStale remove as chaves cuja janela expirou há mais de grace.
// Trava um shard por vez; retorna quantas chaves foram removidas.
func (s *Store) EvictStale(now time.Time, grace time.Duration) int {
	removed := 0
	for _, sh := range s.shards {
		sh.mu.Lock()
		for k, c := range sh.entries {
			if now.Sub(c.IdleSince()) > grace {
				delete(sh.entries, k)
				removed++
			}
		}
		sh.mu.Unlock()
	}
	return removed
}

func (s *Store) Cleanup() int {
	return s.EvictStale(time.Now(), s.grace)
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if n := s.Cleanup(); n > 0 {
					log.Debug().Int("evicted", n).Int("remaining", s.Len()).Msg("rate limit janitor sweep")
				}
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
type DoneContext interface {
	Done() <-chan struct{}
}
