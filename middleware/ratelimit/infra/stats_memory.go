package infra

import (
	"context"
	"sync"

	"endpoint-gateway/middleware/ratelimit/domain"
)

type Counters struct {
	Admitted int64
	Rejected int64
}

func (c *Counters) add(admitted bool) {
	if admitted {
		c.Admitted++
		return
	}
	c.Rejected++
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes e desenvolvimento.
//
// Não faz expiração e não é indicada para produção.
type MemoryStatsStore struct {
	mu     sync.Mutex
	total  Counters
	byPath map[string]Counters
	byKey  map[domain.Key]Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byPath: make(map[string]Counters),
		byKey:  make(map[domain.Key]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Path
	if ev.Method != "" {
		route = ev.Method + " " + ev.Path
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.add(ev.Admitted)

	c := s.byPath[route]
	c.add(ev.Admitted)
	s.byPath[route] = c

	if s.trackKeys {
		k := s.byKey[ev.Key]
		k.add(ev.Admitted)
		s.byKey[ev.Key] = k
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// ByPath indexa por "METHOD path" (ou só path quando não há método).
func (s *MemoryStatsStore) ByPath() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byPath))
	for k, v := range s.byPath {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByKey() map[domain.Key]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Key]Counters, len(s.byKey))
	for k, v := range s.byKey {
		out[k] = v
	}
	return out
}
