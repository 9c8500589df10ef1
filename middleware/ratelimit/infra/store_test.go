package infra

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"
)

var fiveSecOne = domain.DefaultPolicy(domain.ByEndpointAndClientIP)

func take(s *Store, key domain.Key, now time.Time, p domain.Policy) domain.Decision {
	var dec domain.Decision
	s.Do(key, func() domain.WindowCounter { return NewCounter(p) }, func(c domain.WindowCounter) {
		dec = c.Take(now, p)
	})
	return dec
}

func TestStore_DoSameKeyReturnsSameCounter(t *testing.T) {
	s := NewStore()

	var c1, c2 domain.WindowCounter
	s.Do("k", func() domain.WindowCounter { return &FixedWindowCounter{} }, func(c domain.WindowCounter) { c1 = c })
	s.Do("k", func() domain.WindowCounter { return &FixedWindowCounter{} }, func(c domain.WindowCounter) { c2 = c })
	if c1 != c2 {
		t.Fatalf("expected same counter pointer for same key")
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", s.Len())
	}
}

func TestStore_SecondImmediateTakeRejected(t *testing.T) {
	s := NewStore()
	now := time.Now()

	if !take(s, "k", now, fiveSecOne).Allowed {
		t.Fatalf("expected first take to be allowed")
	}
	if take(s, "k", now, fiveSecOne).Allowed {
		t.Fatalf("expected second immediate take to be rejected (max=1)")
	}
}

func TestStore_ConcurrentTakesAdmitExactlyMax(t *testing.T) {
	s := NewStore(WithShards(4))
	now := time.Now()
	p := fiveSecOne
	p.MaxRequests = 10

	var admitted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if take(s, "hot", now, p).Allowed {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	if got := admitted.Load(); got != 10 {
		t.Fatalf("expected exactly 10 admitted, got %d", got)
	}
}

func TestStore_EvictStaleRemovesIdleEntries(t *testing.T) {
	s := NewStore(WithCleanupEvery(0))
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	take(s, "idle", t0, fiveSecOne)
	take(s, "active", t0.Add(9*time.Second), fiveSecOne)

	// "idle" expirou em t0+5s; "active" expira em t0+14s.
	if n := s.EvictStale(t0.Add(12*time.Second), 5*time.Second); n != 1 {
		t.Fatalf("expected 1 eviction, got %d", n)
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 remaining entry, got %d", s.Len())
	}

	// o contador ativo continua com o mesmo estado (segue bloqueando)
	if take(s, "active", t0.Add(12*time.Second), fiveSecOne).Allowed {
		t.Fatalf("expected active key to keep its counter after eviction sweep")
	}
}

func TestStore_EvictStaleKeepsEntriesWithinGrace(t *testing.T) {
	s := NewStore()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	take(s, "k", t0, fiveSecOne)
	if n := s.EvictStale(t0.Add(7*time.Second), 5*time.Second); n != 0 {
		t.Fatalf("expected no eviction within grace, got %d", n)
	}
}

func TestStore_CleanupUsesConfiguredGrace(t *testing.T) {
	s := NewStore(WithGrace(time.Millisecond), WithCleanupEvery(0))
	p := fiveSecOne
	p.Window = time.Millisecond

	take(s, "k", time.Now(), p)
	time.Sleep(5 * time.Millisecond)

	if n := s.Cleanup(); n != 1 {
		t.Fatalf("expected cleanup to evict 1 entry, got %d", n)
	}
}

func TestStore_DistinctKeysSpreadAcrossShards(t *testing.T) {
	s := NewStore(WithShards(8))
	for i := 0; i < 256; i++ {
		take(s, domain.Key(fmt.Sprintf("k%d", i)), time.Now(), fiveSecOne)
	}

	used := 0
	for _, sh := range s.shards {
		if len(sh.entries) > 0 {
			used++
		}
	}
	if used < 2 {
		t.Fatalf("expected keys in more than one shard, got %d", used)
	}
	if s.Len() != 256 {
		t.Fatalf("expected 256 entries, got %d", s.Len())
	}
}

type cancelCtx chan struct{}

func (c cancelCtx) Done() <-chan struct{} { return c }

func TestStore_StartJanitorEvicts(t *testing.T) {
	s := NewStore(WithGrace(0), WithCleanupEvery(2*time.Millisecond))
	p := fiveSecOne
	p.Window = time.Millisecond
	take(s, "k", time.Now(), p)

	done := make(cancelCtx)
	defer close(done)
	s.StartJanitor(done)

	deadline := time.Now().Add(time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("expected janitor to evict idle entry")
		}
		time.Sleep(time.Millisecond)
	}
}
