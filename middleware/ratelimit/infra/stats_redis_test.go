package infra

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"endpoint-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStatsStore_Record(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set; skipping integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())

	prefix := fmt.Sprintf("test:stats:%d", time.Now().UnixNano())
	s := NewRedisStatsStore(client, WithStatsPrefix(prefix+":"), WithStatsTrackKeys(true), WithStatsTTL(time.Minute))
	require.Equal(t, prefix, s.Prefix())

	ctx := context.Background()
	key := domain.Key("endpoint_ip\x1f/orders\x1f10.0.0.1")
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: key, Admitted: true, Method: "GET", Path: "/orders"}))
	require.NoError(t, s.Record(ctx, domain.StatsEvent{Key: key, Admitted: false, Method: "GET", Path: "/orders"}))

	total, err := client.HGetAll(ctx, prefix+":total").Result()
	require.NoError(t, err)
	require.Equal(t, map[string]string{"admitted": "1", "rejected": "1"}, total)

	byPath, err := client.HGet(ctx, prefix+":path", "GET /orders:rejected").Result()
	require.NoError(t, err)
	require.Equal(t, "1", byPath)

	byKey, err := client.HGet(ctx, prefix+":key:endpoint_ip|/orders|10.0.0.1", "admitted").Result()
	require.NoError(t, err)
	require.Equal(t, "1", byKey)

	keys, err := client.Keys(ctx, prefix+":*").Result()
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Del(context.Background(), keys...).Err() })
}

func TestRedisStatsStore_NilClientIsNoop(t *testing.T) {
	var s *RedisStatsStore
	require.NoError(t, s.Record(context.Background(), domain.StatsEvent{Admitted: true}))
}
