package journal

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rustyeddy/tracker/pkg/id"
	"github.com/stretchr/testify/require"
)

// Redis tests need a server: TRACKER_REDIS_ADDR=localhost:6379 go test ./journal
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("TRACKER_REDIS_ADDR")
	if addr == "" {
		t.Skip("TRACKER_REDIS_ADDR not set")
	}
	return addr
}

func TestRedisJournal(t *testing.T) {
	addr := redisAddr(t)

	journalContract(t, func(t *testing.T) (Journal, Journal) {
		// a fresh prefix isolates every subtest
		prefix := "tracker-test-" + id.New()
		ctx := context.Background()

		a, err := DialRedis(ctx, &redis.Options{Addr: addr}, WithKeyPrefix(prefix))
		require.NoError(t, err)
		b, err := DialRedis(ctx, &redis.Options{Addr: addr}, WithKeyPrefix(prefix))
		require.NoError(t, err)

		t.Cleanup(func() {
			keys, _ := a.client.Keys(ctx, prefix+":*").Result()
			if len(keys) > 0 {
				_ = a.client.Del(ctx, keys...).Err()
			}
			_ = a.Close()
			_ = b.Close()
		})
		return a, b
	})
}
