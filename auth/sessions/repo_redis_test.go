package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T, ttl time.Duration) (*RedisRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	return NewRedisRepo(rdb, ttl), mr
}

func TestRedisRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("roundtrip", func(t *testing.T) {
		repo, _ := newRedisRepo(t, 15*time.Minute)
		record := Record{
			RequestToken:       "tok",
			RequestTokenSecret: "sec",
			CreatedAt:          time.Unix(1700000000, 0).UTC(),
		}

		require.NoError(t, repo.Upsert(ctx, "sid-1", record))

		got, err := repo.Get(ctx, "sid-1")
		require.NoError(t, err)
		require.Equal(t, record, got)
	})

	t.Run("unknown id", func(t *testing.T) {
		repo, _ := newRedisRepo(t, 15*time.Minute)

		_, err := repo.Get(ctx, "never-created")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("records expire with the key ttl", func(t *testing.T) {
		repo, mr := newRedisRepo(t, 15*time.Minute)

		require.NoError(t, repo.Upsert(ctx, "sid-1", Record{RequestToken: "tok", CreatedAt: time.Now()}))

		mr.FastForward(16 * time.Minute)

		_, err := repo.Get(ctx, "sid-1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		repo, _ := newRedisRepo(t, 15*time.Minute)

		require.NoError(t, repo.Upsert(ctx, "sid-1", Record{RequestToken: "tok", CreatedAt: time.Now()}))
		require.NoError(t, repo.Delete(ctx, "sid-1"))

		_, err := repo.Get(ctx, "sid-1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("dial failure", func(t *testing.T) {
		_, err := Dial("127.0.0.1:1", "", 0)
		require.Error(t, err)
	})
}
