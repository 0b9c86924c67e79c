package dedup_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/churchbilling/svc/dedup"
)

func newStore(t *testing.T, opts ...dedup.Option) (*dedup.RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return dedup.NewRedisStore(client, opts...), mr
}

func TestRedisStore_Claim(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("first claim wins", func(t *testing.T) {
		t.Parallel()
		store, mr := newStore(t, dedup.WithPrefix("test:"))

		ok, err := store.Claim(ctx, "billing:event:evt_1:notify", time.Hour)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, mr.Exists("test:billing:event:evt_1:notify"))
		assert.Equal(t, time.Hour, mr.TTL("test:billing:event:evt_1:notify"))

		ok, err = store.Claim(ctx, "billing:event:evt_1:notify", time.Hour)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("claim expires", func(t *testing.T) {
		t.Parallel()
		store, mr := newStore(t)

		ok, err := store.Claim(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)

		mr.FastForward(2 * time.Minute)

		ok, err = store.Claim(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)

		ok, err := store.Claim(ctx, "k", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		require.NoError(t, store.Release(ctx, "k"))

		ok, err = store.Claim(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("concurrent claims have one winner", func(t *testing.T) {
		t.Parallel()
		store, _ := newStore(t)

		var wins atomic.Int32
		var wg sync.WaitGroup
		for range 16 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if ok, err := store.Claim(ctx, "race", time.Minute); err == nil && ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, wins.Load())
	})

	t.Run("errors", func(t *testing.T) {
		t.Parallel()
		store, mr := newStore(t)

		_, err := store.Claim(ctx, "", time.Minute)
		assert.ErrorIs(t, err, dedup.ErrEmptyKey)

		mr.SetError("READONLY")
		_, err = store.Claim(ctx, "k", time.Minute)
		assert.Error(t, err)
	})

	t.Run("panics without client", func(t *testing.T) {
		t.Parallel()
		assert.PanicsWithValue(t, "dedup: redis client is required", func() { dedup.NewRedisStore(nil) })
	})
}
