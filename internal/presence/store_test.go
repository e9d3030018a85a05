package presence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeContract runs the same behaviour checks against every Store implementation.
func storeContract(t *testing.T, s Store, expire func(d time.Duration)) {
	ctx := context.Background()

	active, err := s.Active(ctx, "customer:u1")
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, s.SetActive(ctx, "customer:u1", "conv-1", time.Minute))
	active, err = s.Active(ctx, "customer:u1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", active)

	// switching conversations replaces the old one
	require.NoError(t, s.SetActive(ctx, "customer:u1", "conv-2", time.Minute))
	require.NoError(t, s.Clear(ctx, "customer:u1", "conv-1"))
	active, err = s.Active(ctx, "customer:u1")
	require.NoError(t, err)
	assert.Equal(t, "conv-2", active, "clearing a stale conversation must not clear the current one")

	require.NoError(t, s.Clear(ctx, "customer:u1", "conv-2"))
	active, err = s.Active(ctx, "customer:u1")
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, s.SetActive(ctx, "provider:u1", "conv-3", time.Minute))
	require.NoError(t, s.Clear(ctx, "provider:u1", ""))
	active, err = s.Active(ctx, "provider:u1")
	require.NoError(t, err)
	assert.Empty(t, active)

	require.NoError(t, s.SetActive(ctx, "customer:u2", "conv-4", time.Second))
	expire(2 * time.Second)
	active, err = s.Active(ctx, "customer:u2")
	require.NoError(t, err)
	assert.Empty(t, active, "presence must expire without a heartbeat")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	storeContract(t, s, func(d time.Duration) { now = now.Add(d) })
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	storeContract(t, NewRedisStore(client), mr.FastForward)
}

func TestRedisStoreUsesPrefixedKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	require.NoError(t, NewRedisStore(client).SetActive(context.Background(), "customer:u1", "conv-1", time.Minute))

	v, err := mr.Get("chat:active:customer:u1")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", v)
	assert.Equal(t, time.Minute, mr.TTL("chat:active:customer:u1"))
}
