package redis

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
)

func newTestThrottle(t *testing.T, max int, window time.Duration) (*LoginThrottle, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewLoginThrottle(client, max, window), mr
}

func TestLoginThrottle_BlocksAfterMaxAttempts(t *testing.T) {
	throttle, _ := newTestThrottle(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := throttle.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, err := throttle.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = throttle.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok, "other usernames are unaffected")
}

func TestLoginThrottle_ConcurrentBurstIsCapped(t *testing.T) {
	throttle, mr := newTestThrottle(t, 5, time.Minute)
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := throttle.Allow(ctx, "alice")
			if err == nil && ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, allowed.Load())
	got, err := mr.Get("product-api:login:attempts:alice")
	require.NoError(t, err)
	assert.Equal(t, "20", got)
}

func TestLoginThrottle_WindowExpires(t *testing.T) {
	throttle, mr := newTestThrottle(t, 1, time.Minute)
	ctx := context.Background()

	ok, _ := throttle.Allow(ctx, "alice")
	assert.True(t, ok)
	ok, _ = throttle.Allow(ctx, "alice")
	assert.False(t, ok)

	mr.FastForward(time.Minute)

	ok, err := throttle.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok, "later attempts must not extend the window")
}

func TestLoginThrottle_Reset(t *testing.T) {
	throttle, mr := newTestThrottle(t, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := throttle.Allow(ctx, "alice")
		require.NoError(t, err)
	}
	require.NoError(t, throttle.Reset(ctx, "alice"))

	assert.False(t, mr.Exists("product-api:login:attempts:alice"))
	ok, err := throttle.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLoginThrottle_ErrorsWhenRedisDown(t *testing.T) {
	throttle, mr := newTestThrottle(t, 2, time.Minute)
	mr.Close()

	_, err := throttle.Allow(context.Background(), "alice")
	assert.Error(t, err)
	assert.Error(t, throttle.Reset(context.Background(), "alice"))
}

func TestLoginThrottle_Defaults(t *testing.T) {
	throttle := NewLoginThrottle(nil, 0, 0)
	assert.EqualValues(t, defaultMaxAttempts, throttle.maxAttempts)
	assert.Equal(t, defaultAttemptWindow, throttle.window)
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()

	client, err := Connect(context.Background(), Config{Addr: addr})
	require.NoError(t, err)
	defer client.Close()

	check := Ping(client)
	require.NoError(t, check(context.Background()))

	mr.Close()
	assert.Error(t, check(context.Background()))

	_, err = Connect(context.Background(), Config{Addr: addr, Timeout: 200 * time.Millisecond})
	assert.Error(t, err)
}
