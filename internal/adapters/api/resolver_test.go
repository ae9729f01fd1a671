package api

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// rankedUsers registers a ranking of n users named USER1..USERn with ids id-1..id-n
func rankedUsers(f *fakeWarEra, n int) {
	items := make([]map[string]string, n)
	for i := range items {
		items[i] = map[string]string{"user": fmt.Sprintf("id-%d", i+1)}
	}
	f.on("ranking.getRanking", ok(map[string]interface{}{"items": items}))
	f.on("user.getUserLite", func(in gjson.Result) (interface{}, int) {
		var idx int
		fmt.Sscanf(in.Get("userId").String(), "id-%d", &idx)
		return map[string]string{"username": fmt.Sprintf("USER%d", idx)}, http.StatusOK
	})
}

func testResolverOptions() ResolverOptions {
	opts := DefaultResolverOptions()
	opts.PauseEvery = 0
	return opts
}

func TestUsernameResolver_FindsUserAndCachesScan(t *testing.T) {
	// Arrange
	f := newFakeWarEra(t)
	rankedUsers(f, 120)
	client, clock := newTestClient(f, 0)
	resolver := NewUsernameResolver(client, testResolverOptions(), clock)

	// Act
	id, found, err := resolver.ResolveUsername(context.Background(), "  user75 ")

	// Assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "id-75", id)
	// ranking + two chunks of profiles; scan stops inside the second chunk
	assert.Equal(t, 3, f.requestCount())
	assert.Equal(t, 75, resolver.CachedCount())

	// A name seen during the scan resolves from cache
	id, found, err = resolver.ResolveUsername(context.Background(), "USER12")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "id-12", id)
	assert.Equal(t, 3, f.requestCount())
}

func TestUsernameResolver_NotFoundPausesBetweenChunks(t *testing.T) {
	// Arrange
	f := newFakeWarEra(t)
	rankedUsers(f, 120)
	client, clock := newTestClient(f, 0)
	opts := testResolverOptions()
	opts.PauseEvery = 2
	opts.PauseDuration = 150 * time.Millisecond
	resolver := NewUsernameResolver(client, opts, clock)

	// Act
	id, found, err := resolver.ResolveUsername(context.Background(), "nobody")

	// Assert
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, id)
	assert.Equal(t, 120, resolver.CachedCount())
	assert.Equal(t, []time.Duration{150 * time.Millisecond}, clock.Sleeps(), "pause after chunk index 2")
}

func TestUsernameResolver_RetriesFailedChunkOnce(t *testing.T) {
	// Arrange
	f := newFakeWarEra(t)
	rankedUsers(f, 10)
	var failures int32 = 1
	f.on("user.getUserLite", func(in gjson.Result) (interface{}, int) {
		if atomic.AddInt32(&failures, -1) >= 0 {
			return nil, http.StatusTooManyRequests
		}
		return map[string]string{"username": "target"}, http.StatusOK
	})
	client, clock := newTestClient(f, 0)
	opts := testResolverOptions()
	opts.RetryDelay = 2 * time.Second
	resolver := NewUsernameResolver(client, opts, clock)

	// Act
	id, found, err := resolver.ResolveUsername(context.Background(), "target")

	// Assert
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "id-1", id)
	assert.Equal(t, []time.Duration{2 * time.Second}, clock.Sleeps())
}

func TestUsernameResolver_CacheExpires(t *testing.T) {
	f := newFakeWarEra(t)
	rankedUsers(f, 5)
	client, clock := newTestClient(f, 0)
	opts := testResolverOptions()
	opts.CacheTTL = time.Hour
	resolver := NewUsernameResolver(client, opts, clock)

	_, _, err := resolver.ResolveUsername(context.Background(), "user3")
	require.NoError(t, err)
	before := f.requestCount()

	clock.Advance(2 * time.Hour)
	id, found, err := resolver.ResolveUsername(context.Background(), "user3")

	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "id-3", id)
	assert.Greater(t, f.requestCount(), before)
}

func TestUsernameResolver_RankingFailure(t *testing.T) {
	f := newFakeWarEra(t)
	f.on("ranking.getRanking", failing(http.StatusBadRequest))
	client, clock := newTestClient(f, 0)
	resolver := NewUsernameResolver(client, testResolverOptions(), clock)

	_, found, err := resolver.ResolveUsername(context.Background(), "anyone")

	assert.ErrorContains(t, err, "failed to fetch ranking")
	assert.False(t, found)
}

func TestUsernameResolver_EmptyNameShortCircuits(t *testing.T) {
	f := newFakeWarEra(t)
	client, clock := newTestClient(f, 0)
	resolver := NewUsernameResolver(client, testResolverOptions(), clock)

	_, found, err := resolver.ResolveUsername(context.Background(), "   ")

	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 0, f.requestCount())
}
