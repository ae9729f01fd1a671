package api

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andrescamacho/warera-economy-go/internal/application/common"
	"github.com/andrescamacho/warera-economy-go/internal/domain/shared"
	"github.com/andrescamacho/warera-economy-go/pkg/ttlcache"
	"github.com/andrescamacho/warera-economy-go/pkg/utils"
)

// ResolverOptions tunes the ranking scan
type ResolverOptions struct {
	ChunkSize     int
	RetryDelay    time.Duration
	PauseEvery    int
	PauseDuration time.Duration
	RankingLimit  int
	CacheTTL      time.Duration
	CacheMaxSize  int
}

// DefaultResolverOptions mirrors the config defaults
func DefaultResolverOptions() ResolverOptions {
	return ResolverOptions{
		ChunkSize:     50,
		RetryDelay:    time.Second,
		PauseEvery:    5,
		PauseDuration: 150 * time.Millisecond,
		RankingLimit:  10000,
		CacheTTL:      24 * time.Hour,
		CacheMaxSize:  50000,
	}
}

// UsernameResolver maps usernames to user ids by scanning the level ranking
type UsernameResolver struct {
	client *Client
	cache  *ttlcache.Cache[string, string]
	opts   ResolverOptions
	clock  shared.Clock
}

// NewUsernameResolver creates a resolver with its own TTL cache
// If clock is nil, uses RealClock
func NewUsernameResolver(client *Client, opts ResolverOptions, clock shared.Clock) *UsernameResolver {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 50
	}
	if opts.RankingLimit <= 0 {
		opts.RankingLimit = 10000
	}
	return &UsernameResolver{
		client: client,
		cache:  ttlcache.New[string, string](opts.CacheTTL, opts.CacheMaxSize, clock),
		opts:   opts,
		clock:  clock,
	}
}

// ResolveUsername returns the user id for a case-insensitive username.
// It stops scanning as soon as the user is found and caches every username seen.
func (r *UsernameResolver) ResolveUsername(ctx context.Context, username string) (string, bool, error) {
	logger := common.LoggerFromContext(ctx)

	target := strings.ToLower(strings.TrimSpace(username))
	if target == "" {
		return "", false, nil
	}

	// Fast path: cache hit
	if id, ok := r.cache.Get(target); ok {
		logger.Log("DEBUG", "Username cache hit", map[string]interface{}{
			"username": target,
			"user_id":  id,
		})
		return id, true, nil
	}

	ranking, err := r.client.Query(ctx, "ranking.getRanking", map[string]interface{}{
		"rankingType": "userLevel",
		"limit":       r.opts.RankingLimit,
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to fetch ranking: %w", err)
	}

	var userIDs []string
	for _, item := range ranking.Get("items").Array() {
		if id := item.Get("user").String(); id != "" {
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) == 0 {
		logger.Log("INFO", "No users in ranking", nil)
		return "", false, nil
	}

	for index, chunk := range utils.Chunk(userIDs, r.opts.ChunkSize) {
		calls := make([]Call, len(chunk))
		for i, id := range chunk {
			calls[i] = Call{Procedure: "user.getUserLite", Input: map[string]string{"userId": id}}
		}

		results, err := r.client.Batch(ctx, calls)
		if err != nil {
			// Rate limited: wait and retry once
			r.clock.Sleep(r.opts.RetryDelay)
			results, err = r.client.Batch(ctx, calls)
			if err != nil {
				if ctx.Err() != nil {
					return "", false, ctx.Err()
				}
				logger.Log("WARNING", "Ranking chunk failed, skipping", map[string]interface{}{
					"chunk": index,
					"error": err.Error(),
				})
				continue
			}
		}

		for i, profile := range results {
			name := strings.ToLower(profile.Get("username").String())
			if name == "" {
				continue
			}
			r.cache.Set(name, chunk[i])
			if name == target {
				logger.Log("INFO", "Resolved username", map[string]interface{}{
					"username": target,
					"user_id":  chunk[i],
					"rank":     index*r.opts.ChunkSize + i + 1,
				})
				return chunk[i], true, nil
			}
		}

		// Small pause every few chunks to avoid rate limiting
		if r.opts.PauseEvery > 0 && index > 0 && index%r.opts.PauseEvery == 0 {
			r.clock.Sleep(r.opts.PauseDuration)
		}
	}

	logger.Log("INFO", "Username not found in ranking", map[string]interface{}{
		"username": target,
		"scanned":  len(userIDs),
	})
	return "", false, nil
}

// CachedCount returns the number of usernames currently cached
func (r *UsernameResolver) CachedCount() int {
	return r.cache.Len()
}
