// Package cache holds Redis-backed read-side helpers.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const rankingKey = "posts:views"

// ViewRanking keeps a sorted set of post view scores in Redis so the popular
// listing can be served without scanning the posts table. It is strictly
// best-effort on the write side: a down Redis never fails a read.
type ViewRanking struct {
	client *redis.Client
	logger *zap.Logger
}

// NewViewRanking creates a ViewRanking over the given Redis client
func NewViewRanking(client *redis.Client, logger *zap.Logger) *ViewRanking {
	return &ViewRanking{client: client, logger: logger}
}

// Bump increments the view score of a post. Errors are logged and swallowed.
func (r *ViewRanking) Bump(ctx context.Context, postID uuid.UUID) {
	if r == nil || r.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.client.ZIncrBy(ctx, rankingKey, 1, postID.String()).Err(); err != nil {
		r.logger.Warn("Failed to bump view ranking",
			zap.String("post_id", postID.String()),
			zap.Error(err),
		)
	}
}

// TopN returns the n highest-scored post ids, best first
func (r *ViewRanking) TopN(ctx context.Context, n int) ([]uuid.UUID, error) {
	if r == nil || r.client == nil {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	members, err := r.client.ZRevRange(ctx, rankingKey, 0, int64(n)-1).Result()
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		id, err := uuid.Parse(m)
		if err != nil {
			// Stale or foreign member, skip it
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Remove drops a post from the ranking, used when a post is deleted
func (r *ViewRanking) Remove(ctx context.Context, postID uuid.UUID) {
	if r == nil || r.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := r.client.ZRem(ctx, rankingKey, postID.String()).Err(); err != nil {
		r.logger.Warn("Failed to remove post from view ranking",
			zap.String("post_id", postID.String()),
			zap.Error(err),
		)
	}
}
