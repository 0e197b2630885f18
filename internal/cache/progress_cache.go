package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lrperlmu/emotional-clarity-sub000/internal/model"
)

const activeSessionsKey = "sessions:active"

// ProgressCache keeps the latest navigation state of each session in Redis
// for the researcher dashboard.
type ProgressCache interface {
	Set(ctx context.Context, progress *model.Progress) error
	Get(ctx context.Context, sessionID string) (*model.Progress, error)
	List(ctx context.Context) ([]*model.Progress, error)
	Remove(ctx context.Context, sessionID string) error
}

type progressCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewProgressCache(client *redis.Client) ProgressCache {
	return &progressCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *progressCache) key(sessionID string) string {
	return "session:" + sessionID + ":progress"
}

func (c *progressCache) Set(ctx context.Context, progress *model.Progress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(progress.SessionID), data, c.ttl).Err(); err != nil {
		return err
	}
	return c.client.SAdd(ctx, activeSessionsKey, progress.SessionID).Err()
}

func (c *progressCache) Get(ctx context.Context, sessionID string) (*model.Progress, error) {
	data, err := c.client.Get(ctx, c.key(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var progress model.Progress
	if err := json.Unmarshal([]byte(data), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (c *progressCache) List(ctx context.Context) ([]*model.Progress, error) {
	ids, err := c.client.SMembers(ctx, activeSessionsKey).Result()
	if err != nil {
		return nil, err
	}

	var out []*model.Progress
	for _, id := range ids {
		progress, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if progress == nil {
			// expired entry, drop it from the set
			c.client.SRem(ctx, activeSessionsKey, id)
			continue
		}
		out = append(out, progress)
	}
	return out, nil
}

func (c *progressCache) Remove(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.key(sessionID)).Err(); err != nil {
		return err
	}
	return c.client.SRem(ctx, activeSessionsKey, sessionID).Err()
}
