package inventory

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/liteapi-travel/room-matcher-async/internal/model"
	"github.com/liteapi-travel/room-matcher-async/internal/store"
)

// DefaultCacheKey holds the cached inventory snapshot.
const DefaultCacheKey = "room_inventory:snapshot"

// Cached serves the inventory from a KV snapshot and refreshes it from the
// underlying source when the snapshot is missing or expired. A failing cache
// never fails a lookup; the source is used directly instead.
type Cached struct {
	source Source
	kv     store.KV
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewCached(source Source, kv store.KV, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{source: source, kv: kv, key: DefaultCacheKey, ttl: ttl, logger: logger}
}

func (c *Cached) Rooms(ctx context.Context) ([]model.Room, error) {
	data, err := c.kv.Get(ctx, c.key)
	switch {
	case err == nil:
		var rooms []model.Room
		if err := json.Unmarshal([]byte(data), &rooms); err == nil {
			return rooms, nil
		}
		c.logger.Warn("discarding corrupt inventory snapshot", zap.String("key", c.key))
		if err := c.kv.Del(ctx, c.key); err != nil {
			c.logger.Warn("failed to delete inventory snapshot", zap.Error(err))
		}
	case errors.Is(err, store.ErrNotFound):
		// miss
	default:
		c.logger.Warn("inventory cache unavailable", zap.Error(err))
	}

	rooms, err := c.source.Rooms(ctx)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(rooms)
	if err != nil {
		return rooms, nil
	}
	if err := c.kv.Set(ctx, c.key, string(payload), c.ttl); err != nil {
		c.logger.Warn("failed to store inventory snapshot", zap.Error(err))
	}
	return rooms, nil
}

// Invalidate drops the snapshot so the next lookup hits the source.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.kv.Del(ctx, c.key)
}
