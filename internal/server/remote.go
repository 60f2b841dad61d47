package server

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/codeswitch/internal/model"
)

const remoteKeyPrefix = "codeswitch:result:"

// remoteCache keeps results in Redis so that several server instances
// share them. Results are stored as the JSON the API returns.
type remoteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func newRemoteCache(cfg Config) *remoteCache {
	if cfg.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	return &remoteCache{client: client, ttl: cfg.RedisTTL}
}

// remoteKey hashes the text so keys stay short for long inputs.
func remoteKey(k cacheKey) string {
	sum := sha256.Sum256([]byte(k.text))
	return remoteKeyPrefix + strconv.FormatFloat(k.threshold, 'g', -1, 64) + ":" + hex.EncodeToString(sum[:])
}

func (c *remoteCache) get(ctx context.Context, k cacheKey) (model.Result, bool, error) {
	data, err := c.client.Get(ctx, remoteKey(k)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Result{}, false, nil
	}
	if err != nil {
		return model.Result{}, false, fmt.Errorf("redis get: %w", err)
	}
	var res model.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return model.Result{}, false, fmt.Errorf("decode cached result: %w", err)
	}
	return res, true, nil
}

func (c *remoteCache) set(ctx context.Context, k cacheKey, res model.Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := c.client.Set(ctx, remoteKey(k), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *remoteCache) ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *remoteCache) close() error {
	return c.client.Close()
}
