package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Gin_postgres_redis_library/models"

	"github.com/redis/go-redis/v9"
)

// BorrowerCache 借阅人注册后不可修改，所以缓存不需要失效，只靠 TTL 控制内存。
// nil *BorrowerCache 可以直接用：永远 miss，写入忽略。
type BorrowerCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewBorrowerCache(rdb *redis.Client, ttl time.Duration) *BorrowerCache {
	if rdb == nil {
		return nil
	}
	return &BorrowerCache{rdb: rdb, ttl: ttl}
}

func key(id string) string { return fmt.Sprintf("lib:borrower:%s", id) }

// Get returns the cached borrower, or (nil, nil) on a miss.
func (c *BorrowerCache) Get(ctx context.Context, id string) (*models.Borrower, error) {
	if c == nil {
		return nil, nil
	}
	b, err := c.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var br models.Borrower
	if err := json.Unmarshal(b, &br); err != nil {
		return nil, err
	}
	return &br, nil
}

func (c *BorrowerCache) Set(ctx context.Context, br *models.Borrower) error {
	if c == nil || br == nil {
		return nil
	}
	b, err := json.Marshal(br)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(br.ID), b, c.ttl).Err()
}

// Loader 从数据库读借阅人
type Loader func(ctx context.Context, id string) (*models.Borrower, error)

// GetOrLoad 先查缓存，miss 时调用 load 并回填。缓存出错不影响读库。
func (c *BorrowerCache) GetOrLoad(ctx context.Context, id string, load Loader) (*models.Borrower, error) {
	if br, err := c.Get(ctx, id); err == nil && br != nil {
		return br, nil
	}
	br, err := load(ctx, id)
	if err != nil {
		return nil, err
	}
	_ = c.Set(ctx, br) // 回填失败忽略
	return br, nil
}
