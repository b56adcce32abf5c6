package cache

import (
	"context"
	"encoding/json"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// LRU 进程内缓存，容量固定，每个条目带 TTL
type LRU struct {
	lruCache *lru.Cache[string, entry]
	ttl      time.Duration
	now      func() time.Time
}

func NewLRU(size int, ttl time.Duration) (*LRU, error) {
	if size <= 0 {
		size = 500
	}
	l, err := lru.New[string, entry](size)
	if err != nil {
		return nil, errors.Wrap(err, "create LRU cache")
	}
	return &LRU{lruCache: l, ttl: ttl, now: time.Now}, nil
}

func (c *LRU) Get(_ context.Context, key string, dest interface{}) bool {
	val, ok := c.lruCache.Get(key)
	if !ok {
		return false
	}

	if c.now().After(val.expiresAt) {
		c.lruCache.Remove(key)
		return false
	}

	if err := json.Unmarshal(val.data, dest); err != nil {
		logrus.WithError(err).WithField("key", key).Warn("dropping undecodable cache entry")
		c.lruCache.Remove(key)
		return false
	}
	return true
}

func (c *LRU) Set(_ context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("cache value not encodable")
		return
	}
	c.lruCache.Add(key, entry{data: data, expiresAt: c.now().Add(c.ttl)})
}

func (c *LRU) Delete(_ context.Context, keys ...string) {
	for _, key := range keys {
		c.lruCache.Remove(key)
	}
}

func (c *LRU) Len() int {
	return c.lruCache.Len()
}
