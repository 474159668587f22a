package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "interview-coach:jd:"

// Cache stores extracted job descriptions keyed by the exact source URL.
type Cache interface {
	Get(ctx context.Context, url string) (string, bool, error)
	Set(ctx context.Context, url, text string) error
}

// MemoryCache keeps every entry for the lifetime of the process.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

func (c *MemoryCache) Get(_ context.Context, url string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	text, ok := c.entries[url]
	return text, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, url, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[url] = text
	return nil
}

func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// LRUCache holds at most a fixed number of entries and evicts the least
// recently used one when full.
type LRUCache struct {
	entries *lru.Cache[string, string]
}

func NewLRUCache(capacity int) (*LRUCache, error) {
	entries, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRUCache{entries: entries}, nil
}

func (c *LRUCache) Get(_ context.Context, url string) (string, bool, error) {
	text, ok := c.entries.Get(url)
	return text, ok, nil
}

func (c *LRUCache) Set(_ context.Context, url, text string) error {
	c.entries.Add(url, text)
	return nil
}

func (c *LRUCache) Len() int {
	return c.entries.Len()
}

// RedisCache shares extracted job descriptions across processes. Entries do
// not expire.
type RedisCache struct {
	client *redis.Client
	prefix string
}

type RedisOptions struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// NewRedisCache connects to redis and verifies the connection with a ping.
func NewRedisCache(ctx context.Context, opts RedisOptions) (*RedisCache, error) {
	if strings.TrimSpace(opts.Address) == "" {
		return nil, errors.New("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Address,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Address, err)
	}

	return newRedisCache(client, opts.Prefix), nil
}

func newRedisCache(client *redis.Client, prefix string) *RedisCache {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisCache{client: client, prefix: prefix}
}

func (c *RedisCache) key(url string) string {
	return c.prefix + url
}

func (c *RedisCache) Get(ctx context.Context, url string) (string, bool, error) {
	text, err := c.client.Get(ctx, c.key(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return text, true, nil
}

func (c *RedisCache) Set(ctx context.Context, url, text string) error {
	if err := c.client.Set(ctx, c.key(url), text, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
