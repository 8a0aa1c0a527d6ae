package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// LRUCache 带过期时间的 LRU 缓存，ttl <= 0 表示永不过期
type LRUCache[K comparable, T any] struct {
	storage *lru.Cache[K, CacheItem[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewLRUCache 初始化，size 是最大缓存条数（如 1000），ttl 是数据有效期
func NewLRUCache[K comparable, T any](size int, ttl time.Duration) *LRUCache[K, T] {
	if size <= 0 {
		size = 1
	}
	// lru.New 是线程安全的，size > 0 时不会返回错误
	c, _ := lru.New[K, CacheItem[T]](size)
	return &LRUCache[K, T]{
		storage: c,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Set 写入（LRU 中 Add 会自动处理更新）
func (c *LRUCache[K, T]) Set(key K, value T) {
	item := CacheItem[T]{Value: value}
	if c.ttl > 0 {
		item.ExpiredAt = c.now().Add(c.ttl)
	}
	c.storage.Add(key, item)
}

// Get 读取（带过期检查）
func (c *LRUCache[K, T]) Get(key K) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	if !item.ExpiredAt.IsZero() && c.now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}

	return item.Value, true
}

// Delete 删除
func (c *LRUCache[K, T]) Delete(key K) {
	c.storage.Remove(key)
}

// Clear 清空
func (c *LRUCache[K, T]) Clear() {
	c.storage.Purge()
}

// Len 当前条数
func (c *LRUCache[K, T]) Len() int {
	return c.storage.Len()
}
