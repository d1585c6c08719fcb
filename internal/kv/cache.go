package kv

import (
	"context"

	"github.com/patrickmn/go-cache"
)

var _ Store = (*Cache)(nil)

// Cache keeps values in a go-cache instance that never expires entries.
type Cache struct {
	c *cache.Cache
}

func NewCache() *Cache {
	return &Cache{c: cache.New(cache.NoExpiration, 0)}
}

func (s *Cache) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := s.c.Get(key)
	if !ok {
		return "", false, nil
	}
	str, ok := v.(string)
	return str, ok, nil
}

func (s *Cache) Set(_ context.Context, key, value string) error {
	s.c.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *Cache) Remove(_ context.Context, key string) error {
	s.c.Delete(key)
	return nil
}

// Len reports the number of cached entries.
func (s *Cache) Len() int {
	return s.c.ItemCount()
}
