package sessionstore

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// ttlStore holds values in memory and evicts them after idleTTL without access
type ttlStore[T any] struct {
	cache *ttlcache.Cache[string, T]
}

func NewTTLStore[T any](idleTTL time.Duration) (*ttlStore[T], func()) {
	cache := ttlcache.New[string, T](
		ttlcache.WithTTL[string, T](idleTTL),
	)
	go cache.Start()

	return &ttlStore[T]{cache: cache}, cache.Stop
}

func (s *ttlStore[T]) Set(id string, value T) {
	s.cache.Set(id, value, ttlcache.DefaultTTL)
}

// Get returns the value and extends its lifetime
func (s *ttlStore[T]) Get(id string) (T, bool) {
	item := s.cache.Get(id)
	if item == nil {
		var zero T
		return zero, false
	}
	return item.Value(), true
}

func (s *ttlStore[T]) Delete(id string) {
	s.cache.Delete(id)
}

func (s *ttlStore[T]) Len() int {
	return s.cache.Len()
}
