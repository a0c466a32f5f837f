package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotelmap/internal/domain"
)

// CachedSearcher serves repeated queries from a cache.
// Only successful lookups are stored; misses and errors always reach the provider.
type CachedSearcher struct {
	next  domain.PlaceSearcher
	cache domain.Cache
	ttl   time.Duration
}

func NewCachedSearcher(next domain.PlaceSearcher, cache domain.Cache, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, cache: cache, ttl: ttl}
}

func placeKey(q domain.HotelQuery) string {
	return fmt.Sprintf("place:%s:%s", q.City, q.Name)
}

func (s *CachedSearcher) Search(ctx context.Context, q domain.HotelQuery) (map[string]any, error) {
	key := placeKey(q)
	var poi map[string]any
	ok, err := s.cache.Get(ctx, key, &poi)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache read failed")
	}
	if ok && poi != nil {
		log.Debug().Int("row", q.Row).Str("key", key).Msg("place cache hit")
		return poi, nil
	}

	poi, err = s.next.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, poi, s.ttl); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("cache write failed")
	}
	return poi, nil
}
