package domain

import (
	"context"
	"time"
)

// PlaceSearcher resolves a hotel query to the provider's best match,
// returned as the raw decoded POI object.
type PlaceSearcher interface {
	Search(ctx context.Context, q HotelQuery) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttl time.Duration) error
}
