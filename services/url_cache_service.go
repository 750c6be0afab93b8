package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"

	"wardrobeapi/logging"
)

// presigned read URLs are valid for 15 minutes, cached entries expire earlier
const cacheEntryExpiration = 12 * time.Minute

type URLCacheServiceProvider interface {
	GetReadURL(ctx context.Context, objectKey string) (string, error)
}

type URLCacheService struct {
	cache      *cache.LoadableCache[string]
	bucketName string
}

// NewURLCacheService caches presigned read URLs in ristretto and presigns on a miss.
func NewURLCacheService(storage AWSServiceProvider, bucketName string) (*URLCacheService, error) {
	ristrettoCache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e5,
		MaxCost:     1 << 24, // 16MB of URL strings
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ristretto cache: %w", err)
	}
	ristrettoStore := ristretto_store.NewRistretto(ristrettoCache)

	loadFunction := func(ctx context.Context, key any) (string, []store.Option, error) {
		objectKey, ok := key.(string)
		if !ok {
			return "", nil, fmt.Errorf("invalid key type provided to URL cache: expected string, got %T", key)
		}
		logging.FromContext(ctx).Debug("url cache miss", "key", objectKey)
		url, err := storage.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
		return url, []store.Option{store.WithExpiration(cacheEntryExpiration), store.WithCost(int64(len(url)))}, err
	}

	return &URLCacheService{
		cache:      cache.NewLoadable[string](loadFunction, cache.New[string](ristrettoStore)),
		bucketName: bucketName,
	}, nil
}

func (s *URLCacheService) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if objectKey == "" {
		return "", nil
	}
	return s.cache.Get(ctx, objectKey)
}
