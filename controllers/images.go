package controllers

import (
	"context"
	"sync"

	"github.com/getsentry/sentry-go"

	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/services"
)

// ImageResolver turns stored object keys into presigned read URLs. URLs and
// inline data URIs pass through untouched.
type ImageResolver struct {
	AWSService services.AWSServiceProvider
	URLCache   services.URLCacheServiceProvider
	BucketName string
}

func (r *ImageResolver) Resolve(ctx context.Context, ref string) string {
	if r == nil || !services.IsStorageKey(ref) || r.AWSService == nil {
		return ref
	}
	logger := logging.FromContext(ctx).With("object_key", ref)

	if r.URLCache != nil {
		url, err := r.URLCache.GetReadURL(ctx, ref)
		if err == nil {
			return url
		}
		logger.Warn("url cache failed, presigning directly", "error", err)
		sentry.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("failure_type", "cache_system")
			scope.SetExtra("objectKey", ref)
			sentry.CaptureException(err)
		})
	}

	url, err := r.AWSService.GetPresignedR2FileReadURL(ctx, r.BucketName, ref)
	if err != nil {
		logger.Error("presigning read url failed", "error", err)
		sentry.CaptureException(err)
		return ""
	}
	return url
}

// Items resolves image references concurrently, keeping the order.
func (r *ImageResolver) Items(ctx context.Context, items []models.ClothingItem) []models.ClothingItem {
	resolved := make([]models.ClothingItem, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		wg.Add(1)
		go func(index int, item models.ClothingItem) {
			defer wg.Done()
			item.ImageURL = r.Resolve(ctx, item.ImageURL)
			resolved[index] = item
		}(i, item)
	}
	wg.Wait()
	return resolved
}

func (r *ImageResolver) Outfits(ctx context.Context, outfits []models.Outfit) []models.Outfit {
	resolved := make([]models.Outfit, len(outfits))
	for i, outfit := range outfits {
		outfit.Items = outfit.CloneItems()
		for j := range outfit.Items {
			outfit.Items[j].ImageURL = r.Resolve(ctx, outfit.Items[j].ImageURL)
		}
		resolved[i] = outfit
	}
	return resolved
}
