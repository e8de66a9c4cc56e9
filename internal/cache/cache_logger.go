package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern invalidates a key pattern and logs instead of failing
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes cache keys and logs instead of failing
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidatePathCache drops a path, its module tree and every path listing.
func InvalidatePathCache(ctx context.Context, cm *CacheManager, pathID uint) {
	SafeDelete(ctx, cm.Path,
		fmt.Sprintf("id:%d", pathID),
		fmt.Sprintf("tree:%d", pathID))
	SafeInvalidatePattern(ctx, cm.Path, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}

// InvalidateProblemSetCache drops a cached problem set.
func InvalidateProblemSetCache(ctx context.Context, cm *CacheManager, problemSetID uint) {
	SafeDelete(ctx, cm.ProblemSet, fmt.Sprintf("id:%d", problemSetID))
	SafeInvalidatePattern(ctx, cm.Stats, "*")
}

// InvalidateCertificateCache drops a cached certificate verification.
func InvalidateCertificateCache(ctx context.Context, cm *CacheManager, certificateID string) {
	SafeDelete(ctx, cm.Certificate, "verify:"+certificateID)
}
