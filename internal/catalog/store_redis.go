package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/fichas/internal/platform/apperr"
	"github.com/taibuivan/fichas/internal/platform/constants"
)

// # Read-through cache
//
// The cache only speeds up option lists. A Redis failure never fails the
// request: the call falls through to the wrapped store and is logged.
//
// Every key embeds the cache generation. [CachedImporter] bumps it once an
// import commits, which retires every entry written before the import.

// CachedRepository caches [Repository.DistinctValues] in Redis. Page queries
// are passed through untouched.
type CachedRepository struct {
	next  Repository
	cache *facetCache
}

func NewCachedRepository(next Repository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedRepository {
	return &CachedRepository{next: next, cache: &facetCache{client: client, ttl: ttl, logger: logger}}
}

func (repository *CachedRepository) DistinctValues(ctx context.Context, field Field, predicate Predicate) ([]string, error) {
	suffix := string(field) + ":" + strconv.FormatUint(xxhash.Sum64String(predicate.Key()), 16)
	return repository.cache.load(ctx, constants.RedisPrefixFacet, suffix, func() ([]string, error) {
		return repository.next.DistinctValues(ctx, field, predicate)
	})
}

func (repository *CachedRepository) QueryPage(ctx context.Context, predicate Predicate, order Order, offset, limit int) ([]*Record, int, error) {
	return repository.next.QueryPage(ctx, predicate, order, offset, limit)
}

// CachedDependencyMap caches [DependencyMap] lookups in Redis.
type CachedDependencyMap struct {
	next  DependencyMap
	cache *facetCache
}

func NewCachedDependencyMap(next DependencyMap, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CachedDependencyMap {
	return &CachedDependencyMap{next: next, cache: &facetCache{client: client, ttl: ttl, logger: logger}}
}

func (links *CachedDependencyMap) ChildrenOf(ctx context.Context, link Link, parentValue string) ([]string, error) {
	suffix := link.String() + ":" + strconv.Quote(parentValue)
	return links.cache.load(ctx, constants.RedisPrefixLink, suffix, func() ([]string, error) {
		return links.next.ChildrenOf(ctx, link, parentValue)
	})
}

func (links *CachedDependencyMap) ParentValues(ctx context.Context, link Link) ([]string, error) {
	return links.cache.load(ctx, constants.RedisPrefixLink, link.String(), func() ([]string, error) {
		return links.next.ParentValues(ctx, link)
	})
}

// CachedImporter runs an import and then retires every cached option list.
type CachedImporter struct {
	next   Importer
	client *redis.Client
	logger *slog.Logger
}

func NewCachedImporter(next Importer, client *redis.Client, logger *slog.Logger) *CachedImporter {
	return &CachedImporter{next: next, client: client, logger: logger}
}

// Import fails with STORE_UNAVAILABLE when the records were committed but the
// cache could not be retired; running the import again is safe.
func (importer *CachedImporter) Import(ctx context.Context, records []*Record, rows []LinkRow) error {
	if err := importer.next.Import(ctx, records, rows); err != nil {
		return err
	}

	generation, err := importer.client.Incr(ctx, constants.RedisKeyCacheGeneration).Result()
	if err != nil {
		return apperr.StoreUnavailable(fmt.Errorf("cache: invalidate after import: %w", err))
	}

	importer.logger.Info("facet_cache_invalidated", slog.Int64("generation", generation))
	return nil
}

type facetCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// load returns the cached list under prefix+generation+suffix, filling it from
// fill on a miss. Without a readable generation nothing is cached.
func (cache *facetCache) load(ctx context.Context, prefix, suffix string, fill func() ([]string, error)) ([]string, error) {
	generation, err := cache.client.Get(ctx, constants.RedisKeyCacheGeneration).Result()
	switch {
	case errors.Is(err, redis.Nil):
		generation = "0"
	case err != nil:
		cache.logger.Warn("facet_cache_unavailable", slog.String("key", constants.RedisKeyCacheGeneration), slog.Any("error", err))
		return fill()
	}

	key := prefix + generation + ":" + suffix

	raw, err := cache.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var values []string
		if jsonErr := json.Unmarshal(raw, &values); jsonErr == nil {
			return values, nil
		}
		cache.logger.Warn("facet_cache_corrupt", slog.String("key", key))

	case !errors.Is(err, redis.Nil):
		cache.logger.Warn("facet_cache_unavailable", slog.String("key", key), slog.Any("error", err))
	}

	values, err := fill()
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(values)
	if err == nil {
		err = cache.client.Set(ctx, key, payload, cache.ttl).Err()
	}
	if err != nil {
		cache.logger.Warn("facet_cache_write_failed", slog.String("key", key), slog.Any("error", err))
	}

	return values, nil
}
