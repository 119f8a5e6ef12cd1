package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"

	"github.com/msomdec/devconnector/internal/domain"
)

// Cache is the subset of *memcache.Client used by CachedFetcher.
type Cache interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
}

// CachedFetcher serves repository lists from a cache before asking next.
// Cache failures are logged and otherwise ignored; failed lookups are
// never cached.
type CachedFetcher struct {
	next   domain.RepoFetcher
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedFetcher wraps next with cache. Entries expire after ttl.
func NewCachedFetcher(next domain.RepoFetcher, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache, ttl: ttl, logger: logger}
}

func (f *CachedFetcher) FetchPublicRepos(ctx context.Context, username string) ([]domain.Repo, error) {
	key := cacheKey(username)

	item, err := f.cache.Get(key)
	switch {
	case err == nil:
		var repos []domain.Repo
		if err := json.Unmarshal(item.Value, &repos); err == nil {
			return repos, nil
		}
		f.logger.Warn("discarding corrupt cache entry", "key", key)
	case !errors.Is(err, memcache.ErrCacheMiss):
		f.logger.Warn("repo cache get", "key", key, "error", err)
	}

	repos, err := f.next.FetchPublicRepos(ctx, username)
	if err != nil {
		return nil, err
	}

	value, err := json.Marshal(repos)
	if err != nil {
		return repos, nil
	}
	if err := f.cache.Set(&memcache.Item{Key: key, Value: value, Expiration: int32(f.ttl.Seconds())}); err != nil {
		f.logger.Warn("repo cache set", "key", key, "error", err)
	}
	return repos, nil
}

// cacheKey lowercases username since GitHub logins are case-insensitive.
// Memcache keys may not contain spaces or control characters.
func cacheKey(username string) string {
	return "github:repos:" + strings.Map(func(r rune) rune {
		if r <= ' ' || r == 0x7f {
			return '_'
		}
		return r
	}, strings.ToLower(username))
}
