package iocache

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/huangsam/solaredge/internal/contract"
)

// siteCacheVersion tags stored values so older layouts can be ignored.
const siteCacheVersion = 1

// SiteCacheKey namespaces a cached value under a cleaned site ID,
// e.g. "12345.timezone".
func SiteCacheKey(siteID, name string) string {
	return strings.TrimSpace(siteID) + "." + name
}

// WithCacheStore opens the cache store, runs fn and always closes the store.
func WithCacheStore(mgr contract.CacheManager, fn func(store contract.CacheStore) error) (err error) {
	store, err := mgr.OpenCacheStore()
	if err != nil {
		return fmt.Errorf("failed to open cache store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close cache store: %w", closeErr)
		}
	}()
	return fn(store)
}

// GetCachedValue reads a string value. A missing or outdated entry reports false.
func GetCachedValue(store contract.CacheStore, key string) (string, bool, error) {
	value, version, _, err := store.Get(key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache key %q: %w", key, err)
	}
	if version != siteCacheVersion {
		return "", false, nil
	}
	return string(value), true, nil
}

// SetCachedValue stores a string value stamped with now.
func SetCachedValue(store contract.CacheStore, key, value string, now time.Time) error {
	if err := store.Set(key, []byte(value), siteCacheVersion, now.Unix()); err != nil {
		return fmt.Errorf("failed to write cache key %q: %w", key, err)
	}
	return nil
}
