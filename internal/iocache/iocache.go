package iocache

import (
	"fmt"
	"sync"

	"github.com/huangsam/solaredge/internal/contract"
	"github.com/huangsam/solaredge/schema"
)

// siteCacheTable is the name of the table backing the site timezone cache.
const siteCacheTable = "site_cache"

// CacheStoreManager opens cache stores on demand and owns the history store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the history store pointer during shutdown

	cacheBackend schema.DatabaseBackend
	cacheConnStr string
	history      contract.HistoryStore
	closeOnce    sync.Once
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewManager builds a manager for the configured backends.
// An empty cacheBackend disables the timezone cache.
// An empty historyBackend disables request history.
func NewManager(cacheBackend schema.DatabaseBackend, cacheConnStr string, historyBackend schema.DatabaseBackend, historyConnStr string) (*CacheStoreManager, error) {
	if cacheBackend == "" {
		cacheBackend = schema.NoneBackend
	}
	mgr := &CacheStoreManager{cacheBackend: cacheBackend, cacheConnStr: cacheConnStr}

	if historyBackend != "" {
		history, err := NewHistoryStore(historyBackend, historyConnStr)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize history store: %w", err)
		}
		mgr.history = history
	}
	return mgr, nil
}

// OpenCacheStore opens a fresh connection to the site cache.
// The caller owns the returned store and must close it.
func (mgr *CacheStoreManager) OpenCacheStore() (contract.CacheStore, error) {
	return NewCacheStore(siteCacheTable, mgr.cacheBackend, mgr.cacheConnStr)
}

// GetHistoryStore returns the history store, or nil when history is disabled.
func (mgr *CacheStoreManager) GetHistoryStore() contract.HistoryStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.history
}

// Close releases the history store. Safe to call more than once.
func (mgr *CacheStoreManager) Close() {
	mgr.closeOnce.Do(func() {
		mgr.Lock()
		defer mgr.Unlock()
		if mgr.history != nil {
			_ = mgr.history.Close()
			mgr.history = nil
		}
	})
}
