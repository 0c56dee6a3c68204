package seq

import (
	"strings"
	"sync"

	idxapi "github.com/viant/sqlite-seq/index"
)

// Global shared cache of indices keyed by db path/table/dataset for cross-connection reuse.
var sharedCache = struct {
	mu    sync.RWMutex
	byKey map[string]*cacheEntry
}{byKey: make(map[string]*cacheEntry)}

type cacheEntry struct {
	mu       sync.RWMutex
	idx      idxapi.Index
	building bool
	cond     *sync.Cond
}

func newCacheEntry() *cacheEntry {
	e := &cacheEntry{}
	e.cond = sync.NewCond(&e.mu)
	return e
}

func (e *cacheEntry) get() idxapi.Index {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.idx
}

func (e *cacheEntry) set(idx idxapi.Index) {
	e.mu.Lock()
	e.idx = idx
	e.mu.Unlock()
}

func (e *cacheEntry) waitForBuild() idxapi.Index {
	e.mu.Lock()
	for e.building {
		e.cond.Wait()
	}
	idx := e.idx
	e.mu.Unlock()
	return idx
}

func (e *cacheEntry) startBuild() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.idx != nil || e.building {
		return false
	}
	e.building = true
	return true
}

func (e *cacheEntry) finishBuild() {
	e.mu.Lock()
	e.building = false
	e.cond.Broadcast()
	e.mu.Unlock()
}

func cacheKey(dbPath, tableName, dataset string) string {
	return dbPath + "|" + tableName + "|" + dataset
}

func getCacheEntry(key string) *cacheEntry {
	sharedCache.mu.RLock()
	entry := sharedCache.byKey[key]
	sharedCache.mu.RUnlock()
	if entry != nil {
		return entry
	}
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	if entry = sharedCache.byKey[key]; entry == nil {
		entry = newCacheEntry()
		sharedCache.byKey[key] = entry
	}
	return entry
}

// InvalidateCache clears cached indices for a given shadow/dataset across
// active connections. An empty dataset clears every dataset of the shadow.
// It returns the number of cleared entries.
func InvalidateCache(shadow, dataset string) int {
	sharedCache.mu.Lock()
	defer sharedCache.mu.Unlock()
	count := 0
	tableName := tableNameFromShadow(shadow)
	if tableName == "" {
		tableName = shadow
	}
	if dataset == "" {
		pattern := "|" + tableName + "|"
		for k, entry := range sharedCache.byKey {
			if strings.Contains(k, pattern) && entry.get() != nil {
				entry.set(nil)
				count++
			}
		}
		return count
	}
	suffix := "|" + tableName + "|" + dataset
	for k, entry := range sharedCache.byKey {
		if strings.HasSuffix(k, suffix) && entry.get() != nil {
			entry.set(nil)
			count++
		}
	}
	return count
}
