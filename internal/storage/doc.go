// Package storage implements the memory cache behind iconshard's chunked
// icon sets: a generic, mutex-guarded store of items that live in memory
// while in use and fall back to JSON files on disk when they are not.
//
// # Overview
//
// An icon set can hold tens of thousands of icons. Keeping every set fully
// resident is wasteful, because most requests touch a small, hot subset.
// MemoryStorage holds arbitrary payloads (chunks of icon sets in practice),
// writes each payload to a cache file once, and drops the in-memory copy
// when it goes unused. The next request reads it back from disk.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│          Lookup layer               │
//	│     Get(item, callback)             │
//	└─────────────────────────────────────┘
//	                 │
//	                 ▼
//	┌─────────────────────────────────────┐
//	│        MemoryStorage[T]             │
//	│  watched / pendingReads /           │
//	│  pendingWrites / cleanup timer      │
//	└─────────────────────────────────────┘
//	                 │
//	                 ▼
//	┌─────────────────────────────────────┐
//	│   CacheDir/<prefix>.<ver>.<chunk>   │
//	│        (JSON, best effort)          │
//	└─────────────────────────────────────┘
//
// # Item Lifecycle
//
// CreateItem: data is resident; a write to the cache file starts if the
// configuration has an eviction policy (MaxCount or CleanupAfter).
//
// Watched: the write succeeded, the item is resident and can be evicted.
//
// Evicted: data dropped from memory, the cache file remains.
//
// Loading: a Get on an evicted item queued a callback and started a read.
// Further Gets join the queue; the read serves them all, oldest first.
//
// Items created without an eviction policy never touch the disk and are
// never evicted. The memory cost is the caller's decision.
//
// # Eviction
//
// Cleanup runs from a ticker (Config.Timer) and whenever a newly watched
// item pushes the count above Config.MaxCount:
//
//   - Time based: items unused for Config.CleanupAfter are evicted. The
//     policy needs the timer; without it CleanupAfter is ignored.
//   - Count based: least recently used items are evicted until at most
//     MaxCount remain.
//
// No item used within Config.MinExpiration is ever evicted. The timer stops
// when nothing is watched and restarts with the next watched item.
//
// # Concurrency and Thread Safety
//
// Locking Strategy:
//   - One mutex per storage guards the three sets and all item fields
//   - No lock is held during file I/O or while running callbacks
//   - Reads and writes are coalesced per item
//   - Directory creation is coalesced per directory with singleflight
//
// # Error Handling
//
// I/O failures are logged and never returned to readers as errors:
//
// Write failure: the item stays resident and unwatched, so it can never be
// evicted and lost.
//
// Read failure: every queued callback receives ok == false. Fetch turns that
// into ErrItemMissing. Callers treat it as "not found".
//
// # Metrics
//
// Prometheus collectors registered by this package:
//   - iconshard_storage_reads_total{status}
//   - iconshard_storage_writes_total{status}
//   - iconshard_storage_hits_total
//   - iconshard_storage_coalesced_gets_total
//   - iconshard_storage_evictions_total
//   - iconshard_storage_watched_items
//   - iconshard_storage_dirs_created_total
//
// # Usage Examples
//
//	store := storage.New[iconset.IconMap](storage.Config{
//	    CacheDir:      "/var/cache/iconshard",
//	    MaxCount:      100,
//	    MinExpiration: 20 * time.Second,
//	    Timer:         time.Minute,
//	})
//	defer store.Stop()
//
//	item := store.CreateItem(chunk, "mdi.1.0", true, nil)
//
//	store.Get(item, func(icons iconset.IconMap, ok bool) {
//	    if !ok {
//	        // treat as not found
//	    }
//	})
//
//	icons, err := store.Fetch(ctx, item)
package storage
