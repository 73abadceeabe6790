package shard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/splittree"
	"github.com/dreamware/iconshard/internal/storage"
)

// Common is the part of an icon set that is never chunked and always
// resident: everything except the icon bodies.
type Common struct {
	Prefix       string
	LastModified int64
	Aliases      map[string]iconset.Alias
	iconset.Defaults
}

// Themes holds the optional theme prefixes and suffixes of an icon set.
type Themes struct {
	Prefixes map[string]string `json:"prefixes,omitempty"`
	Suffixes map[string]string `json:"suffixes,omitempty"`
}

// ChunkInfo describes a stored chunk.
type ChunkInfo struct {
	Key      string `json:"key"`
	Icons    int    `json:"icons"`
	CacheKey string `json:"cacheKey"`
}

// StoredIconSet is an icon set whose icons live in storage chunks.
//
// A StoredIconSet is immutable once returned by Store. A re-import produces
// a new value with a new Version.
type StoredIconSet struct {
	Common  Common
	Storage *storage.MemoryStorage[iconset.IconMap]

	// Items holds one storage item per chunk, in name order.
	Items []*storage.Item[iconset.IconMap]

	// Tree maps an icon name to the item of the chunk that owns it.
	Tree *splittree.Tree[*storage.Item[iconset.IconMap]]

	Index   *iconset.Index
	Themes  *Themes
	Chunks  []ChunkInfo
	Version uint64
}

// Splitter stores icon sets in a MemoryStorage.
type Splitter struct {
	config  SplitConfig
	storage *storage.MemoryStorage[iconset.IconMap]
	logger  *slog.Logger

	// version makes cache keys unique per import, so a re-imported set never
	// reads a stale cache file of a previous import.
	version atomic.Uint64
}

// NewSplitter creates a splitter that stores chunks in store.
func NewSplitter(store *storage.MemoryStorage[iconset.IconMap], config SplitConfig, logger *slog.Logger) *Splitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Splitter{
		config:  config,
		storage: store,
		logger:  logger.With("component", "splitter"),
	}
}

// Config returns the split configuration.
func (s *Splitter) Config() SplitConfig {
	return s.config
}

// Store splits set into chunks, hands every chunk to the storage and waits
// until all of them are ready. A failed cache write is not an error: the
// chunk simply stays in memory.
//
// index may be nil, in which case it is built from set. Store returns an
// error only when ctx ends before the chunks are ready.
func (s *Splitter) Store(ctx context.Context, set *iconset.IconSet, index *iconset.Index) (*StoredIconSet, error) {
	start := time.Now()
	if index == nil {
		index = iconset.NewIndex(set)
	}

	version := s.version.Add(1)
	stored := &StoredIconSet{
		Common: Common{
			Prefix:       set.Prefix,
			LastModified: set.LastModified,
			Aliases:      set.Aliases,
			Defaults:     set.Defaults,
		},
		Storage: s.storage,
		Index:   index,
		Version: version,
	}
	if stored.Common.Aliases == nil {
		stored.Common.Aliases = map[string]iconset.Alias{}
	}
	if len(set.Prefixes) > 0 || len(set.Suffixes) > 0 {
		stored.Themes = &Themes{Prefixes: set.Prefixes, Suffixes: set.Suffixes}
	}

	chunks := Split(set.Icons, ChunkCount(set.Icons, s.config))

	var wg sync.WaitGroup
	wg.Add(len(chunks))
	records := make([]splittree.Record[*storage.Item[iconset.IconMap]], 0, len(chunks))
	for i, chunk := range chunks {
		cacheKey := fmt.Sprintf("%s.%d.%d", set.Prefix, version, i)
		item := s.storage.CreateItem(chunk.Icons, cacheKey, s.config.AutoCleanup, func(err error) {
			defer wg.Done()
			if err != nil {
				s.logger.Warn("chunk stays in memory", "prefix", set.Prefix, "cacheKey", cacheKey, "err", err)
			}
		})

		stored.Items = append(stored.Items, item)
		stored.Chunks = append(stored.Chunks, ChunkInfo{
			Key:      chunk.Key,
			Icons:    len(chunk.Icons),
			CacheKey: cacheKey,
		})
		records = append(records, splittree.Record[*storage.Item[iconset.IconMap]]{
			Key:   chunk.Key,
			Value: item,
		})
	}
	stored.Tree = splittree.Build(records)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("store %s: %w", set.Prefix, ctx.Err())
	}

	storedSets.Inc()
	storeDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("stored icon set",
		"prefix", set.Prefix,
		"version", version,
		"icons", len(set.Icons),
		"chunks", len(chunks),
	)
	return stored, nil
}
