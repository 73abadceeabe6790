package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrItemMissing is returned by Fetch when an item is neither resident nor
// readable from its cache file.
var ErrItemMissing = errors.New("cache item missing")

// Stats contains counters describing the current state of a storage.
type Stats struct {
	Watched       int  `json:"watched"`
	PendingReads  int  `json:"pendingReads"`
	PendingWrites int  `json:"pendingWrites"`
	TimerRunning  bool `json:"timerRunning"`
}

// MemoryStorage keeps items of type T in memory and moves them to disk when
// they go unused. Items are serialized as JSON.
//
// All methods are safe for concurrent use. A single mutex guards the
// membership sets and every item's state; callbacks always run with the
// mutex released, so they may call back into the storage.
type MemoryStorage[T any] struct {
	config Config
	logger *slog.Logger
	now    func() time.Time
	dirs   *dirCache

	readFile func(name string) ([]byte, error)

	mu sync.Mutex

	// watched holds resident items that have a cache file and can be evicted.
	watched map[*Item[T]]struct{}

	// pendingReads and pendingWrites coalesce I/O per item.
	pendingReads  map[*Item[T]]struct{}
	pendingWrites map[*Item[T]]struct{}

	// minLastUsed is a lower bound of lastUsed over watched items, used to
	// skip sweeps that cannot evict anything.
	minLastUsed int64

	stopTimer func()
}

// New creates an empty storage. The cleanup timer starts when the first item
// becomes evictable.
func New[T any](config Config, opts ...Option) *MemoryStorage[T] {
	st := settings{
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&st)
	}

	return &MemoryStorage[T]{
		config:        config,
		logger:        st.logger.With("component", "storage"),
		now:           st.now,
		dirs:          newDirCache(),
		readFile:      os.ReadFile,
		watched:       make(map[*Item[T]]struct{}),
		pendingReads:  make(map[*Item[T]]struct{}),
		pendingWrites: make(map[*Item[T]]struct{}),
	}
}

// Config returns the configuration the storage was created with.
func (s *MemoryStorage[T]) Config() Config {
	return s.config
}

func (s *MemoryStorage[T]) nowMillis() int64 {
	return s.now().UnixMilli()
}

// CreateItem wraps data in a new item.
//
// When the configuration has no eviction policy the item is never written
// and onReady runs before CreateItem returns. Otherwise the item is written
// to CacheDir/cacheKey on a separate goroutine and onReady runs once the
// write has finished (successfully or not).
//
// With autoCleanup the item is dropped from memory right after its write
// succeeds, unless something used it in the meantime. This trades latency of
// the first request for memory when storing large data sets.
func (s *MemoryStorage[T]) CreateItem(data T, cacheKey string, autoCleanup bool, onReady func(error)) *Item[T] {
	item := &Item[T]{
		data:    data,
		hasData: true,
	}
	if !autoCleanup {
		item.lastUsed = s.nowMillis()
	}

	if !s.config.evicts() {
		if onReady != nil {
			onReady(nil)
		}
		return item
	}

	item.cache = &CacheFile{
		Filename: filepath.Join(s.config.CacheDir, cacheKey),
	}

	go func() {
		err := s.write(item)
		if err == nil && autoCleanup {
			s.mu.Lock()
			var ds []delivery[T]
			if item.lastUsed == 0 {
				if d, _ := s.evictLocked(item); d != nil {
					ds = append(ds, *d)
				}
			}
			s.mu.Unlock()
			deliver(ds)
		}
		if onReady != nil {
			onReady(err)
		}
	}()
	return item
}

// write stores the item's data in its cache file. Concurrent writes for the
// same item are coalesced into the one already running.
func (s *MemoryStorage[T]) write(item *Item[T]) error {
	s.mu.Lock()
	if _, busy := s.pendingWrites[item]; busy || !item.hasData || item.cache == nil {
		s.mu.Unlock()
		return nil
	}
	s.pendingWrites[item] = struct{}{}
	data := item.data
	filename := item.cache.Filename
	s.mu.Unlock()

	err := s.writeFile(filename, data)

	s.mu.Lock()
	delete(s.pendingWrites, item)
	var ds []delivery[T]
	if err != nil {
		writes.WithLabelValues("error").Inc()
		s.logger.Error("failed to write cache file", "filename", filename, "err", err)
	} else {
		writes.WithLabelValues("ok").Inc()
		item.cache.Exists = true
		ds = s.registerLocked(item)
	}
	s.mu.Unlock()

	deliver(ds)
	return err
}

func (s *MemoryStorage[T]) writeFile(filename string, data T) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if err := s.dirs.ensure(filepath.Dir(filename)); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Write next to the target and rename, so a reader never sees a partial file.
	tmp := filename + ".tmp"
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, filename)
}

// registerLocked makes a resident, disk-backed item eligible for eviction.
// Returns callbacks that must run after the lock is released.
func (s *MemoryStorage[T]) registerLocked(item *Item[T]) []delivery[T] {
	if !item.hasData || item.cache == nil || !item.cache.Exists {
		return nil
	}

	if _, ok := s.watched[item]; !ok {
		s.watched[item] = struct{}{}
		watchedItems.Inc()
	}
	if item.lastUsed < s.minLastUsed {
		s.minLastUsed = item.lastUsed
	}

	s.startTimerLocked()

	if s.config.MaxCount > 0 && len(s.watched) > s.config.MaxCount {
		return s.cleanupLocked()
	}
	return nil
}

// Get passes the item's data to cb. Resident data is delivered on the
// calling goroutine before Get returns. Otherwise cb is queued and a load is
// started; all callbacks queued while a load is in flight are served by that
// single load, oldest first.
func (s *MemoryStorage[T]) Get(item *Item[T], cb Callback[T]) {
	s.mu.Lock()
	if item.hasData {
		item.lastUsed = s.nowMillis()
		data := item.data
		s.mu.Unlock()

		hits.Inc()
		cb(data, true)
		return
	}

	item.callbacks = append(item.callbacks, cb)
	if len(item.callbacks) > 1 {
		coalescedGets.Inc()
	}
	s.mu.Unlock()

	s.load(item)
}

// Fetch is a blocking form of Get. Cancelling ctx stops the wait but not
// the load itself.
func (s *MemoryStorage[T]) Fetch(ctx context.Context, item *Item[T]) (T, error) {
	type result struct {
		data T
		ok   bool
	}
	ch := make(chan result, 1)
	s.Get(item, func(data T, ok bool) {
		ch <- result{data: data, ok: ok}
	})

	var r result
	select {
	case r = <-ch:
	case <-ctx.Done():
		// Resident data was delivered before Get returned.
		select {
		case r = <-ch:
		default:
			var zero T
			return zero, ctx.Err()
		}
	}

	if !r.ok {
		return r.data, ErrItemMissing
	}
	return r.data, nil
}

// load reads the item from its cache file unless it is resident or a read
// is already in flight.
func (s *MemoryStorage[T]) load(item *Item[T]) {
	s.mu.Lock()
	if item.hasData {
		// A load finished between queueing and now.
		d := delivery[T]{callbacks: item.takeCallbacks(), data: item.data, ok: true}
		s.mu.Unlock()
		deliver([]delivery[T]{d})
		return
	}
	if _, busy := s.pendingReads[item]; busy {
		s.mu.Unlock()
		return
	}
	if item.cache == nil || !item.cache.Exists {
		// Nothing to read from: the data is gone for good.
		d := delivery[T]{callbacks: item.takeCallbacks()}
		s.mu.Unlock()
		deliver([]delivery[T]{d})
		return
	}

	s.pendingReads[item] = struct{}{}
	filename := item.cache.Filename
	s.mu.Unlock()

	if s.config.AsyncRead {
		go s.read(item, filename)
		return
	}
	s.read(item, filename)
}

func (s *MemoryStorage[T]) read(item *Item[T], filename string) {
	var data T
	buf, err := s.readFile(filename)
	if err == nil {
		err = json.Unmarshal(buf, &data)
	}

	s.mu.Lock()
	delete(s.pendingReads, item)
	if err != nil {
		cbs := item.takeCallbacks()
		s.mu.Unlock()

		reads.WithLabelValues("error").Inc()
		s.logger.Error("failed to read cache file", "filename", filename, "err", err)
		var zero T
		deliver([]delivery[T]{{callbacks: cbs, data: zero}})
		return
	}

	item.data = data
	item.hasData = true
	item.lastUsed = s.nowMillis()
	cbs := item.takeCallbacks()
	s.mu.Unlock()

	reads.WithLabelValues("ok").Inc()
	deliver([]delivery[T]{{callbacks: cbs, data: data, ok: true}})

	s.mu.Lock()
	ds := s.registerLocked(item)
	s.mu.Unlock()
	deliver(ds)
}

// Resident reports whether the item's data is currently in memory.
func (s *MemoryStorage[T]) Resident(item *Item[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return item.hasData
}

// Stats returns a snapshot of the storage counters.
func (s *MemoryStorage[T]) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Stats{
		Watched:       len(s.watched),
		PendingReads:  len(s.pendingReads),
		PendingWrites: len(s.pendingWrites),
		TimerRunning:  s.stopTimer != nil,
	}
}
