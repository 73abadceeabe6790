package storage

import (
	"context"
	"math"
	"sort"
	"time"

	"golang.org/x/exp/maps"
)

// Cleanup evicts items that have not been used recently. It runs two
// independent passes:
//
//  1. Time based, when CleanupAfter is effective: every watched item unused
//     for CleanupAfter (but at least MinExpiration) leaves memory.
//  2. Count based, when MaxCount > 0: least recently used items leave memory
//     until at most MaxCount remain.
//
// An item used within MinExpiration is never evicted, so the count bound may
// be exceeded temporarily under heavy load.
func (s *MemoryStorage[T]) Cleanup() {
	s.mu.Lock()
	ds := s.cleanupLocked()
	s.mu.Unlock()

	deliver(ds)
}

func (s *MemoryStorage[T]) cleanupLocked() []delivery[T] {
	var ds []delivery[T]
	evict := func(item *Item[T]) bool {
		d, evicted := s.evictLocked(item)
		if d != nil {
			ds = append(ds, *d)
		}
		return evicted
	}

	now := s.nowMillis()
	cutoff := now - s.config.MinExpiration.Milliseconds()

	if after := s.config.cleanupAfter(); after > 0 {
		staleBefore := min(now-after.Milliseconds(), cutoff)
		if staleBefore > s.minLastUsed {
			lowest := int64(math.MaxInt64)
			for item := range s.watched {
				if item.lastUsed < staleBefore && evict(item) {
					continue
				}
				lowest = min(lowest, item.lastUsed)
			}
			if lowest == math.MaxInt64 {
				lowest = 0
			}
			s.minLastUsed = lowest
		}
	}

	maxCount := s.config.MaxCount
	if maxCount > 0 && len(s.watched) > maxCount && s.minLastUsed < cutoff {
		items := maps.Keys(s.watched)
		sort.Slice(items, func(i, j int) bool {
			return items[i].lastUsed < items[j].lastUsed
		})

		for _, item := range items {
			if len(s.watched) <= maxCount || item.lastUsed >= cutoff {
				break
			}
			evict(item)
		}

		// Items are sorted, so the first survivor bounds all others.
		s.minLastUsed = 0
		for _, item := range items {
			if _, ok := s.watched[item]; ok {
				s.minLastUsed = item.lastUsed
				break
			}
		}
	}

	return ds
}

// evictLocked drops the item's data from memory. An item with queued
// callbacks and data present had a load complete concurrently: its
// callbacks are returned for delivery and the item stays.
func (s *MemoryStorage[T]) evictLocked(item *Item[T]) (*delivery[T], bool) {
	if len(item.callbacks) > 0 && item.hasData {
		return &delivery[T]{callbacks: item.takeCallbacks(), data: item.data, ok: true}, false
	}

	if _, ok := s.watched[item]; ok {
		delete(s.watched, item)
		watchedItems.Dec()
	}
	if len(s.watched) == 0 {
		s.stopTimerLocked()
	}

	if !item.hasData || item.cache == nil || !item.cache.Exists {
		// Without a cache file the data could never come back.
		return nil, false
	}

	var zero T
	item.data = zero
	item.hasData = false
	evictions.Inc()
	s.logger.Debug("evicted item", "filename", item.cache.Filename)
	return nil, true
}

// startTimerLocked starts the periodic cleanup if configured and not running.
func (s *MemoryStorage[T]) startTimerLocked() {
	if s.stopTimer != nil || s.config.Timer <= 0 {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.stopTimer = cancel
	go periodically(ctx, s.config.Timer, s.Cleanup)
}

func (s *MemoryStorage[T]) stopTimerLocked() {
	if s.stopTimer == nil {
		return
	}
	s.stopTimer()
	s.stopTimer = nil
}

// Stop halts the cleanup timer. Items stay where they are; a new watched
// item restarts the timer.
func (s *MemoryStorage[T]) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
}

// periodically runs task every interval until ctx is cancelled.
func periodically(ctx context.Context, interval time.Duration, task func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			task()
		}
	}
}
