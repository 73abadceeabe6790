package storage

// CacheFile describes the disk backing of an item.
type CacheFile struct {
	Filename string
	Exists   bool // false until the first write completes
}

// Callback receives the data of an item. ok is false when the item could
// not be loaded; callers treat that as "not found".
type Callback[T any] func(data T, ok bool)

// Item is a single cache entry managed by a MemoryStorage.
//
// Items without a CacheFile are never persisted and stay resident for their
// whole lifetime. All fields are guarded by the owning storage's mutex.
type Item[T any] struct {
	cache     *CacheFile
	data      T
	callbacks []Callback[T]

	// lastUsed is a unix timestamp in milliseconds. 0 means the item has not
	// been used yet, which lets auto-cleanup items leave memory as soon as
	// their first write completes.
	lastUsed int64
	hasData  bool
}

// takeCallbacks empties the callback queue and returns it in FIFO order.
func (it *Item[T]) takeCallbacks() []Callback[T] {
	cbs := it.callbacks
	it.callbacks = nil
	return cbs
}

// delivery is a batch of callbacks to run once the storage lock is released.
type delivery[T any] struct {
	callbacks []Callback[T]
	data      T
	ok        bool
}

func deliver[T any](ds []delivery[T]) {
	for _, d := range ds {
		for _, cb := range d.callbacks {
			cb(d.data, d.ok)
		}
	}
}
