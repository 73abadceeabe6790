// Package shard splits icon sets into chunks and stores them in a
// storage.MemoryStorage.
//
// # Overview
//
// A large icon set is never held in memory as a whole. At import time the
// icon map is sorted by name and cut into contiguous chunks of roughly equal
// icon count. Each chunk becomes one storage item with its own cache file,
// and a splittree.Tree over the chunks' first names routes any icon name to
// the chunk that owns it.
//
// Everything that is not an icon body (prefix, aliases, default dimensions,
// themes, the character index) stays in the StoredIconSet and is always
// resident, so alias and character resolution never touch the disk.
//
// # Chunk Count
//
// ChunkCount takes the smaller of two estimates:
//
//	byCount = icons / MinIconsPerChunk
//	bySize  = bytes of all bodies / ChunkSize
//
// When either is below 3 the set is kept as a single chunk. A ChunkSize of 0
// disables splitting.
//
// Example: 267 icons with 63104 bytes of bodies and {ChunkSize: 10000,
// MinIconsPerChunk: 10} give byCount 26 and bySize 6, so 6 chunks.
//
// # Cache Keys
//
// Chunk files are named <prefix>.<version>.<index>. The version comes from a
// counter owned by the Splitter and increases with every Store call, so a
// re-import never reuses the file of an older import of the same prefix.
//
// # Usage
//
//	splitter := shard.NewSplitter(store, shard.DefaultSplitConfig(), logger)
//	stored, err := splitter.Store(ctx, set, nil)
package shard
