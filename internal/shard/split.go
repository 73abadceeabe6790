package shard

import (
	"math"

	"github.com/dreamware/iconshard/internal/iconset"
)

// SplitConfig controls how an icon set is divided into chunks.
type SplitConfig struct {
	// ChunkSize is the target size of a chunk in bytes of icon bodies.
	// 0 disables splitting.
	ChunkSize int `json:"chunkSize"`

	// MinIconsPerChunk is the smallest number of icons worth a chunk.
	MinIconsPerChunk int `json:"minIconsPerChunk"`

	// AutoCleanup drops chunks from memory as soon as they are written to
	// the cache, so a freshly imported set costs no memory until used.
	AutoCleanup bool `json:"autoCleanup"`
}

// DefaultSplitConfig returns the split settings used by the server.
func DefaultSplitConfig() SplitConfig {
	return SplitConfig{
		ChunkSize:        1000000,
		MinIconsPerChunk: 40,
		AutoCleanup:      true,
	}
}

// Chunk is a contiguous, alphabetically bounded part of an icon map.
type Chunk struct {
	// Key is the first icon name of the chunk.
	Key   string
	Icons iconset.IconMap
}

// ChunkCount returns the number of chunks icons should be split into.
// Sets with fewer than three chunks worth of icons, by count or by size,
// are not split at all.
func ChunkCount(icons iconset.IconMap, cfg SplitConfig) int {
	if cfg.ChunkSize <= 0 || cfg.MinIconsPerChunk <= 0 {
		return 1
	}

	byCount := len(icons) / cfg.MinIconsPerChunk
	if byCount < 3 {
		return 1
	}

	bySize := icons.BodySize() / cfg.ChunkSize
	if bySize < 3 {
		return 1
	}

	return min(byCount, bySize)
}

// Split divides icons into count chunks of roughly equal icon count, ordered
// by name. The last chunk absorbs rounding.
func Split(icons iconset.IconMap, count int) []Chunk {
	names := icons.Names()
	n := len(names)
	if n == 0 {
		return nil
	}
	count = max(1, min(count, n))

	chunks := make([]Chunk, 0, count)
	for i := 0; i < count; i++ {
		start := boundary(n, i, count)
		end := n
		if i < count-1 {
			end = boundary(n, i+1, count)
		}
		if start >= end {
			continue
		}

		chunk := Chunk{
			Key:   names[start],
			Icons: make(iconset.IconMap, end-start),
		}
		for _, name := range names[start:end] {
			chunk.Icons[name] = icons[name]
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

func boundary(n, i, count int) int {
	return int(math.Round(float64(n*i) / float64(count)))
}
