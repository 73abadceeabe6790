// Package splittree implements the search structure used to find which chunk
// of a split icon set owns a given icon name.
//
// # Overview
//
// An icon set is split into alphabetically contiguous chunks. Each chunk is
// identified by its first icon name (the boundary key). Given any name, the
// owning chunk is the one with the greatest boundary key that is less than or
// equal to the name, or the first chunk when the name sorts before every
// boundary.
//
//	Boundaries:   "account"     "cloud"     "home"     "star"
//	Chunk:            0            1           2          3
//
//	"arrow"  -> 0    "cog" -> 1    "zoom" -> 3    "aaa" -> 0
//
// Trees are built once when an icon set is stored and are never mutated, so
// they can be read from any number of goroutines without locking.
//
// # Batch Lookups
//
// LookupMany routes a whole request worth of names in one pass and groups
// them per chunk, which lets callers issue exactly one storage read per
// chunk:
//
//	groups := splittree.LookupMany(tree, []string{"arrow", "cog", "cloud"})
//	// groups[chunk0] = ["arrow"], groups[chunk1] = ["cog", "cloud"]
package splittree
