// Package splittree routes names to the partition that owns them.
// See doc.go for complete package documentation.
package splittree

// Record is one partition boundary: the smallest name owned by the
// partition and the partition itself.
type Record[T comparable] struct {
	// Key is the first (alphabetically smallest) name of the partition.
	Key string

	// Value is the partition payload returned by lookups.
	Value T
}

// Tree is an immutable binary search tree over partition boundaries.
//
// A node is either a leaf ({Split: false, Match}) or a branch
// ({Split: true, Keyword, Match, Prev, Next}). A branch's Match is the
// partition whose boundary is Keyword. It answers every name that compares
// equal to Keyword and every name that falls off a missing subtree.
//
// Layout for five partitions a, f, k, p, u:
//
//	           [k]
//	         /     \
//	     [f]         [p]
//	    /           /   \
//	  (a)        (k)     [u]
//	                    /
//	                  (p)
//
// The right subtree of a branch starts with the branch's own record, so
// Match is reachable from both directions.
type Tree[T comparable] struct {
	Match   T
	Prev    *Tree[T]
	Next    *Tree[T]
	Keyword string
	Split   bool
}

// Build creates a tree from records sorted by Key. It always splits at the
// middle index, so the depth is O(log n).
//
// Returns nil for an empty record list.
//
// Example:
//
//	tree := splittree.Build([]splittree.Record[int]{
//	    {Key: "alpha", Value: 0},
//	    {Key: "mango", Value: 1},
//	})
//	splittree.Lookup(tree, "kiwi") // 0
func Build[T comparable](records []Record[T]) *Tree[T] {
	n := len(records)
	if n == 0 {
		return nil
	}
	if n == 1 {
		return &Tree[T]{Match: records[0].Value}
	}

	mid := n / 2
	node := &Tree[T]{
		Split:   true,
		Keyword: records[mid].Key,
		Match:   records[mid].Value,
	}
	if mid > 0 {
		node.Prev = Build(records[:mid])
	}
	if n-mid-1 > 0 {
		node.Next = Build(records[mid:])
	}
	return node
}

// Lookup returns the partition that owns name. Names before the first
// boundary resolve to the first partition, names after the last boundary to
// the last one.
//
// Performance:
// O(log n) string comparisons, no allocations.
func Lookup[T comparable](tree *Tree[T], name string) T {
	node := tree
	for node != nil {
		if !node.Split {
			return node.Match
		}
		switch {
		case name < node.Keyword:
			if node.Prev == nil {
				return node.Match
			}
			node = node.Prev
		case name > node.Keyword:
			if node.Next == nil {
				return node.Match
			}
			node = node.Next
		default:
			return node.Match
		}
	}
	var zero T
	return zero
}

// LookupMany partitions a batch of names in a single traversal and groups
// them by owning partition. Every node is visited at most once per call.
//
// The union of the returned groups equals calling Lookup for every name.
// Order of names inside a group is unspecified.
func LookupMany[T comparable](tree *Tree[T], names []string) map[T][]string {
	result := make(map[T][]string)
	if tree == nil || len(names) == 0 {
		return result
	}
	lookupMany(tree, names, result)
	return result
}

func lookupMany[T comparable](node *Tree[T], names []string, result map[T][]string) {
	if !node.Split {
		result[node.Match] = append(result[node.Match], names...)
		return
	}

	var prev, next, match []string
	for _, name := range names {
		switch {
		case name < node.Keyword && node.Prev != nil:
			prev = append(prev, name)
		case name > node.Keyword && node.Next != nil:
			next = append(next, name)
		default:
			match = append(match, name)
		}
	}

	if len(match) > 0 {
		result[node.Match] = append(result[node.Match], match...)
	}
	if len(prev) > 0 {
		lookupMany(node.Prev, prev, result)
	}
	if len(next) > 0 {
		lookupMany(node.Next, next, result)
	}
}

// Depth returns the number of levels in the tree. Used for diagnostics.
func Depth[T comparable](tree *Tree[T]) int {
	if tree == nil {
		return 0
	}
	return 1 + max(Depth(tree.Prev), Depth(tree.Next))
}
