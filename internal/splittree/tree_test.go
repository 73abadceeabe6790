package splittree

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRecords creates one record per boundary, with the index as payload.
func buildRecords(keys ...string) []Record[int] {
	records := make([]Record[int], len(keys))
	for i, key := range keys {
		records[i] = Record[int]{Key: key, Value: i}
	}
	return records
}

// expectedOwner returns the index of the partition that owns name by linear scan.
func expectedOwner(keys []string, name string) int {
	owner := 0
	for i, key := range keys {
		if key <= name {
			owner = i
		}
	}
	return owner
}

func TestBuild(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		assert.Nil(t, Build[int](nil))
	})

	t.Run("single record is a leaf", func(t *testing.T) {
		tree := Build(buildRecords("a"))
		require.NotNil(t, tree)
		assert.False(t, tree.Split)
		assert.Equal(t, 0, tree.Match)
	})

	t.Run("two records", func(t *testing.T) {
		tree := Build(buildRecords("a", "m"))
		require.NotNil(t, tree)
		assert.True(t, tree.Split)
		assert.Equal(t, "m", tree.Keyword)
		assert.Equal(t, 1, tree.Match)
		require.NotNil(t, tree.Prev)
		assert.Equal(t, 0, tree.Prev.Match)
		assert.Nil(t, tree.Next)
	})

	t.Run("next subtree starts with the branch record", func(t *testing.T) {
		tree := Build(buildRecords("a", "f", "k", "p", "u"))
		require.NotNil(t, tree)
		assert.Equal(t, "k", tree.Keyword)

		require.NotNil(t, tree.Next)
		assert.Equal(t, "p", tree.Next.Keyword)
		require.NotNil(t, tree.Next.Prev)
		assert.False(t, tree.Next.Prev.Split)
		assert.Equal(t, 2, tree.Next.Prev.Match)
	})

	t.Run("depth is logarithmic", func(t *testing.T) {
		keys := make([]string, 1000)
		for i := range keys {
			keys[i] = fmt.Sprintf("icon-%04d", i)
		}
		tree := Build(buildRecords(keys...))
		assert.LessOrEqual(t, Depth(tree), 12)
	})
}

func TestLookup(t *testing.T) {
	keys := []string{"account", "cloud", "home", "star"}
	tree := Build(buildRecords(keys...))

	tests := []struct {
		name string
		want int
	}{
		{"aaa", 0},
		{"account", 0},
		{"arrow", 0},
		{"cloud", 1},
		{"cog", 1},
		{"home", 2},
		{"home-outline", 2},
		{"sta", 2},
		{"star", 3},
		{"zoom", 3},
		{"", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Lookup(tree, tt.name))
		})
	}

	t.Run("nil tree returns zero value", func(t *testing.T) {
		assert.Equal(t, 0, Lookup[int](nil, "x"))
	})
}

func TestLookupMatchesLinearScan(t *testing.T) {
	names := []string{
		"", "0", "a", "a-b", "abc", "b", "bat", "c", "cat", "d", "dog",
		"e", "elk", "f", "fox", "g", "gnu", "h", "yak", "z", "zz",
	}

	// Every prefix of the sorted boundary list is a valid partition.
	boundaries := []string{"a", "b", "cat", "d", "elk", "fox", "g", "h", "yak", "zz"}
	for k := 1; k <= len(boundaries); k++ {
		keys := boundaries[:k]
		tree := Build(buildRecords(keys...))
		for _, name := range names {
			assert.Equal(t, expectedOwner(keys, name), Lookup(tree, name),
				"k=%d name=%q", k, name)
		}
	}
}

func TestLookupMany(t *testing.T) {
	names := []string{"", "a", "abc", "b", "bat", "cat", "cow", "d", "dog", "elk", "fox", "zebra"}
	boundaries := []string{"a", "b", "cat", "d", "elk", "fox", "g"}

	for k := 1; k <= len(boundaries); k++ {
		keys := boundaries[:k]
		tree := Build(buildRecords(keys...))

		groups := LookupMany(tree, names)

		seen := 0
		for owner, group := range groups {
			for _, name := range group {
				assert.Equal(t, Lookup(tree, name), owner, "k=%d name=%q", k, name)
			}
			seen += len(group)
		}
		assert.Equal(t, len(names), seen, "every name lands in exactly one group (k=%d)", k)
	}
}

func TestLookupManyMergesBranchMatch(t *testing.T) {
	tree := Build(buildRecords("a", "f", "k", "p", "u"))

	// "k" stops at the root, "m" walks down to the leaf holding the root's record.
	groups := LookupMany(tree, []string{"m", "k", "l"})
	require.Len(t, groups, 1)

	got := groups[2]
	sort.Strings(got)
	assert.Equal(t, []string{"k", "l", "m"}, got)
}

func TestLookupManyEmpty(t *testing.T) {
	tree := Build(buildRecords("a", "b"))

	assert.Empty(t, LookupMany(tree, nil))
	assert.Empty(t, LookupMany[int](nil, []string{"a"}))
}
