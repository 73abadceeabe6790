package lookup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/shard"
	"github.com/dreamware/iconshard/internal/storage"
)

func storeSet(t *testing.T, set *iconset.IconSet, split shard.SplitConfig) *shard.StoredIconSet {
	t.Helper()

	store := storage.New[iconset.IconMap](storage.Config{CacheDir: t.TempDir(), MaxCount: 2})
	t.Cleanup(store.Stop)

	stored, err := shard.NewSplitter(store, split, nil).Store(context.Background(), set, nil)
	require.NoError(t, err)
	return stored
}

func testSet() *iconset.IconSet {
	return &iconset.IconSet{
		Prefix:       "test",
		LastModified: 1700000000,
		Icons: iconset.IconMap{
			"foo":    {Body: "<path d=\"foo\"/>", Props: iconset.Props{Width: iconset.Ptr(16.0), Height: iconset.Ptr(16.0)}},
			"arrow":  {Body: "<path d=\"arrow\"/>", Props: iconset.Props{Rotate: iconset.Ptr(1)}},
			"square": {Body: "<rect/>"},
			"hidden": {Body: "<g/>", Hidden: true},
		},
		Aliases: map[string]iconset.Alias{
			"bar":         {Parent: "foo", Props: iconset.Props{HFlip: iconset.Ptr(true)}},
			"bar-wide":    {Parent: "bar", Props: iconset.Props{Width: iconset.Ptr(24.0), Left: iconset.Ptr(-4.0)}},
			"bar-back":    {Parent: "bar", Props: iconset.Props{HFlip: iconset.Ptr(true)}},
			"arrow-down":  {Parent: "arrow", Props: iconset.Props{Rotate: iconset.Ptr(1)}},
			"arrow-right": {Parent: "arrow-down", Props: iconset.Props{Rotate: iconset.Ptr(3)}},
			"loop-a":      {Parent: "loop-b"},
			"loop-b":      {Parent: "loop-a"},
		},
		Chars: map[string]string{
			"f101": "bar-wide",
			"f102": "square",
			"f103": "missing",
		},
		Defaults: iconset.Defaults{Width: iconset.Ptr(20.0), Height: iconset.Ptr(20.0)},
	}
}

func TestResolveAlias(t *testing.T) {
	common := shard.Common{Aliases: testSet().Aliases}

	t.Run("chain", func(t *testing.T) {
		props, base, ok := ResolveAlias(common, "bar-wide")
		require.True(t, ok)
		assert.Equal(t, "foo", base)
		assert.Equal(t, iconset.Props{
			Left:  iconset.Ptr(-4.0),
			Width: iconset.Ptr(24.0),
			HFlip: iconset.Ptr(true),
		}, props)
	})

	t.Run("flips cancel out", func(t *testing.T) {
		props, _, ok := ResolveAlias(common, "bar-back")
		require.True(t, ok)
		assert.False(t, *props.HFlip)
	})

	t.Run("rotations add up", func(t *testing.T) {
		props, base, ok := ResolveAlias(common, "arrow-right")
		require.True(t, ok)
		assert.Equal(t, "arrow", base)
		assert.Equal(t, 0, *props.Rotate)
	})

	t.Run("not an alias", func(t *testing.T) {
		_, _, ok := ResolveAlias(common, "foo")
		assert.False(t, ok)
	})

	t.Run("cycle fails closed", func(t *testing.T) {
		_, _, ok := ResolveAlias(common, "loop-a")
		assert.False(t, ok)
	})
}

func TestResolveAliasDepthBound(t *testing.T) {
	aliases := map[string]iconset.Alias{}
	parent := "base"
	for i := 0; i < MaxAliasDepth+1; i++ {
		name := fmt.Sprintf("a%02d", i)
		aliases[name] = iconset.Alias{Parent: parent}
		parent = name
	}
	common := shard.Common{Aliases: aliases}

	_, base, ok := ResolveAlias(common, fmt.Sprintf("a%02d", MaxAliasDepth-1))
	require.True(t, ok)
	assert.Equal(t, "base", base)

	_, _, ok = ResolveAlias(common, fmt.Sprintf("a%02d", MaxAliasDepth))
	assert.False(t, ok)
}

func TestGetIcon(t *testing.T) {
	stored := storeSet(t, testSet(), shard.SplitConfig{AutoCleanup: true})
	ctx := context.Background()

	tests := []struct {
		name string
		want *iconset.Icon
	}{
		{
			name: "foo",
			want: &iconset.Icon{Body: "<path d=\"foo\"/>", Props: iconset.Props{
				Width: iconset.Ptr(16.0), Height: iconset.Ptr(16.0),
			}},
		},
		{
			name: "bar-wide",
			want: &iconset.Icon{Body: "<path d=\"foo\"/>", Props: iconset.Props{
				Left: iconset.Ptr(-4.0), Width: iconset.Ptr(24.0), Height: iconset.Ptr(16.0), HFlip: iconset.Ptr(true),
			}},
		},
		{
			name: "bar-back",
			want: &iconset.Icon{Body: "<path d=\"foo\"/>", Props: iconset.Props{
				Width: iconset.Ptr(16.0), Height: iconset.Ptr(16.0),
			}},
		},
		{
			name: "square",
			want: &iconset.Icon{Body: "<rect/>", Props: iconset.Props{
				Width: iconset.Ptr(20.0), Height: iconset.Ptr(20.0),
			}},
		},
		{
			name: "arrow-down",
			want: &iconset.Icon{Body: "<path d=\"arrow\"/>", Props: iconset.Props{
				Width: iconset.Ptr(20.0), Height: iconset.Ptr(20.0), Rotate: iconset.Ptr(2),
			}},
		},
		{
			name: "arrow-right",
			want: &iconset.Icon{Body: "<path d=\"arrow\"/>", Props: iconset.Props{
				Width: iconset.Ptr(20.0), Height: iconset.Ptr(20.0), Rotate: iconset.Ptr(1),
			}},
		},
		{
			name: "f101",
			want: &iconset.Icon{Body: "<path d=\"foo\"/>", Props: iconset.Props{
				Left: iconset.Ptr(-4.0), Width: iconset.Ptr(24.0), Height: iconset.Ptr(16.0), HFlip: iconset.Ptr(true),
			}},
		},
		{name: "f103"},
		{name: "nope"},
		{name: "loop-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			icon, err := GetIcon(ctx, stored, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, icon)
		})
	}
}

func TestGetIconFallbackDimensions(t *testing.T) {
	set := testSet()
	set.Defaults = iconset.Defaults{}
	stored := storeSet(t, set, shard.SplitConfig{})

	icon, err := GetIcon(context.Background(), stored, "square")
	require.NoError(t, err)
	require.NotNil(t, icon)
	assert.Equal(t, iconset.Props{Width: iconset.Ptr(16.0), Height: iconset.Ptr(16.0)}, icon.Props)
}

func TestGetIconMissingChunk(t *testing.T) {
	stored := storeSet(t, testSet(), shard.SplitConfig{AutoCleanup: true})
	require.NoError(t, os.Remove(filepath.Join(stored.Storage.Config().CacheDir, stored.Chunks[0].CacheKey)))

	icon, err := GetIcon(context.Background(), stored, "foo")
	assert.NoError(t, err)
	assert.Nil(t, icon, "an unreadable chunk reads as not found")
}

func TestGetIconCancelled(t *testing.T) {
	stored := storeSet(t, testSet(), shard.SplitConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Resident chunks are served without waiting.
	icon, err := GetIcon(ctx, stored, "foo")
	require.NoError(t, err)
	assert.NotNil(t, icon)
}

func TestRoundTripWithoutSplit(t *testing.T) {
	set := testSet()
	stored := storeSet(t, set, shard.SplitConfig{ChunkSize: 0, MinIconsPerChunk: 1, AutoCleanup: true})
	require.Len(t, stored.Items, 1)

	for name, want := range set.Icons {
		icon, err := GetIcon(context.Background(), stored, name)
		require.NoError(t, err)
		require.NotNil(t, icon, name)
		assert.Equal(t, want.Body, icon.Body)

		got := want.Props.Finalize(set.Defaults)
		assert.Equal(t, got, icon.Props)
	}
}

func TestIconsToRetrieve(t *testing.T) {
	stored := storeSet(t, testSet(), shard.SplitConfig{})

	aliases := map[string]iconset.Alias{}
	bases := IconsToRetrieve(stored, []string{"bar-wide", "square", "f102", "f103", "nope", "loop-a", "square"}, aliases)

	assert.Equal(t, []string{"foo", "square"}, bases)
	assert.Equal(t, map[string]iconset.Alias{
		"bar-wide": testSet().Aliases["bar-wide"],
		"bar":      testSet().Aliases["bar"],
		"f102":     {Parent: "square"},
	}, aliases)

	assert.Equal(t, []string{"arrow"}, IconsToRetrieve(stored, []string{"arrow-right"}, nil))
}

func TestGetIcons(t *testing.T) {
	icons := iconset.IconMap{}
	for i := 0; i < 60; i++ {
		icons[fmt.Sprintf("icon%02d", i)] = iconset.Icon{Body: fmt.Sprintf("<path d=\"%d\"/>", i)}
	}
	set := &iconset.IconSet{
		Prefix: "many",
		Icons:  icons,
		Aliases: map[string]iconset.Alias{
			"alias": {Parent: "icon42", Props: iconset.Props{VFlip: iconset.Ptr(true)}},
		},
		Defaults: iconset.Defaults{Width: iconset.Ptr(24.0)},
	}
	stored := storeSet(t, set, shard.SplitConfig{ChunkSize: 10, MinIconsPerChunk: 10, AutoCleanup: true})
	require.Len(t, stored.Items, 6)

	t.Run("across chunks", func(t *testing.T) {
		result, err := GetIcons(context.Background(), stored, []string{"icon01", "icon30", "icon59", "alias", "no-such-icon"})
		require.NoError(t, err)

		assert.Equal(t, "many", result.Prefix)
		assert.Equal(t, 24.0, *result.Width)
		assert.Equal(t, iconset.IconMap{
			"icon01": icons["icon01"],
			"icon30": icons["icon30"],
			"icon59": icons["icon59"],
			"icon42": icons["icon42"],
		}, result.Icons)
		assert.Equal(t, map[string]iconset.Alias{"alias": set.Aliases["alias"]}, result.Aliases)
		assert.Equal(t, []string{"no-such-icon"}, result.NotFound)
	})

	t.Run("all found", func(t *testing.T) {
		result, err := GetIcons(context.Background(), stored, []string{"icon10"})
		require.NoError(t, err)
		assert.Len(t, result.Icons, 1)
		assert.Nil(t, result.NotFound)
	})

	t.Run("nothing resolves", func(t *testing.T) {
		result, err := GetIcons(context.Background(), stored, []string{"a", "b", "a"})
		require.NoError(t, err)
		assert.Empty(t, result.Icons)
		assert.Empty(t, result.Aliases)
		assert.Equal(t, []string{"a", "b"}, result.NotFound)
	})
}

func TestGetIconsMissingNames(t *testing.T) {
	stored := storeSet(t, &iconset.IconSet{
		Prefix: "test",
		Icons:  iconset.IconMap{"real-icon": {Body: "<g/>"}},
	}, shard.SplitConfig{})

	result, err := GetIcons(context.Background(), stored, []string{"real-icon", "no-such-icon"})
	require.NoError(t, err)
	assert.Equal(t, iconset.IconMap{"real-icon": {Body: "<g/>"}}, result.Icons)
	assert.Equal(t, []string{"no-such-icon"}, result.NotFound)
}
