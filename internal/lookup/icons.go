package lookup

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/shard"
	"github.com/dreamware/iconshard/internal/splittree"
)

// IconsResult is the response to a batch lookup. Icons hold raw icon
// records as stored; aliases are returned unresolved next to them, so a
// client can resolve them itself.
type IconsResult struct {
	Prefix       string                   `json:"prefix"`
	LastModified int64                    `json:"lastModified,omitempty"`
	Icons        iconset.IconMap          `json:"icons"`
	Aliases      map[string]iconset.Alias `json:"aliases,omitempty"`
	iconset.Defaults
	NotFound []string `json:"not_found,omitempty"`
}

type retrieval struct {
	set     *shard.StoredIconSet
	aliases map[string]iconset.Alias
	bases   map[string]struct{}
}

// add records name and everything it depends on. It reports whether name
// resolves to an icon. Aliases are recorded only when their chain resolves.
func (r *retrieval) add(name string, depth int) bool {
	if depth > MaxAliasDepth {
		return false
	}
	if r.set.Index.Has(name) {
		r.bases[name] = struct{}{}
		return true
	}
	if _, done := r.aliases[name]; done {
		return true
	}

	alias, ok := r.set.Common.Aliases[name]
	if !ok || !r.add(alias.Parent, depth+1) {
		return false
	}
	r.aliases[name] = alias
	return true
}

// IconsToRetrieve returns the sorted names of the icons needed to answer a
// request for names. Aliases met along the way are copied into aliasOut as
// they are; a character code becomes a synthetic alias of the icon it maps
// to. aliasOut may be nil.
func IconsToRetrieve(set *shard.StoredIconSet, names []string, aliasOut map[string]iconset.Alias) []string {
	if aliasOut == nil {
		aliasOut = make(map[string]iconset.Alias)
	}
	r := &retrieval{
		set:     set,
		aliases: aliasOut,
		bases:   make(map[string]struct{}),
	}

	for _, name := range names {
		if r.add(name, 0) {
			continue
		}
		if _, isAlias := set.Common.Aliases[name]; isAlias {
			continue
		}
		if mapped, ok := set.Index.Char(name); ok && r.add(mapped, 1) {
			aliasOut[name] = iconset.Alias{Parent: mapped}
		}
	}

	bases := maps.Keys(r.bases)
	slices.Sort(bases)
	return bases
}

// GetIcons answers a batch request. Chunks are loaded concurrently, one
// storage request per chunk; names that resolve to nothing are listed in
// NotFound.
func GetIcons(ctx context.Context, set *shard.StoredIconSet, names []string) (*IconsResult, error) {
	start := time.Now()
	defer func() {
		duration.WithLabelValues("icons").Observe(time.Since(start).Seconds())
	}()

	result := &IconsResult{
		Prefix:       set.Common.Prefix,
		LastModified: set.Common.LastModified,
		Icons:        make(iconset.IconMap),
		Aliases:      make(map[string]iconset.Alias),
		Defaults:     set.Common.Defaults,
	}

	bases := IconsToRetrieve(set, names, result.Aliases)
	if len(bases) == 0 {
		result.NotFound = unique(names)
		notFound.Add(float64(len(result.NotFound)))
		return result, nil
	}

	groups := splittree.LookupMany(set.Tree, bases)

	var mu sync.Mutex
	var wg sync.WaitGroup
	wg.Add(len(groups))
	for item, group := range groups {
		group := group
		set.Storage.Get(item, func(chunk iconset.IconMap, ok bool) {
			defer wg.Done()
			if !ok {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			for _, name := range group {
				if icon, found := chunk[name]; found {
					result.Icons[name] = icon
				}
			}
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	for _, name := range unique(names) {
		if _, ok := result.Icons[name]; ok {
			continue
		}
		if _, ok := result.Aliases[name]; ok {
			continue
		}
		result.NotFound = append(result.NotFound, name)
	}
	notFound.Add(float64(len(result.NotFound)))
	return result, nil
}

// unique returns names without duplicates, in first-seen order.
func unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
