package lookup

import (
	"context"
	"errors"
	"time"

	"github.com/dreamware/iconshard/internal/iconset"
	"github.com/dreamware/iconshard/internal/shard"
	"github.com/dreamware/iconshard/internal/splittree"
	"github.com/dreamware/iconshard/internal/storage"
)

// MaxAliasDepth bounds alias chains. Longer chains, including cycles that
// slipped past import validation, resolve to nothing.
const MaxAliasDepth = 32

// ResolveAlias follows the alias chain starting at name and returns the
// merged overrides of the whole chain plus the name of the icon at its end.
// ok is false when name is not an alias or the chain is too long.
func ResolveAlias(common shard.Common, name string) (overrides iconset.Props, base string, ok bool) {
	alias, ok := common.Aliases[name]
	if !ok {
		return iconset.Props{}, "", false
	}

	// Most specific first.
	chain := []iconset.Props{alias.Props}
	base = alias.Parent
	for {
		parent, isAlias := common.Aliases[base]
		if !isAlias {
			break
		}
		if len(chain) >= MaxAliasDepth {
			return iconset.Props{}, "", false
		}
		chain = append(chain, parent.Props)
		base = parent.Parent
	}

	for i := len(chain) - 1; i >= 0; i-- {
		overrides = overrides.Merge(chain[i])
	}
	return overrides, base, true
}

// GetIcon returns the fully resolved icon called name: the base icon with
// alias overrides and icon set defaults applied. A name that is neither an
// icon nor an alias is looked up in the character map once.
//
// A missing icon is not an error; GetIcon returns nil. Errors are reserved
// for ctx ending while a chunk loads.
func GetIcon(ctx context.Context, set *shard.StoredIconSet, name string) (*iconset.Icon, error) {
	start := time.Now()
	defer func() {
		duration.WithLabelValues("icon").Observe(time.Since(start).Seconds())
	}()

	icon, err := getIcon(ctx, set, name)
	if icon != nil || err != nil {
		return icon, err
	}

	if _, isAlias := set.Common.Aliases[name]; isAlias || set.Index.Has(name) {
		notFound.Inc()
		return nil, nil
	}
	if mapped, ok := set.Index.Char(name); ok {
		icon, err = getIcon(ctx, set, mapped)
	}
	if icon == nil && err == nil {
		notFound.Inc()
	}
	return icon, err
}

func getIcon(ctx context.Context, set *shard.StoredIconSet, name string) (*iconset.Icon, error) {
	var overrides iconset.Props
	base := name
	if _, isAlias := set.Common.Aliases[name]; isAlias {
		var ok bool
		overrides, base, ok = ResolveAlias(set.Common, name)
		if !ok {
			return nil, nil
		}
	}
	if !set.Index.Has(base) {
		return nil, nil
	}

	item := splittree.Lookup(set.Tree, base)
	if item == nil {
		return nil, nil
	}
	chunk, err := set.Storage.Fetch(ctx, item)
	if err != nil {
		if errors.Is(err, storage.ErrItemMissing) {
			return nil, nil
		}
		return nil, err
	}

	icon, ok := chunk[base]
	if !ok {
		return nil, nil
	}
	return &iconset.Icon{
		Body:  icon.Body,
		Props: icon.Props.Merge(overrides).Finalize(set.Common.Defaults),
	}, nil
}
