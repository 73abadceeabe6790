// Package lookup resolves icon names against a shard.StoredIconSet.
//
// A requested name is one of three things:
//
//   - an icon, stored in exactly one chunk;
//   - an alias, pointing at a parent icon or alias and overriding some of
//     its properties;
//   - a character code, mapped to an icon or alias name by the set's index.
//
// Aliases and characters are resolved from resident data. Only the chunk
// holding the base icon is loaded from storage.
//
// GetIcon returns a single icon with every property resolved. Properties are
// merged from the base icon outwards through the alias chain, then filled
// from the icon set defaults and the package fallbacks (0 for left and top,
// 16 for width and height). Rotations add up modulo 4 and flips toggle;
// every other property takes the most specific value.
//
// GetIcons answers batches. It returns raw icon records together with the
// aliases needed to resolve the request, and lists unresolved names in
// NotFound.
package lookup
