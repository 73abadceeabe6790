// Package iconset defines the icon set data model shared by the storage,
// splitting and lookup layers: icons, aliases, property merging and the
// existence/character index built at import time.
//
// # Property merging
//
// An icon resolved through aliases inherits properties level by level, from
// the base icon outwards:
//
//	base icon -> parent alias -> ... -> requested alias -> set defaults
//
// Width, height, left and top take the most specific value that is set.
// Rotation is additive (quarter turns, modulo 4) and horizontal/vertical
// flips toggle, so two flips cancel out.
package iconset
