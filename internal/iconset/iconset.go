package iconset

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Fallback dimensions used when neither the icon, its aliases nor the icon
// set define a value.
const (
	DefaultLeft   = 0
	DefaultTop    = 0
	DefaultWidth  = 16
	DefaultHeight = 16
)

var (
	// ErrInvalidPrefix is returned when an icon set has an empty or malformed prefix.
	ErrInvalidPrefix = errors.New("invalid icon set prefix")

	// ErrNoIcons is returned when an icon set contains no icons.
	ErrNoIcons = errors.New("icon set has no icons")
)

var prefixPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// Props holds the optional properties shared by icons and aliases.
// A nil pointer means "not set at this level".
type Props struct {
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
	Rotate *int     `json:"rotate,omitempty"`
	HFlip  *bool    `json:"hFlip,omitempty"`
	VFlip  *bool    `json:"vFlip,omitempty"`
}

// Icon is a single icon definition as stored in an icon set.
type Icon struct {
	Body string `json:"body"`
	Props
	Hidden bool `json:"hidden,omitempty"`
}

// Alias points at a parent icon or alias and overrides some of its properties.
type Alias struct {
	Parent string `json:"parent"`
	Props
}

// IconMap maps icon names to icon definitions. Chunks of an icon set are
// stored as IconMap values.
type IconMap map[string]Icon

// IconSet is a complete, validated icon set as produced by the import pipeline.
type IconSet struct {
	Prefix       string            `json:"prefix"`
	LastModified int64             `json:"lastModified,omitempty"`
	Icons        IconMap           `json:"icons"`
	Aliases      map[string]Alias  `json:"aliases,omitempty"`
	Chars        map[string]string `json:"chars,omitempty"`

	// Theme prefixes and suffixes.
	Prefixes map[string]string `json:"prefixes,omitempty"`
	Suffixes map[string]string `json:"suffixes,omitempty"`

	// Default dimensions for every icon in the set.
	Defaults
}

// Decode parses an icon set JSON document and checks the fields this service
// depends on. Alias consistency is the import pipeline's concern.
func Decode(r io.Reader) (*IconSet, error) {
	var set IconSet
	if err := json.NewDecoder(r).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode icon set: %w", err)
	}
	if !prefixPattern.MatchString(set.Prefix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPrefix, set.Prefix)
	}
	if len(set.Icons) == 0 {
		return nil, fmt.Errorf("%s: %w", set.Prefix, ErrNoIcons)
	}
	return &set, nil
}

// Names returns the icon names of m in lexicographic order.
func (m IconMap) Names() []string {
	names := maps.Keys(m)
	slices.Sort(names)
	return names
}

// BodySize returns the combined length of all icon bodies in m.
func (m IconMap) BodySize() int {
	size := 0
	for _, icon := range m {
		size += len(icon.Body)
	}
	return size
}
