package iconset

// Index answers existence and character questions about an icon set without
// touching its icon bodies. It is built once at import time and not mutated.
type Index struct {
	icons  map[string]bool // name -> hidden
	chars  map[string]string
	hidden int
}

// NewIndex builds the index for set.
func NewIndex(set *IconSet) *Index {
	idx := &Index{
		icons: make(map[string]bool, len(set.Icons)),
		chars: make(map[string]string, len(set.Chars)),
	}
	for name, icon := range set.Icons {
		idx.icons[name] = icon.Hidden
		if icon.Hidden {
			idx.hidden++
		}
	}
	for code, name := range set.Chars {
		idx.chars[code] = name
	}
	return idx
}

// Has reports whether name is an icon (not an alias) of the set.
func (x *Index) Has(name string) bool {
	_, ok := x.icons[name]
	return ok
}

// Char returns the name mapped to a character code.
func (x *Index) Char(code string) (string, bool) {
	name, ok := x.chars[code]
	return name, ok
}

// Len returns the number of icons, hidden ones included.
func (x *Index) Len() int {
	return len(x.icons)
}

// Visible returns the number of icons that are not hidden.
func (x *Index) Visible() int {
	return len(x.icons) - x.hidden
}
