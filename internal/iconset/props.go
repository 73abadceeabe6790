package iconset

// Ptr returns a pointer to v. Handy for building Props literals.
func Ptr[T any](v T) *T {
	return &v
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Merge returns p with the properties of a more specific level applied on
// top. Rotations add up, flips toggle, everything else is replaced when set.
func (p Props) Merge(over Props) Props {
	out := p
	if over.Left != nil {
		out.Left = over.Left
	}
	if over.Top != nil {
		out.Top = over.Top
	}
	if over.Width != nil {
		out.Width = over.Width
	}
	if over.Height != nil {
		out.Height = over.Height
	}
	if over.Rotate != nil {
		out.Rotate = Ptr((valueOr(p.Rotate, 0) + *over.Rotate) % 4)
	}
	if over.HFlip != nil {
		out.HFlip = Ptr(valueOr(p.HFlip, false) != *over.HFlip)
	}
	if over.VFlip != nil {
		out.VFlip = Ptr(valueOr(p.VFlip, false) != *over.VFlip)
	}
	return out
}

// Defaults holds the icon set level fallbacks for dimensions.
type Defaults struct {
	Left   *float64 `json:"left,omitempty"`
	Top    *float64 `json:"top,omitempty"`
	Width  *float64 `json:"width,omitempty"`
	Height *float64 `json:"height,omitempty"`
}

// Finalize fills unset dimensions from d, then from the package fallbacks,
// and normalizes the result for output: width and height are always present,
// left/top/rotate are dropped when zero and flips when false.
func (p Props) Finalize(d Defaults) Props {
	left := valueOr(p.Left, valueOr(d.Left, DefaultLeft))
	top := valueOr(p.Top, valueOr(d.Top, DefaultTop))

	out := Props{
		Width:  Ptr(valueOr(p.Width, valueOr(d.Width, DefaultWidth))),
		Height: Ptr(valueOr(p.Height, valueOr(d.Height, DefaultHeight))),
	}
	if left != 0 {
		out.Left = Ptr(left)
	}
	if top != 0 {
		out.Top = Ptr(top)
	}
	if rotate := valueOr(p.Rotate, 0) % 4; rotate != 0 {
		out.Rotate = Ptr(rotate)
	}
	if valueOr(p.HFlip, false) {
		out.HFlip = Ptr(true)
	}
	if valueOr(p.VFlip, false) {
		out.VFlip = Ptr(true)
	}
	return out
}
