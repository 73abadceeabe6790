package server

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dreamware/iconshard/internal/iconset"
)

type viewBox struct {
	left, top, width, height float64
}

// RenderSVG renders a resolved icon as a standalone SVG document, 1em high,
// with flips and rotation applied as a transform around the body.
func RenderSVG(icon *iconset.Icon) string {
	box := viewBox{
		left:   deref(icon.Left, iconset.DefaultLeft),
		top:    deref(icon.Top, iconset.DefaultTop),
		width:  deref(icon.Width, iconset.DefaultWidth),
		height: deref(icon.Height, iconset.DefaultHeight),
	}
	rotate := deref(icon.Rotate, 0)
	hFlip := deref(icon.HFlip, false)
	vFlip := deref(icon.VFlip, false)

	var transforms []string
	switch {
	case hFlip && vFlip:
		rotate += 2
	case hFlip:
		transforms = append(transforms,
			fmt.Sprintf("translate(%s %s)", num(box.width+box.left), num(-box.top)),
			"scale(-1 1)",
		)
		box.left, box.top = 0, 0
	case vFlip:
		transforms = append(transforms,
			fmt.Sprintf("translate(%s %s)", num(-box.left), num(box.height+box.top)),
			"scale(1 -1)",
		)
		box.left, box.top = 0, 0
	}

	// Rotation goes first, around the center of the unrotated box.
	switch ((rotate % 4) + 4) % 4 {
	case 1:
		c := box.height/2 + box.top
		transforms = append([]string{fmt.Sprintf("rotate(90 %s %s)", num(c), num(c))}, transforms...)
	case 2:
		transforms = append([]string{fmt.Sprintf("rotate(180 %s %s)",
			num(box.width/2+box.left), num(box.height/2+box.top))}, transforms...)
	case 3:
		c := box.width/2 + box.left
		transforms = append([]string{fmt.Sprintf("rotate(-90 %s %s)", num(c), num(c))}, transforms...)
	}
	if rotate%2 != 0 {
		box.left, box.top = box.top, box.left
		box.width, box.height = box.height, box.width
	}

	body := icon.Body
	if len(transforms) > 0 {
		body = `<g transform="` + strings.Join(transforms, " ") + `">` + body + `</g>`
	}

	width := "1em"
	if box.height > 0 {
		width = num(math.Round(box.width/box.height*10000)/10000) + "em"
	}

	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="1em" viewBox="%s %s %s %s">%s</svg>`,
		width, num(box.left), num(box.top), num(box.width), num(box.height), body)
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func num(v float64) string {
	if v == 0 {
		// Avoid "-0".
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
