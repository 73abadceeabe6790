package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/iconshard/internal/iconset"
)

func TestRenderSVG(t *testing.T) {
	const body = `<path/>`
	const prefix = `<svg xmlns="http://www.w3.org/2000/svg" `

	tests := []struct {
		name  string
		props iconset.Props
		want  string
	}{
		{
			name:  "plain",
			props: iconset.Props{},
			want:  prefix + `width="1em" height="1em" viewBox="0 0 16 16"><path/></svg>`,
		},
		{
			name:  "wide",
			props: iconset.Props{Width: iconset.Ptr(32.0), Height: iconset.Ptr(24.0)},
			want:  prefix + `width="1.3333em" height="1em" viewBox="0 0 32 24"><path/></svg>`,
		},
		{
			name:  "vertical flip",
			props: iconset.Props{Left: iconset.Ptr(-2.0), VFlip: iconset.Ptr(true)},
			want:  prefix + `width="1em" height="1em" viewBox="0 0 16 16"><g transform="translate(2 16) scale(1 -1)"><path/></g></svg>`,
		},
		{
			name:  "both flips rotate",
			props: iconset.Props{HFlip: iconset.Ptr(true), VFlip: iconset.Ptr(true)},
			want:  prefix + `width="1em" height="1em" viewBox="0 0 16 16"><g transform="rotate(180 8 8)"><path/></g></svg>`,
		},
		{
			name:  "quarter turn swaps dimensions",
			props: iconset.Props{Width: iconset.Ptr(20.0), Height: iconset.Ptr(10.0), Rotate: iconset.Ptr(1)},
			want:  prefix + `width="0.5em" height="1em" viewBox="0 0 10 20"><g transform="rotate(90 5 5)"><path/></g></svg>`,
		},
		{
			name:  "three quarters",
			props: iconset.Props{Rotate: iconset.Ptr(3)},
			want:  prefix + `width="1em" height="1em" viewBox="0 0 16 16"><g transform="rotate(-90 8 8)"><path/></g></svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderSVG(&iconset.Icon{Body: body, Props: tt.props})
			assert.Equal(t, tt.want, got)
		})
	}
}
