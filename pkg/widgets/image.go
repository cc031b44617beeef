package widgets

import (
	"image"

	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/widget"
)

// Image draws a texture scaled into its bounds.
type Image struct {
	widget.Base

	source image.Image
	// KeepAspect letterboxes the texture instead of stretching it.
	KeepAspect bool
}

// NewImage returns a drawable image widget.
func NewImage(src image.Image) *Image {
	return &Image{Base: widget.NewBase(geometry.Bounds{}, widget.Drawable), source: src}
}

// Source returns the texture.
func (i *Image) Source() image.Image { return i.source }

// SetSource replaces the texture and requests a redraw.
func (i *Image) SetSource(src image.Image) {
	i.source = src
	i.MarkNeedsRedraw()
}

// Draw implements widget.Widget.
func (i *Image) Draw(ctx *render.Context, clip geometry.Bounds) {
	if i.source == nil {
		return
	}
	dst := geometry.FromSize(i.Bounds().Size)
	if i.KeepAspect {
		dst = fit(i.source.Bounds(), dst)
	}
	if !dst.IsEmpty() {
		ctx.Blit(dst, i.source)
	}
}

// fit returns the largest rectangle with src's aspect ratio centered in dst.
func fit(src image.Rectangle, dst geometry.Bounds) geometry.Bounds {
	sw, sh := src.Dx(), src.Dy()
	if sw <= 0 || sh <= 0 {
		return geometry.Bounds{}
	}
	w, h := dst.Size.Width, dst.Size.Width*sh/sw
	if h > dst.Size.Height {
		w, h = dst.Size.Height*sw/sh, dst.Size.Height
	}
	return geometry.XYWH(dst.Left()+(dst.Size.Width-w)/2, dst.Top()+(dst.Size.Height-h)/2, w, h)
}
