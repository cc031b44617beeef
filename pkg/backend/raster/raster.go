// Package raster is a software rendering backend that draws into an
// in-memory RGBA image.
//
// Text uses a golang.org/x/image font face (basicfont.Face7x13 unless one
// is supplied) and texture blits are scaled with an x/image/draw
// interpolator.
package raster

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
)

// Option configures a Backend.
type Option func(*Backend)

// WithFace sets the font face used for text.
func WithFace(face font.Face) Option {
	return func(b *Backend) {
		if face != nil {
			b.face = face
		}
	}
}

// WithScaler sets the interpolator used when a blit changes size.
func WithScaler(s xdraw.Scaler) Option {
	return func(b *Backend) {
		if s != nil {
			b.scaler = s
		}
	}
}

// WithPresentFunc sets a callback that receives the frame on Present.
func WithPresentFunc(fn func(*image.RGBA) error) Option {
	return func(b *Backend) { b.present = fn }
}

// Backend implements render.Backend, render.Presenter and render.Resizer
// over an *image.RGBA.
type Backend struct {
	img     *image.RGBA
	face    font.Face
	scaler  xdraw.Scaler
	present func(*image.RGBA) error
	frames  int
}

// New returns a backend with a transparent frame buffer of the given size.
func New(size geometry.Size, opts ...Option) *Backend {
	b := &Backend{
		img:    image.NewRGBA(image.Rect(0, 0, max(size.Width, 0), max(size.Height, 0))),
		face:   basicfont.Face7x13,
		scaler: xdraw.ApproxBiLinear,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Image returns the frame buffer. It is replaced on Resize.
func (b *Backend) Image() *image.RGBA { return b.img }

// Frames returns how many frames were presented.
func (b *Backend) Frames() int { return b.frames }

// Size returns the frame buffer size.
func (b *Backend) Size() geometry.Size {
	r := b.img.Bounds()
	return geometry.Size{Width: r.Dx(), Height: r.Dy()}
}

func rect(bounds geometry.Bounds) image.Rectangle {
	return image.Rect(bounds.Left(), bounds.Top(), bounds.Right(), bounds.Bottom())
}

// target returns the part of the frame buffer inside clip, or nil when
// nothing can be drawn.
func (b *Backend) target(clip geometry.Bounds) *image.RGBA {
	r := rect(clip).Intersect(b.img.Bounds())
	if r.Empty() {
		return nil
	}
	return b.img.SubImage(r).(*image.RGBA)
}

// FillRect implements render.Canvas. Translucent colors blend over the
// existing pixels.
func (b *Backend) FillRect(clip, r geometry.Bounds, c render.Color) {
	dst := b.target(clip)
	if dst == nil || c.Alpha8() == 0 {
		return
	}
	area := rect(r).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	op := draw.Over
	if c.Alpha8() == 0xFF {
		op = draw.Src
	}
	xdraw.Draw(dst, area, image.NewUniform(c.NRGBA()), image.Point{}, op)
}

// Blit implements render.Canvas. tex is scaled to dst when the sizes
// differ.
func (b *Backend) Blit(clip, dst geometry.Bounds, tex image.Image) {
	target := b.target(clip)
	if target == nil || tex == nil || dst.IsEmpty() {
		return
	}
	r := rect(dst)
	if !r.Overlaps(target.Bounds()) {
		return
	}
	src := tex.Bounds()
	if src.Dx() == r.Dx() && src.Dy() == r.Dy() {
		xdraw.Draw(target, r, tex, src.Min, draw.Over)
		return
	}
	b.scaler.Scale(target, r, tex, src, draw.Over, nil)
}

// DrawText implements render.Canvas. origin is the top-left corner of the
// line box.
func (b *Backend) DrawText(clip geometry.Bounds, origin geometry.Point, text string, c render.Color) {
	dst := b.target(clip)
	if dst == nil || text == "" || c.Alpha8() == 0 {
		return
	}
	ascent := b.face.Metrics().Ascent
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c.NRGBA()),
		Face: b.face,
		Dot:  fixed.P(origin.X, origin.Y).Add(fixed.Point26_6{Y: ascent}),
	}
	d.DrawString(text)
}

// MeasureText implements render.TextMetrics.
func (b *Backend) MeasureText(text string) geometry.Size {
	m := b.face.Metrics()
	return geometry.Size{
		Width:  font.MeasureString(b.face, text).Ceil(),
		Height: m.Height.Ceil(),
	}
}

// Resize implements render.Resizer. The overlapping part of the previous
// frame is kept.
func (b *Backend) Resize(size geometry.Size) {
	next := image.NewRGBA(image.Rect(0, 0, max(size.Width, 0), max(size.Height, 0)))
	draw.Draw(next, b.img.Bounds().Intersect(next.Bounds()), b.img, image.Point{}, draw.Src)
	b.img = next
}

// Present implements render.Presenter.
func (b *Backend) Present() error {
	b.frames++
	if b.present != nil {
		return b.present(b.img)
	}
	return nil
}

var (
	_ render.Backend   = (*Backend)(nil)
	_ render.Presenter = (*Backend)(nil)
	_ render.Resizer   = (*Backend)(nil)
)
