package render

import (
	"fmt"
	"image"
	"unicode/utf8"

	"github.com/go-drift/pane/pkg/geometry"
)

// Op names a recorded command.
type Op string

const (
	OpFillRect Op = "fillRect"
	OpBlit     Op = "blit"
	OpDrawText Op = "drawText"
)

// Command is one recorded draw command in screen coordinates.
type Command struct {
	Op    Op
	Clip  geometry.Bounds
	Rect  geometry.Bounds
	Text  string
	Color Color
}

// Visible returns the area the command would actually touch.
func (c Command) Visible() geometry.Bounds {
	return c.Rect.Intersect(c.Clip)
}

func (c Command) String() string {
	switch c.Op {
	case OpDrawText:
		return fmt.Sprintf("%s %q at %v clip=%v", c.Op, c.Text, c.Rect.Origin, c.Clip)
	default:
		return fmt.Sprintf("%s %v %v clip=%v", c.Op, c.Rect, c.Color, c.Clip)
	}
}

// Recorder is a Backend that records commands instead of rasterizing them.
// Text is measured with a fixed advance per rune.
type Recorder struct {
	// CharWidth is the advance of one rune. Zero means 8.
	CharWidth int
	// LineHeight is the height of one line of text. Zero means 16.
	LineHeight int

	commands []Command
	presents int
}

// FillRect records a fill.
func (r *Recorder) FillRect(clip, rect geometry.Bounds, c Color) {
	r.commands = append(r.commands, Command{Op: OpFillRect, Clip: clip, Rect: rect, Color: c})
}

// Blit records a texture blit.
func (r *Recorder) Blit(clip, dst geometry.Bounds, tex image.Image) {
	r.commands = append(r.commands, Command{Op: OpBlit, Clip: clip, Rect: dst})
}

// DrawText records a text run. Rect is the measured extent of the run.
func (r *Recorder) DrawText(clip geometry.Bounds, origin geometry.Point, text string, c Color) {
	size := r.MeasureText(text)
	r.commands = append(r.commands, Command{
		Op:    OpDrawText,
		Clip:  clip,
		Rect:  geometry.Bounds{Origin: origin, Size: size},
		Text:  text,
		Color: c,
	})
}

// MeasureText implements TextMetrics.
func (r *Recorder) MeasureText(text string) geometry.Size {
	cw, lh := r.CharWidth, r.LineHeight
	if cw == 0 {
		cw = 8
	}
	if lh == 0 {
		lh = 16
	}
	return geometry.Size{Width: utf8.RuneCountInString(text) * cw, Height: lh}
}

// Present implements Presenter by counting frames.
func (r *Recorder) Present() error {
	r.presents++
	return nil
}

// Presents returns how many frames were presented.
func (r *Recorder) Presents() int { return r.presents }

// Commands returns a copy of the recorded commands.
func (r *Recorder) Commands() []Command {
	out := make([]Command, len(r.commands))
	copy(out, r.commands)
	return out
}

// Reset discards recorded commands.
func (r *Recorder) Reset() {
	r.commands = r.commands[:0]
}
