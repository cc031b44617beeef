// Package term is a terminal backend built on tcell. It is a render.Backend
// whose unit is one character cell, and an event.Source fed by the
// terminal's key, mouse and resize events.
package term

import (
	"image"
	"iter"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	xdraw "golang.org/x/image/draw"

	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
)

const eventBuffer = 256

// Backend draws into a tcell screen and reads its input.
type Backend struct {
	screen tcell.Screen
	input  *translator
	wake   func()

	events  chan tcell.Event
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	started bool
	queue   event.Queue
}

// Option configures a Backend.
type Option func(*Backend)

// WithWake sets a callback invoked from the input goroutine whenever an
// event arrives, typically to wake the main loop.
func WithWake(fn func()) Option {
	return func(b *Backend) { b.wake = fn }
}

// New creates a backend on the controlling terminal.
func New(opts ...Option) (*Backend, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewWithScreen(screen, opts...), nil
}

// NewWithScreen creates a backend with an existing tcell screen (for testing).
func NewWithScreen(screen tcell.Screen, opts ...Option) *Backend {
	b := &Backend{
		screen: screen,
		input:  &translator{},
		events: make(chan tcell.Event, eventBuffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Init initializes the screen and starts reading input.
func (b *Backend) Init() error {
	if err := b.screen.Init(); err != nil {
		return err
	}
	b.screen.EnableMouse()
	b.screen.HideCursor()
	b.started = true
	go b.pump()
	return nil
}

// Fini stops reading input and restores the terminal.
func (b *Backend) Fini() {
	b.once.Do(func() {
		close(b.quit)
		b.screen.Fini()
		if b.started {
			<-b.done
		}
	})
}

// Screen returns the underlying tcell screen.
func (b *Backend) Screen() tcell.Screen { return b.screen }

// Size returns the terminal size in cells.
func (b *Backend) Size() geometry.Size {
	w, h := b.screen.Size()
	return geometry.Size{Width: w, Height: h}
}

func (b *Backend) pump() {
	defer close(b.done)
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case b.events <- ev:
		case <-b.quit:
			return
		}
		if b.wake != nil {
			b.wake()
		}
	}
}

// Poll implements event.Source. It never blocks.
func (b *Backend) Poll() iter.Seq[event.Event] {
drain:
	for {
		select {
		case ev := <-b.events:
			b.queue.Push(b.input.translate(ev)...)
		default:
			break drain
		}
	}
	return b.queue.Poll()
}

// visible returns the cells inside both r and clip that lie on screen.
func (b *Backend) visible(clip, r geometry.Bounds) geometry.Bounds {
	return r.Intersect(clip).Intersect(geometry.FromSize(b.Size()))
}

// FillRect implements render.Canvas. An opaque color replaces the cells;
// a translucent one tints their background and keeps the text.
func (b *Backend) FillRect(clip, r geometry.Bounds, c render.Color) {
	area := b.visible(clip, r)
	if area.IsEmpty() || c.Alpha8() == 0 {
		return
	}
	opaque := c.Alpha8() == 0xFF
	for y := area.Top(); y < area.Bottom(); y++ {
		for x := area.Left(); x < area.Right(); x++ {
			if opaque {
				b.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(cellColor(c)))
				continue
			}
			mainc, comb, style, _ := b.screen.GetContent(x, y)
			_, bg, _ := style.Decompose()
			b.screen.SetContent(x, y, mainc, comb, style.Background(blend(bg, c)))
		}
	}
}

// Blit implements render.Canvas. Each cell takes the color of the texture
// sample under it.
func (b *Backend) Blit(clip, dst geometry.Bounds, tex image.Image) {
	area := b.visible(clip, dst)
	if area.IsEmpty() || tex == nil {
		return
	}
	cells := image.NewRGBA(image.Rect(0, 0, dst.Size.Width, dst.Size.Height))
	xdraw.NearestNeighbor.Scale(cells, cells.Bounds(), tex, tex.Bounds(), xdraw.Src, nil)
	for y := area.Top(); y < area.Bottom(); y++ {
		for x := area.Left(); x < area.Right(); x++ {
			c := render.FromColor(cells.At(x-dst.Left(), y-dst.Top()))
			if c.Alpha8() == 0 {
				continue
			}
			b.FillRect(clip, geometry.XYWH(x, y, 1, 1), c)
		}
	}
}

// DrawText implements render.Canvas. Wide runes take two cells and are
// skipped when they would straddle the clip edge. Cells keep their
// background.
func (b *Backend) DrawText(clip geometry.Bounds, origin geometry.Point, text string, c render.Color) {
	row := b.visible(clip, geometry.XYWH(origin.X, origin.Y, runewidth.StringWidth(text), 1))
	if row.IsEmpty() || c.Alpha8() == 0 {
		return
	}
	x := origin.X
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if x >= row.Left() && x+w <= row.Right() {
			_, _, style, _ := b.screen.GetContent(x, origin.Y)
			b.screen.SetContent(x, origin.Y, r, nil, style.Foreground(cellColor(c)))
		}
		x += w
	}
}

// MeasureText implements render.TextMetrics in cells.
func (b *Backend) MeasureText(text string) geometry.Size {
	return geometry.Size{Width: runewidth.StringWidth(text), Height: 1}
}

// Present implements render.Presenter.
func (b *Backend) Present() error {
	b.screen.Show()
	return nil
}

// Resize implements render.Resizer. tcell resizes its buffer on its own;
// the next frame is pushed in full.
func (b *Backend) Resize(geometry.Size) {
	b.screen.Sync()
}

func cellColor(c render.Color) tcell.Color {
	r, g, bl, _ := c.Components()
	return tcell.NewRGBColor(int32(r), int32(g), int32(bl))
}

// blend composites c over an existing cell background. Palette and default
// colors count as black.
func blend(under tcell.Color, c render.Color) tcell.Color {
	var ur, ug, ub int32
	if under.Valid() {
		if r, g, b := under.RGB(); r >= 0 {
			ur, ug, ub = r, g, b
		}
	}
	r, g, b, a := c.Components()
	mix := func(top uint8, bottom int32) int32 {
		return (int32(top)*int32(a) + bottom*(255-int32(a))) / 255
	}
	return tcell.NewRGBColor(mix(r, ur), mix(g, ug), mix(b, ub))
}

// translator turns tcell's button-state mouse reports into press, release,
// move and scroll events.
type translator struct {
	buttons tcell.ButtonMask
	pos     geometry.Point
	seen    bool
}

var pointerButtons = []struct {
	mask   tcell.ButtonMask
	button event.Button
}{
	{tcell.Button1, event.ButtonLeft},
	{tcell.Button3, event.ButtonMiddle},
	{tcell.Button2, event.ButtonRight},
}

func (t *translator) translate(ev tcell.Event) []event.Event {
	switch e := ev.(type) {
	case *tcell.EventKey:
		if isInterrupt(e) {
			return []event.Event{{Type: event.Close, Timestamp: e.When()}}
		}
		code, ok := convertKey(e.Key())
		if !ok {
			return nil
		}
		out := event.Event{
			Type:      event.Key,
			Timestamp: e.When(),
			Code:      code,
			Modifiers: convertModifiers(e.Modifiers()),
		}
		if code == event.KeyRune {
			out.Rune = e.Rune()
		}
		return []event.Event{out}
	case *tcell.EventResize:
		w, h := e.Size()
		return []event.Event{{Type: event.Resize, Timestamp: e.When(), Size: geometry.Size{Width: w, Height: h}}}
	case *tcell.EventMouse:
		return t.mouse(e)
	default:
		return nil
	}
}

func (t *translator) mouse(e *tcell.EventMouse) []event.Event {
	x, y := e.Position()
	pos := geometry.Point{X: x, Y: y}
	base := event.Event{
		Timestamp: e.When(),
		Position:  pos,
		Modifiers: convertModifiers(e.Modifiers()),
	}
	var out []event.Event
	if !t.seen || pos != t.pos {
		ev := base
		ev.Type = event.MouseMove
		out = append(out, ev)
	}
	t.seen, t.pos = true, pos

	mask := e.Buttons()
	for _, pb := range pointerButtons {
		was, is := t.buttons&pb.mask != 0, mask&pb.mask != 0
		if was == is {
			continue
		}
		ev := base
		ev.Button = pb.button
		ev.Type = event.MouseUp
		if is {
			ev.Type = event.MouseDown
		}
		out = append(out, ev)
	}
	t.buttons = mask & (tcell.Button1 | tcell.Button2 | tcell.Button3)

	var scroll geometry.Point
	switch {
	case mask&tcell.WheelUp != 0:
		scroll.Y = -1
	case mask&tcell.WheelDown != 0:
		scroll.Y = 1
	case mask&tcell.WheelLeft != 0:
		scroll.X = -1
	case mask&tcell.WheelRight != 0:
		scroll.X = 1
	}
	if scroll != (geometry.Point{}) {
		ev := base
		ev.Type = event.MouseScroll
		ev.Scroll = scroll
		out = append(out, ev)
	}
	return out
}

// isInterrupt reports Ctrl-C, which tcell reports either as its own key or
// as a rune with the control modifier.
func isInterrupt(e *tcell.EventKey) bool {
	if e.Key() == tcell.KeyCtrlC {
		return true
	}
	return e.Key() == tcell.KeyRune && e.Rune() == 'c' && e.Modifiers()&tcell.ModCtrl != 0
}

func convertKey(k tcell.Key) (event.KeyCode, bool) {
	switch k {
	case tcell.KeyRune:
		return event.KeyRune, true
	case tcell.KeyEnter:
		return event.KeyEnter, true
	case tcell.KeyEscape:
		return event.KeyEscape, true
	case tcell.KeyTab:
		return event.KeyTab, true
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return event.KeyBackspace, true
	case tcell.KeyDelete:
		return event.KeyDelete, true
	case tcell.KeyUp:
		return event.KeyUp, true
	case tcell.KeyDown:
		return event.KeyDown, true
	case tcell.KeyLeft:
		return event.KeyLeft, true
	case tcell.KeyRight:
		return event.KeyRight, true
	case tcell.KeyHome:
		return event.KeyHome, true
	case tcell.KeyEnd:
		return event.KeyEnd, true
	case tcell.KeyPgUp:
		return event.KeyPageUp, true
	case tcell.KeyPgDn:
		return event.KeyPageDown, true
	default:
		return 0, false
	}
}

func convertModifiers(m tcell.ModMask) event.Modifiers {
	var out event.Modifiers
	if m&tcell.ModShift != 0 {
		out |= event.ModShift
	}
	if m&tcell.ModCtrl != 0 {
		out |= event.ModCtrl
	}
	if m&tcell.ModAlt != 0 {
		out |= event.ModAlt
	}
	return out
}

var (
	_ render.Backend   = (*Backend)(nil)
	_ render.Presenter = (*Backend)(nil)
	_ render.Resizer   = (*Backend)(nil)
	_ event.Source     = (*Backend)(nil)
)
