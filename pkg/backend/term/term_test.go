package term

import (
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
)

func newSim(t *testing.T, w, h int, opts ...Option) (*Backend, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	b := NewWithScreen(screen, opts...)
	require.NoError(t, b.Init())
	screen.SetSize(w, h)
	t.Cleanup(b.Fini)
	return b, screen
}

func cell(screen tcell.Screen, x, y int) (rune, tcell.Color, tcell.Color) {
	mainc, _, style, _ := screen.GetContent(x, y)
	fg, bg, _ := style.Decompose()
	return mainc, fg, bg
}

func TestFillRectSetsBackgroundInsideClip(t *testing.T) {
	b, screen := newSim(t, 10, 3)
	red := tcell.NewRGBColor(255, 0, 0)

	b.FillRect(geometry.XYWH(0, 0, 3, 3), geometry.XYWH(1, 1, 5, 1), render.ColorRed)

	_, _, bg := cell(screen, 1, 1)
	assert.Equal(t, red, bg)
	_, _, bg = cell(screen, 2, 1)
	assert.Equal(t, red, bg)
	_, _, bg = cell(screen, 3, 1)
	assert.NotEqual(t, red, bg, "outside clip")
	_, _, bg = cell(screen, 1, 0)
	assert.NotEqual(t, red, bg, "outside rect")
}

func TestTranslucentFillKeepsText(t *testing.T) {
	b, screen := newSim(t, 4, 1)
	full := geometry.XYWH(0, 0, 4, 1)

	b.FillRect(full, full, render.ColorBlack)
	b.DrawText(full, geometry.Point{}, "x", render.ColorWhite)
	b.FillRect(full, full, render.ColorWhite.WithAlpha8(0x80))

	r, _, bg := cell(screen, 0, 0)
	assert.Equal(t, 'x', r)
	assert.Equal(t, tcell.NewRGBColor(0x80, 0x80, 0x80), bg)
}

func TestDrawTextKeepsBackground(t *testing.T) {
	b, screen := newSim(t, 10, 2)
	full := geometry.XYWH(0, 0, 10, 2)
	b.FillRect(full, full, render.ColorBlue)

	b.DrawText(full, geometry.Point{X: 1, Y: 1}, "ok", render.ColorWhite)

	r, fg, bg := cell(screen, 1, 1)
	assert.Equal(t, 'o', r)
	assert.Equal(t, tcell.NewRGBColor(255, 255, 255), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)
	r, _, _ = cell(screen, 2, 1)
	assert.Equal(t, 'k', r)
}

func TestDrawTextWideRunes(t *testing.T) {
	b, screen := newSim(t, 10, 2)

	b.DrawText(geometry.XYWH(0, 0, 1, 1), geometry.Point{}, "世a", render.ColorWhite)
	r, _, _ := cell(screen, 0, 0)
	assert.NotEqual(t, '世', r, "wide rune straddling the clip is skipped")

	b.DrawText(geometry.XYWH(0, 1, 10, 1), geometry.Point{Y: 1}, "世a", render.ColorWhite)
	r, _, _ = cell(screen, 0, 1)
	assert.Equal(t, '世', r)
	r, _, _ = cell(screen, 2, 1)
	assert.Equal(t, 'a', r)

	assert.Equal(t, geometry.Size{Width: 3, Height: 1}, b.MeasureText("世a"))
}

func TestBlitSamplesTexture(t *testing.T) {
	b, screen := newSim(t, 6, 2)
	tex := image.NewRGBA(image.Rect(0, 0, 2, 1))
	tex.Set(0, 0, color.NRGBA{R: 0xFF, A: 0xFF})
	tex.Set(1, 0, color.NRGBA{G: 0xFF, A: 0xFF})

	b.Blit(geometry.XYWH(0, 0, 6, 2), geometry.XYWH(0, 0, 4, 1), tex)

	_, _, bg := cell(screen, 0, 0)
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), bg)
	_, _, bg = cell(screen, 3, 0)
	assert.Equal(t, tcell.NewRGBColor(0, 255, 0), bg)
}

func TestTranslateMouseSequence(t *testing.T) {
	tr := &translator{}
	steps := []struct {
		ev   *tcell.EventMouse
		want []event.Type
	}{
		{tcell.NewEventMouse(2, 3, tcell.ButtonNone, tcell.ModNone), []event.Type{event.MouseMove}},
		{tcell.NewEventMouse(2, 3, tcell.Button1, tcell.ModNone), []event.Type{event.MouseDown}},
		{tcell.NewEventMouse(4, 3, tcell.Button1, tcell.ModNone), []event.Type{event.MouseMove}},
		{tcell.NewEventMouse(4, 3, tcell.ButtonNone, tcell.ModNone), []event.Type{event.MouseUp}},
		{tcell.NewEventMouse(4, 3, tcell.WheelUp, tcell.ModNone), []event.Type{event.MouseScroll}},
	}
	for i, step := range steps {
		got := tr.translate(step.ev)
		types := make([]event.Type, len(got))
		for j, ev := range got {
			types[j] = ev.Type
		}
		require.Equal(t, step.want, types, "step %d", i)
	}

	down := tr.translate(tcell.NewEventMouse(4, 3, tcell.Button2, tcell.ModShift))
	require.Len(t, down, 1)
	assert.Equal(t, event.ButtonRight, down[0].Button)
	assert.Equal(t, event.ModShift, down[0].Modifiers)
	assert.Equal(t, geometry.Point{X: 4, Y: 3}, down[0].Position)

	scroll := tr.translate(tcell.NewEventMouse(4, 3, tcell.WheelDown|tcell.Button2, tcell.ModNone))
	require.Len(t, scroll, 1)
	assert.Equal(t, geometry.Point{Y: 1}, scroll[0].Scroll)
}

func TestTranslateKeysAndResize(t *testing.T) {
	tr := &translator{}

	got := tr.translate(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModAlt))
	require.Len(t, got, 1)
	assert.Equal(t, event.Key, got[0].Type)
	assert.Equal(t, event.KeyRune, got[0].Code)
	assert.Equal(t, 'q', got[0].Rune)
	assert.Equal(t, event.ModAlt, got[0].Modifiers)

	got = tr.translate(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone))
	require.Len(t, got, 1)
	assert.Equal(t, event.KeyEnter, got[0].Code)

	assert.Empty(t, tr.translate(tcell.NewEventKey(tcell.KeyF5, 0, tcell.ModNone)))

	got = tr.translate(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl))
	require.Len(t, got, 1)
	assert.Equal(t, event.Close, got[0].Type)

	got = tr.translate(tcell.NewEventResize(120, 40))
	require.Len(t, got, 1)
	assert.Equal(t, event.Resize, got[0].Type)
	assert.Equal(t, geometry.Size{Width: 120, Height: 40}, got[0].Size)
}

func TestPollDeliversInjectedInput(t *testing.T) {
	var wakes atomic.Int32
	b, screen := newSim(t, 20, 5, WithWake(func() { wakes.Add(1) }))

	screen.InjectMouse(3, 2, tcell.Button1, tcell.ModNone)
	screen.InjectMouse(3, 2, tcell.ButtonNone, tcell.ModNone)

	var got []event.Event
	require.Eventually(t, func() bool {
		for ev := range b.Poll() {
			got = append(got, ev)
		}
		for _, ev := range got {
			if ev.Type == event.MouseUp {
				return true
			}
		}
		return false
	}, time.Second, 5*time.Millisecond)

	var types []event.Type
	for _, ev := range got {
		if ev.Type != event.Resize {
			types = append(types, ev.Type)
		}
	}
	assert.Equal(t, []event.Type{event.MouseMove, event.MouseDown, event.MouseUp}, types)
	assert.Positive(t, wakes.Load())
}

func TestPresentAndResize(t *testing.T) {
	b, _ := newSim(t, 5, 2)
	assert.Equal(t, geometry.Size{Width: 5, Height: 2}, b.Size())
	assert.NoError(t, b.Present())
	assert.NotPanics(t, func() { b.Resize(geometry.Size{Width: 5, Height: 2}) })
}
