package testing

import (
	"fmt"

	"github.com/go-drift/pane/pkg/event"
	"github.com/go-drift/pane/pkg/geometry"
)

// Pointer returns the last simulated pointer position.
func (t *Tester) Pointer() geometry.Point { return t.pointer }

func (t *Tester) pointerEvent(typ event.Type, pos geometry.Point, b event.Button) event.Event {
	t.pointer = pos
	return event.Event{Type: typ, Timestamp: t.clock.Now(), Position: pos, Button: b}
}

// MoveTo moves the pointer to pos and runs a frame.
func (t *Tester) MoveTo(pos geometry.Point) error {
	t.Send(t.pointerEvent(event.MouseMove, pos, event.ButtonNone))
	_, err := t.Pump()
	return err
}

// Press presses button at pos and runs a frame.
func (t *Tester) Press(pos geometry.Point, b event.Button) error {
	t.Send(t.pointerEvent(event.MouseDown, pos, b))
	_, err := t.Pump()
	return err
}

// Release releases button at pos and runs a frame.
func (t *Tester) Release(pos geometry.Point, b event.Button) error {
	t.Send(t.pointerEvent(event.MouseUp, pos, b))
	_, err := t.Pump()
	return err
}

// TapAt moves to pos, then presses and releases the left button in a
// single frame.
func (t *Tester) TapAt(pos geometry.Point) error {
	t.Send(
		t.pointerEvent(event.MouseMove, pos, event.ButtonNone),
		t.pointerEvent(event.MouseDown, pos, event.ButtonLeft),
		t.pointerEvent(event.MouseUp, pos, event.ButtonLeft),
	)
	_, err := t.Pump()
	return err
}

// Tap taps the center of the first widget matched by finder.
func (t *Tester) Tap(finder Finder) error {
	center, err := t.centerOf(finder)
	if err != nil {
		return fmt.Errorf("Tap: %w", err)
	}
	return t.TapAt(center)
}

// Hover moves the pointer to the center of the first widget matched by
// finder.
func (t *Tester) Hover(finder Finder) error {
	center, err := t.centerOf(finder)
	if err != nil {
		return fmt.Errorf("Hover: %w", err)
	}
	return t.MoveTo(center)
}

// DragFrom presses at start, moves by delta and releases, one frame per
// step.
func (t *Tester) DragFrom(start, delta geometry.Point) error {
	if err := t.MoveTo(start); err != nil {
		return err
	}
	if err := t.Press(start, event.ButtonLeft); err != nil {
		return err
	}
	end := start.Add(delta)
	if err := t.MoveTo(end); err != nil {
		return err
	}
	return t.Release(end, event.ButtonLeft)
}

// Scroll sends a wheel event at pos and runs a frame.
func (t *Tester) Scroll(pos, delta geometry.Point) error {
	ev := t.pointerEvent(event.MouseScroll, pos, event.ButtonNone)
	ev.Scroll = delta
	t.Send(ev)
	_, err := t.Pump()
	return err
}

// Key sends a key press and runs a frame.
func (t *Tester) Key(code event.KeyCode, r rune, mods event.Modifiers) error {
	t.Send(event.Event{Type: event.Key, Timestamp: t.clock.Now(), Code: code, Rune: r, Modifiers: mods})
	_, err := t.Pump()
	return err
}

// TypeText sends one rune key event per character in a single frame.
func (t *Tester) TypeText(text string) error {
	for _, r := range text {
		t.Send(event.Event{Type: event.Key, Timestamp: t.clock.Now(), Code: event.KeyRune, Rune: r})
	}
	_, err := t.Pump()
	return err
}

// SendCustom delivers an application event and runs a frame.
func (t *Tester) SendCustom(name string, payload any) error {
	t.Send(event.Event{Type: event.Custom, Timestamp: t.clock.Now(), Name: name, Payload: payload})
	_, err := t.Pump()
	return err
}

// Resize changes the window size and runs a frame.
func (t *Tester) Resize(size geometry.Size) error {
	t.Send(event.Event{Type: event.Resize, Timestamp: t.clock.Now(), Size: size})
	_, err := t.Pump()
	return err
}

func (t *Tester) centerOf(finder Finder) (geometry.Point, error) {
	result := t.Find(finder)
	if !result.Exists() {
		return geometry.Point{}, fmt.Errorf("finder matched no widgets: %s", finder.Description())
	}
	b, err := t.store.ScreenBounds(result.First())
	if err != nil {
		return geometry.Point{}, err
	}
	return geometry.Point{X: b.Left() + b.Size.Width/2, Y: b.Top() + b.Size.Height/2}, nil
}
