// Package widgets provides small concrete widgets built on widget.Base.
//
// Widgets here are pointers stored in a store.Store. Their visual fields
// are explicit: a zero Color is transparent and draws nothing. Changing a
// visual field through a setter marks the widget for redraw; writing a
// field directly requires calling MarkNeedsRedraw yourself.
//
//	s := store.New()
//	root, _ := s.Add(widgets.NewBox(geometry.XYWH(0, 0, 320, 200), render.ColorWhite), widget.NoID)
//	label := widgets.NewLabel("Volume", render.ColorBlack)
//	s.Add(label, root)
//	toggle := widgets.NewToggle(false, func(on bool) { ... })
//	s.Add(toggle, root)
//
// Slider picks an integer by pressing, dragging or scrolling over it.
//
// Sizes come from the layout engine or from explicit SetBounds calls.
// Label.PreferredSize and Toggle.PreferredSize help pick fixed layout
// hints.
package widgets
