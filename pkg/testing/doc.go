// Package testing drives a widget store through real frames without a
// window.
//
// # Quick Start
//
// Create a tester, add widgets, and pump frames:
//
//	func TestToggle(t *testing.T) {
//	    tester := panetest.NewTesterWithT(t)
//	    toggle := widgets.NewToggle(false, nil)
//	    id := tester.MustAdd(toggle, widget.NoID, geometry.XYWH(10, 10, 40, 20))
//
//	    tester.Tap(panetest.ByID(id))
//
//	    if !toggle.On() {
//	        t.Error("expected toggle to be on")
//	    }
//	}
//
// Every gesture helper queues platform events and runs exactly one frame,
// so hover, press and click synthesis go through the real dispatcher.
// Draw commands of the last frame are available from Commands.
//
// # Snapshot Testing
//
// Capture and compare the widget tree and the last frame's draw commands:
//
//	tester.CaptureSnapshot().MatchesFile(t, "testdata/toggle.snapshot.json")
//
// Update snapshots with:
//
//	PANE_UPDATE_SNAPSHOTS=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import panetest "github.com/go-drift/pane/pkg/testing"
package testing
