package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/go-drift/pane/pkg/geometry"
	"github.com/go-drift/pane/pkg/render"
	"github.com/go-drift/pane/pkg/store"
	"github.com/go-drift/pane/pkg/widget"
)

// UpdateSnapshotsEnv names the environment variable that rewrites golden
// files instead of comparing against them.
const UpdateSnapshotsEnv = "PANE_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures the widget forest and the last frame's draw commands.
type Snapshot struct {
	Widgets  []*WidgetNode `json:"widgets"`
	Commands []DrawOp      `json:"commands,omitempty"`
}

// WidgetNode is one widget in a snapshot. IDs are assigned per type in
// traversal order ("Toggle#0", "Toggle#1") so they survive store changes
// that shift numeric IDs.
type WidgetNode struct {
	ID       string        `json:"id"`
	Name     string        `json:"name,omitempty"`
	Bounds   [4]int        `json:"bounds"`
	Hidden   bool          `json:"hidden,omitempty"`
	Disabled bool          `json:"disabled,omitempty"`
	Children []*WidgetNode `json:"children,omitempty"`
}

// DrawOp is one recorded draw command.
type DrawOp struct {
	Op    string `json:"op"`
	Rect  [4]int `json:"rect"`
	Clip  [4]int `json:"clip"`
	Color string `json:"color,omitempty"`
	Text  string `json:"text,omitempty"`
}

// CaptureSnapshot captures the current widget forest and the draw commands
// of the last frame.
func (t *Tester) CaptureSnapshot() *Snapshot {
	snap := &Snapshot{Widgets: captureForest(t.store)}
	for _, cmd := range t.recorder.Commands() {
		op := DrawOp{Op: string(cmd.Op), Rect: bounds4(cmd.Rect), Clip: bounds4(cmd.Clip), Text: cmd.Text}
		if cmd.Op != render.OpBlit {
			op.Color = cmd.Color.String()
		}
		snap.Commands = append(snap.Commands, op)
	}
	return snap
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When PANE_UPDATE_SNAPSHOTS=1
// is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateSnapshotsEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateSnapshotsEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateSnapshotsEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between other (expected) and s (actual), or ""
// when they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return lineDiff(string(b), string(a))
}

func captureForest(s *store.Store) []*WidgetNode {
	counts := make(map[string]int)
	var capture func(id widget.ID) *WidgetNode
	capture = func(id widget.ID) *WidgetNode {
		w, err := s.Get(id)
		if err != nil {
			return nil
		}
		typeName := widgetTypeName(w)
		name, _ := s.Name(id)
		node := &WidgetNode{
			ID:       fmt.Sprintf("%s#%d", typeName, counts[typeName]),
			Name:     name,
			Bounds:   bounds4(w.Bounds()),
			Hidden:   !w.Visible(),
			Disabled: !w.Enabled(),
		}
		counts[typeName]++
		children, _ := s.ChildrenOf(id)
		for _, c := range children {
			if child := capture(c); child != nil {
				node.Children = append(node.Children, child)
			}
		}
		return node
	}
	var out []*WidgetNode
	for _, r := range s.Roots() {
		if node := capture(r); node != nil {
			out = append(out, node)
		}
	}
	return out
}

func widgetTypeName(w widget.Widget) string {
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func bounds4(b geometry.Bounds) [4]int {
	return [4]int{b.Left(), b.Top(), b.Size.Width, b.Size.Height}
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lineDiff returns a unified diff of the two JSON documents.
func lineDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  2,
	})
	if err != nil {
		return fmt.Sprintf("diff failed: %v", err)
	}
	return diff
}
