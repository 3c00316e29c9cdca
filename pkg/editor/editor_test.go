package editor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphedit/pkg/connect"
	"github.com/matzehuels/graphedit/pkg/deletion"
	"github.com/matzehuels/graphedit/pkg/errors"
	"github.com/matzehuels/graphedit/pkg/graph"
	"github.com/matzehuels/graphedit/pkg/kv"
	"github.com/matzehuels/graphedit/pkg/persist"
	"github.com/matzehuels/graphedit/pkg/store"
)

func newEditor(t *testing.T, s kv.Store) *Editor {
	t.Helper()
	if s == nil {
		s = kv.NewMemory()
	}
	ed := New(s, WithLogger(log.NewWithOptions(io.Discard, log.Options{})))
	if err := ed.Open(context.Background()); err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { ed.Close() })
	return ed
}

func nodeIDs(g graph.Graph) []string {
	var out []string
	for _, n := range g.Nodes {
		out = append(out, n.ID)
	}
	sort.Strings(out)
	return out
}

func edgeIDs(g graph.Graph) []string {
	var out []string
	for _, e := range g.Edges {
		out = append(out, e.ID)
	}
	sort.Strings(out)
	return out
}

func TestConcreteScenario(t *testing.T) {
	ctx := context.Background()
	ed := newEditor(t, nil)

	n1, err := ed.AddNode(graph.Position{X: 0, Y: 0})
	if err != nil {
		t.Fatal(err)
	}
	n2, _ := ed.AddNode(graph.Position{X: 100, Y: 0})
	if n1.ID != "1" || n2.ID != "2" {
		t.Fatalf("node ids = %q, %q; want 1, 2", n1.ID, n2.ID)
	}
	if n1.Kind != graph.KindCircular || n1.Label() != graph.DefaultNodeLabel {
		t.Errorf("node = %+v", n1)
	}

	e, err := ed.Connect(connect.Connection{Source: "1", Target: "2"})
	if err != nil {
		t.Fatal(err)
	}
	if e.ID != "edge-1" || e.Source != "1" || e.Target != "2" {
		t.Errorf("edge = %+v", e)
	}

	if err := ed.ApplyNodeChanges([]store.NodeChange{store.SelectNode("1", true)}); err != nil {
		t.Fatal(err)
	}
	if _, handled, err := ed.HandleKey(ctx, deletion.DeleteKey); !handled || err != nil {
		t.Fatalf("HandleKey = %v, %v", handled, err)
	}

	g, _ := ed.Snapshot()
	if got := nodeIDs(g); !slices.Equal(got, []string{"2"}) {
		t.Errorf("nodes = %v, want [2]", got)
	}
	if g.EdgeCount() != 0 {
		t.Errorf("edges = %v, want none", edgeIDs(g))
	}
}

func TestIDsNeverReused(t *testing.T) {
	ed := newEditor(t, nil)
	ed.AddNode(graph.Position{})
	ed.AddNode(graph.Position{})
	ed.ApplyNodeChanges([]store.NodeChange{store.RemoveNode("2")})

	n, _ := ed.AddNode(graph.Position{})
	if n.ID != "3" {
		t.Errorf("id after delete = %q, want 3", n.ID)
	}
}

func TestIDMonotonicityAfterLoad(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.Set(ctx, persist.DefaultKey, []byte(`{
		"nodes": [{"id": "4"}, {"id": "17"}, {"id": "x"}],
		"edges": [{"id": "edge-9", "source": "4", "target": "17"}, {"id": "weird", "source": "4", "target": "x"}]
	}`))
	ed := newEditor(t, mem)

	g, _ := ed.Snapshot()
	if g.NodeCount() != 3 {
		t.Fatalf("loaded %d nodes, want 3", g.NodeCount())
	}

	seen := map[string]bool{}
	for i := range 5 {
		n, err := ed.AddNode(graph.Position{})
		if err != nil {
			t.Fatal(err)
		}
		if want := fmt.Sprint(18 + i); n.ID != want {
			t.Errorf("node %d id = %q, want %q", i, n.ID, want)
		}
		if seen[n.ID] {
			t.Errorf("duplicate id %q", n.ID)
		}
		seen[n.ID] = true
	}
	e, _ := ed.Connect(connect.Connection{Source: "4", Target: "4"})
	if e.ID != "edge-10" {
		t.Errorf("edge id = %q, want edge-10", e.ID)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	ed := newEditor(t, nil)
	ed.AddNode(graph.Position{X: 1, Y: 2})
	ed.AddNode(graph.Position{X: 3, Y: 4})
	ed.AddNode(graph.Position{X: 5, Y: 6})
	ed.Connect(connect.Connection{Source: "1", Target: "2", SourceHandle: graph.HandleRightSource, TargetHandle: graph.HandleLeft})
	ed.Connect(connect.Connection{Source: "3", Target: "3"})
	before, _ := ed.Snapshot()

	var buf bytes.Buffer
	if err := ed.Export(ctx, &buf); err != nil {
		t.Fatal(err)
	}

	other := newEditor(t, nil)
	if _, err := other.Import(ctx, &buf); err != nil {
		t.Fatal(err)
	}
	after, _ := other.Snapshot()

	if !slices.Equal(nodeIDs(before), nodeIDs(after)) || !slices.Equal(edgeIDs(before), edgeIDs(after)) {
		t.Errorf("round trip changed ids: %v/%v -> %v/%v", nodeIDs(before), edgeIDs(before), nodeIDs(after), edgeIDs(after))
	}
	e, _ := after.Edge("edge-1")
	if e.SourceHandle != graph.HandleRightSource || e.TargetHandle != graph.HandleLeft {
		t.Errorf("handles = %q/%q", e.SourceHandle, e.TargetHandle)
	}
	n, _ := after.Node("3")
	if n.Position != (graph.Position{X: 5, Y: 6}) {
		t.Errorf("position = %+v", n.Position)
	}
}

func TestImportFailureKeepsGraph(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Truncated", `{"nodes": [{"id": "1"`},
		{"Null", `null`},
		{"Array", `[]`},
		{"Number", `42`},
		{"Empty", ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := kv.NewMemory()
			ed := newEditor(t, mem)
			ed.AddNode(graph.Position{})
			ed.AddNode(graph.Position{})
			_, rev := ed.Snapshot()

			_, err := ed.Import(ctx, strings.NewReader(tt.input))
			if !errors.Is(err, errors.ErrCodeImportParse) {
				t.Fatalf("Import = %v, want IMPORT_PARSE", err)
			}
			if errors.UserMessage(err) != persist.ImportFailedMessage {
				t.Errorf("user message = %q", errors.UserMessage(err))
			}
			g, rev2 := ed.Snapshot()
			if rev2 != rev || g.NodeCount() != 2 {
				t.Errorf("failed import modified the graph: rev %d→%d, %d nodes", rev, rev2, g.NodeCount())
			}
			saved, ok, _ := mem.Get(ctx, persist.DefaultKey)
			if !ok {
				t.Fatal("saved graph removed")
			}
			if sg, err := graph.Unmarshal(saved); err != nil || sg.NodeCount() != 2 {
				t.Errorf("saved graph = %d nodes (%v), want 2", sg.NodeCount(), err)
			}
			if n, _ := ed.AddNode(graph.Position{}); n.ID != "3" {
				t.Errorf("failed import reseeded ids: next = %q", n.ID)
			}
		})
	}
}

func TestImportKeepsUnknownStyles(t *testing.T) {
	ctx := context.Background()
	ed := newEditor(t, nil)
	doc := `{"nodes":[{"id":"1","type":"circular","position":{"x":0,"y":0},"data":{"label":"a"}},` +
		`{"id":"2","type":"circular","position":{"x":50,"y":0},"data":{"label":"b"}}],` +
		`"edges":[{"id":"edge-1","source":"1","target":"2","label":"x","type":"straight",` +
		`"labelStyle":{"fontWeight":"bold","letterSpacing":"0.1em"}}]}`

	if _, err := ed.Import(ctx, strings.NewReader(doc)); err != nil {
		t.Fatalf("Import: %v", err)
	}
	var buf bytes.Buffer
	if err := ed.Export(ctx, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, want := range []string{`"fontWeight": "bold"`, `"letterSpacing": "0.1em"`} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("export missing %s:\n%s", want, buf.String())
		}
	}
}

func TestImportReseeds(t *testing.T) {
	ctx := context.Background()
	ed := newEditor(t, nil)
	for range 5 {
		ed.AddNode(graph.Position{})
	}
	if _, err := ed.Import(ctx, strings.NewReader(`{"nodes":[{"id":"2"}],"edges":[{"id":"edge-3","source":"2","target":"2"}]}`)); err != nil {
		t.Fatal(err)
	}
	n, _ := ed.AddNode(graph.Position{})
	e, _ := ed.Connect(connect.Connection{Source: "2", Target: n.ID})
	if n.ID != "3" || e.ID != "edge-4" {
		t.Errorf("after import: node %q, edge %q; want 3, edge-4", n.ID, e.ID)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	ed := newEditor(t, mem)
	ed.AddNode(graph.Position{})
	ed.AddNode(graph.Position{})
	ed.Connect(connect.Connection{Source: "1", Target: "2"})

	if _, ok, _ := mem.Get(ctx, persist.DefaultKey); !ok {
		t.Fatal("graph not auto-saved")
	}
	if err := ed.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	g, _ := ed.Snapshot()
	if !g.IsEmpty() {
		t.Errorf("graph not empty: %+v", g)
	}
	if _, ok, _ := mem.Get(ctx, persist.DefaultKey); ok {
		t.Error("persisted blob not removed")
	}
	if err := ed.Clear(ctx); err != nil {
		t.Errorf("clearing an empty graph = %v", err)
	}
	n, _ := ed.AddNode(graph.Position{})
	if n.ID != "3" {
		t.Errorf("id after clear = %q, want 3", n.ID)
	}
	n2, _ := ed.AddNode(graph.Position{})
	if e, _ := ed.Connect(connect.Connection{Source: n.ID, Target: n2.ID}); e.ID != "edge-2" {
		t.Errorf("edge id after clear = %q, want edge-2", e.ID)
	}
}

func TestReopenRestoresGraph(t *testing.T) {
	mem := kv.NewMemory()
	ed := newEditor(t, mem)
	ed.AddNode(graph.Position{X: 10})
	ed.AddNode(graph.Position{X: 20})
	ed.Connect(connect.Connection{Source: "1", Target: "2"})
	ed.Close()

	again := newEditor(t, mem)
	g, _ := again.Snapshot()
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Fatalf("reopened graph = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}
	if n, _ := again.AddNode(graph.Position{}); n.ID != "3" {
		t.Errorf("next id = %q, want 3", n.ID)
	}
}

func TestCorruptStorageStartsEmpty(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	mem.Set(ctx, persist.DefaultKey, []byte("{corrupt"))
	ed := newEditor(t, mem)

	if !ed.Loaded() {
		t.Error("load gate closed after parse failure")
	}
	if g, _ := ed.Snapshot(); !g.IsEmpty() {
		t.Error("graph should be empty")
	}
	ed.AddNode(graph.Position{})
	data, _, _ := mem.Get(ctx, persist.DefaultKey)
	if g, err := graph.Unmarshal(data); err != nil || g.NodeCount() != 1 {
		t.Errorf("auto-save after corrupt load = %s", data)
	}
}

func TestEditLifecycle(t *testing.T) {
	ed := newEditor(t, nil)
	n, _ := ed.AddNode(graph.Position{})

	seed, err := ed.BeginEdit(n.ID)
	if err != nil || seed != graph.DefaultNodeLabel {
		t.Fatalf("BeginEdit = %q, %v", seed, err)
	}
	ed.EditInput(n.ID, "draft")
	if st := ed.ActiveEdit(); !st.Editing || st.Buffer != "draft" || st.NodeID != n.ID {
		t.Errorf("ActiveEdit = %+v", st)
	}
	if ed.DisplayLabel(n.ID) != "draft" {
		t.Errorf("display while editing = %q", ed.DisplayLabel(n.ID))
	}
	if err := ed.CancelEdit(n.ID); err != nil {
		t.Fatal(err)
	}
	g, _ := ed.Snapshot()
	if got, _ := g.Node(n.ID); got.Label() != graph.DefaultNodeLabel {
		t.Errorf("escape changed label to %q", got.Label())
	}

	ed.BeginEdit(n.ID)
	ed.EditInput(n.ID, "final")
	if err := ed.CommitEdit(n.ID); err != nil {
		t.Fatal(err)
	}
	g, _ = ed.Snapshot()
	if got, _ := g.Node(n.ID); got.Label() != "final" {
		t.Errorf("enter committed %q, want final", got.Label())
	}

	ed.BeginEdit(n.ID)
	ed.EditInput(n.ID, "")
	ed.BlurEdit(n.ID)
	if ed.DisplayLabel(n.ID) != graph.PlaceholderLabel {
		t.Errorf("empty label display = %q", ed.DisplayLabel(n.ID))
	}
}

func TestEdgePrompt(t *testing.T) {
	ed := newEditor(t, nil)
	ed.AddNode(graph.Position{})
	e, _ := ed.Connect(connect.Connection{Source: "1", Target: "1"})

	seed, err := ed.OpenEdgePrompt(e.ID)
	if err != nil || seed != graph.DefaultEdgeLabel {
		t.Fatalf("OpenEdgePrompt = %q, %v", seed, err)
	}
	if id, ok := ed.PendingEdgePrompt(); !ok || id != e.ID {
		t.Errorf("pending = %q, %v", id, ok)
	}
	if err := ed.CommitEdgePromptFor("edge-9", "wrong"); !errors.Is(err, errors.ErrCodeNotEditing) {
		t.Errorf("commit for another edge = %v, want NOT_EDITING", err)
	}
	if id, ok := ed.PendingEdgePrompt(); !ok || id != e.ID {
		t.Errorf("mismatched commit closed the prompt: %q, %v", id, ok)
	}
	if err := ed.CommitEdgePromptFor(e.ID, "loops"); err != nil {
		t.Fatal(err)
	}
	g, _ := ed.Snapshot()
	if got, _ := g.Edge(e.ID); got.Label != "loops" {
		t.Errorf("label = %q", got.Label)
	}

	ed.OpenEdgePrompt(e.ID)
	if err := ed.CancelEdgePromptFor(e.ID); err != nil {
		t.Fatal(err)
	}
	g, _ = ed.Snapshot()
	if got, _ := g.Edge(e.ID); got.Label != "loops" {
		t.Errorf("cancel changed label to %q", got.Label)
	}
}

func TestRemovalEndsEdits(t *testing.T) {
	tests := []struct {
		name   string
		remove func(ed *Editor) error
	}{
		{"DeleteKey", func(ed *Editor) error {
			if err := ed.ApplyNodeChanges([]store.NodeChange{store.SelectNode("1", true)}); err != nil {
				return err
			}
			_, _, err := ed.HandleKey(context.Background(), deletion.DeleteKey)
			return err
		}},
		{"CanvasRemove", func(ed *Editor) error {
			return ed.ApplyNodeChanges([]store.NodeChange{store.RemoveNode("1")})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ed := newEditor(t, nil)
			ed.AddNode(graph.Position{})
			ed.AddNode(graph.Position{})
			e, _ := ed.Connect(connect.Connection{Source: "1", Target: "2"})
			if _, err := ed.BeginEdit("1"); err != nil {
				t.Fatal(err)
			}
			if _, err := ed.OpenEdgePrompt(e.ID); err != nil {
				t.Fatal(err)
			}

			if err := tt.remove(ed); err != nil {
				t.Fatalf("remove: %v", err)
			}
			if st := ed.ActiveEdit(); st.Editing {
				t.Errorf("edit still active for removed node: %+v", st)
			}
			if id, ok := ed.PendingEdgePrompt(); ok {
				t.Errorf("prompt still open for removed edge %s", id)
			}
			if _, err := ed.BeginEdit("2"); err != nil {
				t.Errorf("BeginEdit(2) = %v", err)
			}
		})
	}
}

func TestRemovalKeepsUnrelatedEdit(t *testing.T) {
	ed := newEditor(t, nil)
	ed.AddNode(graph.Position{})
	ed.AddNode(graph.Position{})
	ed.BeginEdit("1")
	ed.EditInput("1", "kept")

	if err := ed.ApplyNodeChanges([]store.NodeChange{store.RemoveNode("2")}); err != nil {
		t.Fatal(err)
	}
	if st := ed.ActiveEdit(); !st.Editing || st.NodeID != "1" || st.Buffer != "kept" {
		t.Errorf("ActiveEdit() = %+v, want node 1 still editing", st)
	}
}

func TestCanvasRemovalCascades(t *testing.T) {
	ed := newEditor(t, nil)
	for range 3 {
		ed.AddNode(graph.Position{})
	}
	ed.Connect(connect.Connection{Source: "1", Target: "2"})
	ed.Connect(connect.Connection{Source: "2", Target: "3"})
	ed.Connect(connect.Connection{Source: "1", Target: "3"})

	if err := ed.ApplyNodeChanges([]store.NodeChange{store.RemoveNode("2")}); err != nil {
		t.Fatal(err)
	}
	g, _ := ed.Snapshot()
	if got := edgeIDs(g); !slices.Equal(got, []string{"edge-3"}) {
		t.Errorf("edges = %v, want [edge-3]", got)
	}
}

func TestOtherKeysIgnored(t *testing.T) {
	ed := newEditor(t, nil)
	ed.AddNode(graph.Position{})
	ed.ApplyNodeChanges([]store.NodeChange{store.SelectNode("1", true)})
	if _, handled, _ := ed.HandleKey(context.Background(), "Backspace"); handled {
		t.Error("Backspace handled")
	}
	if g, _ := ed.Snapshot(); g.NodeCount() != 1 {
		t.Error("node removed by non-delete key")
	}
}
