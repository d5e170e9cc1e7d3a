package layout

import (
	"encoding/json"
	"math"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/observability"
	"github.com/matzehuels/deptree/pkg/tree"
)

// scenario builds A -> [B, C], B -> [D].
func scenario() *tree.Node {
	return &tree.Node{ID: "A", Version: "1.0", Children: []*tree.Node{
		{ID: "B", Version: "2.0", Children: []*tree.Node{{ID: "D", Version: "4.0"}}},
		{ID: "C", Version: "3.0"},
	}}
}

func TestComputeScenario(t *testing.T) {
	opts := DefaultOptions()
	tests := []struct {
		name      string
		expanded  tree.ExpandedSet
		wantIDs   string
		wantEdges string
	}{
		{"Empty", tree.NewExpandedSet(), "A", ""},
		{"RootOnly", tree.NewExpandedSet("A"), "A,B,C", "A>B,A>C"},
		{"RootAndB", tree.NewExpandedSet("A", "B"), "A,B,D,C", "A>B,B>D,A>C"},
		{"BWithoutRoot", tree.NewExpandedSet("B"), "A", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Compute(scenario(), tt.expanded, opts)
			if got := strings.Join(res.IDs(), ","); got != tt.wantIDs {
				t.Errorf("nodes = %s, want %s", got, tt.wantIDs)
			}
			var edges []string
			for _, e := range res.Edges {
				edges = append(edges, e.From+">"+e.To)
				if res.Nodes[e.FromIndex].ID != e.From || res.Nodes[e.ToIndex].ID != e.To {
					t.Errorf("edge %s>%s indices point at %s>%s", e.From, e.To, res.Nodes[e.FromIndex].ID, res.Nodes[e.ToIndex].ID)
				}
			}
			if got := strings.Join(edges, ","); got != tt.wantEdges {
				t.Errorf("edges = %s, want %s", got, tt.wantEdges)
			}
		})
	}
}

func TestComputeGeometry(t *testing.T) {
	opts := DefaultOptions()
	res := Compute(scenario(), tree.NewExpandedSet("A", "B"), opts)

	a, _ := res.Find("A")
	b, _ := res.Find("B")
	c, _ := res.Find("C")
	d, _ := res.Find("D")

	if a.X != opts.CenterX || a.Y != opts.TopY {
		t.Errorf("root at (%g,%g), want anchor (%g,%g)", a.X, a.Y, opts.CenterX, opts.TopY)
	}
	step := opts.NodeWidth + opts.SiblingSpacing
	if b.X != a.X-step/2 || c.X != a.X+step/2 {
		t.Errorf("B.x=%g C.x=%g, want %g and %g", b.X, c.X, a.X-step/2, a.X+step/2)
	}
	if b.Y != a.Y+opts.LevelSpacing || c.Y != b.Y {
		t.Errorf("children y = %g/%g, want %g", b.Y, c.Y, a.Y+opts.LevelSpacing)
	}
	if d.X != b.X {
		t.Errorf("D.x = %g, want B.x = %g", d.X, b.X)
	}
	if d.Depth != 2 || !b.Expanded || c.Expandable || !a.Expandable {
		t.Errorf("flags: D.depth=%d B.expanded=%v C.expandable=%v A.expandable=%v", d.Depth, b.Expanded, c.Expandable, a.Expandable)
	}
}

func TestComputeSymmetry(t *testing.T) {
	root := &tree.Node{ID: "root"}
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		root.Children = append(root.Children, &tree.Node{ID: id})
	}
	opts := DefaultOptions()
	res := Compute(root, tree.NewExpandedSet("root"), opts)

	xs := make([]float64, 0, 5)
	for _, n := range res.Nodes[1:] {
		xs = append(xs, n.X-opts.CenterX)
	}
	for i := range xs {
		if math.Abs(xs[i]+xs[len(xs)-1-i]) > 1e-9 {
			t.Errorf("offsets %v not symmetric", xs)
		}
	}
	span := xs[len(xs)-1] - xs[0]
	if want := 4 * (opts.NodeWidth + opts.SiblingSpacing); math.Abs(span-want) > 1e-9 {
		t.Errorf("span = %g, want %g", span, want)
	}
}

func TestComputeCollapseDropsDescendants(t *testing.T) {
	opts := DefaultOptions()
	open := Compute(scenario(), tree.NewExpandedSet("A", "B"), opts)
	if _, ok := open.Find("D"); !ok {
		t.Fatal("D should be visible")
	}

	collapsed := Compute(scenario(), tree.NewExpandedSet("B"), opts)
	if len(collapsed.Nodes) != 1 {
		t.Errorf("collapsed root shows %v", collapsed.IDs())
	}
}

func TestComputeCycleGuard(t *testing.T) {
	a := &tree.Node{ID: "a"}
	b := &tree.Node{ID: "b"}
	c := &tree.Node{ID: "c"}
	a.Children = []*tree.Node{b, c}
	b.Children = []*tree.Node{a}

	res := Compute(a, tree.NewExpandedSet("a", "b"), DefaultOptions())

	if got := strings.Join(res.IDs(), ","); got != "a,b,c" {
		t.Errorf("nodes = %s, want a,b,c", got)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", res.Warnings)
	}
	w := res.Warnings[0]
	if w.NodeID != "a" || !slices.Equal(w.Path, []string{"a", "b"}) {
		t.Errorf("warning = %+v", w)
	}
	if !errors.Is(w, errors.ErrCodeCycle) {
		t.Error("warning should carry CYCLE_DETECTED")
	}
	if w.Error() != "cycle: a -> b -> a" {
		t.Errorf("Error() = %q", w.Error())
	}
}

func TestComputeSelfLoop(t *testing.T) {
	a := &tree.Node{ID: "a"}
	a.Children = []*tree.Node{a}
	res := Compute(a, tree.NewExpandedSet("a"), DefaultOptions())
	if len(res.Nodes) != 1 || len(res.Warnings) != 1 {
		t.Errorf("nodes=%v warnings=%v", res.IDs(), res.Warnings)
	}
}

func TestComputeSharedSubtree(t *testing.T) {
	shared := &tree.Node{ID: "shared"}
	root := &tree.Node{ID: "root", Children: []*tree.Node{
		{ID: "x", Children: []*tree.Node{shared}},
		{ID: "y", Children: []*tree.Node{shared}},
	}}
	res := Compute(root, tree.NewExpandedSet("root", "x", "y"), DefaultOptions())
	if len(res.Warnings) != 0 {
		t.Errorf("diamond is not a cycle: %v", res.Warnings)
	}
	if got := strings.Join(res.IDs(), ","); got != "root,x,shared,y,shared" {
		t.Errorf("nodes = %s", got)
	}
}

func TestComputeNilRoot(t *testing.T) {
	res := Compute(nil, tree.NewExpandedSet(), DefaultOptions())
	if len(res.Nodes) != 0 || len(res.Edges) != 0 {
		t.Errorf("nil root produced %v", res.IDs())
	}
	if (res.Bounds() != Bounds{}) {
		t.Errorf("empty bounds = %+v", res.Bounds())
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	e := tree.NewExpandedSet("A", "B")
	first, _ := json.Marshal(Compute(scenario(), e, DefaultOptions()))
	second, _ := json.Marshal(Compute(scenario(), e, DefaultOptions()))
	if string(first) != string(second) {
		t.Errorf("layout not deterministic:\n%s\n%s", first, second)
	}
}

func TestBounds(t *testing.T) {
	opts := DefaultOptions()
	res := Compute(scenario(), tree.NewExpandedSet("A"), opts)
	b := res.Bounds()
	step := opts.NodeWidth + opts.SiblingSpacing
	if want := step + opts.NodeWidth; math.Abs(b.Width()-want) > 1e-9 {
		t.Errorf("width = %g, want %g", b.Width(), want)
	}
	if want := opts.LevelSpacing + opts.NodeHeight; math.Abs(b.Height()-want) > 1e-9 {
		t.Errorf("height = %g, want %g", b.Height(), want)
	}
}

func TestPositionedNodeContains(t *testing.T) {
	n := PositionedNode{X: 10, Y: 10, Width: 20, Height: 10}
	tests := []struct {
		x, y float64
		want bool
	}{
		{10, 10, true},
		{0, 5, true},
		{20, 15, true},
		{-0.1, 10, false},
		{10, 15.1, false},
	}
	for _, tt := range tests {
		if got := n.Contains(tt.x, tt.y); got != tt.want {
			t.Errorf("Contains(%g,%g) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"zero width", func(o *Options) { o.NodeWidth = 0 }, true},
		{"negative spacing", func(o *Options) { o.SiblingSpacing = -1 }, true},
		{"zero level", func(o *Options) { o.LevelSpacing = 0 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultOptions()
			tt.mutate(&o)
			err := o.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %s", errors.GetCode(err))
			}
		})
	}
}

type countingHooks struct {
	observability.NoopEngineHooks
	layouts, hits, misses int
}

func (h *countingHooks) OnLayout(int, int, int, time.Duration) { h.layouts++ }

func (h *countingHooks) OnMemo(hit bool) {
	if hit {
		h.hits++
	} else {
		h.misses++
	}
}

func TestMemo(t *testing.T) {
	hooks := &countingHooks{}
	observability.SetEngineHooks(hooks)
	defer observability.Reset()

	tr, err := tree.New(scenario())
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewMemo(0)
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions()

	first := m.Layout(tr, tree.NewExpandedSet("A"), opts)
	again := m.Layout(tr, tree.NewExpandedSet("A"), opts)
	if len(first.Nodes) != 3 || len(again.Nodes) != 3 {
		t.Fatalf("unexpected layouts %v %v", first.IDs(), again.IDs())
	}
	m.Layout(tr, tree.NewExpandedSet("A", "B"), opts)

	other, _ := tree.New(scenario())
	m.Layout(other, tree.NewExpandedSet("A"), opts)

	if hooks.hits != 1 || hooks.misses != 3 || hooks.layouts != 3 {
		t.Errorf("hits=%d misses=%d layouts=%d, want 1/3/3", hooks.hits, hooks.misses, hooks.layouts)
	}
	if m.Len() != 3 {
		t.Errorf("Len() = %d, want 3", m.Len())
	}
	m.Purge()
	if m.Len() != 0 {
		t.Errorf("Len() after Purge = %d", m.Len())
	}
}
