package layout

import (
	"fmt"
	"strings"
	"time"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/observability"
	"github.com/matzehuels/deptree/pkg/tree"
)

// Options holds the layout geometry.
type Options struct {
	NodeWidth      float64 `json:"node_width" toml:"node_width" validate:"gt=0"`
	NodeHeight     float64 `json:"node_height" toml:"node_height" validate:"gt=0"`
	SiblingSpacing float64 `json:"sibling_spacing" toml:"sibling_spacing" validate:"gte=0"`
	LevelSpacing   float64 `json:"level_spacing" toml:"level_spacing" validate:"gt=0"`
	CenterX        float64 `json:"center_x" toml:"center_x"`
	TopY           float64 `json:"top_y" toml:"top_y"`
}

// DefaultOptions returns the geometry used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		NodeWidth:      180,
		NodeHeight:     60,
		SiblingSpacing: 20,
		LevelSpacing:   100,
		CenterX:        400,
		TopY:           50,
	}
}

// Validate rejects geometry that cannot produce a readable layout.
func (o Options) Validate() error {
	if o.NodeWidth <= 0 || o.NodeHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "node size must be positive, got %gx%g", o.NodeWidth, o.NodeHeight)
	}
	if o.SiblingSpacing < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "sibling spacing must not be negative, got %g", o.SiblingSpacing)
	}
	if o.LevelSpacing <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "level spacing must be positive, got %g", o.LevelSpacing)
	}
	return nil
}

// Key identifies the options inside memo keys.
func (o Options) Key() string {
	return fmt.Sprintf("%g/%g/%g/%g/%g/%g", o.NodeWidth, o.NodeHeight, o.SiblingSpacing, o.LevelSpacing, o.CenterX, o.TopY)
}

// PositionedNode is a visible node. X and Y are the box center in object space.
type PositionedNode struct {
	ID         string  `json:"id"`
	Version    string  `json:"version,omitempty"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	Depth      int     `json:"depth"`
	Expandable bool    `json:"expandable,omitempty"`
	Expanded   bool    `json:"expanded,omitempty"`
}

// Contains reports whether the object-space point lies inside the node box.
// Box edges count as inside.
func (n PositionedNode) Contains(x, y float64) bool {
	hw, hh := n.Width/2, n.Height/2
	return x >= n.X-hw && x <= n.X+hw && y >= n.Y-hh && y <= n.Y+hh
}

// Top returns the top-center anchor of the box.
func (n PositionedNode) Top() (float64, float64) { return n.X, n.Y - n.Height/2 }

// Bottom returns the bottom-center anchor of the box.
func (n PositionedNode) Bottom() (float64, float64) { return n.X, n.Y + n.Height/2 }

// Edge connects a visible parent to a visible child. The indices point into
// [Result.Nodes], which disambiguates packages that appear more than once.
type Edge struct {
	From      string `json:"from"`
	To        string `json:"to"`
	FromIndex int    `json:"from_index"`
	ToIndex   int    `json:"to_index"`
}

// Warning reports a branch that was cut because it revisited a node on the
// active recursion path.
type Warning struct {
	NodeID string   `json:"node_id"`
	Path   []string `json:"path"`
}

// Error implements error.
func (w Warning) Error() string {
	return fmt.Sprintf("cycle: %s -> %s", strings.Join(w.Path, " -> "), w.NodeID)
}

// Unwrap exposes the CYCLE_DETECTED code to errors.Is.
func (w Warning) Unwrap() error {
	return errors.New(errors.ErrCodeCycle, "%s revisited", w.NodeID)
}

// Bounds is an axis-aligned rectangle in object space.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Result is the output of [Compute]. Results handed out by [Memo] are shared
// and must be treated as read-only.
type Result struct {
	Nodes    []PositionedNode `json:"nodes"`
	Edges    []Edge           `json:"edges"`
	Warnings []Warning        `json:"warnings,omitempty"`
}

// Find returns the first positioned node with id in traversal order.
func (r Result) Find(id string) (PositionedNode, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return PositionedNode{}, false
}

// IDs returns the ids of the positioned nodes in traversal order.
func (r Result) IDs() []string {
	ids := make([]string, len(r.Nodes))
	for i, n := range r.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Bounds returns the box enclosing every positioned node.
// An empty result has zero bounds.
func (r Result) Bounds() Bounds {
	if len(r.Nodes) == 0 {
		return Bounds{}
	}
	first := r.Nodes[0]
	b := Bounds{
		MinX: first.X - first.Width/2, MaxX: first.X + first.Width/2,
		MinY: first.Y - first.Height/2, MaxY: first.Y + first.Height/2,
	}
	for _, n := range r.Nodes[1:] {
		b.MinX = min(b.MinX, n.X-n.Width/2)
		b.MaxX = max(b.MaxX, n.X+n.Width/2)
		b.MinY = min(b.MinY, n.Y-n.Height/2)
		b.MaxY = max(b.MaxY, n.Y+n.Height/2)
	}
	return b
}

// Compute lays out root and every node whose ancestors are all in expanded.
// A nil root yields an empty result.
func Compute(root *tree.Node, expanded tree.ExpandedSet, opts Options) Result {
	start := time.Now()

	w := walker{
		opts:     opts,
		expanded: expanded,
		onPath:   make(map[string]bool),
	}
	if root != nil {
		w.place(root, -1, opts.CenterX, opts.TopY, 0)
	}

	observability.Engine().OnLayout(len(w.res.Nodes), len(w.res.Edges), len(w.res.Warnings), time.Since(start))
	return w.res
}

type walker struct {
	opts     Options
	expanded tree.ExpandedSet
	onPath   map[string]bool
	path     []string
	res      Result
}

func (w *walker) place(n *tree.Node, parent int, x, y float64, depth int) {
	idx := len(w.res.Nodes)
	open := w.expanded.Contains(n.ID) && n.HasChildren()

	w.res.Nodes = append(w.res.Nodes, PositionedNode{
		ID:         n.ID,
		Version:    n.Version,
		X:          x,
		Y:          y,
		Width:      w.opts.NodeWidth,
		Height:     w.opts.NodeHeight,
		Depth:      depth,
		Expandable: n.HasChildren(),
		Expanded:   open,
	})
	if parent >= 0 {
		w.res.Edges = append(w.res.Edges, Edge{
			From:      w.res.Nodes[parent].ID,
			To:        n.ID,
			FromIndex: parent,
			ToIndex:   idx,
		})
	}
	if !open {
		return
	}

	w.onPath[n.ID] = true
	w.path = append(w.path, n.ID)
	defer func() {
		delete(w.onPath, n.ID)
		w.path = w.path[:len(w.path)-1]
	}()

	step := w.opts.NodeWidth + w.opts.SiblingSpacing
	span := float64(len(n.Children)-1) * step
	left := x - span/2
	for i, c := range n.Children {
		if c == nil {
			continue
		}
		if w.onPath[c.ID] {
			w.res.Warnings = append(w.res.Warnings, Warning{
				NodeID: c.ID,
				Path:   append([]string(nil), w.path...),
			})
			continue
		}
		w.place(c, idx, left+float64(i)*step, y+w.opts.LevelSpacing, depth+1)
	}
}
