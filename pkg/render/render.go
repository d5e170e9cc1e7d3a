package render

import (
	"time"

	"github.com/matzehuels/deptree/pkg/layout"
	"github.com/matzehuels/deptree/pkg/observability"
	"github.com/matzehuels/deptree/pkg/viewport"
)

// Glyph marks a node's expansion state.
type Glyph string

const (
	GlyphNone      Glyph = ""
	GlyphCollapsed Glyph = "+"
	GlyphExpanded  Glyph = "−"
)

// GlyphFor returns the glyph for a positioned node: none for leaves,
// minus when expanded, plus otherwise.
func GlyphFor(n layout.PositionedNode) Glyph {
	switch {
	case !n.Expandable:
		return GlyphNone
	case n.Expanded:
		return GlyphExpanded
	default:
		return GlyphCollapsed
	}
}

// Frame describes the output area and presentation state of one draw.
type Frame struct {
	Width    float64 `json:"width"`              // Screen width
	Height   float64 `json:"height"`             // Screen height
	Selected string  `json:"selected,omitempty"` // Highlighted node ID, if any
}

// Line is an edge in screen coordinates.
type Line struct {
	From, To       string
	X1, Y1, X2, Y2 float64
}

// Box is a node in screen coordinates. X, Y is the top-left corner.
type Box struct {
	ID       string
	Version  string
	X, Y     float64
	W, H     float64
	Zoom     float64
	Depth    int
	Glyph    Glyph
	Selected bool
}

// Label returns "name@version", or the name alone when there is no version.
func (b Box) Label() string {
	if b.Version == "" {
		return b.ID
	}
	return b.ID + "@" + b.Version
}

// Surface receives drawing primitives. Begin is called once before any
// primitive, End once after the last one.
type Surface interface {
	Begin(width, height float64)
	Line(Line)
	Box(Box)
	End() error
}

// Named is implemented by surfaces that report a name to the render hooks.
type Named interface {
	Name() string
}

// Draw renders res through vp onto s: edges first, then nodes.
func Draw(s Surface, res layout.Result, vp viewport.State, f Frame) error {
	start := time.Now()
	s.Begin(f.Width, f.Height)

	for _, e := range res.Edges {
		s.Line(EdgeLine(res.Nodes[e.FromIndex], res.Nodes[e.ToIndex], vp))
	}
	for _, n := range res.Nodes {
		b := NodeBox(n, vp)
		b.Selected = f.Selected != "" && n.ID == f.Selected
		s.Box(b)
	}

	err := s.End()
	observability.Engine().OnRender(surfaceName(s), len(res.Nodes), len(res.Edges), time.Since(start))
	return err
}

// EdgeLine maps the parent-bottom to child-top segment into screen space.
func EdgeLine(parent, child layout.PositionedNode, vp viewport.State) Line {
	px, py := parent.Bottom()
	cx, cy := child.Top()
	x1, y1 := vp.ToScreen(px, py)
	x2, y2 := vp.ToScreen(cx, cy)
	return Line{From: parent.ID, To: child.ID, X1: x1, Y1: y1, X2: x2, Y2: y2}
}

// NodeBox maps a positioned node's box into screen space.
func NodeBox(n layout.PositionedNode, vp viewport.State) Box {
	x, y := vp.ToScreen(n.X-n.Width/2, n.Y-n.Height/2)
	return Box{
		ID:      n.ID,
		Version: n.Version,
		X:       x,
		Y:       y,
		W:       vp.Scale(n.Width),
		H:       vp.Scale(n.Height),
		Zoom:    vp.Zoom,
		Depth:   n.Depth,
		Glyph:   GlyphFor(n),
	}
}

func surfaceName(s Surface) string {
	if n, ok := s.(Named); ok {
		return n.Name()
	}
	return "custom"
}
