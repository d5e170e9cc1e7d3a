package render

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Raster and vector formats produced by RenderGraphviz.
const (
	FormatPNG = "png"
	FormatJPG = "jpg"
	FormatSVG = "svg"
)

// DOTSurface writes Graphviz DOT with every node pinned at its screen
// position. Graphviz y grows upward, so y is flipped against the frame height.
type DOTSurface struct {
	height float64
	nodes  []string
	edges  []string
	out    []byte
}

// NewDOTSurface returns an empty DOT surface.
func NewDOTSurface() *DOTSurface { return &DOTSurface{} }

func (d *DOTSurface) Name() string { return "dot" }

func (d *DOTSurface) Begin(w, h float64) {
	d.height = h
	d.nodes = d.nodes[:0]
	d.edges = d.edges[:0]
	d.out = nil
}

func (d *DOTSurface) Line(l Line) {
	d.edges = append(d.edges, fmt.Sprintf("  %q -> %q;", l.From, l.To))
}

func (d *DOTSurface) Box(b Box) {
	attrs := []string{
		fmt.Sprintf("label=%q", dotLabel(b)),
		fmt.Sprintf("pos=\"%.2f,%.2f!\"", b.X+b.W/2, d.height-(b.Y+b.H/2)),
		fmt.Sprintf("width=%.3f", b.W/72),
		fmt.Sprintf("height=%.3f", b.H/72),
		fmt.Sprintf("fontsize=%.1f", max(6, 14*b.Zoom)),
	}
	if b.Selected {
		attrs = append(attrs, "color=\"#00af87\"", "penwidth=3")
	}
	d.nodes = append(d.nodes, fmt.Sprintf("  %q [%s];", b.ID, strings.Join(attrs, ", ")))
}

func (d *DOTSurface) End() error {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fixedsize=true];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#8a8a8a\"];\n")
	buf.WriteString("\n")
	for _, n := range d.nodes {
		buf.WriteString(n + "\n")
	}
	buf.WriteString("\n")
	for _, e := range d.edges {
		buf.WriteString(e + "\n")
	}
	buf.WriteString("}\n")
	d.out = buf.Bytes()
	return nil
}

// Bytes returns the DOT source of the last completed draw.
func (d *DOTSurface) Bytes() []byte { return d.out }

func dotLabel(b Box) string {
	label := b.ID
	if b.Version != "" {
		label += "\n" + b.Version
	}
	if b.Glyph != GlyphNone {
		label += " " + string(b.Glyph)
	}
	return label
}

// RenderGraphviz lays out DOT produced by a DOTSurface with neato, which
// keeps the pinned positions, and renders it in the given format.
func RenderGraphviz(ctx context.Context, dot []byte, format string) ([]byte, error) {
	var gvFormat graphviz.Format
	switch format {
	case FormatPNG:
		gvFormat = graphviz.PNG
	case FormatJPG:
		gvFormat = graphviz.JPG
	case FormatSVG:
		gvFormat = graphviz.SVG
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "graphviz format %q", format)
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes(dot)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

var _ Surface = (*DOTSurface)(nil)
