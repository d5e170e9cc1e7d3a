package render

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

const svgCSS = `
    .edge { stroke: #8a8a8a; stroke-width: 1.5; fill: none; }
    .node rect { fill: #ffffff; stroke: #333333; stroke-width: 1.5; }
    .node.selected rect { stroke: #00af87; stroke-width: 3; }
    .node text { font-family: ui-monospace, monospace; fill: #222222; }
    .node .version { fill: #777777; }
    .node .glyph { font-weight: bold; }`

const (
	svgFontRatio = 0.22
	svgFontMin   = 6.0
	svgFontMax   = 20.0
)

// SVGSurface writes a standalone SVG document. Node groups carry a data-id
// attribute so that a browser client can map clicks without the layout.
type SVGSurface struct {
	buf bytes.Buffer
	out []byte
}

// NewSVGSurface returns an empty SVG surface.
func NewSVGSurface() *SVGSurface { return &SVGSurface{} }

func (s *SVGSurface) Name() string { return "svg" }

func (s *SVGSurface) Begin(w, h float64) {
	s.buf.Reset()
	s.out = nil
	fmt.Fprintf(&s.buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		w, h, w, h)
	fmt.Fprintf(&s.buf, "  <style>%s\n  </style>\n", svgCSS)
}

func (s *SVGSurface) Line(l Line) {
	fmt.Fprintf(&s.buf, `  <line class="edge" data-from="%s" data-to="%s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f"/>`+"\n",
		escape(l.From), escape(l.To), l.X1, l.Y1, l.X2, l.Y2)
}

func (s *SVGSurface) Box(b Box) {
	class := "node"
	if b.Selected {
		class += " selected"
	}
	fs := max(svgFontMin, min(svgFontMax, b.H*svgFontRatio))
	cx := b.X + b.W/2

	fmt.Fprintf(&s.buf, `  <g class="%s" data-id="%s">`+"\n", class, escape(b.ID))
	fmt.Fprintf(&s.buf, `    <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" rx="%.2f"/>`+"\n",
		b.X, b.Y, b.W, b.H, 6*b.Zoom)
	fmt.Fprintf(&s.buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
		cx, b.Y+b.H*0.42, fs, escape(b.ID))
	if b.Version != "" {
		fmt.Fprintf(&s.buf, `    <text class="version" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="middle">%s</text>`+"\n",
			cx, b.Y+b.H*0.75, fs*0.8, escape(b.Version))
	}
	if b.Glyph != GlyphNone {
		fmt.Fprintf(&s.buf, `    <text class="glyph" x="%.2f" y="%.2f" font-size="%.1f" text-anchor="end">%s</text>`+"\n",
			b.X+b.W-fs*0.5, b.Y+fs*1.2, fs, b.Glyph)
	}
	s.buf.WriteString("  </g>\n")
}

func (s *SVGSurface) End() error {
	s.buf.WriteString("</svg>\n")
	s.out = bytes.Clone(s.buf.Bytes())
	return nil
}

// Bytes returns the document written by the last completed draw.
func (s *SVGSurface) Bytes() []byte { return s.out }

func escape(v string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(v))
	return buf.String()
}

var _ Surface = (*SVGSurface)(nil)
