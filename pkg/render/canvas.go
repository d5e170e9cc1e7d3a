package render

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Default cell size in screen units. A 180x60 node box at zoom 1 spans
// 18 columns and 3 rows.
const (
	DefaultCellWidth  = 10.0
	DefaultCellHeight = 20.0
)

type cellClass uint8

const (
	classBlank cellClass = iota
	classEdge
	classNode
	classSelected
	classGlyph
)

type cell struct {
	r     rune
	class cellClass
}

// Palette styles the cell classes of a Canvas.
type Palette struct {
	Edge     lipgloss.Style
	Node     lipgloss.Style
	Selected lipgloss.Style
	Glyph    lipgloss.Style
}

// DefaultPalette matches the CLI colors.
func DefaultPalette() Palette {
	return Palette{
		Edge:     lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Node:     lipgloss.NewStyle().Foreground(lipgloss.Color("255")),
		Selected: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
		Glyph:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")),
	}
}

// Canvas rasterizes primitives onto a grid of terminal cells. Screen units
// map to cells by CellWidth and CellHeight; anything outside the grid is
// clipped.
type Canvas struct {
	CellWidth  float64
	CellHeight float64
	Palette    Palette

	cols, rows int
	cells      [][]cell
}

// NewCanvas returns a canvas with the default cell size and palette.
func NewCanvas() *Canvas {
	return &Canvas{
		CellWidth:  DefaultCellWidth,
		CellHeight: DefaultCellHeight,
		Palette:    DefaultPalette(),
	}
}

func (c *Canvas) Name() string { return "canvas" }

// Size returns the grid dimensions in cells.
func (c *Canvas) Size() (cols, rows int) { return c.cols, c.rows }

// ScreenSize converts a terminal size in cells to screen units.
func (c *Canvas) ScreenSize(cols, rows int) (float64, float64) {
	return float64(cols) * c.CellWidth, float64(rows) * c.CellHeight
}

// ScreenPoint returns the screen-space center of a cell. Mouse events in
// cell coordinates go through this before hit-testing.
func (c *Canvas) ScreenPoint(col, row int) (float64, float64) {
	return (float64(col) + 0.5) * c.CellWidth, (float64(row) + 0.5) * c.CellHeight
}

func (c *Canvas) Begin(w, h float64) {
	c.cols = max(0, int(math.Floor(w/c.CellWidth)))
	c.rows = max(0, int(math.Floor(h/c.CellHeight)))
	c.cells = make([][]cell, c.rows)
	for r := range c.cells {
		c.cells[r] = make([]cell, c.cols)
		for col := range c.cells[r] {
			c.cells[r][col] = cell{r: ' '}
		}
	}
}

// Line draws an elbow: down from the parent, across at the midpoint row,
// then down into the child.
func (c *Canvas) Line(l Line) {
	c1, r1 := c.col(l.X1), c.row(l.Y1)
	c2, r2 := c.col(l.X2), c.row(l.Y2)
	mid := (r1 + r2) / 2
	junction := c.at(c1, mid)

	for r := r1; r <= mid; r++ {
		c.set(c1, r, '│', classEdge)
	}
	lo, hi := min(c1, c2), max(c1, c2)
	for col := lo; col <= hi; col++ {
		c.set(col, mid, '─', classEdge)
	}
	for r := mid; r < r2; r++ {
		c.set(c2, r, '│', classEdge)
	}
	switch {
	case c2 < c1:
		c.set(c1, mid, joinCorner(junction, '┘'), classEdge)
		c.set(c2, mid, '┌', classEdge)
	case c2 > c1:
		c.set(c1, mid, joinCorner(junction, '└'), classEdge)
		c.set(c2, mid, '┐', classEdge)
	default:
		c.set(c1, mid, '│', classEdge)
	}
}

// joinCorner merges a parent-side corner with what an earlier sibling edge
// left in the same cell.
func joinCorner(prev, corner rune) rune {
	switch prev {
	case '┘', '└', '┴':
		if prev != corner {
			return '┴'
		}
	}
	return corner
}

func (c *Canvas) Box(b Box) {
	c0, r0 := c.col(b.X), c.row(b.Y)
	c1 := max(c0+1, int(math.Round((b.X+b.W)/c.CellWidth))-1)
	r1 := max(r0, int(math.Round((b.Y+b.H)/c.CellHeight))-1)

	class := classNode
	if b.Selected {
		class = classSelected
	}

	label := b.Label()
	if b.Glyph != GlyphNone {
		label += " " + string(b.Glyph)
	}

	if r1-r0 < 2 {
		c.text(c0, r0, c1, "["+fit(label, c1-c0-1)+"]", class)
		return
	}

	for col := c0; col <= c1; col++ {
		c.set(col, r0, '─', class)
		c.set(col, r1, '─', class)
	}
	for r := r0; r <= r1; r++ {
		c.set(c0, r, '│', class)
		c.set(c1, r, '│', class)
		if r > r0 && r < r1 {
			for col := c0 + 1; col < c1; col++ {
				c.set(col, r, ' ', class)
			}
		}
	}
	c.set(c0, r0, '╭', class)
	c.set(c1, r0, '╮', class)
	c.set(c0, r1, '╰', class)
	c.set(c1, r1, '╯', class)

	inner := c1 - c0 - 1
	text := fit(label, inner)
	start := c0 + 1 + (inner-len([]rune(text)))/2
	midRow := (r0 + r1) / 2
	c.text(start, midRow, c1-1, text, class)
	if b.Glyph != GlyphNone && strings.HasSuffix(text, string(b.Glyph)) {
		c.set(start+len([]rune(text))-1, midRow, []rune(string(b.Glyph))[0], classGlyph)
	}
}

func (c *Canvas) End() error { return nil }

// String returns the grid as plain text, one line per row.
func (c *Canvas) String() string {
	var sb strings.Builder
	for r, row := range c.cells {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, cl := range row {
			sb.WriteRune(cl.r)
		}
	}
	return sb.String()
}

// View returns the grid styled with the palette.
func (c *Canvas) View() string {
	var sb strings.Builder
	for r, row := range c.cells {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for start := 0; start < len(row); {
			end := start
			var run strings.Builder
			for end < len(row) && row[end].class == row[start].class {
				run.WriteRune(row[end].r)
				end++
			}
			sb.WriteString(c.style(row[start].class, run.String()))
			start = end
		}
	}
	return sb.String()
}

func (c *Canvas) style(class cellClass, s string) string {
	switch class {
	case classEdge:
		return c.Palette.Edge.Render(s)
	case classNode:
		return c.Palette.Node.Render(s)
	case classSelected:
		return c.Palette.Selected.Render(s)
	case classGlyph:
		return c.Palette.Glyph.Render(s)
	default:
		return s
	}
}

func (c *Canvas) col(x float64) int { return int(math.Floor(x / c.CellWidth)) }
func (c *Canvas) row(y float64) int { return int(math.Floor(y / c.CellHeight)) }

func (c *Canvas) at(col, row int) rune {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return 0
	}
	return c.cells[row][col].r
}

func (c *Canvas) set(col, row int, r rune, class cellClass) {
	if row < 0 || row >= c.rows || col < 0 || col >= c.cols {
		return
	}
	c.cells[row][col] = cell{r: r, class: class}
}

func (c *Canvas) text(col, row, limit int, s string, class cellClass) {
	for _, r := range s {
		if col > limit {
			return
		}
		c.set(col, row, r, class)
		col++
	}
}

// fit truncates s to n runes, marking the cut with "..".
func fit(s string, n int) string {
	rs := []rune(s)
	if n <= 0 {
		return ""
	}
	if len(rs) <= n {
		return s
	}
	if n <= 2 {
		return string(rs[:n])
	}
	return string(rs[:n-2]) + ".."
}

var _ Surface = (*Canvas)(nil)
