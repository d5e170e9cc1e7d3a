// Package render draws a computed layout through a viewport onto a Surface.
//
// # Overview
//
// The renderer is a pure consumer: [Draw] reads a [layout.Result] and a
// [viewport.State] and emits drawing primitives. It never mutates either, nor
// the expanded set that produced the layout. Every pan or zoom change is a
// full redraw with the same Result.
//
// Draw order is fixed: all edges first, then all nodes, so that boxes cover
// the line ends. An edge runs from the parent's bottom-center to the child's
// top-center; a node is a box at ToScreen(x-w/2, y-h/2) of size w*zoom by
// h*zoom, labeled with the package name, its version and a [Glyph].
//
// # Surfaces
//
// A [Surface] receives the primitives in screen coordinates:
//
//   - [SVGSurface] writes a standalone SVG document
//   - [Canvas] rasterizes onto a terminal cell grid, styled with lipgloss
//   - [DOTSurface] writes Graphviz DOT with pinned positions, which
//     [RenderGraphviz] turns into PNG, JPG or SVG
//   - [Recorder] keeps the ordered display list, mostly for tests
//
// # Throttling
//
// [Throttle] coalesces redraw requests so that bursts of pointer-move events
// produce at most one draw per interval.
package render
