// Package pkg provides the core libraries for deptree dependency exploration.
//
// # Overview
//
// deptree shows a package's dependency tree top-down: the package at the top,
// its dependencies below, each of which can be expanded or collapsed. Users
// pan and zoom the drawing and click packages to toggle them and see their
// details. The pkg directory is organized into three areas:
//
//  1. Model and geometry - [tree], [layout], [viewport]
//  2. Interaction - [render], [input], [explorer]
//  3. Infrastructure - [metadata], [session], [cache], [config], [metrics]
//
// # Architecture
//
// The data flow for one frame:
//
//	tree file (JSON/YAML, nested or node-link)
//	         ↓
//	    [tree] package (immutable tree + expanded set)
//	         ↓
//	    [layout] package (positions in object space, memoized)
//	         ↓
//	    [viewport] package (pan/zoom transform)
//	         ↓
//	    [render] package (SVG, terminal canvas, Graphviz)
//
// Pointer events travel the other way: [input] maps a screen point back
// through the viewport and hit-tests it against the layout.
//
// # Quick Start
//
//	t, _ := tree.ReadFile("app.json", "")
//	ex, _ := explorer.New(t, explorer.WithExpandRoot(true))
//	defer ex.Close()
//
//	ex.Click(400, 50)   // toggles the package under the point
//	ex.ZoomAt(1.5, 400, 50)
//
//	svg := render.NewSVGSurface()
//	_ = ex.Render(svg, render.Frame{Width: 800, Height: 600})
//	os.WriteFile("frame.svg", svg.Bytes(), 0o644)
//
// # Main Packages
//
// ## Model and Geometry
//
// [tree] - Immutable dependency trees with identity, the expanded set, and
// readers for nested JSON/YAML trees and node-link graphs.
//
// [layout] - Pure top-down layout. Children are centered under their parent;
// branches that revisit a package on their own path are cut and reported.
// [layout.Memo] caches results per tree, expanded set and geometry.
//
// [viewport] - Pan and zoom with exact forward and inverse transforms, zoom
// limits, anchored zoom, fit-to-frame and drag tracking.
//
// ## Interaction
//
// [render] - The drawing contract (edges first, then nodes) with SVG,
// terminal and Graphviz surfaces, plus a redraw throttle.
//
// [input] - Hit-testing and the pointer gesture that tells clicks from drags
// while holding exactly the listeners it needs.
//
// [explorer] - Ties the pieces together into one interactive session.
//
// ## Infrastructure
//
// [metadata] - Package details (size, license, vulnerabilities) from files,
// Redis or MongoDB, and the detail panel built from them.
//
// [session] - In-memory explorer sessions for the HTTP server.
//
// [cache] - Export cache for Graphviz renders.
//
// [config] - TOML configuration with validation.
//
// [metrics], [observability] - Prometheus metrics fed through hook interfaces.
//
// [errors] - Coded errors shared by all packages.
//
// [tree]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/tree
// [layout]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/layout
// [layout.Memo]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/layout#Memo
// [viewport]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/viewport
// [render]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/render
// [input]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/input
// [explorer]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/explorer
// [metadata]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/metadata
// [session]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/session
// [cache]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/config
// [metrics]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/metrics
// [observability]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/deptree/pkg/errors
package pkg
