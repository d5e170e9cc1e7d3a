// Package explorer wires a dependency tree to the layout engine, the
// viewport, a renderer and pointer input.
//
// # State
//
// The UI state is explicit: a [State] holds the expanded set and the
// viewport, and every change is a pure transition returning a new State.
// Toggling a node changes the layout; panning and zooming never do, so the
// memoized layout is reused across every viewport change.
//
// # Explorer
//
// An [Explorer] owns one tree and its State. It answers Layout and Render
// calls, routes pointer events through an input dispatcher, and publishes a
// [Selected] event whenever a click hits a node:
//
//	ex, _ := explorer.New(t, explorer.WithExpandRoot(true))
//	unsubscribe := ex.Subscribe(func(s explorer.Selected) { fmt.Println(s.NodeID) })
//	defer unsubscribe()
//
//	ex.PointerDown(400, 50)
//	ex.PointerUp(400, 50) // toggles and selects the root
//
// An Explorer is not safe for concurrent use; callers serialize access. It
// never starts goroutines of its own, and redraw pacing is left to the UI
// loop that owns it (see render.Throttle).
package explorer
