package explorer

import (
	"github.com/matzehuels/deptree/pkg/tree"
	"github.com/matzehuels/deptree/pkg/viewport"
)

// State is the complete interactive state of one explorer.
type State struct {
	Expanded tree.ExpandedSet
	View     viewport.Viewport
}

// NewState returns a state at the identity viewport.
func NewState(limits viewport.Limits, expanded tree.ExpandedSet) State {
	return State{Expanded: expanded, View: viewport.New(limits)}
}

// ToggleExpand flips id in the expanded set. Collapsing keeps the expanded
// flags of descendants, so re-expanding restores the previous subtree.
func (s State) ToggleExpand(id string) State {
	s.Expanded = s.Expanded.Toggle(id)
	return s
}

// WithExpanded replaces the expanded set.
func (s State) WithExpanded(e tree.ExpandedSet) State {
	s.Expanded = e
	return s
}

// Pan shifts the viewport by a screen-space offset.
func (s State) Pan(dx, dy float64) State {
	s.View.Pan(dx, dy)
	return s
}

// SetPan replaces the viewport offset.
func (s State) SetPan(x, y float64) State {
	s.View.SetPan(x, y)
	return s
}

// SetZoom sets the zoom, clamped to the viewport limits.
func (s State) SetZoom(z float64) State {
	s.View.SetZoom(z)
	return s
}

// ZoomAt zooms around a screen anchor.
func (s State) ZoomAt(z, sx, sy float64) State {
	s.View.ZoomAt(z, sx, sy)
	return s
}

// ResetView returns the viewport to the identity state.
func (s State) ResetView() State {
	s.View.Reset()
	return s
}
