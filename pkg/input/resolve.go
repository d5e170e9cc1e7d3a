package input

import (
	"github.com/matzehuels/deptree/pkg/layout"
	"github.com/matzehuels/deptree/pkg/viewport"
)

// ResolveClick returns the ID of the first node whose box contains the
// screen point (sx, sy) under vp. It reports false when nothing is hit.
func ResolveClick(sx, sy float64, nodes []layout.PositionedNode, vp viewport.State) (string, bool) {
	ox, oy := vp.ToObject(sx, sy)
	for _, n := range nodes {
		if n.Contains(ox, oy) {
			return n.ID, true
		}
	}
	return "", false
}
