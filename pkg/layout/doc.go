// Package layout computes the 2-D positions of the visible part of a
// dependency tree.
//
// [Compute] is a pure function of the tree and the [tree.ExpandedSet]: the
// viewport never influences it, and identical inputs always produce identical
// output. Nodes are emitted in pre-order (parents before children, siblings in
// child order); hit-testing relies on that order for its tie-break.
//
// # Geometry
//
// The root sits at (CenterX, TopY). An expanded node at (px, py) with n
// children spreads them over a span of (n-1)*(NodeWidth+SiblingSpacing)
// centered on px, one LevelSpacing below. Positions are box centers in object
// space.
//
// # Malformed Trees
//
// A child whose id is already on the active recursion path is not placed. The
// offending branch is reported as a [Warning] in [Result.Warnings] instead of
// recursing forever.
//
// # Memoization
//
// [Memo] caches results keyed by tree identity, expanded-set fingerprint and
// options, so pan and zoom never trigger a re-layout and toggling a node back
// reuses the previous result.
package layout
