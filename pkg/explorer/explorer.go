package explorer

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deptree/pkg/errors"
	"github.com/matzehuels/deptree/pkg/input"
	"github.com/matzehuels/deptree/pkg/layout"
	"github.com/matzehuels/deptree/pkg/observability"
	"github.com/matzehuels/deptree/pkg/render"
	"github.com/matzehuels/deptree/pkg/tree"
	"github.com/matzehuels/deptree/pkg/viewport"
)

// Selected is published when a click hits a node.
type Selected struct {
	NodeID   string
	Expanded bool // Expansion state after the click's toggle
}

// Option configures an Explorer.
type Option func(*Explorer)

// WithLayoutOptions sets the layout geometry.
func WithLayoutOptions(o layout.Options) Option { return func(e *Explorer) { e.opts = o } }

// WithLimits sets the viewport zoom limits.
func WithLimits(l viewport.Limits) Option { return func(e *Explorer) { e.limits = l } }

// WithMemo shares a layout memo between explorers.
func WithMemo(m *layout.Memo) Option { return func(e *Explorer) { e.memo = m } }

// WithLogger sets the logger used for layout warnings and state changes.
func WithLogger(l *log.Logger) Option { return func(e *Explorer) { e.logger = l } }

// WithExpandRoot starts with the root expanded, showing its direct dependencies.
func WithExpandRoot(on bool) Option { return func(e *Explorer) { e.expandRoot = on } }

// WithExpanded sets the initial expanded set. Unknown IDs are dropped.
func WithExpanded(ids ...string) Option {
	return func(e *Explorer) { e.initial = append(e.initial, ids...) }
}

// Explorer is an interactive view over one dependency tree.
type Explorer struct {
	tree   *tree.Tree
	opts   layout.Options
	limits viewport.Limits
	memo   *layout.Memo
	logger *log.Logger

	expandRoot bool
	initial    []string

	state      State
	selected   string
	dispatcher *input.Dispatcher
	gesture    *input.Gesture

	subs    map[int]func(Selected)
	nextSub int

	warned string
}

// New creates an explorer for t.
func New(t *tree.Tree, opts ...Option) (*Explorer, error) {
	if t == nil || t.Root() == nil {
		return nil, errors.New(errors.ErrCodeInvalidTree, "explorer needs a tree with a root")
	}
	e := &Explorer{
		tree:       t,
		opts:       layout.DefaultOptions(),
		limits:     viewport.DefaultLimits(),
		logger:     log.New(io.Discard),
		dispatcher: input.NewDispatcher(),
		subs:       make(map[int]func(Selected)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := e.opts.Validate(); err != nil {
		return nil, err
	}
	if err := e.limits.Validate(); err != nil {
		return nil, err
	}
	if e.memo == nil {
		m, err := layout.NewMemo(0)
		if err != nil {
			return nil, err
		}
		e.memo = m
	}

	var ids []string
	if e.expandRoot {
		ids = append(ids, t.Root().ID)
	}
	for _, id := range e.initial {
		if t.Contains(id) {
			ids = append(ids, id)
		}
	}
	e.state = NewState(e.limits, tree.NewExpandedSet(ids...))
	return e, nil
}

// =============================================================================
// Exposed state
// =============================================================================

// Tree returns the explored tree.
func (e *Explorer) Tree() *tree.Tree { return e.tree }

// State returns a copy of the current state.
func (e *Explorer) State() State { return e.state }

// Expanded returns the current expanded set.
func (e *Explorer) Expanded() tree.ExpandedSet { return e.state.Expanded }

// Viewport returns the current pan and zoom.
func (e *Explorer) Viewport() viewport.State { return e.state.View.State }

// Selection returns the most recently selected node ID, or "".
func (e *Explorer) Selection() string { return e.selected }

// Listeners returns the number of pointer listeners currently held.
func (e *Explorer) Listeners() int { return e.dispatcher.Len() }

// =============================================================================
// Layout and rendering
// =============================================================================

// Layout returns the layout for the current expanded set.
func (e *Explorer) Layout() layout.Result {
	res := e.memo.Layout(e.tree, e.state.Expanded, e.opts)
	if len(res.Warnings) > 0 {
		if fp := e.state.Expanded.Fingerprint(); fp != e.warned {
			e.warned = fp
			for _, w := range res.Warnings {
				e.logger.Warn("skipped cyclic branch", "node", w.NodeID, "path", w.Path)
			}
		}
	}
	return res
}

// Warnings returns the cycle warnings of the current layout.
func (e *Explorer) Warnings() []layout.Warning { return e.Layout().Warnings }

// Render draws the current layout through the current viewport. The
// explorer's selection is highlighted unless frame names another node.
func (e *Explorer) Render(s render.Surface, frame render.Frame) error {
	if frame.Selected == "" {
		frame.Selected = e.selected
	}
	return render.Draw(s, e.Layout(), e.state.View.State, frame)
}

// =============================================================================
// Input
// =============================================================================

// Click resolves a screen point. A hit toggles the node, selects it and
// publishes a Selected event. A miss changes nothing.
func (e *Explorer) Click(sx, sy float64) (string, bool) {
	id, ok := input.ResolveClick(sx, sy, e.Layout().Nodes, e.state.View.State)
	observability.Engine().OnClick(ok)
	if !ok {
		e.logger.Debug("click missed", "x", sx, "y", sy)
		return "", false
	}
	e.Toggle(id)
	e.selected = id
	e.publish(Selected{NodeID: id, Expanded: e.state.Expanded.Contains(id)})
	return id, true
}

// PointerDown starts a gesture. A gesture still in progress is released first.
func (e *Explorer) PointerDown(x, y float64) {
	if e.gesture != nil && e.gesture.Active() {
		e.gesture.Release()
	}
	e.gesture = input.BeginGesture(e.dispatcher, &e.state.View, x, y, input.GestureOptions{
		OnClick: func(x, y float64) { e.Click(x, y) },
		OnEnd:   func() { e.gesture = nil },
	})
}

// PointerMove forwards a move to the active gesture, if any.
func (e *Explorer) PointerMove(x, y float64) {
	e.dispatcher.Dispatch(input.Event{Kind: input.PointerMove, X: x, Y: y})
}

// PointerUp ends the active gesture as a click or a drag.
func (e *Explorer) PointerUp(x, y float64) {
	e.dispatcher.Dispatch(input.Event{Kind: input.PointerUp, X: x, Y: y})
}

// PointerCancel ends the active gesture without a click.
func (e *Explorer) PointerCancel() {
	e.dispatcher.Dispatch(input.Event{Kind: input.PointerCancel})
}

// =============================================================================
// Transitions
// =============================================================================

// Toggle flips id in the expanded set. IDs that are not in the tree are
// ignored and Toggle reports false.
func (e *Explorer) Toggle(id string) bool {
	if !e.tree.Contains(id) {
		e.logger.Debug("ignored toggle of unknown node", "node", id)
		return false
	}
	e.state = e.state.ToggleExpand(id)
	expanded := e.state.Expanded.Contains(id)
	observability.Engine().OnToggle(id, expanded)
	e.logger.Debug("toggled", "node", id, "expanded", expanded)
	return true
}

// ExpandAll expands every node that has dependencies.
func (e *Explorer) ExpandAll() {
	e.state = e.state.WithExpanded(tree.NewExpandedSet(e.tree.Expandable()...))
}

// CollapseAll empties the expanded set, leaving only the root visible.
func (e *Explorer) CollapseAll() {
	e.state = e.state.WithExpanded(tree.NewExpandedSet())
}

// Pan shifts the view by a screen-space offset.
func (e *Explorer) Pan(dx, dy float64) {
	e.state = e.state.Pan(dx, dy)
}

// SetPan moves the view to an absolute offset.
func (e *Explorer) SetPan(x, y float64) {
	e.state = e.state.SetPan(x, y)
}

// SetZoom sets the zoom, clamped to the limits.
func (e *Explorer) SetZoom(z float64) {
	e.state = e.state.SetZoom(z)
}

// ZoomAt zooms keeping the content under (sx, sy) in place.
func (e *Explorer) ZoomAt(z, sx, sy float64) {
	e.state = e.state.ZoomAt(z, sx, sy)
}

// ZoomIn zooms in by one step.
func (e *Explorer) ZoomIn() {
	e.state.View.ZoomIn()
}

// ZoomOut zooms out by one step.
func (e *Explorer) ZoomOut() {
	e.state.View.ZoomOut()
}

// ResetView returns to the identity viewport.
func (e *Explorer) ResetView() {
	e.state = e.state.ResetView()
}

// Fit zooms and pans the current layout into a w x h screen.
func (e *Explorer) Fit(w, h float64) {
	b := e.Layout().Bounds()
	e.state.View.Fit(b.MinX, b.MinY, b.MaxX, b.MaxY, w, h)
}

// =============================================================================
// Events
// =============================================================================

// Subscribe registers fn for selection events and returns a function that
// removes it.
func (e *Explorer) Subscribe(fn func(Selected)) func() {
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	return func() { delete(e.subs, id) }
}

func (e *Explorer) publish(s Selected) {
	for id := 0; id < e.nextSub; id++ {
		if fn, ok := e.subs[id]; ok {
			fn(s)
		}
	}
}

// Close releases the active gesture.
func (e *Explorer) Close() {
	if e.gesture != nil && e.gesture.Active() {
		e.gesture.Release()
	}
}
