package input

import (
	"math"

	"github.com/matzehuels/deptree/pkg/viewport"
)

// ClickSlop is the largest pointer travel, in screen units, that still
// counts as a click rather than a drag.
const ClickSlop = 3.0

// Gesture tracks one pointer interaction from down to up or cancel.
type Gesture struct {
	drag     *viewport.Drag
	x, y     float64
	dragging bool
	done     bool
	releases []Release

	onClick func(x, y float64)
	onPan   func()
	onEnd   func()
}

// GestureOptions are the callbacks of a gesture. All are optional.
type GestureOptions struct {
	OnClick func(x, y float64) // Pointer released within ClickSlop of the down position
	OnPan   func()             // Viewport pan changed by the drag
	OnEnd   func()             // Gesture finished, by up or cancel
}

// BeginGesture starts a gesture at pointer-down position (x, y). It acquires
// move, up and cancel listeners on d; they are released when the gesture ends.
func BeginGesture(d *Dispatcher, vp *viewport.Viewport, x, y float64, opts GestureOptions) *Gesture {
	g := &Gesture{
		drag:    viewport.BeginDrag(vp, x, y),
		x:       x,
		y:       y,
		onClick: opts.OnClick,
		onPan:   opts.OnPan,
		onEnd:   opts.OnEnd,
	}
	g.releases = []Release{
		d.Listen(PointerMove, g.move),
		d.Listen(PointerUp, g.up),
		d.Listen(PointerCancel, g.cancel),
	}
	return g
}

// Active reports whether the gesture still holds its listeners.
func (g *Gesture) Active() bool { return !g.done }

// Dragging reports whether the pointer has left the click slop.
func (g *Gesture) Dragging() bool { return g.dragging }

func (g *Gesture) move(ev Event) {
	if g.done {
		return
	}
	if dx, dy := g.drag.Delta(ev.X, ev.Y); !g.dragging && math.Hypot(dx, dy) > ClickSlop {
		g.dragging = true
	}
	if g.dragging {
		g.drag.Move(ev.X, ev.Y)
		if g.onPan != nil {
			g.onPan()
		}
	}
}

func (g *Gesture) up(ev Event) {
	if g.done {
		return
	}
	g.move(ev)
	clicked := !g.dragging
	g.finish()
	if clicked && g.onClick != nil {
		g.onClick(g.x, g.y)
	}
}

func (g *Gesture) cancel(Event) {
	if g.done {
		return
	}
	g.finish()
}

// Release ends the gesture without a click, keeping any pan applied so far.
func (g *Gesture) Release() { g.cancel(Event{Kind: PointerCancel}) }

func (g *Gesture) finish() {
	g.done = true
	g.drag.End()
	for _, release := range g.releases {
		release()
	}
	g.releases = nil
	if g.onEnd != nil {
		g.onEnd()
	}
}
