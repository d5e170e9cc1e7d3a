package viewport

// Drag is an in-progress drag-to-pan gesture. It captures the pointer position
// and the pan offset at pointer-down; every Move sets the pan to the captured
// offset plus the pointer delta.
type Drag struct {
	vp             *Viewport
	startX, startY float64
	panX, panY     float64
	active         bool
}

// BeginDrag starts a drag at pointer position (x, y).
func BeginDrag(vp *Viewport, x, y float64) *Drag {
	return &Drag{
		vp:     vp,
		startX: x,
		startY: y,
		panX:   vp.PanX,
		panY:   vp.PanY,
		active: true,
	}
}

// Move updates the pan live. It does nothing after End.
func (d *Drag) Move(x, y float64) {
	if !d.active {
		return
	}
	d.vp.SetPan(d.panX+(x-d.startX), d.panY+(y-d.startY))
}

// Delta returns the pointer displacement from the start position to (x, y).
func (d *Drag) Delta(x, y float64) (float64, float64) {
	return x - d.startX, y - d.startY
}

// Active reports whether the drag has not ended.
func (d *Drag) Active() bool { return d.active }

// End finishes the drag, keeping the pan applied so far. Further calls
// are no-ops.
func (d *Drag) End() { d.active = false }

