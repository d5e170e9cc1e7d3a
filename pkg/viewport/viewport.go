// Package viewport holds the pan/zoom state and the transforms between object
// space (layout coordinates) and screen space.
//
// The forward transform scales first and then translates:
//
//	screen = object*zoom + pan
//	object = (screen - pan) / zoom
//
// Zoom is clamped into [Limits.ZoomMin, Limits.ZoomMax]; pan is unbounded.
package viewport

import (
	"math"

	"github.com/matzehuels/deptree/pkg/errors"
)

// Limits bounds the zoom factor and sets the step used by ZoomIn/ZoomOut.
type Limits struct {
	ZoomMin  float64 `json:"zoom_min" toml:"zoom_min" validate:"gt=0"`
	ZoomMax  float64 `json:"zoom_max" toml:"zoom_max" validate:"gtefield=ZoomMin"`
	ZoomStep float64 `json:"zoom_step" toml:"zoom_step" validate:"gt=0"`
}

// DefaultLimits allows 50%-200% in 10% steps.
func DefaultLimits() Limits {
	return Limits{ZoomMin: 0.5, ZoomMax: 2.0, ZoomStep: 0.1}
}

// Validate rejects empty or inverted zoom ranges.
func (l Limits) Validate() error {
	if l.ZoomMin <= 0 || l.ZoomMax < l.ZoomMin {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom range [%g, %g] is invalid", l.ZoomMin, l.ZoomMax)
	}
	if l.ZoomStep <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "zoom step must be positive, got %g", l.ZoomStep)
	}
	return nil
}

// State is the pan/zoom triple exposed to collaborators.
type State struct {
	PanX float64 `json:"pan_x"`
	PanY float64 `json:"pan_y"`
	Zoom float64 `json:"zoom"`
}

// Identity is the initial state {0, 0, 1}.
var Identity = State{Zoom: 1}

// ToScreen maps an object-space point to screen space.
func (s State) ToScreen(x, y float64) (float64, float64) {
	return x*s.Zoom + s.PanX, y*s.Zoom + s.PanY
}

// ToObject maps a screen-space point back to object space.
// It is the exact inverse of ToScreen for any positive zoom.
func (s State) ToObject(sx, sy float64) (float64, float64) {
	return (sx - s.PanX) / s.Zoom, (sy - s.PanY) / s.Zoom
}

// Scale maps an object-space length to screen space.
func (s State) Scale(v float64) float64 { return v * s.Zoom }

// Percent returns the zoom as a rounded percentage, e.g. 100.
func (s State) Percent() int { return int(math.Round(s.Zoom * 100)) }

// Viewport is a State together with the limits it is clamped to.
// The zero value is not usable - use New.
type Viewport struct {
	State
	limits Limits
}

// New returns a viewport at the identity state. The identity zoom is clamped
// into limits when 1 lies outside them.
func New(limits Limits) Viewport {
	v := Viewport{State: Identity, limits: limits}
	v.Zoom = v.clamp(1)
	return v
}

// Limits returns the zoom limits.
func (v Viewport) Limits() Limits { return v.limits }

// SetZoom sets the zoom, clamped into the limits. NaN is ignored.
func (v *Viewport) SetZoom(z float64) {
	if math.IsNaN(z) {
		return
	}
	v.Zoom = v.clamp(z)
}

// ZoomIn increases the zoom by one step.
func (v *Viewport) ZoomIn() { v.SetZoom(v.Zoom + v.limits.ZoomStep) }

// ZoomOut decreases the zoom by one step.
func (v *Viewport) ZoomOut() { v.SetZoom(v.Zoom - v.limits.ZoomStep) }

// ZoomAt sets the zoom while keeping the object point under (sx, sy) fixed on screen.
func (v *Viewport) ZoomAt(z, sx, sy float64) {
	ox, oy := v.ToObject(sx, sy)
	v.SetZoom(z)
	v.PanX = sx - ox*v.Zoom
	v.PanY = sy - oy*v.Zoom
}

// Pan accumulates a screen-space offset. Panning is unbounded.
func (v *Viewport) Pan(dx, dy float64) {
	v.PanX += dx
	v.PanY += dy
}

// SetPan replaces the pan offset.
func (v *Viewport) SetPan(x, y float64) {
	v.PanX, v.PanY = x, y
}

// Reset returns to the identity state.
func (v *Viewport) Reset() {
	v.State = Identity
	v.Zoom = v.clamp(1)
}

// Fit zooms and pans so that the object-space rectangle fills a screen of
// w x h, centered, within the zoom limits.
func (v *Viewport) Fit(minX, minY, maxX, maxY, w, h float64) {
	bw, bh := maxX-minX, maxY-minY
	if bw > 0 && bh > 0 && w > 0 && h > 0 {
		v.SetZoom(min(w/bw, h/bh))
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	v.PanX = w/2 - cx*v.Zoom
	v.PanY = h/2 - cy*v.Zoom
}

func (v Viewport) clamp(z float64) float64 {
	return max(v.limits.ZoomMin, min(v.limits.ZoomMax, z))
}
