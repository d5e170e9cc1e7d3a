package viewport

import "testing"

func TestDrag(t *testing.T) {
	v := New(DefaultLimits())
	v.SetPan(100, 50)

	d := BeginDrag(&v, 10, 10)
	d.Move(15, 12)
	if v.PanX != 105 || v.PanY != 52 {
		t.Fatalf("pan = (%g,%g), want (105,52)", v.PanX, v.PanY)
	}
	// Moves are relative to the start, not cumulative.
	d.Move(30, 0)
	if v.PanX != 120 || v.PanY != 40 {
		t.Fatalf("pan = (%g,%g), want (120,40)", v.PanX, v.PanY)
	}
	if dx, dy := d.Delta(30, 0); dx != 20 || dy != -10 {
		t.Errorf("Delta = (%g,%g)", dx, dy)
	}

	d.End()
	d.Move(500, 500)
	if v.PanX != 120 || v.PanY != 40 || d.Active() {
		t.Errorf("ended drag still moves pan: (%g,%g)", v.PanX, v.PanY)
	}
}

func TestDragEndKeepsPan(t *testing.T) {
	v := New(DefaultLimits())
	d := BeginDrag(&v, 0, 0)
	d.Move(40, 40)
	d.End()
	d.Move(90, 90)
	if v.PanX != 40 || v.PanY != 40 {
		t.Errorf("ended drag left pan at (%g,%g), want (40,40)", v.PanX, v.PanY)
	}
	if d.Active() {
		t.Error("ended drag still active")
	}
}
