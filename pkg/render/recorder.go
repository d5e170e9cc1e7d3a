package render

// Op is one recorded drawing call.
type Op struct {
	Kind string // "begin", "line", "box" or "end"
	Line Line
	Box  Box
}

// Recorder is a Surface that keeps the ordered display list.
type Recorder struct {
	Width, Height float64
	Ops           []Op
}

func (r *Recorder) Name() string { return "recorder" }

func (r *Recorder) Begin(w, h float64) {
	r.Width, r.Height = w, h
	r.Ops = append(r.Ops[:0], Op{Kind: "begin"})
}

func (r *Recorder) Line(l Line) { r.Ops = append(r.Ops, Op{Kind: "line", Line: l}) }
func (r *Recorder) Box(b Box)   { r.Ops = append(r.Ops, Op{Kind: "box", Box: b}) }

func (r *Recorder) End() error {
	r.Ops = append(r.Ops, Op{Kind: "end"})
	return nil
}

// Lines returns the recorded lines in draw order.
func (r *Recorder) Lines() []Line {
	var out []Line
	for _, op := range r.Ops {
		if op.Kind == "line" {
			out = append(out, op.Line)
		}
	}
	return out
}

// Boxes returns the recorded boxes in draw order.
func (r *Recorder) Boxes() []Box {
	var out []Box
	for _, op := range r.Ops {
		if op.Kind == "box" {
			out = append(out, op.Box)
		}
	}
	return out
}

var _ Surface = (*Recorder)(nil)
