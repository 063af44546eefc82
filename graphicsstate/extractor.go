package graphicsstate

import (
	"errors"
	"fmt"
	"math"

	"github.com/tsawler/census/contentstream"
	"github.com/tsawler/census/model"
)

// MaxFormDepth bounds nested form XObjects.
const MaxFormDepth = 8

// ErrFormDepth is returned when forms nest deeper than MaxFormDepth, which
// usually means a form invokes itself.
var ErrFormDepth = errors.New("graphicsstate: form xobjects nested too deeply")

// axisTolerance is how far, in points, a side may lean and still count as
// horizontal or vertical when recognizing rectangles.
const axisTolerance = 0.1

// Form is a form XObject's content and its form matrix.
type Form struct {
	Content []byte
	Matrix  model.Matrix
	// Resolve looks up XObjects in the form's own resources. Nil means the
	// form uses its parent's.
	Resolve Resolver
}

// Resolver looks up a named form XObject. It returns false for image
// XObjects and unknown names.
type Resolver func(name string) (Form, bool, error)

// Graphics are the rulings found on a page, in page space.
type Graphics struct {
	Rects []model.BBox
	Lines []model.Segment
}

// State is the part of the graphics state that affects rulings.
type State struct {
	CTM       model.Matrix
	LineWidth float64
}

// DefaultState is the state at the start of a page.
func DefaultState() State {
	return State{CTM: model.Identity(), LineWidth: 1}
}

type subpath struct {
	points []model.Point
	closed bool
	curved bool
	rect   bool
}

type interpreter struct {
	state State
	stack []State
	path  []subpath
	out   Graphics
}

// Extract runs ops from the default state. resolve may be nil, in which case
// Do operators are ignored.
func Extract(ops []contentstream.Operation, resolve Resolver) (Graphics, error) {
	return ExtractFrom(DefaultState(), ops, resolve)
}

// ExtractFrom runs ops starting from state.
func ExtractFrom(state State, ops []contentstream.Operation, resolve Resolver) (Graphics, error) {
	in := &interpreter{state: state}
	if err := in.run(ops, resolve, 0); err != nil {
		return Graphics{}, err
	}
	return in.out, nil
}

func (in *interpreter) run(ops []contentstream.Operation, resolve Resolver, depth int) error {
	for _, op := range ops {
		if err := in.exec(op, resolve, depth); err != nil {
			return err
		}
	}
	return nil
}

func (in *interpreter) exec(op contentstream.Operation, resolve Resolver, depth int) error {
	switch op.Operator {
	case "q":
		in.stack = append(in.stack, in.state)
	case "Q":
		// Unbalanced Q is common in the wild and ignored.
		if n := len(in.stack); n > 0 {
			in.state = in.stack[n-1]
			in.stack = in.stack[:n-1]
		}
	case "cm":
		if v, ok := op.Floats(6); ok {
			m := model.Matrix{v[0], v[1], v[2], v[3], v[4], v[5]}
			in.state.CTM = m.Multiply(in.state.CTM)
		}
	case "w":
		if v, ok := op.Float(0); ok {
			in.state.LineWidth = v
		}

	case "m":
		if v, ok := op.Floats(2); ok {
			in.path = append(in.path, subpath{points: []model.Point{in.point(v[0], v[1])}})
		}
	case "l":
		if v, ok := op.Floats(2); ok {
			in.lineTo(in.point(v[0], v[1]))
		}
	case "c", "v", "y":
		if v, ok := op.Floats(len(op.Operands)); ok && len(v) >= 4 {
			in.curveTo(in.point(v[len(v)-2], v[len(v)-1]))
		}
	case "h":
		if sp := in.current(); sp != nil {
			sp.closed = true
		}
	case "re":
		if v, ok := op.Floats(4); ok {
			x, y, w, h := v[0], v[1], v[2], v[3]
			in.path = append(in.path, subpath{
				points: []model.Point{in.point(x, y), in.point(x+w, y), in.point(x+w, y+h), in.point(x, y+h)},
				closed: true,
				rect:   true,
			})
		}

	case "S":
		in.paint(true, false, false)
	case "s":
		in.paint(true, false, true)
	case "f", "F", "f*":
		in.paint(false, true, false)
	case "B", "B*":
		in.paint(true, true, false)
	case "b", "b*":
		in.paint(true, true, true)
	case "n":
		in.path = nil

	case "Do":
		return in.form(op, resolve, depth)
	}
	return nil
}

func (in *interpreter) point(x, y float64) model.Point {
	return in.state.CTM.Apply(model.Point{X: x, Y: y})
}

func (in *interpreter) current() *subpath {
	if len(in.path) == 0 {
		return nil
	}
	return &in.path[len(in.path)-1]
}

func (in *interpreter) lineTo(p model.Point) {
	sp := in.current()
	if sp == nil {
		// l without m starts at the point itself.
		in.path = append(in.path, subpath{points: []model.Point{p}})
		return
	}
	sp.points = append(sp.points, p)
}

// curveTo starts a new subpath at the curve's end so the straight parts on
// either side are kept and the curve itself is not.
func (in *interpreter) curveTo(end model.Point) {
	if sp := in.current(); sp != nil {
		sp.curved = true
	}
	in.path = append(in.path, subpath{points: []model.Point{end}, curved: true})
}

// paint records the current path. closeStroke closes open subpaths before
// stroking, as s and b do.
func (in *interpreter) paint(stroke, fill, closeStroke bool) {
	width := in.state.LineWidth * in.state.CTM.Scale()
	for _, sp := range in.path {
		if len(sp.points) == 0 {
			continue
		}
		if fill {
			if box, ok := sp.box(); ok {
				in.out.Rects = append(in.out.Rects, box)
				continue
			}
		}
		if stroke {
			in.out.Lines = append(in.out.Lines, sp.segments(width, closeStroke || sp.closed)...)
		} else if !sp.curved && len(sp.points) > 1 {
			in.out.Rects = append(in.out.Rects, bounds(sp.points))
		}
	}
	in.path = nil
}

// box reports whether sp is an axis-aligned rectangle and returns it.
func (sp subpath) box() (model.BBox, bool) {
	pts := sp.points
	if n := len(pts); n == 5 && near(pts[0], pts[4]) {
		pts = pts[:4]
	}
	if len(pts) != 4 || sp.curved || !(sp.closed || sp.rect || len(sp.points) == 5) {
		return model.BBox{}, false
	}
	for i := range pts {
		a, b := pts[i], pts[(i+1)%4]
		if math.Abs(a.X-b.X) > axisTolerance && math.Abs(a.Y-b.Y) > axisTolerance {
			return model.BBox{}, false
		}
	}
	return bounds(pts), true
}

func (sp subpath) segments(width float64, closed bool) []model.Segment {
	var out []model.Segment
	for i := 1; i < len(sp.points); i++ {
		out = append(out, model.Segment{From: sp.points[i-1], To: sp.points[i], Width: width})
	}
	if closed && len(sp.points) > 2 && !near(sp.points[0], sp.points[len(sp.points)-1]) {
		out = append(out, model.Segment{From: sp.points[len(sp.points)-1], To: sp.points[0], Width: width})
	}
	return out
}

func (in *interpreter) form(op contentstream.Operation, resolve Resolver, depth int) error {
	if resolve == nil || len(op.Operands) != 1 || op.Operands[0].Kind != contentstream.Name {
		return nil
	}
	name := op.Operands[0].Str
	f, ok, err := resolve(name)
	if err != nil {
		return fmt.Errorf("graphicsstate: form %s: %w", name, err)
	}
	if !ok {
		return nil
	}
	if depth >= MaxFormDepth {
		return fmt.Errorf("%w: %s", ErrFormDepth, name)
	}
	ops, err := contentstream.Parse(f.Content)
	if err != nil {
		return fmt.Errorf("graphicsstate: form %s: %w", name, err)
	}
	if f.Resolve != nil {
		resolve = f.Resolve
	}

	saved, stack, path := in.state, in.stack, in.path
	in.stack, in.path = nil, nil
	in.state.CTM = f.Matrix.Multiply(in.state.CTM)
	err = in.run(ops, resolve, depth+1)
	in.state, in.stack, in.path = saved, stack, path
	return err
}

func near(a, b model.Point) bool {
	return math.Abs(a.X-b.X) <= axisTolerance && math.Abs(a.Y-b.Y) <= axisTolerance
}

func bounds(pts []model.Point) model.BBox {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return model.NewBBoxFromPoints(model.Point{X: minX, Y: minY}, model.Point{X: maxX, Y: maxY})
}
