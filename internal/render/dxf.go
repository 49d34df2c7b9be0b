package render

import (
	"io"
	"math"

	"github.com/yofu/dxf"
	dxfcolor "github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"
	"github.com/yofu/dxf/table"
)

// dxfLayers maps plan layers onto CAD layer names and colors.
var dxfLayers = map[string]struct {
	name  string
	color dxfcolor.ColorNumber
}{
	LayerEquipment:       {"EQUIPMENT", dxfcolor.White},
	LayerPiping:          {"PIPING", dxfcolor.Blue},
	LayerInstrumentation: {"INSTRUMENTATION", dxfcolor.Green},
	LayerAnnotation:      {"ANNOTATION", dxfcolor.Red},
}

// WriteDXF writes the plan as a layered DXF in millimetre units. DXF
// has the Y axis pointing up, so everything is flipped against the
// sheet height on the way out.
func WriteDXF(w io.Writer, plan *Plan) error {
	d := dxf.NewDrawing()
	for _, layer := range plan.Layers {
		spec := dxfLayers[layer.Name]
		if _, err := d.AddLayer(spec.name, spec.color, table.LT_CONTINUOUS, true); err != nil {
			return err
		}
		for _, p := range layer.Prims {
			if err := dxfPrim(d, plan.HeightMM, p); err != nil {
				return err
			}
		}
	}
	_, err := d.WriteTo(w)
	return err
}

func dxfPrim(d *drawing.Drawing, sheetH float64, p Primitive) error {
	flip := func(pt Pt) (float64, float64) { return pt.X, sheetH - pt.Y }

	switch p.Op {
	case "line":
		x1, y1 := flip(p.Points[0])
		x2, y2 := flip(p.Points[1])
		if p.Dashed {
			return dxfDashed(d, x1, y1, x2, y2)
		}
		_, err := d.Line(x1, y1, 0, x2, y2, 0)
		return err
	case "polyline":
		if p.Dashed {
			for i := 1; i < len(p.Points); i++ {
				x1, y1 := flip(p.Points[i-1])
				x2, y2 := flip(p.Points[i])
				if err := dxfDashed(d, x1, y1, x2, y2); err != nil {
					return err
				}
			}
			return nil
		}
		verts := make([][]float64, len(p.Points))
		for i, pt := range p.Points {
			x, y := flip(pt)
			verts[i] = []float64{x, y}
		}
		_, err := d.LwPolyline(p.Filled, verts...)
		return err
	case "rect":
		x1, y1 := flip(p.Points[0])
		x2, y2 := flip(p.Points[1])
		corners := [][2]float64{{x1, y1}, {x2, y1}, {x2, y2}, {x1, y2}}
		if p.Dashed {
			for i := 0; i < 4; i++ {
				a, b := corners[i], corners[(i+1)%4]
				if err := dxfDashed(d, a[0], a[1], b[0], b[1]); err != nil {
					return err
				}
			}
			return nil
		}
		verts := make([][]float64, 4)
		for i, c := range corners {
			verts[i] = []float64{c[0], c[1]}
		}
		_, err := d.LwPolyline(true, verts...)
		return err
	case "circle":
		x, y := flip(p.Center)
		_, err := d.Circle(x, y, 0, p.R)
		return err
	case "arc":
		// Approximated with a short polyline so only entity types every
		// DXF consumer understands appear in the file.
		const steps = 8
		verts := make([][]float64, 0, steps+1)
		for i := 0; i <= steps; i++ {
			a := (p.Start + (p.End-p.Start)*float64(i)/steps) * math.Pi / 180
			x := p.Center.X + p.R*math.Cos(a)
			y := p.Center.Y + p.R*math.Sin(a)
			verts = append(verts, []float64{x, sheetH - y})
		}
		_, err := d.LwPolyline(false, verts...)
		return err
	case "text":
		x, y := flip(p.Points[0])
		if p.Anchor == "middle" {
			x -= float64(len(p.Text)) * p.Size * 0.3
		}
		_, err := d.Text(p.Text, x, y, 0, p.Size)
		return err
	}
	return nil
}

// dxfDashed emits a dashed run as individual line entities, keeping
// signal lines distinguishable without relying on viewer line types.
func dxfDashed(d *drawing.Drawing, x1, y1, x2, y2 float64) error {
	const dash, gap = 1.2, 0.6
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	if length == 0 {
		return nil
	}
	ux, uy := dx/length, dy/length
	for pos := 0.0; pos < length; pos += dash + gap {
		end := math.Min(pos+dash, length)
		if _, err := d.Line(x1+ux*pos, y1+uy*pos, 0, x1+ux*end, y1+uy*end, 0); err != nil {
			return err
		}
	}
	return nil
}
