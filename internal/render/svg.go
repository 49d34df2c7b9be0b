package render

import (
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
)

// svgScale converts sheet millimetres to SVG pixels. Ten pixels per mm
// keeps every grid coordinate integral, which svgo requires.
const svgScale = 10

// WriteSVG renders the plan as an SVG document with one <g> per layer.
func WriteSVG(w io.Writer, plan *Plan) error {
	canvas := svg.New(w)
	canvas.Start(px(plan.WidthMM), px(plan.HeightMM))
	canvas.Rect(0, 0, px(plan.WidthMM), px(plan.HeightMM), "fill:#ffffff;stroke:none")
	for _, layer := range plan.Layers {
		canvas.Gid(layer.Name)
		for _, p := range layer.Prims {
			svgPrim(canvas, p)
		}
		canvas.Gend()
	}
	canvas.End()
	return nil
}

func px(mm float64) int {
	return int(math.Round(mm * svgScale))
}

func svgPrim(canvas *svg.SVG, p Primitive) {
	switch p.Op {
	case "line":
		canvas.Line(px(p.Points[0].X), px(p.Points[0].Y), px(p.Points[1].X), px(p.Points[1].Y), strokeStyle(p))
	case "polyline":
		xs := make([]int, len(p.Points))
		ys := make([]int, len(p.Points))
		for i, pt := range p.Points {
			xs[i] = px(pt.X)
			ys[i] = px(pt.Y)
		}
		canvas.Polyline(xs, ys, strokeStyle(p))
	case "rect":
		x0, y0 := px(p.Points[0].X), px(p.Points[0].Y)
		x1, y1 := px(p.Points[1].X), px(p.Points[1].Y)
		canvas.Rect(x0, y0, x1-x0, y1-y0, strokeStyle(p))
	case "circle":
		canvas.Circle(px(p.Center.X), px(p.Center.Y), px(p.R), strokeStyle(p))
	case "arc":
		sx, sy := arcPoint(p, p.Start)
		ex, ey := arcPoint(p, p.End)
		canvas.Arc(sx, sy, px(p.R), px(p.R), 0, false, true, ex, ey, strokeStyle(p))
	case "text":
		canvas.Text(px(p.Points[0].X), px(p.Points[0].Y), p.Text, textStyle(p))
	}
}

func arcPoint(p Primitive, deg float64) (int, int) {
	rad := deg * math.Pi / 180
	return px(p.Center.X + p.R*math.Cos(rad)), px(p.Center.Y + p.R*math.Sin(rad))
}

func strokeStyle(p Primitive) string {
	if p.Filled {
		return "fill:#000000;stroke:none"
	}
	s := fmt.Sprintf("fill:none;stroke:#000000;stroke-width:%d", strokePx(p.Width))
	if p.Dashed {
		s += ";stroke-dasharray:12,6"
	}
	return s
}

func strokePx(mm float64) int {
	w := px(mm)
	if w < 1 {
		w = 1
	}
	return w
}

func textStyle(p Primitive) string {
	anchor := p.Anchor
	if anchor == "" {
		anchor = "start"
	}
	return fmt.Sprintf("font-family:Helvetica,Arial,sans-serif;font-size:%dpx;fill:#000000;text-anchor:%s", px(p.Size), anchor)
}
