package render

import (
	"github.com/pnid-studio/backend/internal/models"
)

// glyphPrimitives scales a glyph from unit space into the given mm
// rectangle.
func glyphPrimitives(g models.Glyph, x, y, w, h, weight float64) []Primitive {
	sx := func(u float64) float64 { return x + u*w }
	sy := func(u float64) float64 { return y + u*h }

	prims := make([]Primitive, 0, len(g.Strokes))
	for _, s := range g.Strokes {
		switch s.Op {
		case "line", "polyline":
			pts := make([]Pt, len(s.Points))
			for i, p := range s.Points {
				pts[i] = Pt{X: sx(p.X), Y: sy(p.Y)}
			}
			prims = append(prims, Primitive{
				Op: s.Op, Points: pts, Width: weight, Filled: s.Filled,
			})
		case "rect":
			if len(s.Points) < 2 {
				continue
			}
			prims = append(prims, Primitive{
				Op: "rect",
				Points: []Pt{
					{X: sx(s.Points[0].X), Y: sy(s.Points[0].Y)},
					{X: sx(s.Points[1].X), Y: sy(s.Points[1].Y)},
				},
				Width: weight, Filled: s.Filled,
			})
		case "circle":
			// Radius follows the smaller axis so circles stay round in
			// non-square footprints.
			r := s.R * w
			if h < w {
				r = s.R * h
			}
			prims = append(prims, Primitive{
				Op:     "circle",
				Center: Pt{X: sx(s.Center.X), Y: sy(s.Center.Y)},
				R:      r,
				Width:  weight, Filled: s.Filled,
			})
		case "text":
			if len(s.Points) == 0 {
				continue
			}
			prims = append(prims, Primitive{
				Op:     "text",
				Points: []Pt{{X: sx(s.Points[0].X), Y: sy(s.Points[0].Y)}},
				Text:   s.Text,
				Size:   textSmall,
				Anchor: "middle",
			})
		}
	}
	return prims
}

// placeholderPrimitives draws a crossed box where a symbol is missing,
// so the gap is visible on the sheet instead of silently blank.
func placeholderPrimitives(x, y, w, h float64, typeID string) []Primitive {
	prims := []Primitive{
		{Op: "rect", Points: []Pt{{X: x, Y: y}, {X: x + w, Y: y + h}}, Width: weightThin, Dashed: true},
		{Op: "line", Points: []Pt{{X: x, Y: y}, {X: x + w, Y: y + h}}, Width: weightThin},
		{Op: "line", Points: []Pt{{X: x + w, Y: y}, {X: x, Y: y + h}}, Width: weightThin},
	}
	if typeID != "" {
		prims = append(prims, Primitive{
			Op:     "text",
			Points: []Pt{{X: x + w/2, Y: y + h + 3}},
			Text:   typeID,
			Size:   textSmall,
			Anchor: "middle",
		})
	}
	return prims
}
