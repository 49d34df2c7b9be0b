package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// pngScale converts millimetres to pixels. Ten pixels per mm works out
// to 254 DPI.
const pngScale = 10.0

// WritePNG rasterises the plan and encodes it as PNG.
func WritePNG(w io.Writer, plan *Plan) error {
	width := int(plan.WidthMM * pngScale)
	height := int(plan.HeightMM * pngScale)
	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()

	ttfFont, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %v", err)
	}
	faces := map[float64]font.Face{}
	faceFor := func(sizeMM float64) font.Face {
		if f, ok := faces[sizeMM]; ok {
			return f
		}
		f := truetype.NewFace(ttfFont, &truetype.Options{
			Size:    sizeMM * pngScale,
			DPI:     72,
			Hinting: font.HintingFull,
		})
		faces[sizeMM] = f
		return f
	}

	for _, layer := range plan.Layers {
		for _, p := range layer.Prims {
			rasterPrim(dc, p, faceFor)
		}
	}
	return dc.EncodePNG(w)
}

func rasterPrim(dc *gg.Context, p Primitive, faceFor func(float64) font.Face) {
	dc.SetColor(color.Black)
	lw := p.Width * pngScale
	if lw < 1 {
		lw = 1
	}
	dc.SetLineWidth(lw)
	if p.Dashed {
		dc.SetDash(12, 6)
	} else {
		dc.SetDash()
	}

	switch p.Op {
	case "line":
		dc.DrawLine(p.Points[0].X*pngScale, p.Points[0].Y*pngScale, p.Points[1].X*pngScale, p.Points[1].Y*pngScale)
		dc.Stroke()
	case "polyline":
		dc.MoveTo(p.Points[0].X*pngScale, p.Points[0].Y*pngScale)
		for _, pt := range p.Points[1:] {
			dc.LineTo(pt.X*pngScale, pt.Y*pngScale)
		}
		if p.Filled {
			dc.ClosePath()
			dc.Fill()
		} else {
			dc.Stroke()
		}
	case "rect":
		x := p.Points[0].X * pngScale
		y := p.Points[0].Y * pngScale
		dc.DrawRectangle(x, y, p.Points[1].X*pngScale-x, p.Points[1].Y*pngScale-y)
		if p.Filled {
			dc.Fill()
		} else {
			dc.Stroke()
		}
	case "circle":
		dc.DrawCircle(p.Center.X*pngScale, p.Center.Y*pngScale, p.R*pngScale)
		if p.Filled {
			dc.Fill()
		} else {
			dc.Stroke()
		}
	case "arc":
		dc.DrawArc(p.Center.X*pngScale, p.Center.Y*pngScale, p.R*pngScale, gg.Radians(p.Start), gg.Radians(p.End))
		dc.Stroke()
	case "text":
		dc.SetFontFace(faceFor(p.Size))
		ax := 0.0
		if p.Anchor == "middle" {
			ax = 0.5
		}
		dc.DrawStringAnchored(p.Text, p.Points[0].X*pngScale, p.Points[0].Y*pngScale, ax, 0)
	}
}
