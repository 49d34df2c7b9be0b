// Package render turns a diagram into drawing primitives and writes
// them out as SVG, PNG or layered DXF. All backends consume the same
// plan, so the three outputs agree geometrically.
package render

import (
	"fmt"
	"math"
	"sort"

	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
)

// Layer names, in paint order.
const (
	LayerEquipment       = "equipment"
	LayerPiping          = "piping"
	LayerInstrumentation = "instrumentation"
	LayerAnnotation      = "annotation"
)

// Pt is a position on the sheet in millimetres.
type Pt struct {
	X float64
	Y float64
}

// Primitive is one drawing operation. Which fields apply depends on Op:
// line/polyline/rect use Points, circle and arc use Center/R, text uses
// Points[0] plus Text.
type Primitive struct {
	Op     string
	Points []Pt
	Center Pt
	R      float64
	Start  float64 // arc start angle, degrees, y-down screen sense
	End    float64 // arc end angle; the arc runs Start to End increasing
	Text   string
	Size   float64 // text height, mm
	Anchor string  // "start" or "middle"
	Width  float64 // stroke weight, mm
	Dashed bool
	Filled bool
}

// Layer is a named group of primitives.
type Layer struct {
	Name  string
	Prims []Primitive
}

// Plan is the complete, backend-agnostic drawing.
type Plan struct {
	WidthMM  float64
	HeightMM float64
	Layers   []Layer
}

// Stroke weights in mm.
const (
	weightProcess = 0.7
	weightSignal  = 0.35
	weightSymbol  = 0.5
	weightThin    = 0.25
)

const (
	textTag    = 3.5 // mm
	textLabel  = 2.5
	textSmall  = 2.0
	jogRadius  = 1.5
	arrowSize  = 2.5
	stubGapMM  = 0.0 // stubs join ports flush
	legendRowH = 8.0
)

// builder accumulates primitives per layer while walking the diagram.
type builder struct {
	d      *diagram.Diagram
	cellMM float64
	margin float64
	layers map[string]*Layer
}

// BuildPlan assembles the layered drawing plan for a diagram. Equipment
// with missing glyphs gets a placeholder; nothing is dropped.
func BuildPlan(d *diagram.Diagram) *Plan {
	opts := d.Opts()
	wmm, hmm, _ := models.SheetDimensions(opts.Sheet)

	b := &builder{
		d:      d,
		cellMM: float64(opts.GridSpacingMM),
		margin: float64(opts.MarginMM),
		layers: map[string]*Layer{
			LayerEquipment:       {Name: LayerEquipment},
			LayerPiping:          {Name: LayerPiping},
			LayerInstrumentation: {Name: LayerInstrumentation},
			LayerAnnotation:      {Name: LayerAnnotation},
		},
	}

	b.addFrame(float64(wmm), float64(hmm))
	b.addEquipment()
	b.addPipelines()
	b.addInline()
	b.addLegend()
	b.addTitleBlock(float64(wmm), float64(hmm))

	return &Plan{
		WidthMM:  float64(wmm),
		HeightMM: float64(hmm),
		Layers: []Layer{
			*b.layers[LayerEquipment],
			*b.layers[LayerPiping],
			*b.layers[LayerInstrumentation],
			*b.layers[LayerAnnotation],
		},
	}
}

func (b *builder) add(layer string, p Primitive) {
	b.layers[layer].Prims = append(b.layers[layer].Prims, p)
}

// cellCenter maps a grid cell to the mm position of its center.
func (b *builder) cellCenter(p models.Point) Pt {
	return Pt{
		X: b.margin + (float64(p.X)+0.5)*b.cellMM,
		Y: b.margin + (float64(p.Y)+0.5)*b.cellMM,
	}
}

// rectMM maps a footprint rectangle to mm.
func (b *builder) rectMM(r models.Rect) (x, y, w, h float64) {
	return b.margin + float64(r.X)*b.cellMM,
		b.margin + float64(r.Y)*b.cellMM,
		float64(r.W) * b.cellMM,
		float64(r.H) * b.cellMM
}

func (b *builder) addFrame(wmm, hmm float64) {
	inset := b.margin / 2
	b.add(LayerAnnotation, Primitive{
		Op:     "rect",
		Points: []Pt{{X: inset, Y: inset}, {X: wmm - inset, Y: hmm - inset}},
		Width:  weightProcess,
	})
}

func (b *builder) addEquipment() {
	cat := b.d.Catalog()
	for _, tag := range b.d.EquipmentTags() {
		e, _ := b.d.Equipment(tag)
		r, err := b.d.Footprint(tag)
		if err != nil {
			continue
		}
		x, y, w, h := b.rectMM(r)

		layer := LayerEquipment
		t, typeKnown := cat.EquipmentType(e.Type)
		if typeKnown && t.Category == models.CategoryInstrument {
			layer = LayerInstrumentation
		}

		var prims []Primitive
		if typeKnown {
			if g, ok := cat.Glyph(t.Symbol); ok {
				prims = glyphPrimitives(g, x, y, w, h, weightSymbol)
			}
		}
		if prims == nil {
			prims = placeholderPrimitives(x, y, w, h, e.Type)
		}
		for _, p := range prims {
			b.add(layer, p)
		}

		// Instruments carry the tag inside the balloon, everything else
		// above the symbol.
		if layer == LayerInstrumentation {
			b.add(layer, Primitive{
				Op: "text", Points: []Pt{{X: x + w/2, Y: y + h/2 + textLabel/2}},
				Text: tag, Size: textLabel, Anchor: "middle",
			})
		} else {
			b.add(layer, Primitive{
				Op: "text", Points: []Pt{{X: x + w/2, Y: y - 1.5}},
				Text: tag, Size: textTag, Anchor: "middle",
			})
		}
	}
}

type polylineInfo struct {
	tag    string
	kind   models.LineKind
	points []Pt // cell centers, mm
	length float64
}

func (b *builder) addPipelines() {
	cat := b.d.Catalog()
	polys := make(map[string]*polylineInfo)

	for _, tag := range b.d.PipelineTags() {
		p, _ := b.d.Pipeline(tag)
		kind := models.LineProcess
		if pc, ok := cat.PipelineClass(p.Class); ok {
			kind = pc.Kind
		}
		layer := LayerPiping
		if kind != models.LineProcess {
			layer = LayerInstrumentation
		}
		weight := weightProcess
		dashed := false
		if kind != models.LineProcess {
			weight = weightSignal
			dashed = true
		}

		// Port stubs connect the symbols to the routed path ends.
		b.addStub(layer, p.From, weight, dashed)
		b.addStub(layer, p.To, weight, dashed)

		if !p.Routed() {
			continue
		}

		pts := b.pathPoints(p.Segments)
		b.add(layer, Primitive{Op: "polyline", Points: pts, Width: weight, Dashed: dashed})

		info := &polylineInfo{tag: tag, kind: kind, points: pts, length: polyLength(pts)}
		polys[tag] = info

		if kind == models.LineProcess {
			b.addFlowArrows(layer, info)
		}
		b.addLineLabel(layer, p, pts)
	}

	b.addCrossingJogs(polys)
}

func (b *builder) addStub(layer string, ref models.PortRef, weight float64, dashed bool) {
	portPt, dir, err := b.d.PortPoint(ref)
	if err != nil {
		return
	}
	dx, dy := dir.Delta()
	from := b.cellCenter(portPt)
	to := b.cellCenter(portPt.Add(dx, dy))
	b.add(layer, Primitive{Op: "line", Points: []Pt{from, to}, Width: weight, Dashed: dashed})
}

func (b *builder) pathPoints(segs []models.Segment) []Pt {
	pts := []Pt{b.cellCenter(segs[0].A)}
	for _, s := range segs {
		pts = append(pts, b.cellCenter(s.B))
	}
	return pts
}

func polyLength(pts []Pt) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Abs(pts[i].X-pts[i-1].X) + math.Abs(pts[i].Y-pts[i-1].Y)
	}
	return total
}

// pointAt walks the polyline to the point at the given fraction of its
// length, returning the point and the direction of travel there.
func pointAt(pts []Pt, frac float64) (Pt, Pt) {
	if len(pts) == 1 || frac <= 0 {
		dir := Pt{X: 1}
		if len(pts) > 1 {
			dir = segDir(pts[0], pts[1])
		}
		return pts[0], dir
	}
	target := polyLength(pts) * frac
	walked := 0.0
	for i := 1; i < len(pts); i++ {
		segLen := math.Abs(pts[i].X-pts[i-1].X) + math.Abs(pts[i].Y-pts[i-1].Y)
		if walked+segLen >= target && segLen > 0 {
			t := (target - walked) / segLen
			return Pt{
				X: pts[i-1].X + (pts[i].X-pts[i-1].X)*t,
				Y: pts[i-1].Y + (pts[i].Y-pts[i-1].Y)*t,
			}, segDir(pts[i-1], pts[i])
		}
		walked += segLen
	}
	n := len(pts)
	return pts[n-1], segDir(pts[n-2], pts[n-1])
}

func segDir(a, b Pt) Pt {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Abs(dx) + math.Abs(dy)
	if l == 0 {
		return Pt{X: 1}
	}
	return Pt{X: dx / l, Y: dy / l}
}

// addFlowArrows puts direction arrows a third and two thirds of the way
// along a process line.
func (b *builder) addFlowArrows(layer string, info *polylineInfo) {
	if info.length < 4*arrowSize {
		return
	}
	for _, frac := range []float64{1.0 / 3.0, 2.0 / 3.0} {
		at, dir := pointAt(info.points, frac)
		tip := Pt{X: at.X + dir.X*arrowSize/2, Y: at.Y + dir.Y*arrowSize/2}
		back := Pt{X: at.X - dir.X*arrowSize/2, Y: at.Y - dir.Y*arrowSize/2}
		perp := Pt{X: -dir.Y, Y: dir.X}
		b.add(layer, Primitive{
			Op: "polyline",
			Points: []Pt{
				{X: back.X + perp.X*arrowSize/2, Y: back.Y + perp.Y*arrowSize/2},
				tip,
				{X: back.X - perp.X*arrowSize/2, Y: back.Y - perp.Y*arrowSize/2},
			},
			Width:  weightThin,
			Filled: true,
		})
	}
}

// addLineLabel writes the line identification along the longest run.
func (b *builder) addLineLabel(layer string, p *models.Pipeline, pts []Pt) {
	if p.Label == "" {
		return
	}
	bestLen, bestIdx := 0.0, -1
	for i := 1; i < len(pts); i++ {
		l := math.Abs(pts[i].X-pts[i-1].X) + math.Abs(pts[i].Y-pts[i-1].Y)
		if l > bestLen {
			bestLen, bestIdx = l, i
		}
	}
	if bestIdx < 0 || bestLen < 15 {
		return
	}
	a, c := pts[bestIdx-1], pts[bestIdx]
	mid := Pt{X: (a.X + c.X) / 2, Y: (a.Y + c.Y) / 2}
	if a.Y == c.Y {
		mid.Y -= 1.5
	} else {
		mid.X += 1.5
	}
	b.add(layer, Primitive{
		Op: "text", Points: []Pt{mid}, Text: p.Label, Size: textLabel, Anchor: "middle",
	})
}

// addCrossingJogs finds perpendicular crossings between routed lines
// and draws a hop on the later-tagged line, matching the drafting
// convention that the newer line jumps.
func (b *builder) addCrossingJogs(polys map[string]*polylineInfo) {
	tags := make([]string, 0, len(polys))
	for tag := range polys {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	for i := 0; i < len(tags); i++ {
		for j := i + 1; j < len(tags); j++ {
			earlier, later := polys[tags[i]], polys[tags[j]]
			for _, cross := range crossings(earlier.points, later.points) {
				layer := LayerPiping
				if later.kind != models.LineProcess {
					layer = LayerInstrumentation
				}
				b.add(layer, Primitive{
					Op:     "arc",
					Center: cross,
					R:      jogRadius,
					Start:  180,
					End:    360,
					Width:  weightThin,
				})
			}
		}
	}
}

// crossings returns the intersection points where a segment of q
// crosses a perpendicular segment of p strictly between both ends.
func crossings(p, q []Pt) []Pt {
	var out []Pt
	for i := 1; i < len(p); i++ {
		for j := 1; j < len(q); j++ {
			pa, pb := p[i-1], p[i]
			qa, qb := q[j-1], q[j]
			pHoriz := pa.Y == pb.Y
			qHoriz := qa.Y == qb.Y
			if pHoriz == qHoriz {
				continue
			}
			h1, h2, v1, v2 := pa, pb, qa, qb
			if qHoriz {
				h1, h2, v1, v2 = qa, qb, pa, pb
			}
			x := v1.X
			y := h1.Y
			if strictlyBetween(x, h1.X, h2.X) && strictlyBetween(y, v1.Y, v2.Y) {
				out = append(out, Pt{X: x, Y: y})
			}
		}
	}
	return out
}

func strictlyBetween(v, a, b float64) bool {
	lo, hi := math.Min(a, b), math.Max(a, b)
	return v > lo && v < hi
}

func (b *builder) addInline() {
	cat := b.d.Catalog()
	size := 2 * b.cellMM
	for _, id := range b.d.InlineIDs() {
		ic, _ := b.d.InlineComponent(id)
		p, ok := b.d.Pipeline(ic.Pipeline)
		if !ok || !p.Routed() {
			continue
		}
		pts := b.pathPoints(p.Segments)
		at, _ := pointAt(pts, ic.Fraction)
		x, y := at.X-size/2, at.Y-size/2

		var prims []Primitive
		if it, ok := cat.InlineType(ic.Type); ok {
			if g, ok := cat.Glyph(it.Symbol); ok {
				prims = glyphPrimitives(g, x, y, size, size, weightSymbol)
			}
		}
		if prims == nil {
			prims = placeholderPrimitives(x, y, size, size, ic.Type)
		}
		for _, pr := range prims {
			b.add(LayerPiping, pr)
		}
		b.add(LayerPiping, Primitive{
			Op: "text", Points: []Pt{{X: at.X, Y: y - 1.0}},
			Text: id, Size: textSmall, Anchor: "middle",
		})
	}
}

// addLegend draws the bill of materials in the upper-left corner of the
// drawable area.
func (b *builder) addLegend() {
	rows := b.d.Legend()
	if len(rows) == 0 {
		return
	}
	cat := b.d.Catalog()

	x := b.margin + 2
	y := b.margin + 2
	boxW := 90.0
	headH := 6.0
	totalH := headH + float64(len(rows))*legendRowH

	b.add(LayerAnnotation, Primitive{
		Op: "rect", Points: []Pt{{X: x, Y: y}, {X: x + boxW, Y: y + totalH}}, Width: weightThin,
	})
	b.add(LayerAnnotation, Primitive{
		Op: "text", Points: []Pt{{X: x + 2, Y: y + 4.5}}, Text: "LEGEND", Size: textLabel, Anchor: "start",
	})
	b.add(LayerAnnotation, Primitive{
		Op: "line", Points: []Pt{{X: x, Y: y + headH}, {X: x + boxW, Y: y + headH}}, Width: weightThin,
	})

	for i, row := range rows {
		rowY := y + headH + float64(i)*legendRowH
		symX, symY, symS := x+1.5, rowY+1.5, legendRowH-3

		drawn := false
		if g, ok := cat.Glyph(row.Symbol); ok {
			for _, pr := range glyphPrimitives(g, symX, symY, symS, symS, weightThin) {
				b.add(LayerAnnotation, pr)
			}
			drawn = true
		}
		if !drawn {
			for _, pr := range placeholderPrimitives(symX, symY, symS, symS, "") {
				b.add(LayerAnnotation, pr)
			}
		}
		b.add(LayerAnnotation, Primitive{
			Op:     "text",
			Points: []Pt{{X: x + legendRowH, Y: rowY + legendRowH/2 + 1}},
			Text:   fmt.Sprintf("%s (%d)", row.Description, row.Count),
			Size:   textSmall, Anchor: "start",
		})
	}
}

// addTitleBlock draws the identification block in the lower-right
// corner, inside the frame.
func (b *builder) addTitleBlock(wmm, hmm float64) {
	tb := b.d.Title()
	inset := b.margin / 2
	blockW, blockH := 120.0, 40.0
	x := wmm - inset - blockW
	y := hmm - inset - blockH

	b.add(LayerAnnotation, Primitive{
		Op: "rect", Points: []Pt{{X: x, Y: y}, {X: x + blockW, Y: y + blockH}}, Width: weightProcess,
	})

	rowH := blockH / 4
	for i := 1; i < 4; i++ {
		b.add(LayerAnnotation, Primitive{
			Op:     "line",
			Points: []Pt{{X: x, Y: y + float64(i)*rowH}, {X: x + blockW, Y: y + float64(i)*rowH}},
			Width:  weightThin,
		})
	}
	colX := x + blockW*0.55
	b.add(LayerAnnotation, Primitive{
		Op: "line", Points: []Pt{{X: colX, Y: y + rowH}, {X: colX, Y: y + blockH}}, Width: weightThin,
	})

	put := func(px, py float64, s string, size float64) {
		if s == "" {
			return
		}
		b.add(LayerAnnotation, Primitive{
			Op: "text", Points: []Pt{{X: px, Y: py}}, Text: s, Size: size, Anchor: "start",
		})
	}

	labelled := func(label, v string) string {
		if v == "" {
			return ""
		}
		return label + " " + v
	}
	pair := func(a, b string) string {
		switch {
		case a == "":
			return b
		case b == "":
			return a
		}
		return a + "  " + b
	}

	put(x+2, y+rowH-2, tb.Client, textLabel)
	put(x+2, y+2*rowH-2, tb.Project, textLabel)
	put(x+2, y+3*rowH-2, tb.Title, textLabel)
	put(x+2, y+4*rowH-2, labelled("DWG", tb.DrawingNumber), textLabel)
	put(colX+2, y+2*rowH-2, pair(labelled("DRAWN", tb.DrawnBy), labelled("CHK", tb.CheckedBy)), textSmall)
	put(colX+2, y+3*rowH-2, pair(labelled("APPD", tb.ApprovedBy), labelled("REV", tb.Revision)), textSmall)
	put(colX+2, y+4*rowH-2, pair(tb.Date, string(tb.Standard)+" "+string(b.d.Opts().Sheet)), textSmall)
}
