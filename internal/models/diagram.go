package models

// SheetSize is an ISO A-series drawing sheet, landscape.
type SheetSize string

const (
	SheetA3 SheetSize = "A3"
	SheetA2 SheetSize = "A2"
	SheetA1 SheetSize = "A1"
	SheetA0 SheetSize = "A0"
)

// SheetDimensions returns the sheet width and height in millimetres.
func SheetDimensions(s SheetSize) (w, h int, ok bool) {
	switch s {
	case SheetA3:
		return 420, 297, true
	case SheetA2:
		return 594, 420, true
	case SheetA1:
		return 841, 594, true
	case SheetA0:
		return 1189, 841, true
	}
	return 0, 0, false
}

// DrawingStandard selects the symbol and title block convention.
type DrawingStandard string

const (
	StandardISA DrawingStandard = "ISA"
	StandardDIN DrawingStandard = "DIN"
	StandardISO DrawingStandard = "ISO"
	StandardJIS DrawingStandard = "JIS"
)

// PortRef addresses one port of one placed equipment item.
type PortRef struct {
	Equipment string `json:"equipment" msgpack:"equipment"`
	Port      string `json:"port" msgpack:"port"`
}

// Equipment is a placed catalog item. At is the top-left cell of the
// rotated footprint; ports resolve through the catalog at query time.
type Equipment struct {
	Tag      string   `json:"tag" msgpack:"tag"`
	Type     string   `json:"type" msgpack:"type"`
	At       Point    `json:"at" msgpack:"at"`
	Rotation Rotation `json:"rotation" msgpack:"rotation"`
}

// Pipeline connects two equipment ports. Segments is empty until the
// router has produced a path; the path runs between the ports' exit
// cells, one cell out from each port along its normal.
type Pipeline struct {
	Tag      string    `json:"tag" msgpack:"tag"`
	Class    string    `json:"class" msgpack:"class"`
	Label    string    `json:"label" msgpack:"label"` // `2"-PG-101-CS` style
	From     PortRef   `json:"from" msgpack:"from"`
	To       PortRef   `json:"to" msgpack:"to"`
	Segments []Segment `json:"segments,omitempty" msgpack:"segments"`
}

// Routed reports whether the pipeline currently has a path.
func (p *Pipeline) Routed() bool {
	return len(p.Segments) > 0
}

// InlineComponent sits on a pipeline at a fractional position along its
// routed length. Fraction is clamped to [0,1] on write.
type InlineComponent struct {
	ID       string  `json:"id" msgpack:"id"`
	Type     string  `json:"type" msgpack:"type"`
	Pipeline string  `json:"pipeline" msgpack:"pipeline"`
	Fraction float64 `json:"fraction" msgpack:"fraction"`
}

// TitleBlock carries the drawing identification fields rendered in the
// lower-right corner of every sheet.
type TitleBlock struct {
	Client        string          `json:"client" msgpack:"client"`
	Project       string          `json:"project" msgpack:"project"`
	DrawingNumber string          `json:"drawingNumber" msgpack:"drawingNumber"`
	Title         string          `json:"title" msgpack:"title"`
	DrawnBy       string          `json:"drawnBy" msgpack:"drawnBy"`
	CheckedBy     string          `json:"checkedBy" msgpack:"checkedBy"`
	ApprovedBy    string          `json:"approvedBy" msgpack:"approvedBy"`
	Revision      string          `json:"revision" msgpack:"revision"`
	Date          string          `json:"date" msgpack:"date"`
	Standard      DrawingStandard `json:"standard" msgpack:"standard"`
}
