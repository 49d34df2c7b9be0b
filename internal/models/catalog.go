package models

// Category groups equipment types for validation and legend ordering.
type Category string

const (
	CategoryEquipment  Category = "equipment"  // pumps, exchangers, filters
	CategoryVessel     Category = "vessel"     // tanks, drums, columns
	CategoryInstrument Category = "instrument" // field and panel instruments
	CategoryConnector  Category = "connector"  // off-page connectors
)

// LineKind classifies a pipeline for routing style and analysis.
type LineKind string

const (
	LineProcess    LineKind = "process"
	LineInstrument LineKind = "instrument"
	LineElectric   LineKind = "electric"
)

// PortSpec is a connection point on an equipment type, in unrotated
// footprint coordinates. Offset is the port's cell within the footprint;
// Dir is the outward normal a pipe leaves through.
type PortSpec struct {
	Name   string    `json:"name"`
	Offset Point     `json:"offset"`
	Dir    Direction `json:"dir"`
}

// EquipmentType is one data-driven catalog record. All behavioral
// differences between types live in these fields, not in Go types.
type EquipmentType struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Category    Category   `json:"category"`
	TagPrefix   string     `json:"tagPrefix"` // "P" for pumps, "FT" for flow transmitters
	Width       int        `json:"width"`     // footprint, cells
	Height      int        `json:"height"`
	Symbol      string     `json:"symbol"` // glyph ID
	Ports       []PortSpec `json:"ports"`
}

// PipelineClass is a catalog record for a line class. Size, service and
// material feed the ISA-style line label.
type PipelineClass struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Kind        LineKind `json:"kind"`
	TagPrefix   string   `json:"tagPrefix"` // "L" process lines, "S" signal lines
	Service     string   `json:"service"`   // "PG", "PW", "IA"
	SizeInches  string   `json:"sizeInches"`
	Material    string   `json:"material"` // "CS", "SS"
}

// InlineType is a catalog record for a component mounted on a pipeline
// (valves, reducers, sight glasses).
type InlineType struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	TagPrefix   string   `json:"tagPrefix"`
	Symbol      string   `json:"symbol"`
	Kind        LineKind `json:"kind"` // line kind the component mounts on
}

// Glyph is a drawable symbol: strokes in a unit box (0..1 on both axes)
// that renderers scale to the placed footprint.
type Glyph struct {
	ID      string   `json:"id"`
	Strokes []Stroke `json:"strokes"`
}

// Stroke is one primitive of a glyph. Which fields apply depends on Op.
type Stroke struct {
	Op     string   `json:"op"`               // "line", "polyline", "circle", "rect", "text"
	Points []PointF `json:"points,omitempty"` // line/polyline/rect (two corners)
	Center PointF   `json:"center,omitempty"` // circle
	R      float64  `json:"r,omitempty"`      // circle radius
	Text   string   `json:"text,omitempty"`   // text op
	Filled bool     `json:"filled,omitempty"`
}

// PointF is a position in glyph unit space.
type PointF struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
