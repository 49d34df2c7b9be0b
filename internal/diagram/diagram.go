// Package diagram implements the P&ID working model: placement on the
// snap grid, auto-tagging, orthogonal pipe routing, validation, legend
// generation and serialization. A Diagram is owned by one session and
// is not safe for concurrent use; the session layer serializes access.
package diagram

import (
	"errors"
	"fmt"
	"sort"

	"github.com/pnid-studio/backend/internal/catalog"
	"github.com/pnid-studio/backend/internal/models"
)

// Rejection is returned when a mutation fails validation. The diagram
// is unchanged; the code is stable for API mapping.
type Rejection struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// Rejection codes.
const (
	RejectUnknownType     = "UNKNOWN_TYPE"
	RejectUnknownClass    = "UNKNOWN_CLASS"
	RejectUnknownTag      = "UNKNOWN_TAG"
	RejectUnknownPort     = "UNKNOWN_PORT"
	RejectUnknownPipeline = "UNKNOWN_PIPELINE"
	RejectOutOfBounds     = "OUT_OF_BOUNDS"
	RejectOverlap         = "OVERLAP"
	RejectBadRotation     = "BAD_ROTATION"
	RejectDuplicateTag    = "DUPLICATE_TAG"
	RejectSelfConnection  = "SELF_CONNECTION"
	RejectKindMismatch    = "KIND_MISMATCH"
	RejectBadSheet        = "BAD_SHEET"
)

func rejectf(code, format string, args ...any) *Rejection {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrUnroutable is returned when the router cannot produce an
// orthogonal path between two ports within its expansion budget.
var ErrUnroutable = errors.New("no orthogonal path found")

// CrossingPolicy controls whether routed lines may cross each other.
type CrossingPolicy string

const (
	// CrossingAllow lets paths cross existing lines at a cost penalty;
	// crossings get jog markers at render time.
	CrossingAllow CrossingPolicy = "allow"
	// CrossingStrict treats every routed cell as an obstacle.
	CrossingStrict CrossingPolicy = "strict"
)

// Options fix the drawing frame and router behavior for a diagram.
type Options struct {
	Sheet         models.SheetSize
	GridSpacingMM int
	MarginMM      int
	Crossing      CrossingPolicy
	MaxExpansions int
}

// DefaultOptions returns the A3 drawing frame used when a session does
// not specify one.
func DefaultOptions() Options {
	return Options{
		Sheet:         models.SheetA3,
		GridSpacingMM: 10,
		MarginMM:      30,
		Crossing:      CrossingAllow,
		MaxExpansions: 20000,
	}
}

func (o *Options) applyDefaults() {
	def := DefaultOptions()
	if o.Sheet == "" {
		o.Sheet = def.Sheet
	}
	if o.GridSpacingMM <= 0 {
		o.GridSpacingMM = def.GridSpacingMM
	}
	if o.MarginMM <= 0 {
		o.MarginMM = def.MarginMM
	}
	if o.Crossing == "" {
		o.Crossing = def.Crossing
	}
	if o.MaxExpansions <= 0 {
		o.MaxExpansions = def.MaxExpansions
	}
}

// Diagram is one P&ID under construction. All mutations validate first
// and leave the diagram untouched on rejection.
type Diagram struct {
	catalog *catalog.Catalog
	opts    Options

	title     models.TitleBlock
	revision  int
	equipment map[string]*models.Equipment
	pipelines map[string]*models.Pipeline
	inline    map[string]*models.InlineComponent

	index *spatialIndex
	cols  int // drawable width, cells
	rows  int // drawable height, cells
}

// New creates an empty diagram on the given sheet.
func New(cat *catalog.Catalog, title models.TitleBlock, opts Options) (*Diagram, error) {
	opts.applyDefaults()
	w, h, ok := models.SheetDimensions(opts.Sheet)
	if !ok {
		return nil, rejectf(RejectBadSheet, "unknown sheet size %q", opts.Sheet)
	}
	if title.Standard == "" {
		title.Standard = models.StandardISA
	}
	d := &Diagram{
		catalog:   cat,
		opts:      opts,
		title:     title,
		equipment: make(map[string]*models.Equipment),
		pipelines: make(map[string]*models.Pipeline),
		inline:    make(map[string]*models.InlineComponent),
		index:     newSpatialIndex(),
		cols:      (w - 2*opts.MarginMM) / opts.GridSpacingMM,
		rows:      (h - 2*opts.MarginMM) / opts.GridSpacingMM,
	}
	return d, nil
}

// Catalog returns the component library the diagram resolves types against.
func (d *Diagram) Catalog() *catalog.Catalog { return d.catalog }

// Opts returns the drawing frame options.
func (d *Diagram) Opts() Options { return d.opts }

// Title returns the title block.
func (d *Diagram) Title() models.TitleBlock { return d.title }

// SetTitle replaces the title block.
func (d *Diagram) SetTitle(tb models.TitleBlock) {
	if tb.Standard == "" {
		tb.Standard = models.StandardISA
	}
	d.title = tb
	d.revision++
}

// Revision returns the mutation counter. It increments once per
// committed change.
func (d *Diagram) Revision() int { return d.revision }

// GridSize returns the drawable area in cells.
func (d *Diagram) GridSize() (cols, rows int) { return d.cols, d.rows }

// Equipment returns the placed item with the given tag.
func (d *Diagram) Equipment(tag string) (*models.Equipment, bool) {
	e, ok := d.equipment[tag]
	return e, ok
}

// Pipeline returns the pipeline with the given tag.
func (d *Diagram) Pipeline(tag string) (*models.Pipeline, bool) {
	p, ok := d.pipelines[tag]
	return p, ok
}

// InlineComponent returns the inline component with the given ID.
func (d *Diagram) InlineComponent(id string) (*models.InlineComponent, bool) {
	ic, ok := d.inline[id]
	return ic, ok
}

// EquipmentTags returns all equipment tags in sorted order.
func (d *Diagram) EquipmentTags() []string {
	tags := make([]string, 0, len(d.equipment))
	for tag := range d.equipment {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// PipelineTags returns all pipeline tags in sorted order.
func (d *Diagram) PipelineTags() []string {
	tags := make([]string, 0, len(d.pipelines))
	for tag := range d.pipelines {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// InlineIDs returns all inline component IDs in sorted order.
func (d *Diagram) InlineIDs() []string {
	ids := make([]string, 0, len(d.inline))
	for id := range d.inline {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Counts returns entity counts for session listings.
func (d *Diagram) Counts() (equipment, pipelines, inline int) {
	return len(d.equipment), len(d.pipelines), len(d.inline)
}

// RemoveEquipment deletes a placed item. Pipelines bound to its ports
// stay on the diagram with their routes cleared; the validator reports
// them as dangling until reconnected or removed.
func (d *Diagram) RemoveEquipment(tag string) error {
	e, ok := d.equipment[tag]
	if !ok {
		return rejectf(RejectUnknownTag, "no equipment %q", tag)
	}
	delete(d.equipment, tag)
	d.index.remove(e.Tag)
	for _, p := range d.pipelines {
		if p.From.Equipment == tag || p.To.Equipment == tag {
			p.Segments = nil
		}
	}
	d.revision++
	return nil
}

// RemovePipeline deletes a pipeline and every inline component mounted
// on it.
func (d *Diagram) RemovePipeline(tag string) error {
	if _, ok := d.pipelines[tag]; !ok {
		return rejectf(RejectUnknownPipeline, "no pipeline %q", tag)
	}
	delete(d.pipelines, tag)
	for id, ic := range d.inline {
		if ic.Pipeline == tag {
			delete(d.inline, id)
		}
	}
	d.revision++
	return nil
}

// RemoveInline deletes one inline component.
func (d *Diagram) RemoveInline(id string) error {
	if _, ok := d.inline[id]; !ok {
		return rejectf(RejectUnknownTag, "no inline component %q", id)
	}
	delete(d.inline, id)
	d.revision++
	return nil
}

// Rename changes an equipment tag. The new tag must be untaken in the
// equipment namespace; pipeline port references follow the rename.
func (d *Diagram) Rename(oldTag, newTag string) error {
	e, ok := d.equipment[oldTag]
	if !ok {
		return rejectf(RejectUnknownTag, "no equipment %q", oldTag)
	}
	if newTag == "" {
		return rejectf(RejectDuplicateTag, "empty tag")
	}
	if newTag == oldTag {
		return nil
	}
	if _, taken := d.equipment[newTag]; taken {
		return rejectf(RejectDuplicateTag, "tag %q already in use", newTag)
	}
	delete(d.equipment, oldTag)
	e.Tag = newTag
	d.equipment[newTag] = e
	d.index.rename(oldTag, newTag)
	for _, p := range d.pipelines {
		if p.From.Equipment == oldTag {
			p.From.Equipment = newTag
		}
		if p.To.Equipment == oldTag {
			p.To.Equipment = newTag
		}
	}
	d.revision++
	return nil
}

// QueryRegion returns the tags of equipment whose footprints intersect
// the given cell rectangle, sorted.
func (d *Diagram) QueryRegion(r models.Rect) []string {
	tags := d.index.search(r)
	sort.Strings(tags)
	return tags
}
