package diagram

import (
	"fmt"
	"strings"

	"github.com/pnid-studio/backend/internal/models"
)

// Place puts a new catalog item on the grid. The anchor is the top-left
// cell of the rotated footprint. On success the item is committed with
// a fresh tag; on rejection the diagram is unchanged.
func (d *Diagram) Place(typeID string, at models.Point, rot models.Rotation) (*models.Equipment, error) {
	t, ok := d.catalog.EquipmentType(typeID)
	if !ok {
		return nil, rejectf(RejectUnknownType, "no equipment type %q", typeID)
	}
	if !rot.Valid() {
		return nil, rejectf(RejectBadRotation, "rotation must be a quarter turn, got %d", rot)
	}
	w, h := rotatedSize(t.Width, t.Height, rot)
	r := models.Rect{X: at.X, Y: at.Y, W: w, H: h}
	if !d.inBounds(r) {
		return nil, rejectf(RejectOutOfBounds, "footprint %dx%d at (%d,%d) leaves the %s sheet", w, h, at.X, at.Y, d.opts.Sheet)
	}
	if hits := d.index.overlaps(r, ""); len(hits) > 0 {
		return nil, rejectf(RejectOverlap, "footprint overlaps %s", strings.Join(hits, ", "))
	}

	e := &models.Equipment{
		Tag:      d.NextEquipmentTag(t.TagPrefix),
		Type:     typeID,
		At:       at,
		Rotation: rot,
	}
	d.equipment[e.Tag] = e
	d.index.insert(e.Tag, r)
	d.revision++
	return e, nil
}

// Move relocates placed equipment. Routes of attached pipelines are
// cleared on success since their endpoints moved.
func (d *Diagram) Move(tag string, to models.Point) error {
	e, ok := d.equipment[tag]
	if !ok {
		return rejectf(RejectUnknownTag, "no equipment %q", tag)
	}
	cur, ok := d.footprint(e)
	if !ok {
		return rejectf(RejectUnknownType, "equipment %q has unknown type %q", tag, e.Type)
	}
	r := models.Rect{X: to.X, Y: to.Y, W: cur.W, H: cur.H}
	if !d.inBounds(r) {
		return rejectf(RejectOutOfBounds, "footprint %dx%d at (%d,%d) leaves the %s sheet", r.W, r.H, to.X, to.Y, d.opts.Sheet)
	}
	if hits := d.index.overlaps(r, tag); len(hits) > 0 {
		return rejectf(RejectOverlap, "footprint overlaps %s", strings.Join(hits, ", "))
	}

	e.At = to
	d.index.remove(tag)
	d.index.insert(tag, r)
	d.clearRoutesTouching(tag)
	d.revision++
	return nil
}

// Rotate turns placed equipment to an absolute quarter-turn rotation,
// keeping the anchor cell. Attached routes are cleared on success.
func (d *Diagram) Rotate(tag string, rot models.Rotation) error {
	e, ok := d.equipment[tag]
	if !ok {
		return rejectf(RejectUnknownTag, "no equipment %q", tag)
	}
	if !rot.Valid() {
		return rejectf(RejectBadRotation, "rotation must be a quarter turn, got %d", rot)
	}
	t, ok := d.catalog.EquipmentType(e.Type)
	if !ok {
		return rejectf(RejectUnknownType, "equipment %q has unknown type %q", tag, e.Type)
	}
	w, h := rotatedSize(t.Width, t.Height, rot)
	r := models.Rect{X: e.At.X, Y: e.At.Y, W: w, H: h}
	if !d.inBounds(r) {
		return rejectf(RejectOutOfBounds, "rotated footprint %dx%d leaves the %s sheet", w, h, d.opts.Sheet)
	}
	if hits := d.index.overlaps(r, tag); len(hits) > 0 {
		return rejectf(RejectOverlap, "rotated footprint overlaps %s", strings.Join(hits, ", "))
	}

	e.Rotation = rot
	d.index.remove(tag)
	d.index.insert(tag, r)
	d.clearRoutesTouching(tag)
	d.revision++
	return nil
}

func (d *Diagram) clearRoutesTouching(tag string) {
	for _, p := range d.pipelines {
		if p.From.Equipment == tag || p.To.Equipment == tag {
			p.Segments = nil
		}
	}
}

// Connect creates an unrouted pipeline between two ports. Both ports
// must resolve and must belong to two distinct equipment items.
func (d *Diagram) Connect(classID string, from, to models.PortRef) (*models.Pipeline, error) {
	pc, ok := d.catalog.PipelineClass(classID)
	if !ok {
		return nil, rejectf(RejectUnknownClass, "no pipeline class %q", classID)
	}
	if from.Equipment == to.Equipment {
		return nil, rejectf(RejectSelfConnection, "pipeline endpoints are on the same equipment")
	}
	if _, _, err := d.PortPoint(from); err != nil {
		return nil, err
	}
	if _, _, err := d.PortPoint(to); err != nil {
		return nil, err
	}

	tag := d.NextPipelineTag(pc.TagPrefix)
	p := &models.Pipeline{
		Tag:   tag,
		Class: classID,
		Label: lineLabel(pc, tag),
		From:  from,
		To:    to,
	}
	d.pipelines[tag] = p
	d.revision++
	return p, nil
}

// lineLabel builds the ISA-style line identification for a pipeline:
// size-service-number-material for sized lines, service-number for
// signal lines.
func lineLabel(pc models.PipelineClass, tag string) string {
	_, n, _, ok := SplitTag(tag)
	if !ok {
		return tag
	}
	if pc.SizeInches == "" {
		return fmt.Sprintf("%s-%d", pc.Service, n)
	}
	return fmt.Sprintf("%s\"-%s-%d-%s", pc.SizeInches, pc.Service, n, pc.Material)
}

// AttachInline mounts an inline component on a pipeline at a fraction
// of its routed length. The fraction is clamped to [0,1]. The component
// type must suit the pipeline's line kind.
func (d *Diagram) AttachInline(typeID, pipelineTag string, fraction float64) (*models.InlineComponent, error) {
	it, ok := d.catalog.InlineType(typeID)
	if !ok {
		return nil, rejectf(RejectUnknownType, "no inline type %q", typeID)
	}
	p, ok := d.pipelines[pipelineTag]
	if !ok {
		return nil, rejectf(RejectUnknownPipeline, "no pipeline %q", pipelineTag)
	}
	pc, ok := d.catalog.PipelineClass(p.Class)
	if !ok {
		return nil, rejectf(RejectUnknownClass, "pipeline %q has unknown class %q", pipelineTag, p.Class)
	}
	if it.Kind != pc.Kind {
		return nil, rejectf(RejectKindMismatch, "%s mounts on %s lines, pipeline %q is %s", typeID, it.Kind, pipelineTag, pc.Kind)
	}

	ic := &models.InlineComponent{
		ID:       d.NextInlineID(it.TagPrefix),
		Type:     typeID,
		Pipeline: pipelineTag,
		Fraction: clampFraction(fraction),
	}
	d.inline[ic.ID] = ic
	d.revision++
	return ic, nil
}

// SetInlineFraction moves an inline component along its pipeline.
func (d *Diagram) SetInlineFraction(id string, fraction float64) error {
	ic, ok := d.inline[id]
	if !ok {
		return rejectf(RejectUnknownTag, "no inline component %q", id)
	}
	ic.Fraction = clampFraction(fraction)
	d.revision++
	return nil
}

func clampFraction(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
