package diagram

import (
	"github.com/dhconnelly/rtreego"

	"github.com/pnid-studio/backend/internal/models"
)

// spatialIndex tracks placed footprints in an R-tree keyed by tag.
// Rects are inset slightly so footprints that merely share an edge do
// not report as intersecting.
type spatialIndex struct {
	tree    *rtreego.Rtree
	entries map[string]*indexEntry
}

type indexEntry struct {
	tag    string
	rect   models.Rect
	bounds rtreego.Rect
}

func (e *indexEntry) Bounds() rtreego.Rect { return e.bounds }

const rectInset = 0.25

func newSpatialIndex() *spatialIndex {
	return &spatialIndex{
		tree:    rtreego.NewTree(2, 4, 16),
		entries: make(map[string]*indexEntry),
	}
}

func cellBounds(r models.Rect) rtreego.Rect {
	b, err := rtreego.NewRect(
		rtreego.Point{float64(r.X) + rectInset, float64(r.Y) + rectInset},
		[]float64{float64(r.W) - 2*rectInset, float64(r.H) - 2*rectInset},
	)
	if err != nil {
		// Footprints are at least 1x1, so lengths stay positive.
		panic(err)
	}
	return b
}

func (s *spatialIndex) insert(tag string, r models.Rect) {
	e := &indexEntry{tag: tag, rect: r, bounds: cellBounds(r)}
	s.entries[tag] = e
	s.tree.Insert(e)
}

func (s *spatialIndex) remove(tag string) {
	e, ok := s.entries[tag]
	if !ok {
		return
	}
	s.tree.Delete(e)
	delete(s.entries, tag)
}

func (s *spatialIndex) rename(oldTag, newTag string) {
	e, ok := s.entries[oldTag]
	if !ok {
		return
	}
	delete(s.entries, oldTag)
	e.tag = newTag
	s.entries[newTag] = e
}

// overlaps returns the tags whose footprints share a cell with r,
// excluding skipTag (the item being moved or rotated).
func (s *spatialIndex) overlaps(r models.Rect, skipTag string) []string {
	var hits []string
	for _, obj := range s.tree.SearchIntersect(cellBounds(r)) {
		e := obj.(*indexEntry)
		if e.tag == skipTag {
			continue
		}
		if e.rect.Intersects(r) {
			hits = append(hits, e.tag)
		}
	}
	return hits
}

// search returns the tags whose footprints intersect r.
func (s *spatialIndex) search(r models.Rect) []string {
	if r.W < 1 || r.H < 1 {
		return nil
	}
	var hits []string
	for _, obj := range s.tree.SearchIntersect(cellBounds(r)) {
		e := obj.(*indexEntry)
		if e.rect.Intersects(r) {
			hits = append(hits, e.tag)
		}
	}
	return hits
}

// each visits every indexed footprint.
func (s *spatialIndex) each(fn func(tag string, r models.Rect)) {
	for tag, e := range s.entries {
		fn(tag, e.rect)
	}
}

// rotatedSize returns the footprint dimensions after rotation.
func rotatedSize(w, h int, rot models.Rotation) (int, int) {
	if rot == models.Rotate90 || rot == models.Rotate270 {
		return h, w
	}
	return w, h
}

// rotatedOffset maps an unrotated footprint cell to its position after
// a clockwise rotation of the w x h footprint.
func rotatedOffset(off models.Point, w, h int, rot models.Rotation) models.Point {
	switch rot {
	case models.Rotate90:
		return models.Point{X: h - 1 - off.Y, Y: off.X}
	case models.Rotate180:
		return models.Point{X: w - 1 - off.X, Y: h - 1 - off.Y}
	case models.Rotate270:
		return models.Point{X: off.Y, Y: w - 1 - off.X}
	}
	return off
}

// footprint returns the cell rectangle equipment e occupies.
func (d *Diagram) footprint(e *models.Equipment) (models.Rect, bool) {
	t, ok := d.catalog.EquipmentType(e.Type)
	if !ok {
		return models.Rect{}, false
	}
	w, h := rotatedSize(t.Width, t.Height, e.Rotation)
	return models.Rect{X: e.At.X, Y: e.At.Y, W: w, H: h}, true
}

// Footprint returns the cell rectangle occupied by the tagged equipment.
func (d *Diagram) Footprint(tag string) (models.Rect, error) {
	e, ok := d.equipment[tag]
	if !ok {
		return models.Rect{}, rejectf(RejectUnknownTag, "no equipment %q", tag)
	}
	r, ok := d.footprint(e)
	if !ok {
		return models.Rect{}, rejectf(RejectUnknownType, "equipment %q has unknown type %q", tag, e.Type)
	}
	return r, nil
}

// inBounds reports whether a footprint rectangle fits the drawable area.
func (d *Diagram) inBounds(r models.Rect) bool {
	return r.X >= 0 && r.Y >= 0 && r.X+r.W <= d.cols && r.Y+r.H <= d.rows
}

// inSheet reports whether a single cell lies in the drawable area.
func (d *Diagram) inSheet(p models.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < d.cols && p.Y < d.rows
}

// PortPoint resolves a port reference to its absolute cell and outward
// direction, accounting for the equipment's rotation.
func (d *Diagram) PortPoint(ref models.PortRef) (models.Point, models.Direction, error) {
	e, ok := d.equipment[ref.Equipment]
	if !ok {
		return models.Point{}, "", rejectf(RejectUnknownTag, "no equipment %q", ref.Equipment)
	}
	t, ok := d.catalog.EquipmentType(e.Type)
	if !ok {
		return models.Point{}, "", rejectf(RejectUnknownType, "equipment %q has unknown type %q", ref.Equipment, e.Type)
	}
	for _, spec := range t.Ports {
		if spec.Name != ref.Port {
			continue
		}
		off := rotatedOffset(spec.Offset, t.Width, t.Height, e.Rotation)
		return models.Point{X: e.At.X + off.X, Y: e.At.Y + off.Y}, spec.Dir.Rotated(e.Rotation), nil
	}
	return models.Point{}, "", rejectf(RejectUnknownPort, "equipment %q has no port %q", ref.Equipment, ref.Port)
}

// exitPoint returns the cell one step outward from a port, where routed
// paths begin and end.
func (d *Diagram) exitPoint(ref models.PortRef) (models.Point, error) {
	p, dir, err := d.PortPoint(ref)
	if err != nil {
		return models.Point{}, err
	}
	dx, dy := dir.Delta()
	return p.Add(dx, dy), nil
}
