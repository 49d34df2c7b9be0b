package diagram

import (
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/pnid-studio/backend/internal/catalog"
	"github.com/pnid-studio/backend/internal/models"
)

// Snapshot captures the complete diagram state as plain data. Entity
// slices are sorted, so two equal diagrams produce identical snapshots
// byte for byte under either codec.
func (d *Diagram) Snapshot() models.Snapshot {
	snap := models.Snapshot{
		Version:       models.SnapshotVersion,
		Sheet:         d.opts.Sheet,
		GridSpacingMM: d.opts.GridSpacingMM,
		MarginMM:      d.opts.MarginMM,
		Title:         d.title,
		Revision:      d.revision,
		Equipment:     make([]models.Equipment, 0, len(d.equipment)),
		Pipelines:     make([]models.Pipeline, 0, len(d.pipelines)),
		Inline:        make([]models.InlineComponent, 0, len(d.inline)),
	}
	for _, tag := range d.EquipmentTags() {
		snap.Equipment = append(snap.Equipment, *d.equipment[tag])
	}
	for _, tag := range d.PipelineTags() {
		p := *d.pipelines[tag]
		p.Segments = append([]models.Segment(nil), p.Segments...)
		snap.Pipelines = append(snap.Pipelines, p)
	}
	for _, id := range d.InlineIDs() {
		snap.Inline = append(snap.Inline, *d.inline[id])
	}
	return snap
}

// Restore rebuilds a diagram from a snapshot, reconstructing the
// spatial index. Every referenced equipment type must exist in the
// catalog; routes and inline positions are taken as recorded.
func Restore(cat *catalog.Catalog, snap models.Snapshot, opts Options) (*Diagram, error) {
	if snap.Version != models.SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	opts.Sheet = snap.Sheet
	if snap.GridSpacingMM > 0 {
		opts.GridSpacingMM = snap.GridSpacingMM
	}
	// The drawable frame travels with the snapshot; a server configured
	// with a different margin must not shift restored geometry.
	if snap.MarginMM > 0 {
		opts.MarginMM = snap.MarginMM
	}
	d, err := New(cat, snap.Title, opts)
	if err != nil {
		return nil, err
	}

	for i := range snap.Equipment {
		e := snap.Equipment[i]
		t, ok := cat.EquipmentType(e.Type)
		if !ok {
			return nil, fmt.Errorf("snapshot references unknown equipment type %q (tag %s)", e.Type, e.Tag)
		}
		w, h := rotatedSize(t.Width, t.Height, e.Rotation)
		copied := e
		d.equipment[e.Tag] = &copied
		d.index.insert(e.Tag, models.Rect{X: e.At.X, Y: e.At.Y, W: w, H: h})
	}
	for i := range snap.Pipelines {
		p := snap.Pipelines[i]
		p.Segments = append([]models.Segment(nil), p.Segments...)
		d.pipelines[p.Tag] = &p
	}
	for i := range snap.Inline {
		ic := snap.Inline[i]
		ic.Fraction = clampFraction(ic.Fraction)
		d.inline[ic.ID] = &ic
	}
	d.revision = snap.Revision
	return d, nil
}

// MarshalSnapshot encodes a snapshot with the compact msgpack codec
// used for revision payloads and the dense wire endpoint.
func MarshalSnapshot(snap models.Snapshot) ([]byte, error) {
	data, err := msgpack.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// UnmarshalSnapshot decodes a msgpack snapshot payload.
func UnmarshalSnapshot(data []byte) (models.Snapshot, error) {
	var snap models.Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decoding snapshot: %w", err)
	}
	sortSnapshot(&snap)
	return snap, nil
}

// sortSnapshot restores canonical entity order after decoding payloads
// that may predate sorted encoding.
func sortSnapshot(snap *models.Snapshot) {
	sort.Slice(snap.Equipment, func(i, j int) bool { return snap.Equipment[i].Tag < snap.Equipment[j].Tag })
	sort.Slice(snap.Pipelines, func(i, j int) bool { return snap.Pipelines[i].Tag < snap.Pipelines[j].Tag })
	sort.Slice(snap.Inline, func(i, j int) bool { return snap.Inline[i].ID < snap.Inline[j].ID })
}
