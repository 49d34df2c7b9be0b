package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pnid-studio/backend/internal/catalog"
	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
)

func newTestStore(t *testing.T) *DrawingStore {
	t.Helper()
	st, err := NewDrawingStore(t.TempDir(), 0, "")
	if err != nil {
		t.Fatalf("NewDrawingStore: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// stationSnapshot builds a realistic snapshot via the pump station
// template: 4 equipment, 3 pipelines.
func stationSnapshot(t *testing.T) models.Snapshot {
	t.Helper()
	d, err := diagram.New(catalog.New(), models.TitleBlock{DrawingNumber: "PW-1201", Title: "Pump station utilities"}, diagram.DefaultOptions())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := d.ApplyTemplate("pump-station", models.Point{X: 2, Y: 2}); err != nil {
		t.Fatalf("ApplyTemplate: %v", err)
	}
	return d.Snapshot()
}

func TestNewDrawingStoreCreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	st, err := NewDrawingStore(dir, 0, "")
	if err != nil {
		t.Fatalf("NewDrawingStore: %v", err)
	}
	defer st.Close()

	if _, err := os.Stat(filepath.Join(dir, "drawings.duckdb")); os.IsNotExist(err) {
		t.Error("expected database file to be created")
	}
}

func TestDrawingStoreSaveAndLoad(t *testing.T) {
	st := newTestStore(t)
	snap := stationSnapshot(t)

	rev1, err := st.SaveRevision("", snap, "initial layout")
	if err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}
	if rev1.DrawingID == "" {
		t.Fatal("expected a generated drawing ID")
	}
	if rev1.Seq != 1 {
		t.Errorf("expected seq 1, got %d", rev1.Seq)
	}
	if rev1.Equipment != 4 || rev1.Pipelines != 3 {
		t.Errorf("expected 4 equipment and 3 pipelines, got %d/%d", rev1.Equipment, rev1.Pipelines)
	}
	if rev1.SizeBytes <= 0 {
		t.Errorf("expected a non-empty payload, got %d bytes", rev1.SizeBytes)
	}

	edited := snap
	edited.Revision = 99
	rev2, err := st.SaveRevision(rev1.DrawingID, edited, "after rerouting")
	if err != nil {
		t.Fatalf("SaveRevision rev 2: %v", err)
	}
	if rev2.Seq != 2 {
		t.Errorf("expected seq 2, got %d", rev2.Seq)
	}
	if rev2.DrawingID != rev1.DrawingID {
		t.Errorf("expected revisions to share a drawing, got %s and %s", rev1.DrawingID, rev2.DrawingID)
	}

	// seq <= 0 loads the latest revision.
	latest, err := st.LoadRevision(rev1.DrawingID, 0)
	if err != nil {
		t.Fatalf("LoadRevision latest: %v", err)
	}
	if latest.Revision != 99 {
		t.Errorf("expected latest revision payload, got revision %d", latest.Revision)
	}

	first, err := st.LoadRevision(rev1.DrawingID, 1)
	if err != nil {
		t.Fatalf("LoadRevision seq 1: %v", err)
	}
	if first.Revision != snap.Revision {
		t.Errorf("expected original payload at seq 1, got revision %d", first.Revision)
	}
	if len(first.Equipment) != 4 || len(first.Pipelines) != 3 {
		t.Fatalf("expected payload to keep 4 equipment and 3 pipelines, got %d/%d", len(first.Equipment), len(first.Pipelines))
	}
	tags := make(map[string]bool, len(first.Equipment))
	for _, e := range first.Equipment {
		tags[e.Tag] = true
	}
	for _, want := range []string{"TK-101", "P-101", "P-102", "FCV-101"} {
		if !tags[want] {
			t.Errorf("expected payload to contain %s, got %v", want, tags)
		}
	}
}

func TestDrawingStoreListRevisions(t *testing.T) {
	st := newTestStore(t)
	snap := stationSnapshot(t)

	rev, err := st.SaveRevision("", snap, "first")
	if err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}
	for _, note := range []string{"second", "third"} {
		if _, err := st.SaveRevision(rev.DrawingID, snap, note); err != nil {
			t.Fatalf("SaveRevision %q: %v", note, err)
		}
	}

	// A fresh drawing allocates its own sequence.
	other, err := st.SaveRevision("", snap, "unrelated")
	if err != nil {
		t.Fatalf("SaveRevision other: %v", err)
	}
	if other.Seq != 1 {
		t.Errorf("expected new drawing to start at seq 1, got %d", other.Seq)
	}

	revs, err := st.ListRevisions(rev.DrawingID)
	if err != nil {
		t.Fatalf("ListRevisions: %v", err)
	}
	if len(revs) != 3 {
		t.Fatalf("expected 3 revisions, got %d", len(revs))
	}
	wantSeq := []int{3, 2, 1}
	wantNote := []string{"third", "second", "first"}
	for i, r := range revs {
		if r.Seq != wantSeq[i] {
			t.Errorf("revision %d: expected seq %d, got %d", i, wantSeq[i], r.Seq)
		}
		if r.Note != wantNote[i] {
			t.Errorf("revision %d: expected note %q, got %q", i, wantNote[i], r.Note)
		}
		if r.SizeBytes <= 0 {
			t.Errorf("revision %d: expected payload size, got %d", i, r.SizeBytes)
		}
	}
}

func TestDrawingStoreListDrawings(t *testing.T) {
	st := newTestStore(t)

	older := stationSnapshot(t)
	rev, err := st.SaveRevision("", older, "first")
	if err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}
	if _, err := st.SaveRevision(rev.DrawingID, older, "second"); err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}

	// updated_at has millisecond resolution; keep the drawings apart.
	time.Sleep(5 * time.Millisecond)

	newer := stationSnapshot(t)
	newer.Title.DrawingNumber = "PW-2000"
	if _, err := st.SaveRevision("", newer, "greenfield"); err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}

	list, err := st.ListDrawings(0)
	if err != nil {
		t.Fatalf("ListDrawings: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 drawings, got %d", len(list))
	}
	if list[0].DrawingNumber != "PW-2000" || list[1].DrawingNumber != "PW-1201" {
		t.Errorf("expected newest drawing first, got %s then %s", list[0].DrawingNumber, list[1].DrawingNumber)
	}
	if list[0].Revisions != 1 || list[1].Revisions != 2 {
		t.Errorf("expected revision counts 1 and 2, got %d and %d", list[0].Revisions, list[1].Revisions)
	}
	if list[1].Title != "Pump station utilities" {
		t.Errorf("expected drawing title to round-trip, got %q", list[1].Title)
	}
	if list[1].Sheet != "A3" {
		t.Errorf("expected sheet A3, got %s", list[1].Sheet)
	}

	trimmed, err := st.ListDrawings(1)
	if err != nil {
		t.Fatalf("ListDrawings limit 1: %v", err)
	}
	if len(trimmed) != 1 || trimmed[0].DrawingNumber != "PW-2000" {
		t.Errorf("expected limit to keep only the newest drawing, got %v", trimmed)
	}
}

func TestDrawingStoreLoadMissing(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.LoadRevision("no-such-drawing", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	rev, err := st.SaveRevision("", stationSnapshot(t), "")
	if err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}
	if _, err := st.LoadRevision(rev.DrawingID, 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown seq, got %v", err)
	}
}

func TestDrawingStoreDelete(t *testing.T) {
	st := newTestStore(t)
	rev, err := st.SaveRevision("", stationSnapshot(t), "doomed")
	if err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}

	if err := st.DeleteDrawing(rev.DrawingID); err != nil {
		t.Fatalf("DeleteDrawing: %v", err)
	}
	if revs, err := st.ListRevisions(rev.DrawingID); err != nil || len(revs) != 0 {
		t.Errorf("expected no revisions after delete, got %d (%v)", len(revs), err)
	}
	if _, err := st.LoadRevision(rev.DrawingID, 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.DeleteDrawing(rev.DrawingID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestDrawingStoreReopen(t *testing.T) {
	dir := t.TempDir()
	st, err := NewDrawingStore(dir, 0, "")
	if err != nil {
		t.Fatalf("NewDrawingStore: %v", err)
	}
	rev, err := st.SaveRevision("", stationSnapshot(t), "before restart")
	if err != nil {
		t.Fatalf("SaveRevision: %v", err)
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewDrawingStore(dir, 0, "")
	if err != nil {
		t.Fatalf("NewDrawingStore reopen: %v", err)
	}
	defer reopened.Close()

	snap, err := reopened.LoadRevision(rev.DrawingID, 0)
	if err != nil {
		t.Fatalf("LoadRevision after reopen: %v", err)
	}
	if len(snap.Equipment) != 4 {
		t.Errorf("expected persisted payload to survive reopen, got %d equipment", len(snap.Equipment))
	}
	list, err := reopened.ListDrawings(0)
	if err != nil {
		t.Fatalf("ListDrawings after reopen: %v", err)
	}
	if len(list) != 1 || list[0].ID != rev.DrawingID {
		t.Errorf("expected the saved drawing to be listed after reopen, got %v", list)
	}
}
