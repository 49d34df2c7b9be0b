// manager_test.go - Tests for the export artifact archive
package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestArchiveSaveAndGet(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}

	data := []byte("<svg></svg>")
	info, err := archive.Save("PW-1201", "svg", data)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if info.ID == "" || info.Name != "PW-1201" || info.Format != "svg" {
		t.Errorf("unexpected info %+v", info)
	}
	if info.Size != int64(len(data)) {
		t.Errorf("expected size %d, got %d", len(data), info.Size)
	}

	got, err := archive.Get(info.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.ID != info.ID {
		t.Errorf("expected %s, got %s", info.ID, got.ID)
	}

	path, err := archive.Path(info.ID)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading artifact: %v", err)
	}
	if string(onDisk) != string(data) {
		t.Error("artifact content does not match")
	}

	if _, err := archive.Get("missing"); err == nil {
		t.Error("expected an error for an unknown ID")
	}
	if _, err := archive.Path("missing"); err == nil {
		t.Error("expected an error for an unknown ID")
	}
}

func TestArchiveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	if _, err := NewArchive(dir, 5); err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("expected directory to exist: %v", err)
	}
}

func TestArchiveListOrder(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}

	var ids []string
	for i := 0; i < 3; i++ {
		info, err := archive.Save("drawing", "svg", []byte("x"))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, info.ID)
		time.Sleep(time.Millisecond)
	}

	list := archive.List(0)
	if len(list) != 3 {
		t.Fatalf("expected 3 artifacts, got %d", len(list))
	}
	// Newest first.
	if list[0].ID != ids[2] || list[2].ID != ids[0] {
		t.Errorf("unexpected order %s %s %s", list[0].ID, list[1].ID, list[2].ID)
	}

	limited := archive.List(2)
	if len(limited) != 2 || limited[0].ID != ids[2] {
		t.Errorf("unexpected limited list %+v", limited)
	}
}

func TestArchivePrunesOldest(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewArchive(dir, 2)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}

	var ids []string
	for i := 0; i < 4; i++ {
		info, err := archive.Save("drawing", "png", []byte("data"))
		if err != nil {
			t.Fatalf("Save: %v", err)
		}
		ids = append(ids, info.ID)
		time.Sleep(time.Millisecond)
	}

	if archive.Count() != 2 {
		t.Fatalf("expected 2 retained artifacts, got %d", archive.Count())
	}
	for _, id := range ids[:2] {
		if _, err := archive.Get(id); err == nil {
			t.Errorf("expected %s to be pruned", id)
		}
		if _, err := os.Stat(filepath.Join(dir, id+".png")); !os.IsNotExist(err) {
			t.Errorf("expected file of %s to be removed", id)
		}
	}
	for _, id := range ids[2:] {
		if _, err := archive.Get(id); err != nil {
			t.Errorf("expected %s to survive: %v", id, err)
		}
	}
}

func TestArchiveUnlimitedRetention(t *testing.T) {
	archive, err := NewArchive(t.TempDir(), 0)
	if err != nil {
		t.Fatalf("NewArchive: %v", err)
	}
	for i := 0; i < 5; i++ {
		if _, err := archive.Save("d", "dxf", []byte("x")); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	if archive.Count() != 5 {
		t.Errorf("expected 5 artifacts, got %d", archive.Count())
	}
}
