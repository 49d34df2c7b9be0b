// Package storage keeps rendered export artifacts on the local
// filesystem, pruning the oldest once a retention limit is reached.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pnid-studio/backend/internal/models"
)

// Archive stores export artifacts under a single directory.
type Archive struct {
	mu     sync.RWMutex
	dir    string
	retain int
	files  map[string]*models.ExportInfo
}

// NewArchive creates an Archive rooted at dir. A retain limit of zero
// or less keeps every artifact.
func NewArchive(dir string, retain int) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating exports directory: %w", err)
	}

	return &Archive{
		dir:    dir,
		retain: retain,
		files:  make(map[string]*models.ExportInfo),
	}, nil
}

// Save writes one rendered artifact to disk.
func (a *Archive) Save(name, format string, data []byte) (*models.ExportInfo, error) {
	id := uuid.New().String()
	path := filepath.Join(a.dir, id+"."+format)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing export file: %w", err)
	}

	info := &models.ExportInfo{
		ID:        id,
		Name:      name,
		Format:    format,
		Size:      int64(len(data)),
		CreatedAt: time.Now(),
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.files[id] = info
	a.pruneLocked()

	return info, nil
}

// List returns the most recent artifacts.
func (a *Archive) List(limit int) []*models.ExportInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	list := make([]*models.ExportInfo, 0, len(a.files))
	for _, info := range a.files {
		list = append(list, info)
	}

	// Sort by CreatedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list
}

// Get retrieves artifact metadata by ID.
func (a *Archive) Get(id string) (*models.ExportInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	info, ok := a.files[id]
	if !ok {
		return nil, fmt.Errorf("export not found: %s", id)
	}

	return info, nil
}

// Path returns the absolute path to an artifact's file.
func (a *Archive) Path(id string) (string, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	info, ok := a.files[id]
	if !ok {
		return "", fmt.Errorf("export not found: %s", id)
	}

	return filepath.Join(a.dir, info.ID+"."+info.Format), nil
}

// Count returns the number of retained artifacts.
func (a *Archive) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.files)
}

// pruneLocked drops the oldest artifacts beyond the retention limit.
// Callers must hold the write lock.
func (a *Archive) pruneLocked() {
	if a.retain <= 0 {
		return
	}
	for len(a.files) > a.retain {
		var oldestID string
		var oldest time.Time
		for id, info := range a.files {
			if oldestID == "" || info.CreatedAt.Before(oldest) {
				oldestID = id
				oldest = info.CreatedAt
			}
		}
		info := a.files[oldestID]
		path := filepath.Join(a.dir, info.ID+"."+info.Format)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			// Keep the metadata so a later prune can retry the delete.
			return
		}
		delete(a.files, oldestID)
	}
}
