// Package store persists drawing revisions in an embedded DuckDB file.
// Revision payloads are msgpack-encoded snapshots; metadata columns
// support listings without decoding payloads.
package store

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/marcboeker/go-duckdb"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/pnid-studio/backend/internal/models"
)

// DrawingStore is the persistent drawing archive.
type DrawingStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.Mutex // serializes revision sequence allocation
}

// NewDrawingStore opens (or creates) the archive database under dataDir.
// Zero threads or an empty memoryLimit fall back to modest defaults;
// revision payloads are small, the store never needs much headroom.
func NewDrawingStore(dataDir string, threads int, memoryLimit string) (*DrawingStore, error) {
	if threads <= 0 {
		threads = 2
	}
	if memoryLimit == "" {
		memoryLimit = "256MB"
	}
	dbPath := filepath.Join(dataDir, "drawings.duckdb")
	fmt.Printf("[DrawingStore] Opening database at: %s\n", dbPath)

	connector, err := duckdb.NewConnector(dbPath, func(execer driver.ExecerContext) error {
		pragmas := []string{
			fmt.Sprintf("PRAGMA memory_limit='%s'", memoryLimit),
			fmt.Sprintf("PRAGMA threads=%d", threads),
			"PRAGMA enable_progress_bar=false",
		}
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS drawings (
			id             VARCHAR PRIMARY KEY,
			drawing_number VARCHAR NOT NULL,
			title          VARCHAR,
			sheet          VARCHAR NOT NULL,
			updated_at     BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS revisions (
			drawing_id      VARCHAR NOT NULL,
			seq             INTEGER NOT NULL,
			note            VARCHAR,
			equipment_count INTEGER NOT NULL,
			pipeline_count  INTEGER NOT NULL,
			created_at      BIGINT NOT NULL,
			payload         BLOB NOT NULL,
			PRIMARY KEY (drawing_id, seq)
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	fmt.Printf("[DrawingStore] Ready\n")
	return &DrawingStore{db: db, dbPath: dbPath}, nil
}

// Close releases the database handle.
func (s *DrawingStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveRevision appends a snapshot as the next revision of a drawing.
// An empty drawingID starts a new drawing. Returns the revision record.
func (s *DrawingStore) SaveRevision(drawingID string, snap models.Snapshot, note string) (models.RevisionInfo, error) {
	payload, err := msgpack.Marshal(snap)
	if err != nil {
		return models.RevisionInfo{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	if drawingID == "" {
		drawingID = uuid.New().String()
	}
	now := time.Now().UnixMilli()

	s.mu.Lock()
	defer s.mu.Unlock()

	var seq int
	err = s.db.QueryRow(`SELECT COALESCE(MAX(seq), 0) + 1 FROM revisions WHERE drawing_id = ?`, drawingID).Scan(&seq)
	if err != nil {
		return models.RevisionInfo{}, fmt.Errorf("allocating revision number: %w", err)
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO drawings (id, drawing_number, title, sheet, updated_at) VALUES (?, ?, ?, ?, ?)`,
		drawingID, snap.Title.DrawingNumber, snap.Title.Title, string(snap.Sheet), now)
	if err != nil {
		return models.RevisionInfo{}, fmt.Errorf("upserting drawing: %w", err)
	}

	_, err = s.db.Exec(`INSERT INTO revisions (drawing_id, seq, note, equipment_count, pipeline_count, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		drawingID, seq, note, len(snap.Equipment), len(snap.Pipelines), now, payload)
	if err != nil {
		return models.RevisionInfo{}, fmt.Errorf("inserting revision: %w", err)
	}

	fmt.Printf("[DrawingStore] Saved %s rev %d (%d equipment, %d pipelines)\n",
		drawingID[:8], seq, len(snap.Equipment), len(snap.Pipelines))

	return models.RevisionInfo{
		DrawingID: drawingID,
		Seq:       seq,
		Note:      note,
		Equipment: len(snap.Equipment),
		Pipelines: len(snap.Pipelines),
		CreatedAt: now,
		SizeBytes: len(payload),
	}, nil
}

// LoadRevision fetches a revision payload and decodes it. seq <= 0
// loads the latest revision.
func (s *DrawingStore) LoadRevision(drawingID string, seq int) (models.Snapshot, error) {
	var payload []byte
	var err error
	if seq <= 0 {
		err = s.db.QueryRow(`SELECT payload FROM revisions WHERE drawing_id = ? ORDER BY seq DESC LIMIT 1`, drawingID).Scan(&payload)
	} else {
		err = s.db.QueryRow(`SELECT payload FROM revisions WHERE drawing_id = ? AND seq = ?`, drawingID, seq).Scan(&payload)
	}
	if err == sql.ErrNoRows {
		return models.Snapshot{}, fmt.Errorf("drawing %s revision %d: %w", drawingID, seq, ErrNotFound)
	}
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("loading revision: %w", err)
	}

	var snap models.Snapshot
	if err := msgpack.Unmarshal(payload, &snap); err != nil {
		return models.Snapshot{}, fmt.Errorf("decoding snapshot payload: %w", err)
	}
	return snap, nil
}

// ErrNotFound reports a missing drawing or revision.
var ErrNotFound = fmt.Errorf("not found")

// ListDrawings returns the most recently updated drawings.
func (s *DrawingStore) ListDrawings(limit int) ([]models.DrawingInfo, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT d.id, d.drawing_number, d.title, d.sheet, d.updated_at, COUNT(r.seq)
		FROM drawings d
		LEFT JOIN revisions r ON r.drawing_id = d.id
		GROUP BY d.id, d.drawing_number, d.title, d.sheet, d.updated_at
		ORDER BY d.updated_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing drawings: %w", err)
	}
	defer rows.Close()

	var out []models.DrawingInfo
	for rows.Next() {
		var info models.DrawingInfo
		var title sql.NullString
		if err := rows.Scan(&info.ID, &info.DrawingNumber, &title, &info.Sheet, &info.UpdatedAt, &info.Revisions); err != nil {
			return nil, fmt.Errorf("scanning drawing row: %w", err)
		}
		info.Title = title.String
		out = append(out, info)
	}
	return out, rows.Err()
}

// ListRevisions returns a drawing's revision log, newest first.
func (s *DrawingStore) ListRevisions(drawingID string) ([]models.RevisionInfo, error) {
	rows, err := s.db.Query(`
		SELECT drawing_id, seq, note, equipment_count, pipeline_count, created_at, OCTET_LENGTH(payload)
		FROM revisions WHERE drawing_id = ? ORDER BY seq DESC`, drawingID)
	if err != nil {
		return nil, fmt.Errorf("listing revisions: %w", err)
	}
	defer rows.Close()

	var out []models.RevisionInfo
	for rows.Next() {
		var info models.RevisionInfo
		var note sql.NullString
		if err := rows.Scan(&info.DrawingID, &info.Seq, &note, &info.Equipment, &info.Pipelines, &info.CreatedAt, &info.SizeBytes); err != nil {
			return nil, fmt.Errorf("scanning revision row: %w", err)
		}
		info.Note = note.String
		out = append(out, info)
	}
	return out, rows.Err()
}

// DeleteDrawing removes a drawing and all of its revisions.
func (s *DrawingStore) DeleteDrawing(drawingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM drawings WHERE id = ?`, drawingID)
	if err != nil {
		return fmt.Errorf("deleting drawing: %w", err)
	}
	if _, err := s.db.Exec(`DELETE FROM revisions WHERE drawing_id = ?`, drawingID); err != nil {
		return fmt.Errorf("deleting revisions: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
