// handlers_store_test.go - Tests for drawing persistence and revision handlers
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/session"
	"github.com/pnid-studio/backend/internal/store"
)

func newStoreFixture(t *testing.T) (*session.Manager, string, *store.DrawingStore) {
	t.Helper()
	st, err := store.NewDrawingStore(t.TempDir(), 0, "")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	applyPumpStation(t, mgr, id)
	return mgr, id, st
}

func TestStoreHandler_SaveListRestoreDelete(t *testing.T) {
	mgr, id, st := newStoreFixture(t)
	handler := NewStoreHandler(mgr, st)

	// First save creates the drawing.
	c, rec := newJSONContext(http.MethodPost, saveRevisionRequest{Note: "initial layout"}, "sessionId", id)
	if err := handler.HandleSaveRevision(c); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var first models.RevisionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if first.Seq != 1 || first.DrawingID == "" {
		t.Fatalf("unexpected first revision %+v", first)
	}
	if first.Equipment != 4 || first.Pipelines != 3 {
		t.Errorf("unexpected revision counts %+v", first)
	}

	// Second save appends to the same drawing via the session mapping.
	c, rec = newJSONContext(http.MethodPost, saveRevisionRequest{Note: "after review"}, "sessionId", id)
	if err := handler.HandleSaveRevision(c); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	var second models.RevisionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if second.Seq != 2 || second.DrawingID != first.DrawingID {
		t.Fatalf("expected seq 2 on drawing %s, got %+v", first.DrawingID, second)
	}

	// Revision history for the session's drawing.
	c, rec = newJSONContext(http.MethodGet, nil, "sessionId", id)
	if err := handler.HandleListRevisions(c); err != nil {
		t.Fatalf("list revisions failed: %v", err)
	}
	var listResp struct {
		DrawingID string                `json:"drawingId"`
		Revisions []models.RevisionInfo `json:"revisions"`
		Count     int                   `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if listResp.Count != 2 || listResp.DrawingID != first.DrawingID {
		t.Fatalf("unexpected revision list %+v", listResp)
	}

	// Restore the first revision into a fresh session.
	c, rec = newJSONContext(http.MethodPost, restoreRequest{DrawingID: first.DrawingID, Seq: 1})
	if err := handler.HandleOpenRevision(c); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var restored models.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &restored); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if restored.ID == id {
		t.Error("restore must open a new session")
	}
	if restored.Equipment != 4 || restored.Pipelines != 3 {
		t.Errorf("unexpected restored counts %+v", restored)
	}
	if restored.DrawingNumber != "PW-1201" {
		t.Errorf("expected drawing number PW-1201, got %s", restored.DrawingNumber)
	}

	// The restored session saves back to the same drawing.
	c, rec = newJSONContext(http.MethodPost, saveRevisionRequest{Note: "rolled back"}, "sessionId", restored.ID)
	if err := handler.HandleSaveRevision(c); err != nil {
		t.Fatalf("save after restore failed: %v", err)
	}
	var third models.RevisionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &third); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if third.Seq != 3 || third.DrawingID != first.DrawingID {
		t.Fatalf("expected seq 3 on drawing %s, got %+v", first.DrawingID, third)
	}

	// Drawing inventory.
	c, rec = newJSONContext(http.MethodGet, nil)
	if err := handler.HandleListDrawings(c); err != nil {
		t.Fatalf("list drawings failed: %v", err)
	}
	var drawingsResp struct {
		Drawings []models.DrawingInfo `json:"drawings"`
		Count    int                  `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &drawingsResp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if drawingsResp.Count != 1 {
		t.Fatalf("expected 1 drawing, got %d", drawingsResp.Count)
	}
	d := drawingsResp.Drawings[0]
	if d.ID != first.DrawingID || d.DrawingNumber != "PW-1201" || d.Revisions != 3 {
		t.Errorf("unexpected drawing record %+v", d)
	}

	// Delete, then a second delete reports the missing drawing.
	c, _ = newJSONContext(http.MethodDelete, nil, "drawingId", first.DrawingID)
	if err := handler.HandleDeleteDrawing(c); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	c, _ = newJSONContext(http.MethodDelete, nil, "drawingId", first.DrawingID)
	err := handler.HandleDeleteDrawing(c)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreHandler_ListRevisions_NeverSaved(t *testing.T) {
	mgr, id, st := newStoreFixture(t)
	handler := NewStoreHandler(mgr, st)

	c, rec := newJSONContext(http.MethodGet, nil, "sessionId", id)
	if err := handler.HandleListRevisions(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected empty history, got %d", resp.Count)
	}

	// Unknown session is an error, not an empty list.
	c, _ = newJSONContext(http.MethodGet, nil, "sessionId", "missing")
	err := handler.HandleListRevisions(c)
	if !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestStoreHandler_OpenRevision_Validation(t *testing.T) {
	mgr, _, st := newStoreFixture(t)
	handler := NewStoreHandler(mgr, st)

	// Missing drawing ID
	c, _ := newJSONContext(http.MethodPost, restoreRequest{})
	err := handler.HandleOpenRevision(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}

	// Unknown drawing
	c, _ = newJSONContext(http.MethodPost, restoreRequest{DrawingID: "no-such-drawing"})
	err = handler.HandleOpenRevision(c)
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreHandler_PersistenceDisabled(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewStoreHandler(mgr, nil)

	for name, call := range map[string]func() error{
		"save": func() error {
			c, _ := newJSONContext(http.MethodPost, saveRevisionRequest{}, "sessionId", id)
			return handler.HandleSaveRevision(c)
		},
		"list revisions": func() error {
			c, _ := newJSONContext(http.MethodGet, nil, "sessionId", id)
			return handler.HandleListRevisions(c)
		},
		"restore": func() error {
			c, _ := newJSONContext(http.MethodPost, restoreRequest{DrawingID: "x"})
			return handler.HandleOpenRevision(c)
		},
		"list drawings": func() error {
			c, _ := newJSONContext(http.MethodGet, nil)
			return handler.HandleListDrawings(c)
		},
		"delete": func() error {
			c, _ := newJSONContext(http.MethodDelete, nil, "drawingId", "x")
			return handler.HandleDeleteDrawing(c)
		},
	} {
		err := call()
		apiErr, ok := err.(*APIError)
		if !ok {
			t.Fatalf("%s: expected APIError, got %T", name, err)
		}
		if apiErr.Code != "SERVICE_UNAVAILABLE" {
			t.Errorf("%s: expected SERVICE_UNAVAILABLE, got %s", name, apiErr.Code)
		}
	}
}
