// handlers_store.go - Drawing persistence and revision history handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/session"
	"github.com/pnid-studio/backend/internal/store"
)

// StoreHandlerImpl implements the StoreHandler interface
type StoreHandlerImpl struct {
	sessions *session.Manager
	store    *store.DrawingStore
}

// NewStoreHandler creates a new store handler instance. The store may
// be nil when persistence is disabled.
func NewStoreHandler(sessions *session.Manager, st *store.DrawingStore) StoreHandler {
	return &StoreHandlerImpl{sessions: sessions, store: st}
}

func (h *StoreHandlerImpl) ready() error {
	if h.store == nil {
		return NewServiceUnavailableError("drawing persistence is disabled")
	}
	return nil
}

type saveRevisionRequest struct {
	Note      string `json:"note"`
	DrawingID string `json:"drawingId"` // optional; defaults to the session's drawing
}

// HandleSaveRevision persists the session's snapshot as the next
// revision of its drawing
func (h *StoreHandlerImpl) HandleSaveRevision(c echo.Context) error {
	if err := h.ready(); err != nil {
		return err
	}
	var req saveRevisionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	sessionID := c.Param("sessionId")
	var snap models.Snapshot
	err := h.sessions.WithDiagram(sessionID, func(d *diagram.Diagram) error {
		snap = d.Snapshot()
		return nil
	})
	if err != nil {
		return err
	}

	drawingID := req.DrawingID
	if drawingID == "" {
		drawingID, _ = h.sessions.DrawingID(sessionID)
	}

	rev, err := h.store.SaveRevision(drawingID, snap, req.Note)
	if err != nil {
		return err
	}
	h.sessions.SetDrawingID(sessionID, rev.DrawingID)

	return c.JSON(http.StatusCreated, rev)
}

// HandleListRevisions lists the saved revisions of the session's drawing
func (h *StoreHandlerImpl) HandleListRevisions(c echo.Context) error {
	if err := h.ready(); err != nil {
		return err
	}
	sessionID := c.Param("sessionId")

	drawingID := c.QueryParam("drawingId")
	if drawingID == "" {
		var ok bool
		drawingID, ok = h.sessions.DrawingID(sessionID)
		if !ok {
			if _, exists := h.sessions.Info(sessionID); !exists {
				return session.ErrNoSession
			}
			// Session exists but was never saved.
			return c.JSON(http.StatusOK, map[string]interface{}{
				"revisions": []models.RevisionInfo{},
				"count":     0,
			})
		}
	}

	revs, err := h.store.ListRevisions(drawingID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"drawingId": drawingID,
		"revisions": revs,
		"count":     len(revs),
	})
}

type restoreRequest struct {
	DrawingID string `json:"drawingId"`
	Seq       int    `json:"seq"` // zero means latest
}

// HandleOpenRevision restores a stored revision into a fresh session
func (h *StoreHandlerImpl) HandleOpenRevision(c echo.Context) error {
	if err := h.ready(); err != nil {
		return err
	}
	var req restoreRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.DrawingID == "" {
		return NewValidationError("drawingId")
	}

	snap, err := h.store.LoadRevision(req.DrawingID, req.Seq)
	if err != nil {
		return err
	}
	info, err := h.sessions.Restore(snap)
	if err != nil {
		return err
	}
	h.sessions.SetDrawingID(info.ID, req.DrawingID)

	return c.JSON(http.StatusCreated, info)
}

// HandleListDrawings lists the most recently updated drawings
func (h *StoreHandlerImpl) HandleListDrawings(c echo.Context) error {
	if err := h.ready(); err != nil {
		return err
	}
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	drawings, err := h.store.ListDrawings(limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"drawings": drawings,
		"count":    len(drawings),
	})
}

// HandleDeleteDrawing removes a drawing and its whole revision history
func (h *StoreHandlerImpl) HandleDeleteDrawing(c echo.Context) error {
	if err := h.ready(); err != nil {
		return err
	}
	if err := h.store.DeleteDrawing(c.Param("drawingId")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
