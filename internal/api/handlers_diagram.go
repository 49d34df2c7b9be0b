// handlers_diagram.go - Session lifecycle and diagram mutation handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/session"
)

// DiagramHandlerImpl implements the DiagramHandler interface
type DiagramHandlerImpl struct {
	sessions *session.Manager
}

// NewDiagramHandler creates a new diagram handler instance
func NewDiagramHandler(sessions *session.Manager) DiagramHandler {
	return &DiagramHandlerImpl{sessions: sessions}
}

type createSessionRequest struct {
	Title          models.TitleBlock `json:"title"`
	Sheet          string            `json:"sheet"`
	GridSpacingMM  int               `json:"gridSpacingMm"`
	CrossingPolicy string            `json:"crossingPolicy"`
}

// HandleCreateSession opens a new drawing session
func (h *DiagramHandlerImpl) HandleCreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	info, err := h.sessions.Create(req.Title, diagram.Options{
		Sheet:         models.SheetSize(req.Sheet),
		GridSpacingMM: req.GridSpacingMM,
		Crossing:      diagram.CrossingPolicy(req.CrossingPolicy),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, info)
}

// HandleListSessions lists all open sessions
func (h *DiagramHandlerImpl) HandleListSessions(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": h.sessions.List(),
		"count":    h.sessions.Count(),
	})
}

// HandleGetSession returns one session's metadata
func (h *DiagramHandlerImpl) HandleGetSession(c echo.Context) error {
	info, ok := h.sessions.Info(c.Param("sessionId"))
	if !ok {
		return NewNotFoundError("session", c.Param("sessionId"))
	}
	return c.JSON(http.StatusOK, info)
}

// HandleCloseSession discards a session
func (h *DiagramHandlerImpl) HandleCloseSession(c echo.Context) error {
	if !h.sessions.Close(c.Param("sessionId")) {
		return NewNotFoundError("session", c.Param("sessionId"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "closed"})
}

// HandleSessionKeepAlive refreshes the session's cleanup timer
func (h *DiagramHandlerImpl) HandleSessionKeepAlive(c echo.Context) error {
	if !h.sessions.Touch(c.Param("sessionId")) {
		return NewNotFoundError("session", c.Param("sessionId"))
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetDiagram returns the session's full diagram state
func (h *DiagramHandlerImpl) HandleGetDiagram(c echo.Context) error {
	var snap models.Snapshot
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		snap = d.Snapshot()
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// HandleGetDiagramMsgpack returns the snapshot in msgpack encoding,
// the same payload the revision store persists
func (h *DiagramHandlerImpl) HandleGetDiagramMsgpack(c echo.Context) error {
	var snap models.Snapshot
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		snap = d.Snapshot()
		return nil
	})
	if err != nil {
		return err
	}
	data, err := diagram.MarshalSnapshot(snap)
	if err != nil {
		return NewInternalError("failed to encode snapshot", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

// HandleQueryRegion returns the equipment tags whose footprints
// intersect a cell rectangle
func (h *DiagramHandlerImpl) HandleQueryRegion(c echo.Context) error {
	var r models.Rect
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"x", &r.X}, {"y", &r.Y}, {"w", &r.W}, {"h", &r.H},
	} {
		v, err := strconv.Atoi(c.QueryParam(f.name))
		if err != nil {
			return NewValidationError(f.name)
		}
		*f.dst = v
	}
	if r.W <= 0 || r.H <= 0 {
		return NewValidationError("w")
	}

	var tags []string
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		tags = d.QueryRegion(r)
		return nil
	})
	if err != nil {
		return err
	}
	if tags == nil {
		tags = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"region": r,
		"tags":   tags,
	})
}

// HandleSetTitle replaces the title block
func (h *DiagramHandlerImpl) HandleSetTitle(c echo.Context) error {
	var req models.TitleBlock
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		d.SetTitle(req)
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, req)
}

type placeEquipmentRequest struct {
	Type     string          `json:"type"`
	At       models.Point    `json:"at"`
	Rotation models.Rotation `json:"rotation"`
}

// HandlePlaceEquipment places a catalog item on the grid
func (h *DiagramHandlerImpl) HandlePlaceEquipment(c echo.Context) error {
	var req placeEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Type == "" {
		return NewValidationError("type")
	}

	var placed *models.Equipment
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		var err error
		placed, err = d.Place(req.Type, req.At, req.Rotation)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, placed)
}

type moveEquipmentRequest struct {
	To models.Point `json:"to"`
}

// HandleMoveEquipment moves placed equipment to a new anchor cell
func (h *DiagramHandlerImpl) HandleMoveEquipment(c echo.Context) error {
	var req moveEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	tag := c.Param("tag")
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		return d.Move(tag, req.To)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"tag": tag})
}

type rotateEquipmentRequest struct {
	Rotation models.Rotation `json:"rotation"`
}

// HandleRotateEquipment sets the equipment's rotation
func (h *DiagramHandlerImpl) HandleRotateEquipment(c echo.Context) error {
	var req rotateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	tag := c.Param("tag")
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		return d.Rotate(tag, req.Rotation)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"tag": tag})
}

type renameEquipmentRequest struct {
	NewTag string `json:"newTag"`
}

// HandleRenameEquipment changes an equipment tag
func (h *DiagramHandlerImpl) HandleRenameEquipment(c echo.Context) error {
	var req renameEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.NewTag == "" {
		return NewValidationError("newTag")
	}

	oldTag := c.Param("tag")
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		return d.Rename(oldTag, req.NewTag)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"tag": req.NewTag})
}

// HandleRemoveEquipment deletes equipment; attached pipelines stay and
// show up as dangling-port findings until repaired
func (h *DiagramHandlerImpl) HandleRemoveEquipment(c echo.Context) error {
	tag := c.Param("tag")
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		return d.RemoveEquipment(tag)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}

type connectRequest struct {
	Class string         `json:"class"`
	From  models.PortRef `json:"from"`
	To    models.PortRef `json:"to"`
	Route *bool          `json:"route,omitempty"` // default true
}

// HandleConnect creates a pipeline between two ports and, unless asked
// not to, routes it immediately
func (h *DiagramHandlerImpl) HandleConnect(c echo.Context) error {
	var req connectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Class == "" {
		return NewValidationError("class")
	}

	route := req.Route == nil || *req.Route
	var created *models.Pipeline
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		var err error
		created, err = d.Connect(req.Class, req.From, req.To)
		if err != nil {
			return err
		}
		if route {
			// A failed route leaves the connection in place; it shows up
			// as an unrouted-pipeline finding until repaired.
			_, _ = d.Route(created.Tag)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// HandleRoutePipeline recomputes the path for one pipeline
func (h *DiagramHandlerImpl) HandleRoutePipeline(c echo.Context) error {
	tag := c.Param("tag")
	var segments []models.Segment
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		var err error
		segments, err = d.Route(tag)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tag":      tag,
		"segments": segments,
	})
}

// HandleRouteAll recomputes every pipeline path
func (h *DiagramHandlerImpl) HandleRouteAll(c echo.Context) error {
	var routed []string
	var failed map[string]string
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		routed, failed = d.RouteAll()
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"routed": routed,
		"failed": failed,
	})
}

// HandleRemovePipeline deletes a pipeline and its inline components
func (h *DiagramHandlerImpl) HandleRemovePipeline(c echo.Context) error {
	tag := c.Param("tag")
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		return d.RemovePipeline(tag)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}

type attachInlineRequest struct {
	Type     string  `json:"type"`
	Pipeline string  `json:"pipeline"`
	Fraction float64 `json:"fraction"`
}

// HandleAttachInline drops a fitting onto a pipeline
func (h *DiagramHandlerImpl) HandleAttachInline(c echo.Context) error {
	var req attachInlineRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Type == "" {
		return NewValidationError("type")
	}
	if req.Pipeline == "" {
		return NewValidationError("pipeline")
	}

	var created *models.InlineComponent
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		var err error
		created, err = d.AttachInline(req.Type, req.Pipeline, req.Fraction)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

type moveInlineRequest struct {
	Fraction float64 `json:"fraction"`
}

// HandleMoveInline slides a fitting along its pipeline
func (h *DiagramHandlerImpl) HandleMoveInline(c echo.Context) error {
	var req moveInlineRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	id := c.Param("compId")
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		return d.SetInlineFraction(id, req.Fraction)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"id": id})
}

// HandleRemoveInline deletes an inline fitting
func (h *DiagramHandlerImpl) HandleRemoveInline(c echo.Context) error {
	id := c.Param("compId")
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		return d.RemoveInline(id)
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "removed"})
}

// HandleListTemplates lists the available process-unit templates
func (h *DiagramHandlerImpl) HandleListTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"templates": diagram.TemplateNames(),
	})
}

type applyTemplateRequest struct {
	Origin models.Point `json:"origin"`
}

// HandleApplyTemplate stamps a pre-wired process unit at the origin
func (h *DiagramHandlerImpl) HandleApplyTemplate(c echo.Context) error {
	name := c.Param("name")
	var req applyTemplateRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	var result *diagram.TemplateResult
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		var err error
		result, err = d.ApplyTemplate(name, req.Origin)
		return err
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}
