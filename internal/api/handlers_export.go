// handlers_export.go - Rendered artifact downloads and the export archive
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/render"
	"github.com/pnid-studio/backend/internal/session"
	"github.com/pnid-studio/backend/internal/storage"
)

// ExportHandlerImpl implements the ExportHandler interface
type ExportHandlerImpl struct {
	sessions *session.Manager
	archive  *storage.Archive
}

// NewExportHandler creates a new export handler instance. The archive
// may be nil, in which case artifacts are only streamed, never kept.
func NewExportHandler(sessions *session.Manager, archive *storage.Archive) ExportHandler {
	return &ExportHandlerImpl{sessions: sessions, archive: archive}
}

// buildPlan assembles the session's drawing plan and derives the
// download name from the title block.
func (h *ExportHandlerImpl) buildPlan(c echo.Context) (*render.Plan, string, error) {
	var plan *render.Plan
	name := "diagram"
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		plan = render.BuildPlan(d)
		if n := d.Title().DrawingNumber; n != "" {
			name = n
		}
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return plan, name, nil
}

// respond archives the artifact and streams it as a download.
func (h *ExportHandlerImpl) respond(c echo.Context, name, format, contentType string, data []byte) error {
	if h.archive != nil {
		if _, err := h.archive.Save(name, format, data); err != nil {
			fmt.Printf("[Export] Failed to archive %s.%s: %v\n", name, format, err)
		}
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", name+"."+format))
	return c.Blob(http.StatusOK, contentType, data)
}

// HandleExportSVG renders the diagram as layered SVG
func (h *ExportHandlerImpl) HandleExportSVG(c echo.Context) error {
	plan, name, err := h.buildPlan(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.WriteSVG(&buf, plan); err != nil {
		return NewInternalError("failed to render SVG", err)
	}
	return h.respond(c, name, "svg", "image/svg+xml", buf.Bytes())
}

// HandleExportPNG renders the diagram as a raster sheet
func (h *ExportHandlerImpl) HandleExportPNG(c echo.Context) error {
	plan, name, err := h.buildPlan(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.WritePNG(&buf, plan); err != nil {
		return NewInternalError("failed to render PNG", err)
	}
	return h.respond(c, name, "png", "image/png", buf.Bytes())
}

// HandleExportDXF renders the diagram as a layered DXF drawing
func (h *ExportHandlerImpl) HandleExportDXF(c echo.Context) error {
	plan, name, err := h.buildPlan(c)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := render.WriteDXF(&buf, plan); err != nil {
		return NewInternalError("failed to render DXF", err)
	}
	return h.respond(c, name, "dxf", "application/dxf", buf.Bytes())
}

// HandleListExports returns the most recent archived artifacts
func (h *ExportHandlerImpl) HandleListExports(c echo.Context) error {
	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	if h.archive == nil {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"exports": []interface{}{},
			"count":   0,
		})
	}

	exports := h.archive.List(limit)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"exports": exports,
		"count":   len(exports),
	})
}

// HandleDownloadExport re-serves an archived artifact
func (h *ExportHandlerImpl) HandleDownloadExport(c echo.Context) error {
	if h.archive == nil {
		return NewServiceUnavailableError("export archive is disabled")
	}
	id := c.Param("id")
	info, err := h.archive.Get(id)
	if err != nil {
		return NewNotFoundError("export", id)
	}
	path, err := h.archive.Path(id)
	if err != nil {
		return NewNotFoundError("export", id)
	}
	return c.Attachment(path, info.Name+"."+info.Format)
}
