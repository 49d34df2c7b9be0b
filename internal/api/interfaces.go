// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// DiagramHandler covers session lifecycle and all diagram mutations
type DiagramHandler interface {
	HandleCreateSession(c echo.Context) error
	HandleListSessions(c echo.Context) error
	HandleGetSession(c echo.Context) error
	HandleCloseSession(c echo.Context) error
	HandleSessionKeepAlive(c echo.Context) error

	HandleGetDiagram(c echo.Context) error
	HandleGetDiagramMsgpack(c echo.Context) error
	HandleSetTitle(c echo.Context) error
	HandleQueryRegion(c echo.Context) error

	HandlePlaceEquipment(c echo.Context) error
	HandleMoveEquipment(c echo.Context) error
	HandleRotateEquipment(c echo.Context) error
	HandleRenameEquipment(c echo.Context) error
	HandleRemoveEquipment(c echo.Context) error

	HandleConnect(c echo.Context) error
	HandleRoutePipeline(c echo.Context) error
	HandleRouteAll(c echo.Context) error
	HandleRemovePipeline(c echo.Context) error

	HandleAttachInline(c echo.Context) error
	HandleMoveInline(c echo.Context) error
	HandleRemoveInline(c echo.Context) error

	HandleListTemplates(c echo.Context) error
	HandleApplyTemplate(c echo.Context) error
}

// CatalogHandler covers symbol and class lookups plus CSV imports
type CatalogHandler interface {
	HandleGetCatalog(c echo.Context) error
	HandleGetGlyph(c echo.Context) error
	HandleImportCSV(c echo.Context) error
	HandleGenerateSymbol(c echo.Context) error
}

// AnalysisHandler covers validation, legend, control loops and the
// advisor review
type AnalysisHandler interface {
	HandleFindings(c echo.Context) error
	HandleLegend(c echo.Context) error
	HandleControls(c echo.Context) error
	HandleSuggest(c echo.Context) error
	HandleGetRules(c echo.Context) error
	HandleUpdateRules(c echo.Context) error
}

// ExportHandler covers rendered artifact downloads and the archive of
// past exports
type ExportHandler interface {
	HandleExportSVG(c echo.Context) error
	HandleExportPNG(c echo.Context) error
	HandleExportDXF(c echo.Context) error
	HandleListExports(c echo.Context) error
	HandleDownloadExport(c echo.Context) error
}

// StoreHandler covers drawing persistence and revision history
type StoreHandler interface {
	HandleSaveRevision(c echo.Context) error
	HandleListDrawings(c echo.Context) error
	HandleListRevisions(c echo.Context) error
	HandleOpenRevision(c echo.Context) error
	HandleDeleteDrawing(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
