// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/advisor"
	"github.com/pnid-studio/backend/internal/catalog"
	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/session"
	"github.com/pnid-studio/backend/internal/storage"
	"github.com/pnid-studio/backend/internal/store"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Catalog     *catalog.Catalog
	SessionMgr  *session.Manager
	Store       *store.DrawingStore // nil when persistence is disabled
	Archive     *storage.Archive
	Advisor     *advisor.Client
	Rules       models.ValidationRules
	RulesSource string
	Version     string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Diagram  DiagramHandler
	Catalog  CatalogHandler
	Analysis AnalysisHandler
	Export   ExportHandler
	Store    StoreHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version, deps.SessionMgr),
		Diagram:  NewDiagramHandler(deps.SessionMgr),
		Catalog:  NewCatalogHandler(deps.Catalog, deps.Advisor),
		Analysis: NewAnalysisHandler(deps.SessionMgr, deps.Advisor, deps.Rules, deps.RulesSource),
		Export:   NewExportHandler(deps.SessionMgr, deps.Archive),
		Store:    NewStoreHandler(deps.SessionMgr, deps.Store),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/api/health", handlers.Health.HandleHealth)

	// Session lifecycle
	diagrams := e.Group("/api/diagrams")
	diagrams.POST("", handlers.Diagram.HandleCreateSession)
	diagrams.GET("", handlers.Diagram.HandleListSessions)
	diagrams.POST("/restore", handlers.Store.HandleOpenRevision)
	diagrams.GET("/:sessionId", handlers.Diagram.HandleGetDiagram)
	diagrams.GET("/:sessionId/msgpack", handlers.Diagram.HandleGetDiagramMsgpack)
	diagrams.GET("/:sessionId/info", handlers.Diagram.HandleGetSession)
	diagrams.DELETE("/:sessionId", handlers.Diagram.HandleCloseSession)
	diagrams.POST("/:sessionId/keepalive", handlers.Diagram.HandleSessionKeepAlive)
	diagrams.PUT("/:sessionId/title", handlers.Diagram.HandleSetTitle)
	diagrams.GET("/:sessionId/query", handlers.Diagram.HandleQueryRegion)

	// Equipment
	diagrams.POST("/:sessionId/equipment", handlers.Diagram.HandlePlaceEquipment)
	diagrams.PUT("/:sessionId/equipment/:tag/position", handlers.Diagram.HandleMoveEquipment)
	diagrams.PUT("/:sessionId/equipment/:tag/rotation", handlers.Diagram.HandleRotateEquipment)
	diagrams.PUT("/:sessionId/equipment/:tag/tag", handlers.Diagram.HandleRenameEquipment)
	diagrams.DELETE("/:sessionId/equipment/:tag", handlers.Diagram.HandleRemoveEquipment)

	// Pipelines and routing
	diagrams.POST("/:sessionId/pipelines", handlers.Diagram.HandleConnect)
	diagrams.POST("/:sessionId/pipelines/:tag/route", handlers.Diagram.HandleRoutePipeline)
	diagrams.POST("/:sessionId/route", handlers.Diagram.HandleRouteAll)
	diagrams.DELETE("/:sessionId/pipelines/:tag", handlers.Diagram.HandleRemovePipeline)

	// Inline components
	diagrams.POST("/:sessionId/inline", handlers.Diagram.HandleAttachInline)
	diagrams.PUT("/:sessionId/inline/:compId/fraction", handlers.Diagram.HandleMoveInline)
	diagrams.DELETE("/:sessionId/inline/:compId", handlers.Diagram.HandleRemoveInline)

	// Process-unit templates
	diagrams.POST("/:sessionId/templates/:name", handlers.Diagram.HandleApplyTemplate)

	// Analysis
	diagrams.GET("/:sessionId/validate", handlers.Analysis.HandleFindings)
	diagrams.GET("/:sessionId/legend", handlers.Analysis.HandleLegend)
	diagrams.GET("/:sessionId/analysis", handlers.Analysis.HandleControls)
	diagrams.POST("/:sessionId/review", handlers.Analysis.HandleSuggest)

	// Exports
	diagrams.GET("/:sessionId/export/svg", handlers.Export.HandleExportSVG)
	diagrams.GET("/:sessionId/export/png", handlers.Export.HandleExportPNG)
	diagrams.GET("/:sessionId/export/dxf", handlers.Export.HandleExportDXF)
	e.GET("/api/exports", handlers.Export.HandleListExports)
	e.GET("/api/exports/:id", handlers.Export.HandleDownloadExport)

	// Revision history
	diagrams.POST("/:sessionId/revisions", handlers.Store.HandleSaveRevision)
	diagrams.GET("/:sessionId/revisions", handlers.Store.HandleListRevisions)

	drawings := e.Group("/api/drawings")
	drawings.GET("/recent", handlers.Store.HandleListDrawings)
	drawings.DELETE("/:drawingId", handlers.Store.HandleDeleteDrawing)

	// Symbol catalog
	catalogGroup := e.Group("/api/catalog")
	catalogGroup.GET("", handlers.Catalog.HandleGetCatalog)
	catalogGroup.GET("/glyphs/:id", handlers.Catalog.HandleGetGlyph)
	catalogGroup.POST("/upload", handlers.Catalog.HandleImportCSV)
	catalogGroup.POST("/symbols/generate", handlers.Catalog.HandleGenerateSymbol)

	e.GET("/api/templates", handlers.Diagram.HandleListTemplates)

	// Validation rules
	e.GET("/api/config/validation-rules", handlers.Analysis.HandleGetRules)
	e.PUT("/api/config/validation-rules", handlers.Analysis.HandleUpdateRules)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
}
