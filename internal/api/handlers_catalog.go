// handlers_catalog.go - Symbol catalog lookup and import handlers
package api

import (
	"bytes"
	"encoding/base64"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/advisor"
	"github.com/pnid-studio/backend/internal/catalog"
)

// CatalogHandlerImpl implements the CatalogHandler interface
type CatalogHandlerImpl struct {
	catalog *catalog.Catalog
	advisor *advisor.Client
}

// NewCatalogHandler creates a new catalog handler instance
func NewCatalogHandler(cat *catalog.Catalog, adv *advisor.Client) CatalogHandler {
	return &CatalogHandlerImpl{catalog: cat, advisor: adv}
}

// HandleGetCatalog returns every type table, builtin and imported
func (h *CatalogHandlerImpl) HandleGetCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"equipment":   h.catalog.EquipmentTypes(),
		"pipeClasses": h.catalog.PipelineClasses(),
		"inline":      h.catalog.InlineTypes(),
	})
}

// HandleGetGlyph returns one symbol's stroke program
func (h *CatalogHandlerImpl) HandleGetGlyph(c echo.Context) error {
	glyph, ok := h.catalog.Glyph(c.Param("id"))
	if !ok {
		return NewNotFoundError("glyph", c.Param("id"))
	}
	return c.JSON(http.StatusOK, glyph)
}

type importCSVRequest struct {
	Kind string `json:"kind"` // "equipment", "pipe-classes" or "inline"
	Name string `json:"name"`
	Data string `json:"data"` // Base64-encoded CSV document
}

// HandleImportCSV merges an uploaded CSV table into the catalog. Rows
// that fail to parse are reported back, not fatal.
func (h *CatalogHandlerImpl) HandleImportCSV(c echo.Context) error {
	var req importCSVRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Data == "" {
		return NewValidationError("data")
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}
	r := bytes.NewReader(decoded)

	var imported int
	var rowErrors []*catalog.RowError
	switch catalog.CSVKind(req.Kind) {
	case catalog.CSVEquipment:
		types, errs, loadErr := catalog.LoadEquipmentCSV(r)
		if loadErr != nil {
			return NewBadRequestError("failed to read CSV", loadErr)
		}
		h.catalog.MergeEquipment(types)
		imported, rowErrors = len(types), errs
	case catalog.CSVPipeClasses:
		classes, errs, loadErr := catalog.LoadPipeClassCSV(r)
		if loadErr != nil {
			return NewBadRequestError("failed to read CSV", loadErr)
		}
		h.catalog.MergePipeClasses(classes)
		imported, rowErrors = len(classes), errs
	case catalog.CSVInline:
		types, errs, loadErr := catalog.LoadInlineCSV(r)
		if loadErr != nil {
			return NewBadRequestError("failed to read CSV", loadErr)
		}
		h.catalog.MergeInline(types)
		imported, rowErrors = len(types), errs
	default:
		return NewValidationError("kind")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"kind":     req.Kind,
		"imported": imported,
		"errors":   rowErrors,
	})
}

type generateSymbolRequest struct {
	Description string `json:"description"`
}

// HandleGenerateSymbol asks the advisor to draft a glyph and registers
// it in the catalog
func (h *CatalogHandlerImpl) HandleGenerateSymbol(c echo.Context) error {
	var req generateSymbolRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if req.Description == "" {
		return NewValidationError("description")
	}

	glyph, err := h.advisor.GenerateSymbol(c.Request().Context(), req.Description)
	if err != nil {
		return err
	}
	if err := h.catalog.RegisterGlyph(glyph); err != nil {
		return NewBadRequestError("advisor symbol was rejected", err)
	}
	return c.JSON(http.StatusCreated, glyph)
}
