// handlers_export_test.go - Tests for rendered artifact downloads and the archive
package api

import (
	"bytes"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/session"
	"github.com/pnid-studio/backend/internal/storage"
)

func newExportFixture(t *testing.T) (*session.Manager, string, *storage.Archive) {
	t.Helper()
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	applyPumpStation(t, mgr, id)
	archive, err := storage.NewArchive(t.TempDir(), 10)
	if err != nil {
		t.Fatalf("failed to create archive: %v", err)
	}
	return mgr, id, archive
}

func TestExportHandler_HandleExportSVG(t *testing.T) {
	mgr, id, archive := newExportFixture(t)
	handler := NewExportHandler(mgr, archive)

	c, rec := newJSONContext(http.MethodGet, nil, "sessionId", id)
	if err := handler.HandleExportSVG(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("expected SVG content type, got %s", ct)
	}
	if cd := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(cd, "PW-1201.svg") {
		t.Errorf("unexpected content disposition %q", cd)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<svg") {
		t.Error("response is not an SVG document")
	}
	// Equipment tags land in the annotation layer as text.
	for _, tag := range []string{"TK-101", "P-101", "P-102"} {
		if !strings.Contains(body, tag) {
			t.Errorf("SVG missing tag %s", tag)
		}
	}

	if archive.Count() != 1 {
		t.Errorf("expected 1 archived artifact, got %d", archive.Count())
	}
}

func TestExportHandler_HandleExportPNG(t *testing.T) {
	mgr, id, archive := newExportFixture(t)
	handler := NewExportHandler(mgr, archive)

	c, rec := newJSONContext(http.MethodGet, nil, "sessionId", id)
	if err := handler.HandleExportPNG(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected PNG content type, got %s", ct)
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}
	// A3 sheet at 10 px/mm.
	if cfg.Width != 4200 || cfg.Height != 2970 {
		t.Errorf("expected 4200x2970, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestExportHandler_HandleExportDXF(t *testing.T) {
	mgr, id, archive := newExportFixture(t)
	handler := NewExportHandler(mgr, archive)

	c, rec := newJSONContext(http.MethodGet, nil, "sessionId", id)
	if err := handler.HandleExportDXF(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "ENTITIES") || !strings.Contains(body, "EOF") {
		t.Error("response is not a DXF document")
	}
}

func TestExportHandler_HandleExportSVG_NoSession(t *testing.T) {
	mgr := newTestSessions()
	handler := NewExportHandler(mgr, nil)

	c, _ := newJSONContext(http.MethodGet, nil, "sessionId", "missing")
	err := handler.HandleExportSVG(c)
	if err == nil {
		t.Fatal("expected an error for a missing session")
	}
}

func TestExportHandler_ListAndDownload(t *testing.T) {
	mgr, id, archive := newExportFixture(t)
	handler := NewExportHandler(mgr, archive)

	for i := 0; i < 2; i++ {
		c, _ := newJSONContext(http.MethodGet, nil, "sessionId", id)
		if err := handler.HandleExportSVG(c); err != nil {
			t.Fatalf("export failed: %v", err)
		}
	}

	c, rec := newJSONContext(http.MethodGet, nil)
	if err := handler.HandleListExports(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Exports []models.ExportInfo `json:"exports"`
		Count   int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Count != 2 {
		t.Fatalf("expected 2 exports, got %d", resp.Count)
	}
	if resp.Exports[0].Format != "svg" || resp.Exports[0].Name != "PW-1201" {
		t.Errorf("unexpected export record %+v", resp.Exports[0])
	}

	// Re-download the first artifact by ID.
	c, rec = newJSONContext(http.MethodGet, nil, "id", resp.Exports[0].ID)
	if err := handler.HandleDownloadExport(c); err != nil {
		t.Fatalf("download failed: %v", err)
	}
	if !strings.Contains(rec.Body.String(), "<svg") {
		t.Error("downloaded artifact is not the stored SVG")
	}

	// Unknown artifact
	c, _ = newJSONContext(http.MethodGet, nil, "id", "nope")
	err := handler.HandleDownloadExport(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", apiErr.Code)
	}
}

func TestExportHandler_ArchiveDisabled(t *testing.T) {
	mgr, id, _ := newExportFixture(t)
	handler := NewExportHandler(mgr, nil)

	// Exports still stream without an archive.
	c, rec := newJSONContext(http.MethodGet, nil, "sessionId", id)
	if err := handler.HandleExportSVG(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	c, rec = newJSONContext(http.MethodGet, nil)
	if err := handler.HandleListExports(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if resp.Count != 0 {
		t.Errorf("expected empty list, got %d", resp.Count)
	}

	c, _ = newJSONContext(http.MethodGet, nil, "id", "any")
	err := handler.HandleDownloadExport(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != "SERVICE_UNAVAILABLE" {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %s", apiErr.Code)
	}
}

func TestExportHandler_InvalidLimit(t *testing.T) {
	mgr, _, archive := newExportFixture(t)
	handler := NewExportHandler(mgr, archive)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?limit=banana", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.HandleListExports(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
}
