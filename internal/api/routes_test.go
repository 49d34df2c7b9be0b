// routes_test.go - End-to-end tests through the registered route table
package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pnid-studio/backend/internal/advisor"
	"github.com/pnid-studio/backend/internal/catalog"
	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/storage"
)

// newTestServer wires the full route table the way main does, with
// persistence disabled and no advisor endpoint.
func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	archive, err := storage.NewArchive(t.TempDir(), 5)
	require.NoError(t, err)

	handlers := NewHandlers(&Dependencies{
		Catalog:     catalog.New(),
		SessionMgr:  newTestSessions(),
		Archive:     archive,
		Advisor:     advisor.NewClient("", "", 0),
		Rules:       diagram.DefaultRules(),
		RulesSource: "builtin",
		Version:     "test",
	})

	e := echo.New()
	SetupMiddleware(e)
	RegisterRoutes(e, handlers)
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutesSessionFlow(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = doJSON(e, http.MethodPost, "/api/diagrams", `{"sheet":"A3"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var info models.SessionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	require.NotEmpty(t, info.ID)

	rec = doJSON(e, http.MethodPost, "/api/diagrams/"+info.ID+"/templates/pump-station", `{"origin":{"x":2,"y":2}}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodGet, "/api/diagrams/"+info.ID+"/legend", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Centrifugal pump")

	rec = doJSON(e, http.MethodGet, "/api/diagrams/"+info.ID+"/export/svg", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/svg+xml", rec.Header().Get(echo.HeaderContentType))

	rec = doJSON(e, http.MethodDelete, "/api/diagrams/"+info.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Domain failures surface through the central error handler with their
// taxonomy codes and mapped statuses.
func TestRoutesErrorMapping(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/diagrams/no-such-session/legend", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NO_SESSION"`)

	rec = doJSON(e, http.MethodPost, "/api/diagrams", `{"sheet":"A9"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"BAD_SHEET"`)

	// Overlapping placements conflict.
	rec = doJSON(e, http.MethodPost, "/api/diagrams", `{}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var info models.SessionInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))

	place := `{"type":"pump-centrifugal","at":{"x":2,"y":2}}`
	rec = doJSON(e, http.MethodPost, "/api/diagrams/"+info.ID+"/equipment", place)
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(e, http.MethodPost, "/api/diagrams/"+info.ID+"/equipment", place)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"OVERLAP"`)

	// The advisor is not configured in this fixture.
	rec = doJSON(e, http.MethodPost, "/api/diagrams/"+info.ID+"/review", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRoutesPersistenceDisabled(t *testing.T) {
	e := newTestServer(t)

	rec := doJSON(e, http.MethodGet, "/api/drawings/recent", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"SERVICE_UNAVAILABLE"`)
}
