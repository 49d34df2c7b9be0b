// handlers_diagram_test.go - Tests for session and diagram mutation handlers
package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/catalog"
	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/session"
)

func newTestSessions() *session.Manager {
	return session.NewManager(catalog.New(), diagram.DefaultOptions())
}

func openTestSession(t *testing.T, mgr *session.Manager) string {
	t.Helper()
	info, err := mgr.Create(models.TitleBlock{DrawingNumber: "PW-1201"}, diagram.Options{})
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return info.ID
}

// newJSONContext builds an echo context carrying an optional JSON body
// and alternating path parameter name/value pairs.
func newJSONContext(method string, body interface{}, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var raw []byte
	if body != nil {
		raw, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, "/", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func rejectionCode(t *testing.T, err error) string {
	t.Helper()
	var rej *diagram.Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("expected rejection, got %T: %v", err, err)
	}
	return rej.Code
}

func TestDiagramHandler_HandleCreateSession(t *testing.T) {
	tests := []struct {
		name       string
		request    createSessionRequest
		wantErr    bool
		errCode    string
		wantSheet  string
	}{
		{
			name:      "defaults to A3",
			request:   createSessionRequest{Title: models.TitleBlock{Title: "Pump Station 12"}},
			wantSheet: "A3",
		},
		{
			name:      "explicit sheet",
			request:   createSessionRequest{Sheet: "A1"},
			wantSheet: "A1",
		},
		{
			name:    "unknown sheet size",
			request: createSessionRequest{Sheet: "A9"},
			wantErr: true,
			errCode: diagram.RejectBadSheet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewDiagramHandler(newTestSessions())
			c, rec := newJSONContext(http.MethodPost, tt.request)

			err := handler.HandleCreateSession(c)

			if tt.wantErr {
				if code := rejectionCode(t, err); code != tt.errCode {
					t.Errorf("expected rejection %s, got %s", tt.errCode, code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusCreated {
				t.Errorf("expected status 201, got %d", rec.Code)
			}
			var info models.SessionInfo
			if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if info.ID == "" {
				t.Error("expected a session ID")
			}
			if info.Sheet != tt.wantSheet {
				t.Errorf("expected sheet %s, got %s", tt.wantSheet, info.Sheet)
			}
		})
	}
}

func TestDiagramHandler_HandlePlaceEquipment(t *testing.T) {
	tests := []struct {
		name     string
		place    []placeEquipmentRequest // applied before the request under test
		request  placeEquipmentRequest
		session  bool // false targets a bogus session ID
		wantErr  bool
		errCode  string
		wantTag  string
	}{
		{
			name:    "first pump gets P-101",
			request: placeEquipmentRequest{Type: "pump-centrifugal", At: models.Point{X: 2, Y: 2}},
			session: true,
			wantTag: "P-101",
		},
		{
			name: "second pump gets P-102",
			place: []placeEquipmentRequest{
				{Type: "pump-centrifugal", At: models.Point{X: 2, Y: 2}},
			},
			request: placeEquipmentRequest{Type: "pump-centrifugal", At: models.Point{X: 12, Y: 2}},
			session: true,
			wantTag: "P-102",
		},
		{
			name: "overlapping footprint is rejected",
			place: []placeEquipmentRequest{
				{Type: "pump-centrifugal", At: models.Point{X: 2, Y: 2}},
			},
			request: placeEquipmentRequest{Type: "pump-centrifugal", At: models.Point{X: 5, Y: 4}},
			session: true,
			wantErr: true,
			errCode: diagram.RejectOverlap,
		},
		{
			name:    "unknown catalog type",
			request: placeEquipmentRequest{Type: "teleporter", At: models.Point{X: 2, Y: 2}},
			session: true,
			wantErr: true,
			errCode: diagram.RejectUnknownType,
		},
		{
			name:    "out of bounds placement",
			request: placeEquipmentRequest{Type: "tank-storage", At: models.Point{X: 30, Y: 18}},
			session: true,
			wantErr: true,
			errCode: diagram.RejectOutOfBounds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mgr := newTestSessions()
			id := "nope"
			if tt.session {
				id = openTestSession(t, mgr)
			}
			handler := NewDiagramHandler(mgr)

			for _, p := range tt.place {
				c, _ := newJSONContext(http.MethodPost, p, "sessionId", id)
				if err := handler.HandlePlaceEquipment(c); err != nil {
					t.Fatalf("setup placement failed: %v", err)
				}
			}

			c, rec := newJSONContext(http.MethodPost, tt.request, "sessionId", id)
			err := handler.HandlePlaceEquipment(c)

			if tt.wantErr {
				if code := rejectionCode(t, err); code != tt.errCode {
					t.Errorf("expected rejection %s, got %s", tt.errCode, code)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != http.StatusCreated {
				t.Errorf("expected status 201, got %d", rec.Code)
			}
			var placed models.Equipment
			if err := json.Unmarshal(rec.Body.Bytes(), &placed); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if placed.Tag != tt.wantTag {
				t.Errorf("expected tag %s, got %s", tt.wantTag, placed.Tag)
			}
		})
	}
}

func TestDiagramHandler_HandlePlaceEquipment_NoSession(t *testing.T) {
	handler := NewDiagramHandler(newTestSessions())
	body := placeEquipmentRequest{Type: "pump-centrifugal", At: models.Point{X: 2, Y: 2}}
	c, _ := newJSONContext(http.MethodPost, body, "sessionId", "missing")

	err := handler.HandlePlaceEquipment(c)
	if !errors.Is(err, session.ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
}

func TestDiagramHandler_HandleConnect(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	for _, p := range []placeEquipmentRequest{
		{Type: "tank-storage", At: models.Point{X: 2, Y: 2}},
		{Type: "pump-centrifugal", At: models.Point{X: 18, Y: 4}},
	} {
		c, _ := newJSONContext(http.MethodPost, p, "sessionId", id)
		if err := handler.HandlePlaceEquipment(c); err != nil {
			t.Fatalf("setup placement failed: %v", err)
		}
	}

	body := connectRequest{
		Class: "process-pw",
		From:  models.PortRef{Equipment: "TK-101", Port: "outlet"},
		To:    models.PortRef{Equipment: "P-101", Port: "suction"},
	}
	c, rec := newJSONContext(http.MethodPost, body, "sessionId", id)
	if err := handler.HandleConnect(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}

	var created models.Pipeline
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if created.Tag != "L-101" {
		t.Errorf("expected tag L-101, got %s", created.Tag)
	}
	// Facing ports on the same row route as one straight run between
	// the two exit cells.
	if len(created.Segments) != 1 {
		t.Fatalf("expected 1 segment, got %d", len(created.Segments))
	}
	seg := created.Segments[0]
	if seg.A != (models.Point{X: 12, Y: 8}) || seg.B != (models.Point{X: 17, Y: 8}) {
		t.Errorf("unexpected segment %+v", seg)
	}
}

func TestDiagramHandler_HandleConnect_SkipRouting(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	for _, p := range []placeEquipmentRequest{
		{Type: "tank-storage", At: models.Point{X: 2, Y: 2}},
		{Type: "pump-centrifugal", At: models.Point{X: 18, Y: 4}},
	} {
		c, _ := newJSONContext(http.MethodPost, p, "sessionId", id)
		if err := handler.HandlePlaceEquipment(c); err != nil {
			t.Fatalf("setup placement failed: %v", err)
		}
	}

	noRoute := false
	body := connectRequest{
		Class: "process-pw",
		From:  models.PortRef{Equipment: "TK-101", Port: "outlet"},
		To:    models.PortRef{Equipment: "P-101", Port: "suction"},
		Route: &noRoute,
	}
	c, rec := newJSONContext(http.MethodPost, body, "sessionId", id)
	if err := handler.HandleConnect(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var created models.Pipeline
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(created.Segments) != 0 {
		t.Errorf("expected no segments, got %d", len(created.Segments))
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
}

func TestDiagramHandler_HandleConnect_SelfConnection(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	p := placeEquipmentRequest{Type: "pump-centrifugal", At: models.Point{X: 2, Y: 2}}
	c, _ := newJSONContext(http.MethodPost, p, "sessionId", id)
	if err := handler.HandlePlaceEquipment(c); err != nil {
		t.Fatalf("setup placement failed: %v", err)
	}

	body := connectRequest{
		Class: "process-pw",
		From:  models.PortRef{Equipment: "P-101", Port: "suction"},
		To:    models.PortRef{Equipment: "P-101", Port: "discharge"},
	}
	c, _ = newJSONContext(http.MethodPost, body, "sessionId", id)
	err := handler.HandleConnect(c)
	if code := rejectionCode(t, err); code != diagram.RejectSelfConnection {
		t.Errorf("expected rejection %s, got %s", diagram.RejectSelfConnection, code)
	}
}

func TestDiagramHandler_HandleApplyTemplate(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	body := applyTemplateRequest{Origin: models.Point{X: 2, Y: 2}}
	c, rec := newJSONContext(http.MethodPost, body, "sessionId", id, "name", "pump-station")
	if err := handler.HandleApplyTemplate(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}

	var result diagram.TemplateResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(result.Equipment) != 4 {
		t.Errorf("expected 4 equipment items, got %d", len(result.Equipment))
	}
	if len(result.Pipelines) != 3 {
		t.Errorf("expected 3 pipelines, got %d", len(result.Pipelines))
	}

	// Unknown template name
	c, _ = newJSONContext(http.MethodPost, body, "sessionId", id, "name", "refinery")
	err := handler.HandleApplyTemplate(c)
	if code := rejectionCode(t, err); code != diagram.RejectUnknownType {
		t.Errorf("expected rejection %s, got %s", diagram.RejectUnknownType, code)
	}
}

func TestDiagramHandler_HandleQueryRegion(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	p := placeEquipmentRequest{Type: "tank-storage", At: models.Point{X: 2, Y: 2}}
	c, _ := newJSONContext(http.MethodPost, p, "sessionId", id)
	if err := handler.HandlePlaceEquipment(c); err != nil {
		t.Fatalf("setup placement failed: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?x=0&y=0&w=5&h=5", nil)
	rec := httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(id)

	if err := handler.HandleQueryRegion(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var response struct {
		Tags []string `json:"tags"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if len(response.Tags) != 1 || response.Tags[0] != "TK-101" {
		t.Errorf("expected [TK-101], got %v", response.Tags)
	}

	// Missing coordinates
	req = httptest.NewRequest(http.MethodGet, "/?x=0&y=0", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("sessionId")
	c.SetParamValues(id)

	err := handler.HandleQueryRegion(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected VALIDATION_ERROR, got %s", apiErr.Code)
	}
}

func TestDiagramHandler_HandleGetDiagramMsgpack(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	body := applyTemplateRequest{Origin: models.Point{X: 2, Y: 2}}
	c, _ := newJSONContext(http.MethodPost, body, "sessionId", id, "name", "pump-station")
	if err := handler.HandleApplyTemplate(c); err != nil {
		t.Fatalf("template failed: %v", err)
	}

	c, rec := newJSONContext(http.MethodGet, nil, "sessionId", id)
	if err := handler.HandleGetDiagramMsgpack(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/msgpack" {
		t.Errorf("expected msgpack content type, got %s", ct)
	}

	snap, err := diagram.UnmarshalSnapshot(rec.Body.Bytes())
	if err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if len(snap.Equipment) != 4 {
		t.Errorf("expected 4 equipment records, got %d", len(snap.Equipment))
	}
	if len(snap.Pipelines) != 3 {
		t.Errorf("expected 3 pipeline records, got %d", len(snap.Pipelines))
	}
}

func TestDiagramHandler_MoveRotateRemove(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	p := placeEquipmentRequest{Type: "pump-centrifugal", At: models.Point{X: 2, Y: 2}}
	c, _ := newJSONContext(http.MethodPost, p, "sessionId", id)
	if err := handler.HandlePlaceEquipment(c); err != nil {
		t.Fatalf("setup placement failed: %v", err)
	}

	// Move
	c, rec := newJSONContext(http.MethodPut, moveEquipmentRequest{To: models.Point{X: 10, Y: 4}},
		"sessionId", id, "tag", "P-101")
	if err := handler.HandleMoveEquipment(c); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	// Rotate to an illegal angle
	c, _ = newJSONContext(http.MethodPut, rotateEquipmentRequest{Rotation: 45},
		"sessionId", id, "tag", "P-101")
	err := handler.HandleRotateEquipment(c)
	if code := rejectionCode(t, err); code != diagram.RejectBadRotation {
		t.Errorf("expected rejection %s, got %s", diagram.RejectBadRotation, code)
	}

	// Rotate a quarter turn
	c, _ = newJSONContext(http.MethodPut, rotateEquipmentRequest{Rotation: models.Rotate90},
		"sessionId", id, "tag", "P-101")
	if err := handler.HandleRotateEquipment(c); err != nil {
		t.Fatalf("rotate failed: %v", err)
	}

	// Remove, then removing again reports the unknown tag
	c, _ = newJSONContext(http.MethodDelete, nil, "sessionId", id, "tag", "P-101")
	if err := handler.HandleRemoveEquipment(c); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	c, _ = newJSONContext(http.MethodDelete, nil, "sessionId", id, "tag", "P-101")
	err = handler.HandleRemoveEquipment(c)
	if code := rejectionCode(t, err); code != diagram.RejectUnknownTag {
		t.Errorf("expected rejection %s, got %s", diagram.RejectUnknownTag, code)
	}
}

func TestDiagramHandler_SessionLifecycle(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	c, rec := newJSONContext(http.MethodGet, nil, "sessionId", id)
	if err := handler.HandleGetSession(c); err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	var info models.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if info.DrawingNumber != "PW-1201" {
		t.Errorf("expected drawing number PW-1201, got %s", info.DrawingNumber)
	}

	c, _ = newJSONContext(http.MethodPost, nil, "sessionId", id)
	if err := handler.HandleSessionKeepAlive(c); err != nil {
		t.Fatalf("keepalive failed: %v", err)
	}

	c, _ = newJSONContext(http.MethodDelete, nil, "sessionId", id)
	if err := handler.HandleCloseSession(c); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	c, _ = newJSONContext(http.MethodPost, nil, "sessionId", id)
	err := handler.HandleSessionKeepAlive(c)
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %s", apiErr.Code)
	}
}

func TestDiagramHandler_HandleAttachInline(t *testing.T) {
	mgr := newTestSessions()
	id := openTestSession(t, mgr)
	handler := NewDiagramHandler(mgr)

	body := applyTemplateRequest{Origin: models.Point{X: 2, Y: 2}}
	c, _ := newJSONContext(http.MethodPost, body, "sessionId", id, "name", "pump-station")
	if err := handler.HandleApplyTemplate(c); err != nil {
		t.Fatalf("template failed: %v", err)
	}

	attach := attachInlineRequest{Type: "valve-gate", Pipeline: "L-101", Fraction: 0.5}
	c, rec := newJSONContext(http.MethodPost, attach, "sessionId", id)
	if err := handler.HandleAttachInline(c); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	var comp models.InlineComponent
	if err := json.Unmarshal(rec.Body.Bytes(), &comp); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if comp.ID != "HV-101" {
		t.Errorf("expected inline ID HV-101, got %s", comp.ID)
	}

	// Slide it along the line
	c, _ = newJSONContext(http.MethodPut, moveInlineRequest{Fraction: 0.25},
		"sessionId", id, "compId", "HV-101")
	if err := handler.HandleMoveInline(c); err != nil {
		t.Fatalf("move inline failed: %v", err)
	}

	// Unknown host pipeline
	attach = attachInlineRequest{Type: "valve-gate", Pipeline: "L-999", Fraction: 0.5}
	c, _ = newJSONContext(http.MethodPost, attach, "sessionId", id)
	err := handler.HandleAttachInline(c)
	if code := rejectionCode(t, err); code != diagram.RejectUnknownPipeline {
		t.Errorf("expected rejection %s, got %s", diagram.RejectUnknownPipeline, code)
	}
}
