// handlers_analysis.go - Validation, legend, control loop and advisor handlers
package api

import (
	"encoding/base64"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/pnid-studio/backend/internal/advisor"
	"github.com/pnid-studio/backend/internal/diagram"
	"github.com/pnid-studio/backend/internal/models"
	"github.com/pnid-studio/backend/internal/session"
)

// AnalysisHandlerImpl implements the AnalysisHandler interface. It owns
// the active validation rules; updates apply to every session.
type AnalysisHandlerImpl struct {
	sessions *session.Manager
	advisor  *advisor.Client

	mu          sync.RWMutex
	rules       models.ValidationRules
	rulesSource string
}

// NewAnalysisHandler creates a new analysis handler instance
func NewAnalysisHandler(sessions *session.Manager, adv *advisor.Client, rules models.ValidationRules, source string) AnalysisHandler {
	if source == "" {
		source = "builtin"
	}
	return &AnalysisHandlerImpl{
		sessions:    sessions,
		advisor:     adv,
		rules:       rules,
		rulesSource: source,
	}
}

func (h *AnalysisHandlerImpl) currentRules() models.ValidationRules {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.rules
}

// HandleFindings runs the validator over the session's diagram
func (h *AnalysisHandlerImpl) HandleFindings(c echo.Context) error {
	rules := h.currentRules()
	var findings []models.Finding
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		findings = d.Validate(rules)
		return nil
	})
	if err != nil {
		return err
	}

	errors, warnings := 0, 0
	for _, f := range findings {
		if f.Severity == models.SeverityError {
			errors++
		} else {
			warnings++
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"findings": findings,
		"errors":   errors,
		"warnings": warnings,
	})
}

// HandleLegend returns the bill of materials
func (h *AnalysisHandlerImpl) HandleLegend(c echo.Context) error {
	var rows []models.LegendRow
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		rows = d.Legend()
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"rows": rows})
}

// HandleControls returns the control loop analysis
func (h *AnalysisHandlerImpl) HandleControls(c echo.Context) error {
	var report models.ControlReport
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		report = d.AnalyzeControls()
		return nil
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// HandleSuggest sends the diagram and its findings to the advisor
func (h *AnalysisHandlerImpl) HandleSuggest(c echo.Context) error {
	rules := h.currentRules()
	var snap models.Snapshot
	var findings []models.Finding
	err := h.sessions.WithDiagram(c.Param("sessionId"), func(d *diagram.Diagram) error {
		snap = d.Snapshot()
		findings = d.Validate(rules)
		return nil
	})
	if err != nil {
		return err
	}

	// The advisor call happens outside the session lock; reviews can be
	// slow and must not block editing.
	suggestions, err := h.advisor.SuggestImprovements(c.Request().Context(), snap, findings)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// HandleGetRules returns the active validation rules
func (h *AnalysisHandlerImpl) HandleGetRules(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"info": models.RulesInfo{
			Source:      h.rulesSource,
			PrefixCount: len(h.rules.AllowedPrefixes),
			CheckCount:  len(h.rules.Checks),
		},
		"rules": h.rules,
	})
}

type updateRulesRequest struct {
	Name string `json:"name"`
	Data string `json:"data"` // Base64-encoded YAML document
}

// HandleUpdateRules replaces the active validation rules from an
// uploaded YAML document
func (h *AnalysisHandlerImpl) HandleUpdateRules(c echo.Context) error {
	var req updateRulesRequest
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
	rules, err := diagram.ParseRules(decoded)
	if err != nil {
		return NewBadRequestError("invalid rules document", err)
	}

	source := req.Name
	if source == "" {
		source = "uploaded"
	}

	h.mu.Lock()
	h.rules = rules
	h.rulesSource = source
	h.mu.Unlock()

	return c.JSON(http.StatusOK, models.RulesInfo{
		Source:      source,
		PrefixCount: len(rules.AllowedPrefixes),
		CheckCount:  len(rules.Checks),
	})
}
