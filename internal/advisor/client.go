// Package advisor talks to an external drawing-review service. The
// service is optional: without an endpoint every call reports
// ErrDisabled and the rest of the application carries on. Advisor
// output is advisory only and is never applied to a diagram directly.
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pnid-studio/backend/internal/models"
)

// ErrDisabled is returned when no advisor endpoint is configured.
var ErrDisabled = errors.New("advisor is not configured")

// Suggestion is one improvement proposed by the review service.
type Suggestion struct {
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Subject string `json:"subject,omitempty"` // tag or id the advice is about
}

// Client is a thin HTTP client for the review service.
type Client struct {
	endpoint string
	key      string
	http     *http.Client
}

// NewClient builds a client for the given endpoint. An empty endpoint
// produces a disabled client.
func NewClient(endpoint, key string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		key:      key,
		http:     &http.Client{Timeout: timeout},
	}
}

// Enabled reports whether an endpoint is configured.
func (c *Client) Enabled() bool {
	return c.endpoint != ""
}

// SuggestImprovements sends the current drawing and its validation
// findings for review and returns the service's suggestions.
func (c *Client) SuggestImprovements(ctx context.Context, snap models.Snapshot, findings []models.Finding) ([]Suggestion, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}

	body := map[string]any{
		"snapshot": snap,
		"findings": findings,
	}
	var result struct {
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := c.post(ctx, "/v1/review", body, &result); err != nil {
		return nil, err
	}

	fmt.Printf("[Advisor] Review of %s returned %d suggestions\n", snap.Title.DrawingNumber, len(result.Suggestions))
	return result.Suggestions, nil
}

// GenerateSymbol asks the service to draft a glyph for a described
// piece of equipment. The caller is expected to register the result in
// the catalog, which revalidates it.
func (c *Client) GenerateSymbol(ctx context.Context, description string) (models.Glyph, error) {
	if !c.Enabled() {
		return models.Glyph{}, ErrDisabled
	}

	body := map[string]any{"description": description}
	var glyph models.Glyph
	if err := c.post(ctx, "/v1/symbol", body, &glyph); err != nil {
		return models.Glyph{}, err
	}
	if glyph.ID == "" || len(glyph.Strokes) == 0 {
		return models.Glyph{}, fmt.Errorf("advisor returned an empty symbol")
	}

	fmt.Printf("[Advisor] Generated symbol %s (%d strokes)\n", glyph.ID, len(glyph.Strokes))
	return glyph, nil
}

func (c *Client) post(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("advisor request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("advisor error %d: %s", resp.StatusCode, string(respBody))
	}
	return json.Unmarshal(respBody, result)
}
