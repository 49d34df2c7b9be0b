package models

// SessionInfo is the API view of one live diagram session.
type SessionInfo struct {
	ID            string `json:"id"`
	DrawingNumber string `json:"drawingNumber,omitempty"`
	Sheet         string `json:"sheet"`
	Revision      int    `json:"revision"`
	Equipment     int    `json:"equipmentCount"`
	Pipelines     int    `json:"pipelineCount"`
	Inline        int    `json:"inlineCount"`
	CreatedAt     int64  `json:"createdAt"`    // Unix ms
	LastAccessed  int64  `json:"lastAccessed"` // Unix ms
}
