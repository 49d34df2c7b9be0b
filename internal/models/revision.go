package models

// DrawingInfo summarizes one persisted drawing in the revision store.
type DrawingInfo struct {
	ID            string `json:"id"`
	DrawingNumber string `json:"drawingNumber"`
	Title         string `json:"title"`
	Sheet         string `json:"sheet"`
	Revisions     int    `json:"revisions"`
	UpdatedAt     int64  `json:"updatedAt"` // Unix ms
}

// RevisionInfo summarizes one saved revision of a drawing.
type RevisionInfo struct {
	DrawingID string `json:"drawingId"`
	Seq       int    `json:"seq"`
	Note      string `json:"note,omitempty"`
	Equipment int    `json:"equipmentCount"`
	Pipelines int    `json:"pipelineCount"`
	CreatedAt int64  `json:"createdAt"` // Unix ms
	SizeBytes int    `json:"sizeBytes"`
}
