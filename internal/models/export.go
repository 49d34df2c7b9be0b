package models

import "time"

// ExportInfo represents metadata about a rendered export artifact.
type ExportInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Format    string    `json:"format"` // "svg", "png" or "dxf"
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}
