package models

// LegendRow is one bill-of-materials line: a distinct catalog type used
// on the sheet, how many, and which tags.
type LegendRow struct {
	TypeID      string   `json:"typeId"`
	Description string   `json:"description"`
	Symbol      string   `json:"symbol"`
	Count       int      `json:"count"`
	Tags        []string `json:"tags"`
}
