package diagram

import (
	"github.com/pnid-studio/backend/internal/models"
)

// Legend builds the bill of materials: one row per distinct catalog
// type in use, with count and sorted tags. Rows are ordered by the
// first appearance of the type in tag-sorted traversal (equipment
// first, then inline components), so the same diagram always yields
// the same legend.
func (d *Diagram) Legend() []models.LegendRow {
	var order []string
	rows := make(map[string]*models.LegendRow)

	addUse := func(typeID, desc, symbol, tag string) {
		row, ok := rows[typeID]
		if !ok {
			row = &models.LegendRow{TypeID: typeID, Description: desc, Symbol: symbol}
			rows[typeID] = row
			order = append(order, typeID)
		}
		row.Count++
		row.Tags = append(row.Tags, tag)
	}

	for _, tag := range d.EquipmentTags() {
		e := d.equipment[tag]
		desc, symbol := e.Type, ""
		if t, ok := d.catalog.EquipmentType(e.Type); ok {
			desc, symbol = t.Description, t.Symbol
		}
		addUse(e.Type, desc, symbol, tag)
	}
	for _, id := range d.InlineIDs() {
		ic := d.inline[id]
		desc, symbol := ic.Type, ""
		if it, ok := d.catalog.InlineType(ic.Type); ok {
			desc, symbol = it.Description, it.Symbol
		}
		addUse(ic.Type, desc, symbol, id)
	}

	out := make([]models.LegendRow, 0, len(order))
	for _, typeID := range order {
		out = append(out, *rows[typeID])
	}
	return out
}
