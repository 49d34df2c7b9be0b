package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pnid-studio/backend/internal/models"
)

// CSVKind identifies which of the three catalog tables a CSV carries.
type CSVKind string

const (
	CSVEquipment   CSVKind = "equipment"
	CSVPipeClasses CSVKind = "pipe-classes"
	CSVInline      CSVKind = "inline"
)

// RowError records one rejected CSV row. Loading continues past bad
// rows; callers surface the collected errors to the user.
type RowError struct {
	Line    int    `json:"line"`
	Content string `json:"content"`
	Reason  string `json:"reason"`
}

// LoadEquipmentCSV reads equipment type records.
// Columns: id,description,category,tag_prefix,width,height,symbol,ports
// where ports is "name:x:y:dir" entries joined by ";".
func LoadEquipmentCSV(r io.Reader) ([]models.EquipmentType, []*RowError, error) {
	rows, rowErrs, err := readRows(r, 8, "id")
	if err != nil {
		return nil, nil, err
	}

	types := make([]models.EquipmentType, 0, len(rows))
	for _, row := range rows {
		t := models.EquipmentType{
			ID:          strings.TrimSpace(row.fields[0]),
			Description: strings.TrimSpace(row.fields[1]),
			Category:    models.Category(strings.ToLower(strings.TrimSpace(row.fields[2]))),
			TagPrefix:   strings.ToUpper(strings.TrimSpace(row.fields[3])),
		}
		w, errW := strconv.Atoi(strings.TrimSpace(row.fields[4]))
		h, errH := strconv.Atoi(strings.TrimSpace(row.fields[5]))
		if errW != nil || errH != nil || w < 1 || h < 1 {
			rowErrs = append(rowErrs, &RowError{Line: row.line, Content: row.raw, Reason: "invalid footprint size"})
			continue
		}
		t.Width, t.Height = w, h
		t.Symbol = strings.TrimSpace(row.fields[6])

		ports, reason := parsePorts(row.fields[7], w, h)
		if reason != "" {
			rowErrs = append(rowErrs, &RowError{Line: row.line, Content: row.raw, Reason: reason})
			continue
		}
		t.Ports = ports

		if t.ID == "" || t.TagPrefix == "" {
			rowErrs = append(rowErrs, &RowError{Line: row.line, Content: row.raw, Reason: "missing id or tag prefix"})
			continue
		}
		switch t.Category {
		case models.CategoryEquipment, models.CategoryVessel, models.CategoryInstrument, models.CategoryConnector:
		default:
			rowErrs = append(rowErrs, &RowError{Line: row.line, Content: row.raw, Reason: "unknown category"})
			continue
		}
		types = append(types, t)
	}
	return types, rowErrs, nil
}

// LoadPipeClassCSV reads pipeline class records.
// Columns: id,description,kind,tag_prefix,service,size_inches,material
func LoadPipeClassCSV(r io.Reader) ([]models.PipelineClass, []*RowError, error) {
	rows, rowErrs, err := readRows(r, 7, "id")
	if err != nil {
		return nil, nil, err
	}

	classes := make([]models.PipelineClass, 0, len(rows))
	for _, row := range rows {
		pc := models.PipelineClass{
			ID:          strings.TrimSpace(row.fields[0]),
			Description: strings.TrimSpace(row.fields[1]),
			Kind:        models.LineKind(strings.ToLower(strings.TrimSpace(row.fields[2]))),
			TagPrefix:   strings.ToUpper(strings.TrimSpace(row.fields[3])),
			Service:     strings.ToUpper(strings.TrimSpace(row.fields[4])),
			SizeInches:  strings.TrimSpace(row.fields[5]),
			Material:    strings.ToUpper(strings.TrimSpace(row.fields[6])),
		}
		if pc.ID == "" || pc.TagPrefix == "" {
			rowErrs = append(rowErrs, &RowError{Line: row.line, Content: row.raw, Reason: "missing id or tag prefix"})
			continue
		}
		switch pc.Kind {
		case models.LineProcess, models.LineInstrument, models.LineElectric:
		default:
			rowErrs = append(rowErrs, &RowError{Line: row.line, Content: row.raw, Reason: "unknown line kind"})
			continue
		}
		classes = append(classes, pc)
	}
	return classes, rowErrs, nil
}

// LoadInlineCSV reads inline component type records.
// Columns: id,description,tag_prefix,symbol,kind
func LoadInlineCSV(r io.Reader) ([]models.InlineType, []*RowError, error) {
	rows, rowErrs, err := readRows(r, 5, "id")
	if err != nil {
		return nil, nil, err
	}

	types := make([]models.InlineType, 0, len(rows))
	for _, row := range rows {
		it := models.InlineType{
			ID:          strings.TrimSpace(row.fields[0]),
			Description: strings.TrimSpace(row.fields[1]),
			TagPrefix:   strings.ToUpper(strings.TrimSpace(row.fields[2])),
			Symbol:      strings.TrimSpace(row.fields[3]),
			Kind:        models.LineKind(strings.ToLower(strings.TrimSpace(row.fields[4]))),
		}
		if it.ID == "" {
			rowErrs = append(rowErrs, &RowError{Line: row.line, Content: row.raw, Reason: "missing id"})
			continue
		}
		switch it.Kind {
		case models.LineProcess, models.LineInstrument, models.LineElectric:
		default:
			rowErrs = append(rowErrs, &RowError{Line: row.line, Content: row.raw, Reason: "unknown line kind"})
			continue
		}
		types = append(types, it)
	}
	return types, rowErrs, nil
}

type csvRow struct {
	line   int
	raw    string
	fields []string
}

// readRows collects data rows with at least minFields columns, skipping
// an optional header row whose first column matches headerFirst.
func readRows(r io.Reader, minFields int, headerFirst string) ([]csvRow, []*RowError, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows []csvRow
	rowErrs := make([]*RowError, 0)
	line := 0
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading CSV: %w", err)
		}
		line++
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(fields[0]), headerFirst) {
			continue
		}
		if len(fields) < minFields {
			rowErrs = append(rowErrs, &RowError{Line: line, Content: strings.Join(fields, ","), Reason: fmt.Sprintf("expected %d columns, got %d", minFields, len(fields))})
			continue
		}
		rows = append(rows, csvRow{line: line, raw: strings.Join(fields, ","), fields: fields})
	}
	return rows, rowErrs, nil
}

// parsePorts decodes "name:x:y:dir;..." and checks each port sits on the
// footprint edge it faces, so the router's exit cell lands outside.
func parsePorts(s string, w, h int) ([]models.PortSpec, string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, "no ports defined"
	}
	entries := strings.Split(s, ";")
	ports := make([]models.PortSpec, 0, len(entries))
	seen := make(map[string]struct{})
	for _, e := range entries {
		parts := strings.Split(strings.TrimSpace(e), ":")
		if len(parts) != 4 {
			return nil, fmt.Sprintf("malformed port entry %q", e)
		}
		name := strings.TrimSpace(parts[0])
		x, errX := strconv.Atoi(strings.TrimSpace(parts[1]))
		y, errY := strconv.Atoi(strings.TrimSpace(parts[2]))
		if name == "" || errX != nil || errY != nil {
			return nil, fmt.Sprintf("malformed port entry %q", e)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Sprintf("duplicate port %q", name)
		}
		seen[name] = struct{}{}

		var dir models.Direction
		switch strings.ToLower(strings.TrimSpace(parts[3])) {
		case "up":
			dir = models.DirUp
		case "right":
			dir = models.DirRight
		case "down":
			dir = models.DirDown
		case "left":
			dir = models.DirLeft
		default:
			return nil, fmt.Sprintf("unknown port direction in %q", e)
		}

		if x < 0 || x >= w || y < 0 || y >= h {
			return nil, fmt.Sprintf("port %q outside footprint", name)
		}
		onEdge := (dir == models.DirUp && y == 0) ||
			(dir == models.DirDown && y == h-1) ||
			(dir == models.DirLeft && x == 0) ||
			(dir == models.DirRight && x == w-1)
		if !onEdge {
			return nil, fmt.Sprintf("port %q not on the %s edge", name, dir)
		}
		ports = append(ports, models.PortSpec{Name: name, Offset: models.Point{X: x, Y: y}, Dir: dir})
	}
	return ports, ""
}
