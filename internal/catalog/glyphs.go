package catalog

import "github.com/pnid-studio/backend/internal/models"

// Builtin glyphs, drawn in a unit box. (0,0) is the footprint's top-left
// corner; renderers scale strokes to the placed footprint in mm.

func builtinGlyphs() map[string]models.Glyph {
	glyphs := []models.Glyph{
		{
			ID: "pump-centrifugal",
			Strokes: []models.Stroke{
				{Op: "circle", Center: models.PointF{X: 0.5, Y: 0.5}, R: 0.42},
				{Op: "line", Points: []models.PointF{{X: 0.5, Y: 0.5}, {X: 0.2, Y: 0.88}}},
				{Op: "line", Points: []models.PointF{{X: 0.5, Y: 0.5}, {X: 0.8, Y: 0.88}}},
			},
		},
		{
			ID: "vessel-vertical",
			Strokes: []models.Stroke{
				{Op: "rect", Points: []models.PointF{{X: 0.15, Y: 0.04}, {X: 0.85, Y: 0.96}}},
				{Op: "line", Points: []models.PointF{{X: 0.15, Y: 0.12}, {X: 0.85, Y: 0.12}}},
				{Op: "line", Points: []models.PointF{{X: 0.15, Y: 0.88}, {X: 0.85, Y: 0.88}}},
			},
		},
		{
			ID: "tank-storage",
			Strokes: []models.Stroke{
				{Op: "rect", Points: []models.PointF{{X: 0.05, Y: 0.18}, {X: 0.95, Y: 0.95}}},
				{Op: "polyline", Points: []models.PointF{{X: 0.05, Y: 0.18}, {X: 0.5, Y: 0.05}, {X: 0.95, Y: 0.18}}},
			},
		},
		{
			ID: "column-distillation",
			Strokes: []models.Stroke{
				{Op: "rect", Points: []models.PointF{{X: 0.2, Y: 0.03}, {X: 0.8, Y: 0.97}}},
				{Op: "line", Points: []models.PointF{{X: 0.2, Y: 0.22}, {X: 0.65, Y: 0.22}}},
				{Op: "line", Points: []models.PointF{{X: 0.35, Y: 0.41}, {X: 0.8, Y: 0.41}}},
				{Op: "line", Points: []models.PointF{{X: 0.2, Y: 0.6}, {X: 0.65, Y: 0.6}}},
				{Op: "line", Points: []models.PointF{{X: 0.35, Y: 0.79}, {X: 0.8, Y: 0.79}}},
			},
		},
		{
			ID: "exchanger-shell-tube",
			Strokes: []models.Stroke{
				{Op: "rect", Points: []models.PointF{{X: 0.04, Y: 0.15}, {X: 0.96, Y: 0.85}}},
				{Op: "line", Points: []models.PointF{{X: 0.04, Y: 0.5}, {X: 0.96, Y: 0.5}}},
				{Op: "line", Points: []models.PointF{{X: 0.12, Y: 0.15}, {X: 0.12, Y: 0.85}}},
				{Op: "line", Points: []models.PointF{{X: 0.88, Y: 0.15}, {X: 0.88, Y: 0.85}}},
			},
		},
		{
			ID: "filter-basket",
			Strokes: []models.Stroke{
				{Op: "rect", Points: []models.PointF{{X: 0.15, Y: 0.05}, {X: 0.85, Y: 0.95}}},
				{Op: "line", Points: []models.PointF{{X: 0.15, Y: 0.45}, {X: 0.85, Y: 0.3}}},
				{Op: "line", Points: []models.PointF{{X: 0.15, Y: 0.7}, {X: 0.85, Y: 0.55}}},
			},
		},
		{
			ID: "inst-field",
			Strokes: []models.Stroke{
				{Op: "circle", Center: models.PointF{X: 0.5, Y: 0.5}, R: 0.46},
			},
		},
		{
			ID: "inst-panel",
			Strokes: []models.Stroke{
				{Op: "circle", Center: models.PointF{X: 0.5, Y: 0.5}, R: 0.46},
				{Op: "line", Points: []models.PointF{{X: 0.04, Y: 0.5}, {X: 0.96, Y: 0.5}}},
			},
		},
		{
			ID: "valve-actuated",
			Strokes: []models.Stroke{
				{Op: "polyline", Points: []models.PointF{{X: 0.0, Y: 0.32}, {X: 0.5, Y: 0.5}, {X: 0.0, Y: 0.68}, {X: 0.0, Y: 0.32}}},
				{Op: "polyline", Points: []models.PointF{{X: 1.0, Y: 0.32}, {X: 0.5, Y: 0.5}, {X: 1.0, Y: 0.68}, {X: 1.0, Y: 0.32}}},
				{Op: "line", Points: []models.PointF{{X: 0.5, Y: 0.5}, {X: 0.5, Y: 0.22}}},
				{Op: "circle", Center: models.PointF{X: 0.5, Y: 0.13}, R: 0.1},
			},
		},
		{
			ID: "valve-relief",
			Strokes: []models.Stroke{
				{Op: "polyline", Points: []models.PointF{{X: 0.3, Y: 0.9}, {X: 0.1, Y: 0.55}, {X: 0.5, Y: 0.55}, {X: 0.3, Y: 0.9}}},
				{Op: "polyline", Points: []models.PointF{{X: 0.5, Y: 0.55}, {X: 0.9, Y: 0.4}, {X: 0.9, Y: 0.15}, {X: 0.5, Y: 0.55}}},
				{Op: "line", Points: []models.PointF{{X: 0.3, Y: 0.55}, {X: 0.3, Y: 0.2}}},
				{Op: "line", Points: []models.PointF{{X: 0.2, Y: 0.2}, {X: 0.4, Y: 0.28}}},
				{Op: "line", Points: []models.PointF{{X: 0.2, Y: 0.12}, {X: 0.4, Y: 0.2}}},
			},
		},
		{
			ID: "connector-offpage",
			Strokes: []models.Stroke{
				{Op: "polyline", Points: []models.PointF{{X: 0.0, Y: 0.0}, {X: 0.7, Y: 0.0}, {X: 1.0, Y: 0.5}, {X: 0.7, Y: 1.0}, {X: 0.0, Y: 1.0}, {X: 0.0, Y: 0.0}}},
			},
		},

		// Inline fittings, drawn centered on the host line.
		{
			ID: "valve-gate",
			Strokes: []models.Stroke{
				{Op: "polyline", Points: []models.PointF{{X: 0.0, Y: 0.15}, {X: 0.5, Y: 0.5}, {X: 0.0, Y: 0.85}, {X: 0.0, Y: 0.15}}},
				{Op: "polyline", Points: []models.PointF{{X: 1.0, Y: 0.15}, {X: 0.5, Y: 0.5}, {X: 1.0, Y: 0.85}, {X: 1.0, Y: 0.15}}},
			},
		},
		{
			ID: "valve-globe",
			Strokes: []models.Stroke{
				{Op: "polyline", Points: []models.PointF{{X: 0.0, Y: 0.15}, {X: 0.5, Y: 0.5}, {X: 0.0, Y: 0.85}, {X: 0.0, Y: 0.15}}},
				{Op: "polyline", Points: []models.PointF{{X: 1.0, Y: 0.15}, {X: 0.5, Y: 0.5}, {X: 1.0, Y: 0.85}, {X: 1.0, Y: 0.15}}},
				{Op: "circle", Center: models.PointF{X: 0.5, Y: 0.5}, R: 0.18, Filled: true},
			},
		},
		{
			ID: "valve-check",
			Strokes: []models.Stroke{
				{Op: "line", Points: []models.PointF{{X: 0.15, Y: 0.15}, {X: 0.15, Y: 0.85}}},
				{Op: "polyline", Points: []models.PointF{{X: 0.15, Y: 0.5}, {X: 0.85, Y: 0.15}, {X: 0.85, Y: 0.85}, {X: 0.15, Y: 0.5}}},
			},
		},
		{
			ID: "reducer",
			Strokes: []models.Stroke{
				{Op: "polyline", Points: []models.PointF{{X: 0.0, Y: 0.1}, {X: 1.0, Y: 0.35}, {X: 1.0, Y: 0.65}, {X: 0.0, Y: 0.9}, {X: 0.0, Y: 0.1}}},
			},
		},
		{
			ID: "strainer",
			Strokes: []models.Stroke{
				{Op: "rect", Points: []models.PointF{{X: 0.1, Y: 0.2}, {X: 0.9, Y: 0.8}}},
				{Op: "line", Points: []models.PointF{{X: 0.1, Y: 0.8}, {X: 0.9, Y: 0.2}}},
			},
		},
		{
			ID: "sight-glass",
			Strokes: []models.Stroke{
				{Op: "circle", Center: models.PointF{X: 0.5, Y: 0.5}, R: 0.4},
				{Op: "line", Points: []models.PointF{{X: 0.22, Y: 0.22}, {X: 0.78, Y: 0.78}}},
			},
		},
	}

	out := make(map[string]models.Glyph, len(glyphs))
	for _, g := range glyphs {
		out[g.ID] = g
	}
	return out
}
