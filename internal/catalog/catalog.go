// Package catalog holds the data-driven component library: equipment
// types, pipeline classes, inline component types and their glyphs.
// Placed diagrams reference catalog records by ID; behavior differences
// between component types live entirely in the records.
package catalog

import (
	"fmt"
	"sort"
	"sync"

	"github.com/pnid-studio/backend/internal/models"
)

// Catalog is the shared component library. It is seeded with the
// builtin ISA set and can be extended by CSV upload or by registering
// generated symbols. Safe for concurrent use.
type Catalog struct {
	mu          sync.RWMutex
	equipment   map[string]models.EquipmentType
	pipeClasses map[string]models.PipelineClass
	inline      map[string]models.InlineType
	glyphs      map[string]models.Glyph
}

// New creates a catalog pre-loaded with the builtin component set.
func New() *Catalog {
	c := &Catalog{
		equipment:   make(map[string]models.EquipmentType),
		pipeClasses: make(map[string]models.PipelineClass),
		inline:      make(map[string]models.InlineType),
		glyphs:      make(map[string]models.Glyph),
	}
	for _, t := range builtinEquipment() {
		c.equipment[t.ID] = t
	}
	for _, pc := range builtinPipeClasses() {
		c.pipeClasses[pc.ID] = pc
	}
	for _, it := range builtinInline() {
		c.inline[it.ID] = it
	}
	for id, g := range builtinGlyphs() {
		c.glyphs[id] = g
	}
	return c
}

// EquipmentType looks up an equipment type by ID.
func (c *Catalog) EquipmentType(id string) (models.EquipmentType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.equipment[id]
	return t, ok
}

// PipelineClass looks up a pipeline class by ID.
func (c *Catalog) PipelineClass(id string) (models.PipelineClass, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pc, ok := c.pipeClasses[id]
	return pc, ok
}

// InlineType looks up an inline component type by ID.
func (c *Catalog) InlineType(id string) (models.InlineType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, ok := c.inline[id]
	return it, ok
}

// Glyph looks up a symbol glyph by ID. The second return is false when
// the glyph is unknown; renderers substitute the placeholder and the
// validator reports a missing-symbol finding.
func (c *Catalog) Glyph(id string) (models.Glyph, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	g, ok := c.glyphs[id]
	return g, ok
}

// HasGlyph reports whether a glyph is registered without copying it.
func (c *Catalog) HasGlyph(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.glyphs[id]
	return ok
}

// RegisterGlyph adds or replaces a glyph, typically one produced by the
// symbol generation service.
func (c *Catalog) RegisterGlyph(g models.Glyph) error {
	if g.ID == "" {
		return fmt.Errorf("glyph ID is empty")
	}
	if len(g.Strokes) == 0 {
		return fmt.Errorf("glyph %s has no strokes", g.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.glyphs[g.ID] = g
	return nil
}

// MergeEquipment adds or replaces equipment types, e.g. from a CSV upload.
func (c *Catalog) MergeEquipment(types []models.EquipmentType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range types {
		c.equipment[t.ID] = t
	}
}

// MergePipeClasses adds or replaces pipeline classes.
func (c *Catalog) MergePipeClasses(classes []models.PipelineClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, pc := range classes {
		c.pipeClasses[pc.ID] = pc
	}
}

// MergeInline adds or replaces inline component types.
func (c *Catalog) MergeInline(types []models.InlineType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range types {
		c.inline[it.ID] = it
	}
}

// EquipmentTypes returns all equipment types sorted by ID.
func (c *Catalog) EquipmentTypes() []models.EquipmentType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.EquipmentType, 0, len(c.equipment))
	for _, t := range c.equipment {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PipelineClasses returns all pipeline classes sorted by ID.
func (c *Catalog) PipelineClasses() []models.PipelineClass {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.PipelineClass, 0, len(c.pipeClasses))
	for _, pc := range c.pipeClasses {
		out = append(out, pc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// InlineTypes returns all inline component types sorted by ID.
func (c *Catalog) InlineTypes() []models.InlineType {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.InlineType, 0, len(c.inline))
	for _, it := range c.inline {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
