package diagram

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pnid-studio/backend/internal/models"
)

// Validate inspects the diagram and returns findings ordered by kind
// then subject. It never mutates the diagram and never fails: broken
// references produce findings, not errors, so a diagram mid-edit can
// always be checked.
func (d *Diagram) Validate(rules models.ValidationRules) []models.Finding {
	var out []models.Finding
	add := func(kind models.FindingKind, defSev models.Severity, subject, format string, args ...any) {
		enabled, sev := checkPolicy(rules, kind, defSev)
		if !enabled {
			return
		}
		out = append(out, models.Finding{
			Severity: sev,
			Kind:     kind,
			Subject:  subject,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	d.checkEquipment(rules, add)
	d.checkPipelines(add)
	d.checkInline(add)
	d.checkOverlaps(add)
	d.checkDuplicates(add)
	d.checkReliefProtection(add)

	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		if out[i].Subject != out[j].Subject {
			return out[i].Subject < out[j].Subject
		}
		return out[i].Message < out[j].Message
	})
	return out
}

type addFunc func(kind models.FindingKind, defSev models.Severity, subject, format string, args ...any)

func (d *Diagram) checkEquipment(rules models.ValidationRules, add addFunc) {
	prefixOK := func(prefix string) bool {
		if len(rules.AllowedPrefixes) == 0 {
			return true
		}
		for _, p := range rules.AllowedPrefixes {
			if p == prefix {
				return true
			}
		}
		return false
	}

	for _, tag := range d.EquipmentTags() {
		e := d.equipment[tag]
		t, ok := d.catalog.EquipmentType(e.Type)
		if !ok {
			add(models.FindingMissingSymbol, models.SeverityError, tag, "type %q is not in the catalog", e.Type)
			continue
		}
		if !d.catalog.HasGlyph(t.Symbol) {
			add(models.FindingMissingSymbol, models.SeverityError, tag, "glyph %q is not registered; placeholder will be drawn", t.Symbol)
		}
		if t.Category == models.CategoryInstrument && !isaTagPattern.MatchString(tag) {
			add(models.FindingInvalidTag, models.SeverityError, tag, "instrument tag does not match ISA format")
		}
		if prefix, _, _, ok := SplitTag(tag); ok && !prefixOK(prefix) {
			add(models.FindingOddPrefix, models.SeverityWarning, tag, "prefix %q is not in the project prefix list", prefix)
		}
	}
}

func (d *Diagram) checkPipelines(add addFunc) {
	for _, tag := range d.PipelineTags() {
		p := d.pipelines[tag]
		dangling := false
		for _, ref := range []models.PortRef{p.From, p.To} {
			if _, _, err := d.PortPoint(ref); err != nil {
				add(models.FindingDanglingPort, models.SeverityError, tag, "endpoint %s.%s does not resolve", ref.Equipment, ref.Port)
				dangling = true
			}
		}
		if !dangling && !p.Routed() {
			add(models.FindingUnroutedPipeline, models.SeverityError, tag, "pipeline has no routed path")
		}
	}
}

func (d *Diagram) checkInline(add addFunc) {
	for _, id := range d.InlineIDs() {
		ic := d.inline[id]
		it, ok := d.catalog.InlineType(ic.Type)
		if !ok {
			add(models.FindingMissingSymbol, models.SeverityError, id, "type %q is not in the catalog", ic.Type)
			continue
		}
		if !d.catalog.HasGlyph(it.Symbol) {
			add(models.FindingMissingSymbol, models.SeverityError, id, "glyph %q is not registered; placeholder will be drawn", it.Symbol)
		}
		host, ok := d.pipelines[ic.Pipeline]
		if !ok {
			add(models.FindingDanglingPort, models.SeverityError, id, "host pipeline %q does not exist", ic.Pipeline)
			continue
		}
		if !host.Routed() {
			add(models.FindingInlineUnanchored, models.SeverityWarning, id, "host pipeline %s is unrouted; position is provisional", ic.Pipeline)
		}
	}
}

// checkOverlaps rechecks footprints pairwise rather than trusting the
// spatial index, so index corruption surfaces as findings.
func (d *Diagram) checkOverlaps(add addFunc) {
	tags := d.EquipmentTags()
	rects := make(map[string]models.Rect, len(tags))
	for _, tag := range tags {
		if r, ok := d.footprint(d.equipment[tag]); ok {
			rects[tag] = r
		}
	}
	for i := 0; i < len(tags); i++ {
		ri, ok := rects[tags[i]]
		if !ok {
			continue
		}
		if !d.inBounds(ri) {
			add(models.FindingOverlap, models.SeverityError, tags[i], "footprint leaves the drawable area")
		}
		for j := i + 1; j < len(tags); j++ {
			rj, ok := rects[tags[j]]
			if !ok {
				continue
			}
			if ri.Intersects(rj) {
				add(models.FindingOverlap, models.SeverityError, tags[i], "footprint overlaps %s", tags[j])
			}
		}
	}
}

// checkDuplicates looks for the same tag used across the equipment and
// inline namespaces, which would collide in the legend and BOM.
func (d *Diagram) checkDuplicates(add addFunc) {
	for _, id := range d.InlineIDs() {
		if _, clash := d.equipment[id]; clash {
			add(models.FindingDuplicateTag, models.SeverityError, id, "tag used by both equipment and an inline component")
		}
	}
}

// checkReliefProtection warns when a vessel has no relief path: none of
// its ports connect, directly or through lines, to PSV-tagged equipment.
func (d *Diagram) checkReliefProtection(add addFunc) {
	psvByNeighbor := make(map[string]bool)
	for _, p := range d.pipelines {
		fromPSV := strings.HasPrefix(p.From.Equipment, "PSV")
		toPSV := strings.HasPrefix(p.To.Equipment, "PSV")
		if fromPSV {
			psvByNeighbor[p.To.Equipment] = true
		}
		if toPSV {
			psvByNeighbor[p.From.Equipment] = true
		}
	}
	for _, tag := range d.EquipmentTags() {
		e := d.equipment[tag]
		t, ok := d.catalog.EquipmentType(e.Type)
		if !ok || t.Category != models.CategoryVessel {
			continue
		}
		if !psvByNeighbor[tag] {
			add(models.FindingMissingRelief, models.SeverityWarning, tag, "vessel has no connected relief valve")
		}
	}
}
