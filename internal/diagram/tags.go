package diagram

import (
	"fmt"
	"regexp"
	"strconv"
)

// tagSeed is the first loop number handed out per prefix, following the
// common 100-series numbering convention.
const tagSeed = 101

// isaTagPattern matches ISA-style instrument tags: FT-101, FIC101, PSV-2001A.
var isaTagPattern = regexp.MustCompile(`^[A-Z]{2,4}-?\d{3,4}[A-Z]?$`)

// tagParts splits PREFIX-NNN[SUFFIX] tags produced by the auto-tagger
// or typed by hand.
var tagParts = regexp.MustCompile(`^([A-Z]{1,4})-?(\d{3,4})([A-Z]?)$`)

// FormatTag renders the canonical tag for a prefix and loop number.
func FormatTag(prefix string, n int) string {
	return fmt.Sprintf("%s-%03d", prefix, n)
}

// SplitTag parses a tag into prefix, loop number and optional suffix.
func SplitTag(tag string) (prefix string, n int, suffix string, ok bool) {
	m := tagParts.FindStringSubmatch(tag)
	if m == nil {
		return "", 0, "", false
	}
	num, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, "", false
	}
	return m[1], num, m[3], true
}

// nextTag returns the lowest free PREFIX-NNN starting at the seed. The
// result depends only on the set reported by used, so the same live
// tags always produce the same next tag, and numbers freed by deletion
// are handed out again.
func nextTag(prefix string, used func(string) bool) string {
	for n := tagSeed; ; n++ {
		tag := FormatTag(prefix, n)
		if !used(tag) {
			return tag
		}
	}
}

// NextEquipmentTag previews the tag the next placement of a type with
// this prefix would receive.
func (d *Diagram) NextEquipmentTag(prefix string) string {
	return nextTag(prefix, func(tag string) bool {
		_, taken := d.equipment[tag]
		return taken
	})
}

// NextPipelineTag previews the next pipeline tag for a prefix. The
// pipeline namespace is independent of equipment.
func (d *Diagram) NextPipelineTag(prefix string) string {
	return nextTag(prefix, func(tag string) bool {
		_, taken := d.pipelines[tag]
		return taken
	})
}

// NextInlineID previews the next inline component ID for a prefix.
func (d *Diagram) NextInlineID(prefix string) string {
	return nextTag(prefix, func(id string) bool {
		_, taken := d.inline[id]
		return taken
	})
}
