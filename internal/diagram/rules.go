package diagram

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pnid-studio/backend/internal/models"
)

// DefaultRules returns the builtin validation rules: the standard tag
// prefixes and every check enabled at its default severity.
func DefaultRules() models.ValidationRules {
	return models.ValidationRules{
		AllowedPrefixes: []string{
			// equipment
			"P", "V", "TK", "C", "E", "FL", "PSV", "OPC",
			// instruments and actuated valves
			"FT", "PT", "TT", "LT", "FIC", "PIC", "LIC", "TIC", "PI",
			"LAH", "LAL", "PAH", "PAL", "FCV", "PCV", "LCV", "TCV", "SDV", "XV",
			// lines and inline fittings
			"L", "S", "W", "HV", "GLV", "NRV", "RED", "STR", "SG",
		},
	}
}

// LoadRulesFile reads a validation rules YAML document. Missing fields
// fall back to the defaults; an empty prefix list keeps the builtin one.
func LoadRulesFile(path string) (models.ValidationRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.ValidationRules{}, fmt.Errorf("reading rules file: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a validation rules YAML document.
func ParseRules(data []byte) (models.ValidationRules, error) {
	var rules models.ValidationRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return models.ValidationRules{}, fmt.Errorf("parsing rules YAML: %w", err)
	}
	if len(rules.AllowedPrefixes) == 0 {
		rules.AllowedPrefixes = DefaultRules().AllowedPrefixes
	}
	return rules, nil
}

// checkPolicy resolves the enabled flag and severity for one check kind.
func checkPolicy(rules models.ValidationRules, kind models.FindingKind, defSev models.Severity) (enabled bool, sev models.Severity) {
	enabled, sev = true, defSev
	for _, o := range rules.Checks {
		if o.Kind != kind {
			continue
		}
		if o.Enabled != nil {
			enabled = *o.Enabled
		}
		if o.Severity != "" {
			sev = o.Severity
		}
	}
	return enabled, sev
}
