package models

// ValidationRules defines the YAML document that tunes the validator:
// which instrument prefixes are accepted, and per-check overrides.
type ValidationRules struct {
	AllowedPrefixes []string        `json:"allowedPrefixes" yaml:"allowed_prefixes"`
	Checks          []CheckOverride `json:"checks" yaml:"checks"`
}

// CheckOverride disables a check or changes its severity.
type CheckOverride struct {
	Kind     FindingKind `json:"kind" yaml:"kind"`
	Enabled  *bool       `json:"enabled,omitempty" yaml:"enabled,omitempty"`   // nil means keep default
	Severity Severity    `json:"severity,omitempty" yaml:"severity,omitempty"` // empty means keep default
}

// RulesInfo contains metadata about the active rules document.
type RulesInfo struct {
	Source      string `json:"source"` // "builtin" or the loaded file path
	PrefixCount int    `json:"prefixCount"`
	CheckCount  int    `json:"checkCount"`
}
