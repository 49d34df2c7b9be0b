package models

// Severity ranks a validation finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// FindingKind identifies one validator check.
type FindingKind string

const (
	FindingMissingSymbol    FindingKind = "missing-symbol"
	FindingDanglingPort     FindingKind = "dangling-port"
	FindingUnroutedPipeline FindingKind = "unrouted-pipeline"
	FindingDuplicateTag     FindingKind = "duplicate-tag"
	FindingOverlap          FindingKind = "overlapping-footprint"
	FindingInvalidTag       FindingKind = "invalid-tag"
	FindingOddPrefix        FindingKind = "nonstandard-prefix"
	FindingInlineUnanchored FindingKind = "inline-unanchored"
	FindingMissingRelief    FindingKind = "missing-relief"
)

// Finding is one validator result. Subject is the offending tag, or
// "diagram" for whole-diagram findings.
type Finding struct {
	Severity Severity    `json:"severity"`
	Kind     FindingKind `json:"kind"`
	Subject  string      `json:"subject"`
	Message  string      `json:"message"`
}
