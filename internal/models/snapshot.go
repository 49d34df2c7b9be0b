package models

// SnapshotVersion tags the snapshot layout so older payloads can be
// detected when loading revisions.
const SnapshotVersion = 1

// Snapshot is the complete serializable state of a diagram. Entity
// slices are sorted by tag/ID so equal diagrams produce equal bytes.
type Snapshot struct {
	Version       int               `json:"version" msgpack:"version"`
	Sheet         SheetSize         `json:"sheet" msgpack:"sheet"`
	GridSpacingMM int               `json:"gridSpacingMm" msgpack:"gridSpacingMm"`
	MarginMM      int               `json:"marginMm" msgpack:"marginMm"`
	Title         TitleBlock        `json:"title" msgpack:"title"`
	Revision      int               `json:"revision" msgpack:"revision"`
	Equipment     []Equipment       `json:"equipment" msgpack:"equipment"`
	Pipelines     []Pipeline        `json:"pipelines" msgpack:"pipelines"`
	Inline        []InlineComponent `json:"inline" msgpack:"inline"`
}
