package ner

import "context"

// EntityType classifies a tagged span.
type EntityType string

// Entity types the pipeline recognizes. Extractors may emit other types;
// consumers ignore them.
const (
	EntityPerson       EntityType = "PERSON"
	EntityOrganization EntityType = "ORGANIZATION"
	EntityLocation     EntityType = "LOCATION"
)

// Entity is a single tagged span of text returned by an extractor.
type Entity struct {
	Text string     `json:"text"`
	Type EntityType `json:"type"`
}

// Extractor is the named-entity-recognition capability consumed by the
// extraction pipeline. Implementations are loaded once by the host
// application and handed down by reference; they must be safe for use from
// independent goroutines but are never called concurrently for lines of the
// same block.
//
// Extract must tolerate comma-separated fragments: callers may pass either a
// full line or a single fragment of one.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]Entity, error)
}
