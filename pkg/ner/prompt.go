package ner

import "strings"

// TagPromptText is the system prompt used by model-backed extractors. The
// single %s is filled with the comma-joined list of entity types to tag.
const TagPromptText = `You are a named-entity tagger for conference program pages.
Tag every entity mention in the provided text fragment with exactly one of the
following types: %s.

Rules:
- Copy the entity text verbatim from the input, without expanding, translating
  or correcting it.
- Tag person names as PERSON even when given in "Last, First" or
  "First Last" order.
- Tag universities, companies, institutes and research labs as ORGANIZATION.
- Tag cities, regions and countries as LOCATION.
- Do not invent entities that are not present in the text.
- If the text contains no entity of the requested types, return an empty list.`

// TaggedSpan is one model-reported entity mention.
type TaggedSpan struct {
	Text string `json:"text" jsonschema_description:"Entity text copied verbatim from the input"`
	Type string `json:"type" jsonschema_description:"One of the requested entity types"`
}

// TagResponse is the structured-output envelope shared by the model-backed
// extractor adapters.
type TagResponse struct {
	Entities []TaggedSpan `json:"entities" jsonschema_description:"Entity mentions found in the input fragment"`
}

// Spans converts a TagResponse into extractor entities, dropping spans whose
// type is not one the pipeline recognizes and spans with empty text.
func (r TagResponse) Spans() []Entity {
	entities := make([]Entity, 0, len(r.Entities))
	for _, span := range r.Entities {
		text := strings.TrimSpace(span.Text)
		if text == "" {
			continue
		}
		switch EntityType(span.Type) {
		case EntityPerson, EntityOrganization, EntityLocation:
			entities = append(entities, Entity{Text: text, Type: EntityType(span.Type)})
		}
	}
	return entities
}

// TagTypes lists the entity types requested from model-backed extractors.
func TagTypes() []string {
	return []string{string(EntityPerson), string(EntityOrganization), string(EntityLocation)}
}
