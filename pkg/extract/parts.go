package extract

import (
	"context"
	"strings"

	"github.com/confmine/confmine/pkg/ner"
)

// LineParts holds the recognized entity mentions of one free-text line. The
// set of recognized kinds is fixed; an empty string means the kind was not
// found.
type LineParts struct {
	Person       string
	Organization string
	Location     string
}

// extractLineParts tags a line's text with the extractor and collects the
// first mention per entity kind. The text is split on commas and each
// fragment tagged independently because extractors are insensitive to
// comma boundaries; later mentions of an already-filled kind are ignored.
func extractLineParts(ctx context.Context, extractor ner.Extractor, text string) (LineParts, error) {
	var parts LineParts

	for _, fragment := range strings.Split(text, ",") {
		entities, err := extractor.Extract(ctx, fragment)
		if err != nil {
			return LineParts{}, err
		}
		for _, entity := range entities {
			switch entity.Type {
			case ner.EntityPerson:
				if parts.Person == "" {
					parts.Person = entity.Text
				}
			case ner.EntityOrganization:
				if parts.Organization == "" {
					parts.Organization = entity.Text
				}
			case ner.EntityLocation:
				if parts.Location == "" {
					parts.Location = entity.Text
				}
			}
		}
	}

	return parts, nil
}
