package disambig

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
)

// ORCID XML namespaces used by the public API.
const (
	nsCommon           = "http://www.orcid.org/ns/common"
	nsPersonalDetails  = "http://www.orcid.org/ns/personal-details"
	nsKeyword          = "http://www.orcid.org/ns/keyword"
	nsActivities       = "http://www.orcid.org/ns/activities"
	affiliationGroupEl = "affiliation-group"
)

// ORCIDPerson searches the ORCID public API and resolves up to numResults
// candidate records: the search call yields ORCID iDs, each of which is
// fetched for name, affiliations and keywords.
func (f *Fetcher) ORCIDPerson(ctx context.Context, name string, numResults int) ([]Candidate, error) {
	query := url.Values{}
	query.Set("q", name)
	query.Set("start", "0")
	query.Set("rows", fmt.Sprintf("%d", numResults))

	searchBody, err := f.get(ctx, fmt.Sprintf("%s/v3.0/search/?%s", f.orcidBaseURL, query.Encode()))
	if err != nil {
		return nil, fmt.Errorf("orcid search failed: %w", err)
	}

	orcids := collectXMLText(searchBody, nsCommon, "path")
	if len(orcids) > numResults {
		orcids = orcids[:numResults]
	}

	candidates := make([]Candidate, 0, len(orcids))
	for _, orcid := range orcids {
		recordBody, err := f.get(ctx, fmt.Sprintf("%s/v3.0/%s", f.orcidBaseURL, orcid))
		if err != nil {
			return nil, fmt.Errorf("orcid record fetch failed for %s: %w", orcid, err)
		}

		given := firstOrEmpty(collectXMLText(recordBody, nsPersonalDetails, "given-names"))
		family := firstOrEmpty(collectXMLText(recordBody, nsPersonalDetails, "family-name"))

		affiliations := dedupe(collectXMLTextWithin(recordBody, nsActivities, affiliationGroupEl, nsCommon, "name"))
		keywords := dedupe(collectXMLText(recordBody, nsKeyword, "content"))

		candidates = append(candidates, Candidate{
			Source:       SourceORCID,
			ExternalID:   orcid,
			Name:         strings.TrimSpace(given + " " + family),
			Affiliations: affiliations,
			Tags:         keywords,
		})
	}

	return candidates, nil
}

func firstOrEmpty(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// collectXMLText returns the character content of every element matching
// the namespace and local name, in document order.
func collectXMLText(data []byte, space, local string) []string {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	for {
		token, err := decoder.Token()
		if err != nil {
			return out
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Space != space || start.Name.Local != local {
			continue
		}
		var text string
		if err := decoder.DecodeElement(&text, &start); err != nil {
			return out
		}
		out = append(out, strings.TrimSpace(text))
	}
}

// collectXMLTextWithin works like collectXMLText but only matches elements
// nested inside a container element (namespace + local name).
func collectXMLTextWithin(data []byte, containerSpace, containerLocal, space, local string) []string {
	decoder := xml.NewDecoder(bytes.NewReader(data))
	var out []string
	containerDepth := 0
	for {
		token, err := decoder.Token()
		if err != nil {
			return out
		}
		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Space == containerSpace && t.Name.Local == containerLocal {
				containerDepth++
				continue
			}
			if containerDepth > 0 && t.Name.Space == space && t.Name.Local == local {
				var text string
				if err := decoder.DecodeElement(&text, &t); err != nil {
					return out
				}
				out = append(out, strings.TrimSpace(text))
			}
		case xml.EndElement:
			if t.Name.Space == containerSpace && t.Name.Local == containerLocal {
				containerDepth--
			}
		}
	}
}
