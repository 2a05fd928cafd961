package disambig

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type scholarAuthor struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Affiliation string   `json:"affiliation"`
	Interests   []string `json:"interests"`
}

// ScholarPerson searches a Google-Scholar-equivalent author API and returns
// up to numResults candidates. The provider is a scholarly-compatible proxy
// service; with no base URL configured the provider is skipped and returns
// no candidates.
func (f *Fetcher) ScholarPerson(ctx context.Context, name string, numResults int) ([]Candidate, error) {
	if f.scholarBaseURL == "" {
		return nil, nil
	}

	query := url.Values{}
	query.Set("name", name)
	query.Set("limit", fmt.Sprintf("%d", numResults))

	body, err := f.get(ctx, fmt.Sprintf("%s/search_author?%s", f.scholarBaseURL, query.Encode()))
	if err != nil {
		return nil, fmt.Errorf("scholar search failed: %w", err)
	}

	var authors []scholarAuthor
	if err := json.Unmarshal(body, &authors); err != nil {
		return nil, fmt.Errorf("scholar response decode failed: %w", err)
	}

	if len(authors) > numResults {
		authors = authors[:numResults]
	}

	candidates := make([]Candidate, 0, len(authors))
	for _, author := range authors {
		candidates = append(candidates, Candidate{
			Source:       SourceGScholar,
			ExternalID:   author.ID,
			Name:         author.Name,
			Affiliations: []string{author.Affiliation},
			Tags:         author.Interests,
		})
	}

	return candidates, nil
}
