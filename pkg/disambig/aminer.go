package disambig

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

type aminerResponse struct {
	Result []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Aff  struct {
			Desc   string `json:"desc"`
			DescZh string `json:"desc_zh"`
		} `json:"aff"`
		Tags []struct {
			T string `json:"t"`
		} `json:"tags"`
	} `json:"result"`
}

// AMinerPerson searches the AMiner person API and returns up to numResults
// candidates. An affiliation description in English is preferred over the
// Chinese one; records with neither carry a "Not Available" placeholder.
func (f *Fetcher) AMinerPerson(ctx context.Context, name string, numResults int) ([]Candidate, error) {
	query := url.Values{}
	query.Set("query", name)

	body, err := f.get(ctx, fmt.Sprintf("%s/api/search/person?%s", f.aminerBaseURL, query.Encode()))
	if err != nil {
		return nil, fmt.Errorf("aminer search failed: %w", err)
	}

	var response aminerResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("aminer response decode failed: %w", err)
	}

	results := response.Result
	if len(results) > numResults {
		results = results[:numResults]
	}

	candidates := make([]Candidate, 0, len(results))
	for _, person := range results {
		affiliation := person.Aff.Desc
		if affiliation == "" {
			affiliation = person.Aff.DescZh
		}
		if affiliation == "" {
			affiliation = "Not Available"
		}

		tags := make([]string, 0, len(person.Tags))
		for _, tag := range person.Tags {
			tags = append(tags, tag.T)
		}

		candidates = append(candidates, Candidate{
			Source:       SourceAMiner,
			ExternalID:   person.ID,
			Name:         person.Name,
			Affiliations: []string{affiliation},
			Tags:         tags,
		})
	}

	return candidates, nil
}
