package disambig

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultResultsPerProvider = 5

// Fetcher queries the external identity providers for candidate identities
// of a person name. Each provider lookup is a blocking HTTP call; lookups
// for one name run in parallel across providers because they are
// independent. No retries are attempted; callers needing resilience wrap
// the Fetcher themselves.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string

	orcidBaseURL   string
	aminerBaseURL  string
	scholarBaseURL string

	resultsPerProvider int
}

// NewFetcherParams configures a Fetcher. Empty base URLs fall back to the
// public endpoints; ScholarBaseURL names a scholarly-compatible proxy
// service and has no public default.
type NewFetcherParams struct {
	ORCIDBaseURL   string
	AMinerBaseURL  string
	ScholarBaseURL string

	ResultsPerProvider int
	Timeout            time.Duration
}

// NewFetcher creates a Fetcher with its own HTTP client.
func NewFetcher(params NewFetcherParams) *Fetcher {
	orcidURL := params.ORCIDBaseURL
	if orcidURL == "" {
		orcidURL = "https://pub.orcid.org"
	}
	aminerURL := params.AMinerBaseURL
	if aminerURL == "" {
		aminerURL = "https://api.aminer.org"
	}

	results := params.ResultsPerProvider
	if results <= 0 {
		results = defaultResultsPerProvider
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_9_3) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/35.0.1916.47 Safari/537.36",

		orcidBaseURL:   orcidURL,
		aminerBaseURL:  aminerURL,
		scholarBaseURL: params.ScholarBaseURL,

		resultsPerProvider: results,
	}
}

// FetchAll queries all three providers for the given name and returns the
// provider-tagged candidates in provider order (ORCID, AMiner, scholar).
// Candidates are not deduplicated across providers.
func (f *Fetcher) FetchAll(ctx context.Context, name string) ([]Candidate, error) {
	var orcid, aminer, scholar []Candidate

	eg, gCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		var err error
		orcid, err = f.ORCIDPerson(gCtx, name, f.resultsPerProvider)
		return err
	})
	eg.Go(func() error {
		var err error
		aminer, err = f.AMinerPerson(gCtx, name, f.resultsPerProvider)
		return err
	})
	eg.Go(func() error {
		var err error
		scholar, err = f.ScholarPerson(gCtx, name, f.resultsPerProvider)
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(orcid)+len(aminer)+len(scholar))
	candidates = append(candidates, orcid...)
	candidates = append(candidates, aminer...)
	candidates = append(candidates, scholar...)
	return candidates, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", f.userAgent)

	res, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", res.StatusCode, url)
	}
	return io.ReadAll(res.Body)
}
