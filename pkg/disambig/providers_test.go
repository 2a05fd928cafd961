package disambig

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const orcidSearchXML = `<?xml version="1.0" encoding="UTF-8"?>
<search:search xmlns:search="http://www.orcid.org/ns/search" xmlns:common="http://www.orcid.org/ns/common">
  <search:result>
    <common:orcid-identifier>
      <common:path>0000-0001-0002-0003</common:path>
    </common:orcid-identifier>
  </search:result>
</search:search>`

const orcidRecordXML = `<?xml version="1.0" encoding="UTF-8"?>
<record:record xmlns:record="http://www.orcid.org/ns/record"
    xmlns:common="http://www.orcid.org/ns/common"
    xmlns:personal-details="http://www.orcid.org/ns/personal-details"
    xmlns:keyword="http://www.orcid.org/ns/keyword"
    xmlns:activities="http://www.orcid.org/ns/activities">
  <personal-details:given-names>Ada</personal-details:given-names>
  <personal-details:family-name>Lovelace</personal-details:family-name>
  <keyword:content>computing</keyword:content>
  <keyword:content>mathematics</keyword:content>
  <keyword:content>computing</keyword:content>
  <activities:affiliation-group>
    <common:name>Analytical Engines Ltd</common:name>
  </activities:affiliation-group>
  <activities:affiliation-group>
    <common:name>Analytical Engines Ltd</common:name>
  </activities:affiliation-group>
</record:record>`

func TestORCIDPerson(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3.0/search/":
			w.Write([]byte(orcidSearchXML))
		case "/v3.0/0000-0001-0002-0003":
			w.Write([]byte(orcidRecordXML))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := NewFetcher(NewFetcherParams{ORCIDBaseURL: server.URL})

	candidates, err := f.ORCIDPerson(context.Background(), "Ada Lovelace", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}

	c := candidates[0]
	if c.Source != SourceORCID {
		t.Fatalf("expected orcid source, got %q", c.Source)
	}
	if c.ExternalID != "0000-0001-0002-0003" {
		t.Fatalf("unexpected external id %q", c.ExternalID)
	}
	if c.Name != "Ada Lovelace" {
		t.Fatalf("unexpected name %q", c.Name)
	}
	if len(c.Affiliations) != 1 || c.Affiliations[0] != "Analytical Engines Ltd" {
		t.Fatalf("expected deduplicated affiliation, got %v", c.Affiliations)
	}
	if len(c.Tags) != 2 || c.Tags[0] != "computing" || c.Tags[1] != "mathematics" {
		t.Fatalf("expected deduplicated keywords in order, got %v", c.Tags)
	}
}

func TestAMinerPerson(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/search/person" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"result":[
			{"id":"a1","name":"Grace Hopper","aff":{"desc":"US Navy"},"tags":[{"t":"compilers"}]},
			{"id":"a2","name":"Grace Murray","aff":{"desc_zh":"海军"},"tags":[]},
			{"id":"a3","name":"G. Hopper","aff":{},"tags":[]}
		]}`))
	}))
	defer server.Close()

	f := NewFetcher(NewFetcherParams{AMinerBaseURL: server.URL})

	candidates, err := f.AMinerPerson(context.Background(), "Grace Hopper", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}

	if candidates[0].Affiliations[0] != "US Navy" {
		t.Fatalf("expected english affiliation preferred, got %v", candidates[0].Affiliations)
	}
	if candidates[1].Affiliations[0] != "海军" {
		t.Fatalf("expected chinese fallback, got %v", candidates[1].Affiliations)
	}
	if candidates[2].Affiliations[0] != "Not Available" {
		t.Fatalf("expected placeholder affiliation, got %v", candidates[2].Affiliations)
	}
	if len(candidates[0].Tags) != 1 || candidates[0].Tags[0] != "compilers" {
		t.Fatalf("unexpected tags %v", candidates[0].Tags)
	}
}

func TestAMinerPerson_TruncatesToLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[
			{"id":"a1","name":"One"},
			{"id":"a2","name":"Two"},
			{"id":"a3","name":"Three"}
		]}`))
	}))
	defer server.Close()

	f := NewFetcher(NewFetcherParams{AMinerBaseURL: server.URL})

	candidates, err := f.AMinerPerson(context.Background(), "anyone", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected truncation to 2, got %d", len(candidates))
	}
}

func TestScholarPerson(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search_author" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[{"id":"s1","name":"Alan Turing","affiliation":"Bletchley Park","interests":["cryptanalysis"]}]`))
	}))
	defer server.Close()

	f := NewFetcher(NewFetcherParams{ScholarBaseURL: server.URL})

	candidates, err := f.ScholarPerson(context.Background(), "Alan Turing", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	if candidates[0].Source != SourceGScholar {
		t.Fatalf("expected gscholar source, got %q", candidates[0].Source)
	}
	if candidates[0].Affiliations[0] != "Bletchley Park" {
		t.Fatalf("unexpected affiliation %v", candidates[0].Affiliations)
	}
}

func TestScholarPerson_SkippedWithoutBaseURL(t *testing.T) {
	f := NewFetcher(NewFetcherParams{})

	candidates, err := f.ScholarPerson(context.Background(), "Anyone", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if candidates != nil {
		t.Fatalf("expected nil candidates, got %v", candidates)
	}
}

func TestFetchAll_ProviderOrder(t *testing.T) {
	orcid := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v3.0/search/":
			w.Write([]byte(orcidSearchXML))
		default:
			w.Write([]byte(orcidRecordXML))
		}
	}))
	defer orcid.Close()

	aminer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":[{"id":"a1","name":"From AMiner"}]}`))
	}))
	defer aminer.Close()

	scholar := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"s1","name":"From Scholar"}]`))
	}))
	defer scholar.Close()

	f := NewFetcher(NewFetcherParams{
		ORCIDBaseURL:   orcid.URL,
		AMinerBaseURL:  aminer.URL,
		ScholarBaseURL: scholar.URL,
	})

	candidates, err := f.FetchAll(context.Background(), "Anyone")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(candidates))
	}
	if candidates[0].Source != SourceORCID || candidates[1].Source != SourceAMiner || candidates[2].Source != SourceGScholar {
		t.Fatalf("unexpected provider order: %v", candidates)
	}
}
