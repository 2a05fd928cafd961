// Package disambig scores candidate identities returned by external person
// search providers against a target name. It supplies the scoring primitive
// and the raw per-provider candidate lists; deciding which candidate (if
// any) is a match is left to the caller.
package disambig

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

// Source identifies the provider a candidate came from.
type Source string

const (
	SourceORCID    Source = "orcid"
	SourceAMiner   Source = "aminer"
	SourceGScholar Source = "gscholar"
)

// Candidate is an unverified identity record returned by one provider.
// Candidates are ephemeral: they are produced per disambiguation query and
// never persisted by the pipeline.
type Candidate struct {
	Source       Source   `json:"source"`
	ExternalID   string   `json:"external_id"`
	Name         string   `json:"name"`
	Affiliations []string `json:"affiliations"`
	Tags         []string `json:"tags"`
}

// Ranked is a candidate together with its similarity distance to the query
// name (lower is more similar).
type Ranked struct {
	Candidate
	Distance int `json:"distance"`
}

// Similarity computes the edit distance between two person names, tolerating
// first/last name order swaps: besides name1 itself, the distance is also
// computed with name1's first token moved to the end and with its last token
// moved to the front, and the minimum of the three is returned. Comparison
// is case-insensitive.
//
// Only name1 is permuted, so Similarity is intentionally asymmetric: pass
// the query name as name1 and the candidate name as name2.
func Similarity(name1, name2 string) int {
	variants := []string{name1}

	tokens := strings.Split(name1, " ")
	if len(tokens) > 1 {
		firstToLast := strings.Join(append(append([]string{}, tokens[1:]...), tokens[0]), " ")
		lastToFirst := strings.Join(append([]string{tokens[len(tokens)-1]}, tokens[:len(tokens)-1]...), " ")
		variants = append(variants, firstToLast, lastToFirst)
	}

	target := strings.ToLower(name2)
	best := -1
	for _, variant := range variants {
		distance := levenshtein.ComputeDistance(strings.ToLower(variant), target)
		if best < 0 || distance < best {
			best = distance
		}
	}
	return best
}

// RankCandidates orders candidates by ascending similarity distance to the
// target name. The sort is stable, so candidates with equal distance keep
// their provider order.
func RankCandidates(target string, candidates []Candidate) []Ranked {
	ranked := make([]Ranked, len(candidates))
	for i, candidate := range candidates {
		ranked[i] = Ranked{
			Candidate: candidate,
			Distance:  Similarity(target, candidate.Name),
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Distance < ranked[j].Distance
	})
	return ranked
}
