// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match scores destination candidates against a catalog item and
// selects a single best match, an ambiguous set, or nothing.
// Implements: prd001-resolution (R1-R4); docs/ARCHITECTURE § Matcher.
package match

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/shelf-bridge/pkg/types"
)

// deaccent strips combining marks after canonical decomposition, so
// "Mó Yán" and "Mo Yan" compare equal.
var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalize lowers case, removes accents and punctuation, and collapses
// whitespace. Two strings that normalize equal are treated as the same
// title or creator.
func normalize(s string) string {
	s = strings.ToLower(s)
	if out, _, err := transform.String(deaccent, s); err == nil {
		s = out
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteByte(' ')
		default:
			// Punctuation separates words rather than gluing them.
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// levenshtein computes the edit distance between two strings by rune.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// substringFloor is the minimum similarity credited when one normalized
// string wholly contains the other, e.g. a title against its edition
// subtitle variant.
const substringFloor = 0.8

// similarity returns a score in [0,1] between two already-normalized
// strings: 1.0 for equality, at least substringFloor for containment,
// and the Levenshtein ratio otherwise.
func similarity(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	ratio := levenshteinRatio(a, b)
	if strings.Contains(a, b) || strings.Contains(b, a) {
		if ratio < substringFloor {
			return substringFloor
		}
	}
	return ratio
}

func levenshteinRatio(a, b string) float64 {
	longer := len([]rune(a))
	if lb := len([]rune(b)); lb > longer {
		longer = lb
	}
	if longer == 0 {
		return 1
	}
	return 1 - float64(levenshtein(a, b))/float64(longer)
}

// Score computes the weighted similarity of a candidate against the
// item's query title and creator. When either side lacks a creator the
// title carries the full weight, so sparse metadata is not penalized.
func Score(item types.CatalogItem, candidate types.Candidate, cfg types.MatchConfig) float64 {
	titleSim := similarity(normalize(item.QueryTitle()), normalize(candidate.Title))

	itemCreator := normalize(item.Creator)
	candCreator := normalize(candidate.Creator)
	if itemCreator == "" || candCreator == "" {
		return titleSim
	}

	creatorSim := similarity(itemCreator, candCreator)
	return cfg.TitleWeight*titleSim + (1-cfg.TitleWeight)*creatorSim
}

// Resolve scores the candidates and classifies the outcome:
//
//   - Matched when one candidate clears the accept threshold and no
//     distinct contender sits within the ambiguity margin of it.
//   - Ambiguous when two metadata-distinct candidates both clear the
//     threshold and score within the margin of each other.
//   - Unresolved otherwise, with a reason string.
//
// Candidates whose category contradicts the item's are excluded before
// scoring; if that excludes everything the reason is a category
// conflict. Ties in score (within the rank epsilon) break toward the
// lower result rank, so a platform's own relevance ordering decides
// between near-identical entries.
func Resolve(item types.CatalogItem, candidates []types.Candidate, cfg types.MatchConfig) types.Resolution {
	if len(candidates) == 0 {
		return types.Resolution{Status: types.StatusUnresolved, Reason: types.ReasonNoCandidates}
	}

	eligible, excluded := splitByCategory(item.Category, candidates)
	if len(eligible) == 0 && excluded > 0 {
		return types.Resolution{Status: types.StatusUnresolved, Reason: types.ReasonCategoryConflict}
	}
	if len(eligible) == 0 {
		return types.Resolution{Status: types.StatusUnresolved, Reason: types.ReasonNoCandidates}
	}

	scored := make([]types.ScoredCandidate, 0, len(eligible))
	seen := make(map[string]bool, len(eligible))
	for _, c := range eligible {
		if c.ID != "" && seen[c.ID] {
			continue
		}
		if c.ID != "" {
			seen[c.ID] = true
		}
		scored = append(scored, types.ScoredCandidate{
			Candidate: c,
			Score:     Score(item, c, cfg),
		})
	}

	// Highest score first, then the platform's own rank. The comparator
	// must stay transitive, so the epsilon tie-break happens after the
	// sort, against the maximum score.
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Rank < scored[j].Rank
	})

	maxScore := scored[0].Score
	if maxScore < cfg.AcceptThreshold {
		return types.Resolution{
			Status:     types.StatusUnresolved,
			Reason:     types.ReasonBelowThreshold,
			Confidence: maxScore,
			Candidates: scored,
		}
	}

	// Among candidates within the epsilon of the maximum, the lowest
	// source rank wins the top spot.
	top := scored[0]
	for _, c := range scored[1:] {
		if maxScore-c.Score > cfg.RankEpsilon {
			break
		}
		if c.Rank < top.Rank {
			top = c
		}
	}

	// Any metadata-distinct candidate above the threshold and within the
	// margin of the maximum makes the outcome ambiguous. Duplicate
	// listings of the same work are resolved by the rank tie-break above.
	for _, other := range scored {
		if maxScore-other.Score > cfg.AmbiguityMargin {
			break
		}
		if other.Score < cfg.AcceptThreshold {
			break
		}
		if sameEntry(top.Candidate, other.Candidate) {
			continue
		}
		return types.Resolution{
			Status:     types.StatusAmbiguous,
			Confidence: maxScore,
			Candidates: scored,
		}
	}

	return types.Resolution{
		Status:     types.StatusMatched,
		TargetURL:  top.URL,
		Confidence: top.Score,
		Candidates: scored,
	}
}

// splitByCategory drops candidates whose category contradicts the
// item's. Candidates without a category are kept.
func splitByCategory(want types.Category, candidates []types.Candidate) (eligible []types.Candidate, excluded int) {
	for _, c := range candidates {
		if c.Category != "" && want != "" && c.Category != want {
			excluded++
			continue
		}
		eligible = append(eligible, c)
	}
	return eligible, excluded
}

// sameEntry reports whether two candidates describe the same work under
// different listings.
func sameEntry(a, b types.Candidate) bool {
	return normalize(a.Title) == normalize(b.Title) && normalize(a.Creator) == normalize(b.Creator)
}
