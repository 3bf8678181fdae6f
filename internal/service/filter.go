package service

import (
	"sort"
	"strings"

	lfuzzy "github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/sahilm/fuzzy"
	"github.com/sambard/marquee/internal/domain"
)

// FilterResult is one fuzzy match with metadata for highlighting.
type FilterResult struct {
	Movie          domain.Movie
	MatchedIndexes []int // Character positions that matched
	Score          int   // Higher is better (sahilm scoring)
}

// movieIndex implements sahilm/fuzzy.Source for zero-allocation matching.
type movieIndex struct {
	movies      []domain.Movie
	lowerTitles []string // Pre-computed lowercase titles
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *movieIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of movies (implements fuzzy.Source)
func (idx *movieIndex) Len() int { return len(idx.movies) }

// FilterMovies narrows a loaded movie list by a typed query. An empty
// query returns everything in original order. Primary matching is
// subsequence-based; when that finds nothing, a looser rank-fold pass
// catches transposition typos.
func FilterMovies(query string, movies []domain.Movie) []FilterResult {
	query = strings.TrimSpace(strings.ToLower(query))
	if query == "" {
		results := make([]FilterResult, len(movies))
		for i, m := range movies {
			results[i] = FilterResult{Movie: m}
		}
		return results
	}

	idx := &movieIndex{
		movies:      movies,
		lowerTitles: make([]string, len(movies)),
	}
	for i, m := range movies {
		idx.lowerTitles[i] = strings.ToLower(m.Title)
	}

	matches := fuzzy.FindFrom(query, idx)
	if len(matches) > 0 {
		results := make([]FilterResult, len(matches))
		for i, match := range matches {
			results[i] = FilterResult{
				Movie:          movies[match.Index],
				MatchedIndexes: match.MatchedIndexes,
				Score:          match.Score,
			}
		}
		return results
	}

	// Fallback: Levenshtein-ranked fold matching for typo tolerance
	ranks := lfuzzy.RankFindNormalizedFold(query, idx.lowerTitles)
	sort.Sort(ranks)

	results := make([]FilterResult, 0, len(ranks))
	for _, r := range ranks {
		results = append(results, FilterResult{
			Movie: movies[r.OriginalIndex],
			Score: -r.Distance,
		})
	}
	return results
}
