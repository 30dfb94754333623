// Package search builds ranked fuzzy-search indexes over knowledge-hub
// materials. Scores are normalized to 0..1 where lower is better: exact
// textual containment lands near 0, fuzzy-only matches land higher, and
// anything above the index threshold is dropped.
package search

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub"
)

const (
	DefaultThreshold = 0.3
	DefaultLimit     = 50

	defaultTitleWeight = 0.7
	defaultTextWeight  = 0.3

	// noMatch marks a field the query did not hit at all.
	noMatch = 1.0
)

// FieldTitle and FieldText identify which indexed field produced a
// result's match ranges.
const (
	FieldTitle = "title"
	FieldText  = "searchableText"
)

type Options struct {
	// Threshold is the worst acceptable score (0 exact .. 1 very loose).
	// Zero value means DefaultThreshold.
	Threshold float64

	// TypeFilter excludes materials of other tool types before the
	// index is built. Empty (or "all") indexes everything.
	TypeFilter domain.ToolType

	// TitleWeight and TextWeight bias scoring toward one field.
	// Zero values mean the 0.7/0.3 defaults.
	TitleWeight float64
	TextWeight  float64
}

type MatchRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type Result struct {
	Material hub.Material `json:"material"`
	Score    float64      `json:"score"`

	// Field names which indexed field Matches refer to.
	Field   string       `json:"field"`
	Matches []MatchRange `json:"matches,omitempty"`
}

// Index is an immutable snapshot: rebuild it whenever the material list
// or options change.
type Index struct {
	materials []hub.Material
	threshold float64
	titleW    float64
	textW     float64
}

func NewIndex(materials []hub.Material, opts Options) *Index {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	titleW := opts.TitleWeight
	if titleW <= 0 {
		titleW = defaultTitleWeight
	}
	textW := opts.TextWeight
	if textW <= 0 {
		textW = defaultTextWeight
	}

	filtered := materials
	if opts.TypeFilter != "" && opts.TypeFilter != "all" {
		filtered = make([]hub.Material, 0, len(materials))
		for _, m := range materials {
			if m.ToolType == opts.TypeFilter {
				filtered = append(filtered, m)
			}
		}
	}

	snapshot := make([]hub.Material, len(filtered))
	copy(snapshot, filtered)

	return &Index{
		materials: snapshot,
		threshold: threshold,
		titleW:    titleW,
		textW:     textW,
	}
}

// Len reports how many materials the index covers after type filtering.
func (ix *Index) Len() int { return len(ix.materials) }

// Query returns up to limit results ordered best-first. An empty or
// whitespace-only query returns nothing; showing "all materials" for an
// empty query is the caller's concern.
func (ix *Index) Query(text string, limit int) []Result {
	query := strings.TrimSpace(text)
	if query == "" {
		return []Result{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	results := make([]Result, 0, limit)
	for _, m := range ix.materials {
		titleScore, titleRanges := fieldScore(query, m.Title)
		searchable := m.SearchableText
		if searchable == "" {
			searchable = m.Title
		}
		textScore, textRanges := fieldScore(query, searchable)

		score := titleScore * weightFactor(ix.titleW)
		field := FieldTitle
		ranges := titleRanges
		if weighted := textScore * weightFactor(ix.textW); weighted < score {
			score = weighted
			field = FieldText
			ranges = textRanges
		}
		if titleScore == noMatch && textScore == noMatch {
			continue
		}
		if score > ix.threshold {
			continue
		}
		results = append(results, Result{
			Material: m,
			Score:    score,
			Field:    field,
			Matches:  ranges,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// weightFactor maps a field weight in (0,1] to a score multiplier:
// heavier fields shrink scores, lighter fields inflate them. Capped so
// a weak field cannot push a real match past 1.
func weightFactor(weight float64) float64 {
	f := 1.5 - weight
	if f < 0.5 {
		f = 0.5
	}
	if f > 1.2 {
		f = 1.2
	}
	return f
}

// fieldScore rates query against a single field. Containment is scored
// by position and coverage; otherwise the fuzzy matcher is consulted
// and its match spread determines the score.
func fieldScore(query, field string) (float64, []MatchRange) {
	if field == "" {
		return noMatch, nil
	}
	q := strings.ToLower(query)
	f := strings.ToLower(field)

	if idx := strings.Index(f, q); idx >= 0 {
		position := float64(idx) / float64(len(f))
		coverage := 1 - float64(len(q))/float64(len(f))
		score := 0.05*position + 0.05*coverage
		return score, []MatchRange{{Start: idx, End: idx + len(q)}}
	}

	matches := fuzzy.Find(q, []string{f})
	if len(matches) == 0 {
		return noMatch, nil
	}
	indexes := matches[0].MatchedIndexes
	if len(indexes) == 0 {
		return noMatch, nil
	}

	// The fuzzy band starts above the containment band's ceiling (0.1)
	// but low enough that a dense match times the lightest field factor
	// (1.2) stays under DefaultThreshold. Density is strictly below 1
	// here: a density-1 subsequence is a substring and the containment
	// branch already took it.
	span := indexes[len(indexes)-1] - indexes[0] + 1
	density := float64(len(indexes)) / float64(span)
	score := 0.15 + 0.5*(1-density)
	return score, consolidateRanges(indexes)
}

// consolidateRanges folds adjacent matched byte offsets into ranges.
func consolidateRanges(indexes []int) []MatchRange {
	if len(indexes) == 0 {
		return nil
	}
	ranges := make([]MatchRange, 0, len(indexes))
	start := indexes[0]
	prev := indexes[0]
	for _, i := range indexes[1:] {
		if i == prev+1 {
			prev = i
			continue
		}
		ranges = append(ranges, MatchRange{Start: start, End: prev + 1})
		start = i
		prev = i
	}
	ranges = append(ranges, MatchRange{Start: start, End: prev + 1})
	return ranges
}
