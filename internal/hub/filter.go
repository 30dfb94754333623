package hub

import (
	"sort"
	"time"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
)

// FilterCriteria narrows a material list. Empty fields match everything.
type FilterCriteria struct {
	Types      []domain.ToolType
	Subjects   []string
	MaestroIDs []string
	From       time.Time
	To         time.Time
}

// Filter returns the materials matching every non-empty criterion.
// The input is never mutated.
func Filter(materials []Material, criteria FilterCriteria) []Material {
	out := make([]Material, 0, len(materials))
	for _, m := range materials {
		if len(criteria.Types) > 0 && !containsType(criteria.Types, m.ToolType) {
			continue
		}
		if len(criteria.Subjects) > 0 && !containsString(criteria.Subjects, m.Subject) {
			continue
		}
		if len(criteria.MaestroIDs) > 0 && !containsString(criteria.MaestroIDs, m.MaestroID) {
			continue
		}
		if !criteria.From.IsZero() && m.CreatedAt.Before(criteria.From) {
			continue
		}
		if !criteria.To.IsZero() && m.CreatedAt.After(criteria.To) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// SortByRecency returns a new slice ordered newest-createdAt-first.
// The sort is stable so identical timestamps keep input order.
func SortByRecency(materials []Material) []Material {
	out := make([]Material, len(materials))
	copy(out, materials)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func containsType(haystack []domain.ToolType, needle domain.ToolType) bool {
	for _, t := range haystack {
		if t == needle {
			return true
		}
	}
	return false
}

func containsString(haystack []string, needle string) bool {
	if needle == "" {
		return false
	}
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}
