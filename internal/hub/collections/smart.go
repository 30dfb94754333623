// Package collections derives the knowledge hub's dynamic, criteria-based
// views over a material list. Compute is a pure function of (materials,
// now): bucket membership is re-evaluated against the supplied clock on
// every call and never persisted.
package collections

import (
	"fmt"
	"time"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub"
)

// Well-known smart collection IDs.
const (
	IDRecent    = "smart-recent"
	IDFavorites = "smart-favorites"
	IDArchived  = "smart-archived"
	IDToday     = "smart-today"
	IDWeek      = "smart-week"
	IDMonth     = "smart-month"
)

// TypeID returns the smart collection ID for a per-type bucket.
func TypeID(t domain.ToolType) string { return fmt.Sprintf("smart-type-%s", t) }

type Collection struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Icon      string         `json:"icon"`
	Count     int            `json:"count"`
	Materials []hub.Material `json:"materials"`
}

// Definition is a caller-supplied custom collection: Filter decides
// membership, the result is sorted newest-first like the built-ins.
type Definition struct {
	ID     string
	Name   string
	Icon   string
	Filter func(hub.Material) bool
}

// Bundle is the full derived catalog for one (materials, now) input.
type Bundle struct {
	Recent    Collection
	Favorites Collection
	Archived  Collection
	Today     Collection
	ThisWeek  Collection
	ThisMonth Collection
	ByType    map[domain.ToolType]Collection
	Custom    []Collection

	all  []Collection
	byID map[string]Collection
}

// All returns every collection flattened into one list: the six named
// views first, then per-type buckets in enum order, then custom ones.
func (b *Bundle) All() []Collection { return b.all }

// Get looks a collection up by ID; ok is false for unknown IDs.
func (b *Bundle) Get(id string) (Collection, bool) {
	c, ok := b.byID[id]
	return c, ok
}

// Compute derives every smart collection from the material list as of
// now. It never fails: an empty input yields every collection with a
// zero count.
func Compute(materials []hub.Material, now time.Time, custom ...Definition) *Bundle {
	dayStart := startOfDay(now)
	weekStart := startOfISOWeek(now)
	monthStart := startOfMonth(now)
	// Rolling 7-day window snapped to day boundaries: today plus the
	// six days before it.
	recentStart := dayStart.AddDate(0, 0, -6)

	b := &Bundle{
		Recent: build(IDRecent, "Recenti", "clock", materials, func(m hub.Material) bool {
			return !m.IsArchived && !m.CreatedAt.Before(recentStart)
		}),
		Favorites: build(IDFavorites, "Preferiti", "star", materials, func(m hub.Material) bool {
			return m.IsFavorite && !m.IsArchived
		}),
		Archived: build(IDArchived, "Archiviati", "archive", materials, func(m hub.Material) bool {
			return m.IsArchived
		}),
		Today: build(IDToday, "Oggi", "calendar", materials, func(m hub.Material) bool {
			return !m.IsArchived && !m.CreatedAt.Before(dayStart)
		}),
		ThisWeek: build(IDWeek, "Questa Settimana", "calendar-days", materials, func(m hub.Material) bool {
			return !m.IsArchived && !m.CreatedAt.Before(weekStart)
		}),
		ThisMonth: build(IDMonth, "Questo Mese", "calendar-range", materials, func(m hub.Material) bool {
			return !m.IsArchived && !m.CreatedAt.Before(monthStart)
		}),
		ByType: make(map[domain.ToolType]Collection, len(domain.AllToolTypes)),
	}

	for _, t := range domain.AllToolTypes {
		toolType := t
		b.ByType[toolType] = build(TypeID(toolType), toolType.Label(), string(toolType), materials, func(m hub.Material) bool {
			return !m.IsArchived && m.ToolType == toolType
		})
	}

	for _, def := range custom {
		b.Custom = append(b.Custom, build(def.ID, def.Name, def.Icon, materials, def.Filter))
	}

	b.all = make([]Collection, 0, 6+len(domain.AllToolTypes)+len(b.Custom))
	b.all = append(b.all, b.Recent, b.Favorites, b.Archived, b.Today, b.ThisWeek, b.ThisMonth)
	for _, t := range domain.AllToolTypes {
		b.all = append(b.all, b.ByType[t])
	}
	b.all = append(b.all, b.Custom...)

	b.byID = make(map[string]Collection, len(b.all))
	for _, c := range b.all {
		b.byID[c.ID] = c
	}
	return b
}

func build(id, name, icon string, materials []hub.Material, match func(hub.Material) bool) Collection {
	selected := make([]hub.Material, 0)
	for _, m := range materials {
		if match != nil && match(m) {
			selected = append(selected, m)
		}
	}
	selected = hub.SortByRecency(selected)
	return Collection{
		ID:        id,
		Name:      name,
		Icon:      icon,
		Count:     len(selected),
		Materials: selected,
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfISOWeek returns the most recent Monday at midnight.
func startOfISOWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
