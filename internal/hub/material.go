// Package hub holds the in-memory knowledge-hub view of a material.
// Search indexing, smart collections and bulk selection all consume
// this shape read-only; the persistence model lives in internal/domain.
package hub

import (
	"time"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
)

type Material struct {
	ID       string
	Title    string
	ToolType domain.ToolType

	CreatedAt time.Time
	UpdatedAt time.Time

	// SearchableText is the denormalized blob used for fuzzy matching.
	// Empty means the title is the only searchable field.
	SearchableText string

	Subject   string
	MaestroID string

	IsFavorite bool
	IsArchived bool

	Tags         []string
	CollectionID *string
}

// Updated returns UpdatedAt, falling back to CreatedAt when unset.
func (m Material) Updated() time.Time {
	if m.UpdatedAt.IsZero() {
		return m.CreatedAt
	}
	return m.UpdatedAt
}

// FromDomain converts a persisted material into its hub view.
func FromDomain(dm *domain.Material) Material {
	tags := make([]string, 0, len(dm.Tags))
	for _, mt := range dm.Tags {
		if mt.Tag != nil {
			tags = append(tags, mt.Tag.Name)
		}
	}
	var collectionID *string
	if dm.CollectionID != nil {
		id := dm.CollectionID.String()
		collectionID = &id
	}
	return Material{
		ID:             dm.ID.String(),
		Title:          dm.Title,
		ToolType:       dm.ToolType,
		CreatedAt:      dm.CreatedAt,
		UpdatedAt:      dm.UpdatedAt,
		SearchableText: dm.SearchableText,
		Subject:        dm.Subject,
		MaestroID:      dm.MaestroID,
		IsFavorite:     dm.IsFavorite,
		IsArchived:     dm.IsArchived(),
		Tags:           tags,
		CollectionID:   collectionID,
	}
}

// FromDomainList converts a repo result set, preserving order.
func FromDomainList(dms []*domain.Material) []Material {
	out := make([]Material, 0, len(dms))
	for _, dm := range dms {
		out = append(out, FromDomain(dm))
	}
	return out
}
