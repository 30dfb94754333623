package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/data/repos/materials"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/ctxutil"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/dbctx"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/realtime"
)

var ErrCollectionNotFound = fmt.Errorf("collection not found")

type CollectionWithCount struct {
	*domain.Collection
	MaterialCount int64 `json:"material_count"`
}

type UpdateCollectionInput struct {
	Name        *string
	Icon        *string
	Color       *string
	ParentIDSet bool
	ParentID    *uuid.UUID
}

type CollectionService interface {
	Create(ctx context.Context, name, icon, color string, parentID *uuid.UUID) (*domain.Collection, error)
	List(ctx context.Context) ([]CollectionWithCount, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateCollectionInput) (*domain.Collection, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type collectionService struct {
	db             *gorm.DB
	log            *logger.Logger
	collectionRepo materials.CollectionRepo
	materialRepo   materials.MaterialRepo
	emitter        SSEEmitter
}

func NewCollectionService(db *gorm.DB, log *logger.Logger, collectionRepo materials.CollectionRepo, materialRepo materials.MaterialRepo, emitter SSEEmitter) CollectionService {
	return &collectionService{
		db:             db,
		log:            log.With("service", "CollectionService"),
		collectionRepo: collectionRepo,
		materialRepo:   materialRepo,
		emitter:        emitter,
	}
}

func (s *collectionService) userID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return rd.UserID, nil
}

func (s *collectionService) emit(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data any) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

func (s *collectionService) Create(ctx context.Context, name, icon, color string, parentID *uuid.UUID) (*domain.Collection, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("collection name required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	if parentID != nil {
		parent, err := s.collectionRepo.GetByID(dbc, userID, *parentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, ErrCollectionNotFound
		}
	}
	collection, err := s.collectionRepo.Create(dbc, &domain.Collection{
		UserID:   userID,
		Name:     name,
		Icon:     icon,
		Color:    color,
		ParentID: parentID,
	})
	if err != nil {
		s.log.Error("Failed to create collection", "error", err)
		return nil, err
	}
	s.emit(ctx, userID, realtime.SSEEventCollectionCreated, collection)
	s.log.Info("Collection created", "collectionID", collection.ID, "name", name)
	return collection, nil
}

func (s *collectionService) List(ctx context.Context) ([]CollectionWithCount, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := s.collectionRepo.ListByUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	counts, err := s.collectionRepo.MaterialCounts(dbc, userID)
	if err != nil {
		return nil, err
	}
	out := make([]CollectionWithCount, 0, len(rows))
	for _, c := range rows {
		out = append(out, CollectionWithCount{Collection: c, MaterialCount: counts[c.ID]})
	}
	return out, nil
}

func (s *collectionService) Update(ctx context.Context, id uuid.UUID, input UpdateCollectionInput) (*domain.Collection, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil && *input.Name != "" {
		updates["name"] = *input.Name
	}
	if input.Icon != nil {
		updates["icon"] = *input.Icon
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.ParentIDSet {
		if input.ParentID != nil && *input.ParentID == id {
			return nil, fmt.Errorf("collection cannot be its own parent")
		}
		updates["parent_id"] = input.ParentID
	}

	updated, err := s.collectionRepo.UpdateFields(dbctx.Context{Ctx: ctx}, userID, id, updates)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, ErrCollectionNotFound
	}
	s.emit(ctx, userID, realtime.SSEEventCollectionUpdated, updated)
	return updated, nil
}

// Delete removes the folder, re-parents its children and detaches its
// materials so nothing is lost with it.
func (s *collectionService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		victim, err := s.collectionRepo.GetByID(dbc, userID, id)
		if err != nil {
			return err
		}
		if victim == nil {
			return ErrCollectionNotFound
		}
		if err := s.collectionRepo.ReassignChildren(dbc, userID, id, victim.ParentID); err != nil {
			return err
		}
		if _, err := s.materialRepo.ClearCollection(dbc, userID, id); err != nil {
			return err
		}
		n, err := s.collectionRepo.Delete(dbc, userID, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrCollectionNotFound
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to delete collection", "collectionID", id, "error", err)
		return err
	}

	s.emit(ctx, userID, realtime.SSEEventCollectionDeleted, map[string]any{"id": id})
	s.log.Info("Collection deleted", "collectionID", id)
	return nil
}
