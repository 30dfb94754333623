package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/data/repos/materials"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub/collections"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub/search"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/ctxutil"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/dbctx"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/realtime"
)

type SaveMaterialInput struct {
	ToolID       string          `json:"toolId"`
	ToolType     domain.ToolType `json:"toolType"`
	Title        string          `json:"title"`
	Content      datatypes.JSON  `json:"content"`
	MaestroID    string          `json:"maestroId"`
	SessionID    string          `json:"sessionId"`
	Subject      string          `json:"subject"`
	Preview      string          `json:"preview"`
	CollectionID *uuid.UUID      `json:"collectionId"`
	TagIDs       []uuid.UUID     `json:"tagIds"`
}

// UpdateMaterialInput is a sparse patch: nil pointers leave the field
// alone. CollectionIDSet distinguishes "move to root" (set, nil value)
// from "don't touch".
type UpdateMaterialInput struct {
	Title           *string
	Content         datatypes.JSON
	Status          *string
	UserRating      *int
	IsBookmarked    *bool
	IsFavorite      *bool
	CollectionIDSet bool
	CollectionID    *uuid.UUID
	TagIDs          []uuid.UUID
	TagIDsSet       bool
}

type ListMaterialsParams struct {
	ToolType     string
	Status       string
	Subject      string
	MaestroID    string
	CollectionID *uuid.UUID
	TagID        *uuid.UUID
	Search       string
	Limit        int
	Offset       int
}

type MaterialService interface {
	Save(ctx context.Context, input SaveMaterialInput) (*domain.Material, bool, error)
	List(ctx context.Context, params ListMaterialsParams) ([]*domain.Material, int64, error)
	GetByToolID(ctx context.Context, toolID string) (*domain.Material, error)
	UpdateByToolID(ctx context.Context, toolID string, input UpdateMaterialInput) (*domain.Material, error)
	DeleteByToolID(ctx context.Context, toolID string) error

	BulkArchive(ctx context.Context, ids []uuid.UUID) (int64, error)
	BulkRestore(ctx context.Context, ids []uuid.UUID) (int64, error)
	BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error)
	BulkMove(ctx context.Context, ids []uuid.UUID, collectionID *uuid.UUID) (int64, error)
	BulkAddTags(ctx context.Context, ids []uuid.UUID, tagIDs []uuid.UUID) error
	BulkDuplicate(ctx context.Context, ids []uuid.UUID) ([]*domain.Material, error)

	Search(ctx context.Context, query string, opts search.Options, limit int) ([]search.Result, error)
	SmartCollections(ctx context.Context, now time.Time) (*collections.Bundle, error)
}

var (
	ErrUnauthorized     = fmt.Errorf("request data not set in context")
	ErrMaterialNotFound = fmt.Errorf("material not found")
	ErrInvalidToolType  = fmt.Errorf("invalid tool type")
	ErrMissingFields    = fmt.Errorf("missing required fields")
)

type materialService struct {
	db           *gorm.DB
	log          *logger.Logger
	materialRepo materials.MaterialRepo
	tagRepo      materials.TagRepo
	emitter      SSEEmitter
}

func NewMaterialService(db *gorm.DB, log *logger.Logger, materialRepo materials.MaterialRepo, tagRepo materials.TagRepo, emitter SSEEmitter) MaterialService {
	return &materialService{
		db:           db,
		log:          log.With("service", "MaterialService"),
		materialRepo: materialRepo,
		tagRepo:      tagRepo,
		emitter:      emitter,
	}
}

func (s *materialService) userID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		s.log.Warn("Request data not set in context")
		return uuid.Nil, ErrUnauthorized
	}
	return rd.UserID, nil
}

func (s *materialService) emit(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data any) {
	if s.emitter == nil {
		return
	}
	s.emitter.Emit(ctx, realtime.SSEMessage{
		Channel: realtime.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}

// Save persists a tool output. Saving the same toolId twice updates the
// existing row in place; the second return reports whether a new row
// was created.
func (s *materialService) Save(ctx context.Context, input SaveMaterialInput) (*domain.Material, bool, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, false, err
	}
	if input.ToolID == "" || input.Title == "" || len(input.Content) == 0 {
		return nil, false, ErrMissingFields
	}
	if !input.ToolType.Valid() {
		return nil, false, ErrInvalidToolType
	}

	searchableText := GenerateSearchableText(input.ToolType, input.Title, input.Content)
	preview := input.Preview
	if preview == "" {
		preview = GeneratePreview(input.ToolType, input.Title, input.Content)
	}

	var saved *domain.Material
	created := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		existing, err := s.materialRepo.GetByToolID(dbc, userID, input.ToolID)
		if err != nil {
			return err
		}
		created = existing == nil

		material := &domain.Material{
			UserID:         userID,
			ToolID:         input.ToolID,
			ToolType:       input.ToolType,
			Title:          input.Title,
			Content:        input.Content,
			SearchableText: searchableText,
			Preview:        preview,
			Subject:        input.Subject,
			MaestroID:      input.MaestroID,
			SessionID:      input.SessionID,
			Status:         domain.MaterialStatusActive,
			CollectionID:   input.CollectionID,
		}
		saved, err = s.materialRepo.Upsert(dbc, material)
		if err != nil {
			return err
		}
		if created && len(input.TagIDs) > 0 {
			if err := s.tagRepo.AttachToMaterials(dbc, []uuid.UUID{saved.ID}, input.TagIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.log.Error("Failed to save material", "toolID", input.ToolID, "error", err)
		return nil, false, err
	}

	event := realtime.SSEEventMaterialUpdated
	if created {
		event = realtime.SSEEventMaterialCreated
	}
	s.emit(ctx, userID, event, saved)
	s.log.Info("Material saved", "toolID", input.ToolID, "toolType", input.ToolType, "created", created)
	return saved, created, nil
}

func (s *materialService) List(ctx context.Context, params ListMaterialsParams) ([]*domain.Material, int64, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, 0, err
	}

	filter := materials.ListFilter{
		Status:       params.Status,
		Subject:      params.Subject,
		MaestroID:    params.MaestroID,
		CollectionID: params.CollectionID,
		TagID:        params.TagID,
		Search:       params.Search,
		Limit:        params.Limit,
		Offset:       params.Offset,
	}
	if params.ToolType != "" {
		tt := domain.ToolType(params.ToolType)
		if tt.Valid() {
			filter.Types = []domain.ToolType{tt}
		}
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}

	var (
		rows  []*domain.Material
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		rows, err = s.materialRepo.List(dbctx.Context{Ctx: gctx}, userID, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.materialRepo.Count(dbctx.Context{Ctx: gctx}, userID, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("Failed to list materials", "error", err)
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *materialService) GetByToolID(ctx context.Context, toolID string) (*domain.Material, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	material, err := s.materialRepo.GetByToolID(dbctx.Context{Ctx: ctx}, userID, toolID)
	if err != nil {
		return nil, err
	}
	if material == nil {
		return nil, ErrMaterialNotFound
	}
	return material, nil
}

func (s *materialService) UpdateByToolID(ctx context.Context, toolID string, input UpdateMaterialInput) (*domain.Material, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	var updated *domain.Material
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		existing, err := s.materialRepo.GetByToolID(dbc, userID, toolID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrMaterialNotFound
		}

		updates := map[string]interface{}{}
		if input.Title != nil && *input.Title != "" {
			updates["title"] = *input.Title
		}
		if len(input.Content) > 0 {
			title := existing.Title
			if input.Title != nil && *input.Title != "" {
				title = *input.Title
			}
			updates["content"] = input.Content
			updates["searchable_text"] = GenerateSearchableText(existing.ToolType, title, input.Content)
			updates["preview"] = GeneratePreview(existing.ToolType, title, input.Content)
		}
		if input.Status != nil {
			switch *input.Status {
			case domain.MaterialStatusActive, domain.MaterialStatusArchived, domain.MaterialStatusDeleted:
				updates["status"] = *input.Status
			default:
				return fmt.Errorf("invalid status %q", *input.Status)
			}
		}
		if input.UserRating != nil && *input.UserRating >= 1 && *input.UserRating <= 5 {
			updates["user_rating"] = *input.UserRating
		}
		if input.IsBookmarked != nil {
			updates["is_bookmarked"] = *input.IsBookmarked
		}
		if input.IsFavorite != nil {
			updates["is_favorite"] = *input.IsFavorite
		}
		if input.CollectionIDSet {
			updates["collection_id"] = input.CollectionID
		}

		if input.TagIDsSet {
			if err := s.tagRepo.ReplaceForMaterial(dbc, existing.ID, input.TagIDs); err != nil {
				return err
			}
		}

		updated, err = s.materialRepo.UpdateFields(dbc, userID, existing.ID, updates)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrMaterialNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, userID, realtime.SSEEventMaterialUpdated, updated)
	s.log.Info("Material patched", "toolID", toolID)
	return updated, nil
}

// DeleteByToolID soft-deletes by flipping status so the material stays
// recoverable from the archive view.
func (s *materialService) DeleteByToolID(ctx context.Context, toolID string) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.materialRepo.GetByToolID(dbc, userID, toolID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrMaterialNotFound
	}
	if _, err := s.materialRepo.SetStatusByIDs(dbc, userID, []uuid.UUID{existing.ID}, domain.MaterialStatusDeleted); err != nil {
		return err
	}
	s.emit(ctx, userID, realtime.SSEEventMaterialsDeleted, map[string]any{"ids": []uuid.UUID{existing.ID}})
	s.log.Info("Material deleted", "toolID", toolID)
	return nil
}

func (s *materialService) BulkArchive(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.bulkStatus(ctx, ids, domain.MaterialStatusArchived, realtime.SSEEventMaterialsArchived)
}

func (s *materialService) BulkRestore(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.bulkStatus(ctx, ids, domain.MaterialStatusActive, realtime.SSEEventMaterialsRestored)
}

func (s *materialService) BulkDelete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return s.bulkStatus(ctx, ids, domain.MaterialStatusDeleted, realtime.SSEEventMaterialsDeleted)
}

func (s *materialService) bulkStatus(ctx context.Context, ids []uuid.UUID, status string, event realtime.SSEEvent) (int64, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.materialRepo.SetStatusByIDs(dbctx.Context{Ctx: ctx}, userID, ids, status)
	if err != nil {
		s.log.Error("Bulk status update failed", "status", status, "error", err)
		return 0, err
	}
	if n > 0 {
		s.emit(ctx, userID, event, map[string]any{"ids": ids, "count": n})
	}
	return n, nil
}

func (s *materialService) BulkMove(ctx context.Context, ids []uuid.UUID, collectionID *uuid.UUID) (int64, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return 0, err
	}
	n, err := s.materialRepo.MoveToCollection(dbctx.Context{Ctx: ctx}, userID, ids, collectionID)
	if err != nil {
		s.log.Error("Bulk move failed", "error", err)
		return 0, err
	}
	if n > 0 {
		s.emit(ctx, userID, realtime.SSEEventMaterialsMoved, map[string]any{
			"ids":          ids,
			"collectionId": collectionID,
		})
	}
	return n, nil
}

func (s *materialService) BulkAddTags(ctx context.Context, ids []uuid.UUID, tagIDs []uuid.UUID) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	// Only tag rows the user actually owns.
	owned, err := s.materialRepo.GetByIDs(dbctx.Context{Ctx: ctx}, userID, ids)
	if err != nil {
		return err
	}
	ownedIDs := make([]uuid.UUID, 0, len(owned))
	for _, m := range owned {
		ownedIDs = append(ownedIDs, m.ID)
	}
	if err := s.tagRepo.AttachToMaterials(dbctx.Context{Ctx: ctx}, ownedIDs, tagIDs); err != nil {
		s.log.Error("Bulk tag failed", "error", err)
		return err
	}
	if len(ownedIDs) > 0 {
		s.emit(ctx, userID, realtime.SSEEventMaterialsTagged, map[string]any{
			"ids":    ownedIDs,
			"tagIds": tagIDs,
		})
	}
	return nil
}

// BulkDuplicate copies each material with a fresh toolId, suffixing the
// title the way the library UI labels copies.
func (s *materialService) BulkDuplicate(ctx context.Context, ids []uuid.UUID) ([]*domain.Material, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}

	var copies []*domain.Material
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		originals, err := s.materialRepo.GetByIDs(dbc, userID, ids)
		if err != nil {
			return err
		}
		copies = make([]*domain.Material, 0, len(originals))
		for _, original := range originals {
			copies = append(copies, &domain.Material{
				UserID:         userID,
				ToolID:         fmt.Sprintf("%s-copy-%s", original.ToolID, uuid.NewString()[:8]),
				ToolType:       original.ToolType,
				Title:          original.Title + " (copia)",
				Content:        original.Content,
				SearchableText: original.SearchableText,
				Preview:        original.Preview,
				Subject:        original.Subject,
				MaestroID:      original.MaestroID,
				SessionID:      original.SessionID,
				Status:         domain.MaterialStatusActive,
				CollectionID:   original.CollectionID,
			})
		}
		copies, err = s.materialRepo.Create(dbc, copies)
		return err
	})
	if err != nil {
		s.log.Error("Bulk duplicate failed", "error", err)
		return nil, err
	}

	if len(copies) > 0 {
		copyIDs := make([]uuid.UUID, 0, len(copies))
		for _, c := range copies {
			copyIDs = append(copyIDs, c.ID)
		}
		s.emit(ctx, userID, realtime.SSEEventMaterialsDuplicated, map[string]any{"ids": copyIDs})
	}
	return copies, nil
}

// Search runs the in-memory fuzzy index over the user's active
// materials. The DB list filter handles exact containment; this adds
// typo tolerance on top.
func (s *materialService) Search(ctx context.Context, query string, opts search.Options, limit int) ([]search.Result, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.materialRepo.List(dbctx.Context{Ctx: ctx}, userID, materials.ListFilter{Limit: 0})
	if err != nil {
		return nil, err
	}
	index := search.NewIndex(hub.FromDomainList(rows), opts)
	return index.Query(query, limit), nil
}

func (s *materialService) SmartCollections(ctx context.Context, now time.Time) (*collections.Bundle, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.materialRepo.List(dbctx.Context{Ctx: ctx}, userID, materials.ListFilter{Status: "all", Limit: 0})
	if err != nil {
		return nil, err
	}
	visible := make([]*domain.Material, 0, len(rows))
	for _, m := range rows {
		if m.Status == domain.MaterialStatusDeleted {
			continue
		}
		visible = append(visible, m)
	}
	return collections.Compute(hub.FromDomainList(visible), now), nil
}
