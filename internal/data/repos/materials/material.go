package materials

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/dbctx"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
)

// ListFilter narrows List. Zero-value fields are ignored; Status defaults
// to active so archived and deleted rows never leak into the library view
// unless asked for.
type ListFilter struct {
	Types        []domain.ToolType
	Status       string
	Subject      string
	MaestroID    string
	CollectionID *uuid.UUID
	TagID        *uuid.UUID
	FavoriteOnly bool
	Search       string
	Limit        int
	Offset       int
}

type MaterialRepo interface {
	Create(dbc dbctx.Context, materials []*domain.Material) ([]*domain.Material, error)
	Upsert(dbc dbctx.Context, material *domain.Material) (*domain.Material, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*domain.Material, error)
	GetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Material, error)
	GetByToolID(dbc dbctx.Context, userID uuid.UUID, toolID string) (*domain.Material, error)
	List(dbc dbctx.Context, userID uuid.UUID, filter ListFilter) ([]*domain.Material, error)
	Count(dbc dbctx.Context, userID uuid.UUID, filter ListFilter) (int64, error)
	UpdateFields(dbc dbctx.Context, userID, id uuid.UUID, updates map[string]interface{}) (*domain.Material, error)
	SetStatusByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID, status string) (int64, error)
	SoftDeleteByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	MoveToCollection(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID, collectionID *uuid.UUID) (int64, error)
	ClearCollection(dbc dbctx.Context, userID uuid.UUID, collectionID uuid.UUID) (int64, error)
}

type materialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaterialRepo(db *gorm.DB, baseLog *logger.Logger) MaterialRepo {
	return &materialRepo{
		db:  db,
		log: baseLog.With("repo", "MaterialRepo"),
	}
}

func (r *materialRepo) Create(dbc dbctx.Context, materials []*domain.Material) ([]*domain.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(materials) == 0 {
		return []*domain.Material{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// Upsert inserts the material or, when a row with the same tool_id
// already exists, overwrites its content fields in place. The tool_id is
// the client session identity so re-saving a tool run never duplicates.
func (r *materialRepo) Upsert(dbc dbctx.Context, material *domain.Material) (*domain.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "tool_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"title", "content", "searchable_text", "preview",
				"subject", "maestro_id", "session_id", "updated_at",
			}),
		}).
		Create(material).Error
	if err != nil {
		return nil, err
	}
	return r.GetByToolID(dbc, material.UserID, material.ToolID)
}

func (r *materialRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*domain.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var material domain.Material
	err := transaction.WithContext(dbc.Ctx).
		Preload("Tags.Tag").
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&material).Error
	if err != nil {
		return nil, err
	}
	if material.ID == uuid.Nil {
		return nil, nil
	}
	return &material, nil
}

func (r *materialRepo) GetByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) ([]*domain.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Material
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Tags.Tag").
		Where("id IN ? AND user_id = ?", ids, userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) GetByToolID(dbc dbctx.Context, userID uuid.UUID, toolID string) (*domain.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if toolID == "" {
		return nil, nil
	}
	var material domain.Material
	err := transaction.WithContext(dbc.Ctx).
		Where("tool_id = ? AND user_id = ?", toolID, userID).
		Limit(1).
		Find(&material).Error
	if err != nil {
		return nil, err
	}
	if material.ID == uuid.Nil {
		return nil, nil
	}
	return &material, nil
}

func (r *materialRepo) List(dbc dbctx.Context, userID uuid.UUID, filter ListFilter) ([]*domain.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Material
	q := r.applyFilter(transaction.WithContext(dbc.Ctx), userID, filter).
		Preload("Tags.Tag").
		Order("created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *materialRepo) Count(dbc dbctx.Context, userID uuid.UUID, filter ListFilter) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	err := r.applyFilter(transaction.WithContext(dbc.Ctx), userID, filter).
		Model(&domain.Material{}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *materialRepo) UpdateFields(dbc dbctx.Context, userID, id uuid.UUID, updates map[string]interface{}) (*domain.Material, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return r.GetByID(dbc, userID, id)
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return r.GetByID(dbc, userID, id)
}

func (r *materialRepo) SetStatusByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID, status string) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Update("status", status)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *materialRepo) SoftDeleteByIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id IN ? AND user_id = ?", ids, userID).
		Delete(&domain.Material{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *materialRepo) MoveToCollection(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID, collectionID *uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("id IN ? AND user_id = ?", ids, userID).
		Update("collection_id", collectionID)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ClearCollection moves every material in the collection to the root.
func (r *materialRepo) ClearCollection(dbc dbctx.Context, userID uuid.UUID, collectionID uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Where("collection_id = ? AND user_id = ?", collectionID, userID).
		Update("collection_id", nil)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *materialRepo) applyFilter(q *gorm.DB, userID uuid.UUID, filter ListFilter) *gorm.DB {
	q = q.Where("user_id = ?", userID)
	status := filter.Status
	if status == "" {
		status = domain.MaterialStatusActive
	}
	if status != "all" {
		q = q.Where("status = ?", status)
	}
	if len(filter.Types) > 0 {
		q = q.Where("tool_type IN ?", filter.Types)
	}
	if filter.Subject != "" {
		q = q.Where("subject = ?", filter.Subject)
	}
	if filter.MaestroID != "" {
		q = q.Where("maestro_id = ?", filter.MaestroID)
	}
	if filter.CollectionID != nil {
		q = q.Where("collection_id = ?", *filter.CollectionID)
	}
	if filter.TagID != nil {
		q = q.Where("id IN (?)", r.db.Model(&domain.MaterialTag{}).
			Select("material_id").
			Where("tag_id = ?", *filter.TagID))
	}
	if filter.FavoriteOnly {
		q = q.Where("is_favorite = ?", true)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(searchable_text) LIKE ?", pattern, pattern)
	}
	return q
}
