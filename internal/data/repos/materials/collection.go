package materials

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/dbctx"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
)

type CollectionRepo interface {
	Create(dbc dbctx.Context, collection *domain.Collection) (*domain.Collection, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*domain.Collection, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Collection, error)
	UpdateFields(dbc dbctx.Context, userID, id uuid.UUID, updates map[string]interface{}) (*domain.Collection, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (int64, error)
	ReassignChildren(dbc dbctx.Context, userID, fromParentID uuid.UUID, toParentID *uuid.UUID) error
	MaterialCounts(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]int64, error)
}

type collectionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCollectionRepo(db *gorm.DB, baseLog *logger.Logger) CollectionRepo {
	return &collectionRepo{
		db:  db,
		log: baseLog.With("repo", "CollectionRepo"),
	}
}

func (r *collectionRepo) Create(dbc dbctx.Context, collection *domain.Collection) (*domain.Collection, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(collection).Error; err != nil {
		return nil, err
	}
	return collection, nil
}

func (r *collectionRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*domain.Collection, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var collection domain.Collection
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&collection).Error
	if err != nil {
		return nil, err
	}
	if collection.ID == uuid.Nil {
		return nil, nil
	}
	return &collection, nil
}

func (r *collectionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Collection, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Collection
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *collectionRepo) UpdateFields(dbc dbctx.Context, userID, id uuid.UUID, updates map[string]interface{}) (*domain.Collection, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(updates) == 0 {
		return r.GetByID(dbc, userID, id)
	}
	res := transaction.WithContext(dbc.Ctx).
		Model(&domain.Collection{}).
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

func (r *collectionRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Collection{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// ReassignChildren re-parents every child of fromParentID, used when a
// folder is deleted so its subtree survives.
func (r *collectionRepo) ReassignChildren(dbc dbctx.Context, userID, fromParentID uuid.UUID, toParentID *uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&domain.Collection{}).
		Where("parent_id = ? AND user_id = ?", fromParentID, userID).
		Update("parent_id", toParentID).Error
}

func (r *collectionRepo) MaterialCounts(dbc dbctx.Context, userID uuid.UUID) (map[uuid.UUID]int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		CollectionID uuid.UUID
		Count        int64
	}
	err := transaction.WithContext(dbc.Ctx).
		Model(&domain.Material{}).
		Select("collection_id, COUNT(*) AS count").
		Where("user_id = ? AND collection_id IS NOT NULL AND status = ?", userID, domain.MaterialStatusActive).
		Group("collection_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.CollectionID] = row.Count
	}
	return counts, nil
}
