package materials

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/dbctx"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
)

type TagRepo interface {
	Create(dbc dbctx.Context, tag *domain.Tag) (*domain.Tag, error)
	GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*domain.Tag, error)
	GetByName(dbc dbctx.Context, userID uuid.UUID, name string) (*domain.Tag, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Tag, error)
	Delete(dbc dbctx.Context, userID, id uuid.UUID) (int64, error)
	AttachToMaterials(dbc dbctx.Context, materialIDs []uuid.UUID, tagIDs []uuid.UUID) error
	DetachFromMaterial(dbc dbctx.Context, materialID, tagID uuid.UUID) error
	ReplaceForMaterial(dbc dbctx.Context, materialID uuid.UUID, tagIDs []uuid.UUID) error
}

type tagRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTagRepo(db *gorm.DB, baseLog *logger.Logger) TagRepo {
	return &tagRepo{
		db:  db,
		log: baseLog.With("repo", "TagRepo"),
	}
}

func (r *tagRepo) Create(dbc dbctx.Context, tag *domain.Tag) (*domain.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).Create(tag).Error; err != nil {
		return nil, err
	}
	return tag, nil
}

func (r *tagRepo) GetByID(dbc dbctx.Context, userID, id uuid.UUID) (*domain.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var tag domain.Tag
	err := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Limit(1).
		Find(&tag).Error
	if err != nil {
		return nil, err
	}
	if tag.ID == uuid.Nil {
		return nil, nil
	}
	return &tag, nil
}

func (r *tagRepo) GetByName(dbc dbctx.Context, userID uuid.UUID, name string) (*domain.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if name == "" {
		return nil, nil
	}
	var tag domain.Tag
	err := transaction.WithContext(dbc.Ctx).
		Where("name = ? AND user_id = ?", name, userID).
		Limit(1).
		Find(&tag).Error
	if err != nil {
		return nil, err
	}
	if tag.ID == uuid.Nil {
		return nil, nil
	}
	return &tag, nil
}

func (r *tagRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Tag, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*domain.Tag
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *tagRepo) Delete(dbc dbctx.Context, userID, id uuid.UUID) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(dbc.Ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Tag{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// AttachToMaterials inserts the cross product of materialIDs and tagIDs
// into the join table, skipping pairs that already exist.
func (r *tagRepo) AttachToMaterials(dbc dbctx.Context, materialIDs []uuid.UUID, tagIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(materialIDs) == 0 || len(tagIDs) == 0 {
		return nil
	}
	links := make([]*domain.MaterialTag, 0, len(materialIDs)*len(tagIDs))
	for _, materialID := range materialIDs {
		for _, tagID := range tagIDs {
			links = append(links, &domain.MaterialTag{MaterialID: materialID, TagID: tagID})
		}
	}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&links).Error
}

// ReplaceForMaterial swaps the material's tag set wholesale.
func (r *tagRepo) ReplaceForMaterial(dbc dbctx.Context, materialID uuid.UUID, tagIDs []uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("material_id = ?", materialID).
		Delete(&domain.MaterialTag{}).Error; err != nil {
		return err
	}
	return r.AttachToMaterials(dbc, []uuid.UUID{materialID}, tagIDs)
}

func (r *tagRepo) DetachFromMaterial(dbc dbctx.Context, materialID, tagID uuid.UUID) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(dbc.Ctx).
		Where("material_id = ? AND tag_id = ?", materialID, tagID).
		Delete(&domain.MaterialTag{}).Error
}
