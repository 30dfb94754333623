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
)

var ErrTagNotFound = fmt.Errorf("tag not found")

type TagService interface {
	Create(ctx context.Context, name, color string) (*domain.Tag, error)
	List(ctx context.Context) ([]*domain.Tag, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tagService struct {
	db      *gorm.DB
	log     *logger.Logger
	tagRepo materials.TagRepo
}

func NewTagService(db *gorm.DB, log *logger.Logger, tagRepo materials.TagRepo) TagService {
	return &tagService{
		db:      db,
		log:     log.With("service", "TagService"),
		tagRepo: tagRepo,
	}
}

func (s *tagService) userID(ctx context.Context) (uuid.UUID, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, ErrUnauthorized
	}
	return rd.UserID, nil
}

// Create is idempotent on name: creating an existing tag returns it.
func (s *tagService) Create(ctx context.Context, name, color string) (*domain.Tag, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("tag name required")
	}
	dbc := dbctx.Context{Ctx: ctx}
	existing, err := s.tagRepo.GetByName(dbc, userID, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	tag, err := s.tagRepo.Create(dbc, &domain.Tag{UserID: userID, Name: name, Color: color})
	if err != nil {
		s.log.Error("Failed to create tag", "error", err)
		return nil, err
	}
	s.log.Info("Tag created", "tagID", tag.ID, "name", name)
	return tag, nil
}

func (s *tagService) List(ctx context.Context) ([]*domain.Tag, error) {
	userID, err := s.userID(ctx)
	if err != nil {
		return nil, err
	}
	return s.tagRepo.ListByUser(dbctx.Context{Ctx: ctx}, userID)
}

func (s *tagService) Delete(ctx context.Context, id uuid.UUID) error {
	userID, err := s.userID(ctx)
	if err != nil {
		return err
	}
	n, err := s.tagRepo.Delete(dbctx.Context{Ctx: ctx}, userID, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrTagNotFound
	}
	s.log.Info("Tag deleted", "tagID", id)
	return nil
}
