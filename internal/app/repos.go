package app

import (
	"gorm.io/gorm"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/data/repos/materials"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
)

type Repos struct {
	Material   materials.MaterialRepo
	Collection materials.CollectionRepo
	Tag        materials.TagRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Material:   materials.NewMaterialRepo(db, log),
		Collection: materials.NewCollectionRepo(db, log),
		Tag:        materials.NewTagRepo(db, log),
	}
}
