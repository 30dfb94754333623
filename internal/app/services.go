package app

import (
	"gorm.io/gorm"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/realtime"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/realtime/bus"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/services"
)

type Services struct {
	Material   services.MaterialService
	Collection services.CollectionService
	Tag        services.TagService
}

// wireServices picks the SSE emitter based on config: with Redis
// configured, events go through the bus so every instance sees them;
// without it they go straight to the local hub.
func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, sseHub *realtime.SSEHub, sseBus bus.Bus) Services {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter
	if sseBus != nil {
		emitter = &services.RedisEmitter{Bus: sseBus}
	} else {
		emitter = &services.HubEmitter{Hub: sseHub}
	}

	return Services{
		Material:   services.NewMaterialService(db, log, repos.Material, repos.Tag, emitter),
		Collection: services.NewCollectionService(db, log, repos.Collection, repos.Material, emitter),
		Tag:        services.NewTagService(db, log, repos.Tag),
	}
}
