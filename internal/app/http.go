package app

import (
	"github.com/gin-gonic/gin"

	apphttp "github.com/mirrorbuddy/mirrorbuddy-backend/internal/http"
	httpH "github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/handlers"
	httpMW "github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/middleware"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/observability"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health         *httpH.HealthHandler
	Events         *httpH.EventsHandler
	Material       *httpH.MaterialHandler
	MaterialBulk   *httpH.MaterialBulkHandler
	MaterialSearch *httpH.MaterialSearchHandler
	Collection     *httpH.CollectionHandler
	Tag            *httpH.TagHandler
}

func wireMiddleware(log *logger.Logger, cfg Config) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, cfg.JWTSecretKey),
	}
}

func wireHandlers(log *logger.Logger, services Services, sseHub *realtime.SSEHub, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:         httpH.NewHealthHandler(),
		Events:         httpH.NewEventsHandler(log, sseHub, metrics),
		Material:       httpH.NewMaterialHandler(services.Material),
		MaterialBulk:   httpH.NewMaterialBulkHandler(services.Material),
		MaterialSearch: httpH.NewMaterialSearchHandler(services.Material),
		Collection:     httpH.NewCollectionHandler(services.Collection),
		Tag:            httpH.NewTagHandler(services.Tag),
	}
}

func wireRouter(log *logger.Logger, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	return apphttp.NewRouter(apphttp.RouterConfig{
		Log:     log,
		Metrics: metrics,

		AuthMiddleware: middleware.Auth,

		HealthHandler:         handlers.Health,
		EventsHandler:         handlers.Events,
		MaterialHandler:       handlers.Material,
		MaterialBulkHandler:   handlers.MaterialBulk,
		MaterialSearchHandler: handlers.MaterialSearch,
		CollectionHandler:     handlers.Collection,
		TagHandler:            handlers.Tag,
	})
}
