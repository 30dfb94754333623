package http

import (
	"github.com/gin-gonic/gin"

	httpH "github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/handlers"
	httpMW "github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/middleware"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/observability"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler         *httpH.HealthHandler
	EventsHandler         *httpH.EventsHandler
	MaterialHandler       *httpH.MaterialHandler
	MaterialBulkHandler   *httpH.MaterialBulkHandler
	MaterialSearchHandler *httpH.MaterialSearchHandler
	CollectionHandler     *httpH.CollectionHandler
	TagHandler            *httpH.TagHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Realtime (SSE)
		if cfg.EventsHandler != nil {
			protected.GET("/events/stream", cfg.EventsHandler.Stream)
		}

		// Materials
		if cfg.MaterialHandler != nil {
			protected.GET("/materials", cfg.MaterialHandler.List)
			protected.POST("/materials", cfg.MaterialHandler.Save)
			protected.PATCH("/materials", cfg.MaterialHandler.Update)
			protected.DELETE("/materials", cfg.MaterialHandler.Delete)
		}

		if cfg.MaterialSearchHandler != nil {
			protected.GET("/materials/search", cfg.MaterialSearchHandler.Search)
			protected.GET("/materials/collections/smart", cfg.MaterialSearchHandler.SmartCollections)
		}

		if cfg.MaterialBulkHandler != nil {
			protected.POST("/materials/bulk/archive", cfg.MaterialBulkHandler.Archive)
			protected.POST("/materials/bulk/restore", cfg.MaterialBulkHandler.Restore)
			protected.POST("/materials/bulk/delete", cfg.MaterialBulkHandler.Delete)
			protected.POST("/materials/bulk/move", cfg.MaterialBulkHandler.Move)
			protected.POST("/materials/bulk/tags", cfg.MaterialBulkHandler.AddTags)
			protected.POST("/materials/bulk/duplicate", cfg.MaterialBulkHandler.Duplicate)
		}

		// Collections
		if cfg.CollectionHandler != nil {
			protected.GET("/collections", cfg.CollectionHandler.List)
			protected.POST("/collections", cfg.CollectionHandler.Create)
			protected.PATCH("/collections/:id", cfg.CollectionHandler.Update)
			protected.DELETE("/collections/:id", cfg.CollectionHandler.Delete)
		}

		// Tags
		if cfg.TagHandler != nil {
			protected.GET("/tags", cfg.TagHandler.List)
			protected.POST("/tags", cfg.TagHandler.Create)
			protected.DELETE("/tags/:id", cfg.TagHandler.Delete)
		}
	}

	return r
}
