package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/domain"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/response"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/hub/search"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/services"
)

type MaterialSearchHandler struct {
	materialService services.MaterialService
}

func NewMaterialSearchHandler(materialService services.MaterialService) *MaterialSearchHandler {
	return &MaterialSearchHandler{materialService: materialService}
}

// GET /api/materials/search?q=...&type=...&threshold=...&limit=...
// Fuzzy match over titles and searchable text, best score first.
func (sh *MaterialSearchHandler) Search(c *gin.Context) {
	query := c.Query("q")
	opts := search.Options{
		TypeFilter: domain.ToolType(c.Query("type")),
	}
	if raw := c.Query("threshold"); raw != "" {
		if t, err := strconv.ParseFloat(raw, 64); err == nil && t > 0 && t <= 1 {
			opts.Threshold = t
		}
	}
	limit := intQuery(c, "limit", 0)

	results, err := sh.materialService.Search(c.Request.Context(), query, opts, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"results": results,
		"total":   len(results),
		"query":   query,
	})
}

// GET /api/materials/collections/smart
// Derived groupings (recent, favorites, by type, ...) computed from the
// caller's materials at request time. Nothing here is persisted.
func (sh *MaterialSearchHandler) SmartCollections(c *gin.Context) {
	bundle, err := sh.materialService.SmartCollections(c.Request.Context(), time.Now())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if id := c.Query("id"); id != "" {
		col, ok := bundle.Get(id)
		if !ok {
			response.RespondError(c, http.StatusNotFound, "not_found", services.ErrCollectionNotFound)
			return
		}
		response.RespondOK(c, gin.H{"collection": col})
		return
	}
	response.RespondOK(c, gin.H{"collections": bundle.All()})
}
