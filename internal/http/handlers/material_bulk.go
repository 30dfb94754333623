package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/response"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/services"
)

// MaterialBulkHandler serves the multi-select actions: every endpoint
// takes a list of material ids and applies one operation to all of them.
type MaterialBulkHandler struct {
	materialService services.MaterialService
}

func NewMaterialBulkHandler(materialService services.MaterialService) *MaterialBulkHandler {
	return &MaterialBulkHandler{materialService: materialService}
}

type bulkIDsRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func bindBulkIDs(c *gin.Context) ([]uuid.UUID, bool) {
	var req bulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return nil, false
	}
	if len(req.IDs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "missing_ids", errors.New("ids must not be empty"))
		return nil, false
	}
	return req.IDs, true
}

// POST /api/materials/bulk/archive
func (bh *MaterialBulkHandler) Archive(c *gin.Context) {
	ids, ok := bindBulkIDs(c)
	if !ok {
		return
	}
	n, err := bh.materialService.BulkArchive(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "count": n})
}

// POST /api/materials/bulk/restore
func (bh *MaterialBulkHandler) Restore(c *gin.Context) {
	ids, ok := bindBulkIDs(c)
	if !ok {
		return
	}
	n, err := bh.materialService.BulkRestore(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "count": n})
}

// POST /api/materials/bulk/delete
func (bh *MaterialBulkHandler) Delete(c *gin.Context) {
	ids, ok := bindBulkIDs(c)
	if !ok {
		return
	}
	n, err := bh.materialService.BulkDelete(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "count": n})
}

// POST /api/materials/bulk/move
// body: { "ids": [...], "collectionId": "..." | null }
func (bh *MaterialBulkHandler) Move(c *gin.Context) {
	var req struct {
		IDs          []uuid.UUID `json:"ids"`
		CollectionID *uuid.UUID  `json:"collectionId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.IDs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "missing_ids", errors.New("ids must not be empty"))
		return
	}
	n, err := bh.materialService.BulkMove(c.Request.Context(), req.IDs, req.CollectionID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "count": n})
}

// POST /api/materials/bulk/tags
// body: { "ids": [...], "tagIds": [...] }
func (bh *MaterialBulkHandler) AddTags(c *gin.Context) {
	var req struct {
		IDs    []uuid.UUID `json:"ids"`
		TagIDs []uuid.UUID `json:"tagIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.IDs) == 0 || len(req.TagIDs) == 0 {
		response.RespondError(c, http.StatusBadRequest, "missing_ids", errors.New("ids and tagIds must not be empty"))
		return
	}
	if err := bh.materialService.BulkAddTags(c.Request.Context(), req.IDs, req.TagIDs); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}

// POST /api/materials/bulk/duplicate
func (bh *MaterialBulkHandler) Duplicate(c *gin.Context) {
	ids, ok := bindBulkIDs(c)
	if !ok {
		return
	}
	copies, err := bh.materialService.BulkDuplicate(c.Request.Context(), ids)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "materials": copies, "count": len(copies)})
}
