package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/response"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/services"
)

type MaterialHandler struct {
	materialService services.MaterialService
}

func NewMaterialHandler(materialService services.MaterialService) *MaterialHandler {
	return &MaterialHandler{materialService: materialService}
}

// GET /api/materials
// With ?toolId= returns the single matching material, otherwise a
// filtered, paginated list.
func (mh *MaterialHandler) List(c *gin.Context) {
	if toolID := c.Query("toolId"); toolID != "" {
		material, err := mh.materialService.GetByToolID(c.Request.Context(), toolID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		response.RespondOK(c, gin.H{"material": material})
		return
	}

	params := services.ListMaterialsParams{
		ToolType:  c.Query("type"),
		Status:    c.Query("status"),
		Subject:   c.Query("subject"),
		MaestroID: c.Query("maestro"),
		Search:    c.Query("search"),
		Limit:     intQuery(c, "limit", 0),
		Offset:    intQuery(c, "offset", 0),
	}
	if raw := c.Query("collectionId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_collection_id", err)
			return
		}
		params.CollectionID = &id
	}
	if raw := c.Query("tagId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_tag_id", err)
			return
		}
		params.TagID = &id
	}

	rows, total, err := mh.materialService.List(c.Request.Context(), params)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	} else if limit > 100 {
		limit = 100
	}
	response.RespondOK(c, gin.H{
		"materials": rows,
		"total":     total,
		"limit":     limit,
		"offset":    params.Offset,
	})
}

// POST /api/materials
// Upserts by toolId: saving an existing tool's material overwrites it.
func (mh *MaterialHandler) Save(c *gin.Context) {
	var req services.SaveMaterialInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	material, created, err := mh.materialService.Save(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":  true,
		"material": material,
		"created":  created,
		"updated":  !created,
	})
}

// PATCH /api/materials?toolId=...
// Sparse patch: absent fields are untouched. A present-but-null
// collectionId moves the material to the root; tagIds replaces the
// whole tag set.
func (mh *MaterialHandler) Update(c *gin.Context) {
	toolID := c.Query("toolId")
	if toolID == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_tool_id", errors.New("toolId query parameter is required"))
		return
	}

	var req struct {
		Title        *string         `json:"title"`
		Content      datatypes.JSON  `json:"content"`
		Status       *string         `json:"status"`
		UserRating   *int            `json:"userRating"`
		IsBookmarked *bool           `json:"isBookmarked"`
		IsFavorite   *bool           `json:"isFavorite"`
		CollectionID json.RawMessage `json:"collectionId"`
		TagIDs       json.RawMessage `json:"tagIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	input := services.UpdateMaterialInput{
		Title:        req.Title,
		Content:      req.Content,
		Status:       req.Status,
		UserRating:   req.UserRating,
		IsBookmarked: req.IsBookmarked,
		IsFavorite:   req.IsFavorite,
	}
	if len(req.CollectionID) > 0 {
		input.CollectionIDSet = true
		if string(req.CollectionID) != "null" {
			var id uuid.UUID
			if err := json.Unmarshal(req.CollectionID, &id); err != nil {
				response.RespondError(c, http.StatusBadRequest, "invalid_collection_id", err)
				return
			}
			input.CollectionID = &id
		}
	}
	if len(req.TagIDs) > 0 && string(req.TagIDs) != "null" {
		var ids []uuid.UUID
		if err := json.Unmarshal(req.TagIDs, &ids); err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_tag_ids", err)
			return
		}
		input.TagIDs = ids
		input.TagIDsSet = true
	}

	material, err := mh.materialService.UpdateByToolID(c.Request.Context(), toolID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "material": material})
}

// DELETE /api/materials?toolId=...
func (mh *MaterialHandler) Delete(c *gin.Context) {
	toolID := c.Query("toolId")
	if toolID == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_tool_id", errors.New("toolId query parameter is required"))
		return
	}
	if err := mh.materialService.DeleteByToolID(c.Request.Context(), toolID); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "toolId": toolID})
}

func intQuery(c *gin.Context, key string, defaultVal int) int {
	raw := c.Query(key)
	if raw == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return n
}

func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, services.ErrMaterialNotFound),
		errors.Is(err, services.ErrCollectionNotFound),
		errors.Is(err, services.ErrTagNotFound):
		response.RespondError(c, http.StatusNotFound, "not_found", err)
	case errors.Is(err, services.ErrInvalidToolType),
		errors.Is(err, services.ErrMissingFields):
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	default:
		response.RespondError(c, http.StatusInternalServerError, "internal_error", err)
	}
}
