package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/response"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/services"
)

type CollectionHandler struct {
	collectionService services.CollectionService
}

func NewCollectionHandler(collectionService services.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// GET /api/collections
func (ch *CollectionHandler) List(c *gin.Context) {
	rows, err := ch.collectionService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"collections": rows})
}

// POST /api/collections
// body: { "name": "...", "icon": "...", "color": "...", "parentId": "..."? }
func (ch *CollectionHandler) Create(c *gin.Context) {
	var req struct {
		Name     string     `json:"name"`
		Icon     string     `json:"icon"`
		Color    string     `json:"color"`
		ParentID *uuid.UUID `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Name == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_name", errors.New("name is required"))
		return
	}

	col, err := ch.collectionService.Create(c.Request.Context(), req.Name, req.Icon, req.Color, req.ParentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "collection": col})
}

// PATCH /api/collections/:id
// A present-but-null parentId moves the collection to the top level.
func (ch *CollectionHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}

	var req struct {
		Name     *string         `json:"name"`
		Icon     *string         `json:"icon"`
		Color    *string         `json:"color"`
		ParentID json.RawMessage `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	input := services.UpdateCollectionInput{
		Name:  req.Name,
		Icon:  req.Icon,
		Color: req.Color,
	}
	if len(req.ParentID) > 0 {
		input.ParentIDSet = true
		if string(req.ParentID) != "null" {
			var pid uuid.UUID
			if err := json.Unmarshal(req.ParentID, &pid); err != nil {
				response.RespondError(c, http.StatusBadRequest, "invalid_parent_id", err)
				return
			}
			input.ParentID = &pid
		}
	}

	col, err := ch.collectionService.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "collection": col})
}

// DELETE /api/collections/:id
// Children are reattached to the deleted collection's parent; materials
// inside are moved, never deleted.
func (ch *CollectionHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := ch.collectionService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
