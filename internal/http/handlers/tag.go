package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/http/response"
	"github.com/mirrorbuddy/mirrorbuddy-backend/internal/services"
)

type TagHandler struct {
	tagService services.TagService
}

func NewTagHandler(tagService services.TagService) *TagHandler {
	return &TagHandler{tagService: tagService}
}

// GET /api/tags
func (th *TagHandler) List(c *gin.Context) {
	rows, err := th.tagService.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"tags": rows})
}

// POST /api/tags
// body: { "name": "...", "color": "..." }
// Creating an existing name returns the existing tag.
func (th *TagHandler) Create(c *gin.Context) {
	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if req.Name == "" {
		response.RespondError(c, http.StatusBadRequest, "missing_name", errors.New("name is required"))
		return
	}

	tag, err := th.tagService.Create(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "tag": tag})
}

// DELETE /api/tags/:id
func (th *TagHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_id", err)
		return
	}
	if err := th.tagService.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true})
}
