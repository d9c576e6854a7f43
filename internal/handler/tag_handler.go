package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloghub/internal/db"
)

type createTagsRequest struct {
	Names []string `json:"names" binding:"required,min=1,max=10,dive,min=2,max=30,tag_name"`
}

type tagResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"postCount"`
}

func newTagResponses(tags []db.Tag) []tagResponse {
	out := make([]tagResponse, 0, len(tags))
	for _, tag := range tags {
		out = append(out, tagResponse{ID: tag.ID, Name: tag.Name, PostCount: tag.PostCount})
	}
	return out
}

// GetTags 获取标签列表
func (a *API) GetTags(c *gin.Context) {
	tags, err := a.tags.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to list tags")
		return
	}

	c.JSON(http.StatusOK, newTagResponses(tags))
}

// CreateTags 批量创建标签，已存在的名称直接返回
func (a *API) CreateTags(c *gin.Context) {
	var req createTagsRequest
	if !bindJSON(c, &req, "between 1 and 10 tag names of 2 to 30 characters are required") {
		return
	}

	tags, err := a.tags.CreateTags(c.Request.Context(), req.Names)
	if err != nil {
		respondServiceError(c, err, "failed to create tags")
		return
	}

	c.JSON(http.StatusCreated, newTagResponses(tags))
}

// DeleteTag 删除标签
func (a *API) DeleteTag(c *gin.Context) {
	if err := a.tags.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "failed to delete tag")
		return
	}

	c.Status(http.StatusNoContent)
}
