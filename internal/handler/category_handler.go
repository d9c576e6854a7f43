package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bloghub/internal/db"
)

type categoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

type categoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PostCount int64  `json:"postCount"`
}

func newCategoryResponse(category db.Category) categoryResponse {
	return categoryResponse{ID: category.ID, Name: category.Name, PostCount: category.PostCount}
}

// GetCategories 获取分类列表及文章数
func (a *API) GetCategories(c *gin.Context) {
	categories, err := a.categories.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to list categories")
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		out = append(out, newCategoryResponse(category))
	}
	c.JSON(http.StatusOK, out)
}

// CreateCategory 创建分类
func (a *API) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if !bindJSON(c, &req, "category name must be between 2 and 50 characters") {
		return
	}

	category, err := a.categories.Create(c.Request.Context(), req.Name)
	if err != nil {
		respondServiceError(c, err, "failed to create category")
		return
	}

	c.JSON(http.StatusCreated, newCategoryResponse(*category))
}

// DeleteCategory 删除没有文章的分类
func (a *API) DeleteCategory(c *gin.Context) {
	if err := a.categories.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "failed to delete category")
		return
	}

	c.Status(http.StatusNoContent)
}
