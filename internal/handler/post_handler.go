package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/service"
)

type postRequest struct {
	Title      string   `json:"title" binding:"required,min=3,max=200"`
	Content    string   `json:"content" binding:"max=50000"`
	CategoryID string   `json:"categoryId" binding:"required"`
	TagIDs     []string `json:"tagIds" binding:"max=10"`
	Status     string   `json:"status" binding:"required,post_status"`
}

func (r postRequest) input() service.PostInput {
	return service.PostInput{
		Title:      r.Title,
		Content:    r.Content,
		CategoryID: r.CategoryID,
		TagIDs:     r.TagIDs,
		Status:     db.PostStatus(r.Status),
	}
}

type authorResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type taxonomyResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type postResponse struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	Content     string             `json:"content"`
	HTML        string             `json:"html"`
	Status      db.PostStatus      `json:"status"`
	ReadingTime int                `json:"readingTime"`
	Author      authorResponse     `json:"author"`
	Category    taxonomyResponse   `json:"category"`
	Tags        []taxonomyResponse `json:"tags"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

func newPostResponse(post db.Post) postResponse {
	tags := make([]taxonomyResponse, 0, len(post.Tags))
	for _, tag := range post.Tags {
		tags = append(tags, taxonomyResponse{ID: tag.ID, Name: tag.Name})
	}

	return postResponse{
		ID:          post.ID,
		Title:       post.Title,
		Content:     post.Content,
		HTML:        renderMarkdown(post.Content),
		Status:      post.Status,
		ReadingTime: post.ReadingTime,
		Author:      authorResponse{ID: post.Author.ID, Name: post.Author.Name},
		Category:    taxonomyResponse{ID: post.Category.ID, Name: post.Category.Name},
		Tags:        tags,
		CreatedAt:   post.CreatedAt,
		UpdatedAt:   post.UpdatedAt,
	}
}

func newPostResponses(posts []db.Post) []postResponse {
	out := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, newPostResponse(post))
	}
	return out
}

// GetPosts 获取已发布文章，支持 categoryId / tagId 筛选与分页
func (a *API) GetPosts(c *gin.Context) {
	page, ok := parseIntQuery(c, "page", 0)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid page")
		return
	}
	size, ok := parseIntQuery(c, "size", a.publicPageSize)
	if !ok {
		respondError(c, http.StatusBadRequest, "invalid size")
		return
	}
	if size == 0 {
		size = a.publicPageSize
	}
	// 匿名访问首页时限制单页数量
	if currentUser(c) == nil && page == 0 && size > a.publicPageSize {
		size = a.publicPageSize
	}

	posts, err := a.posts.List(c.Request.Context(), c.Query("categoryId"), c.Query("tagId"))
	if err != nil {
		respondServiceError(c, err, "failed to list posts")
		return
	}

	c.JSON(http.StatusOK, newPostResponses(paginate(posts, page, size)))
}

// GetDrafts 获取当前用户的草稿
func (a *API) GetDrafts(c *gin.Context) {
	posts, err := a.posts.ListDrafts(c.Request.Context(), currentUser(c))
	if err != nil {
		respondServiceError(c, err, "failed to list drafts")
		return
	}

	c.JSON(http.StatusOK, newPostResponses(posts))
}

// GetPost 获取单篇文章，草稿只对作者和管理员可见
func (a *API) GetPost(c *gin.Context) {
	post, err := a.posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "failed to load post")
		return
	}

	if post.Status == db.PostStatusDraft {
		user := currentUser(c)
		if user == nil || (user.ID != post.AuthorID && !user.IsAdmin) {
			respondError(c, http.StatusNotFound, "post with id "+post.ID+" not found")
			return
		}
	}

	c.JSON(http.StatusOK, newPostResponse(*post))
}

// CreatePost 创建文章，作者为当前登录用户
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "title, categoryId and a valid status (DRAFT or PUBLISHED) are required") {
		return
	}

	post, err := a.posts.Create(c.Request.Context(), currentUser(c), req.input())
	if err != nil {
		respondServiceError(c, err, "failed to create post")
		return
	}

	c.JSON(http.StatusCreated, newPostResponse(*post))
}

// UpdatePost 更新文章
func (a *API) UpdatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "title, categoryId and a valid status (DRAFT or PUBLISHED) are required") {
		return
	}

	post, err := a.posts.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		respondServiceError(c, err, "failed to update post")
		return
	}

	c.JSON(http.StatusOK, newPostResponse(*post))
}

// DeletePost 删除文章
func (a *API) DeletePost(c *gin.Context) {
	if err := a.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondServiceError(c, err, "failed to delete post")
		return
	}

	c.Status(http.StatusNoContent)
}
