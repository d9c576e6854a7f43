package handler

import (
	"math"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePostRequiresAdmin(t *testing.T) {
	env := setupTestAPI(t)
	_, readerToken := env.createUser(t, "reader", false)

	payload := map[string]any{"title": "Hello", "content": "x", "categoryId": "c", "status": "DRAFT"}

	w := env.do(t, http.MethodPost, "/api/v1/posts", "", payload)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/posts", readerToken, payload)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreatePostValidatesStatus(t *testing.T) {
	env := setupTestAPI(t)
	_, token := env.createUser(t, "admin", true)
	category, _ := env.seedTaxonomy(t, token)

	w := env.do(t, http.MethodPost, "/api/v1/posts", token, map[string]any{
		"title":      "Hello",
		"content":    "x",
		"categoryId": category.ID,
		"status":     "ARCHIVED",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/v1/posts", token, map[string]any{
		"title":      "Hello",
		"content":    "x",
		"categoryId": "missing",
		"status":     "draft",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDraftLifecycleThroughHTTP(t *testing.T) {
	env := setupTestAPI(t)
	_, token := env.createUser(t, "admin", true)
	_, otherToken := env.createUser(t, "other", false)
	category, tags := env.seedTaxonomy(t, token)

	w := env.do(t, http.MethodPost, "/api/v1/posts", token, map[string]any{
		"title":      "First post",
		"content":    "# Heading\n\n<script>alert(1)</script> " + strings.Repeat("word ", 250),
		"categoryId": category.ID,
		"tagIds":     []string{tags[0].ID, tags[1].ID, "unknown"},
		"status":     "DRAFT",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[postResponse](t, w)
	assert.Equal(t, 2, created.ReadingTime)
	assert.Len(t, created.Tags, 2)
	assert.Equal(t, "admin", created.Author.Name)
	assert.Contains(t, created.HTML, "<h1")
	assert.NotContains(t, created.HTML, "<script>")

	w = env.do(t, http.MethodGet, "/api/v1/posts/drafts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postResponse](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/v1/posts/drafts", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]postResponse](t, w))

	w = env.do(t, http.MethodGet, "/api/v1/posts/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "drafts are hidden from anonymous readers")

	w = env.do(t, http.MethodGet, "/api/v1/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]postResponse](t, w))

	w = env.do(t, http.MethodPut, "/api/v1/posts/"+created.ID, token, map[string]any{
		"title":      "First post",
		"content":    "short",
		"categoryId": category.ID,
		"tagIds":     []string{tags[0].ID},
		"status":     "PUBLISHED",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[postResponse](t, w)
	assert.Equal(t, 1, updated.ReadingTime)
	assert.Len(t, updated.Tags, 1)

	w = env.do(t, http.MethodGet, "/api/v1/posts?tagId="+tags[0].ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postResponse](t, w), 1)

	w = env.do(t, http.MethodGet, "/api/v1/posts?tagId="+tags[1].ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]postResponse](t, w))

	w = env.do(t, http.MethodGet, "/api/v1/posts?categoryId=missing", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/categories/"+category.ID, token, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/posts/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodDelete, "/api/v1/posts/"+created.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPostsCapsAnonymousPageSize(t *testing.T) {
	env := setupTestAPI(t)
	_, token := env.createUser(t, "admin", true)
	category, _ := env.seedTaxonomy(t, token)

	for i := 0; i < 7; i++ {
		w := env.do(t, http.MethodPost, "/api/v1/posts", token, map[string]any{
			"title":      "Post number",
			"content":    "body",
			"categoryId": category.ID,
			"status":     "PUBLISHED",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := env.do(t, http.MethodGet, "/api/v1/posts?size=10", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postResponse](t, w), 5)

	w = env.do(t, http.MethodGet, "/api/v1/posts?size=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postResponse](t, w), 7)

	w = env.do(t, http.MethodGet, "/api/v1/posts?page=1&size=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]postResponse](t, w), 2)

	w = env.do(t, http.MethodGet, "/api/v1/posts?page=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/posts?page=4611686018427387904&size=2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[[]postResponse](t, w))
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{1, 2}, paginate(items, 0, 2))
	assert.Equal(t, []int{5}, paginate(items, 2, 2))
	assert.Empty(t, paginate(items, 3, 2))
	assert.Equal(t, items, paginate(items, 0, 0))
	assert.Empty(t, paginate([]int{}, 0, 2))
}

func TestPaginateHugeValuesDoNotOverflow(t *testing.T) {
	items := []int{1, 2, 3}
	assert.Empty(t, paginate(items, 1<<62, 2))
	assert.Empty(t, paginate(items, math.MaxInt, math.MaxInt))
	assert.Equal(t, items, paginate(items, 0, math.MaxInt))
	assert.Equal(t, []int{3}, paginate(items, 1, 2))
}
