package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bloghub/internal/auth"
	"github.com/bloghub/internal/cache"
	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/handler"
)

func setupRouterDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.Options{Driver: db.DriverSQLite, DSN: dsn, Silent: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

type client struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func (c *client) call(method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func TestSetupRouterValidation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	_, err := SetupRouter(nil, Options{SessionSecret: "s"})
	assert.Error(t, err)

	_, err = SetupRouter(setupRouterDB(t), Options{})
	assert.Error(t, err)
}

func TestPing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := SetupRouter(setupRouterDB(t), Options{SessionSecret: "test-secret"})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestPublishingFlowWithCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	gdb := setupRouterDB(t)

	created, err := db.EnsureAdmin(gdb, "Admin", "admin@example.com", "password")
	require.NoError(t, err)
	require.True(t, created)

	tokens, err := auth.NewTokenIssuer("jwt-secret", 24*time.Hour)
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r, err := SetupRouter(gdb, Options{
		SessionSecret:      "test-secret",
		RateLimitPerMinute: 100,
		Handler: handler.Options{
			AdminEmail: "admin@example.com",
			Tokens:     tokens,
			Cache:      cache.NewPostListCache(rdb, time.Minute),
		},
	})
	require.NoError(t, err)

	anon := &client{t: t, r: r}
	w := anon.call(http.MethodPost, "/api/v1/auth/login", map[string]string{"email": "admin@example.com", "password": "password"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &login))
	admin := &client{t: t, r: r, token: login.Token}

	w = admin.call(http.MethodPost, "/api/v1/categories", map[string]string{"name": "News"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &category))

	post := map[string]any{"title": "Launch", "content": "We shipped.", "categoryId": category.ID, "status": "DRAFT"}
	w = admin.call(http.MethodPost, "/api/v1/posts", post)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var draft struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &draft))

	w = admin.call(http.MethodGet, "/api/v1/posts/drafts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), draft.ID)

	w = anon.call(http.MethodGet, "/api/v1/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	post["status"] = "PUBLISHED"
	w = admin.call(http.MethodPut, "/api/v1/posts/"+draft.ID, post)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = anon.call(http.MethodGet, "/api/v1/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), draft.ID, "publishing invalidates the cached listing")

	w = admin.call(http.MethodGet, "/api/v1/posts/drafts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = anon.call(http.MethodGet, "/api/v1/contact", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGzipResponses(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r, err := SetupRouter(setupRouterDB(t), Options{SessionSecret: "test-secret"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/tags", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
}
