package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bloghub/internal/auth"
	"github.com/bloghub/internal/db"
)

type testEnv struct {
	api    *API
	engine *gin.Engine
	tokens *auth.TokenIssuer
}

func setupTestAPI(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(db.Options{Driver: db.DriverSQLite, DSN: dsn, Silent: true})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	tokens, err := auth.NewTokenIssuer("test-secret", 24*time.Hour)
	require.NoError(t, err)

	api := NewAPI(gdb, Options{AdminEmail: "admin@example.com", Tokens: tokens})

	engine := gin.New()
	engine.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test"))))
	engine.Use(api.Authenticate())

	v1 := engine.Group("/api/v1")
	v1.POST("/auth/login", api.Login)
	v1.POST("/auth/register", api.Register)
	v1.POST("/auth/logout", api.Logout)
	v1.GET("/auth/profile", AuthRequired(), api.Profile)
	v1.GET("/posts", api.GetPosts)
	v1.GET("/posts/drafts", AuthRequired(), api.GetDrafts)
	v1.GET("/posts/:id", api.GetPost)
	v1.POST("/posts", AdminRequired(), api.CreatePost)
	v1.PUT("/posts/:id", AdminRequired(), api.UpdatePost)
	v1.DELETE("/posts/:id", AdminRequired(), api.DeletePost)
	v1.GET("/categories", api.GetCategories)
	v1.POST("/categories", AdminRequired(), api.CreateCategory)
	v1.DELETE("/categories/:id", AdminRequired(), api.DeleteCategory)
	v1.GET("/tags", api.GetTags)
	v1.POST("/tags", AdminRequired(), api.CreateTags)
	v1.DELETE("/tags/:id", AdminRequired(), api.DeleteTag)
	v1.POST("/contact", api.CreateContactMessage)
	v1.GET("/contact/unread/count", AdminRequired(), api.CountUnreadContactMessages)
	v1.PATCH("/contact/:id/read", AdminRequired(), api.MarkContactMessageRead)
	v1.POST("/bookings", api.CreateBooking)
	v1.GET("/bookings/upcoming", AdminRequired(), api.GetUpcomingBookings)
	v1.PATCH("/bookings/:id/confirm", AdminRequired(), api.ConfirmBooking)

	return &testEnv{api: api, engine: engine, tokens: tokens}
}

func (e *testEnv) createUser(t *testing.T, name string, admin bool) (*db.User, string) {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := db.User{Name: name, Email: name + "@example.com", Password: string(hashed), IsAdmin: admin}
	require.NoError(t, e.api.DB().Create(&user).Error)

	token, err := e.tokens.Issue(&user)
	require.NoError(t, err)
	return &user, token
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "body: %s", w.Body.String())
	return out
}

func (e *testEnv) seedTaxonomy(t *testing.T, token string) (categoryResponse, []tagResponse) {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/v1/categories", token, map[string]any{"name": "Engineering"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	category := decode[categoryResponse](t, w)

	w = e.do(t, http.MethodPost, "/api/v1/tags", token, map[string]any{"names": []string{"golang", "testing"}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tags := decode[[]tagResponse](t, w)
	require.Len(t, tags, 2)
	return category, tags
}
