package service

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/repository"
)

func setupServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s-%d?mode=memory&cache=shared", name, time.Now().UnixNano())
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

type blogServices struct {
	gdb        *gorm.DB
	posts      *PostService
	categories *CategoryService
	tags       *TagService
}

func setupBlogServices(t *testing.T) *blogServices {
	t.Helper()
	gdb := setupServiceTestDB(t, "blog-service")
	repo := repository.NewPostRepository(gdb)
	categories := NewCategoryService(gdb, repo)
	tags := NewTagService(gdb, repo)
	return &blogServices{
		gdb:        gdb,
		posts:      NewPostService(repo, categories, tags),
		categories: categories,
		tags:       tags,
	}
}

func createTestUser(t *testing.T, gdb *gorm.DB, name string) *db.User {
	t.Helper()
	user := db.User{Name: name, Email: name + "@example.com", Password: "x"}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &user
}
