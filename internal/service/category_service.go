package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/repository"
)

// CategoryService wraps category related operations.
type CategoryService struct {
	db    *gorm.DB
	posts repository.PostRepository
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB, posts repository.PostRepository) *CategoryService {
	return &CategoryService{db: gdb, posts: posts}
}

// List returns categories with their post counts, ordered by name.
func (s *CategoryService) List(ctx context.Context) ([]db.Category, error) {
	categories := make([]db.Category, 0)
	if err := s.db.WithContext(ctx).
		Model(&db.Category{}).
		Select("categories.*, COUNT(posts.id) AS post_count").
		Joins("LEFT JOIN posts ON posts.category_id = categories.id").
		Group("categories.id").
		Order("categories.name asc").
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Create inserts a category whose name is unique ignoring case.
func (s *CategoryService) Create(ctx context.Context, name string) (*db.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidArgument("category name is required")
	}

	var count int64
	if err := s.db.WithContext(ctx).
		Model(&db.Category{}).
		Where("LOWER(name) = ?", strings.ToLower(name)).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, invalidArgument("category with name %s already exists", name)
	}

	// 并发创建时由 LOWER(name) 唯一索引兜底
	category := db.Category{Name: name}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, invalidArgument("category with name %s already exists", name)
		}
		return nil, err
	}
	return &category, nil
}

// Delete removes a category that has no posts. Unknown ids are ignored.
func (s *CategoryService) Delete(ctx context.Context, id string) error {
	var category db.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	count, err := s.posts.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return conflict("category with id %s has posts", id)
	}

	return s.db.WithContext(ctx).Delete(&category).Error
}

// GetByID 查找分类，不存在时返回 NotFound。
func (s *CategoryService) GetByID(ctx context.Context, id string) (*db.Category, error) {
	var category db.Category
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("category with id %s does not exist", id)
		}
		return nil, err
	}
	return &category, nil
}
