package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/bloghub/internal/db"
)

// ErrNotFound 表示记录不存在
var ErrNotFound = errors.New("record not found")

// PostRepository 定义文章存储契约，每个查询分支对应一个显式的 finder。
type PostRepository interface {
	FindByID(ctx context.Context, id string) (*db.Post, error)
	Create(ctx context.Context, post *db.Post) error
	// Update 持久化标量字段与分类；replaceTags 为 true 时整体替换标签关联。
	Update(ctx context.Context, post *db.Post, replaceTags bool) error
	Delete(ctx context.Context, post *db.Post) error

	FindByStatus(ctx context.Context, status db.PostStatus) ([]db.Post, error)
	FindByStatusAndCategory(ctx context.Context, status db.PostStatus, categoryID string) ([]db.Post, error)
	FindByStatusAndTag(ctx context.Context, status db.PostStatus, tagID string) ([]db.Post, error)
	FindByStatusAndCategoryAndTag(ctx context.Context, status db.PostStatus, categoryID, tagID string) ([]db.Post, error)
	FindByAuthorAndStatus(ctx context.Context, authorID string, status db.PostStatus) ([]db.Post, error)

	CountByCategory(ctx context.Context, categoryID string) (int64, error)
	CountByTag(ctx context.Context, tagID string) (int64, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(gdb *gorm.DB) PostRepository { return &postRepository{db: gdb} }

func (r *postRepository) preloaded(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&db.Post{}).
		Preload("Author").
		Preload("Category").
		Preload("Tags")
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*db.Post, error) {
	var post db.Post
	if err := r.preloaded(ctx).Where("posts.id = ?", id).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Create(ctx context.Context, post *db.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 作者与分类已存在，只写外键；标签只写关联表
		if err := tx.Omit("Author", "Category", "Tags.*").Create(post).Error; err != nil {
			return err
		}
		return r.reload(tx, post)
	})
}

func (r *postRepository) Update(ctx context.Context, post *db.Post, replaceTags bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"title":        post.Title,
			"content":      post.Content,
			"status":       post.Status,
			"reading_time": post.ReadingTime,
			"category_id":  post.CategoryID,
			"updated_at":   time.Now(),
		}
		result := tx.Model(&db.Post{}).Where("id = ?", post.ID).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		if replaceTags {
			association := tx.Model(&db.Post{Model: db.Model{ID: post.ID}}).Association("Tags")
			var err error
			if len(post.Tags) == 0 {
				err = association.Clear()
			} else {
				err = association.Replace(post.Tags)
			}
			if err != nil {
				return err
			}
		}

		return r.reload(tx, post)
	})
}

func (r *postRepository) Delete(ctx context.Context, post *db.Post) error {
	result := r.db.WithContext(ctx).Select("Tags").Delete(&db.Post{Model: db.Model{ID: post.ID}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) reload(tx *gorm.DB, post *db.Post) error {
	var fresh db.Post
	if err := tx.Preload("Author").Preload("Category").Preload("Tags").
		Where("id = ?", post.ID).
		First(&fresh).Error; err != nil {
		return err
	}
	*post = fresh
	return nil
}

func (r *postRepository) find(query *gorm.DB) ([]db.Post, error) {
	posts := make([]db.Post, 0)
	if err := query.Order("posts.created_at desc").Order("posts.id desc").Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) taggedWith(ctx context.Context, tagID string) *gorm.DB {
	return r.db.WithContext(ctx).Table("post_tags").Select("post_id").Where("tag_id = ?", tagID)
}

func (r *postRepository) FindByStatus(ctx context.Context, status db.PostStatus) ([]db.Post, error) {
	return r.find(r.preloaded(ctx).Where("posts.status = ?", status))
}

func (r *postRepository) FindByStatusAndCategory(ctx context.Context, status db.PostStatus, categoryID string) ([]db.Post, error) {
	return r.find(r.preloaded(ctx).
		Where("posts.status = ?", status).
		Where("posts.category_id = ?", categoryID))
}

func (r *postRepository) FindByStatusAndTag(ctx context.Context, status db.PostStatus, tagID string) ([]db.Post, error) {
	return r.find(r.preloaded(ctx).
		Where("posts.status = ?", status).
		Where("posts.id IN (?)", r.taggedWith(ctx, tagID)))
}

func (r *postRepository) FindByStatusAndCategoryAndTag(ctx context.Context, status db.PostStatus, categoryID, tagID string) ([]db.Post, error) {
	return r.find(r.preloaded(ctx).
		Where("posts.status = ?", status).
		Where("posts.category_id = ?", categoryID).
		Where("posts.id IN (?)", r.taggedWith(ctx, tagID)))
}

func (r *postRepository) FindByAuthorAndStatus(ctx context.Context, authorID string, status db.PostStatus) ([]db.Post, error) {
	return r.find(r.preloaded(ctx).
		Where("posts.author_id = ?", authorID).
		Where("posts.status = ?", status))
}

func (r *postRepository) CountByCategory(ctx context.Context, categoryID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&db.Post{}).Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *postRepository) CountByTag(ctx context.Context, tagID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Table("post_tags").Where("tag_id = ?", tagID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
