package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/repository"
)

// TagService wraps tag related operations.
type TagService struct {
	db    *gorm.DB
	posts repository.PostRepository
}

// NewTagService creates a TagService instance.
func NewTagService(gdb *gorm.DB, posts repository.PostRepository) *TagService {
	return &TagService{db: gdb, posts: posts}
}

// List returns tags with post counts ordered by name.
func (s *TagService) List(ctx context.Context) ([]db.Tag, error) {
	tags := make([]db.Tag, 0)
	if err := s.db.WithContext(ctx).
		Model(&db.Tag{}).
		Select("tags.*, COUNT(post_tags.post_id) AS post_count").
		Joins("LEFT JOIN post_tags ON post_tags.tag_id = tags.id").
		Group("tags.id").
		Order("tags.name asc").
		Order("tags.id asc").
		Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTags 创建尚不存在的标签，返回请求名称对应的全部标签（已有 + 新建）。
func (s *TagService) CreateTags(ctx context.Context, names []string) ([]db.Tag, error) {
	wanted := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		wanted = append(wanted, name)
	}
	if len(wanted) == 0 {
		return nil, invalidArgument("at least one tag name is required")
	}

	var result []db.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []db.Tag
		if err := tx.Where("name IN ?", wanted).Find(&existing).Error; err != nil {
			return err
		}

		known := make(map[string]struct{}, len(existing))
		for _, tag := range existing {
			known[tag.Name] = struct{}{}
		}

		created := make([]db.Tag, 0, len(wanted))
		for _, name := range wanted {
			if _, ok := known[name]; ok {
				continue
			}
			created = append(created, db.Tag{Name: name})
		}

		if len(created) > 0 {
			if err := tx.Create(&created).Error; err != nil {
				return err
			}
		}

		result = append(existing, created...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a tag if it is not associated with posts.
func (s *TagService) Delete(ctx context.Context, id string) error {
	tag, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.posts.CountByTag(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return conflict("tag with id %s is associated with posts", id)
	}

	return s.db.WithContext(ctx).Delete(tag).Error
}

// GetByID 查找标签，不存在时返回 NotFound。
func (s *TagService) GetByID(ctx context.Context, id string) (*db.Tag, error) {
	var tag db.Tag
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("tag with id %s not found", id)
		}
		return nil, err
	}
	return &tag, nil
}

// GetByIDs 批量查找标签，不存在的 id 直接省略。
func (s *TagService) GetByIDs(ctx context.Context, ids []string) ([]db.Tag, error) {
	tags := make([]db.Tag, 0, len(ids))
	if len(ids) == 0 {
		return tags, nil
	}
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Order("name asc").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}
