package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/logger"
	"github.com/bloghub/internal/repository"
	"github.com/bloghub/internal/service"
)

// Result 汇总一次生成的数据量
type Result struct {
	Categories int
	Tags       int
	Posts      int
	Skipped    bool
}

type samplePost struct {
	title    string
	content  string
	category string
	tags     []string
	status   db.PostStatus
}

var sampleCategories = []string{"Engineering", "Notes", "Tutorials"}

var sampleTags = []string{"go", "gin", "gorm", "sqlite", "redis", "testing"}

var samplePosts = []samplePost{
	{
		title:    "Building a small blog API with Gin",
		content:  "## Routing\n\nGin groups keep public and admin routes apart. " + strings.Repeat("Handlers stay thin and delegate to services. ", 40),
		category: "Engineering",
		tags:     []string{"go", "gin"},
		status:   db.PostStatusPublished,
	},
	{
		title:    "Many-to-many tags with GORM",
		content:  "Replacing an association inside a transaction keeps the join table consistent. " + strings.Repeat("Preload the tags when reading. ", 60),
		category: "Tutorials",
		tags:     []string{"go", "gorm", "sqlite"},
		status:   db.PostStatusPublished,
	},
	{
		title:    "Caching published listings",
		content:  "A generation counter in Redis invalidates every cached listing with a single INCR.",
		category: "Engineering",
		tags:     []string{"redis"},
		status:   db.PostStatusPublished,
	},
	{
		title:    "Table-driven tests",
		content:  "Draft notes on structuring test cases with t.Run and testify.",
		category: "Notes",
		tags:     []string{"go", "testing"},
		status:   db.PostStatusDraft,
	},
}

// Run 生成演示分类、标签与文章，作者为指定邮箱的用户。
// 已存在文章时跳过，避免重复生成。
func Run(ctx context.Context, gdb *gorm.DB, authorEmail string) (Result, error) {
	var author db.User
	if err := gdb.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(authorEmail))).First(&author).Error; err != nil {
		return Result{}, fmt.Errorf("load author %s: %w", authorEmail, err)
	}

	var existing int64
	if err := gdb.WithContext(ctx).Model(&db.Post{}).Count(&existing).Error; err != nil {
		return Result{}, err
	}
	if existing > 0 {
		logger.Info("posts already exist, skip seeding", zap.Int64("posts", existing))
		return Result{Skipped: true}, nil
	}

	repo := repository.NewPostRepository(gdb)
	categories := service.NewCategoryService(gdb, repo)
	tags := service.NewTagService(gdb, repo)
	posts := service.NewPostService(repo, categories, tags)

	categoryIDs, err := ensureCategories(ctx, gdb, categories)
	if err != nil {
		return Result{}, err
	}

	createdTags, err := tags.CreateTags(ctx, sampleTags)
	if err != nil {
		return Result{}, fmt.Errorf("create tags: %w", err)
	}
	tagIDs := make(map[string]string, len(createdTags))
	for _, tag := range createdTags {
		tagIDs[tag.Name] = tag.ID
	}

	result := Result{Categories: len(categoryIDs), Tags: len(createdTags)}
	for _, sample := range samplePosts {
		ids := make([]string, 0, len(sample.tags))
		for _, name := range sample.tags {
			ids = append(ids, tagIDs[name])
		}

		if _, err := posts.Create(ctx, &author, service.PostInput{
			Title:      sample.title,
			Content:    sample.content,
			CategoryID: categoryIDs[sample.category],
			TagIDs:     ids,
			Status:     sample.status,
		}); err != nil {
			return result, fmt.Errorf("create post %q: %w", sample.title, err)
		}
		result.Posts++
		// 保证 created_at 有先后顺序
		time.Sleep(time.Millisecond)
	}

	logger.Info("demo data generated",
		zap.Int("categories", result.Categories),
		zap.Int("tags", result.Tags),
		zap.Int("posts", result.Posts))
	return result, nil
}

func ensureCategories(ctx context.Context, gdb *gorm.DB, categories *service.CategoryService) (map[string]string, error) {
	ids := make(map[string]string, len(sampleCategories))
	for _, name := range sampleCategories {
		var category db.Category
		err := gdb.WithContext(ctx).Where("LOWER(name) = ?", strings.ToLower(name)).First(&category).Error
		if err == nil {
			ids[name] = category.ID
			continue
		}

		created, err := categories.Create(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("create category %s: %w", name, err)
		}
		ids[name] = created.ID
	}
	return ids, nil
}
