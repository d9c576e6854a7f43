package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/logger"
	"github.com/bloghub/internal/repository"
)

const wordsPerMinute = 200

// CategoryResolver 根据 id 查找分类，不存在时返回 ErrNotFound。
type CategoryResolver interface {
	GetByID(ctx context.Context, id string) (*db.Category, error)
}

// TagResolver 根据 id 查找标签。GetByIDs 会忽略不存在的 id。
type TagResolver interface {
	GetByID(ctx context.Context, id string) (*db.Tag, error)
	GetByIDs(ctx context.Context, ids []string) ([]db.Tag, error)
}

// ListingCache 缓存已发布文章列表，任何文章变更后整体失效。
// Get 返回的 key 绑定读取时的缓存代数，Set 只写入该 key。
type ListingCache interface {
	Get(ctx context.Context, categoryID, tagID string) ([]db.Post, string, bool)
	Set(ctx context.Context, key string, posts []db.Post)
	Invalidate(ctx context.Context)
}

// PostService 负责文章的可见性筛选、草稿访问与变更。
type PostService struct {
	posts      repository.PostRepository
	categories CategoryResolver
	tags       TagResolver
	cache      ListingCache
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title      string
	Content    string
	CategoryID string
	TagIDs     []string
	Status     db.PostStatus
}

// NewPostService creates a PostService instance.
func NewPostService(posts repository.PostRepository, categories CategoryResolver, tags TagResolver) *PostService {
	return &PostService{posts: posts, categories: categories, tags: tags}
}

// WithCache 启用已发布列表缓存，传入 nil 表示不缓存。
func (s *PostService) WithCache(cache ListingCache) *PostService {
	s.cache = cache
	return s
}

// List 返回已发布文章，可按分类、标签或二者同时筛选（取交集）。
// 传入的 id 会先经过解析，不存在时直接返回 NotFound。
func (s *PostService) List(ctx context.Context, categoryID, tagID string) ([]db.Post, error) {
	categoryID = strings.TrimSpace(categoryID)
	tagID = strings.TrimSpace(tagID)

	if categoryID != "" {
		if _, err := s.categories.GetByID(ctx, categoryID); err != nil {
			return nil, err
		}
	}
	if tagID != "" {
		if _, err := s.tags.GetByID(ctx, tagID); err != nil {
			return nil, err
		}
	}

	var cacheKey string
	if s.cache != nil {
		cached, key, ok := s.cache.Get(ctx, categoryID, tagID)
		if ok {
			return cached, nil
		}
		cacheKey = key
	}

	var (
		posts []db.Post
		err   error
	)
	switch {
	case categoryID != "" && tagID != "":
		posts, err = s.posts.FindByStatusAndCategoryAndTag(ctx, db.PostStatusPublished, categoryID, tagID)
	case categoryID != "":
		posts, err = s.posts.FindByStatusAndCategory(ctx, db.PostStatusPublished, categoryID)
	case tagID != "":
		posts, err = s.posts.FindByStatusAndTag(ctx, db.PostStatusPublished, tagID)
	default:
		posts, err = s.posts.FindByStatus(ctx, db.PostStatusPublished)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Set(ctx, cacheKey, posts)
	}
	return posts, nil
}

// ListDrafts 只返回调用者本人的草稿。
func (s *PostService) ListDrafts(ctx context.Context, user *db.User) ([]db.Post, error) {
	if user == nil || user.ID == "" {
		return nil, invalidArgument("authenticated user is required")
	}
	return s.posts.FindByAuthorAndStatus(ctx, user.ID, db.PostStatusDraft)
}

// Get fetches a post by id with its associations.
func (s *PostService) Get(ctx context.Context, id string) (*db.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("post with id %s not found", id)
		}
		return nil, err
	}
	return post, nil
}

// Create persists a new post authored by the authenticated user.
// 不存在的标签 id 会被静默忽略。
func (s *PostService) Create(ctx context.Context, author *db.User, input PostInput) (*db.Post, error) {
	if author == nil || author.ID == "" {
		return nil, invalidArgument("authenticated user is required")
	}

	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, err
	}

	category, err := s.categories.GetByID(ctx, input.CategoryID)
	if err != nil {
		return nil, err
	}

	tags, err := s.resolveTags(ctx, input.TagIDs)
	if err != nil {
		return nil, err
	}

	post := &db.Post{
		Title:       input.Title,
		Content:     input.Content,
		Status:      status,
		ReadingTime: EstimateReadingTime(input.Content),
		AuthorID:    author.ID,
		CategoryID:  category.ID,
		Tags:        tags,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	logger.Info("post created", zap.String("post", post.ID), zap.String("author", author.ID), zap.String("status", string(status)))
	return post, nil
}

// Update applies updates to an existing post.
// 分类仅在 id 变化时重新解析；标签集合按值比较，不同时整体替换。
func (s *PostService) Update(ctx context.Context, id string, input PostInput) (*db.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := normalizeStatus(input.Status)
	if err != nil {
		return nil, err
	}

	post.Title = input.Title
	post.Content = input.Content
	post.Status = status
	post.ReadingTime = EstimateReadingTime(input.Content)

	if post.CategoryID != input.CategoryID {
		category, err := s.categories.GetByID(ctx, input.CategoryID)
		if err != nil {
			return nil, err
		}
		post.CategoryID = category.ID
		post.Category = *category
	}

	replaceTags := !sameIDSet(post.TagIDs(), input.TagIDs)
	if replaceTags {
		tags, err := s.resolveTags(ctx, input.TagIDs)
		if err != nil {
			return nil, err
		}
		post.Tags = tags
	}

	if err := s.posts.Update(ctx, post, replaceTags); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("post with id %s not found", id)
		}
		return nil, err
	}

	s.invalidate(ctx)
	return post, nil
}

// Delete removes a post by id.
func (s *PostService) Delete(ctx context.Context, id string) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("post with id %s not found", id)
		}
		return err
	}

	s.invalidate(ctx)
	logger.Info("post deleted", zap.String("post", id))
	return nil
}

func (s *PostService) resolveTags(ctx context.Context, ids []string) ([]db.Tag, error) {
	unique := uniqueIDs(ids)
	if len(unique) == 0 {
		return []db.Tag{}, nil
	}
	return s.tags.GetByIDs(ctx, unique)
}

func (s *PostService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func normalizeStatus(status db.PostStatus) (db.PostStatus, error) {
	parsed, ok := db.ParsePostStatus(string(status))
	if !ok {
		return "", invalidArgument("status must be DRAFT or PUBLISHED")
	}
	return parsed, nil
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func sameIDSet(current map[string]struct{}, requested []string) bool {
	unique := uniqueIDs(requested)
	if len(unique) != len(current) {
		return false
	}
	for _, id := range unique {
		if _, ok := current[id]; !ok {
			return false
		}
	}
	return true
}

// EstimateReadingTime 按每分钟 200 词估算阅读时间，向上取整。
func EstimateReadingTime(content string) int {
	words := len(strings.Fields(content))
	if words == 0 {
		return 0
	}
	return (words + wordsPerMinute - 1) / wordsPerMinute
}
