package handler

import (
	"time"

	"gorm.io/gorm"

	"github.com/bloghub/internal/auth"
	"github.com/bloghub/internal/repository"
	"github.com/bloghub/internal/service"
)

const defaultPublicPageSize = 5

// Options 汇总构造 API 时可选的依赖
type Options struct {
	AdminEmail     string
	Tokens         *auth.TokenIssuer
	Cache          service.ListingCache
	PublicPageSize int
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db             *gorm.DB
	posts          *service.PostService
	categories     *service.CategoryService
	tags           *service.TagService
	users          *service.UserService
	bookings       *service.BookingService
	contacts       *service.ContactService
	tokens         *auth.TokenIssuer
	publicPageSize int
	now            func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	postRepo := repository.NewPostRepository(gdb)
	categories := service.NewCategoryService(gdb, postRepo)
	tags := service.NewTagService(gdb, postRepo)

	posts := service.NewPostService(postRepo, categories, tags)
	if opts.Cache != nil {
		posts.WithCache(opts.Cache)
	}

	pageSize := opts.PublicPageSize
	if pageSize <= 0 {
		pageSize = defaultPublicPageSize
	}

	return &API{
		db:             gdb,
		posts:          posts,
		categories:     categories,
		tags:           tags,
		users:          service.NewUserService(gdb, opts.AdminEmail),
		bookings:       service.NewBookingService(gdb),
		contacts:       service.NewContactService(gdb),
		tokens:         opts.Tokens,
		publicPageSize: pageSize,
		now:            time.Now,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
