package router

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bloghub/internal/handler"
)

const sessionName = "bloghub_session"

// Options 控制路由的会话、限流与 handler 依赖
type Options struct {
	SessionSecret      string
	RateLimitPerMinute int
	SecureCookies      bool
	Handler            handler.Options
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(gdb *gorm.DB, opts Options) (*gin.Engine, error) {
	if gdb == nil {
		return nil, errors.New("database is required")
	}
	if opts.SessionSecret == "" {
		return nil, errors.New("session secret is required")
	}
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	r := gin.New()
	r.Use(handler.RequestLogger(), handler.Recovery())
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	api := handler.NewAPI(gdb, opts.Handler)
	limiter := handler.NewIPRateLimiter(opts.RateLimitPerMinute)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	v1 := r.Group("/api/v1")
	v1.Use(api.Authenticate())
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", limiter.Middleware(), api.Login)
			authGroup.POST("/register", limiter.Middleware(), api.Register)
			authGroup.POST("/logout", api.Logout)
			authGroup.GET("/profile", handler.AuthRequired(), api.Profile)
		}

		posts := v1.Group("/posts")
		{
			posts.GET("", api.GetPosts)
			posts.GET("/drafts", handler.AuthRequired(), api.GetDrafts)
			posts.GET("/:id", api.GetPost)
			posts.POST("", handler.AdminRequired(), api.CreatePost)
			posts.PUT("/:id", handler.AdminRequired(), api.UpdatePost)
			posts.DELETE("/:id", handler.AdminRequired(), api.DeletePost)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", api.GetCategories)
			categories.POST("", handler.AdminRequired(), api.CreateCategory)
			categories.DELETE("/:id", handler.AdminRequired(), api.DeleteCategory)
		}

		tags := v1.Group("/tags")
		{
			tags.GET("", api.GetTags)
			tags.POST("", handler.AdminRequired(), api.CreateTags)
			tags.DELETE("/:id", handler.AdminRequired(), api.DeleteTag)
		}

		contact := v1.Group("/contact")
		{
			contact.POST("", limiter.Middleware(), api.CreateContactMessage)

			admin := contact.Group("", handler.AdminRequired())
			admin.GET("", api.GetContactMessages)
			admin.GET("/unread", api.GetUnreadContactMessages)
			admin.GET("/unread/count", api.CountUnreadContactMessages)
			admin.PATCH("/:id/read", api.MarkContactMessageRead)
		}

		bookings := v1.Group("/bookings")
		{
			bookings.POST("", limiter.Middleware(), api.CreateBooking)

			admin := bookings.Group("", handler.AdminRequired())
			admin.GET("/upcoming", api.GetUpcomingBookings)
			admin.GET("/unconfirmed", api.GetUnconfirmedBookings)
			admin.GET("/email/:email", api.GetBookingsByEmail)
			admin.PATCH("/:id/confirm", api.ConfirmBooking)
			admin.DELETE("/:id", api.CancelBooking)
		}
	}

	return r, nil
}
