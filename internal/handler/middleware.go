package handler

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/logger"
)

const (
	currentUserKey    = "__current_user"
	sessionUserIDKey  = "user_id"
	sessionUserName   = "user_name"
	bearerTokenPrefix = "Bearer "
)

// Authenticate 解析 Bearer 令牌或会话中的用户，成功时写入上下文。
// 无凭证的请求照常放行，由 AuthRequired 决定是否拒绝。
func (a *API) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user := a.userFromToken(c); user != nil {
			c.Set(currentUserKey, user)
		} else if user := a.userFromSession(c); user != nil {
			c.Set(currentUserKey, user)
		}
		c.Next()
	}
}

func (a *API) userFromToken(c *gin.Context) *db.User {
	header := c.GetHeader("Authorization")
	if a.tokens == nil || !strings.HasPrefix(header, bearerTokenPrefix) {
		return nil
	}

	claims, err := a.tokens.Parse(strings.TrimSpace(strings.TrimPrefix(header, bearerTokenPrefix)))
	if err != nil {
		logger.Debug("rejected bearer token", zap.Error(err))
		return nil
	}

	user, err := a.users.GetByID(c.Request.Context(), claims.Subject)
	if err != nil {
		return nil
	}
	return user
}

func (a *API) userFromSession(c *gin.Context) *db.User {
	session := sessions.Default(c)
	id, ok := session.Get(sessionUserIDKey).(string)
	if !ok || id == "" {
		return nil
	}

	user, err := a.users.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil
	}
	return user
}

// currentUser 返回已认证的用户，匿名请求返回 nil。
func currentUser(c *gin.Context) *db.User {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return nil
	}
	user, _ := value.(*db.User)
	return user
}

// AuthRequired 拒绝匿名请求
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if currentUser(c) == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRequired 仅允许管理员
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		if !user.IsAdmin {
			respondError(c, http.StatusForbidden, "admin privileges required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// IPRateLimiter 为每个客户端 IP 维护一个令牌桶。
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// NewIPRateLimiter allows perMinute requests per client IP.
func NewIPRateLimiter(perMinute int) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 20
	}
	return &IPRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    perMinute,
	}
}

func (l *IPRateLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[ip] = limiter
	}
	return limiter
}

// Middleware 在超出限额时返回 429
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.get(c.ClientIP()).Allow() {
			logger.Warn("rate limit exceeded", zap.String("ip", c.ClientIP()), zap.String("path", c.FullPath()))
			respondError(c, http.StatusTooManyRequests, "too many requests, please try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger 使用 zap 记录每个请求
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request", fields...)
		default:
			logger.Info("request", fields...)
		}
	}
}

// Recovery 捕获 panic 并返回 500
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered", zap.Any("panic", recovered), zap.String("path", c.Request.URL.Path))
		respondError(c, http.StatusInternalServerError, "internal server error")
		c.Abort()
	})
}
