package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bloghub/internal/logger"
	"github.com/bloghub/internal/service"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// respondServiceError 把业务错误映射为 HTTP 状态码，未知错误只返回通用信息。
func respondServiceError(c *gin.Context, err error, fallback string) {
	var svcErr *service.Error
	message := fallback
	if errors.As(err, &svcErr) {
		message = svcErr.Message
	}

	switch {
	case errors.Is(err, service.ErrNotFound):
		respondError(c, http.StatusNotFound, message)
	case errors.Is(err, service.ErrInvalidArgument):
		respondError(c, http.StatusBadRequest, message)
	case errors.Is(err, service.ErrConflict):
		respondError(c, http.StatusConflict, message)
	case errors.Is(err, service.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, err.Error())
	default:
		logger.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
		respondError(c, http.StatusInternalServerError, fallback)
	}
}

func parseIntQuery(c *gin.Context, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, false
	}
	return value, true
}

// paginate 对已排序的结果做边界切片
func paginate[T any](items []T, page, size int) []T {
	if size <= 0 {
		return items
	}
	// 先按除法判断越界，避免 page*size 溢出
	if len(items) == 0 || page > (len(items)-1)/size {
		return []T{}
	}
	start := page * size
	end := len(items)
	if size < end-start {
		end = start + size
	}
	return items[start:end]
}
