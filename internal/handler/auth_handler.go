package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/logger"
	"github.com/bloghub/internal/service"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Admin    bool   `json:"isAdmin"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Admin bool   `json:"admin"`
}

func newUserResponse(user *db.User) userResponse {
	return userResponse{ID: user.ID, Name: user.Name, Email: user.Email, Admin: user.IsAdmin}
}

// Login 校验邮箱密码，签发令牌并写入会话
func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if !bindJSON(c, &req, "email and password are required") {
		return
	}

	user, err := a.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err, "failed to log in")
		return
	}

	if a.tokens == nil {
		respondError(c, http.StatusInternalServerError, "token issuer is not configured")
		return
	}
	token, err := a.tokens.Issue(user)
	if err != nil {
		logger.Error("issue token failed", zap.Error(err), zap.String("user", user.ID))
		respondError(c, http.StatusInternalServerError, "failed to issue token")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserIDKey, user.ID)
	session.Set(sessionUserName, user.Name)
	if err := session.Save(); err != nil {
		logger.Error("save session failed", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	logger.Info("user logged in", zap.String("user", user.ID))
	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresIn": int64(a.tokens.TTL().Seconds()),
	})
}

// Register 注册新用户
func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if !bindJSON(c, &req, "name, a valid email and password are required") {
		return
	}

	user, err := a.users.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Admin:    req.Admin,
	})
	if err != nil {
		respondServiceError(c, err, "failed to register user")
		return
	}

	c.JSON(http.StatusOK, newUserResponse(user))
}

// Logout 清除会话
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logger.Warn("clear session failed", zap.Error(err))
	}
	c.Status(http.StatusNoContent)
}

// Profile 返回当前用户信息
func (a *API) Profile(c *gin.Context) {
	c.JSON(http.StatusOK, newUserResponse(currentUser(c)))
}
