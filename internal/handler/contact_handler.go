package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bloghub/internal/db"
	"github.com/bloghub/internal/service"
)

type contactRequest struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email,max=100"`
	Message string `json:"message" binding:"required,max=2000"`
}

type contactResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	IsRead    bool      `json:"isRead"`
}

func newContactResponse(message db.ContactMessage) contactResponse {
	return contactResponse{
		ID:        message.ID,
		Name:      message.Name,
		Email:     message.Email,
		Message:   message.Message,
		CreatedAt: message.CreatedAt,
		IsRead:    message.IsRead,
	}
}

func newContactResponses(messages []db.ContactMessage) []contactResponse {
	out := make([]contactResponse, 0, len(messages))
	for _, message := range messages {
		out = append(out, newContactResponse(message))
	}
	return out
}

// CreateContactMessage 访客提交留言
func (a *API) CreateContactMessage(c *gin.Context) {
	var req contactRequest
	if !bindJSON(c, &req, "name, a valid email and message are required") {
		return
	}

	message, err := a.contacts.Save(c.Request.Context(), service.ContactInput{
		Name:    plainText(req.Name),
		Email:   req.Email,
		Message: plainText(req.Message),
	})
	if err != nil {
		respondServiceError(c, err, "failed to save message")
		return
	}

	c.JSON(http.StatusCreated, newContactResponse(*message))
}

// GetContactMessages 全部留言
func (a *API) GetContactMessages(c *gin.Context) {
	messages, err := a.contacts.ListAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to list messages")
		return
	}
	c.JSON(http.StatusOK, newContactResponses(messages))
}

// GetUnreadContactMessages 未读留言
func (a *API) GetUnreadContactMessages(c *gin.Context) {
	messages, err := a.contacts.Unread(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to list messages")
		return
	}
	c.JSON(http.StatusOK, newContactResponses(messages))
}

// CountUnreadContactMessages 未读数量
func (a *API) CountUnreadContactMessages(c *gin.Context) {
	count, err := a.contacts.CountUnread(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "failed to count messages")
		return
	}
	c.JSON(http.StatusOK, count)
}

// MarkContactMessageRead 标记已读
func (a *API) MarkContactMessageRead(c *gin.Context) {
	message, err := a.contacts.MarkRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondServiceError(c, err, "failed to update message")
		return
	}
	c.JSON(http.StatusOK, newContactResponse(*message))
}
