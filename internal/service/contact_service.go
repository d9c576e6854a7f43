package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/bloghub/internal/db"
)

// ContactService 保存并管理联系表单留言
type ContactService struct {
	db *gorm.DB
}

// ContactInput 描述联系表单字段
type ContactInput struct {
	Name    string
	Email   string
	Message string
}

// NewContactService 构造 ContactService
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb}
}

// Save 保存留言，初始为未读。
func (s *ContactService) Save(ctx context.Context, input ContactInput) (*db.ContactMessage, error) {
	message := db.ContactMessage{
		Name:    strings.TrimSpace(input.Name),
		Email:   strings.TrimSpace(input.Email),
		Message: strings.TrimSpace(input.Message),
	}
	if message.Name == "" || message.Email == "" || message.Message == "" {
		return nil, invalidArgument("name, email and message are required")
	}

	if err := s.db.WithContext(ctx).Create(&message).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// ListAll 返回全部留言，最新的在前
func (s *ContactService) ListAll(ctx context.Context) ([]db.ContactMessage, error) {
	return s.list(ctx, false)
}

// Unread 返回未读留言
func (s *ContactService) Unread(ctx context.Context) ([]db.ContactMessage, error) {
	return s.list(ctx, true)
}

func (s *ContactService) list(ctx context.Context, unreadOnly bool) ([]db.ContactMessage, error) {
	query := s.db.WithContext(ctx).Model(&db.ContactMessage{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	messages := make([]db.ContactMessage, 0)
	if err := query.Order("created_at desc").Order("id desc").Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// CountUnread 统计未读留言数量
func (s *ContactService) CountUnread(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&db.ContactMessage{}).Where("is_read = ?", false).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkRead 标记留言为已读
func (s *ContactService) MarkRead(ctx context.Context, id string) (*db.ContactMessage, error) {
	var message db.ContactMessage
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("contact message not found with id: %s", id)
		}
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&message).Update("is_read", true).Error; err != nil {
		return nil, err
	}
	message.IsRead = true
	return &message, nil
}
