package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/bloghub/internal/db"
)

// BookingService 处理访客预约
type BookingService struct {
	db *gorm.DB
}

// BookingInput 描述创建预约时可设置的字段
type BookingInput struct {
	Name     string
	Email    string
	Phone    string
	Service  string
	DateTime time.Time
	Message  string
}

// NewBookingService 构造 BookingService
func NewBookingService(gdb *gorm.DB) *BookingService {
	return &BookingService{db: gdb}
}

// Create 保存预约，新预约默认未确认。
func (s *BookingService) Create(ctx context.Context, input BookingInput) (*db.Booking, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Service) == "" {
		return nil, invalidArgument("name, email and service are required")
	}
	if input.DateTime.IsZero() {
		return nil, invalidArgument("date and time is required")
	}

	booking := db.Booking{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:    strings.TrimSpace(input.Phone),
		Service:  strings.TrimSpace(input.Service),
		DateTime: input.DateTime,
		Message:  strings.TrimSpace(input.Message),
	}
	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// Upcoming 返回 now 起一个月内的预约，按时间升序。
func (s *BookingService) Upcoming(ctx context.Context, now time.Time) ([]db.Booking, error) {
	bookings := make([]db.Booking, 0)
	if err := s.db.WithContext(ctx).
		Where("date_time BETWEEN ? AND ?", now, now.AddDate(0, 1, 0)).
		Order("date_time asc").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// Unconfirmed 返回尚未确认的预约
func (s *BookingService) Unconfirmed(ctx context.Context) ([]db.Booking, error) {
	bookings := make([]db.Booking, 0)
	if err := s.db.WithContext(ctx).
		Where("confirmed = ?", false).
		Order("date_time asc").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// ByEmail 返回某个邮箱的全部预约，最近的在前。
func (s *BookingService) ByEmail(ctx context.Context, email string) ([]db.Booking, error) {
	bookings := make([]db.Booking, 0)
	if err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Order("date_time desc").
		Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// Confirm 标记预约为已确认
func (s *BookingService) Confirm(ctx context.Context, id string) (*db.Booking, error) {
	var booking db.Booking
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("booking not found with id: %s", id)
		}
		return nil, err
	}

	booking.Confirmed = true
	if err := s.db.WithContext(ctx).Model(&booking).Update("confirmed", true).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// Cancel 删除预约，id 不存在时不报错。
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&db.Booking{}).Error
}
