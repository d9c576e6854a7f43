package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/bloghub/internal/db"
)

// UserService 负责注册、登录校验与用户查询。
type UserService struct {
	db         *gorm.DB
	adminEmail string
}

// RegisterInput 描述注册请求
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Admin    bool
}

// NewUserService 构造 UserService，adminEmail 是唯一允许注册为管理员的邮箱。
func NewUserService(gdb *gorm.DB, adminEmail string) *UserService {
	return &UserService{db: gdb, adminEmail: strings.ToLower(strings.TrimSpace(adminEmail))}
}

// GetByID 查找用户，不存在时返回 NotFound。
func (s *UserService) GetByID(ctx context.Context, id string) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("user not found with id %s", id)
		}
		return nil, err
	}
	return &user, nil
}

// Register 创建新用户，邮箱唯一。
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*db.User, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return nil, invalidArgument("name, email and password are required")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&db.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, invalidArgument("email already in use")
	}

	if input.Admin && (s.adminEmail == "" || email != s.adminEmail) {
		return nil, invalidArgument("only specific emails can register as admin")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := db.User{Name: name, Email: email, Password: string(hashed), IsAdmin: input.Admin}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Authenticate 校验邮箱与密码，失败统一返回 ErrInvalidCredentials。
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}
