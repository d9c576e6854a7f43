package handler

import (
	"errors"
	"regexp"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/bloghub/internal/db"
)

// 标签名只允许字母、数字、下划线、空白和连字符
var tagNamePattern = regexp.MustCompile(`^[\w\s-]+$`)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators 向 gin 的校验引擎注册自定义规则，可重复调用。
func RegisterValidators() error {
	registerOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin binding engine is not validator/v10")
			return
		}
		if err := engine.RegisterValidation("post_status", validatePostStatus); err != nil {
			registerErr = err
			return
		}
		registerErr = engine.RegisterValidation("tag_name", validateTagName)
	})
	return registerErr
}

func validatePostStatus(fl validator.FieldLevel) bool {
	_, ok := db.ParsePostStatus(fl.Field().String())
	return ok
}

func validateTagName(fl validator.FieldLevel) bool {
	return tagNamePattern.MatchString(fl.Field().String())
}
