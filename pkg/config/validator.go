package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// Validator 配置验证器
type Validator struct {
	validate *validator.Validate
}

var defaultValidator = NewValidator()

// NewValidator 创建验证器。
// 错误信息中的字段名取 mapstructure tag，与配置文件中的键保持一致。
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate 使用包级验证器验证配置结构体
func Validate(cfg any) error {
	return defaultValidator.Validate(cfg)
}

// Validate 验证配置结构体
// 支持标准的 validator tag，如：
// - required: 必填字段
// - min=1,max=100: 数值范围
// - oneof=debug info warn error: 枚举值
// - hostname_port: 监听地址
func (v *Validator) Validate(cfg any) error {
	if cfg == nil {
		return ErrNilConfig
	}
	if rv := reflect.ValueOf(cfg); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ErrNilConfig
	}

	if err := v.validate.Struct(cfg); err != nil {
		return errors.Wrap(ErrValidationFailed, formatValidationErrors(err))
	}
	return nil
}

// RegisterValidation 注册自定义验证规则
func (v *Validator) RegisterValidation(tag string, fn validator.Func) error {
	if err := v.validate.RegisterValidation(tag, fn); err != nil {
		return errors.Wrapf(err, "failed to register custom validation %s", tag)
	}
	return nil
}

// ValidateField 验证单个值
func (v *Validator) ValidateField(field any, tag string) error {
	if err := v.validate.Var(field, tag); err != nil {
		return errors.Wrap(ErrValidationFailed, formatValidationErrors(err))
	}
	return nil
}

// formatValidationErrors 格式化验证错误信息
func formatValidationErrors(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	msgs := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		field, param := fe.Namespace(), fe.Param()
		if field == "" {
			field = "value"
		}

		var msg string
		switch fe.Tag() {
		case "required":
			msg = fmt.Sprintf("field '%s' is required", field)
		case "min", "gte":
			msg = fmt.Sprintf("field '%s' must be at least %s", field, param)
		case "max", "lte":
			msg = fmt.Sprintf("field '%s' must be at most %s", field, param)
		case "oneof":
			msg = fmt.Sprintf("field '%s' must be one of [%s]", field, param)
		case "hostname_port":
			msg = fmt.Sprintf("field '%s' must be a host:port address", field)
		default:
			msg = fmt.Sprintf("field '%s' failed validation '%s'", field, fe.Tag())
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}
