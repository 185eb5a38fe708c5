package api

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

var spreadsheetPattern = regexp.MustCompile(`^([a-zA-Z0-9-_]+|https?://\S*/spreadsheets/d/[a-zA-Z0-9-_]+\S*)$`)

// registerValidators 向 gin 的校验引擎注册自定义规则
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("spreadsheet", isSpreadsheetRef)
		_ = v.RegisterValidation("label", isLabel)
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// isSpreadsheetRef 表格 ID 或 docs.google.com 链接
func isSpreadsheetRef(fl validator.FieldLevel) bool {
	return spreadsheetPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// isLabel 标签页名 / 月份标签：可打印字符，最长 100
func isLabel(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if utf8.RuneCountInString(s) > 100 {
		return false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

// validationMessage 将校验错误转换为提示信息
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "요청 형식이 올바르지 않습니다"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " 값이 필요합니다"
	case "spreadsheet":
		return "스프레드시트 ID 또는 URL 형식이 올바르지 않습니다"
	default:
		return fe.Field() + " 값이 올바르지 않습니다"
	}
}
