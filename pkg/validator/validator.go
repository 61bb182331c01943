package validator

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"tangle-wallet/pkg/tangle"
)

// TagTryteHash 81 tryte 哈希
const TagTryteHash = "tryte_hash"

var once sync.Once

// Init 在 gin 的 binding 引擎上注册自定义校验, 可重复调用
func Init() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation(TagTryteHash, func(fl validator.FieldLevel) bool {
			_, err := tangle.NewHash(fl.Field().String())
			return err == nil
		})
	})
}

// GetErrorMsg 把校验错误翻译成可读信息
func GetErrorMsg(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return "请求参数错误"
	}

	errMsgs := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		field := e.Field()
		param := e.Param()

		switch e.Tag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 不能为空", field))
		case "min":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 至少为 %s", field, param))
		case "max":
			errMsgs = append(errMsgs, fmt.Sprintf("%s 不能超过 %s", field, param))
		case TagTryteHash:
			errMsgs = append(errMsgs, fmt.Sprintf("%s 必须是 81 位 tryte (9A-Z)", field))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("%s 校验失败 (%s)", field, e.Tag()))
		}
	}
	return strings.Join(errMsgs, "; ")
}
