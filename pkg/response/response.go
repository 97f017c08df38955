package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"PunchPass/pkg/errors"
)

// ErrorResponse 统一的错误响应格式，客户端只认这一种失败形状
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func errorToHTTPStatus(err error) int {
	def, ok := err.(errors.Definition)
	if !ok {
		return http.StatusInternalServerError
	}

	// 根据错误码映射 HTTP 状态码
	switch def.Code {
	case "TOO_MANY_REQUESTS":
		return http.StatusTooManyRequests // 429
	case "INVALID_REQUEST", "UNKNOWN_ACTION",
		"NOT_REGISTERED", "ALREADY_CHECKED_IN", "ALREADY_CHECKED_OUT",
		"CHECK_IN_REQUIRED", "NO_RECORD_TODAY":
		return http.StatusBadRequest // 400
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error 返回错误响应
func Error(ctx context.Context, c *app.RequestContext, err error) {
	statusCode := errorToHTTPStatus(err)

	var message string
	if def, ok := err.(errors.Definition); ok {
		message = def.Message
	} else {
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Status:  "error",
		Message: message,
	})
}

// Success 按动作各自的形状原样输出，HTTP 永远是 200
func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Status:  "error",
		Message: err.Error(),
	})
}
