// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"
	CodeRequestTooLarge    ErrorCode = "1009"

	// 资源错误 (3xxx)
	CodeIdeaNotFound       ErrorCode = "3001"
	CodeGenerationNotFound ErrorCode = "3002"

	// 业务错误 (4xxx)
	CodeGenerationFailed    ErrorCode = "4001"
	CodeValidationFailed    ErrorCode = "4002"
	CodeSerializationFailed ErrorCode = "4003"
	CodeGenerationInFlight  ErrorCode = "4004"
	CodeLLMCallFailed       ErrorCode = "4005"
	CodeUnsupportedFormat   ErrorCode = "4006"

	// 外部服务错误 (5xxx)
	CodeDatabaseError    ErrorCode = "5001"
	CodeCacheError       ErrorCode = "5002"
	CodeLLMProviderError ErrorCode = "5005"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 返回带详细信息的副本，预定义错误不会被修改
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 返回带底层错误的副本
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeValidationFailed, CodeUnsupportedFormat:
		return http.StatusBadRequest
	case CodeNotFound, CodeIdeaNotFound, CodeGenerationNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeGenerationInFlight:
		return http.StatusConflict
	case CodeSerializationFailed:
		return http.StatusUnprocessableEntity
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge
	case CodeGenerationFailed, CodeLLMCallFailed, CodeLLMProviderError:
		return http.StatusBadGateway
	case CodeServiceUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")
	ErrRequestTooLarge    = New(CodeRequestTooLarge, "request body too large")

	ErrIdeaNotFound       = New(CodeIdeaNotFound, "idea not found")
	ErrGenerationNotFound = New(CodeGenerationNotFound, "no generation for session")

	ErrGenerationFailed    = New(CodeGenerationFailed, "idea generation failed")
	ErrValidationFailed    = New(CodeValidationFailed, "validation failed")
	ErrSerializationFailed = New(CodeSerializationFailed, "idea cannot be exported")
	ErrGenerationInFlight  = New(CodeGenerationInFlight, "a generation is already running for this session")
	ErrUnsupportedFormat   = New(CodeUnsupportedFormat, "unsupported export format")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}
