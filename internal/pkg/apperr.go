package pkg

import (
	"errors"
	"fmt"
)

// AppError 统一业务错误，带错误码，便于 handler 映射 HTTP 状态
type AppError struct {
	Code    int    // 错误码
	Message string // 对外可见的错误消息
	Err     error  // 原始错误，调试用，可为空
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewError(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 包装原始错误，保留错误码和消息
func (e *AppError) Wrap(err error) *AppError {
	return &AppError{Code: e.Code, Message: e.Message, Err: err}
}

// Is 按错误码判断
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// GetCode 非 AppError 一律按内部错误处理
func GetCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeStore
}

func GetMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "internal error"
}

// Validationf 带格式化消息的参数校验错误
func Validationf(format string, args ...any) *AppError {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ============== 错误码 ==============

const (
	// 输入 20000-20099
	CodeValidation = 20001

	// 权限 20100-20199
	CodeUnauthenticated = 20101
	CodeNotAdmin        = 20102

	// 资源 20200-20299
	CodeNotFound = 20201

	// 业务拒绝 20300-20399
	CodeLastAdmin     = 20301
	CodeNotMember     = 20302
	CodeAlreadyJoined = 20303

	// 系统 50000-50099
	CodeStore          = 50001
	CodePartialCascade = 50002
	CodeGenRateLimited = 50003
	CodeGenOverloaded  = 50004
)

// ============== 预定义错误 ==============

var (
	ErrUnauthenticated = NewError(CodeUnauthenticated, "login required")
	ErrNotAdmin        = NewError(CodeNotAdmin, "admin role required")
	ErrNotFound        = NewError(CodeNotFound, "not found")
	// ErrLastAdmin 社区最后一名管理员不允许退出或降级
	ErrLastAdmin      = NewError(CodeLastAdmin, "community needs at least one admin")
	ErrNotMember      = NewError(CodeNotMember, "not a community member")
	ErrStore          = NewError(CodeStore, "storage error")
	ErrPartialCascade = NewError(CodePartialCascade, "cascade delete incomplete")
	ErrGenRateLimited = NewError(CodeGenRateLimited, "generation rate limited")
	ErrGenOverloaded  = NewError(CodeGenOverloaded, "generation service overloaded")
)
