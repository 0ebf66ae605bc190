package apperr

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类
type Kind string

const (
	KindValidation        Kind = "validation"
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindEmptyCart         Kind = "empty_cart"
	KindInvalidTransition Kind = "invalid_transition"
	KindAggregateWrite    Kind = "aggregate_write"
)

// 业务错误码，沿用既有客户端约定的负数编号
const (
	CodeValidation        = -3001
	CodeCategoryNotFound  = -3002
	CodeArticleNotFound   = -5001
	CodeAggregateWrite    = -5002
	CodeOrderExists       = -7001
	CodeCartNotFound      = -7002
	CodeEmptyCart         = -7003
	CodeOrderNotFound     = -9001
	CodeInvalidTransition = -9002
)

// Error 结构化业务错误：分类 + 错误码 + 文案
type Error struct {
	Kind    Kind
	Code    int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%d): %s: %v", e.Kind, e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s (%d): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 构造业务错误
func New(kind Kind, code int, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Wrap 包装底层错误
func Wrap(kind Kind, code int, msg string, err error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Err: err}
}

// Validationf 输入校验错误
func Validationf(format string, args ...interface{}) *Error {
	return New(KindValidation, CodeValidation, fmt.Sprintf(format, args...))
}

// IsKind 判断错误是否属于指定分类
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// From 提取结构化错误；非业务错误返回 nil
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}

// HTTPStatus 结构化错误对应的 HTTP 状态码
func HTTPStatus(err error) int {
	e := From(err)
	if e == nil {
		return 500
	}
	switch e.Kind {
	case KindValidation, KindEmptyCart:
		return 400
	case KindNotFound:
		return 404
	case KindConflict, KindInvalidTransition:
		return 409
	default:
		return 500
	}
}
