package models

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrorKind 业务错误分类，控制器据此映射HTTP状态码
type ErrorKind int

const (
	KindValidation ErrorKind = iota + 1 // 参数非法
	KindNotFound                        // 资源不存在
	KindConflict                        // 当日已打卡 / 乐观锁重试耗尽
	KindInvariant                       // 不变量被破坏，属于程序错误
	KindUnavailable                     // 奖励下架/过期/已兑完
	KindExternal                        // 外部依赖（邮件/Slack/LLM）失败
)

// AppError 带分类的业务错误
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

func NewNotFoundError(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewConflictError(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func NewInvariantError(msg string) *AppError {
	return &AppError{Kind: KindInvariant, Message: msg}
}

func NewUnavailableError(msg string) *AppError {
	return &AppError{Kind: KindUnavailable, Message: msg}
}

func NewExternalError(msg string, err error) *AppError {
	return &AppError{Kind: KindExternal, Message: msg, Err: err}
}

// KindOf 提取错误分类，非AppError一律按内部错误处理
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return 0
}

// IsDuplicateKeyError 识别唯一索引冲突，mysql与sqlite报错格式不同
func IsDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
