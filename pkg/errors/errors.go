package errors

import (
	"errors"
	"fmt"
)

// ── 通用错误 ──

var (
	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

	ErrUnauthorized = errors.New("未认证或会话已失效")
	ErrForbidden    = errors.New("当前角色无权执行此操作")
	ErrNotFound     = errors.New("资源不存在")
	ErrValidation   = errors.New("参数校验失败")
)

// ── 工单 / 合规错误 ──

var (
	ErrWorkOrderLocked            = errors.New("工单已完成或已取消，不可修改")
	ErrInvalidTransition          = errors.New("不允许的工单状态流转")
	ErrComplianceOverrideRequired = errors.New("员工合规检查未通过，需要确认豁免")
	ErrOverrideReasonTooShort     = errors.New("豁免理由过短")
	ErrEstimateLocked             = errors.New("报价单已锁定，不可修改")
)

// ValidationError 带字段信息的参数错误，errors.Is(err, ErrValidation) 为 true
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Invalid 构造 ValidationError
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NotFound 为 ErrNotFound 附加实体信息
func NotFound(entity, id string) error {
	return fmt.Errorf("%s %s: %w", entity, id, ErrNotFound)
}
