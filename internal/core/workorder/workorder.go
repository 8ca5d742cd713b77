// Package workorder 工单生命周期的纯业务规则：状态枚举、流转表、可变性守卫。
// 不做任何 I/O，调用方负责持久化与事务。
package workorder

import (
	"fmt"
	"time"

	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// Status 工单状态
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// allowedTransitions 合法流转表，未列出的组合一律拒绝
var allowedTransitions = map[Status]map[Status]struct{}{
	StatusDraft: {
		StatusScheduled: {},
		StatusCancelled: {},
	},
	StatusScheduled: {
		StatusInProgress: {},
		StatusCancelled:  {},
	},
	StatusInProgress: {
		StatusCompleted: {},
		StatusCancelled: {},
	},
	StatusCompleted: {},
	StatusCancelled: {},
}

// Valid 是否为已知状态
func (s Status) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal 终态（已完成 / 已取消）
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Live 进行中的状态：派工变更需要通知现场人员
func (s Status) Live() bool {
	return s == StatusScheduled || s == StatusInProgress
}

// Notifies 进入该状态时是否触发通知
func (s Status) Notifies() bool {
	return s.Live()
}

// InvalidTransitionError 非法流转，errors.Is(err, ErrInvalidTransition) 为 true
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("不允许的工单状态流转: %s → %s", e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == pkgerrors.ErrInvalidTransition
}

// CanTransition 查询流转表
func CanTransition(from, to Status) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	_, ok = next[to]
	return ok
}

// AllowedNext 返回 from 可以流转到的状态（按流程顺序）
func AllowedNext(from Status) []Status {
	order := []Status{StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled}
	var out []Status
	for _, s := range order {
		if CanTransition(from, s) {
			out = append(out, s)
		}
	}
	return out
}

// AssertMutable 终态工单拒绝一切派工 / 备注 / 预设修改
func AssertMutable(status Status) error {
	if status.Terminal() {
		return fmt.Errorf("工单状态为 %s: %w", status, pkgerrors.ErrWorkOrderLocked)
	}
	return nil
}

// Timeline 各状态的首次进入时间，每个字段只写一次
type Timeline struct {
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	ClosedAt    *time.Time `json:"closed_at,omitempty"`
}

// TransitionResult 流转结果（值对象）
type TransitionResult struct {
	From     Status
	To       Status
	Timeline Timeline
	Notify   bool
}

// ApplyTransition 校验流转并返回新的时间线，不修改入参
func ApplyTransition(from, to Status, tl Timeline, now time.Time) (TransitionResult, error) {
	if !CanTransition(from, to) {
		return TransitionResult{}, &InvalidTransitionError{From: from, To: to}
	}

	at := now
	next := tl
	switch to {
	case StatusScheduled:
		next.ScheduledAt = setOnce(next.ScheduledAt, at)
	case StatusInProgress:
		next.StartedAt = setOnce(next.StartedAt, at)
	case StatusCompleted:
		next.CompletedAt = setOnce(next.CompletedAt, at)
	case StatusCancelled:
		next.CancelledAt = setOnce(next.CancelledAt, at)
	}
	if to.Terminal() {
		next.ClosedAt = setOnce(next.ClosedAt, at)
	}

	return TransitionResult{
		From:     from,
		To:       to,
		Timeline: next,
		Notify:   to.Notifies(),
	}, nil
}

func setOnce(cur *time.Time, at time.Time) *time.Time {
	if cur != nil {
		return cur
	}
	t := at
	return &t
}

// InitialStatus 新建工单的初始状态
func InitialStatus() Status {
	return StatusDraft
}
