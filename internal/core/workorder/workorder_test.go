package workorder

import (
	"errors"
	"testing"
	"time"

	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusDraft, StatusScheduled, true},
		{StatusScheduled, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusDraft, StatusCancelled, true},
		{StatusScheduled, StatusCancelled, true},
		{StatusInProgress, StatusCancelled, true},

		{StatusDraft, StatusInProgress, false},
		{StatusDraft, StatusCompleted, false},
		{StatusScheduled, StatusDraft, false},
		{StatusScheduled, StatusScheduled, false},
		{StatusInProgress, StatusScheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusDraft, false},
		{Status("UNKNOWN"), StatusScheduled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestAssertMutable(t *testing.T) {
	for _, s := range []Status{StatusDraft, StatusScheduled, StatusInProgress} {
		if err := AssertMutable(s); err != nil {
			t.Errorf("%s 应可修改，实际: %v", s, err)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		err := AssertMutable(s)
		if !errors.Is(err, pkgerrors.ErrWorkOrderLocked) {
			t.Errorf("%s 应返回 ErrWorkOrderLocked，实际: %v", s, err)
		}
	}
}

func TestApplyTransition_SetsTimestampOnce(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	res, err := ApplyTransition(StatusDraft, StatusScheduled, Timeline{}, now)
	if err != nil {
		t.Fatalf("DRAFT→SCHEDULED 应成功: %v", err)
	}
	if res.Timeline.ScheduledAt == nil || !res.Timeline.ScheduledAt.Equal(now) {
		t.Errorf("scheduled_at 应为 %v，实际 %v", now, res.Timeline.ScheduledAt)
	}
	if !res.Notify {
		t.Error("进入 SCHEDULED 应触发通知")
	}
	if res.Timeline.ClosedAt != nil {
		t.Error("非终态不应设置 closed_at")
	}

	earlier := now.Add(-time.Hour)
	later := now.Add(time.Hour)
	res, err = ApplyTransition(StatusScheduled, StatusInProgress, Timeline{ScheduledAt: &earlier, StartedAt: &earlier}, later)
	if err != nil {
		t.Fatalf("SCHEDULED→IN_PROGRESS 应成功: %v", err)
	}
	if !res.Timeline.StartedAt.Equal(earlier) {
		t.Errorf("已有 started_at 不应被覆盖，实际 %v", res.Timeline.StartedAt)
	}
}

func TestApplyTransition_TerminalSetsClosedAt(t *testing.T) {
	now := time.Date(2026, 3, 2, 17, 30, 0, 0, time.UTC)

	res, err := ApplyTransition(StatusInProgress, StatusCompleted, Timeline{}, now)
	if err != nil {
		t.Fatalf("IN_PROGRESS→COMPLETED 应成功: %v", err)
	}
	if res.Timeline.CompletedAt == nil || res.Timeline.ClosedAt == nil {
		t.Fatal("completed_at / closed_at 均应设置")
	}
	if res.Notify {
		t.Error("进入 COMPLETED 不触发通知")
	}

	res, err = ApplyTransition(StatusDraft, StatusCancelled, Timeline{}, now)
	if err != nil {
		t.Fatalf("DRAFT→CANCELLED 应成功: %v", err)
	}
	if res.Timeline.CancelledAt == nil || res.Timeline.ClosedAt == nil {
		t.Fatal("cancelled_at / closed_at 均应设置")
	}
}

func TestApplyTransition_Invalid(t *testing.T) {
	_, err := ApplyTransition(StatusCompleted, StatusInProgress, Timeline{}, time.Now())
	if !errors.Is(err, pkgerrors.ErrInvalidTransition) {
		t.Fatalf("期望 ErrInvalidTransition，实际: %v", err)
	}
	var ite *InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatal("应能 As 为 *InvalidTransitionError")
	}
	if ite.From != StatusCompleted || ite.To != StatusInProgress {
		t.Errorf("错误携带的状态不正确: %+v", ite)
	}
}

func TestAllowedNext(t *testing.T) {
	got := AllowedNext(StatusScheduled)
	if len(got) != 2 || got[0] != StatusInProgress || got[1] != StatusCancelled {
		t.Errorf("SCHEDULED 的后继应为 [IN_PROGRESS CANCELLED]，实际 %v", got)
	}
	if len(AllowedNext(StatusCancelled)) != 0 {
		t.Error("终态不应有后继")
	}
}
