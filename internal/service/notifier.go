package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/mailer"
)

// Notifier 工单事件通知（事务提交后调用，返回的错误仅记录日志）
type Notifier interface {
	WorkOrderStatusChanged(ctx context.Context, wo *model.WorkOrder, from workorder.Status, crew []model.WorkOrderAssignment) error
	EmployeeAssigned(ctx context.Context, wo *model.WorkOrder, emp *model.ComplianceEmployee, role string) error
}

type mailNotifier struct {
	sender  mailer.Sender
	baseURL string
	logger  *zap.Logger
}

// NewMailNotifier 基于邮件的 Notifier
func NewMailNotifier(sender mailer.Sender, baseURL string, logger *zap.Logger) Notifier {
	return &mailNotifier{sender: sender, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}
}

func (n *mailNotifier) WorkOrderStatusChanged(ctx context.Context, wo *model.WorkOrder, from workorder.Status, crew []model.WorkOrderAssignment) error {
	to := crewEmails(crew)
	if len(to) == 0 {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## 工单 %s 状态变更\n\n", wo.Number)
	fmt.Fprintf(&b, "**%s**\n\n", wo.Title)
	fmt.Fprintf(&b, "| 原状态 | 新状态 |\n|---|---|\n| %s | %s |\n\n", from, wo.Status)
	writeSchedule(&b, wo)

	html, err := mailer.RenderMarkdown(b.String())
	if err != nil {
		return err
	}
	id, err := n.sender.Send(ctx, mailer.Message{
		To:      to,
		Subject: fmt.Sprintf("[%s] %s → %s", wo.Number, from, wo.Status),
		HTML:    html,
	})
	if err != nil {
		return err
	}
	n.logger.Debug("状态通知已发送", zap.String("work_order_id", wo.WorkOrderID), zap.String("message_id", id))
	return nil
}

func (n *mailNotifier) EmployeeAssigned(ctx context.Context, wo *model.WorkOrder, emp *model.ComplianceEmployee, role string) error {
	if emp.Email == "" {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "## 新派工：%s\n\n", wo.Number)
	fmt.Fprintf(&b, "%s，你已被派往工单 **%s**（角色：%s）。\n\n", emp.Name, wo.Title, role)
	writeSchedule(&b, wo)

	html, err := mailer.RenderMarkdown(b.String())
	if err != nil {
		return err
	}
	msg := mailer.Message{
		To:      []string{emp.Email},
		Subject: fmt.Sprintf("[%s] 派工通知", wo.Number),
		HTML:    html,
	}
	if wo.ScheduledFor != nil {
		msg.Attachments = append(msg.Attachments, mailer.Attachment{
			Name:        wo.Number + ".ics",
			ContentType: "text/calendar; charset=utf-8; method=PUBLISH",
			Data:        []byte(buildCalendar([]model.WorkOrder{*wo}, n.baseURL)),
		})
	}

	id, err := n.sender.Send(ctx, msg)
	if err != nil {
		return err
	}
	n.logger.Debug("派工通知已发送", zap.String("work_order_id", wo.WorkOrderID), zap.String("message_id", id))
	return nil
}

func writeSchedule(b *strings.Builder, wo *model.WorkOrder) {
	if wo.ScheduledFor != nil {
		fmt.Fprintf(b, "- 计划时间：%s（%d 分钟）\n", wo.ScheduledFor.UTC().Format("2006-01-02 15:04 MST"), wo.DurationMinutes)
	}
	if wo.SiteAddress != "" {
		fmt.Fprintf(b, "- 地址：%s\n", wo.SiteAddress)
	}
}

func crewEmails(crew []model.WorkOrderAssignment) []string {
	seen := make(map[string]bool, len(crew))
	var out []string
	for i := range crew {
		emp := crew[i].Employee
		if emp == nil || emp.Email == "" || seen[emp.Email] {
			continue
		}
		seen[emp.Email] = true
		out = append(out, emp.Email)
	}
	return out
}
