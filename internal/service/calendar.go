package service

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
)

// ── iCalendar 生成 ──────────────────────────────────────────
//
// 每个已排期工单对应一个 VEVENT：
//   - UID: <work_order_id>@fieldops
//   - 开始 scheduled_for，结束 scheduled_for + duration_minutes
//   - 未排期的工单跳过

const calendarProdID = "fieldops"

func buildCalendar(list []model.WorkOrder, baseURL string) string {
	cal := ics.NewCalendarFor(calendarProdID)
	cal.SetMethod(ics.MethodPublish)
	cal.SetXWRCalName("FieldOps 派工日历")

	for i := range list {
		wo := &list[i]
		if wo.ScheduledFor == nil {
			continue
		}
		start := wo.ScheduledFor.UTC()
		duration := wo.DurationMinutes
		if duration <= 0 {
			duration = defaultDurationMinutes
		}

		evt := cal.AddEvent(wo.WorkOrderID + "@" + calendarProdID)
		evt.SetDtStampTime(wo.UpdatedAt.UTC())
		evt.SetStartAt(start)
		evt.SetEndAt(start.Add(time.Duration(duration) * time.Minute))
		evt.SetSummary(fmt.Sprintf("%s %s", wo.Number, wo.Title))
		evt.SetSequence(wo.Version)
		if wo.SiteAddress != "" {
			evt.SetLocation(wo.SiteAddress)
		}
		if wo.Description != "" {
			evt.SetDescription(wo.Description)
		}
		if baseURL != "" {
			evt.SetURL(strings.TrimRight(baseURL, "/") + "/api/v1/work-orders/" + wo.WorkOrderID)
		}
		if wo.Status == workorder.StatusCancelled {
			evt.SetStatus(ics.ObjectStatusCancelled)
		} else {
			evt.SetStatus(ics.ObjectStatusConfirmed)
		}
	}
	return cal.Serialize()
}
