package handler

import (
	"bytes"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// WorkOrderSheet 导出派工单
// GET /api/v1/work-orders/:id/export
func (h *ExportHandler) WorkOrderSheet(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.WorkOrderSheet(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	writeAttachment(c, filename, xlsxContentType, buf)
}

// ComplianceRoster 导出资质花名册
// GET /api/v1/compliance/roster/export
func (h *ExportHandler) ComplianceRoster(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ComplianceRoster(c.Request.Context(), actor)
	if err != nil {
		handleError(c, err)
		return
	}

	writeAttachment(c, filename, xlsxContentType, buf)
}

// Calendar 已排期工单日历订阅
// GET /api/v1/work-orders/calendar.ics?from=2026-03-01&to=2026-04-01
func (h *ExportHandler) Calendar(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CalendarRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	// binding 已校验日期格式
	var from, to time.Time
	if req.From != "" {
		from, _ = time.Parse(time.DateOnly, req.From)
	}
	if req.To != "" {
		to, _ = time.Parse(time.DateOnly, req.To)
	}

	out, err := h.exportSvc.Calendar(c.Request.Context(), actor, from, to)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, icsContentType, []byte(out))
}

func writeAttachment(c *gin.Context, filename, contentType string, buf *bytes.Buffer) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
