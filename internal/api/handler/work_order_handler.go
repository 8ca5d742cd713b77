package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/response"
)

// WorkOrderHandler 工单模块 HTTP 处理器（含派工、设备、作业预设）
type WorkOrderHandler struct {
	woSvc service.WorkOrderService
	views *viewStore
}

// NewWorkOrderHandler 创建 WorkOrderHandler
func NewWorkOrderHandler(woSvc service.WorkOrderService, views *viewStore) *WorkOrderHandler {
	return &WorkOrderHandler{woSvc: woSvc, views: views}
}

// ── 工单 ──

// Create 新建工单
// POST /api/v1/work-orders
func (h *WorkOrderHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.woSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.Created(c, result)
}

// List 工单列表
// GET /api/v1/work-orders?status=&keyword=&page=&page_size=
func (h *WorkOrderHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.WorkOrderListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.woSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 工单详情（Redis 视图缓存）
// GET /api/v1/work-orders/:id
func (h *WorkOrderHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	id := c.Param("id")
	key := workOrderViewKey(actor.CompanyID, id)

	var cached dto.WorkOrderDetailResponse
	if h.views.load(c, key, &cached) {
		response.OK(c, &cached)
		return
	}

	result, err := h.woSvc.Get(c.Request.Context(), actor, id)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.store(c, key, result)
	response.OK(c, result)
}

// ListActivity 工单操作记录
// GET /api/v1/work-orders/:id/activity
func (h *WorkOrderHandler) ListActivity(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.woSvc.ListActivity(c.Request.Context(), actor, c.Param("id"), &page)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// Transition 工单状态流转
// PUT /api/v1/work-orders/:id/status
func (h *WorkOrderHandler) Transition(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.woSvc.Transition(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, result)
}

// UpdateNotes 修改工单备注
// PUT /api/v1/work-orders/:id/notes
func (h *WorkOrderHandler) UpdateNotes(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.woSvc.UpdateNotes(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, result)
}

// ── 派工 ──

// Assign 派工；员工已在岗时返回 200 且不做写入
// POST /api/v1/work-orders/:id/assignments
func (h *WorkOrderHandler) Assign(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AssignEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.woSvc.Assign(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	if result.Created {
		response.Created(c, result)
		return
	}
	response.OK(c, result)
}

// UpdateAssignment 修改派工角色
// PUT /api/v1/work-orders/assignments/:id
func (h *WorkOrderHandler) UpdateAssignment(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.woSvc.UpdateAssignment(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, result)
}

// Unassign 撤销派工（重复撤销幂等）
// DELETE /api/v1/work-orders/assignments/:id
func (h *WorkOrderHandler) Unassign(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	changes, err := h.woSvc.Unassign(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, nil)
}

// ── 设备 ──

// AssignAsset 设备派用
// POST /api/v1/work-orders/:id/assets
func (h *WorkOrderHandler) AssignAsset(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AssignAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.woSvc.AssignAsset(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, result)
}

// UnassignAsset 撤销设备派用
// DELETE /api/v1/work-orders/assets/:id
func (h *WorkOrderHandler) UnassignAsset(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	changes, err := h.woSvc.UnassignAsset(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, nil)
}

// ── 作业预设 ──

// AddPreset 添加作业预设
// POST /api/v1/work-orders/:id/presets
func (h *WorkOrderHandler) AddPreset(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AddPresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	changes, err := h.woSvc.AddPreset(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, nil)
}

// RemovePreset 移除作业预设
// DELETE /api/v1/work-orders/:id/presets/:presetId
func (h *WorkOrderHandler) RemovePreset(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	changes, err := h.woSvc.RemovePreset(c.Request.Context(), actor, c.Param("id"), c.Param("presetId"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, nil)
}
