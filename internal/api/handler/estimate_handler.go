package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/response"
)

// EstimateHandler 报价模块 HTTP 处理器
type EstimateHandler struct {
	estimateSvc service.EstimateService
	views       *viewStore
}

// NewEstimateHandler 创建 EstimateHandler
func NewEstimateHandler(estimateSvc service.EstimateService, views *viewStore) *EstimateHandler {
	return &EstimateHandler{estimateSvc: estimateSvc, views: views}
}

// Create 新建报价单
// POST /api/v1/estimates
func (h *EstimateHandler) Create(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.estimateSvc.Create(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.Created(c, result)
}

// List 报价单列表
// GET /api/v1/estimates?status=
func (h *EstimateHandler) List(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.EstimateListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.estimateSvc.List(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 报价单详情（含全部修订）
// GET /api/v1/estimates/:id
func (h *EstimateHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.estimateSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// AddRevision 追加修订
// POST /api/v1/estimates/:id/revisions
func (h *EstimateHandler) AddRevision(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.AddRevisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.estimateSvc.AddRevision(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.Created(c, result)
}

type estimateAction func(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, service.ChangeSet, error)

func (h *EstimateHandler) runAction(c *gin.Context, action estimateAction) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, changes, err := action(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, result)
}

// Send 发送给客户
// POST /api/v1/estimates/:id/send
func (h *EstimateHandler) Send(c *gin.Context) {
	h.runAction(c, h.estimateSvc.Send)
}

// Approve 客户确认
// POST /api/v1/estimates/:id/approve
func (h *EstimateHandler) Approve(c *gin.Context) {
	h.runAction(c, h.estimateSvc.Approve)
}

// Decline 客户拒绝
// POST /api/v1/estimates/:id/decline
func (h *EstimateHandler) Decline(c *gin.Context) {
	h.runAction(c, h.estimateSvc.Decline)
}

// Convert 已确认的报价单转为工单（只能转一次）
// POST /api/v1/estimates/:id/convert
func (h *EstimateHandler) Convert(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.ConvertEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.estimateSvc.ConvertToWorkOrder(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.Created(c, result)
}
