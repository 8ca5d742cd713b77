package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/response"
)

// CatalogHandler 设备与作业预设 HTTP 处理器
type CatalogHandler struct {
	catalogSvc service.CatalogService
}

// NewCatalogHandler 创建 CatalogHandler
func NewCatalogHandler(catalogSvc service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogSvc: catalogSvc}
}

// activeOnly 解析 ?active_only=true
func activeOnly(c *gin.Context) bool {
	return c.Query("active_only") == "true"
}

// CreateAsset 新建设备
// POST /api/v1/assets
func (h *CatalogHandler) CreateAsset(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.catalogSvc.CreateAsset(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// ListAssets 设备列表
// GET /api/v1/assets
func (h *CatalogHandler) ListAssets(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.catalogSvc.ListAssets(c.Request.Context(), actor, activeOnly(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateAsset 修改设备（含停用）
// PUT /api/v1/assets/:id
func (h *CatalogHandler) UpdateAsset(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.catalogSvc.UpdateAsset(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// CreatePreset 新建作业预设
// POST /api/v1/presets
func (h *CatalogHandler) CreatePreset(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.catalogSvc.CreatePreset(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, result)
}

// ListPresets 作业预设列表
// GET /api/v1/presets
func (h *CatalogHandler) ListPresets(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.catalogSvc.ListPresets(c.Request.Context(), actor, activeOnly(c))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdatePreset 修改作业预设
// PUT /api/v1/presets/:id
func (h *CatalogHandler) UpdatePreset(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.catalogSvc.UpdatePreset(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}
