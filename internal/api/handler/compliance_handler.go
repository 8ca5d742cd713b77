package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/response"
)

// proofFormField 资质证明上传的表单字段
const proofFormField = "file"

// ComplianceHandler 员工资质合规 HTTP 处理器
type ComplianceHandler struct {
	complianceSvc service.ComplianceService
	views         *viewStore
}

// NewComplianceHandler 创建 ComplianceHandler
func NewComplianceHandler(complianceSvc service.ComplianceService, views *viewStore) *ComplianceHandler {
	return &ComplianceHandler{complianceSvc: complianceSvc, views: views}
}

// ── 员工 ──

// CreateEmployee 新建员工（同时生成核验二维码令牌）
// POST /api/v1/compliance/employees
func (h *ComplianceHandler) CreateEmployee(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.complianceSvc.CreateEmployee(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.Created(c, result)
}

// ListEmployees 员工列表
// GET /api/v1/compliance/employees?status=&keyword=&active_only=
func (h *ComplianceHandler) ListEmployees(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.complianceSvc.ListEmployees(c.Request.Context(), actor, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetEmployee 员工详情
// GET /api/v1/compliance/employees/:id
func (h *ComplianceHandler) GetEmployee(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.complianceSvc.GetEmployee(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// UpdateEmployee 修改员工信息
// PUT /api/v1/compliance/employees/:id
func (h *ComplianceHandler) UpdateEmployee(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.complianceSvc.UpdateEmployee(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, result)
}

// DeactivateEmployee 停用员工
// DELETE /api/v1/compliance/employees/:id
func (h *ComplianceHandler) DeactivateEmployee(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	changes, err := h.complianceSvc.DeactivateEmployee(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, nil)
}

// Snapshot 员工合规快照
// GET /api/v1/compliance/employees/:id/snapshot
func (h *ComplianceHandler) Snapshot(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.complianceSvc.Snapshot(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// ListDocuments 员工证明文件
// GET /api/v1/compliance/employees/:id/documents
func (h *ComplianceHandler) ListDocuments(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	result, err := h.complianceSvc.ListDocuments(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// ── 资质 ──

// AddCertification 新增资质
// POST /api/v1/compliance/employees/:id/certifications
func (h *ComplianceHandler) AddCertification(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.CreateCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.complianceSvc.AddCertification(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.Created(c, result)
}

// UpdateCertification 修改资质
// PUT /api/v1/compliance/certifications/:id
func (h *ComplianceHandler) UpdateCertification(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateCertificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, changes, err := h.complianceSvc.UpdateCertification(c.Request.Context(), actor, c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.OK(c, result)
}

// UploadProof 上传资质证明（multipart: file + accept）
// POST /api/v1/compliance/certifications/:id/proof
func (h *ComplianceHandler) UploadProof(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	fh, err := c.FormFile(proofFormField)
	if err != nil {
		bindFailed(c, err)
		return
	}

	accept := false
	if v := c.PostForm("accept"); v != "" {
		accept, err = strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, response.CodeValidation, "accept 参数无效")
			return
		}
	}

	f, err := fh.Open()
	if err != nil {
		bindFailed(c, err)
		return
	}
	defer f.Close()

	result, changes, err := h.complianceSvc.UploadProof(c.Request.Context(), actor, c.Param("id"), service.ProofUpload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
		Accept:      accept,
	})
	if err != nil {
		handleError(c, err)
		return
	}

	h.views.commit(c, actor.CompanyID, changes)
	response.Created(c, result)
}

// ── 公开核验 ──

// Verify 扫码核验员工资质（无需登录）
// GET /api/v1/verify/:token
func (h *ComplianceHandler) Verify(c *gin.Context) {
	result, err := h.complianceSvc.Verify(c.Request.Context(), c.Param("token"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	response.OK(c, result)
}
