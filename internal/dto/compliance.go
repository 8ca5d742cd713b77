package dto

import (
	"time"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
)

// ── 合规模块 DTO ──

// CreateEmployeeRequest 新建现场员工
type CreateEmployeeRequest struct {
	Name  string `json:"name"  binding:"required,max=100"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,max=40"`
	Title string `json:"title" binding:"omitempty,max=100"`
}

// UpdateEmployeeRequest 修改员工信息
type UpdateEmployeeRequest struct {
	Name     *string `json:"name"      binding:"omitempty,min=1,max=100"`
	Email    *string `json:"email"     binding:"omitempty,email"`
	Phone    *string `json:"phone"     binding:"omitempty,max=40"`
	Title    *string `json:"title"     binding:"omitempty,max=100"`
	IsActive *bool   `json:"is_active"`
}

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	PaginationRequest
	Status     string `form:"status"      binding:"omitempty,oneof=PASS FAIL INCOMPLETE"`
	Keyword    string `form:"keyword"     binding:"omitempty,max=100"`
	ActiveOnly bool   `form:"active_only"`
}

// CreateCertificationRequest 新增资质
type CreateCertificationRequest struct {
	Name      string     `json:"name"       binding:"required,max=150"`
	Required  *bool      `json:"required"`
	Status    string     `json:"status"     binding:"omitempty,oneof=PASS FAIL INCOMPLETE EXPIRED"`
	IssuedAt  *time.Time `json:"issued_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	Notes     string     `json:"notes"      binding:"omitempty,max=500"`
}

// UpdateCertificationRequest 修改资质状态 / 有效期 / 是否必需
type UpdateCertificationRequest struct {
	Status      *string    `json:"status"       binding:"omitempty,oneof=PASS FAIL INCOMPLETE EXPIRED"`
	Required    *bool      `json:"required"`
	ExpiresAt   *time.Time `json:"expires_at"`
	ClearExpiry bool       `json:"clear_expiry"`
	Notes       *string    `json:"notes"        binding:"omitempty,max=500"`
}

// ── 合规模块响应 ──

// EmployeeResponse 员工信息
type EmployeeResponse struct {
	ID               string                  `json:"id"`
	Name             string                  `json:"name"`
	Email            string                  `json:"email,omitempty"`
	Phone            string                  `json:"phone,omitempty"`
	Title            string                  `json:"title,omitempty"`
	IsActive         bool                    `json:"is_active"`
	ComplianceStatus string                  `json:"compliance_status"`
	LastEvaluatedAt  *time.Time              `json:"last_evaluated_at,omitempty"`
	VerifyURL        string                  `json:"verify_url,omitempty"`
	Certifications   []CertificationResponse `json:"certifications,omitempty"`
}

// CertificationResponse 资质信息
type CertificationResponse struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	Name            string     `json:"name"`
	Required        bool       `json:"required"`
	Status          string     `json:"status"`
	EffectiveStatus string     `json:"effective_status"`
	IssuedAt        *time.Time `json:"issued_at,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	HasProof        bool       `json:"has_proof"`
	Notes           string     `json:"notes,omitempty"`
}

// DocumentResponse 证明文件
type DocumentResponse struct {
	ID              string    `json:"id"`
	EmployeeID      string    `json:"employee_id"`
	CertificationID *string   `json:"certification_id,omitempty"`
	FileName        string    `json:"file_name"`
	ContentType     string    `json:"content_type"`
	Hash            string    `json:"hash"`
	SizeBytes       int64     `json:"size_bytes"`
	CreatedAt       time.Time `json:"created_at"`
}

// UploadProofResponse 上传证明结果
type UploadProofResponse struct {
	Document      DocumentResponse      `json:"document"`
	Certification CertificationResponse `json:"certification"`
	Snapshot      compliance.Snapshot   `json:"snapshot"`
}

// SnapshotResponse 员工合规快照
type SnapshotResponse struct {
	EmployeeID string              `json:"employee_id"`
	Name       string              `json:"name"`
	Snapshot   compliance.Snapshot `json:"snapshot"`
}

// VerifyResponse 公开二维码核验结果（仅暴露必要信息）
type VerifyResponse struct {
	Name     string              `json:"name"`
	Title    string              `json:"title,omitempty"`
	Active   bool                `json:"active"`
	Snapshot compliance.Snapshot `json:"snapshot"`
}

// RecomputeResult 批量重算结果
type RecomputeResult struct {
	Employees int `json:"employees"`
	Changed   int `json:"changed"`
}
