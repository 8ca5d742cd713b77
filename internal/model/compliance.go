package model

import (
	"time"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
)

// ComplianceEmployee 现场员工（合规对象）— 对应 compliance_employees
// compliance_status 为派生缓存，资质变化时在同一事务内重算
type ComplianceEmployee struct {
	EmployeeID       string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"employee_id"`
	CompanyID        string            `gorm:"type:uuid;not null;index"                       json:"company_id"`
	Name             string            `gorm:"type:varchar(100);not null"                     json:"name"`
	Email            string            `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Phone            string            `gorm:"type:varchar(40)"                               json:"phone,omitempty"`
	Title            string            `gorm:"type:varchar(100)"                              json:"title,omitempty"`
	IsActive         bool              `gorm:"not null;default:true"                          json:"is_active"`
	ComplianceStatus compliance.Status `gorm:"type:varchar(20);not null;default:'PASS'"       json:"compliance_status"`
	VerifyToken      string            `gorm:"type:varchar(64);not null;uniqueIndex"          json:"-"`
	LastEvaluatedAt  *time.Time        `json:"last_evaluated_at,omitempty"`
	BaseModel

	Certifications []ComplianceCertification `gorm:"foreignKey:EmployeeID" json:"certifications,omitempty"`
}

// TableName 指定表名
func (ComplianceEmployee) TableName() string { return "compliance_employees" }

// ComplianceCertification 员工资质 — 对应 compliance_certifications
type ComplianceCertification struct {
	CertificationID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"certification_id"`
	EmployeeID      string            `gorm:"type:uuid;not null;index"                       json:"employee_id"`
	Name            string            `gorm:"type:varchar(150);not null"                     json:"name"`
	Required        bool              `gorm:"not null;default:true"                          json:"required"`
	Status          compliance.Status `gorm:"type:varchar(20);not null;default:'INCOMPLETE'" json:"status"`
	IssuedAt        *time.Time        `json:"issued_at,omitempty"`
	ExpiresAt       *time.Time        `json:"expires_at,omitempty"`
	ProofKey        string            `gorm:"type:varchar(255)"                              json:"proof_key,omitempty"`
	Notes           string            `gorm:"type:varchar(500)"                              json:"notes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (ComplianceCertification) TableName() string { return "compliance_certifications" }

// ToCore 转换为合规计算输入
func (c *ComplianceCertification) ToCore() compliance.Certification {
	return compliance.Certification{
		ID:        c.CertificationID,
		Name:      c.Name,
		Required:  c.Required,
		Status:    c.Status,
		ExpiresAt: c.ExpiresAt,
	}
}

// ComplianceDocument 资质证明文件 — 对应 compliance_documents
type ComplianceDocument struct {
	DocumentID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"document_id"`
	EmployeeID      string    `gorm:"type:uuid;not null;index"                       json:"employee_id"`
	CertificationID *string   `gorm:"type:uuid"                                      json:"certification_id,omitempty"`
	FileName        string    `gorm:"type:varchar(255);not null"                     json:"file_name"`
	ContentType     string    `gorm:"type:varchar(100);not null"                     json:"content_type"`
	StorageKey      string    `gorm:"type:varchar(255);not null"                     json:"storage_key"`
	Hash            string    `gorm:"type:varchar(64);not null"                      json:"hash"`
	SizeBytes       int64     `gorm:"not null"                                       json:"size_bytes"`
	UploadedBy      string    `gorm:"type:uuid;not null"                             json:"uploaded_by"`
	CreatedAt       time.Time `gorm:"not null"                                       json:"created_at"`
}

// TableName 指定表名
func (ComplianceDocument) TableName() string { return "compliance_documents" }
