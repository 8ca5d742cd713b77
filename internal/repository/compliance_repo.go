package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
)

// EmployeeFilter 员工列表过滤条件
type EmployeeFilter struct {
	Status     compliance.Status
	ActiveOnly bool
	Keyword    string
}

// EmployeeRepository 合规员工数据访问接口（按 company_id 隔离）
type EmployeeRepository interface {
	Create(ctx context.Context, emp *model.ComplianceEmployee) error
	// GetByID 连同资质一起加载
	GetByID(ctx context.Context, companyID, id string) (*model.ComplianceEmployee, error)
	// GetByVerifyToken 公开二维码核验使用，不做租户过滤
	GetByVerifyToken(ctx context.Context, token string) (*model.ComplianceEmployee, error)
	List(ctx context.Context, companyID string, filter EmployeeFilter, offset, limit int) ([]model.ComplianceEmployee, int64, error)
	ListWithCertifications(ctx context.Context, companyID string) ([]model.ComplianceEmployee, error)
	Update(ctx context.Context, emp *model.ComplianceEmployee) error
}

type employeeRepo struct {
	db *gorm.DB
}

// NewEmployeeRepo 创建 EmployeeRepository 实例
func NewEmployeeRepo(db *gorm.DB) EmployeeRepository {
	return &employeeRepo{db: db}
}

func preloadCertifications(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

func (r *employeeRepo) Create(ctx context.Context, emp *model.ComplianceEmployee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}

func (r *employeeRepo) GetByID(ctx context.Context, companyID, id string) (*model.ComplianceEmployee, error) {
	var emp model.ComplianceEmployee
	err := r.db.WithContext(ctx).
		Preload("Certifications", preloadCertifications).
		Where("employee_id = ? AND company_id = ?", id, companyID).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) GetByVerifyToken(ctx context.Context, token string) (*model.ComplianceEmployee, error) {
	var emp model.ComplianceEmployee
	err := r.db.WithContext(ctx).
		Preload("Certifications", preloadCertifications).
		Where("verify_token = ?", token).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *employeeRepo) List(ctx context.Context, companyID string, filter EmployeeFilter, offset, limit int) ([]model.ComplianceEmployee, int64, error) {
	var list []model.ComplianceEmployee
	var total int64

	db := r.db.WithContext(ctx).Model(&model.ComplianceEmployee{}).Where("company_id = ?", companyID)
	if filter.Status != "" {
		db = db.Where("compliance_status = ?", filter.Status)
	}
	if filter.ActiveOnly {
		db = db.Where("is_active = ?", true)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("(name ILIKE ? OR email ILIKE ?)", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *employeeRepo) ListWithCertifications(ctx context.Context, companyID string) ([]model.ComplianceEmployee, error) {
	var list []model.ComplianceEmployee
	err := r.db.WithContext(ctx).
		Preload("Certifications", preloadCertifications).
		Where("company_id = ?", companyID).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

func (r *employeeRepo) Update(ctx context.Context, emp *model.ComplianceEmployee) error {
	return r.db.WithContext(ctx).
		Model(&model.ComplianceEmployee{}).
		Where("employee_id = ? AND company_id = ?", emp.EmployeeID, emp.CompanyID).
		Updates(map[string]interface{}{
			"name":              emp.Name,
			"email":             emp.Email,
			"phone":             emp.Phone,
			"title":             emp.Title,
			"is_active":         emp.IsActive,
			"compliance_status": emp.ComplianceStatus,
			"last_evaluated_at": emp.LastEvaluatedAt,
			"updated_by":        emp.UpdatedBy,
		}).Error
}

// CertificationRepository 员工资质数据访问接口
type CertificationRepository interface {
	Create(ctx context.Context, cert *model.ComplianceCertification) error
	GetByID(ctx context.Context, id string) (*model.ComplianceCertification, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]model.ComplianceCertification, error)
	Update(ctx context.Context, cert *model.ComplianceCertification) error
}

type certificationRepo struct {
	db *gorm.DB
}

// NewCertificationRepo 创建 CertificationRepository 实例
func NewCertificationRepo(db *gorm.DB) CertificationRepository {
	return &certificationRepo{db: db}
}

func (r *certificationRepo) Create(ctx context.Context, cert *model.ComplianceCertification) error {
	return r.db.WithContext(ctx).Create(cert).Error
}

func (r *certificationRepo) GetByID(ctx context.Context, id string) (*model.ComplianceCertification, error) {
	var cert model.ComplianceCertification
	err := r.db.WithContext(ctx).
		Where("certification_id = ?", id).
		First(&cert).Error
	if err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificationRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.ComplianceCertification, error) {
	var list []model.ComplianceCertification
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

func (r *certificationRepo) Update(ctx context.Context, cert *model.ComplianceCertification) error {
	return r.db.WithContext(ctx).Save(cert).Error
}

// DocumentRepository 资质证明文件数据访问接口
type DocumentRepository interface {
	Create(ctx context.Context, doc *model.ComplianceDocument) error
	ListByEmployee(ctx context.Context, employeeID string) ([]model.ComplianceDocument, error)
}

type documentRepo struct {
	db *gorm.DB
}

// NewDocumentRepo 创建 DocumentRepository 实例
func NewDocumentRepo(db *gorm.DB) DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *model.ComplianceDocument) error {
	return r.db.WithContext(ctx).Create(doc).Error
}

func (r *documentRepo) ListByEmployee(ctx context.Context, employeeID string) ([]model.ComplianceDocument, error) {
	var list []model.ComplianceDocument
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&list).Error
	return list, err
}
