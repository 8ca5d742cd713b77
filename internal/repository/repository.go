package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Tx Transactor

	Company         CompanyRepository
	User            UserRepository
	WorkOrder       WorkOrderRepository
	Assignment      AssignmentRepository
	WorkOrderAsset  WorkOrderAssetRepository
	WorkOrderPreset WorkOrderPresetRepository
	Activity        ActivityRepository
	AuditLog        AuditLogRepository
	Employee        EmployeeRepository
	Certification   CertificationRepository
	Document        DocumentRepository
	Asset           AssetRepository
	Preset          PresetRepository
	Contact         ContactRepository
	Estimate        EstimateRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Tx: &gormTransactor{db: db},

		Company:         NewCompanyRepo(db),
		User:            NewUserRepo(db),
		WorkOrder:       NewWorkOrderRepo(db),
		Assignment:      NewAssignmentRepo(db),
		WorkOrderAsset:  NewWorkOrderAssetRepo(db),
		WorkOrderPreset: NewWorkOrderPresetRepo(db),
		Activity:        NewActivityRepo(db),
		AuditLog:        NewAuditLogRepo(db),
		Employee:        NewEmployeeRepo(db),
		Certification:   NewCertificationRepo(db),
		Document:        NewDocumentRepo(db),
		Asset:           NewAssetRepo(db),
		Preset:          NewPresetRepo(db),
		Contact:         NewContactRepo(db),
		Estimate:        NewEstimateRepo(db),
	}
}

// ── 事务 ──

// Transactor 在单个数据库事务中执行 fn，fn 返回错误时整体回滚
// fn 收到的 Repository 绑定到该事务，所有写操作必须经由它完成
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo *Repository) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repo *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewRepository(tx))
	})
}
