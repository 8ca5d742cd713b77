package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
)

// ActivityRepository 工单活动流水（只追加）
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.WorkOrderActivity) error
	ListByWorkOrder(ctx context.Context, workOrderID string, offset, limit int) ([]model.WorkOrderActivity, int64, error)
}

type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo 创建 ActivityRepository 实例
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.WorkOrderActivity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) ListByWorkOrder(ctx context.Context, workOrderID string, offset, limit int) ([]model.WorkOrderActivity, int64, error) {
	var list []model.WorkOrderActivity
	var total int64

	db := r.db.WithContext(ctx).Model(&model.WorkOrderActivity{}).Where("work_order_id = ?", workOrderID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// AuditLogRepository 访问审计日志（只追加）
type AuditLogRepository interface {
	Create(ctx context.Context, log *model.AccessAuditLog) error
	ListByEntity(ctx context.Context, companyID, entityType, entityID string, offset, limit int) ([]model.AccessAuditLog, int64, error)
}

type auditLogRepo struct {
	db *gorm.DB
}

// NewAuditLogRepo 创建 AuditLogRepository 实例
func NewAuditLogRepo(db *gorm.DB) AuditLogRepository {
	return &auditLogRepo{db: db}
}

func (r *auditLogRepo) Create(ctx context.Context, log *model.AccessAuditLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *auditLogRepo) ListByEntity(ctx context.Context, companyID, entityType, entityID string, offset, limit int) ([]model.AccessAuditLog, int64, error) {
	var list []model.AccessAuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&model.AccessAuditLog{}).
		Where("company_id = ? AND entity_type = ? AND entity_id = ?", companyID, entityType, entityID)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}
