package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// WorkOrderFilter 工单列表过滤条件
type WorkOrderFilter struct {
	Status  workorder.Status
	Keyword string
	From    *time.Time // scheduled_for >= From
	To      *time.Time // scheduled_for < To
}

// WorkOrderRepository 工单数据访问接口（所有查询按 company_id 隔离）
type WorkOrderRepository interface {
	Create(ctx context.Context, wo *model.WorkOrder) error
	GetByID(ctx context.Context, companyID, id string) (*model.WorkOrder, error)
	// GetForUpdate 事务内读取并加行锁
	GetForUpdate(ctx context.Context, companyID, id string) (*model.WorkOrder, error)
	List(ctx context.Context, companyID string, filter WorkOrderFilter, offset, limit int) ([]model.WorkOrder, int64, error)
	ListScheduled(ctx context.Context, companyID string, from, to time.Time) ([]model.WorkOrder, error)
	// Update 基于 version 的 CAS 更新，冲突时返回 ErrOptimisticLock
	Update(ctx context.Context, wo *model.WorkOrder) error
}

type workOrderRepo struct {
	db *gorm.DB
}

// NewWorkOrderRepo 创建 WorkOrderRepository 实例
func NewWorkOrderRepo(db *gorm.DB) WorkOrderRepository {
	return &workOrderRepo{db: db}
}

func (r *workOrderRepo) Create(ctx context.Context, wo *model.WorkOrder) error {
	return r.db.WithContext(ctx).Create(wo).Error
}

func (r *workOrderRepo) GetByID(ctx context.Context, companyID, id string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := r.db.WithContext(ctx).
		Preload("Contact").
		Where("work_order_id = ? AND company_id = ?", id, companyID).
		First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *workOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("work_order_id = ? AND company_id = ?", id, companyID).
		First(&wo).Error
	if err != nil {
		return nil, err
	}
	return &wo, nil
}

func (r *workOrderRepo) List(ctx context.Context, companyID string, filter WorkOrderFilter, offset, limit int) ([]model.WorkOrder, int64, error) {
	var list []model.WorkOrder
	var total int64

	db := r.db.WithContext(ctx).Model(&model.WorkOrder{}).Where("company_id = ?", companyID)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("(title ILIKE ? OR number ILIKE ? OR site_address ILIKE ?)", like, like, like)
	}
	if filter.From != nil {
		db = db.Where("scheduled_for >= ?", *filter.From)
	}
	if filter.To != nil {
		db = db.Where("scheduled_for < ?", *filter.To)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

func (r *workOrderRepo) ListScheduled(ctx context.Context, companyID string, from, to time.Time) ([]model.WorkOrder, error) {
	var list []model.WorkOrder
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND scheduled_for >= ? AND scheduled_for < ?", companyID, from, to).
		Where("status IN ?", []workorder.Status{workorder.StatusScheduled, workorder.StatusInProgress}).
		Order("scheduled_for ASC").
		Find(&list).Error
	return list, err
}

func (r *workOrderRepo) Update(ctx context.Context, wo *model.WorkOrder) error {
	oldVersion := wo.Version
	result := r.db.WithContext(ctx).
		Model(&model.WorkOrder{}).
		Where("work_order_id = ? AND company_id = ? AND version = ?", wo.WorkOrderID, wo.CompanyID, oldVersion).
		Updates(map[string]interface{}{
			"title":              wo.Title,
			"description":        wo.Description,
			"notes":              wo.Notes,
			"site_address":       wo.SiteAddress,
			"contact_id":         wo.ContactID,
			"scheduled_for":      wo.ScheduledFor,
			"duration_minutes":   wo.DurationMinutes,
			"status":             wo.Status,
			"scheduled_at":       wo.ScheduledAt,
			"started_at":         wo.StartedAt,
			"completed_at":       wo.CompletedAt,
			"cancelled_at":       wo.CancelledAt,
			"closed_at":          wo.ClosedAt,
			"compliance_blocked": wo.ComplianceBlocked,
			"override_approved":  wo.OverrideApproved,
			"updated_by":         wo.UpdatedBy,
			"updated_at":         gorm.Expr("NOW()"),
			"version":            oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	wo.Version = oldVersion + 1
	return nil
}
