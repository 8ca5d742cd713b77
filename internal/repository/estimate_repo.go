package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// EstimateRepository 报价单数据访问接口
type EstimateRepository interface {
	Create(ctx context.Context, est *model.Estimate) error
	// GetByID 连同修订历史（按修订号升序）一起加载
	GetByID(ctx context.Context, companyID, id string) (*model.Estimate, error)
	List(ctx context.Context, companyID, status string, offset, limit int) ([]model.Estimate, int64, error)
	// Update 基于 version 的 CAS 更新
	Update(ctx context.Context, est *model.Estimate) error
	CreateRevision(ctx context.Context, rev *model.EstimateRevision) error
}

type estimateRepo struct {
	db *gorm.DB
}

// NewEstimateRepo 创建 EstimateRepository 实例
func NewEstimateRepo(db *gorm.DB) EstimateRepository {
	return &estimateRepo{db: db}
}

func (r *estimateRepo) Create(ctx context.Context, est *model.Estimate) error {
	return r.db.WithContext(ctx).Omit("Revisions").Create(est).Error
}

func (r *estimateRepo) GetByID(ctx context.Context, companyID, id string) (*model.Estimate, error) {
	var est model.Estimate
	err := r.db.WithContext(ctx).
		Preload("Revisions", func(db *gorm.DB) *gorm.DB {
			return db.Order("revision_number ASC")
		}).
		Where("estimate_id = ? AND company_id = ?", id, companyID).
		First(&est).Error
	if err != nil {
		return nil, err
	}
	return &est, nil
}

func (r *estimateRepo) List(ctx context.Context, companyID, status string, offset, limit int) ([]model.Estimate, int64, error) {
	var list []model.Estimate
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Estimate{}).Where("company_id = ?", companyID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
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

func (r *estimateRepo) Update(ctx context.Context, est *model.Estimate) error {
	oldVersion := est.Version
	result := r.db.WithContext(ctx).
		Model(&model.Estimate{}).
		Where("estimate_id = ? AND company_id = ? AND version = ?", est.EstimateID, est.CompanyID, oldVersion).
		Updates(map[string]interface{}{
			"contact_id":       est.ContactID,
			"title":            est.Title,
			"site_address":     est.SiteAddress,
			"status":           est.Status,
			"current_revision": est.CurrentRevision,
			"locked":           est.Locked,
			"sent_at":          est.SentAt,
			"approved_at":      est.ApprovedAt,
			"approved_by":      est.ApprovedBy,
			"declined_at":      est.DeclinedAt,
			"work_order_id":    est.WorkOrderID,
			"updated_by":       est.UpdatedBy,
			"updated_at":       gorm.Expr("NOW()"),
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	est.Version = oldVersion + 1
	return nil
}

func (r *estimateRepo) CreateRevision(ctx context.Context, rev *model.EstimateRevision) error {
	return r.db.WithContext(ctx).Create(rev).Error
}
