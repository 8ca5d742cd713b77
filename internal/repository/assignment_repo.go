package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
)

// AssignmentRepository 工单派工数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, a *model.WorkOrderAssignment) error
	GetByID(ctx context.Context, id string) (*model.WorkOrderAssignment, error)
	// GetActive 查询 (工单, 员工) 的有效派工，不存在时返回 gorm.ErrRecordNotFound
	GetActive(ctx context.Context, workOrderID, employeeID string) (*model.WorkOrderAssignment, error)
	ListActive(ctx context.Context, workOrderID string) ([]model.WorkOrderAssignment, error)
	Update(ctx context.Context, a *model.WorkOrderAssignment) error
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, a *model.WorkOrderAssignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.WorkOrderAssignment, error) {
	var a model.WorkOrderAssignment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) GetActive(ctx context.Context, workOrderID, employeeID string) (*model.WorkOrderAssignment, error) {
	var a model.WorkOrderAssignment
	err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND employee_id = ? AND unassigned_at IS NULL", workOrderID, employeeID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListActive(ctx context.Context, workOrderID string) ([]model.WorkOrderAssignment, error) {
	var list []model.WorkOrderAssignment
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("work_order_id = ? AND unassigned_at IS NULL", workOrderID).
		Order("assigned_at ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) Update(ctx context.Context, a *model.WorkOrderAssignment) error {
	return r.db.WithContext(ctx).
		Model(&model.WorkOrderAssignment{}).
		Where("assignment_id = ?", a.AssignmentID).
		Updates(map[string]interface{}{
			"role":          a.Role,
			"unassigned_at": a.UnassignedAt,
			"unassigned_by": a.UnassignedBy,
			"updated_by":    a.UpdatedBy,
		}).Error
}

// WorkOrderAssetRepository 工单设备派用数据访问接口
type WorkOrderAssetRepository interface {
	Create(ctx context.Context, wa *model.WorkOrderAsset) error
	GetByID(ctx context.Context, id string) (*model.WorkOrderAsset, error)
	GetActive(ctx context.Context, workOrderID, assetID string) (*model.WorkOrderAsset, error)
	ListActive(ctx context.Context, workOrderID string) ([]model.WorkOrderAsset, error)
	Update(ctx context.Context, wa *model.WorkOrderAsset) error
}

type workOrderAssetRepo struct {
	db *gorm.DB
}

// NewWorkOrderAssetRepo 创建 WorkOrderAssetRepository 实例
func NewWorkOrderAssetRepo(db *gorm.DB) WorkOrderAssetRepository {
	return &workOrderAssetRepo{db: db}
}

func (r *workOrderAssetRepo) Create(ctx context.Context, wa *model.WorkOrderAsset) error {
	return r.db.WithContext(ctx).Create(wa).Error
}

func (r *workOrderAssetRepo) GetByID(ctx context.Context, id string) (*model.WorkOrderAsset, error) {
	var wa model.WorkOrderAsset
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("work_order_asset_id = ?", id).
		First(&wa).Error
	if err != nil {
		return nil, err
	}
	return &wa, nil
}

func (r *workOrderAssetRepo) GetActive(ctx context.Context, workOrderID, assetID string) (*model.WorkOrderAsset, error) {
	var wa model.WorkOrderAsset
	err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND asset_id = ? AND unassigned_at IS NULL", workOrderID, assetID).
		First(&wa).Error
	if err != nil {
		return nil, err
	}
	return &wa, nil
}

func (r *workOrderAssetRepo) ListActive(ctx context.Context, workOrderID string) ([]model.WorkOrderAsset, error) {
	var list []model.WorkOrderAsset
	err := r.db.WithContext(ctx).
		Preload("Asset").
		Where("work_order_id = ? AND unassigned_at IS NULL", workOrderID).
		Order("assigned_at ASC").
		Find(&list).Error
	return list, err
}

func (r *workOrderAssetRepo) Update(ctx context.Context, wa *model.WorkOrderAsset) error {
	return r.db.WithContext(ctx).
		Model(&model.WorkOrderAsset{}).
		Where("work_order_asset_id = ?", wa.WorkOrderAssetID).
		Updates(map[string]interface{}{
			"unassigned_at": wa.UnassignedAt,
			"unassigned_by": wa.UnassignedBy,
		}).Error
}

// WorkOrderPresetRepository 工单作业预设数据访问接口
type WorkOrderPresetRepository interface {
	Create(ctx context.Context, wp *model.WorkOrderPreset) error
	Get(ctx context.Context, workOrderID, presetID string) (*model.WorkOrderPreset, error)
	Delete(ctx context.Context, workOrderID, presetID string) error
	List(ctx context.Context, workOrderID string) ([]model.WorkOrderPreset, error)
}

type workOrderPresetRepo struct {
	db *gorm.DB
}

// NewWorkOrderPresetRepo 创建 WorkOrderPresetRepository 实例
func NewWorkOrderPresetRepo(db *gorm.DB) WorkOrderPresetRepository {
	return &workOrderPresetRepo{db: db}
}

func (r *workOrderPresetRepo) Create(ctx context.Context, wp *model.WorkOrderPreset) error {
	return r.db.WithContext(ctx).Create(wp).Error
}

func (r *workOrderPresetRepo) Get(ctx context.Context, workOrderID, presetID string) (*model.WorkOrderPreset, error) {
	var wp model.WorkOrderPreset
	err := r.db.WithContext(ctx).
		Where("work_order_id = ? AND preset_id = ?", workOrderID, presetID).
		First(&wp).Error
	if err != nil {
		return nil, err
	}
	return &wp, nil
}

func (r *workOrderPresetRepo) Delete(ctx context.Context, workOrderID, presetID string) error {
	return r.db.WithContext(ctx).
		Where("work_order_id = ? AND preset_id = ?", workOrderID, presetID).
		Delete(&model.WorkOrderPreset{}).Error
}

func (r *workOrderPresetRepo) List(ctx context.Context, workOrderID string) ([]model.WorkOrderPreset, error) {
	var list []model.WorkOrderPreset
	err := r.db.WithContext(ctx).
		Preload("Preset").
		Where("work_order_id = ?", workOrderID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
