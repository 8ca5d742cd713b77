package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
)

// AssetRepository 设备数据访问接口
type AssetRepository interface {
	Create(ctx context.Context, asset *model.Asset) error
	GetByID(ctx context.Context, companyID, id string) (*model.Asset, error)
	List(ctx context.Context, companyID string, activeOnly bool) ([]model.Asset, error)
	Update(ctx context.Context, asset *model.Asset) error
}

type assetRepo struct {
	db *gorm.DB
}

// NewAssetRepo 创建 AssetRepository 实例
func NewAssetRepo(db *gorm.DB) AssetRepository {
	return &assetRepo{db: db}
}

func (r *assetRepo) Create(ctx context.Context, asset *model.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *assetRepo) GetByID(ctx context.Context, companyID, id string) (*model.Asset, error) {
	var asset model.Asset
	err := r.db.WithContext(ctx).
		Where("asset_id = ? AND company_id = ?", id, companyID).
		First(&asset).Error
	if err != nil {
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepo) List(ctx context.Context, companyID string, activeOnly bool) ([]model.Asset, error) {
	var list []model.Asset
	db := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *assetRepo) Update(ctx context.Context, asset *model.Asset) error {
	return r.db.WithContext(ctx).Save(asset).Error
}

// PresetRepository 作业预设数据访问接口
type PresetRepository interface {
	Create(ctx context.Context, preset *model.TaskPreset) error
	GetByID(ctx context.Context, companyID, id string) (*model.TaskPreset, error)
	List(ctx context.Context, companyID string, activeOnly bool) ([]model.TaskPreset, error)
	Update(ctx context.Context, preset *model.TaskPreset) error
}

type presetRepo struct {
	db *gorm.DB
}

// NewPresetRepo 创建 PresetRepository 实例
func NewPresetRepo(db *gorm.DB) PresetRepository {
	return &presetRepo{db: db}
}

func (r *presetRepo) Create(ctx context.Context, preset *model.TaskPreset) error {
	return r.db.WithContext(ctx).Create(preset).Error
}

func (r *presetRepo) GetByID(ctx context.Context, companyID, id string) (*model.TaskPreset, error) {
	var preset model.TaskPreset
	err := r.db.WithContext(ctx).
		Where("preset_id = ? AND company_id = ?", id, companyID).
		First(&preset).Error
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func (r *presetRepo) List(ctx context.Context, companyID string, activeOnly bool) ([]model.TaskPreset, error) {
	var list []model.TaskPreset
	db := r.db.WithContext(ctx).Where("company_id = ?", companyID)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *presetRepo) Update(ctx context.Context, preset *model.TaskPreset) error {
	return r.db.WithContext(ctx).Save(preset).Error
}
