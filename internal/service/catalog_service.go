package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// CatalogService 设备与作业预设目录
type CatalogService interface {
	CreateAsset(ctx context.Context, actor authctx.Actor, req *dto.CreateAssetRequest) (*dto.AssetResponse, error)
	ListAssets(ctx context.Context, actor authctx.Actor, activeOnly bool) ([]dto.AssetResponse, error)
	UpdateAsset(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdateAssetRequest) (*dto.AssetResponse, error)

	CreatePreset(ctx context.Context, actor authctx.Actor, req *dto.CreatePresetRequest) (*dto.PresetResponse, error)
	ListPresets(ctx context.Context, actor authctx.Actor, activeOnly bool) ([]dto.PresetResponse, error)
	UpdatePreset(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdatePresetRequest) (*dto.PresetResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger, now: utcNow}
}

// ── 设备 ──

func (s *catalogService) CreateAsset(ctx context.Context, actor authctx.Actor, req *dto.CreateAssetRequest) (*dto.AssetResponse, error) {
	if err := authctx.Require(actor.CanManageCatalog()); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.Invalid("name", "名称不能为空")
	}
	switch req.AssetType {
	case "vehicle", "equipment", "tool":
	default:
		return nil, pkgerrors.Invalid("asset_type", "设备类型无效")
	}

	now := s.now()
	a := &model.Asset{
		AssetID:      uuid.NewString(),
		CompanyID:    actor.CompanyID,
		Name:         name,
		AssetType:    req.AssetType,
		SerialNumber: strings.TrimSpace(req.SerialNumber),
		IsActive:     true,
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	a.CreatedBy = model.StrPtr(actor.UserID)

	if err := s.repo.Asset.Create(ctx, a); err != nil {
		s.logger.Error("创建设备失败", zap.Error(err))
		return nil, err
	}
	return toAssetResponse(a), nil
}

func (s *catalogService) ListAssets(ctx context.Context, actor authctx.Actor, activeOnly bool) ([]dto.AssetResponse, error) {
	list, err := s.repo.Asset.List(ctx, actor.CompanyID, activeOnly)
	if err != nil {
		s.logger.Error("列出设备失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.AssetResponse, 0, len(list))
	for i := range list {
		result = append(result, *toAssetResponse(&list[i]))
	}
	return result, nil
}

func (s *catalogService) UpdateAsset(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdateAssetRequest) (*dto.AssetResponse, error) {
	if err := authctx.Require(actor.CanManageCatalog()); err != nil {
		return nil, err
	}
	a, err := s.repo.Asset.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "asset", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.Invalid("name", "名称不能为空")
		}
		a.Name = name
	}
	if req.SerialNumber != nil {
		a.SerialNumber = strings.TrimSpace(*req.SerialNumber)
	}
	if req.IsActive != nil {
		a.IsActive = *req.IsActive
	}
	a.UpdatedAt = s.now()
	a.UpdatedBy = model.StrPtr(actor.UserID)

	if err := s.repo.Asset.Update(ctx, a); err != nil {
		s.logger.Error("修改设备失败", zap.String("asset_id", id), zap.Error(err))
		return nil, err
	}
	return toAssetResponse(a), nil
}

// ── 作业预设 ──

func (s *catalogService) CreatePreset(ctx context.Context, actor authctx.Actor, req *dto.CreatePresetRequest) (*dto.PresetResponse, error) {
	if err := authctx.Require(actor.CanManageCatalog()); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.Invalid("name", "名称不能为空")
	}

	now := s.now()
	p := &model.TaskPreset{
		PresetID:    uuid.NewString(),
		CompanyID:   actor.CompanyID,
		Name:        name,
		Description: req.Description,
		IsActive:    true,
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	p.CreatedBy = model.StrPtr(actor.UserID)

	if err := s.repo.Preset.Create(ctx, p); err != nil {
		s.logger.Error("创建作业预设失败", zap.Error(err))
		return nil, err
	}
	return toPresetResponse(p), nil
}

func (s *catalogService) ListPresets(ctx context.Context, actor authctx.Actor, activeOnly bool) ([]dto.PresetResponse, error) {
	list, err := s.repo.Preset.List(ctx, actor.CompanyID, activeOnly)
	if err != nil {
		s.logger.Error("列出作业预设失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.PresetResponse, 0, len(list))
	for i := range list {
		result = append(result, *toPresetResponse(&list[i]))
	}
	return result, nil
}

func (s *catalogService) UpdatePreset(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdatePresetRequest) (*dto.PresetResponse, error) {
	if err := authctx.Require(actor.CanManageCatalog()); err != nil {
		return nil, err
	}
	p, err := s.repo.Preset.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "preset", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.Invalid("name", "名称不能为空")
		}
		p.Name = name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	p.UpdatedAt = s.now()
	p.UpdatedBy = model.StrPtr(actor.UserID)

	if err := s.repo.Preset.Update(ctx, p); err != nil {
		s.logger.Error("修改作业预设失败", zap.String("preset_id", id), zap.Error(err))
		return nil, err
	}
	return toPresetResponse(p), nil
}
