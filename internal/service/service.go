package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/jwt"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/storage"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	WorkOrder  WorkOrderService
	Compliance ComplianceService
	Estimate   EstimateService
	Contact    ContactService
	Catalog    CatalogService
	Export     ExportService
}

// Deps 构造 Service 所需的外部协作者；Tokens / Notifier 可为 nil
type Deps struct {
	Config   *config.Config
	Repo     *repository.Repository
	JWT      *jwt.Manager
	Tokens   TokenBlacklist
	Store    storage.Store
	Notifier Notifier
	Logger   *zap.Logger
}

// NewService 创建 Service 聚合
func NewService(d Deps) *Service {
	return &Service{
		Auth:       NewAuthService(d.Config, d.Repo, d.JWT, d.Tokens, d.Logger),
		WorkOrder:  NewWorkOrderService(d.Config, d.Repo, d.Notifier, d.Logger),
		Compliance: NewComplianceService(d.Config, d.Repo, d.Store, d.Logger),
		Estimate:   NewEstimateService(d.Repo, d.Logger),
		Contact:    NewContactService(d.Repo, d.Logger),
		Catalog:    NewCatalogService(d.Repo, d.Logger),
		Export:     NewExportService(d.Config, d.Repo, d.Logger),
	}
}

// utcNow 所有写入数据库的时间统一为 UTC
func utcNow() time.Time {
	return time.Now().UTC()
}
