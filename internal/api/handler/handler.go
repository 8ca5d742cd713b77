package handler

import (
	"context"
	"time"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
)

// ViewCache 读视图缓存（Redis 实现见 pkg/redis）；为 nil 时不缓存
type ViewCache interface {
	GetView(ctx context.Context, key string) ([]byte, bool, error)
	SetView(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeleteViews(ctx context.Context, keys ...string) error
}

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth       *AuthHandler
	WorkOrder  *WorkOrderHandler
	Compliance *ComplianceHandler
	Estimate   *EstimateHandler
	Contact    *ContactHandler
	Catalog    *CatalogHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, cache ViewCache, viewTTL time.Duration) *Handler {
	views := newViewStore(cache, viewTTL)
	return &Handler{
		Auth:       NewAuthHandler(svc.Auth),
		WorkOrder:  NewWorkOrderHandler(svc.WorkOrder, views),
		Compliance: NewComplianceHandler(svc.Compliance, views),
		Estimate:   NewEstimateHandler(svc.Estimate, views),
		Contact:    NewContactHandler(svc.Contact),
		Catalog:    NewCatalogHandler(svc.Catalog),
		Export:     NewExportHandler(svc.Export),
	}
}
