package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/api/handler"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/api/middleware"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/jwt"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/redis"
)

// 登录 / 刷新接口的限流窗口
const (
	authRateLimit  = 10
	authRateWindow = time.Minute
	// 公开核验接口按 IP 限流，防止枚举令牌
	verifyRateLimit  = 60
	verifyRateWindow = time.Minute
)

// Pinger 健康检查探针
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时 Token 吊销检查与限流降级放行
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db Pinger, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	// 避免 nil *redis.Client 装入非 nil 接口
	var (
		blacklist middleware.TokenChecker
		limiter   middleware.RateLimiter
	)
	if rdb != nil {
		blacklist = rdb
		limiter = rdb
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "db": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	managers := []string{authctx.RoleOwner, authctx.RoleAdmin}

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(limiter, authRateLimit, authRateWindow), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(limiter, authRateLimit, authRateWindow), h.Auth.Refresh)
		}

		// 员工二维码公开核验
		v1.GET("/verify/:token", middleware.RateLimit(limiter, verifyRateLimit, verifyRateWindow), h.Compliance.Verify)

		// 需要认证的路由（细粒度角色权限在 Service 层判断）
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 工单模块
			workOrders := authorized.Group("/work-orders")
			{
				workOrders.GET("", h.WorkOrder.List)
				workOrders.POST("", h.WorkOrder.Create)
				workOrders.GET("/calendar.ics", h.Export.Calendar)
				workOrders.GET("/:id", h.WorkOrder.Get)
				workOrders.PUT("/:id/status", h.WorkOrder.Transition)
				workOrders.PUT("/:id/notes", h.WorkOrder.UpdateNotes)
				workOrders.GET("/:id/activity", h.WorkOrder.ListActivity)
				workOrders.GET("/:id/export", h.Export.WorkOrderSheet)

				// 派工
				workOrders.POST("/:id/assignments", h.WorkOrder.Assign)
				workOrders.PUT("/assignments/:id", h.WorkOrder.UpdateAssignment)
				workOrders.DELETE("/assignments/:id", h.WorkOrder.Unassign)

				// 设备
				workOrders.POST("/:id/assets", h.WorkOrder.AssignAsset)
				workOrders.DELETE("/assets/:id", h.WorkOrder.UnassignAsset)

				// 作业预设
				workOrders.POST("/:id/presets", h.WorkOrder.AddPreset)
				workOrders.DELETE("/:id/presets/:presetId", h.WorkOrder.RemovePreset)
			}

			// 合规模块
			compliance := authorized.Group("/compliance")
			{
				compliance.GET("/employees", h.Compliance.ListEmployees)
				compliance.POST("/employees", h.Compliance.CreateEmployee)
				compliance.GET("/employees/:id", h.Compliance.GetEmployee)
				compliance.PUT("/employees/:id", h.Compliance.UpdateEmployee)
				compliance.DELETE("/employees/:id", h.Compliance.DeactivateEmployee)
				compliance.GET("/employees/:id/snapshot", h.Compliance.Snapshot)
				compliance.GET("/employees/:id/documents", h.Compliance.ListDocuments)
				compliance.POST("/employees/:id/certifications", h.Compliance.AddCertification)

				compliance.PUT("/certifications/:id", h.Compliance.UpdateCertification)
				compliance.POST("/certifications/:id/proof", h.Compliance.UploadProof)

				compliance.GET("/roster/export", h.Export.ComplianceRoster)
			}

			// 报价模块
			estimates := authorized.Group("/estimates")
			{
				estimates.GET("", h.Estimate.List)
				estimates.POST("", h.Estimate.Create)
				estimates.GET("/:id", h.Estimate.Get)
				estimates.POST("/:id/revisions", h.Estimate.AddRevision)
				estimates.POST("/:id/send", h.Estimate.Send)
				estimates.POST("/:id/approve", middleware.RoleAuth(managers...), h.Estimate.Approve)
				estimates.POST("/:id/decline", h.Estimate.Decline)
				estimates.POST("/:id/convert", h.Estimate.Convert)
			}

			// CRM 联系人
			contacts := authorized.Group("/contacts")
			{
				contacts.GET("", h.Contact.List)
				contacts.POST("", h.Contact.Create)
				contacts.GET("/:id", h.Contact.Get)
				contacts.PUT("/:id", h.Contact.Update)
				contacts.DELETE("/:id", h.Contact.Delete)
			}

			// 设备与作业预设
			assets := authorized.Group("/assets")
			{
				assets.GET("", h.Catalog.ListAssets)
				assets.POST("", h.Catalog.CreateAsset)
				assets.PUT("/:id", h.Catalog.UpdateAsset)
			}
			presets := authorized.Group("/presets")
			{
				presets.GET("", h.Catalog.ListPresets)
				presets.POST("", h.Catalog.CreatePreset)
				presets.PUT("/:id", h.Catalog.UpdatePreset)
			}
		}
	}

	return r
}
