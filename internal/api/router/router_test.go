package router

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/api/handler"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/jwt"
)

type stubCompliance struct {
	service.ComplianceService
}

func (stubCompliance) Verify(_ context.Context, token string) (*dto.VerifyResponse, error) {
	return &dto.VerifyResponse{Name: token, Active: true}, nil
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(context.Context) error { return p.err }

func newTestEngine(t *testing.T, db Pinger) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.Server.MaxBodyBytes = 1 << 20
	cfg.Server.CORS.AllowOrigins = []string{"https://app.example.com"}

	jwtMgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "router-test-secret-0123456789abcdef",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	h := handler.NewHandler(&service.Service{Compliance: stubCompliance{}}, nil, 0)
	return Setup(cfg, h, jwtMgr, nil, db, zap.NewNop())
}

func TestSetup_Routes(t *testing.T) {
	engine := newTestEngine(t, stubPinger{})

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"健康检查", http.MethodGet, "/health", http.StatusOK},
		{"公开核验无需登录", http.MethodGet, "/api/v1/verify/tok-1", http.StatusOK},
		{"工单列表需要登录", http.MethodGet, "/api/v1/work-orders", http.StatusUnauthorized},
		{"日历需要登录", http.MethodGet, "/api/v1/work-orders/calendar.ics", http.StatusUnauthorized},
		{"派工需要登录", http.MethodPost, "/api/v1/work-orders/wo-1/assignments", http.StatusUnauthorized},
		{"撤销派工需要登录", http.MethodDelete, "/api/v1/work-orders/assignments/a-1", http.StatusUnauthorized},
		{"资质证明需要登录", http.MethodPost, "/api/v1/compliance/certifications/c-1/proof", http.StatusUnauthorized},
		{"报价审批需要登录", http.MethodPost, "/api/v1/estimates/e-1/approve", http.StatusUnauthorized},
		{"未注册路由", http.MethodGet, "/api/v1/schedules", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("%s %s 期望 %d，实际=%d", tt.method, tt.path, tt.wantStatus, w.Code)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("每个响应都应带 X-Request-ID")
			}
		})
	}
}

func TestSetup_HealthDegraded(t *testing.T) {
	engine := newTestEngine(t, stubPinger{err: errors.New("dial tcp: connection refused")})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("数据库不可用时期望 503，实际=%d", w.Code)
	}
}
