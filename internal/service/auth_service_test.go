package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/jwt"
)

// ── 测试辅助 ──

type authFixture struct {
	env    *testEnv
	jwtMgr *jwt.Manager
	tokens *mockTokenBlacklist
	svc    AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	env := newTestEnv()
	jwtMgr := jwt.NewManager(&env.cfg.Auth)
	tokens := newMockTokenBlacklist()

	env.companies.companies[testCompanyID] = &model.Company{CompanyID: testCompanyID, Name: "蓝鲸维保", IsActive: true}
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	env.users.users["u-1"] = &model.User{
		UserID:       "u-1",
		CompanyID:    testCompanyID,
		Name:         "调度员小陈",
		Email:        "chen@ops.example.com",
		PasswordHash: string(hash),
		Role:         authctx.RoleDispatcher,
		IsActive:     true,
	}
	env.users.users["u-off"] = &model.User{
		UserID:       "u-off",
		CompanyID:    testCompanyID,
		Name:         "离职员工",
		Email:        "gone@ops.example.com",
		PasswordHash: string(hash),
		Role:         authctx.RoleField,
		IsActive:     false,
	}

	return &authFixture{
		env:    env,
		jwtMgr: jwtMgr,
		tokens: tokens,
		svc:    NewAuthService(env.cfg, env.repo, jwtMgr, tokens, zap.NewNop()),
	}
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: "  Chen@Ops.Example.com ", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("应返回 Token 对")
	}
	if resp.ExpiresIn != 900 {
		t.Errorf("期望 ExpiresIn=900，实际=%d", resp.ExpiresIn)
	}

	claims, err := f.jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 解析失败: %v", err)
	}
	if claims.UserID != "u-1" || claims.CompanyID != testCompanyID || claims.Role != authctx.RoleDispatcher {
		t.Errorf("Claims 错误: %+v", claims)
	}
	if claims.TokenType != jwt.TokenTypeAccess {
		t.Errorf("期望 access token，实际=%s", claims.TokenType)
	}
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "用户不存在", email: "nobody@ops.example.com", password: "correct-horse"},
		{name: "密码错误", email: "chen@ops.example.com", password: "wrong-password"},
		{name: "用户已停用", email: "gone@ops.example.com", password: "correct-horse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			_, err := f.svc.Login(context.Background(), &dto.LoginRequest{Email: tt.email, Password: tt.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
			}
		})
	}
}

// ── Refresh / Logout 测试 ──

func TestAuthService_Refresh_Rotates(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "chen@ops.example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	refreshed, err := f.svc.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	if err != nil {
		t.Fatalf("Refresh 应成功: %v", err)
	}
	if refreshed.RefreshToken == login.RefreshToken {
		t.Error("Refresh 应签发新的 RefreshToken")
	}

	// 旧 Refresh Token 已轮换，不能再次使用
	if _, err := f.svc.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken}); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Errorf("重复使用旧 RefreshToken 期望 ErrUnauthorized，实际: %v", err)
	}
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	f := newAuthFixture(t)
	access, err := f.jwtMgr.GenerateAccessToken("u-1", testCompanyID, authctx.RoleDispatcher)
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}

	for name, token := range map[string]string{"access token": access, "乱码": "not-a-jwt"} {
		if _, err := f.svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: token}); !errors.Is(err, pkgerrors.ErrUnauthorized) {
			t.Errorf("%s: 期望 ErrUnauthorized，实际: %v", name, err)
		}
	}
}

func TestAuthService_Refresh_InactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	refresh, err := f.jwtMgr.GenerateRefreshToken("u-off", testCompanyID, authctx.RoleField)
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}
	if _, err := f.svc.Refresh(context.Background(), &dto.RefreshTokenRequest{RefreshToken: refresh}); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Errorf("停用用户刷新期望 ErrUnauthorized，实际: %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, &dto.LoginRequest{Email: "chen@ops.example.com", Password: "correct-horse"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	access, err := f.jwtMgr.ParseToken(login.AccessToken)
	if err != nil {
		t.Fatalf("解析 AccessToken 失败: %v", err)
	}

	if err := f.svc.Logout(ctx, access, login.RefreshToken); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if len(f.tokens.revoked) != 2 {
		t.Errorf("期望吊销 2 个 Token，实际=%d", len(f.tokens.revoked))
	}
	if ttl := f.tokens.revoked[access.ID]; ttl <= 0 {
		t.Errorf("吊销 TTL 应为正数，实际=%v", ttl)
	}
	if _, err := f.svc.Refresh(ctx, &dto.RefreshTokenRequest{RefreshToken: login.RefreshToken}); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Errorf("登出后刷新期望 ErrUnauthorized，实际: %v", err)
	}

	if err := f.svc.Logout(ctx, nil, ""); !errors.Is(err, pkgerrors.ErrUnauthorized) {
		t.Errorf("缺少 Claims 期望 ErrUnauthorized，实际: %v", err)
	}
}

func TestAuthService_Logout_IgnoresForeignRefreshToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	accessToken, _ := f.jwtMgr.GenerateAccessToken("u-1", testCompanyID, authctx.RoleDispatcher)
	access, err := f.jwtMgr.ParseToken(accessToken)
	if err != nil {
		t.Fatalf("解析 AccessToken 失败: %v", err)
	}
	foreign, _ := f.jwtMgr.GenerateRefreshToken("u-other", testCompanyID, authctx.RoleOwner)

	if err := f.svc.Logout(ctx, access, foreign); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	if len(f.tokens.revoked) != 1 {
		t.Errorf("他人的 RefreshToken 不应被吊销，实际吊销数=%d", len(f.tokens.revoked))
	}
}

// ── Me / CreateUser 测试 ──

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.Me(context.Background(), dispatcher)
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Errorf("未知用户期望 ErrNotFound，实际: %v %+v", err, resp)
	}

	actor := dispatcher
	actor.UserID = "u-1"
	resp, err = f.svc.Me(context.Background(), actor)
	if err != nil {
		t.Fatalf("Me 应成功: %v", err)
	}
	if resp.Email != "chen@ops.example.com" || resp.Role != authctx.RoleDispatcher {
		t.Errorf("用户信息错误: %+v", resp)
	}
}

func TestAuthService_CreateUser_NewCompany(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		CompanyName: "极光空调服务",
		Name:        "老板",
		Email:       "Boss@Aurora.example.com",
		Password:    "super-secret",
		Role:        authctx.RoleOwner,
	})
	if err != nil {
		t.Fatalf("CreateUser 应成功: %v", err)
	}
	if resp.Email != "boss@aurora.example.com" {
		t.Errorf("邮箱应转为小写，实际=%s", resp.Email)
	}
	if resp.CompanyName != "极光空调服务" || resp.CompanyID == "" {
		t.Errorf("应新建公司，实际=%+v", resp)
	}
	if len(f.env.companies.companies) != 2 {
		t.Errorf("期望 2 家公司，实际=%d", len(f.env.companies.companies))
	}

	stored := f.env.users.users[resp.ID]
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("super-secret")); err != nil {
		t.Error("密码应以 bcrypt 哈希保存")
	}
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	tests := []struct {
		name    string
		req     dto.CreateUserRequest
		wantErr error
	}{
		{name: "邮箱重复", req: dto.CreateUserRequest{CompanyID: testCompanyID, Name: "甲", Email: "CHEN@ops.example.com", Password: "12345678", Role: "field"}, wantErr: pkgerrors.ErrValidation},
		{name: "角色无效", req: dto.CreateUserRequest{CompanyID: testCompanyID, Name: "甲", Email: "a@ops.example.com", Password: "12345678", Role: "root"}, wantErr: pkgerrors.ErrValidation},
		{name: "密码过短", req: dto.CreateUserRequest{CompanyID: testCompanyID, Name: "甲", Email: "a@ops.example.com", Password: "1234567", Role: "field"}, wantErr: pkgerrors.ErrValidation},
		{name: "缺少公司名称", req: dto.CreateUserRequest{Name: "甲", Email: "a@ops.example.com", Password: "12345678", Role: "field"}, wantErr: pkgerrors.ErrValidation},
		{name: "公司不存在", req: dto.CreateUserRequest{CompanyID: "missing", Name: "甲", Email: "a@ops.example.com", Password: "12345678", Role: "field"}, wantErr: pkgerrors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAuthFixture(t)
			before := len(f.env.users.users)
			if _, err := f.svc.CreateUser(context.Background(), &tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
			if len(f.env.users.users) != before {
				t.Error("失败时不应写入用户")
			}
		})
	}
}
