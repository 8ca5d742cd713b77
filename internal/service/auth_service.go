package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/jwt"
)

// TokenBlacklist Token 吊销存储（Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService 认证业务接口
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout 吊销当前 Access Token，可同时吊销 Refresh Token
	Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error
	Me(ctx context.Context, actor authctx.Actor) (*dto.UserResponse, error)
	// CreateUser 创建用户（运维命令使用）；未指定 company_id 时新建公司
	CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error)
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenBlacklist
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例；tokens 为 nil 时不支持吊销
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 生成 Token 对
	return s.issueTokens(user)
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, pkgerrors.ErrUnauthorized
	}
	if s.revoked(ctx, claims.ID) {
		return nil, pkgerrors.ErrUnauthorized
	}

	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrUnauthorized
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if !user.IsActive {
		return nil, pkgerrors.ErrUnauthorized
	}

	// 轮换：旧 Refresh Token 立即失效
	s.revoke(ctx, claims)
	return s.issueTokens(user)
}

func (s *authService) Logout(ctx context.Context, access *jwt.Claims, refreshToken string) error {
	if access == nil {
		return pkgerrors.ErrUnauthorized
	}
	s.revoke(ctx, access)
	if refreshToken != "" {
		claims, err := s.jwtMgr.ParseToken(refreshToken)
		if err == nil && claims.TokenType == jwt.TokenTypeRefresh && claims.UserID == access.UserID {
			s.revoke(ctx, claims)
		}
	}
	return nil
}

func (s *authService) Me(ctx context.Context, actor authctx.Actor) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, lookupErr(s.logger, err, "user", actor.UserID)
	}
	return toUserResponse(user), nil
}

func (s *authService) CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	name := strings.TrimSpace(req.Name)
	switch {
	case email == "":
		return nil, pkgerrors.Invalid("email", "邮箱不能为空")
	case name == "":
		return nil, pkgerrors.Invalid("name", "姓名不能为空")
	case !authctx.ValidRole(req.Role):
		return nil, pkgerrors.Invalid("role", "角色无效")
	case len(req.Password) < 8:
		return nil, pkgerrors.Invalid("password", "密码至少 8 位")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UserID:       uuid.NewString(),
		CompanyID:    req.CompanyID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         req.Role,
		IsActive:     true,
	}
	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		if _, err := tx.User.GetByEmail(ctx, email); err == nil {
			return pkgerrors.Invalid("email", "邮箱已被使用")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if user.CompanyID == "" {
			companyName := strings.TrimSpace(req.CompanyName)
			if companyName == "" {
				return pkgerrors.Invalid("company_name", "未指定公司时必须提供公司名称")
			}
			company := &model.Company{CompanyID: uuid.NewString(), Name: companyName, IsActive: true}
			if err := tx.Company.Create(ctx, company); err != nil {
				return err
			}
			user.CompanyID = company.CompanyID
			user.Company = company
		} else {
			company, err := tx.Company.GetByID(ctx, user.CompanyID)
			if err != nil {
				return notFound(err, "company", user.CompanyID)
			}
			user.Company = company
		}
		return tx.User.Create(ctx, user)
	})
	if err != nil {
		return nil, txErr(s.logger, "创建用户失败", email, err)
	}

	s.logger.Info("用户已创建",
		zap.String("user_id", user.UserID),
		zap.String("company_id", user.CompanyID),
		zap.String("role", user.Role),
	)
	return toUserResponse(user), nil
}

// ── 内部辅助 ──

func (s *authService) issueTokens(user *model.User) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.CompanyID, user.Role)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.CompanyID, user.Role)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		User:         *toUserResponse(user),
	}, nil
}

// revoke 将 Token 加入黑名单直到其自然过期；Redis 不可用时只记录日志
func (s *authService) revoke(ctx context.Context, claims *jwt.Claims) {
	if s.tokens == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.tokens.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Warn("吊销 Token 失败", zap.String("jti", claims.ID), zap.Error(err))
	}
}

func (s *authService) revoked(ctx context.Context, jti string) bool {
	if s.tokens == nil || jti == "" {
		return false
	}
	ok, err := s.tokens.IsBlacklisted(ctx, jti)
	if err != nil {
		s.logger.Warn("查询 Token 黑名单失败", zap.String("jti", jti), zap.Error(err))
		return false
	}
	return ok
}

func toUserResponse(u *model.User) *dto.UserResponse {
	resp := &dto.UserResponse{
		ID:        u.UserID,
		CompanyID: u.CompanyID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if u.Company != nil {
		resp.CompanyName = u.Company.Name
	}
	return resp
}
