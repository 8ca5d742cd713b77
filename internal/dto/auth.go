package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutRequest 登出请求（可同时吊销 Refresh Token）
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// CreateUserRequest 创建用户（fieldctl create-user 使用）
type CreateUserRequest struct {
	CompanyID   string `json:"company_id"`
	CompanyName string `json:"company_name"`
	Name        string `json:"name"     binding:"required,max=100"`
	Email       string `json:"email"    binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	Role        string `json:"role"     binding:"required,oneof=owner admin dispatcher estimator field"`
}
