package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/jwt"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/response"
)

// 由 JWTAuth 中间件注入的上下文键
const (
	CtxUserID    = "user_id"
	CtxCompanyID = "company_id"
	CtxRole      = "role"
	CtxClaims    = "claims"
)

// MustGetActor 从 Gin 上下文中组装当前操作人。
// 如果 JWT 中间件未正确注入身份，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetActor(c *gin.Context) (authctx.Actor, bool) {
	actor := authctx.Actor{
		UserID:    c.GetString(CtxUserID),
		CompanyID: c.GetString(CtxCompanyID),
		Role:      c.GetString(CtxRole),
		IP:        c.ClientIP(),
	}
	if !actor.Valid() {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return authctx.Actor{}, false
	}
	return actor, true
}

// MustGetClaims 提取当前 Access Token 的声明（登出时吊销使用）
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, response.CodeUnauthorized, "未认证")
		return nil, false
	}
	return claims, true
}
