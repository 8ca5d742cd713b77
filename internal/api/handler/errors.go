package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/response"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/storage"
)

// ── 错误码 ──
//
//	10001 参数校验失败     10002 未认证        10003 无权限
//	10004 请求过于频繁     10005 请求体过大
//	11001 邮箱或密码错误
//	20001 资源不存在
//	21001 工单已锁定       21002 状态流转非法  21003 乐观锁冲突
//	22001 需要合规豁免     22002 豁免理由过短
//	23001 报价单已锁定
//	50000 服务器内部错误

// bindFailed 请求绑定失败：超出 BodyLimit 时返回 413，其余返回 400
func bindFailed(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.PayloadTooLarge(c, "请求体过大")
		return
	}
	response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "参数校验失败", err.Error())
}

// handleError 将 Service 层错误映射为统一响应
func handleError(c *gin.Context, err error) {
	var overrideErr *service.ComplianceOverrideRequiredError
	var validationErr *pkgerrors.ValidationError

	switch {
	case errors.As(err, &overrideErr):
		response.ErrorWithData(c, http.StatusUnprocessableEntity, response.CodeOverrideNeeded, overrideErr.Error(), overrideErr.Snapshot)
	case errors.Is(err, pkgerrors.ErrOverrideReasonTooShort):
		response.ErrorWithDetails(c, http.StatusUnprocessableEntity, response.CodeReasonTooShort, pkgerrors.ErrOverrideReasonTooShort.Error(), err.Error())
	case errors.As(err, &validationErr):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "参数校验失败", validationErr.Error())
	case errors.Is(err, pkgerrors.ErrValidation):
		response.BadRequest(c, response.CodeValidation, "参数校验失败")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, response.CodeBadCredentials, service.ErrInvalidCredentials.Error())
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		response.Unauthorized(c, response.CodeUnauthorized, pkgerrors.ErrUnauthorized.Error())
	case errors.Is(err, pkgerrors.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, pkgerrors.ErrForbidden.Error())
	case errors.Is(err, pkgerrors.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		response.NotFound(c, response.CodeNotFound, pkgerrors.ErrNotFound.Error())
	case errors.Is(err, pkgerrors.ErrWorkOrderLocked):
		response.Conflict(c, response.CodeWorkOrderLocked, pkgerrors.ErrWorkOrderLocked.Error())
	case errors.Is(err, pkgerrors.ErrInvalidTransition):
		response.ErrorWithDetails(c, http.StatusConflict, response.CodeBadTransition, pkgerrors.ErrInvalidTransition.Error(), err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, response.CodeVersionConflict, pkgerrors.ErrOptimisticLock.Error())
	case errors.Is(err, pkgerrors.ErrEstimateLocked):
		response.Conflict(c, response.CodeEstimateLocked, pkgerrors.ErrEstimateLocked.Error())
	case errors.Is(err, storage.ErrTooLarge):
		response.PayloadTooLarge(c, storage.ErrTooLarge.Error())
	case errors.Is(err, storage.ErrEmpty):
		response.ErrorWithDetails(c, http.StatusBadRequest, response.CodeValidation, "参数校验失败", storage.ErrEmpty.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}
