package service

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// ── 业务错误 ──

var (
	ErrInvalidCredentials = errors.New("邮箱或密码错误")

	ErrEmployeeInactive = &pkgerrors.ValidationError{Field: "employee_id", Message: "员工已停用，不能派工"}
	ErrAssetInactive    = &pkgerrors.ValidationError{Field: "asset_id", Message: "设备已停用"}
	ErrPresetInactive   = &pkgerrors.ValidationError{Field: "preset_id", Message: "作业预设已停用"}
)

// ComplianceOverrideRequiredError 员工存在资质缺口且未确认豁免
// errors.Is(err, ErrComplianceOverrideRequired) 为 true；Snapshot 返回给调用方展示缺口
type ComplianceOverrideRequiredError struct {
	Snapshot compliance.Snapshot
}

func (e *ComplianceOverrideRequiredError) Error() string {
	return fmt.Sprintf("员工合规状态为 %s，缺失 %d 项资质，需要确认豁免", e.Snapshot.Status, len(e.Snapshot.Missing))
}

func (e *ComplianceOverrideRequiredError) Is(target error) bool {
	return target == pkgerrors.ErrComplianceOverrideRequired
}

// notFound 将 gorm.ErrRecordNotFound 转换为 ErrNotFound，其它错误原样返回
func notFound(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(entity, id)
	}
	return err
}

// lookupErr 查询类错误：记录不存在转为 ErrNotFound，其它错误记录日志
func lookupErr(logger *zap.Logger, err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(entity, id)
	}
	logger.Error("查询失败", zap.String("entity", entity), zap.String("id", id), zap.Error(err))
	return err
}

// txErr 业务错误原样返回；基础设施错误记录日志
func txErr(logger *zap.Logger, msg, id string, err error) error {
	if isBusinessErr(err) {
		return err
	}
	logger.Error(msg, zap.String("id", id), zap.Error(err))
	return err
}

func isBusinessErr(err error) bool {
	for _, target := range []error{
		pkgerrors.ErrNotFound,
		pkgerrors.ErrForbidden,
		pkgerrors.ErrValidation,
		pkgerrors.ErrWorkOrderLocked,
		pkgerrors.ErrInvalidTransition,
		pkgerrors.ErrComplianceOverrideRequired,
		pkgerrors.ErrOverrideReasonTooShort,
		pkgerrors.ErrOptimisticLock,
		pkgerrors.ErrEstimateLocked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
