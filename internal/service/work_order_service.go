package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// 派工角色
const (
	CrewRoleLead       = "lead"
	CrewRoleTechnician = "technician"
	CrewRoleHelper     = "helper"
)

const defaultDurationMinutes = 120

// WorkOrderService 工单生命周期业务接口
//
// 所有写操作：可变性守卫 → 写入 → 活动流水 + 审计，同一事务完成；
// 通知在事务提交后发送，失败只记录日志。
type WorkOrderService interface {
	Create(ctx context.Context, actor authctx.Actor, req *dto.CreateWorkOrderRequest) (*dto.WorkOrderResponse, ChangeSet, error)
	Get(ctx context.Context, actor authctx.Actor, id string) (*dto.WorkOrderDetailResponse, error)
	List(ctx context.Context, actor authctx.Actor, req *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error)
	ListActivity(ctx context.Context, actor authctx.Actor, id string, page *dto.PaginationRequest) ([]dto.ActivityResponse, int64, error)

	Transition(ctx context.Context, actor authctx.Actor, id string, req *dto.TransitionRequest) (*dto.WorkOrderResponse, ChangeSet, error)
	UpdateNotes(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdateNotesRequest) (*dto.WorkOrderResponse, ChangeSet, error)

	Assign(ctx context.Context, actor authctx.Actor, workOrderID string, req *dto.AssignEmployeeRequest) (*dto.AssignResult, ChangeSet, error)
	Unassign(ctx context.Context, actor authctx.Actor, assignmentID string) (ChangeSet, error)
	UpdateAssignment(ctx context.Context, actor authctx.Actor, assignmentID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, ChangeSet, error)

	AssignAsset(ctx context.Context, actor authctx.Actor, workOrderID string, req *dto.AssignAssetRequest) (*dto.WorkOrderAssetResponse, ChangeSet, error)
	UnassignAsset(ctx context.Context, actor authctx.Actor, workOrderAssetID string) (ChangeSet, error)

	AddPreset(ctx context.Context, actor authctx.Actor, workOrderID string, req *dto.AddPresetRequest) (ChangeSet, error)
	RemovePreset(ctx context.Context, actor authctx.Actor, workOrderID, presetID string) (ChangeSet, error)
}

type workOrderService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewWorkOrderService 创建 WorkOrderService 实例；notifier 可为 nil
func NewWorkOrderService(cfg *config.Config, repo *repository.Repository, notifier Notifier, logger *zap.Logger) WorkOrderService {
	return &workOrderService{cfg: cfg, repo: repo, notifier: notifier, logger: logger, now: utcNow}
}

// ═══════════════════════════════════════════════════════════
// 查询
// ═══════════════════════════════════════════════════════════

func (s *workOrderService) Get(ctx context.Context, actor authctx.Actor, id string) (*dto.WorkOrderDetailResponse, error) {
	wo, err := s.repo.WorkOrder.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "work order", id)
	}

	crew, err := s.repo.Assignment.ListActive(ctx, wo.WorkOrderID)
	if err != nil {
		s.logger.Error("查询派工失败", zap.String("work_order_id", id), zap.Error(err))
		return nil, err
	}
	assets, err := s.repo.WorkOrderAsset.ListActive(ctx, wo.WorkOrderID)
	if err != nil {
		s.logger.Error("查询工单设备失败", zap.String("work_order_id", id), zap.Error(err))
		return nil, err
	}
	presets, err := s.repo.WorkOrderPreset.List(ctx, wo.WorkOrderID)
	if err != nil {
		s.logger.Error("查询工单预设失败", zap.String("work_order_id", id), zap.Error(err))
		return nil, err
	}

	detail := &dto.WorkOrderDetailResponse{
		WorkOrderResponse: *toWorkOrderResponse(wo),
		Crew:              make([]dto.AssignmentResponse, 0, len(crew)),
		Assets:            make([]dto.WorkOrderAssetResponse, 0, len(assets)),
		Presets:           make([]dto.PresetResponse, 0, len(presets)),
	}
	for i := range crew {
		detail.Crew = append(detail.Crew, *toAssignmentResponse(&crew[i]))
	}
	for i := range assets {
		detail.Assets = append(detail.Assets, *toWorkOrderAssetResponse(&assets[i]))
	}
	for i := range presets {
		if presets[i].Preset != nil {
			detail.Presets = append(detail.Presets, *toPresetResponse(presets[i].Preset))
		}
	}
	return detail, nil
}

func (s *workOrderService) List(ctx context.Context, actor authctx.Actor, req *dto.WorkOrderListRequest) ([]dto.WorkOrderResponse, int64, error) {
	filter := repository.WorkOrderFilter{
		Status:  workorder.Status(req.Status),
		Keyword: strings.TrimSpace(req.Keyword),
	}
	list, total, err := s.repo.WorkOrder.List(ctx, actor.CompanyID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出工单失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.WorkOrderResponse, 0, len(list))
	for i := range list {
		result = append(result, *toWorkOrderResponse(&list[i]))
	}
	return result, total, nil
}

func (s *workOrderService) ListActivity(ctx context.Context, actor authctx.Actor, id string, page *dto.PaginationRequest) ([]dto.ActivityResponse, int64, error) {
	if _, err := s.repo.WorkOrder.GetByID(ctx, actor.CompanyID, id); err != nil {
		return nil, 0, lookupErr(s.logger, err, "work order", id)
	}

	list, total, err := s.repo.Activity.ListByWorkOrder(ctx, id, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询工单活动失败", zap.String("work_order_id", id), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ActivityResponse, 0, len(list))
	for i := range list {
		result = append(result, toActivityResponse(&list[i]))
	}
	return result, total, nil
}

// ═══════════════════════════════════════════════════════════
// Create
// ═══════════════════════════════════════════════════════════

func (s *workOrderService) Create(ctx context.Context, actor authctx.Actor, req *dto.CreateWorkOrderRequest) (*dto.WorkOrderResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, nil, pkgerrors.Invalid("title", "标题不能为空")
	}

	now := s.now()
	wo := newWorkOrder(actor, title, now)
	wo.Description = req.Description
	wo.SiteAddress = strings.TrimSpace(req.SiteAddress)
	wo.ContactID = req.ContactID
	wo.ScheduledFor = req.ScheduledFor
	if req.DurationMinutes > 0 {
		wo.DurationMinutes = req.DurationMinutes
	}

	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		if wo.ContactID != nil {
			if _, err := tx.Contact.GetByID(ctx, actor.CompanyID, *wo.ContactID); err != nil {
				return notFound(err, "contact", *wo.ContactID)
			}
		}
		return createWorkOrder(ctx, tx, actor, wo, "创建工单", now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "创建工单失败", "", err)
	}

	return toWorkOrderResponse(wo), ChangeSet{}.Add(EntityWorkOrder, wo.WorkOrderID), nil
}

// newWorkOrder 新工单（DRAFT，版本 1）
func newWorkOrder(actor authctx.Actor, title string, now time.Time) *model.WorkOrder {
	wo := &model.WorkOrder{
		WorkOrderID:     uuid.NewString(),
		CompanyID:       actor.CompanyID,
		Number:          generateNumber("WO", now),
		Title:           title,
		Status:          workorder.InitialStatus(),
		DurationMinutes: defaultDurationMinutes,
	}
	wo.Version = 1
	wo.CreatedAt = now
	wo.UpdatedAt = now
	wo.CreatedBy = model.StrPtr(actor.UserID)
	wo.UpdatedBy = model.StrPtr(actor.UserID)
	return wo
}

// createWorkOrder 在事务内写入工单及其创建流水
func createWorkOrder(ctx context.Context, tx *repository.Repository, actor authctx.Actor, wo *model.WorkOrder, message string, now time.Time) error {
	if err := tx.WorkOrder.Create(ctx, wo); err != nil {
		return err
	}
	status := wo.Status
	if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
		typ:     model.ActivityCreated,
		message: message,
		to:      &status,
		meta:    map[string]interface{}{"number": wo.Number},
	}, now); err != nil {
		return err
	}
	meta := map[string]interface{}{"number": wo.Number}
	if wo.EstimateID != nil {
		meta["estimate_id"] = *wo.EstimateID
	}
	return writeAudit(ctx, tx, actor, AuditWorkOrderCreated, EntityWorkOrder, wo.WorkOrderID, meta, now)
}

// generateNumber 形如 WO-20260301-3FA2C9
func generateNumber(prefix string, now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%s-%s", prefix, now.Format("20060102"), suffix)
}

// ═══════════════════════════════════════════════════════════
// Transition — 状态流转
// ═══════════════════════════════════════════════════════════

func (s *workOrderService) Transition(ctx context.Context, actor authctx.Actor, id string, req *dto.TransitionRequest) (*dto.WorkOrderResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, nil, err
	}

	to := workorder.Status(req.Status)
	if !to.Valid() {
		return nil, nil, pkgerrors.Invalid("status", "未知的工单状态")
	}

	now := s.now()
	var (
		wo     *model.WorkOrder
		result workorder.TransitionResult
		crew   []model.WorkOrderAssignment
	)
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		wo, err = tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return notFound(err, "work order", id)
		}
		if req.Version != nil && *req.Version != wo.Version {
			return pkgerrors.ErrOptimisticLock
		}

		result, err = workorder.ApplyTransition(wo.Status, to, wo.Timeline, now)
		if err != nil {
			return err
		}

		crew, err = tx.Assignment.ListActive(ctx, wo.WorkOrderID)
		if err != nil {
			return err
		}

		wo.Status = result.To
		wo.Timeline = result.Timeline
		statuses, err := s.crewStatuses(ctx, tx, actor, crew, now)
		if err != nil {
			return err
		}
		wo.ComplianceBlocked, wo.OverrideApproved = crewComplianceFlags(crew, statuses)
		wo.UpdatedBy = model.StrPtr(actor.UserID)
		if err := tx.WorkOrder.Update(ctx, wo); err != nil {
			return err
		}

		from := result.From
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityStatusChanged,
			message: fmt.Sprintf("状态 %s → %s", from, result.To),
			from:    &from,
			to:      &result.To,
		}, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditWorkOrderStatus, EntityWorkOrder, wo.WorkOrderID, map[string]interface{}{
			"from": string(from),
			"to":   string(result.To),
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "工单状态流转失败", id, err)
	}

	if result.Notify {
		s.notifyAfterCommit(ctx, "status_changed", wo.WorkOrderID, func(ctx context.Context) error {
			return s.notifier.WorkOrderStatusChanged(ctx, wo, result.From, crew)
		})
	}

	return toWorkOrderResponse(wo), ChangeSet{}.Add(EntityWorkOrder, wo.WorkOrderID), nil
}

// ═══════════════════════════════════════════════════════════
// UpdateNotes
// ═══════════════════════════════════════════════════════════

func (s *workOrderService) UpdateNotes(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdateNotesRequest) (*dto.WorkOrderResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, nil, err
	}

	now := s.now()
	var wo *model.WorkOrder
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		wo, err = tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, id)
		if err != nil {
			return notFound(err, "work order", id)
		}
		if err := workorder.AssertMutable(wo.Status); err != nil {
			return err
		}
		if req.Version != nil && *req.Version != wo.Version {
			return pkgerrors.ErrOptimisticLock
		}

		wo.Notes = req.Notes
		wo.UpdatedBy = model.StrPtr(actor.UserID)
		if err := tx.WorkOrder.Update(ctx, wo); err != nil {
			return err
		}
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityNotesUpdated,
			message: "修改备注",
		}, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditWorkOrderNotes, EntityWorkOrder, wo.WorkOrderID, map[string]interface{}{
			"length": utf8.RuneCountInString(req.Notes),
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "修改工单备注失败", id, err)
	}

	return toWorkOrderResponse(wo), ChangeSet{}.Add(EntityWorkOrder, wo.WorkOrderID), nil
}

// ═══════════════════════════════════════════════════════════
// Assign — 派工（合规检查 + 豁免）
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 锁定工单 → 可变性守卫
//  2. 员工存在；已在岗 → 幂等返回，不写任何记录（即使员工已停用）
//  3. 员工在职
//  4. 计算合规快照；有缺口时必须 force_override 且理由（去首尾空白后）达到最小长度
//  5. 写派工记录（内嵌快照）→ 回写员工合规缓存 → 重算工单合规标记 → 活动流水 + 审计
//  6. 工单处于 SCHEDULED / IN_PROGRESS 时，提交后通知员工

func (s *workOrderService) Assign(ctx context.Context, actor authctx.Actor, workOrderID string, req *dto.AssignEmployeeRequest) (*dto.AssignResult, ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, nil, err
	}

	role := req.Role
	if role == "" {
		role = CrewRoleTechnician
	}
	if !validCrewRole(role) {
		return nil, nil, pkgerrors.Invalid("role", "派工角色无效")
	}

	now := s.now()
	var (
		wo      *model.WorkOrder
		emp     *model.ComplianceEmployee
		a       *model.WorkOrderAssignment
		snap    compliance.Snapshot
		created bool
	)
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		wo, err = tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, workOrderID)
		if err != nil {
			return notFound(err, "work order", workOrderID)
		}
		if err := workorder.AssertMutable(wo.Status); err != nil {
			return err
		}

		emp, err = tx.Employee.GetByID(ctx, actor.CompanyID, req.EmployeeID)
		if err != nil {
			return notFound(err, "employee", req.EmployeeID)
		}
		snap = compliance.Evaluate(certificationsOf(emp), now, s.cfg.Compliance.WarningWindow())

		existing, err := tx.Assignment.GetActive(ctx, wo.WorkOrderID, emp.EmployeeID)
		if err == nil {
			a = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if !emp.IsActive {
			return ErrEmployeeInactive
		}

		reason := strings.TrimSpace(req.OverrideReason)
		if snap.NeedsOverride {
			if !req.ForceOverride {
				return &ComplianceOverrideRequiredError{Snapshot: snap}
			}
			if utf8.RuneCountInString(reason) < s.cfg.Compliance.OverrideReasonMinLen {
				return fmt.Errorf("至少需要 %d 个字符: %w", s.cfg.Compliance.OverrideReasonMinLen, pkgerrors.ErrOverrideReasonTooShort)
			}
		} else {
			reason = ""
		}

		a = &model.WorkOrderAssignment{
			AssignmentID:         uuid.NewString(),
			WorkOrderID:          wo.WorkOrderID,
			EmployeeID:           emp.EmployeeID,
			Role:                 role,
			ComplianceStatus:     snap.Status,
			GapSummary:           datatypes.NewJSONType(snap.Summary()),
			OverrideAcknowledged: snap.NeedsOverride,
			OverrideReason:       reason,
			AssignedBy:           actor.UserID,
			AssignedAt:           now,
			Employee:             emp,
		}
		a.CreatedAt = now
		a.UpdatedAt = now
		a.CreatedBy = model.StrPtr(actor.UserID)
		if err := tx.Assignment.Create(ctx, a); err != nil {
			return err
		}
		created = true

		if err := s.syncEmployeeStatus(ctx, tx, actor, emp, snap.Status, now); err != nil {
			return err
		}
		if err := s.refreshComplianceFlags(ctx, tx, actor, wo, now); err != nil {
			return err
		}

		meta := map[string]interface{}{
			"employee_id":       emp.EmployeeID,
			"role":              role,
			"compliance_status": string(snap.Status),
			"missing":           len(snap.Missing),
		}
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityEmployeeAssigned,
			message: fmt.Sprintf("派工: %s（%s）", emp.Name, role),
			meta:    meta,
		}, now); err != nil {
			return err
		}
		action := AuditEmployeeAssigned
		if snap.NeedsOverride {
			action = AuditComplianceOverride
			meta["override_reason"] = reason
		}
		return writeAudit(ctx, tx, actor, action, EntityAssignment, a.AssignmentID, meta, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "派工失败", workOrderID, err)
	}

	if created && wo.Status.Live() {
		s.notifyAfterCommit(ctx, "employee_assigned", wo.WorkOrderID, func(ctx context.Context) error {
			return s.notifier.EmployeeAssigned(ctx, wo, emp, a.Role)
		})
	}

	if a.Employee == nil {
		a.Employee = emp
	}
	result := &dto.AssignResult{
		Assignment: *toAssignmentResponse(a),
		Created:    created,
		Snapshot:   snap,
	}
	var changes ChangeSet
	if created {
		changes = changes.Add(EntityWorkOrder, wo.WorkOrderID).Add(EntityAssignment, a.AssignmentID)
	}
	return result, changes, nil
}

// ═══════════════════════════════════════════════════════════
// Unassign / UpdateAssignment
// ═══════════════════════════════════════════════════════════

func (s *workOrderService) Unassign(ctx context.Context, actor authctx.Actor, assignmentID string) (ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		a       *model.WorkOrderAssignment
		changed bool
	)
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		a, err = tx.Assignment.GetByID(ctx, assignmentID)
		if err != nil {
			return notFound(err, "assignment", assignmentID)
		}
		wo, err := tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, a.WorkOrderID)
		if err != nil {
			return notFound(err, "assignment", assignmentID)
		}
		if err := workorder.AssertMutable(wo.Status); err != nil {
			return err
		}
		if !a.Active() {
			return nil
		}

		a.UnassignedAt = &now
		a.UnassignedBy = model.StrPtr(actor.UserID)
		a.UpdatedBy = model.StrPtr(actor.UserID)
		if err := tx.Assignment.Update(ctx, a); err != nil {
			return err
		}
		changed = true

		if err := s.refreshComplianceFlags(ctx, tx, actor, wo, now); err != nil {
			return err
		}

		name := a.EmployeeID
		if a.Employee != nil {
			name = a.Employee.Name
		}
		meta := map[string]interface{}{"employee_id": a.EmployeeID}
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityEmployeeRemoved,
			message: "取消派工: " + name,
			meta:    meta,
		}, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditEmployeeUnassigned, EntityAssignment, a.AssignmentID, meta, now)
	})
	if err != nil {
		return nil, txErr(s.logger, "取消派工失败", assignmentID, err)
	}

	if !changed {
		return nil, nil
	}
	return ChangeSet{}.Add(EntityWorkOrder, a.WorkOrderID).Add(EntityAssignment, a.AssignmentID), nil
}

func (s *workOrderService) UpdateAssignment(ctx context.Context, actor authctx.Actor, assignmentID string, req *dto.UpdateAssignmentRequest) (*dto.AssignmentResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, nil, err
	}
	if !validCrewRole(req.Role) {
		return nil, nil, pkgerrors.Invalid("role", "派工角色无效")
	}

	now := s.now()
	var (
		a       *model.WorkOrderAssignment
		changed bool
	)
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		a, err = tx.Assignment.GetByID(ctx, assignmentID)
		if err != nil {
			return notFound(err, "assignment", assignmentID)
		}
		wo, err := tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, a.WorkOrderID)
		if err != nil {
			return notFound(err, "assignment", assignmentID)
		}
		if err := workorder.AssertMutable(wo.Status); err != nil {
			return err
		}
		if !a.Active() {
			return pkgerrors.Invalid("assignment_id", "派工已取消，不能修改")
		}
		if a.Role == req.Role {
			return nil
		}

		prev := a.Role
		a.Role = req.Role
		a.UpdatedBy = model.StrPtr(actor.UserID)
		if err := tx.Assignment.Update(ctx, a); err != nil {
			return err
		}
		changed = true

		meta := map[string]interface{}{"employee_id": a.EmployeeID, "from": prev, "to": req.Role}
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityAssignmentEdited,
			message: fmt.Sprintf("派工角色 %s → %s", prev, req.Role),
			meta:    meta,
		}, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditAssignmentUpdated, EntityAssignment, a.AssignmentID, meta, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "修改派工失败", assignmentID, err)
	}

	var changes ChangeSet
	if changed {
		changes = changes.Add(EntityWorkOrder, a.WorkOrderID).Add(EntityAssignment, a.AssignmentID)
	}
	return toAssignmentResponse(a), changes, nil
}

// ═══════════════════════════════════════════════════════════
// 设备派用
// ═══════════════════════════════════════════════════════════

func (s *workOrderService) AssignAsset(ctx context.Context, actor authctx.Actor, workOrderID string, req *dto.AssignAssetRequest) (*dto.WorkOrderAssetResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, nil, err
	}

	now := s.now()
	var (
		wa      *model.WorkOrderAsset
		created bool
	)
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		wo, err := tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, workOrderID)
		if err != nil {
			return notFound(err, "work order", workOrderID)
		}
		if err := workorder.AssertMutable(wo.Status); err != nil {
			return err
		}
		asset, err := tx.Asset.GetByID(ctx, actor.CompanyID, req.AssetID)
		if err != nil {
			return notFound(err, "asset", req.AssetID)
		}
		if !asset.IsActive {
			return ErrAssetInactive
		}

		existing, err := tx.WorkOrderAsset.GetActive(ctx, wo.WorkOrderID, asset.AssetID)
		if err == nil {
			existing.Asset = asset
			wa = existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		wa = &model.WorkOrderAsset{
			WorkOrderAssetID: uuid.NewString(),
			WorkOrderID:      wo.WorkOrderID,
			AssetID:          asset.AssetID,
			AssignedBy:       actor.UserID,
			AssignedAt:       now,
			Asset:            asset,
		}
		if err := tx.WorkOrderAsset.Create(ctx, wa); err != nil {
			return err
		}
		created = true

		meta := map[string]interface{}{"asset_id": asset.AssetID}
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityAssetAssigned,
			message: "派用设备: " + asset.Name,
			meta:    meta,
		}, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditAssetAssigned, EntityWorkOrder, wo.WorkOrderID, meta, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "派用设备失败", workOrderID, err)
	}

	var changes ChangeSet
	if created {
		changes = changes.Add(EntityWorkOrder, wa.WorkOrderID)
	}
	return toWorkOrderAssetResponse(wa), changes, nil
}

func (s *workOrderService) UnassignAsset(ctx context.Context, actor authctx.Actor, workOrderAssetID string) (ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, err
	}

	now := s.now()
	var (
		wa      *model.WorkOrderAsset
		changed bool
	)
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		wa, err = tx.WorkOrderAsset.GetByID(ctx, workOrderAssetID)
		if err != nil {
			return notFound(err, "work order asset", workOrderAssetID)
		}
		wo, err := tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, wa.WorkOrderID)
		if err != nil {
			return notFound(err, "work order asset", workOrderAssetID)
		}
		if err := workorder.AssertMutable(wo.Status); err != nil {
			return err
		}
		if wa.UnassignedAt != nil {
			return nil
		}

		wa.UnassignedAt = &now
		wa.UnassignedBy = model.StrPtr(actor.UserID)
		if err := tx.WorkOrderAsset.Update(ctx, wa); err != nil {
			return err
		}
		changed = true

		name := wa.AssetID
		if wa.Asset != nil {
			name = wa.Asset.Name
		}
		meta := map[string]interface{}{"asset_id": wa.AssetID}
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityAssetRemoved,
			message: "撤回设备: " + name,
			meta:    meta,
		}, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditAssetUnassigned, EntityWorkOrder, wo.WorkOrderID, meta, now)
	})
	if err != nil {
		return nil, txErr(s.logger, "撤回设备失败", workOrderAssetID, err)
	}

	if !changed {
		return nil, nil
	}
	return ChangeSet{}.Add(EntityWorkOrder, wa.WorkOrderID), nil
}

// ═══════════════════════════════════════════════════════════
// 作业预设
// ═══════════════════════════════════════════════════════════

func (s *workOrderService) AddPreset(ctx context.Context, actor authctx.Actor, workOrderID string, req *dto.AddPresetRequest) (ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, err
	}

	now := s.now()
	changed := false
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		wo, err := tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, workOrderID)
		if err != nil {
			return notFound(err, "work order", workOrderID)
		}
		if err := workorder.AssertMutable(wo.Status); err != nil {
			return err
		}
		preset, err := tx.Preset.GetByID(ctx, actor.CompanyID, req.PresetID)
		if err != nil {
			return notFound(err, "preset", req.PresetID)
		}
		if !preset.IsActive {
			return ErrPresetInactive
		}

		if _, err := tx.WorkOrderPreset.Get(ctx, wo.WorkOrderID, preset.PresetID); err == nil {
			return nil
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.WorkOrderPreset.Create(ctx, &model.WorkOrderPreset{
			WorkOrderID: wo.WorkOrderID,
			PresetID:    preset.PresetID,
			AddedBy:     actor.UserID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		changed = true

		meta := map[string]interface{}{"preset_id": preset.PresetID}
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityPresetAdded,
			message: "添加作业预设: " + preset.Name,
			meta:    meta,
		}, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditPresetAdded, EntityWorkOrder, wo.WorkOrderID, meta, now)
	})
	if err != nil {
		return nil, txErr(s.logger, "添加作业预设失败", workOrderID, err)
	}

	if !changed {
		return nil, nil
	}
	return ChangeSet{}.Add(EntityWorkOrder, workOrderID), nil
}

func (s *workOrderService) RemovePreset(ctx context.Context, actor authctx.Actor, workOrderID, presetID string) (ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, err
	}

	now := s.now()
	changed := false
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		wo, err := tx.WorkOrder.GetForUpdate(ctx, actor.CompanyID, workOrderID)
		if err != nil {
			return notFound(err, "work order", workOrderID)
		}
		if err := workorder.AssertMutable(wo.Status); err != nil {
			return err
		}

		if _, err := tx.WorkOrderPreset.Get(ctx, wo.WorkOrderID, presetID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.WorkOrderPreset.Delete(ctx, wo.WorkOrderID, presetID); err != nil {
			return err
		}
		changed = true

		meta := map[string]interface{}{"preset_id": presetID}
		if err := writeActivity(ctx, tx, actor, wo.WorkOrderID, activityEntry{
			typ:     model.ActivityPresetRemoved,
			message: "移除作业预设",
			meta:    meta,
		}, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditPresetRemoved, EntityWorkOrder, wo.WorkOrderID, meta, now)
	})
	if err != nil {
		return nil, txErr(s.logger, "移除作业预设失败", workOrderID, err)
	}

	if !changed {
		return nil, nil
	}
	return ChangeSet{}.Add(EntityWorkOrder, workOrderID), nil
}

// ═══════════════════════════════════════════════════════════
// 内部辅助
// ═══════════════════════════════════════════════════════════

// refreshComplianceFlags 按在岗人员重算工单合规标记，有变化时 CAS 更新
func (s *workOrderService) refreshComplianceFlags(ctx context.Context, tx *repository.Repository, actor authctx.Actor, wo *model.WorkOrder, now time.Time) error {
	crew, err := tx.Assignment.ListActive(ctx, wo.WorkOrderID)
	if err != nil {
		return err
	}
	statuses, err := s.crewStatuses(ctx, tx, actor, crew, now)
	if err != nil {
		return err
	}
	blocked, approved := crewComplianceFlags(crew, statuses)
	if blocked == wo.ComplianceBlocked && approved == wo.OverrideApproved {
		return nil
	}
	wo.ComplianceBlocked = blocked
	wo.OverrideApproved = approved
	wo.UpdatedBy = model.StrPtr(actor.UserID)
	return tx.WorkOrder.Update(ctx, wo)
}

// crewStatuses 按当前资质重新评估在岗员工（不信任员工缓存），缓存过期时顺带回写
func (s *workOrderService) crewStatuses(ctx context.Context, tx *repository.Repository, actor authctx.Actor, crew []model.WorkOrderAssignment, now time.Time) (map[string]compliance.Status, error) {
	statuses := make(map[string]compliance.Status, len(crew))
	for i := range crew {
		id := crew[i].EmployeeID
		if _, ok := statuses[id]; ok {
			continue
		}
		emp, err := tx.Employee.GetByID(ctx, actor.CompanyID, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			statuses[id] = crew[i].ComplianceStatus
			continue
		}
		if err != nil {
			return nil, err
		}
		status := compliance.Evaluate(certificationsOf(emp), now, s.cfg.Compliance.WarningWindow()).Status
		if err := s.syncEmployeeStatus(ctx, tx, actor, emp, status, now); err != nil {
			return nil, err
		}
		statuses[id] = status
	}
	return statuses, nil
}

// syncEmployeeStatus 员工合规缓存与最新评估不一致时回写
func (s *workOrderService) syncEmployeeStatus(ctx context.Context, tx *repository.Repository, actor authctx.Actor, emp *model.ComplianceEmployee, status compliance.Status, now time.Time) error {
	if emp.ComplianceStatus == status {
		return nil
	}
	emp.ComplianceStatus = status
	emp.LastEvaluatedAt = &now
	emp.UpdatedBy = model.StrPtr(actor.UserID)
	return tx.Employee.Update(ctx, emp)
}

// crewComplianceFlags
//   - blocked:  有在岗员工当前合规状态（statuses 优先，其次派工快照）非 PASS
//   - approved: blocked 且所有非 PASS 员工的派工均已确认豁免
func crewComplianceFlags(crew []model.WorkOrderAssignment, statuses map[string]compliance.Status) (blocked, approved bool) {
	approved = true
	for i := range crew {
		status, ok := statuses[crew[i].EmployeeID]
		if !ok {
			status = crew[i].ComplianceStatus
		}
		if status == compliance.StatusPass {
			continue
		}
		blocked = true
		if !crew[i].OverrideAcknowledged {
			approved = false
		}
	}
	return blocked, blocked && approved
}

func validCrewRole(role string) bool {
	switch role {
	case CrewRoleLead, CrewRoleTechnician, CrewRoleHelper:
		return true
	}
	return false
}

func certificationsOf(emp *model.ComplianceEmployee) []compliance.Certification {
	certs := make([]compliance.Certification, 0, len(emp.Certifications))
	for i := range emp.Certifications {
		certs = append(certs, emp.Certifications[i].ToCore())
	}
	return certs
}

// notifyAfterCommit 事务提交后发送通知：超时受 mail.timeout 约束，失败只记日志
func (s *workOrderService) notifyAfterCommit(ctx context.Context, event, workOrderID string, fn func(ctx context.Context) error) {
	if s.notifier == nil || !s.cfg.Feature.NotificationsEnabled {
		return
	}
	timeout := s.cfg.Mail.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := fn(nctx); err != nil {
		s.logger.Warn("工单通知发送失败",
			zap.String("event", event),
			zap.String("work_order_id", workOrderID),
			zap.Error(err),
		)
	}
}
