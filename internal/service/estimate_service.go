package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// EstimateService 报价业务接口
//
// 状态：DRAFT → SENT → APPROVED | DECLINED；APPROVED / DECLINED 后锁定，不可再修订。
// APPROVED 的报价单可转为工单，且只能转一次。
type EstimateService interface {
	Create(ctx context.Context, actor authctx.Actor, req *dto.CreateEstimateRequest) (*dto.EstimateResponse, ChangeSet, error)
	Get(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, error)
	List(ctx context.Context, actor authctx.Actor, req *dto.EstimateListRequest) ([]dto.EstimateResponse, int64, error)
	AddRevision(ctx context.Context, actor authctx.Actor, id string, req *dto.AddRevisionRequest) (*dto.EstimateResponse, ChangeSet, error)
	Send(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, ChangeSet, error)
	Approve(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, ChangeSet, error)
	Decline(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, ChangeSet, error)
	ConvertToWorkOrder(ctx context.Context, actor authctx.Actor, id string, req *dto.ConvertEstimateRequest) (*dto.WorkOrderResponse, ChangeSet, error)
}

type estimateService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewEstimateService 创建 EstimateService 实例
func NewEstimateService(repo *repository.Repository, logger *zap.Logger) EstimateService {
	return &estimateService{repo: repo, logger: logger, now: utcNow}
}

// ── 金额计算 ──

// Totals 报价金额（分）
type Totals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// ComputeTotals subtotal = Σ qty × unit_price；tax = subtotal × bps / 10000，四舍五入
func ComputeTotals(items []model.LineItem, taxRateBps int64) Totals {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Quantity * it.UnitPriceCents
	}
	tax := (subtotal*taxRateBps + 5000) / 10000
	return Totals{Subtotal: subtotal, Tax: tax, Total: subtotal + tax}
}

// 明细上限：subtotal × 10000（最大税率）仍在 int64 范围内
const (
	maxLineItems      = 500
	maxQuantity       = 1_000_000
	maxUnitPriceCents = 10_000_000_000
	maxSubtotalCents  = 100_000_000_000_000
)

func toLineItems(reqs []dto.LineItemRequest) ([]model.LineItem, error) {
	if len(reqs) == 0 {
		return nil, pkgerrors.Invalid("line_items", "至少需要一行明细")
	}
	if len(reqs) > maxLineItems {
		return nil, pkgerrors.Invalid("line_items", fmt.Sprintf("明细不能超过 %d 行", maxLineItems))
	}
	items := make([]model.LineItem, 0, len(reqs))
	var subtotal int64
	for i, r := range reqs {
		desc := strings.TrimSpace(r.Description)
		if desc == "" {
			return nil, pkgerrors.Invalid(fmt.Sprintf("line_items[%d].description", i), "描述不能为空")
		}
		if r.Quantity <= 0 {
			return nil, pkgerrors.Invalid(fmt.Sprintf("line_items[%d].quantity", i), "数量必须大于 0")
		}
		if r.Quantity > maxQuantity {
			return nil, pkgerrors.Invalid(fmt.Sprintf("line_items[%d].quantity", i), fmt.Sprintf("数量不能超过 %d", maxQuantity))
		}
		if r.UnitPriceCents < 0 {
			return nil, pkgerrors.Invalid(fmt.Sprintf("line_items[%d].unit_price_cents", i), "单价不能为负数")
		}
		if r.UnitPriceCents > maxUnitPriceCents {
			return nil, pkgerrors.Invalid(fmt.Sprintf("line_items[%d].unit_price_cents", i), fmt.Sprintf("单价不能超过 %d 分", int64(maxUnitPriceCents)))
		}
		subtotal += r.Quantity * r.UnitPriceCents
		if subtotal > maxSubtotalCents {
			return nil, pkgerrors.Invalid("line_items", "报价金额超出上限")
		}
		items = append(items, model.LineItem{Description: desc, Quantity: r.Quantity, UnitPriceCents: r.UnitPriceCents})
	}
	return items, nil
}

func validTaxRate(bps int64) error {
	if bps < 0 || bps > 10000 {
		return pkgerrors.Invalid("tax_rate_bps", "税率必须在 0-10000 之间")
	}
	return nil
}

func newRevision(actor authctx.Actor, estimateID string, number int, items []model.LineItem, taxRateBps int64, notes string, now time.Time) *model.EstimateRevision {
	t := ComputeTotals(items, taxRateBps)
	return &model.EstimateRevision{
		RevisionID:     uuid.NewString(),
		EstimateID:     estimateID,
		RevisionNumber: number,
		LineItems:      datatypes.NewJSONType(items),
		SubtotalCents:  t.Subtotal,
		TaxRateBps:     taxRateBps,
		TaxCents:       t.Tax,
		TotalCents:     t.Total,
		Notes:          notes,
		CreatedBy:      actor.UserID,
		CreatedAt:      now,
	}
}

// ═══════════════════════════════════════════════════════════
// 查询
// ═══════════════════════════════════════════════════════════

func (s *estimateService) Get(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, error) {
	est, err := s.repo.Estimate.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "estimate", id)
	}
	return toEstimateResponse(est, true), nil
}

func (s *estimateService) List(ctx context.Context, actor authctx.Actor, req *dto.EstimateListRequest) ([]dto.EstimateResponse, int64, error) {
	list, total, err := s.repo.Estimate.List(ctx, actor.CompanyID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出报价单失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.EstimateResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEstimateResponse(&list[i], false))
	}
	return result, total, nil
}

// ═══════════════════════════════════════════════════════════
// Create / AddRevision
// ═══════════════════════════════════════════════════════════

func (s *estimateService) Create(ctx context.Context, actor authctx.Actor, req *dto.CreateEstimateRequest) (*dto.EstimateResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanEstimate()); err != nil {
		return nil, nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, nil, pkgerrors.Invalid("title", "标题不能为空")
	}
	if err := validTaxRate(req.TaxRateBps); err != nil {
		return nil, nil, err
	}
	items, err := toLineItems(req.LineItems)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	est := &model.Estimate{
		EstimateID:      uuid.NewString(),
		CompanyID:       actor.CompanyID,
		ContactID:       req.ContactID,
		Number:          generateNumber("EST", now),
		Title:           title,
		SiteAddress:     strings.TrimSpace(req.SiteAddress),
		Status:          model.EstimateDraft,
		CurrentRevision: 1,
	}
	est.Version = 1
	est.CreatedAt = now
	est.UpdatedAt = now
	est.CreatedBy = model.StrPtr(actor.UserID)
	rev := newRevision(actor, est.EstimateID, 1, items, req.TaxRateBps, req.Notes, now)

	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		if est.ContactID != nil {
			if _, err := tx.Contact.GetByID(ctx, actor.CompanyID, *est.ContactID); err != nil {
				return notFound(err, "contact", *est.ContactID)
			}
		}
		if err := tx.Estimate.Create(ctx, est); err != nil {
			return err
		}
		if err := tx.Estimate.CreateRevision(ctx, rev); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditEstimateCreated, EntityEstimate, est.EstimateID, map[string]interface{}{
			"number":      est.Number,
			"total_cents": rev.TotalCents,
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "创建报价单失败", "", err)
	}

	est.Revisions = []model.EstimateRevision{*rev}
	return toEstimateResponse(est, true), ChangeSet{}.Add(EntityEstimate, est.EstimateID), nil
}

func (s *estimateService) AddRevision(ctx context.Context, actor authctx.Actor, id string, req *dto.AddRevisionRequest) (*dto.EstimateResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanEstimate()); err != nil {
		return nil, nil, err
	}
	if err := validTaxRate(req.TaxRateBps); err != nil {
		return nil, nil, err
	}
	items, err := toLineItems(req.LineItems)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	var est *model.Estimate
	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		est, err = tx.Estimate.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return notFound(err, "estimate", id)
		}
		if est.Locked {
			return pkgerrors.ErrEstimateLocked
		}
		if req.Version != nil && *req.Version != est.Version {
			return pkgerrors.ErrOptimisticLock
		}

		rev := newRevision(actor, est.EstimateID, est.CurrentRevision+1, items, req.TaxRateBps, req.Notes, now)
		est.CurrentRevision = rev.RevisionNumber
		est.UpdatedBy = model.StrPtr(actor.UserID)
		if err := tx.Estimate.Update(ctx, est); err != nil {
			return err
		}
		if err := tx.Estimate.CreateRevision(ctx, rev); err != nil {
			return err
		}
		est.Revisions = append(est.Revisions, *rev)

		return writeAudit(ctx, tx, actor, AuditEstimateRevised, EntityEstimate, est.EstimateID, map[string]interface{}{
			"revision":    rev.RevisionNumber,
			"total_cents": rev.TotalCents,
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "追加报价修订失败", id, err)
	}

	return toEstimateResponse(est, true), ChangeSet{}.Add(EntityEstimate, est.EstimateID), nil
}

// ═══════════════════════════════════════════════════════════
// 状态流转
// ═══════════════════════════════════════════════════════════

func (s *estimateService) Send(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanEstimate()); err != nil {
		return nil, nil, err
	}
	return s.transition(ctx, actor, id, model.EstimateDraft, model.EstimateSent, func(est *model.Estimate, now time.Time) {
		est.SentAt = &now
	})
}

func (s *estimateService) Approve(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanApproveEstimate()); err != nil {
		return nil, nil, err
	}
	return s.transition(ctx, actor, id, model.EstimateSent, model.EstimateApproved, func(est *model.Estimate, now time.Time) {
		est.ApprovedAt = &now
		est.ApprovedBy = model.StrPtr(actor.UserID)
		est.Locked = true
	})
}

func (s *estimateService) Decline(ctx context.Context, actor authctx.Actor, id string) (*dto.EstimateResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanEstimate()); err != nil {
		return nil, nil, err
	}
	return s.transition(ctx, actor, id, model.EstimateSent, model.EstimateDeclined, func(est *model.Estimate, now time.Time) {
		est.DeclinedAt = &now
		est.Locked = true
	})
}

func (s *estimateService) transition(ctx context.Context, actor authctx.Actor, id, from, to string, apply func(est *model.Estimate, now time.Time)) (*dto.EstimateResponse, ChangeSet, error) {
	now := s.now()
	var est *model.Estimate
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		est, err = tx.Estimate.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return notFound(err, "estimate", id)
		}
		if est.Status != from {
			if est.Locked {
				return pkgerrors.ErrEstimateLocked
			}
			return fmt.Errorf("报价单 %s → %s: %w", est.Status, to, pkgerrors.ErrInvalidTransition)
		}

		est.Status = to
		apply(est, now)
		est.UpdatedBy = model.StrPtr(actor.UserID)
		if err := tx.Estimate.Update(ctx, est); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditEstimateStatus, EntityEstimate, est.EstimateID, map[string]interface{}{
			"from": from,
			"to":   to,
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "报价单状态流转失败", id, err)
	}
	return toEstimateResponse(est, true), ChangeSet{}.Add(EntityEstimate, est.EstimateID), nil
}

// ═══════════════════════════════════════════════════════════
// ConvertToWorkOrder — 已批准报价单转工单（只能一次）
// ═══════════════════════════════════════════════════════════

func (s *estimateService) ConvertToWorkOrder(ctx context.Context, actor authctx.Actor, id string, req *dto.ConvertEstimateRequest) (*dto.WorkOrderResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanDispatch()); err != nil {
		return nil, nil, err
	}

	now := s.now()
	var wo *model.WorkOrder
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		est, err := tx.Estimate.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return notFound(err, "estimate", id)
		}
		if est.Status != model.EstimateApproved {
			return fmt.Errorf("报价单状态为 %s，仅已批准的报价单可转工单: %w", est.Status, pkgerrors.ErrInvalidTransition)
		}
		if est.WorkOrderID != nil {
			return fmt.Errorf("报价单已转为工单 %s: %w", *est.WorkOrderID, pkgerrors.ErrInvalidTransition)
		}

		wo = newWorkOrder(actor, est.Title, now)
		wo.SiteAddress = est.SiteAddress
		wo.ContactID = est.ContactID
		wo.EstimateID = &est.EstimateID
		wo.Description = describeRevision(est)
		if req != nil {
			wo.ScheduledFor = req.ScheduledFor
		}
		if err := createWorkOrder(ctx, tx, actor, wo, "由报价单 "+est.Number+" 转入", now); err != nil {
			return err
		}

		est.WorkOrderID = &wo.WorkOrderID
		est.UpdatedBy = model.StrPtr(actor.UserID)
		if err := tx.Estimate.Update(ctx, est); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditEstimateConverted, EntityEstimate, est.EstimateID, map[string]interface{}{
			"work_order_id": wo.WorkOrderID,
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "报价单转工单失败", id, err)
	}

	return toWorkOrderResponse(wo), ChangeSet{}.Add(EntityEstimate, id).Add(EntityWorkOrder, wo.WorkOrderID), nil
}

// describeRevision 以当前修订的明细生成工单描述
func describeRevision(est *model.Estimate) string {
	for i := range est.Revisions {
		rev := &est.Revisions[i]
		if rev.RevisionNumber != est.CurrentRevision {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "报价单 %s 第 %d 版\n", est.Number, rev.RevisionNumber)
		for _, it := range rev.LineItems.Data() {
			fmt.Fprintf(&b, "- %s × %d\n", it.Description, it.Quantity)
		}
		return strings.TrimRight(b.String(), "\n")
	}
	return ""
}
