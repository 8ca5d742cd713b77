package service

import (
	"context"
	"time"

	"gorm.io/datatypes"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
)

// 审计动作
const (
	AuditWorkOrderCreated     = "work_order.created"
	AuditWorkOrderStatus      = "work_order.status_changed"
	AuditWorkOrderNotes       = "work_order.notes_updated"
	AuditEmployeeAssigned     = "work_order.employee_assigned"
	AuditComplianceOverride   = "work_order.compliance_override"
	AuditEmployeeUnassigned   = "work_order.employee_unassigned"
	AuditAssignmentUpdated    = "work_order.assignment_updated"
	AuditAssetAssigned        = "work_order.asset_assigned"
	AuditAssetUnassigned      = "work_order.asset_unassigned"
	AuditPresetAdded          = "work_order.preset_added"
	AuditPresetRemoved        = "work_order.preset_removed"
	AuditEmployeeCreated      = "compliance.employee_created"
	AuditEmployeeUpdated      = "compliance.employee_updated"
	AuditCertificationAdded   = "compliance.certification_added"
	AuditCertificationUpdated = "compliance.certification_updated"
	AuditProofUploaded        = "compliance.proof_uploaded"
	AuditEstimateCreated      = "estimate.created"
	AuditEstimateRevised      = "estimate.revised"
	AuditEstimateStatus       = "estimate.status_changed"
	AuditEstimateConverted    = "estimate.converted"
)

func writeAudit(ctx context.Context, repo *repository.Repository, actor authctx.Actor, action, entityType, entityID string, meta map[string]interface{}, now time.Time) error {
	return repo.AuditLog.Create(ctx, &model.AccessAuditLog{
		CompanyID:  actor.CompanyID,
		ActorID:    actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Metadata:   datatypes.JSONMap(meta),
		IP:         actor.IP,
		CreatedAt:  now,
	})
}

type activityEntry struct {
	typ     string
	message string
	from    *workorder.Status
	to      *workorder.Status
	meta    map[string]interface{}
}

func writeActivity(ctx context.Context, repo *repository.Repository, actor authctx.Actor, workOrderID string, e activityEntry, now time.Time) error {
	return repo.Activity.Create(ctx, &model.WorkOrderActivity{
		WorkOrderID:    workOrderID,
		ActorID:        actor.UserID,
		Type:           e.typ,
		PreviousStatus: e.from,
		NewStatus:      e.to,
		Message:        e.message,
		Metadata:       datatypes.JSONMap(e.meta),
		CreatedAt:      now,
	})
}
