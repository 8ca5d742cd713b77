package service

import (
	"time"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
)

// ── model → dto ──

func toWorkOrderResponse(wo *model.WorkOrder) *dto.WorkOrderResponse {
	next := workorder.AllowedNext(wo.Status)
	allowed := make([]string, 0, len(next))
	for _, st := range next {
		allowed = append(allowed, string(st))
	}

	resp := &dto.WorkOrderResponse{
		ID:                wo.WorkOrderID,
		Number:            wo.Number,
		Title:             wo.Title,
		Description:       wo.Description,
		Notes:             wo.Notes,
		SiteAddress:       wo.SiteAddress,
		ContactID:         wo.ContactID,
		EstimateID:        wo.EstimateID,
		ScheduledFor:      wo.ScheduledFor,
		DurationMinutes:   wo.DurationMinutes,
		Status:            string(wo.Status),
		AllowedNext:       allowed,
		ScheduledAt:       wo.ScheduledAt,
		StartedAt:         wo.StartedAt,
		CompletedAt:       wo.CompletedAt,
		CancelledAt:       wo.CancelledAt,
		ClosedAt:          wo.ClosedAt,
		ComplianceBlocked: wo.ComplianceBlocked,
		OverrideApproved:  wo.OverrideApproved,
		Version:           wo.Version,
		CreatedAt:         wo.CreatedAt,
		UpdatedAt:         wo.UpdatedAt,
	}
	if wo.Contact != nil {
		resp.Contact = &dto.ContactSummary{
			ID:    wo.Contact.ContactID,
			Name:  wo.Contact.DisplayName(),
			Phone: wo.Contact.Phone,
			Email: wo.Contact.Email,
		}
	}
	return resp
}

func toAssignmentResponse(a *model.WorkOrderAssignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:                   a.AssignmentID,
		WorkOrderID:          a.WorkOrderID,
		EmployeeID:           a.EmployeeID,
		Role:                 a.Role,
		ComplianceStatus:     string(a.ComplianceStatus),
		GapSummary:           a.GapSummary.Data(),
		OverrideAcknowledged: a.OverrideAcknowledged,
		OverrideReason:       a.OverrideReason,
		AssignedBy:           a.AssignedBy,
		AssignedAt:           a.AssignedAt,
		UnassignedAt:         a.UnassignedAt,
	}
	if a.Employee != nil {
		resp.EmployeeName = a.Employee.Name
	}
	return resp
}

func toWorkOrderAssetResponse(wa *model.WorkOrderAsset) *dto.WorkOrderAssetResponse {
	resp := &dto.WorkOrderAssetResponse{
		ID:           wa.WorkOrderAssetID,
		AssetID:      wa.AssetID,
		AssignedAt:   wa.AssignedAt,
		UnassignedAt: wa.UnassignedAt,
	}
	if wa.Asset != nil {
		resp.Name = wa.Asset.Name
		resp.AssetType = wa.Asset.AssetType
	}
	return resp
}

func toActivityResponse(a *model.WorkOrderActivity) dto.ActivityResponse {
	resp := dto.ActivityResponse{
		ID:        a.ActivityID,
		ActorID:   a.ActorID,
		Type:      a.Type,
		Message:   a.Message,
		Metadata:  a.Metadata,
		CreatedAt: a.CreatedAt,
	}
	if a.PreviousStatus != nil {
		resp.PreviousStatus = string(*a.PreviousStatus)
	}
	if a.NewStatus != nil {
		resp.NewStatus = string(*a.NewStatus)
	}
	return resp
}

func toEmployeeResponse(emp *model.ComplianceEmployee, baseURL string, now time.Time) *dto.EmployeeResponse {
	resp := &dto.EmployeeResponse{
		ID:               emp.EmployeeID,
		Name:             emp.Name,
		Email:            emp.Email,
		Phone:            emp.Phone,
		Title:            emp.Title,
		IsActive:         emp.IsActive,
		ComplianceStatus: string(emp.ComplianceStatus),
		LastEvaluatedAt:  emp.LastEvaluatedAt,
		VerifyURL:        verifyURL(baseURL, emp.VerifyToken),
	}
	for i := range emp.Certifications {
		resp.Certifications = append(resp.Certifications, toCertificationResponse(&emp.Certifications[i], now))
	}
	return resp
}

func toCertificationResponse(c *model.ComplianceCertification, now time.Time) dto.CertificationResponse {
	return dto.CertificationResponse{
		ID:              c.CertificationID,
		EmployeeID:      c.EmployeeID,
		Name:            c.Name,
		Required:        c.Required,
		Status:          string(c.Status),
		EffectiveStatus: string(compliance.EffectiveStatus(c.ToCore(), now)),
		IssuedAt:        c.IssuedAt,
		ExpiresAt:       c.ExpiresAt,
		HasProof:        c.ProofKey != "",
		Notes:           c.Notes,
	}
}

func toDocumentResponse(d *model.ComplianceDocument) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:              d.DocumentID,
		EmployeeID:      d.EmployeeID,
		CertificationID: d.CertificationID,
		FileName:        d.FileName,
		ContentType:     d.ContentType,
		Hash:            d.Hash,
		SizeBytes:       d.SizeBytes,
		CreatedAt:       d.CreatedAt,
	}
}

func toContactResponse(c *model.Contact) *dto.ContactResponse {
	return &dto.ContactResponse{
		ID:          c.ContactID,
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		Email:       c.Email,
		Phone:       c.Phone,
		CompanyName: c.CompanyName,
		Notes:       c.Notes,
		CreatedAt:   c.CreatedAt,
	}
}

func toAssetResponse(a *model.Asset) *dto.AssetResponse {
	return &dto.AssetResponse{
		ID:           a.AssetID,
		Name:         a.Name,
		AssetType:    a.AssetType,
		SerialNumber: a.SerialNumber,
		IsActive:     a.IsActive,
	}
}

func toPresetResponse(p *model.TaskPreset) *dto.PresetResponse {
	return &dto.PresetResponse{
		ID:          p.PresetID,
		Name:        p.Name,
		Description: p.Description,
		IsActive:    p.IsActive,
	}
}

func toRevisionResponse(r *model.EstimateRevision) dto.RevisionResponse {
	items := r.LineItems.Data()
	lines := make([]dto.LineItemResponse, 0, len(items))
	for _, it := range items {
		lines = append(lines, dto.LineItemResponse{
			Description:    it.Description,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			AmountCents:    it.Quantity * it.UnitPriceCents,
		})
	}
	return dto.RevisionResponse{
		ID:             r.RevisionID,
		RevisionNumber: r.RevisionNumber,
		LineItems:      lines,
		SubtotalCents:  r.SubtotalCents,
		TaxRateBps:     r.TaxRateBps,
		TaxCents:       r.TaxCents,
		TotalCents:     r.TotalCents,
		Notes:          r.Notes,
		CreatedBy:      r.CreatedBy,
		CreatedAt:      r.CreatedAt,
	}
}

func toEstimateResponse(e *model.Estimate, withRevisions bool) *dto.EstimateResponse {
	resp := &dto.EstimateResponse{
		ID:              e.EstimateID,
		Number:          e.Number,
		Title:           e.Title,
		ContactID:       e.ContactID,
		SiteAddress:     e.SiteAddress,
		Status:          e.Status,
		CurrentRevision: e.CurrentRevision,
		Locked:          e.Locked,
		SentAt:          e.SentAt,
		ApprovedAt:      e.ApprovedAt,
		ApprovedBy:      e.ApprovedBy,
		DeclinedAt:      e.DeclinedAt,
		WorkOrderID:     e.WorkOrderID,
		Version:         e.Version,
		CreatedAt:       e.CreatedAt,
	}
	for i := range e.Revisions {
		rev := toRevisionResponse(&e.Revisions[i])
		if e.Revisions[i].RevisionNumber == e.CurrentRevision {
			latest := rev
			resp.Latest = &latest
		}
		if withRevisions {
			resp.Revisions = append(resp.Revisions, rev)
		}
	}
	return resp
}

func verifyURL(baseURL, token string) string {
	if token == "" {
		return ""
	}
	return baseURL + "/api/v1/verify/" + token
}
