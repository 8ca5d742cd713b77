package dto

import "time"

// ── 报价模块 DTO ──

// LineItemRequest 报价明细行（金额单位：分）
type LineItemRequest struct {
	Description    string `json:"description"      binding:"required,max=500"`
	Quantity       int64  `json:"quantity"         binding:"required,min=1,max=1000000"`
	UnitPriceCents int64  `json:"unit_price_cents" binding:"min=0,max=10000000000"`
}

// CreateEstimateRequest 新建报价单（生成第 1 版修订）
type CreateEstimateRequest struct {
	Title       string            `json:"title"        binding:"required,max=200"`
	ContactID   *string           `json:"contact_id"   binding:"omitempty,uuid"`
	SiteAddress string            `json:"site_address" binding:"omitempty,max=500"`
	LineItems   []LineItemRequest `json:"line_items"   binding:"required,min=1,max=500,dive"`
	TaxRateBps  int64             `json:"tax_rate_bps" binding:"min=0,max=10000"`
	Notes       string            `json:"notes"        binding:"omitempty,max=5000"`
}

// AddRevisionRequest 追加修订
type AddRevisionRequest struct {
	LineItems  []LineItemRequest `json:"line_items"   binding:"required,min=1,max=500,dive"`
	TaxRateBps int64             `json:"tax_rate_bps" binding:"min=0,max=10000"`
	Notes      string            `json:"notes"        binding:"omitempty,max=5000"`
	Version    *int              `json:"version"      binding:"omitempty,min=1"`
}

// EstimateListRequest 报价单列表查询参数
type EstimateListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=DRAFT SENT APPROVED DECLINED"`
}

// ConvertEstimateRequest 报价单转工单
type ConvertEstimateRequest struct {
	ScheduledFor *time.Time `json:"scheduled_for"`
}

// ── 报价模块响应 ──

// LineItemResponse 明细行
type LineItemResponse struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	AmountCents    int64  `json:"amount_cents"`
}

// RevisionResponse 修订
type RevisionResponse struct {
	ID             string             `json:"id"`
	RevisionNumber int                `json:"revision_number"`
	LineItems      []LineItemResponse `json:"line_items"`
	SubtotalCents  int64              `json:"subtotal_cents"`
	TaxRateBps     int64              `json:"tax_rate_bps"`
	TaxCents       int64              `json:"tax_cents"`
	TotalCents     int64              `json:"total_cents"`
	Notes          string             `json:"notes,omitempty"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      time.Time          `json:"created_at"`
}

// EstimateResponse 报价单
type EstimateResponse struct {
	ID              string             `json:"id"`
	Number          string             `json:"number"`
	Title           string             `json:"title"`
	ContactID       *string            `json:"contact_id,omitempty"`
	SiteAddress     string             `json:"site_address,omitempty"`
	Status          string             `json:"status"`
	CurrentRevision int                `json:"current_revision"`
	Locked          bool               `json:"locked"`
	SentAt          *time.Time         `json:"sent_at,omitempty"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty"`
	ApprovedBy      *string            `json:"approved_by,omitempty"`
	DeclinedAt      *time.Time         `json:"declined_at,omitempty"`
	WorkOrderID     *string            `json:"work_order_id,omitempty"`
	Version         int                `json:"version"`
	Latest          *RevisionResponse  `json:"latest,omitempty"`
	Revisions       []RevisionResponse `json:"revisions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}
