package model

import (
	"time"

	"gorm.io/datatypes"
)

// 报价单状态
const (
	EstimateDraft    = "DRAFT"
	EstimateSent     = "SENT"
	EstimateApproved = "APPROVED"
	EstimateDeclined = "DECLINED"
)

// Estimate 报价单 — 对应 estimates
type Estimate struct {
	EstimateID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"estimate_id"`
	CompanyID       string     `gorm:"type:uuid;not null;index"                       json:"company_id"`
	ContactID       *string    `gorm:"type:uuid"                                      json:"contact_id,omitempty"`
	Number          string     `gorm:"type:varchar(32);not null;uniqueIndex"          json:"number"`
	Title           string     `gorm:"type:varchar(200);not null"                     json:"title"`
	SiteAddress     string     `gorm:"type:varchar(500)"                              json:"site_address,omitempty"`
	Status          string     `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	CurrentRevision int        `gorm:"not null;default:1"                             json:"current_revision"`
	Locked          bool       `gorm:"not null;default:false"                         json:"locked"`
	SentAt          *time.Time `json:"sent_at,omitempty"`
	ApprovedAt      *time.Time `json:"approved_at,omitempty"`
	ApprovedBy      *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	DeclinedAt      *time.Time `json:"declined_at,omitempty"`
	WorkOrderID     *string    `gorm:"type:uuid"                                      json:"work_order_id,omitempty"`
	VersionedModel

	Revisions []EstimateRevision `gorm:"foreignKey:EstimateID" json:"revisions,omitempty"`
}

// TableName 指定表名
func (Estimate) TableName() string { return "estimates" }

// LineItem 报价明细行（金额单位：分）
type LineItem struct {
	Description    string `json:"description"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

// EstimateRevision 报价修订（只追加）— 对应 estimate_revisions
type EstimateRevision struct {
	RevisionID     string                         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"revision_id"`
	EstimateID     string                         `gorm:"type:uuid;not null;index"                       json:"estimate_id"`
	RevisionNumber int                            `gorm:"not null"                                       json:"revision_number"`
	LineItems      datatypes.JSONType[[]LineItem] `gorm:"type:jsonb;not null"                            json:"line_items"`
	SubtotalCents  int64                          `gorm:"not null"                                       json:"subtotal_cents"`
	TaxRateBps     int64                          `gorm:"not null;default:0"                             json:"tax_rate_bps"`
	TaxCents       int64                          `gorm:"not null"                                       json:"tax_cents"`
	TotalCents     int64                          `gorm:"not null"                                       json:"total_cents"`
	Notes          string                         `gorm:"type:text"                                      json:"notes,omitempty"`
	CreatedBy      string                         `gorm:"type:uuid;not null"                             json:"created_by"`
	CreatedAt      time.Time                      `gorm:"not null"                                       json:"created_at"`
}

// TableName 指定表名
func (EstimateRevision) TableName() string { return "estimate_revisions" }
