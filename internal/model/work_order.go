package model

import (
	"time"

	"gorm.io/datatypes"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
)

// WorkOrder 工单 — 对应 work_orders（不做物理删除）
type WorkOrder struct {
	WorkOrderID       string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"work_order_id"`
	CompanyID         string           `gorm:"type:uuid;not null;index"                       json:"company_id"`
	Number            string           `gorm:"type:varchar(32);not null;uniqueIndex"          json:"number"`
	Title             string           `gorm:"type:varchar(200);not null"                     json:"title"`
	Description       string           `gorm:"type:text"                                      json:"description,omitempty"`
	Notes             string           `gorm:"type:text"                                      json:"notes,omitempty"`
	SiteAddress       string           `gorm:"type:varchar(500)"                              json:"site_address,omitempty"`
	ContactID         *string          `gorm:"type:uuid"                                      json:"contact_id,omitempty"`
	EstimateID        *string          `gorm:"type:uuid"                                      json:"estimate_id,omitempty"`
	ScheduledFor      *time.Time       `json:"scheduled_for,omitempty"`
	DurationMinutes   int              `gorm:"not null;default:120"                           json:"duration_minutes"`
	Status            workorder.Status `gorm:"type:varchar(20);not null;default:'DRAFT'"      json:"status"`
	ComplianceBlocked bool             `gorm:"not null;default:false"                         json:"compliance_blocked"`
	OverrideApproved  bool             `gorm:"not null;default:false"                         json:"override_approved"`
	workorder.Timeline
	VersionedModel

	Contact *Contact `gorm:"foreignKey:ContactID;references:ContactID" json:"contact,omitempty"`
}

// TableName 指定表名
func (WorkOrder) TableName() string { return "work_orders" }

// WorkOrderAssignment 工单人员派工 — 对应 work_order_assignments
// 同一 (work_order_id, employee_id) 至多一条 unassigned_at 为空的记录
type WorkOrderAssignment struct {
	AssignmentID         string                                    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	WorkOrderID          string                                    `gorm:"type:uuid;not null;index"                       json:"work_order_id"`
	EmployeeID           string                                    `gorm:"type:uuid;not null;index"                       json:"employee_id"`
	Role                 string                                    `gorm:"type:varchar(20);not null;default:'technician'" json:"role"` // lead | technician | helper
	ComplianceStatus     compliance.Status                         `gorm:"type:varchar(20);not null"                      json:"compliance_status"`
	GapSummary           datatypes.JSONType[compliance.GapSummary] `gorm:"type:jsonb;not null"                            json:"gap_summary"`
	OverrideAcknowledged bool                                      `gorm:"not null;default:false"                         json:"override_acknowledged"`
	OverrideReason       string                                    `gorm:"type:varchar(500)"                              json:"override_reason,omitempty"`
	AssignedBy           string                                    `gorm:"type:uuid;not null"                             json:"assigned_by"`
	AssignedAt           time.Time                                 `gorm:"not null"                                       json:"assigned_at"`
	UnassignedAt         *time.Time                                `json:"unassigned_at,omitempty"`
	UnassignedBy         *string                                   `gorm:"type:uuid"                                      json:"unassigned_by,omitempty"`
	BaseModel

	Employee *ComplianceEmployee `gorm:"foreignKey:EmployeeID;references:EmployeeID" json:"employee,omitempty"`
}

// TableName 指定表名
func (WorkOrderAssignment) TableName() string { return "work_order_assignments" }

// Active 是否仍在派工中
func (a *WorkOrderAssignment) Active() bool { return a.UnassignedAt == nil }

// WorkOrderAsset 工单设备派用 — 对应 work_order_assets
type WorkOrderAsset struct {
	WorkOrderAssetID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"work_order_asset_id"`
	WorkOrderID      string     `gorm:"type:uuid;not null;index"                       json:"work_order_id"`
	AssetID          string     `gorm:"type:uuid;not null"                             json:"asset_id"`
	AssignedBy       string     `gorm:"type:uuid;not null"                             json:"assigned_by"`
	AssignedAt       time.Time  `gorm:"not null"                                       json:"assigned_at"`
	UnassignedAt     *time.Time `json:"unassigned_at,omitempty"`
	UnassignedBy     *string    `gorm:"type:uuid"                                      json:"unassigned_by,omitempty"`

	Asset *Asset `gorm:"foreignKey:AssetID;references:AssetID" json:"asset,omitempty"`
}

// TableName 指定表名
func (WorkOrderAsset) TableName() string { return "work_order_assets" }

// WorkOrderPreset 工单作业预设 — 对应 work_order_presets
type WorkOrderPreset struct {
	WorkOrderID string    `gorm:"type:uuid;primaryKey" json:"work_order_id"`
	PresetID    string    `gorm:"type:uuid;primaryKey" json:"preset_id"`
	AddedBy     string    `gorm:"type:uuid;not null"   json:"added_by"`
	CreatedAt   time.Time `gorm:"not null"             json:"created_at"`

	Preset *TaskPreset `gorm:"foreignKey:PresetID;references:PresetID" json:"preset,omitempty"`
}

// TableName 指定表名
func (WorkOrderPreset) TableName() string { return "work_order_presets" }

// WorkOrderActivity 工单活动流水 — 对应 work_order_activities（只追加）
type WorkOrderActivity struct {
	ActivityID     string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	WorkOrderID    string            `gorm:"type:uuid;not null;index"                       json:"work_order_id"`
	ActorID        string            `gorm:"type:uuid;not null"                             json:"actor_id"`
	Type           string            `gorm:"type:varchar(40);not null"                      json:"type"`
	PreviousStatus *workorder.Status `gorm:"type:varchar(20)"                               json:"previous_status,omitempty"`
	NewStatus      *workorder.Status `gorm:"type:varchar(20)"                               json:"new_status,omitempty"`
	Message        string            `gorm:"type:varchar(500);not null"                     json:"message"`
	Metadata       datatypes.JSONMap `gorm:"type:jsonb"                                     json:"metadata,omitempty"`
	CreatedAt      time.Time         `gorm:"not null;index"                                 json:"created_at"`
}

// TableName 指定表名
func (WorkOrderActivity) TableName() string { return "work_order_activities" }

// 工单活动类型
const (
	ActivityCreated          = "created"
	ActivityStatusChanged    = "status_changed"
	ActivityEmployeeAssigned = "employee_assigned"
	ActivityEmployeeRemoved  = "employee_unassigned"
	ActivityAssignmentEdited = "assignment_updated"
	ActivityAssetAssigned    = "asset_assigned"
	ActivityAssetRemoved     = "asset_unassigned"
	ActivityPresetAdded      = "preset_added"
	ActivityPresetRemoved    = "preset_removed"
	ActivityNotesUpdated     = "notes_updated"
)
