package dto

import (
	"time"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
)

// ── 工单模块 DTO ──

// CreateWorkOrderRequest 创建工单
type CreateWorkOrderRequest struct {
	Title           string     `json:"title"            binding:"required,max=200"`
	Description     string     `json:"description"      binding:"omitempty,max=5000"`
	SiteAddress     string     `json:"site_address"     binding:"omitempty,max=500"`
	ContactID       *string    `json:"contact_id"       binding:"omitempty,uuid"`
	ScheduledFor    *time.Time `json:"scheduled_for"`
	DurationMinutes int        `json:"duration_minutes" binding:"omitempty,min=15,max=1440"`
}

// WorkOrderListRequest 工单列表查询参数
type WorkOrderListRequest struct {
	PaginationRequest
	Status  string `form:"status"  binding:"omitempty,oneof=DRAFT SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// TransitionRequest 工单状态流转
// Version 可选：客户端持有的版本号，与当前不一致时返回冲突
type TransitionRequest struct {
	Status  string `json:"status"  binding:"required,oneof=DRAFT SCHEDULED IN_PROGRESS COMPLETED CANCELLED"`
	Version *int   `json:"version" binding:"omitempty,min=1"`
}

// UpdateNotesRequest 修改工单备注
type UpdateNotesRequest struct {
	Notes   string `json:"notes"   binding:"max=10000"`
	Version *int   `json:"version" binding:"omitempty,min=1"`
}

// AssignEmployeeRequest 派工
type AssignEmployeeRequest struct {
	EmployeeID     string `json:"employee_id"     binding:"required,uuid"`
	Role           string `json:"role"            binding:"omitempty,oneof=lead technician helper"`
	ForceOverride  bool   `json:"force_override"`
	OverrideReason string `json:"override_reason" binding:"max=500"`
}

// UpdateAssignmentRequest 修改派工角色
type UpdateAssignmentRequest struct {
	Role string `json:"role" binding:"required,oneof=lead technician helper"`
}

// AssignAssetRequest 设备派用
type AssignAssetRequest struct {
	AssetID string `json:"asset_id" binding:"required,uuid"`
}

// AddPresetRequest 添加作业预设
type AddPresetRequest struct {
	PresetID string `json:"preset_id" binding:"required,uuid"`
}

// CalendarRequest 日历导出区间（yyyy-mm-dd，左闭右开）
type CalendarRequest struct {
	From string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To   string `form:"to"   binding:"omitempty,datetime=2006-01-02"`
}

// ── 工单模块响应 ──

// WorkOrderResponse 工单信息
type WorkOrderResponse struct {
	ID                string          `json:"id"`
	Number            string          `json:"number"`
	Title             string          `json:"title"`
	Description       string          `json:"description,omitempty"`
	Notes             string          `json:"notes,omitempty"`
	SiteAddress       string          `json:"site_address,omitempty"`
	ContactID         *string         `json:"contact_id,omitempty"`
	Contact           *ContactSummary `json:"contact,omitempty"`
	EstimateID        *string         `json:"estimate_id,omitempty"`
	ScheduledFor      *time.Time      `json:"scheduled_for,omitempty"`
	DurationMinutes   int             `json:"duration_minutes"`
	Status            string          `json:"status"`
	AllowedNext       []string        `json:"allowed_next"`
	ScheduledAt       *time.Time      `json:"scheduled_at,omitempty"`
	StartedAt         *time.Time      `json:"started_at,omitempty"`
	CompletedAt       *time.Time      `json:"completed_at,omitempty"`
	CancelledAt       *time.Time      `json:"cancelled_at,omitempty"`
	ClosedAt          *time.Time      `json:"closed_at,omitempty"`
	ComplianceBlocked bool            `json:"compliance_blocked"`
	OverrideApproved  bool            `json:"override_approved"`
	Version           int             `json:"version"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// WorkOrderDetailResponse 工单详情（含在岗人员、设备、预设）
type WorkOrderDetailResponse struct {
	WorkOrderResponse
	Crew    []AssignmentResponse     `json:"crew"`
	Assets  []WorkOrderAssetResponse `json:"assets"`
	Presets []PresetResponse         `json:"presets"`
}

// AssignmentResponse 派工记录
type AssignmentResponse struct {
	ID                   string                `json:"id"`
	WorkOrderID          string                `json:"work_order_id"`
	EmployeeID           string                `json:"employee_id"`
	EmployeeName         string                `json:"employee_name,omitempty"`
	Role                 string                `json:"role"`
	ComplianceStatus     string                `json:"compliance_status"`
	GapSummary           compliance.GapSummary `json:"gap_summary"`
	OverrideAcknowledged bool                  `json:"override_acknowledged"`
	OverrideReason       string                `json:"override_reason,omitempty"`
	AssignedBy           string                `json:"assigned_by"`
	AssignedAt           time.Time             `json:"assigned_at"`
	UnassignedAt         *time.Time            `json:"unassigned_at,omitempty"`
}

// AssignResult 派工结果；Created=false 表示该员工已在岗，未做任何写入
type AssignResult struct {
	Assignment AssignmentResponse  `json:"assignment"`
	Created    bool                `json:"created"`
	Snapshot   compliance.Snapshot `json:"snapshot"`
}

// WorkOrderAssetResponse 工单设备
type WorkOrderAssetResponse struct {
	ID           string     `json:"id"`
	AssetID      string     `json:"asset_id"`
	Name         string     `json:"name,omitempty"`
	AssetType    string     `json:"asset_type,omitempty"`
	AssignedAt   time.Time  `json:"assigned_at"`
	UnassignedAt *time.Time `json:"unassigned_at,omitempty"`
}

// ActivityResponse 工单活动
type ActivityResponse struct {
	ID             string                 `json:"id"`
	ActorID        string                 `json:"actor_id"`
	Type           string                 `json:"type"`
	PreviousStatus string                 `json:"previous_status,omitempty"`
	NewStatus      string                 `json:"new_status,omitempty"`
	Message        string                 `json:"message"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}
