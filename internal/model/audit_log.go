package model

import (
	"time"

	"gorm.io/datatypes"
)

// AccessAuditLog 访问审计日志 — 对应 access_audit_logs（只追加，不修改不删除）
type AccessAuditLog struct {
	AuditLogID string            `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_log_id"`
	CompanyID  string            `gorm:"type:uuid;not null;index"                       json:"company_id"`
	ActorID    string            `gorm:"type:uuid;not null"                             json:"actor_id"`
	Action     string            `gorm:"type:varchar(60);not null"                      json:"action"`
	EntityType string            `gorm:"type:varchar(40);not null"                      json:"entity_type"`
	EntityID   string            `gorm:"type:uuid;not null;index"                       json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb"                                     json:"metadata,omitempty"`
	IP         string            `gorm:"type:varchar(64)"                               json:"ip,omitempty"`
	CreatedAt  time.Time         `gorm:"not null;index"                                 json:"created_at"`
}

// TableName 指定表名
func (AccessAuditLog) TableName() string { return "access_audit_logs" }
