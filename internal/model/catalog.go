package model

// Asset 设备 / 车辆 — 对应 assets
type Asset struct {
	AssetID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"asset_id"`
	CompanyID    string `gorm:"type:uuid;not null;index"                       json:"company_id"`
	Name         string `gorm:"type:varchar(150);not null"                     json:"name"`
	AssetType    string `gorm:"type:varchar(40);not null"                      json:"asset_type"` // vehicle | equipment | tool
	SerialNumber string `gorm:"type:varchar(100)"                              json:"serial_number,omitempty"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (Asset) TableName() string { return "assets" }

// TaskPreset 作业预设（可复用的工作内容条目）— 对应 task_presets
type TaskPreset struct {
	PresetID    string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"preset_id"`
	CompanyID   string `gorm:"type:uuid;not null;index"                       json:"company_id"`
	Name        string `gorm:"type:varchar(150);not null"                     json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (TaskPreset) TableName() string { return "task_presets" }
