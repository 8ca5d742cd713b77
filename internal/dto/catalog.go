package dto

// ── 设备 / 作业预设 DTO ──

// CreateAssetRequest 新建设备
type CreateAssetRequest struct {
	Name         string `json:"name"          binding:"required,max=150"`
	AssetType    string `json:"asset_type"    binding:"required,oneof=vehicle equipment tool"`
	SerialNumber string `json:"serial_number" binding:"omitempty,max=100"`
}

// UpdateAssetRequest 修改设备
type UpdateAssetRequest struct {
	Name         *string `json:"name"          binding:"omitempty,min=1,max=150"`
	SerialNumber *string `json:"serial_number" binding:"omitempty,max=100"`
	IsActive     *bool   `json:"is_active"`
}

// AssetResponse 设备
type AssetResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AssetType    string `json:"asset_type"`
	SerialNumber string `json:"serial_number,omitempty"`
	IsActive     bool   `json:"is_active"`
}

// CreatePresetRequest 新建作业预设
type CreatePresetRequest struct {
	Name        string `json:"name"        binding:"required,max=150"`
	Description string `json:"description" binding:"omitempty,max=5000"`
}

// UpdatePresetRequest 修改作业预设
type UpdatePresetRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=1,max=150"`
	Description *string `json:"description" binding:"omitempty,max=5000"`
	IsActive    *bool   `json:"is_active"`
}

// PresetResponse 作业预设
type PresetResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsActive    bool   `json:"is_active"`
}
