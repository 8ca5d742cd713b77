package dto

import "time"

// ── CRM 联系人 DTO ──

// CreateContactRequest 新建联系人
type CreateContactRequest struct {
	FirstName   string `json:"first_name"   binding:"required,max=100"`
	LastName    string `json:"last_name"    binding:"omitempty,max=100"`
	Email       string `json:"email"        binding:"omitempty,email"`
	Phone       string `json:"phone"        binding:"omitempty,max=40"`
	CompanyName string `json:"company_name" binding:"omitempty,max=200"`
	Notes       string `json:"notes"        binding:"omitempty,max=5000"`
}

// UpdateContactRequest 修改联系人
type UpdateContactRequest struct {
	FirstName   *string `json:"first_name"   binding:"omitempty,min=1,max=100"`
	LastName    *string `json:"last_name"    binding:"omitempty,max=100"`
	Email       *string `json:"email"        binding:"omitempty,email"`
	Phone       *string `json:"phone"        binding:"omitempty,max=40"`
	CompanyName *string `json:"company_name" binding:"omitempty,max=200"`
	Notes       *string `json:"notes"        binding:"omitempty,max=5000"`
}

// ContactListRequest 联系人列表查询参数
type ContactListRequest struct {
	PaginationRequest
	Keyword string `form:"keyword" binding:"omitempty,max=100"`
}

// ContactResponse 联系人
type ContactResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CompanyName string    `json:"company_name,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ContactSummary 嵌入工单响应的联系人摘要
type ContactSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}
