package model

// Contact CRM 联系人 — 对应 contacts
type Contact struct {
	ContactID   string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"contact_id"`
	CompanyID   string `gorm:"type:uuid;not null;index"                       json:"company_id"`
	FirstName   string `gorm:"type:varchar(100);not null"                     json:"first_name"`
	LastName    string `gorm:"type:varchar(100)"                              json:"last_name,omitempty"`
	Email       string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	Phone       string `gorm:"type:varchar(40)"                               json:"phone,omitempty"`
	CompanyName string `gorm:"type:varchar(200)"                              json:"company_name,omitempty"`
	Notes       string `gorm:"type:text"                                      json:"notes,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Contact) TableName() string { return "contacts" }

// DisplayName 联系人显示名
func (c *Contact) DisplayName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
