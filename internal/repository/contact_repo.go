package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
)

// ContactRepository CRM 联系人数据访问接口
type ContactRepository interface {
	Create(ctx context.Context, contact *model.Contact) error
	GetByID(ctx context.Context, companyID, id string) (*model.Contact, error)
	List(ctx context.Context, companyID, keyword string, offset, limit int) ([]model.Contact, int64, error)
	Update(ctx context.Context, contact *model.Contact) error
	Delete(ctx context.Context, companyID, id, deletedBy string) error
}

type contactRepo struct {
	db *gorm.DB
}

// NewContactRepo 创建 ContactRepository 实例
func NewContactRepo(db *gorm.DB) ContactRepository {
	return &contactRepo{db: db}
}

func (r *contactRepo) Create(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *contactRepo) GetByID(ctx context.Context, companyID, id string) (*model.Contact, error) {
	var contact model.Contact
	err := r.db.WithContext(ctx).
		Where("contact_id = ? AND company_id = ?", id, companyID).
		First(&contact).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *contactRepo) List(ctx context.Context, companyID, keyword string, offset, limit int) ([]model.Contact, int64, error) {
	var list []model.Contact
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Contact{}).Where("company_id = ?", companyID)
	if keyword != "" {
		like := "%" + keyword + "%"
		db = db.Where("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR company_name ILIKE ?)", like, like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Order("last_name ASC, first_name ASC").
		Offset(offset).Limit(limit).
		Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *contactRepo) Update(ctx context.Context, contact *model.Contact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *contactRepo) Delete(ctx context.Context, companyID, id, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Contact{}).
		Where("contact_id = ? AND company_id = ?", id, companyID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
