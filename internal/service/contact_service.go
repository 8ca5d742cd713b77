package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// ContactService CRM 联系人业务接口
type ContactService interface {
	Create(ctx context.Context, actor authctx.Actor, req *dto.CreateContactRequest) (*dto.ContactResponse, error)
	Get(ctx context.Context, actor authctx.Actor, id string) (*dto.ContactResponse, error)
	List(ctx context.Context, actor authctx.Actor, req *dto.ContactListRequest) ([]dto.ContactResponse, int64, error)
	Update(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdateContactRequest) (*dto.ContactResponse, error)
	Delete(ctx context.Context, actor authctx.Actor, id string) error
}

type contactService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewContactService 创建 ContactService 实例
func NewContactService(repo *repository.Repository, logger *zap.Logger) ContactService {
	return &contactService{repo: repo, logger: logger, now: utcNow}
}

// 联系人对所有办公角色开放，现场人员只读
func canEditContacts(actor authctx.Actor) bool {
	return actor.CanDispatch() || actor.CanEstimate()
}

func (s *contactService) Create(ctx context.Context, actor authctx.Actor, req *dto.CreateContactRequest) (*dto.ContactResponse, error) {
	if err := authctx.Require(canEditContacts(actor)); err != nil {
		return nil, err
	}
	first := strings.TrimSpace(req.FirstName)
	if first == "" {
		return nil, pkgerrors.Invalid("first_name", "名字不能为空")
	}

	now := s.now()
	c := &model.Contact{
		ContactID:   uuid.NewString(),
		CompanyID:   actor.CompanyID,
		FirstName:   first,
		LastName:    strings.TrimSpace(req.LastName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		CompanyName: strings.TrimSpace(req.CompanyName),
		Notes:       req.Notes,
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	c.CreatedBy = model.StrPtr(actor.UserID)

	if err := s.repo.Contact.Create(ctx, c); err != nil {
		s.logger.Error("创建联系人失败", zap.Error(err))
		return nil, err
	}
	return toContactResponse(c), nil
}

func (s *contactService) Get(ctx context.Context, actor authctx.Actor, id string) (*dto.ContactResponse, error) {
	c, err := s.repo.Contact.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "contact", id)
	}
	return toContactResponse(c), nil
}

func (s *contactService) List(ctx context.Context, actor authctx.Actor, req *dto.ContactListRequest) ([]dto.ContactResponse, int64, error) {
	list, total, err := s.repo.Contact.List(ctx, actor.CompanyID, strings.TrimSpace(req.Keyword), req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出联系人失败", zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.ContactResponse, 0, len(list))
	for i := range list {
		result = append(result, *toContactResponse(&list[i]))
	}
	return result, total, nil
}

func (s *contactService) Update(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdateContactRequest) (*dto.ContactResponse, error) {
	if err := authctx.Require(canEditContacts(actor)); err != nil {
		return nil, err
	}
	c, err := s.repo.Contact.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "contact", id)
	}

	if req.FirstName != nil {
		first := strings.TrimSpace(*req.FirstName)
		if first == "" {
			return nil, pkgerrors.Invalid("first_name", "名字不能为空")
		}
		c.FirstName = first
	}
	if req.LastName != nil {
		c.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		c.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		c.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.CompanyName != nil {
		c.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.Notes != nil {
		c.Notes = *req.Notes
	}
	c.UpdatedAt = s.now()
	c.UpdatedBy = model.StrPtr(actor.UserID)

	if err := s.repo.Contact.Update(ctx, c); err != nil {
		s.logger.Error("修改联系人失败", zap.String("contact_id", id), zap.Error(err))
		return nil, err
	}
	return toContactResponse(c), nil
}

func (s *contactService) Delete(ctx context.Context, actor authctx.Actor, id string) error {
	if err := authctx.Require(actor.IsManager()); err != nil {
		return err
	}
	if _, err := s.repo.Contact.GetByID(ctx, actor.CompanyID, id); err != nil {
		return lookupErr(s.logger, err, "contact", id)
	}
	if err := s.repo.Contact.Delete(ctx, actor.CompanyID, id, actor.UserID); err != nil {
		s.logger.Error("删除联系人失败", zap.String("contact_id", id), zap.Error(err))
		return err
	}
	return nil
}
