package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/storage"
)

// ProofUpload 资质证明上传参数
type ProofUpload struct {
	FileName    string
	ContentType string
	Body        io.Reader
	Accept      bool // 审核人直接确认证明有效 → PASS
}

// ComplianceService 员工资质合规业务接口
type ComplianceService interface {
	CreateEmployee(ctx context.Context, actor authctx.Actor, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, ChangeSet, error)
	GetEmployee(ctx context.Context, actor authctx.Actor, id string) (*dto.EmployeeResponse, error)
	ListEmployees(ctx context.Context, actor authctx.Actor, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error)
	UpdateEmployee(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, ChangeSet, error)
	DeactivateEmployee(ctx context.Context, actor authctx.Actor, id string) (ChangeSet, error)

	AddCertification(ctx context.Context, actor authctx.Actor, employeeID string, req *dto.CreateCertificationRequest) (*dto.CertificationResponse, ChangeSet, error)
	UpdateCertification(ctx context.Context, actor authctx.Actor, certificationID string, req *dto.UpdateCertificationRequest) (*dto.CertificationResponse, ChangeSet, error)
	UploadProof(ctx context.Context, actor authctx.Actor, certificationID string, up ProofUpload) (*dto.UploadProofResponse, ChangeSet, error)
	ListDocuments(ctx context.Context, actor authctx.Actor, employeeID string) ([]dto.DocumentResponse, error)

	Snapshot(ctx context.Context, actor authctx.Actor, employeeID string) (*dto.SnapshotResponse, error)
	// Verify 公开二维码核验，不做租户鉴权
	Verify(ctx context.Context, token string) (*dto.VerifyResponse, error)
	// RecomputeAll 重算公司内全部员工的合规缓存（运维命令使用）
	RecomputeAll(ctx context.Context, companyID string) (*dto.RecomputeResult, error)
}

type complianceService struct {
	cfg    *config.Config
	repo   *repository.Repository
	store  storage.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewComplianceService 创建 ComplianceService 实例
func NewComplianceService(cfg *config.Config, repo *repository.Repository, store storage.Store, logger *zap.Logger) ComplianceService {
	return &complianceService{cfg: cfg, repo: repo, store: store, logger: logger, now: utcNow}
}

// ═══════════════════════════════════════════════════════════
// 员工
// ═══════════════════════════════════════════════════════════

func (s *complianceService) CreateEmployee(ctx context.Context, actor authctx.Actor, req *dto.CreateEmployeeRequest) (*dto.EmployeeResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanManageCompliance()); err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, pkgerrors.Invalid("name", "姓名不能为空")
	}

	now := s.now()
	emp := &model.ComplianceEmployee{
		EmployeeID:       uuid.NewString(),
		CompanyID:        actor.CompanyID,
		Name:             name,
		Email:            strings.TrimSpace(req.Email),
		Phone:            strings.TrimSpace(req.Phone),
		Title:            strings.TrimSpace(req.Title),
		IsActive:         true,
		ComplianceStatus: compliance.Evaluate(nil, now, s.cfg.Compliance.WarningWindow()).Status,
		VerifyToken:      newVerifyToken(),
		LastEvaluatedAt:  &now,
	}
	emp.CreatedAt = now
	emp.UpdatedAt = now
	emp.CreatedBy = model.StrPtr(actor.UserID)

	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		if err := tx.Employee.Create(ctx, emp); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditEmployeeCreated, EntityEmployee, emp.EmployeeID, map[string]interface{}{
			"name": emp.Name,
		}, now)
	})
	if err != nil {
		s.logger.Error("创建员工失败", zap.Error(err))
		return nil, nil, err
	}

	return toEmployeeResponse(emp, s.cfg.Server.BaseURL, now), ChangeSet{}.Add(EntityEmployee, emp.EmployeeID), nil
}

func (s *complianceService) GetEmployee(ctx context.Context, actor authctx.Actor, id string) (*dto.EmployeeResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, lookupErr(s.logger, err, "employee", id)
	}
	return toEmployeeResponse(emp, s.cfg.Server.BaseURL, s.now()), nil
}

func (s *complianceService) ListEmployees(ctx context.Context, actor authctx.Actor, req *dto.EmployeeListRequest) ([]dto.EmployeeResponse, int64, error) {
	filter := repository.EmployeeFilter{
		Status:     compliance.Status(req.Status),
		ActiveOnly: req.ActiveOnly,
		Keyword:    strings.TrimSpace(req.Keyword),
	}
	list, total, err := s.repo.Employee.List(ctx, actor.CompanyID, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出员工失败", zap.Error(err))
		return nil, 0, err
	}

	now := s.now()
	result := make([]dto.EmployeeResponse, 0, len(list))
	for i := range list {
		result = append(result, *toEmployeeResponse(&list[i], s.cfg.Server.BaseURL, now))
	}
	return result, total, nil
}

func (s *complianceService) UpdateEmployee(ctx context.Context, actor authctx.Actor, id string, req *dto.UpdateEmployeeRequest) (*dto.EmployeeResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanManageCompliance()); err != nil {
		return nil, nil, err
	}

	now := s.now()
	var emp *model.ComplianceEmployee
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var err error
		emp, err = tx.Employee.GetByID(ctx, actor.CompanyID, id)
		if err != nil {
			return notFound(err, "employee", id)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return pkgerrors.Invalid("name", "姓名不能为空")
			}
			emp.Name = name
		}
		if req.Email != nil {
			emp.Email = strings.TrimSpace(*req.Email)
		}
		if req.Phone != nil {
			emp.Phone = strings.TrimSpace(*req.Phone)
		}
		if req.Title != nil {
			emp.Title = strings.TrimSpace(*req.Title)
		}
		if req.IsActive != nil {
			emp.IsActive = *req.IsActive
		}
		emp.UpdatedBy = model.StrPtr(actor.UserID)

		if err := tx.Employee.Update(ctx, emp); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditEmployeeUpdated, EntityEmployee, emp.EmployeeID, map[string]interface{}{
			"is_active": emp.IsActive,
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "修改员工失败", id, err)
	}

	return toEmployeeResponse(emp, s.cfg.Server.BaseURL, now), ChangeSet{}.Add(EntityEmployee, emp.EmployeeID), nil
}

// DeactivateEmployee 停用员工（保留资质与历史派工，不能再被派工）
func (s *complianceService) DeactivateEmployee(ctx context.Context, actor authctx.Actor, id string) (ChangeSet, error) {
	inactive := false
	_, changes, err := s.UpdateEmployee(ctx, actor, id, &dto.UpdateEmployeeRequest{IsActive: &inactive})
	return changes, err
}

// ═══════════════════════════════════════════════════════════
// 资质
// ═══════════════════════════════════════════════════════════
//
// 每次资质变化后在同一事务内重算员工 compliance_status 缓存；
// PASS 必须有证明文件（先上传证明，或上传时直接确认）。

func (s *complianceService) AddCertification(ctx context.Context, actor authctx.Actor, employeeID string, req *dto.CreateCertificationRequest) (*dto.CertificationResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanManageCompliance()); err != nil {
		return nil, nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, nil, pkgerrors.Invalid("name", "资质名称不能为空")
	}
	status := compliance.InitialStatus()
	if req.Status != "" {
		status = compliance.Status(req.Status)
	}
	if !status.Valid() {
		return nil, nil, pkgerrors.Invalid("status", "资质状态无效")
	}
	if status == compliance.StatusPass {
		return nil, nil, pkgerrors.Invalid("status", "PASS 需要先上传证明文件")
	}
	required := true
	if req.Required != nil {
		required = *req.Required
	}

	now := s.now()
	cert := &model.ComplianceCertification{
		CertificationID: uuid.NewString(),
		EmployeeID:      employeeID,
		Name:            name,
		Required:        required,
		Status:          status,
		IssuedAt:        req.IssuedAt,
		ExpiresAt:       req.ExpiresAt,
		Notes:           req.Notes,
	}
	cert.CreatedAt = now
	cert.UpdatedAt = now
	cert.CreatedBy = model.StrPtr(actor.UserID)

	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		emp, err := tx.Employee.GetByID(ctx, actor.CompanyID, employeeID)
		if err != nil {
			return notFound(err, "employee", employeeID)
		}
		if err := tx.Certification.Create(ctx, cert); err != nil {
			return err
		}
		if _, err := s.recompute(ctx, tx, actor, emp, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditCertificationAdded, EntityCertification, cert.CertificationID, map[string]interface{}{
			"employee_id": employeeID,
			"name":        cert.Name,
			"status":      string(cert.Status),
			"required":    cert.Required,
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "新增资质失败", employeeID, err)
	}

	resp := toCertificationResponse(cert, now)
	return &resp, ChangeSet{}.Add(EntityEmployee, employeeID).Add(EntityCertification, cert.CertificationID), nil
}

func (s *complianceService) UpdateCertification(ctx context.Context, actor authctx.Actor, certificationID string, req *dto.UpdateCertificationRequest) (*dto.CertificationResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanManageCompliance()); err != nil {
		return nil, nil, err
	}

	now := s.now()
	var cert *model.ComplianceCertification
	err := s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var (
			emp *model.ComplianceEmployee
			err error
		)
		cert, emp, err = s.loadCertification(ctx, tx, actor, certificationID)
		if err != nil {
			return err
		}
		prev := cert.Status

		if req.Status != nil {
			status := compliance.Status(*req.Status)
			if !status.Valid() {
				return pkgerrors.Invalid("status", "资质状态无效")
			}
			if status == compliance.StatusPass && cert.ProofKey == "" {
				return pkgerrors.Invalid("status", "PASS 需要先上传证明文件")
			}
			cert.Status = status
		}
		if req.Required != nil {
			cert.Required = *req.Required
		}
		if req.ClearExpiry {
			cert.ExpiresAt = nil
		} else if req.ExpiresAt != nil {
			cert.ExpiresAt = req.ExpiresAt
		}
		if req.Notes != nil {
			cert.Notes = *req.Notes
		}
		cert.UpdatedAt = now
		cert.UpdatedBy = model.StrPtr(actor.UserID)

		if err := tx.Certification.Update(ctx, cert); err != nil {
			return err
		}
		if _, err := s.recompute(ctx, tx, actor, emp, now); err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditCertificationUpdated, EntityCertification, cert.CertificationID, map[string]interface{}{
			"employee_id": cert.EmployeeID,
			"from":        string(prev),
			"to":          string(cert.Status),
			"required":    cert.Required,
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "修改资质失败", certificationID, err)
	}

	resp := toCertificationResponse(cert, now)
	return &resp, ChangeSet{}.Add(EntityEmployee, cert.EmployeeID).Add(EntityCertification, cert.CertificationID), nil
}

// UploadProof 保存证明文件并更新资质状态
// 对象先写入存储（内容寻址，重复上传得到同一个 key），再在事务内登记文件、更新资质
func (s *complianceService) UploadProof(ctx context.Context, actor authctx.Actor, certificationID string, up ProofUpload) (*dto.UploadProofResponse, ChangeSet, error) {
	if err := authctx.Require(actor.CanManageCompliance()); err != nil {
		return nil, nil, err
	}
	if up.Body == nil {
		return nil, nil, pkgerrors.Invalid("file", "缺少文件")
	}

	// 先做租户校验，避免为无权访问的资质写入对象
	if _, _, err := s.loadCertification(ctx, s.repo, actor, certificationID); err != nil {
		return nil, nil, txErr(s.logger, "查询资质失败", certificationID, err)
	}

	obj, err := s.store.Put(ctx, up.FileName, up.Body)
	if err != nil {
		if errors.Is(err, storage.ErrEmpty) {
			return nil, nil, pkgerrors.Invalid("file", "文件内容为空")
		}
		if !errors.Is(err, storage.ErrTooLarge) {
			s.logger.Error("保存证明文件失败", zap.String("certification_id", certificationID), zap.Error(err))
		}
		return nil, nil, err
	}

	now := s.now()
	var (
		cert *model.ComplianceCertification
		doc  *model.ComplianceDocument
		snap compliance.Snapshot
	)
	err = s.repo.Tx.WithinTx(ctx, func(ctx context.Context, tx *repository.Repository) error {
		var (
			emp *model.ComplianceEmployee
			err error
		)
		cert, emp, err = s.loadCertification(ctx, tx, actor, certificationID)
		if err != nil {
			return err
		}

		certID := cert.CertificationID
		contentType := up.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		doc = &model.ComplianceDocument{
			DocumentID:      uuid.NewString(),
			EmployeeID:      cert.EmployeeID,
			CertificationID: &certID,
			FileName:        up.FileName,
			ContentType:     contentType,
			StorageKey:      obj.Key,
			Hash:            obj.Hash,
			SizeBytes:       obj.Size,
			UploadedBy:      actor.UserID,
			CreatedAt:       now,
		}
		if err := tx.Document.Create(ctx, doc); err != nil {
			return err
		}

		prev := cert.Status
		cert.ProofKey = obj.Key
		cert.Status = compliance.StatusAfterProof(cert.Status, up.Accept)
		cert.UpdatedAt = now
		cert.UpdatedBy = model.StrPtr(actor.UserID)
		if err := tx.Certification.Update(ctx, cert); err != nil {
			return err
		}

		snap, err = s.recompute(ctx, tx, actor, emp, now)
		if err != nil {
			return err
		}
		return writeAudit(ctx, tx, actor, AuditProofUploaded, EntityCertification, cert.CertificationID, map[string]interface{}{
			"employee_id": cert.EmployeeID,
			"hash":        obj.Hash,
			"accepted":    up.Accept,
			"from":        string(prev),
			"to":          string(cert.Status),
		}, now)
	})
	if err != nil {
		return nil, nil, txErr(s.logger, "登记证明文件失败", certificationID, err)
	}

	return &dto.UploadProofResponse{
		Document:      toDocumentResponse(doc),
		Certification: toCertificationResponse(cert, now),
		Snapshot:      snap,
	}, ChangeSet{}.Add(EntityEmployee, cert.EmployeeID).Add(EntityCertification, cert.CertificationID), nil
}

func (s *complianceService) ListDocuments(ctx context.Context, actor authctx.Actor, employeeID string) ([]dto.DocumentResponse, error) {
	if _, err := s.repo.Employee.GetByID(ctx, actor.CompanyID, employeeID); err != nil {
		return nil, lookupErr(s.logger, err, "employee", employeeID)
	}
	docs, err := s.repo.Document.ListByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("查询证明文件失败", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		result = append(result, toDocumentResponse(&docs[i]))
	}
	return result, nil
}

// ═══════════════════════════════════════════════════════════
// 快照 / 二维码核验 / 批量重算
// ═══════════════════════════════════════════════════════════

func (s *complianceService) Snapshot(ctx context.Context, actor authctx.Actor, employeeID string) (*dto.SnapshotResponse, error) {
	emp, err := s.repo.Employee.GetByID(ctx, actor.CompanyID, employeeID)
	if err != nil {
		return nil, lookupErr(s.logger, err, "employee", employeeID)
	}
	return &dto.SnapshotResponse{
		EmployeeID: emp.EmployeeID,
		Name:       emp.Name,
		Snapshot:   compliance.Evaluate(certificationsOf(emp), s.now(), s.cfg.Compliance.WarningWindow()),
	}, nil
}

func (s *complianceService) Verify(ctx context.Context, token string) (*dto.VerifyResponse, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, pkgerrors.NotFound("verify token", token)
	}
	emp, err := s.repo.Employee.GetByVerifyToken(ctx, token)
	if err != nil {
		return nil, lookupErr(s.logger, err, "verify token", token)
	}
	return &dto.VerifyResponse{
		Name:     emp.Name,
		Title:    emp.Title,
		Active:   emp.IsActive,
		Snapshot: compliance.Evaluate(certificationsOf(emp), s.now(), s.cfg.Compliance.WarningWindow()),
	}, nil
}

func (s *complianceService) RecomputeAll(ctx context.Context, companyID string) (*dto.RecomputeResult, error) {
	list, err := s.repo.Employee.ListWithCertifications(ctx, companyID)
	if err != nil {
		s.logger.Error("查询员工失败", zap.String("company_id", companyID), zap.Error(err))
		return nil, err
	}

	now := s.now()
	result := &dto.RecomputeResult{Employees: len(list)}
	for i := range list {
		emp := &list[i]
		prev := emp.ComplianceStatus
		snap := compliance.Evaluate(certificationsOf(emp), now, s.cfg.Compliance.WarningWindow())
		emp.ComplianceStatus = snap.Status
		emp.LastEvaluatedAt = &now
		if err := s.repo.Employee.Update(ctx, emp); err != nil {
			s.logger.Error("更新员工合规状态失败", zap.String("employee_id", emp.EmployeeID), zap.Error(err))
			return nil, err
		}
		if prev != snap.Status {
			result.Changed++
			s.logger.Info("员工合规状态变化",
				zap.String("employee_id", emp.EmployeeID),
				zap.String("from", string(prev)),
				zap.String("to", string(snap.Status)),
			)
		}
	}
	return result, nil
}

// ── 内部辅助 ──

// loadCertification 查询资质并校验其员工属于当前公司
func (s *complianceService) loadCertification(ctx context.Context, repo *repository.Repository, actor authctx.Actor, id string) (*model.ComplianceCertification, *model.ComplianceEmployee, error) {
	cert, err := repo.Certification.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFound(err, "certification", id)
	}
	emp, err := repo.Employee.GetByID(ctx, actor.CompanyID, cert.EmployeeID)
	if err != nil {
		return nil, nil, notFound(err, "certification", id)
	}
	return cert, emp, nil
}

// recompute 按当前资质重算员工合规缓存
func (s *complianceService) recompute(ctx context.Context, tx *repository.Repository, actor authctx.Actor, emp *model.ComplianceEmployee, now time.Time) (compliance.Snapshot, error) {
	certs, err := tx.Certification.ListByEmployee(ctx, emp.EmployeeID)
	if err != nil {
		return compliance.Snapshot{}, err
	}
	emp.Certifications = certs
	snap := compliance.Evaluate(certificationsOf(emp), now, s.cfg.Compliance.WarningWindow())

	emp.ComplianceStatus = snap.Status
	emp.LastEvaluatedAt = &now
	emp.UpdatedBy = model.StrPtr(actor.UserID)
	if err := tx.Employee.Update(ctx, emp); err != nil {
		return compliance.Snapshot{}, err
	}
	return snap, nil
}

// newVerifyToken 二维码核验令牌（不可猜测，不含员工 ID）
func newVerifyToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}
