package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
)

// ── 测试辅助 ──

const (
	testCompanyID  = "00000000-0000-0000-0000-0000000000c1"
	otherCompanyID = "00000000-0000-0000-0000-0000000000c2"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

var (
	dispatcher = authctx.Actor{UserID: "u-dispatcher", CompanyID: testCompanyID, Role: authctx.RoleDispatcher, IP: "127.0.0.1"}
	owner      = authctx.Actor{UserID: "u-owner", CompanyID: testCompanyID, Role: authctx.RoleOwner}
	estimator  = authctx.Actor{UserID: "u-estimator", CompanyID: testCompanyID, Role: authctx.RoleEstimator}
	fieldTech  = authctx.Actor{UserID: "u-field", CompanyID: testCompanyID, Role: authctx.RoleField}
	outsider   = authctx.Actor{UserID: "u-outsider", CompanyID: otherCompanyID, Role: authctx.RoleOwner}
)

// testEnv 一套共享 mock 的 Repository
type testEnv struct {
	cfg  *config.Config
	repo *repository.Repository
	tx   *mockTransactor

	companies   *mockCompanyRepo
	users       *mockUserRepo
	workOrders  *mockWorkOrderRepo
	assignments *mockAssignmentRepo
	woAssets    *mockWorkOrderAssetRepo
	woPresets   *mockWorkOrderPresetRepo
	activities  *mockActivityRepo
	audits      *mockAuditLogRepo
	employees   *mockEmployeeRepo
	certs       *mockCertificationRepo
	docs        *mockDocumentRepo
	assets      *mockAssetRepo
	presets     *mockPresetRepo
	contacts    *mockContactRepo
	estimates   *mockEstimateRepo
	notifier    *mockNotifier
	store       *mockStore
	logger      *zap.Logger
}

func newTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: 8080, BaseURL: "https://ops.example.com"},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "fieldops",
		},
		Mail:       config.MailConfig{Timeout: time.Second},
		Compliance: config.ComplianceConfig{ExpiryWarningDays: 30, OverrideReasonMinLen: 10},
		Feature:    config.FeatureConfig{NotificationsEnabled: true},
	}
}

func newTestEnv() *testEnv {
	certs := newMockCertificationRepo()
	employees := newMockEmployeeRepo(certs)
	assets := newMockAssetRepo()
	env := &testEnv{
		cfg:         newTestConfig(),
		companies:   newMockCompanyRepo(),
		users:       newMockUserRepo(),
		workOrders:  newMockWorkOrderRepo(),
		assignments: newMockAssignmentRepo(employees),
		woAssets:    newMockWorkOrderAssetRepo(assets),
		woPresets:   newMockWorkOrderPresetRepo(),
		activities:  &mockActivityRepo{},
		audits:      &mockAuditLogRepo{},
		employees:   employees,
		certs:       certs,
		docs:        &mockDocumentRepo{},
		assets:      assets,
		presets:     newMockPresetRepo(),
		contacts:    newMockContactRepo(),
		estimates:   newMockEstimateRepo(),
		notifier:    &mockNotifier{},
		store:       newMockStore(),
		logger:      zap.NewNop(),
	}
	env.repo = &repository.Repository{
		Company:         env.companies,
		User:            env.users,
		WorkOrder:       env.workOrders,
		Assignment:      env.assignments,
		WorkOrderAsset:  env.woAssets,
		WorkOrderPreset: env.woPresets,
		Activity:        env.activities,
		AuditLog:        env.audits,
		Employee:        env.employees,
		Certification:   env.certs,
		Document:        env.docs,
		Asset:           env.assets,
		Preset:          env.presets,
		Contact:         env.contacts,
		Estimate:        env.estimates,
	}
	env.tx = &mockTransactor{repo: env.repo}
	env.repo.Tx = env.tx
	return env
}

func (e *testEnv) workOrderService() *workOrderService {
	return &workOrderService{cfg: e.cfg, repo: e.repo, notifier: e.notifier, logger: e.logger, now: fixedNow}
}

func (e *testEnv) complianceService() *complianceService {
	return &complianceService{cfg: e.cfg, repo: e.repo, store: e.store, logger: e.logger, now: fixedNow}
}

func (e *testEnv) estimateService() *estimateService {
	return &estimateService{repo: e.repo, logger: e.logger, now: fixedNow}
}

func (e *testEnv) exportService() *exportService {
	return &exportService{cfg: e.cfg, repo: e.repo, logger: e.logger, now: fixedNow}
}

// ── 种子数据 ──

func (e *testEnv) seedWorkOrder(id string, status workorder.Status) *model.WorkOrder {
	wo := &model.WorkOrder{
		WorkOrderID:     id,
		CompanyID:       testCompanyID,
		Number:          "WO-20260301-" + id,
		Title:           "屋顶检修 " + id,
		Status:          status,
		DurationMinutes: defaultDurationMinutes,
	}
	wo.Version = 1
	e.workOrders.orders[id] = wo
	return wo
}

// seedEmployee 按资质状态创建员工；certs 形如 {"高空作业证": PASS}
func (e *testEnv) seedEmployee(id, name string, certs map[string]compliance.Status) *model.ComplianceEmployee {
	emp := &model.ComplianceEmployee{
		EmployeeID:  id,
		CompanyID:   testCompanyID,
		Name:        name,
		Email:       id + "@crew.example.com",
		IsActive:    true,
		VerifyToken: "token-" + id,
	}
	var list []compliance.Certification
	for certName, status := range certs {
		c := &model.ComplianceCertification{
			CertificationID: id + "-" + certName,
			EmployeeID:      id,
			Name:            certName,
			Required:        true,
			Status:          status,
		}
		if status == compliance.StatusPass {
			c.ProofKey = "proof/" + c.CertificationID
		}
		e.certs.certs[c.CertificationID] = c
		list = append(list, c.ToCore())
	}
	emp.ComplianceStatus = compliance.Evaluate(list, testNow, e.cfg.Compliance.WarningWindow()).Status
	e.employees.employees[id] = emp
	return emp
}

func (e *testEnv) seedAsset(id, name string, active bool) *model.Asset {
	a := &model.Asset{AssetID: id, CompanyID: testCompanyID, Name: name, AssetType: "vehicle", IsActive: active}
	e.assets.assets[id] = a
	return a
}

func (e *testEnv) seedPreset(id, name string, active bool) *model.TaskPreset {
	p := &model.TaskPreset{PresetID: id, CompanyID: testCompanyID, Name: name, IsActive: active}
	e.presets.presets[id] = p
	return p
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
