package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/workorder"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/storage"
)

// 所有 mock 存取副本，模拟数据库行为：调用方修改返回值不影响已保存数据

// ── Mock Transactor ──

type mockTransactor struct {
	repo  *repository.Repository
	calls int
}

func (m *mockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, repo *repository.Repository) error) error {
	m.calls++
	return fn(ctx, m.repo)
}

// ── Mock CompanyRepository ──

type mockCompanyRepo struct {
	companies map[string]*model.Company
}

func newMockCompanyRepo() *mockCompanyRepo {
	return &mockCompanyRepo{companies: make(map[string]*model.Company)}
}

func (m *mockCompanyRepo) Create(_ context.Context, company *model.Company) error {
	c := *company
	m.companies[company.CompanyID] = &c
	return nil
}

func (m *mockCompanyRepo) GetByID(_ context.Context, id string) (*model.Company, error) {
	if c, ok := m.companies[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCompanyRepo) List(_ context.Context) ([]model.Company, error) {
	var result []model.Company
	for _, c := range m.companies {
		result = append(result, *c)
	}
	return result, nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	u := *user
	m.users[user.UserID] = &u
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	u := *user
	m.users[user.UserID] = &u
	return nil
}

func (m *mockUserRepo) List(_ context.Context, companyID string, _, _ int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		if u.CompanyID == companyID {
			result = append(result, *u)
		}
	}
	return result, int64(len(result)), nil
}

// ── Mock WorkOrderRepository ──

type mockWorkOrderRepo struct {
	orders  map[string]*model.WorkOrder
	updates int
}

func newMockWorkOrderRepo() *mockWorkOrderRepo {
	return &mockWorkOrderRepo{orders: make(map[string]*model.WorkOrder)}
}

func (m *mockWorkOrderRepo) Create(_ context.Context, wo *model.WorkOrder) error {
	if wo.Version == 0 {
		wo.Version = 1
	}
	cp := *wo
	m.orders[wo.WorkOrderID] = &cp
	return nil
}

func (m *mockWorkOrderRepo) GetByID(_ context.Context, companyID, id string) (*model.WorkOrder, error) {
	if wo, ok := m.orders[id]; ok && wo.CompanyID == companyID {
		cp := *wo
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkOrderRepo) GetForUpdate(ctx context.Context, companyID, id string) (*model.WorkOrder, error) {
	return m.GetByID(ctx, companyID, id)
}

func (m *mockWorkOrderRepo) List(_ context.Context, companyID string, filter repository.WorkOrderFilter, _, _ int) ([]model.WorkOrder, int64, error) {
	var result []model.WorkOrder
	for _, wo := range m.orders {
		if wo.CompanyID != companyID {
			continue
		}
		if filter.Status != "" && wo.Status != filter.Status {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(wo.Title, filter.Keyword) {
			continue
		}
		result = append(result, *wo)
	}
	return result, int64(len(result)), nil
}

func (m *mockWorkOrderRepo) ListScheduled(_ context.Context, companyID string, from, to time.Time) ([]model.WorkOrder, error) {
	var result []model.WorkOrder
	for _, wo := range m.orders {
		if wo.CompanyID != companyID || wo.ScheduledFor == nil {
			continue
		}
		if wo.Status != workorder.StatusScheduled && wo.Status != workorder.StatusInProgress {
			continue
		}
		if wo.ScheduledFor.Before(from) || !wo.ScheduledFor.Before(to) {
			continue
		}
		result = append(result, *wo)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ScheduledFor.Before(*result[j].ScheduledFor) })
	return result, nil
}

func (m *mockWorkOrderRepo) Update(_ context.Context, wo *model.WorkOrder) error {
	stored, ok := m.orders[wo.WorkOrderID]
	if !ok || stored.CompanyID != wo.CompanyID || stored.Version != wo.Version {
		return pkgerrors.ErrOptimisticLock
	}
	wo.Version++
	cp := *wo
	m.orders[wo.WorkOrderID] = &cp
	m.updates++
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.WorkOrderAssignment
	employees   *mockEmployeeRepo
}

func newMockAssignmentRepo(employees *mockEmployeeRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{assignments: make(map[string]*model.WorkOrderAssignment), employees: employees}
}

// withEmployee 模拟 Preload("Employee")
func (m *mockAssignmentRepo) withEmployee(a *model.WorkOrderAssignment) *model.WorkOrderAssignment {
	cp := *a
	cp.Employee = nil
	if emp, ok := m.employees.employees[a.EmployeeID]; ok {
		e := *emp
		cp.Employee = &e
	}
	return &cp
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.WorkOrderAssignment) error {
	cp := *a
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.WorkOrderAssignment, error) {
	if a, ok := m.assignments[id]; ok {
		return m.withEmployee(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) GetActive(_ context.Context, workOrderID, employeeID string) (*model.WorkOrderAssignment, error) {
	for _, a := range m.assignments {
		if a.WorkOrderID == workOrderID && a.EmployeeID == employeeID && a.Active() {
			return m.withEmployee(a), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListActive(_ context.Context, workOrderID string) ([]model.WorkOrderAssignment, error) {
	var result []model.WorkOrderAssignment
	for _, a := range m.assignments {
		if a.WorkOrderID == workOrderID && a.Active() {
			result = append(result, *m.withEmployee(a))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssignedAt.Before(result[j].AssignedAt) })
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.WorkOrderAssignment) error {
	if _, ok := m.assignments[a.AssignmentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *a
	m.assignments[a.AssignmentID] = &cp
	return nil
}

func (m *mockAssignmentRepo) active(workOrderID string) int {
	n := 0
	for _, a := range m.assignments {
		if a.WorkOrderID == workOrderID && a.Active() {
			n++
		}
	}
	return n
}

// ── Mock WorkOrderAssetRepository ──

type mockWorkOrderAssetRepo struct {
	items  map[string]*model.WorkOrderAsset
	assets *mockAssetRepo
}

func newMockWorkOrderAssetRepo(assets *mockAssetRepo) *mockWorkOrderAssetRepo {
	return &mockWorkOrderAssetRepo{items: make(map[string]*model.WorkOrderAsset), assets: assets}
}

func (m *mockWorkOrderAssetRepo) withAsset(wa *model.WorkOrderAsset) *model.WorkOrderAsset {
	cp := *wa
	cp.Asset = nil
	if a, ok := m.assets.assets[wa.AssetID]; ok {
		ac := *a
		cp.Asset = &ac
	}
	return &cp
}

func (m *mockWorkOrderAssetRepo) Create(_ context.Context, wa *model.WorkOrderAsset) error {
	cp := *wa
	m.items[wa.WorkOrderAssetID] = &cp
	return nil
}

func (m *mockWorkOrderAssetRepo) GetByID(_ context.Context, id string) (*model.WorkOrderAsset, error) {
	if wa, ok := m.items[id]; ok {
		return m.withAsset(wa), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkOrderAssetRepo) GetActive(_ context.Context, workOrderID, assetID string) (*model.WorkOrderAsset, error) {
	for _, wa := range m.items {
		if wa.WorkOrderID == workOrderID && wa.AssetID == assetID && wa.UnassignedAt == nil {
			return m.withAsset(wa), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkOrderAssetRepo) ListActive(_ context.Context, workOrderID string) ([]model.WorkOrderAsset, error) {
	var result []model.WorkOrderAsset
	for _, wa := range m.items {
		if wa.WorkOrderID == workOrderID && wa.UnassignedAt == nil {
			result = append(result, *m.withAsset(wa))
		}
	}
	return result, nil
}

func (m *mockWorkOrderAssetRepo) Update(_ context.Context, wa *model.WorkOrderAsset) error {
	cp := *wa
	m.items[wa.WorkOrderAssetID] = &cp
	return nil
}

// ── Mock WorkOrderPresetRepository ──

type mockWorkOrderPresetRepo struct {
	links map[string]*model.WorkOrderPreset
}

func newMockWorkOrderPresetRepo() *mockWorkOrderPresetRepo {
	return &mockWorkOrderPresetRepo{links: make(map[string]*model.WorkOrderPreset)}
}

func (m *mockWorkOrderPresetRepo) Create(_ context.Context, wp *model.WorkOrderPreset) error {
	cp := *wp
	m.links[wp.WorkOrderID+"/"+wp.PresetID] = &cp
	return nil
}

func (m *mockWorkOrderPresetRepo) Get(_ context.Context, workOrderID, presetID string) (*model.WorkOrderPreset, error) {
	if wp, ok := m.links[workOrderID+"/"+presetID]; ok {
		cp := *wp
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkOrderPresetRepo) Delete(_ context.Context, workOrderID, presetID string) error {
	delete(m.links, workOrderID+"/"+presetID)
	return nil
}

func (m *mockWorkOrderPresetRepo) List(_ context.Context, workOrderID string) ([]model.WorkOrderPreset, error) {
	var result []model.WorkOrderPreset
	for _, wp := range m.links {
		if wp.WorkOrderID == workOrderID {
			result = append(result, *wp)
		}
	}
	return result, nil
}

// ── Mock ActivityRepository / AuditLogRepository ──

type mockActivityRepo struct {
	activities []model.WorkOrderActivity
}

func (m *mockActivityRepo) Create(_ context.Context, activity *model.WorkOrderActivity) error {
	if activity.ActivityID == "" {
		activity.ActivityID = fmt.Sprintf("act-%d", len(m.activities)+1)
	}
	m.activities = append(m.activities, *activity)
	return nil
}

func (m *mockActivityRepo) ListByWorkOrder(_ context.Context, workOrderID string, _, _ int) ([]model.WorkOrderActivity, int64, error) {
	var result []model.WorkOrderActivity
	for _, a := range m.activities {
		if a.WorkOrderID == workOrderID {
			result = append(result, a)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockActivityRepo) count(workOrderID, typ string) int {
	n := 0
	for _, a := range m.activities {
		if a.WorkOrderID == workOrderID && (typ == "" || a.Type == typ) {
			n++
		}
	}
	return n
}

type mockAuditLogRepo struct {
	logs []model.AccessAuditLog
}

func (m *mockAuditLogRepo) Create(_ context.Context, log *model.AccessAuditLog) error {
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockAuditLogRepo) ListByEntity(_ context.Context, companyID, entityType, entityID string, _, _ int) ([]model.AccessAuditLog, int64, error) {
	var result []model.AccessAuditLog
	for _, l := range m.logs {
		if l.CompanyID == companyID && l.EntityType == entityType && l.EntityID == entityID {
			result = append(result, l)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockAuditLogRepo) actions() []string {
	out := make([]string, 0, len(m.logs))
	for _, l := range m.logs {
		out = append(out, l.Action)
	}
	return out
}

// ── Mock EmployeeRepository / CertificationRepository / DocumentRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.ComplianceEmployee
	certs     *mockCertificationRepo
}

func newMockEmployeeRepo(certs *mockCertificationRepo) *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.ComplianceEmployee), certs: certs}
}

// withCertifications 模拟 Preload("Certifications")
func (m *mockEmployeeRepo) withCertifications(emp *model.ComplianceEmployee) *model.ComplianceEmployee {
	cp := *emp
	cp.Certifications, _ = m.certs.ListByEmployee(context.Background(), emp.EmployeeID)
	return &cp
}

func (m *mockEmployeeRepo) Create(_ context.Context, emp *model.ComplianceEmployee) error {
	cp := *emp
	cp.Certifications = nil
	m.employees[emp.EmployeeID] = &cp
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, companyID, id string) (*model.ComplianceEmployee, error) {
	if emp, ok := m.employees[id]; ok && emp.CompanyID == companyID {
		return m.withCertifications(emp), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByVerifyToken(_ context.Context, token string) (*model.ComplianceEmployee, error) {
	for _, emp := range m.employees {
		if emp.VerifyToken == token {
			return m.withCertifications(emp), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) List(_ context.Context, companyID string, filter repository.EmployeeFilter, _, _ int) ([]model.ComplianceEmployee, int64, error) {
	var result []model.ComplianceEmployee
	for _, emp := range m.employees {
		if emp.CompanyID != companyID {
			continue
		}
		if filter.ActiveOnly && !emp.IsActive {
			continue
		}
		if filter.Status != "" && emp.ComplianceStatus != filter.Status {
			continue
		}
		result = append(result, *emp)
	}
	return result, int64(len(result)), nil
}

func (m *mockEmployeeRepo) ListWithCertifications(_ context.Context, companyID string) ([]model.ComplianceEmployee, error) {
	var result []model.ComplianceEmployee
	for _, emp := range m.employees {
		if emp.CompanyID == companyID {
			result = append(result, *m.withCertifications(emp))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockEmployeeRepo) Update(_ context.Context, emp *model.ComplianceEmployee) error {
	cp := *emp
	cp.Certifications = nil
	m.employees[emp.EmployeeID] = &cp
	return nil
}

type mockCertificationRepo struct {
	certs map[string]*model.ComplianceCertification
}

func newMockCertificationRepo() *mockCertificationRepo {
	return &mockCertificationRepo{certs: make(map[string]*model.ComplianceCertification)}
}

func (m *mockCertificationRepo) Create(_ context.Context, cert *model.ComplianceCertification) error {
	cp := *cert
	m.certs[cert.CertificationID] = &cp
	return nil
}

func (m *mockCertificationRepo) GetByID(_ context.Context, id string) (*model.ComplianceCertification, error) {
	if c, ok := m.certs[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCertificationRepo) ListByEmployee(_ context.Context, employeeID string) ([]model.ComplianceCertification, error) {
	var result []model.ComplianceCertification
	for _, c := range m.certs {
		if c.EmployeeID == employeeID {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCertificationRepo) Update(_ context.Context, cert *model.ComplianceCertification) error {
	cp := *cert
	m.certs[cert.CertificationID] = &cp
	return nil
}

type mockDocumentRepo struct {
	docs []model.ComplianceDocument
}

func (m *mockDocumentRepo) Create(_ context.Context, doc *model.ComplianceDocument) error {
	m.docs = append(m.docs, *doc)
	return nil
}

func (m *mockDocumentRepo) ListByEmployee(_ context.Context, employeeID string) ([]model.ComplianceDocument, error) {
	var result []model.ComplianceDocument
	for _, d := range m.docs {
		if d.EmployeeID == employeeID {
			result = append(result, d)
		}
	}
	return result, nil
}

// ── Mock AssetRepository / PresetRepository ──

type mockAssetRepo struct {
	assets map[string]*model.Asset
}

func newMockAssetRepo() *mockAssetRepo {
	return &mockAssetRepo{assets: make(map[string]*model.Asset)}
}

func (m *mockAssetRepo) Create(_ context.Context, asset *model.Asset) error {
	cp := *asset
	m.assets[asset.AssetID] = &cp
	return nil
}

func (m *mockAssetRepo) GetByID(_ context.Context, companyID, id string) (*model.Asset, error) {
	if a, ok := m.assets[id]; ok && a.CompanyID == companyID {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssetRepo) List(_ context.Context, companyID string, activeOnly bool) ([]model.Asset, error) {
	var result []model.Asset
	for _, a := range m.assets {
		if a.CompanyID == companyID && (!activeOnly || a.IsActive) {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssetRepo) Update(_ context.Context, asset *model.Asset) error {
	cp := *asset
	m.assets[asset.AssetID] = &cp
	return nil
}

type mockPresetRepo struct {
	presets map[string]*model.TaskPreset
}

func newMockPresetRepo() *mockPresetRepo {
	return &mockPresetRepo{presets: make(map[string]*model.TaskPreset)}
}

func (m *mockPresetRepo) Create(_ context.Context, preset *model.TaskPreset) error {
	cp := *preset
	m.presets[preset.PresetID] = &cp
	return nil
}

func (m *mockPresetRepo) GetByID(_ context.Context, companyID, id string) (*model.TaskPreset, error) {
	if p, ok := m.presets[id]; ok && p.CompanyID == companyID {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPresetRepo) List(_ context.Context, companyID string, activeOnly bool) ([]model.TaskPreset, error) {
	var result []model.TaskPreset
	for _, p := range m.presets {
		if p.CompanyID == companyID && (!activeOnly || p.IsActive) {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockPresetRepo) Update(_ context.Context, preset *model.TaskPreset) error {
	cp := *preset
	m.presets[preset.PresetID] = &cp
	return nil
}

// ── Mock ContactRepository ──

type mockContactRepo struct {
	contacts map[string]*model.Contact
}

func newMockContactRepo() *mockContactRepo {
	return &mockContactRepo{contacts: make(map[string]*model.Contact)}
}

func (m *mockContactRepo) Create(_ context.Context, contact *model.Contact) error {
	cp := *contact
	m.contacts[contact.ContactID] = &cp
	return nil
}

func (m *mockContactRepo) GetByID(_ context.Context, companyID, id string) (*model.Contact, error) {
	if c, ok := m.contacts[id]; ok && c.CompanyID == companyID {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContactRepo) List(_ context.Context, companyID, keyword string, _, _ int) ([]model.Contact, int64, error) {
	var result []model.Contact
	for _, c := range m.contacts {
		if c.CompanyID != companyID {
			continue
		}
		if keyword != "" && !strings.Contains(c.DisplayName()+" "+c.CompanyName, keyword) {
			continue
		}
		result = append(result, *c)
	}
	return result, int64(len(result)), nil
}

func (m *mockContactRepo) Update(_ context.Context, contact *model.Contact) error {
	cp := *contact
	m.contacts[contact.ContactID] = &cp
	return nil
}

func (m *mockContactRepo) Delete(_ context.Context, companyID, id, _ string) error {
	if c, ok := m.contacts[id]; ok && c.CompanyID == companyID {
		delete(m.contacts, id)
		return nil
	}
	return gorm.ErrRecordNotFound
}

// ── Mock EstimateRepository ──

type mockEstimateRepo struct {
	estimates map[string]*model.Estimate
	revisions map[string][]model.EstimateRevision
}

func newMockEstimateRepo() *mockEstimateRepo {
	return &mockEstimateRepo{
		estimates: make(map[string]*model.Estimate),
		revisions: make(map[string][]model.EstimateRevision),
	}
}

func (m *mockEstimateRepo) Create(_ context.Context, est *model.Estimate) error {
	if est.Version == 0 {
		est.Version = 1
	}
	cp := *est
	cp.Revisions = nil
	m.estimates[est.EstimateID] = &cp
	return nil
}

func (m *mockEstimateRepo) GetByID(_ context.Context, companyID, id string) (*model.Estimate, error) {
	est, ok := m.estimates[id]
	if !ok || est.CompanyID != companyID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *est
	cp.Revisions = append([]model.EstimateRevision(nil), m.revisions[id]...)
	return &cp, nil
}

func (m *mockEstimateRepo) List(_ context.Context, companyID, status string, _, _ int) ([]model.Estimate, int64, error) {
	var result []model.Estimate
	for _, est := range m.estimates {
		if est.CompanyID == companyID && (status == "" || est.Status == status) {
			result = append(result, *est)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockEstimateRepo) Update(_ context.Context, est *model.Estimate) error {
	stored, ok := m.estimates[est.EstimateID]
	if !ok || stored.Version != est.Version {
		return pkgerrors.ErrOptimisticLock
	}
	est.Version++
	cp := *est
	cp.Revisions = nil
	m.estimates[est.EstimateID] = &cp
	return nil
}

func (m *mockEstimateRepo) CreateRevision(_ context.Context, rev *model.EstimateRevision) error {
	m.revisions[rev.EstimateID] = append(m.revisions[rev.EstimateID], *rev)
	return nil
}

// ── Mock Notifier ──

type notifyCall struct {
	event       string
	workOrderID string
	from        workorder.Status
	to          workorder.Status
	employeeID  string
}

type mockNotifier struct {
	mu    sync.Mutex
	calls []notifyCall
	err   error
}

func (m *mockNotifier) WorkOrderStatusChanged(_ context.Context, wo *model.WorkOrder, from workorder.Status, _ []model.WorkOrderAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, notifyCall{event: "status_changed", workOrderID: wo.WorkOrderID, from: from, to: wo.Status})
	return m.err
}

func (m *mockNotifier) EmployeeAssigned(_ context.Context, wo *model.WorkOrder, emp *model.ComplianceEmployee, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, notifyCall{event: "employee_assigned", workOrderID: wo.WorkOrderID, employeeID: emp.EmployeeID})
	return m.err
}

// ── Mock Store ──

type mockStore struct {
	objects  map[string][]byte
	maxBytes int64
}

func newMockStore() *mockStore {
	return &mockStore{objects: make(map[string][]byte), maxBytes: 1 << 20}
}

func (m *mockStore) Put(_ context.Context, name string, r io.Reader) (storage.Object, error) {
	data, err := io.ReadAll(io.LimitReader(r, m.maxBytes+1))
	if err != nil {
		return storage.Object{}, err
	}
	if len(data) == 0 {
		return storage.Object{}, storage.ErrEmpty
	}
	if int64(len(data)) > m.maxBytes {
		return storage.Object{}, storage.ErrTooLarge
	}
	hash := fmt.Sprintf("%064x", len(data))
	key := hash[:2] + "/" + hash + "-" + name
	m.objects[key] = data
	return storage.Object{Key: key, Hash: hash, Size: int64(len(data))}, nil
}

func (m *mockStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// ── Mock TokenBlacklist ──

type mockTokenBlacklist struct {
	revoked map[string]time.Duration
}

func newMockTokenBlacklist() *mockTokenBlacklist {
	return &mockTokenBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockTokenBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.revoked[jti] = ttl
	return nil
}

func (m *mockTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := m.revoked[jti]
	return ok, nil
}
