package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/core/compliance"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	pkgerrors "github.com/jennifernull0724-ai/CRM-sub000/pkg/errors"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

const (
	defaultCalendarDays = 30
	maxCalendarDays     = 92
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// WorkOrderSheet 工单派工单（.xlsx）：工单信息 + 在岗人员合规情况 + 设备
	WorkOrderSheet(ctx context.Context, actor authctx.Actor, id string) (*bytes.Buffer, string, error)
	// ComplianceRoster 资质花名册（.xlsx）：员工 × 资质
	ComplianceRoster(ctx context.Context, actor authctx.Actor) (*bytes.Buffer, string, error)
	// Calendar 已排期工单的 iCalendar，区间 [from, to)；零值使用默认区间
	Calendar(ctx context.Context, actor authctx.Actor, from, to time.Time) (string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{cfg: cfg, repo: repo, logger: logger, now: utcNow}
}

// ═══════════════════════════════════════════════════════════
// WorkOrderSheet — 工单派工单
// ═══════════════════════════════════════════════════════════
//
// Sheet "派工单"：
//   - 1~6 行：工单编号、标题、状态、计划时间、地址、合规标记
//   - 表头：姓名 | 角色 | 合规状态 | 缺失资质 | 即将到期 | 豁免 | 豁免理由 | 派工时间
//
// Sheet "设备"：名称 | 类型 | 派用时间

func (s *exportService) WorkOrderSheet(ctx context.Context, actor authctx.Actor, id string) (*bytes.Buffer, string, error) {
	wo, err := s.repo.WorkOrder.GetByID(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, "", lookupErr(s.logger, err, "work order", id)
	}
	crew, err := s.repo.Assignment.ListActive(ctx, wo.WorkOrderID)
	if err != nil {
		s.logger.Error("查询派工失败", zap.String("work_order_id", id), zap.Error(err))
		return nil, "", err
	}
	assets, err := s.repo.WorkOrderAsset.ListActive(ctx, wo.WorkOrderID)
	if err != nil {
		s.logger.Error("查询工单设备失败", zap.String("work_order_id", id), zap.Error(err))
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "派工单"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	labelStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	// 工单信息
	scheduled := "-"
	if wo.ScheduledFor != nil {
		scheduled = fmt.Sprintf("%s（%d 分钟）", wo.ScheduledFor.UTC().Format("2006-01-02 15:04"), wo.DurationMinutes)
	}
	flags := "通过"
	if wo.ComplianceBlocked {
		flags = "存在资质缺口"
		if wo.OverrideApproved {
			flags += "（已豁免）"
		}
	}
	info := [][2]string{
		{"工单编号", wo.Number},
		{"标题", wo.Title},
		{"状态", string(wo.Status)},
		{"计划时间", scheduled},
		{"地址", orDash(wo.SiteAddress)},
		{"合规", flags},
	}
	for i, kv := range info {
		row := i + 1
		f.SetCellValue(sheet, cell("A", row), kv[0])
		f.SetCellValue(sheet, cell("B", row), kv[1])
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), labelStyle)
	}

	// 人员表
	headers := []string{"姓名", "角色", "合规状态", "缺失资质", "即将到期", "豁免", "豁免理由", "派工时间"}
	widths := []float64{16, 12, 12, 30, 30, 8, 30, 18}
	headerRow := len(info) + 2
	for i, h := range headers {
		col := colName(i)
		f.SetColWidth(sheet, col, col, widths[i])
		f.SetCellValue(sheet, cell(col, headerRow), h)
	}
	f.SetCellStyle(sheet, cell("A", headerRow), cell(colName(len(headers)-1), headerRow), headerStyle)

	row := headerRow + 1
	for i := range crew {
		a := &crew[i]
		name := a.EmployeeID
		if a.Employee != nil {
			name = a.Employee.Name
		}
		gaps := a.GapSummary.Data()
		override := "否"
		if a.OverrideAcknowledged {
			override = "是"
		}
		values := []interface{}{
			name,
			a.Role,
			string(a.ComplianceStatus),
			gapNames(gaps.Missing),
			gapNames(gaps.Expiring),
			override,
			orDash(a.OverrideReason),
			a.AssignedAt.UTC().Format("2006-01-02 15:04"),
		}
		for j, v := range values {
			f.SetCellValue(sheet, cell(colName(j), row), v)
		}
		row++
	}

	// 设备表
	assetSheet := "设备"
	f.NewSheet(assetSheet)
	f.SetColWidth(assetSheet, "A", "A", 24)
	f.SetColWidth(assetSheet, "B", "B", 12)
	f.SetColWidth(assetSheet, "C", "C", 18)
	for i, h := range []string{"名称", "类型", "派用时间"} {
		f.SetCellValue(assetSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(assetSheet, "A1", "C1", headerStyle)
	for i := range assets {
		wa := &assets[i]
		name, typ := wa.AssetID, "-"
		if wa.Asset != nil {
			name, typ = wa.Asset.Name, wa.Asset.AssetType
		}
		f.SetCellValue(assetSheet, cell("A", i+2), name)
		f.SetCellValue(assetSheet, cell("B", i+2), typ)
		f.SetCellValue(assetSheet, cell("C", i+2), wa.AssignedAt.UTC().Format("2006-01-02 15:04"))
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("派工单_%s.xlsx", wo.Number), nil
}

// ═══════════════════════════════════════════════════════════
// ComplianceRoster — 资质花名册
// ═══════════════════════════════════════════════════════════
//
// 行：员工（按姓名）；列：姓名 | 职位 | 在职 | 合规状态 | <各资质名称...>
// 资质单元格：有效状态，带有效期时附加 "至 yyyy-mm-dd"

func (s *exportService) ComplianceRoster(ctx context.Context, actor authctx.Actor) (*bytes.Buffer, string, error) {
	if err := authctx.Require(actor.CanManageCompliance()); err != nil {
		return nil, "", err
	}
	employees, err := s.repo.Employee.ListWithCertifications(ctx, actor.CompanyID)
	if err != nil {
		s.logger.Error("查询员工失败", zap.Error(err))
		return nil, "", err
	}

	now := s.now()
	certSet := make(map[string]bool)
	for i := range employees {
		for _, c := range employees[i].Certifications {
			certSet[c.Name] = true
		}
	}
	certNames := make([]string, 0, len(certSet))
	for name := range certSet {
		certNames = append(certNames, name)
	}
	sort.Strings(certNames)

	f := excelize.NewFile()
	defer f.Close()

	sheet := "资质花名册"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	gapStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})

	headers := append([]string{"姓名", "职位", "在职", "合规状态"}, certNames...)
	for i, h := range headers {
		col := colName(i)
		f.SetCellValue(sheet, cell(col, 1), h)
		width := 20.0
		if i == 2 {
			width = 8
		}
		f.SetColWidth(sheet, col, col, width)
	}
	f.SetCellStyle(sheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, Split: false, XSplit: 1, YSplit: 1, TopLeftCell: "B2", ActivePane: "bottomRight"})

	for i := range employees {
		emp := &employees[i]
		row := i + 2
		active := "否"
		if emp.IsActive {
			active = "是"
		}
		f.SetCellValue(sheet, cell("A", row), emp.Name)
		f.SetCellValue(sheet, cell("B", row), orDash(emp.Title))
		f.SetCellValue(sheet, cell("C", row), active)
		f.SetCellValue(sheet, cell("D", row), string(emp.ComplianceStatus))

		byName := make(map[string]*model.ComplianceCertification, len(emp.Certifications))
		for j := range emp.Certifications {
			byName[emp.Certifications[j].Name] = &emp.Certifications[j]
		}
		for j, name := range certNames {
			col := colName(4 + j)
			c, ok := byName[name]
			if !ok {
				f.SetCellValue(sheet, cell(col, row), "-")
				continue
			}
			eff := compliance.EffectiveStatus(c.ToCore(), now)
			text := string(eff)
			if c.ExpiresAt != nil {
				text += " 至 " + c.ExpiresAt.UTC().Format("2006-01-02")
			}
			f.SetCellValue(sheet, cell(col, row), text)
			if c.Required && eff != compliance.StatusPass {
				f.SetCellStyle(sheet, cell(col, row), cell(col, row), gapStyle)
			}
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, fmt.Sprintf("资质花名册_%s.xlsx", now.Format("20060102")), nil
}

// ═══════════════════════════════════════════════════════════
// Calendar — 派工日历
// ═══════════════════════════════════════════════════════════

func (s *exportService) Calendar(ctx context.Context, actor authctx.Actor, from, to time.Time) (string, error) {
	if from.IsZero() {
		y, m, d := s.now().Date()
		from = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if to.IsZero() {
		to = from.AddDate(0, 0, defaultCalendarDays)
	}
	if !to.After(from) {
		return "", pkgerrors.Invalid("to", "结束日期必须晚于开始日期")
	}
	if to.Sub(from) > maxCalendarDays*24*time.Hour {
		return "", pkgerrors.Invalid("to", fmt.Sprintf("区间不能超过 %d 天", maxCalendarDays))
	}

	list, err := s.repo.WorkOrder.ListScheduled(ctx, actor.CompanyID, from, to)
	if err != nil {
		s.logger.Error("查询排期工单失败", zap.Error(err))
		return "", err
	}
	return buildCalendar(list, s.cfg.Server.BaseURL), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func gapNames(gaps []compliance.Gap) string {
	if len(gaps) == 0 {
		return "-"
	}
	names := make([]string, 0, len(gaps))
	for _, g := range gaps {
		names = append(names, fmt.Sprintf("%s(%s)", g.Name, g.Status))
	}
	return strings.Join(names, "、")
}
