package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/model"
)

// RecomputeComplianceCmd 重算员工合规缓存
// 资质到期不会触发写操作，需定期执行以刷新缓存的合规状态
func RecomputeComplianceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recompute-compliance",
		Short: "重算员工合规状态（默认全部公司）",
		RunE: func(cmd *cobra.Command, args []string) error {
			companyID, _ := cmd.Flags().GetString("company-id")

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx := context.Background()
			repo, svc := e.services()

			var companies []model.Company
			if companyID != "" {
				company, err := repo.Company.GetByID(ctx, companyID)
				if err != nil {
					return fmt.Errorf("公司 %s 不存在: %w", companyID, err)
				}
				companies = []model.Company{*company}
			} else {
				companies, err = repo.Company.List(ctx)
				if err != nil {
					return fmt.Errorf("查询公司失败: %w", err)
				}
			}

			var failed int
			for _, company := range companies {
				result, err := svc.Compliance.RecomputeAll(ctx, company.CompanyID)
				if err != nil {
					failed++
					e.logger.Error("重算合规状态失败", zap.String("company_id", company.CompanyID), zap.Error(err))
					fmt.Printf("%s %s: %v\n", failMark, company.Name, err)
					continue
				}

				mark := okMark
				if result.Changed > 0 {
					mark = warnMark
				}
				fmt.Printf("%s %s: %d 名员工，%s 名状态变化\n",
					mark, company.Name, result.Employees,
					color.New(color.Bold).Sprint(result.Changed))
			}

			if failed > 0 {
				return fmt.Errorf("%d 家公司重算失败", failed)
			}
			return nil
		},
	}

	cmd.Flags().String("company-id", "", "仅重算指定公司")
	return cmd
}
