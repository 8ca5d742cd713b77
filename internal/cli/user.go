package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/authctx"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/dto"
)

// passwordEnv 未通过 --password 传入时读取的环境变量
const passwordEnv = "FIELDOPS_USER_PASSWORD"

// CreateUserCmd 创建登录用户；未指定 --company-id 时新建公司
func CreateUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "创建登录用户",
		Example: `  fieldctl create-user --company-name "滨江电力" --name 陈经理 --email chen@ops.example.com --role owner
  FIELDOPS_USER_PASSWORD=... fieldctl create-user --company-id <uuid> --name 王调度 --email wang@ops.example.com --role dispatcher`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateUserRequest{}
			req.CompanyID, _ = cmd.Flags().GetString("company-id")
			req.CompanyName, _ = cmd.Flags().GetString("company-name")
			req.Name, _ = cmd.Flags().GetString("name")
			req.Email, _ = cmd.Flags().GetString("email")
			req.Role, _ = cmd.Flags().GetString("role")
			req.Password, _ = cmd.Flags().GetString("password")
			if req.Password == "" {
				req.Password = os.Getenv(passwordEnv)
			}

			if req.CompanyID == "" && req.CompanyName == "" {
				return fmt.Errorf("必须指定 --company-id 或 --company-name")
			}
			if !authctx.ValidRole(req.Role) {
				return fmt.Errorf("角色无效: %q（可选 %v）", req.Role, authctx.Roles)
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			_, svc := e.services()
			user, err := svc.Auth.CreateUser(context.Background(), &req)
			if err != nil {
				fmt.Printf("%s 创建用户失败\n", failMark)
				return err
			}

			fmt.Printf("%s 已创建用户 %s <%s>\n", okMark, user.Name, user.Email)
			fmt.Printf("  用户 ID: %s\n", user.ID)
			fmt.Printf("  公司 ID: %s\n", color.New(color.FgCyan).Sprint(user.CompanyID))
			fmt.Printf("  角色:    %s\n", user.Role)
			return nil
		},
	}

	cmd.Flags().String("company-id", "", "已有公司 ID")
	cmd.Flags().String("company-name", "", "新建公司名称")
	cmd.Flags().String("name", "", "姓名")
	cmd.Flags().String("email", "", "登录邮箱")
	cmd.Flags().String("role", authctx.RoleDispatcher, "角色")
	cmd.Flags().String("password", "", "登录密码（也可通过 "+passwordEnv+" 传入）")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}
