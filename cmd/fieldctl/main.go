package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jennifernull0724-ai/CRM-sub000/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "fieldctl",
		Short:   "现场服务调度后台运维工具",
		Version: cli.Version,
		Long: `fieldctl 用于执行数据库迁移、创建登录用户以及定期重算员工合规状态。
配置读取方式与服务端一致（配置文件 + FIELDOPS_ 前缀环境变量）。`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("config", os.Getenv("FIELDOPS_CONFIG"), "配置文件路径")

	rootCmd.AddCommand(cli.MigrateCmd())
	rootCmd.AddCommand(cli.CreateUserCmd())
	rootCmd.AddCommand(cli.RecomputeComplianceCmd())
	rootCmd.AddCommand(cli.VersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
