package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jennifernull0724-ai/CRM-sub000/pkg/database"
)

// MigrateCmd 数据库迁移
func MigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "数据库迁移",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "执行全部未应用的迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := database.RunMigrations(e.sqlDB, e.logger); err != nil {
				fmt.Printf("%s 迁移失败\n", failMark)
				return err
			}
			fmt.Printf("%s 迁移完成\n", okMark)
			return nil
		},
	})

	down := &cobra.Command{
		Use:   "down",
		Short: "回滚迁移",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			if steps < 1 {
				return fmt.Errorf("--steps 必须大于 0")
			}

			e, err := openEnv(cmd)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := database.RollbackMigrations(e.sqlDB, steps, e.logger); err != nil {
				fmt.Printf("%s 回滚失败\n", failMark)
				return err
			}
			fmt.Printf("%s 已回滚 %d 个版本\n", okMark, steps)
			return nil
		},
	}
	down.Flags().Int("steps", 1, "回滚的版本数")
	cmd.AddCommand(down)

	return cmd
}
