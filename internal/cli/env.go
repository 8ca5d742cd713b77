// Package cli fieldctl 运维命令。
package cli

import (
	"database/sql"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/repository"
	"github.com/jennifernull0724-ai/CRM-sub000/internal/service"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/database"
	"github.com/jennifernull0724-ai/CRM-sub000/pkg/jwt"
	applogger "github.com/jennifernull0724-ai/CRM-sub000/pkg/logger"
)

var (
	okMark   = color.New(color.FgGreen).Sprint("✓")
	warnMark = color.New(color.FgYellow).Sprint("!")
	failMark = color.New(color.FgRed).Sprint("✗")
)

// env 命令运行所需的依赖
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	sqlDB  *sql.DB
}

// openEnv 加载配置、初始化日志并连接数据库
func openEnv(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}

	return &env{cfg: cfg, logger: logger, db: db, sqlDB: sqlDB}, nil
}

// services 运维命令不发送通知、不吊销 Token、不读写证明文件
func (e *env) services() (*repository.Repository, *service.Service) {
	repo := repository.NewRepository(e.db)
	svc := service.NewService(service.Deps{
		Config: e.cfg,
		Repo:   repo,
		JWT:    jwt.NewManager(&e.cfg.Auth),
		Logger: e.logger,
	})
	return repo, svc
}

func (e *env) Close() {
	_ = e.sqlDB.Close()
	_ = e.logger.Sync()
}
