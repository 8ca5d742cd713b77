package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("FIELDOPS_AUTH_JWT_SECRET", "test-secret-key-for-unit-testing")
	t.Setenv("FIELDOPS_SERVER_PORT", "9090")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("compliance:\n  expiry_warning_days: 45\n"), 0o600); err != nil {
		t.Fatalf("写入配置失败: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load 失败: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("期望 port=9090（环境变量覆盖），实际=%d", cfg.Server.Port)
	}
	if cfg.Compliance.ExpiryWarningDays != 45 {
		t.Errorf("期望 expiry_warning_days=45，实际=%d", cfg.Compliance.ExpiryWarningDays)
	}
	if cfg.Compliance.OverrideReasonMinLen != 10 {
		t.Errorf("期望 override_reason_min_len 默认 10，实际=%d", cfg.Compliance.OverrideReasonMinLen)
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("期望 access_token_ttl=15m，实际=%v", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Compliance.WarningWindow() != 45*24*time.Hour {
		t.Errorf("WarningWindow 计算错误: %v", cfg.Compliance.WarningWindow())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "合法配置", mutate: func(c *Config) {}},
		{name: "缺少 jwt_secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: true},
		{name: "jwt_secret 过短", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: true},
		{name: "端口越界", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "豁免理由长度为 0", mutate: func(c *Config) { c.Compliance.OverrideReasonMinLen = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Server:     ServerConfig{Port: 8080},
				Auth:       AuthConfig{JWTSecret: "0123456789abcdef"},
				Compliance: ComplianceConfig{ExpiryWarningDays: 30, OverrideReasonMinLen: 10},
			}
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() err=%v, wantErr=%v", err, tt.wantErr)
			}
		})
	}
}
