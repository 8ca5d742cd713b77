package logger

import (
	"testing"

	"github.com/jennifernull0724-ai/CRM-sub000/config"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.LogConfig
		wantErr bool
	}{
		{name: "json", cfg: config.LogConfig{Level: "info", Format: "json"}},
		{name: "console", cfg: config.LogConfig{Level: "debug", Format: "console"}},
		{name: "非法级别", cfg: config.LogConfig{Level: "verbose", Format: "json"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(&tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger err=%v, wantErr=%v", err, tt.wantErr)
			}
			if err == nil && l == nil {
				t.Fatal("logger 不应为 nil")
			}
		})
	}
}
