package config_test

import (
	"testing"
	"time"

	"hrdesk/recruitment-service/internal/config"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "postgres://localhost/hr")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPPort != "8083" || cfg.GRPCPort != "50053" {
		t.Errorf("ports = %s/%s", cfg.HTTPPort, cfg.GRPCPort)
	}
	if cfg.NotifyChannel != "EVENT_NOTIFICATION" {
		t.Errorf("channel = %q", cfg.NotifyChannel)
	}
	if cfg.EnforceApproverRoles {
		t.Error("role enforcement should default to off")
	}
	if cfg.SweepInterval != time.Hour {
		t.Errorf("sweep interval = %v, want 1h", cfg.SweepInterval)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("RECRUITMENT_GRPC_PORT", "6000")
	t.Setenv("OFFER_ENFORCE_APPROVER_ROLES", "true")
	t.Setenv("SWEEP_INTERVAL_MINUTES", "15")
	t.Setenv("ROLE_ALIASES_FILE", "/etc/hr/aliases.yaml")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GRPCPort != "6000" || !cfg.EnforceApproverRoles || cfg.SweepInterval != 15*time.Minute {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.RoleAliasesFile != "/etc/hr/aliases.yaml" {
		t.Errorf("aliases file = %q", cfg.RoleAliasesFile)
	}
}

func TestLoad_FailsFast(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"missing database", map[string]string{"DATABASE_URL": "", "REDIS_URL": "redis://x"}},
		{"missing redis", map[string]string{"DATABASE_URL": "postgres://x", "REDIS_URL": ""}},
		{"bad bool", map[string]string{"DATABASE_URL": "postgres://x", "REDIS_URL": "redis://x", "OFFER_ENFORCE_APPROVER_ROLES": "sometimes"}},
		{"bad interval", map[string]string{"DATABASE_URL": "postgres://x", "REDIS_URL": "redis://x", "SWEEP_INTERVAL_MINUTES": "0"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if _, err := config.Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
