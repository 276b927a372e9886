// Package config loads and validates environment variables at startup.
// Fail-fast: a missing required variable or a malformed value is an error.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the recruitment service.
type Config struct {
	HTTPPort    string
	GRPCPort    string
	DatabaseURL string
	RedisURL    string
	LogLevel    string

	// NotifyChannel is the Redis channel notifications are published on.
	NotifyChannel string
	// RoleAliasesFile optionally points at a YAML alias table.
	RoleAliasesFile string
	// EnforceApproverRoles rejects offers whose approvers miss a required role.
	EnforceApproverRoles bool
	SweepInterval        time.Duration
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	enforce := false
	if v := os.Getenv("OFFER_ENFORCE_APPROVER_ROLES"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("OFFER_ENFORCE_APPROVER_ROLES: %w", err)
		}
		enforce = b
	}

	minutes := 60
	if v := os.Getenv("SWEEP_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("SWEEP_INTERVAL_MINUTES must be a positive integer, got %q", v)
		}
		minutes = n
	}

	return &Config{
		HTTPPort:             getEnv("RECRUITMENT_HTTP_PORT", "8083"),
		GRPCPort:             getEnv("RECRUITMENT_GRPC_PORT", "50053"),
		DatabaseURL:          dbURL,
		RedisURL:             redisURL,
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		NotifyChannel:        getEnv("NOTIFY_CHANNEL", "EVENT_NOTIFICATION"),
		RoleAliasesFile:      os.Getenv("ROLE_ALIASES_FILE"),
		EnforceApproverRoles: enforce,
		SweepInterval:        time.Duration(minutes) * time.Minute,
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
