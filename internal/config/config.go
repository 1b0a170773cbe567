package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	defaultListenAddr = ":8080"
	defaultDSN        = "repairdesk.db"
	defaultJWTSecret  = "change-me-jwt-secret"
	defaultJWTTTL     = "24h"
	defaultOTPTTL     = "10m"
	defaultUploadsDir = "./uploads"
)

type Config struct {
	AppEnv     string
	ListenAddr string
	DSN        string
	JWTSecret  string
	JWTTTL     time.Duration
	OTPTTL     time.Duration
	UploadsDir string
	// Extra CORS origins beyond the local-dev defaults,
	// comma-separated.
	CORSOrigins []string
}

func Load() (*Config, error) {
	cfg := &Config{}

	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)

	cfg.ListenAddr = getEnv("LISTEN_ADDR", defaultListenAddr)
	cfg.DSN = getEnv("DATABASE_URL", defaultDSN)
	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret))
	cfg.UploadsDir = getEnv("UPLOADS_DIR", defaultUploadsDir)

	var err error
	cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", defaultJWTTTL)
	if err != nil {
		return nil, err
	}
	cfg.OTPTTL, err = parseDurationEnv("OTP_TTL", defaultOTPTTL)
	if err != nil {
		return nil, err
	}

	if extra := os.Getenv("CORS_ALLOWED_ORIGINS"); extra != "" {
		for _, o := range strings.Split(extra, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.AppEnv == "prod" && cfg.JWTSecret == defaultJWTSecret {
		return nil, fmt.Errorf("JWT_SECRET must be set in prod")
	}

	return cfg, nil
}

func getEnv(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}

func parseDurationEnv(name, def string) (time.Duration, error) {
	raw := getEnv(name, def)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", name)
	}
	return d, nil
}
