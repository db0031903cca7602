package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return cfgPath
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("REDIS_ADDR", "redis.internal:6379")
	t.Setenv("INTAKE_RATE_LIMIT_PER_MINUTE", "12")
	t.Setenv("MAX_UPLOAD_MB", "16")
	t.Setenv("MINIO_USE_SSL", "true")

	cfgPath := writeConfig(t, `
port: "8080"
logLevel: "info"
redisAddr: "localhost:6379"
geminiAPIKey: "file-key"
minioEndpoint: "localhost:9000"
minioBucket: "plants"
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Fatalf("geminiAPIKey = %q, want env override", cfg.GeminiAPIKey)
	}
	if cfg.RedisAddr != "redis.internal:6379" {
		t.Fatalf("redisAddr = %q", cfg.RedisAddr)
	}
	if cfg.IntakeRateLimitPerMinute != 12 {
		t.Fatalf("intakeRateLimitPerMinute = %d, want 12", cfg.IntakeRateLimitPerMinute)
	}
	if cfg.MaxUploadMB != 16 {
		t.Fatalf("maxUploadMB = %d, want 16", cfg.MaxUploadMB)
	}
	if !cfg.MinioUseSSL {
		t.Fatal("minioUseSSL = false, want env override true")
	}
}

func TestValidateConfigRejectsMissingPort(t *testing.T) {
	cfgPath := writeConfig(t, `
logLevel: "info"
redisAddr: "localhost:6379"
geminiAPIKey: "key"
`)
	if _, err := Load(cfgPath); err == nil {
		t.Fatal("expected error for missing port")
	}
}

func TestValidateConfigSessionBackends(t *testing.T) {
	if err := validateConfig(FileConfig{Port: "8080", SessionBackend: "jwt", GeminiAPIKey: "key"}); err == nil {
		t.Fatal("jwt backend without secret must fail")
	}
	if err := validateConfig(FileConfig{Port: "8080", SessionBackend: "jwt", JWTSecret: "s3cret", GeminiAPIKey: "key"}); err != nil {
		t.Fatalf("jwt backend with secret: %v", err)
	}
	if err := validateConfig(FileConfig{Port: "8080", SessionBackend: "redis", GeminiAPIKey: "key"}); err == nil {
		t.Fatal("redis backend without addr must fail")
	}
	if err := validateConfig(FileConfig{Port: "8080", SessionBackend: "memory", GeminiAPIKey: "key"}); err != nil {
		t.Fatalf("memory backend: %v", err)
	}
	if err := validateConfig(FileConfig{Port: "8080", SessionBackend: "cookies", GeminiAPIKey: "key"}); err == nil {
		t.Fatal("unknown backend must fail")
	}
}

func TestValidateConfigRateLimitNeedsRedis(t *testing.T) {
	cfg := FileConfig{Port: "8080", SessionBackend: "memory", GeminiAPIKey: "key", IntakeRateLimitPerMinute: 5}
	if err := validateConfig(cfg); err == nil {
		t.Fatal("rate limiting without redis must fail")
	}
	cfg.RedisAddr = "localhost:6379"
	if err := validateConfig(cfg); err != nil {
		t.Fatalf("rate limiting with redis: %v", err)
	}
}

func TestParseDurations(t *testing.T) {
	if d, err := ParseSessionTTL("720h"); err != nil || d != 720*time.Hour {
		t.Fatalf("ParseSessionTTL = %v, %v", d, err)
	}
	if d, err := ParseSessionTTL(""); err != nil || d != 0 {
		t.Fatalf("empty sessionTTL = %v, %v", d, err)
	}
	if _, err := ParseViewCacheTTL("soon"); err == nil {
		t.Fatal("bad viewCacheTTL must fail")
	}
}

func TestParseTrustedProxies(t *testing.T) {
	got := ParseTrustedProxies(" 10.0.0.0/8 , 192.168.1.1 ,")
	if len(got) != 2 || got[0] != "10.0.0.0/8" || got[1] != "192.168.1.1" {
		t.Fatalf("ParseTrustedProxies = %v", got)
	}
	if ParseTrustedProxies("  ") != nil {
		t.Fatal("blank list must be nil")
	}
}
