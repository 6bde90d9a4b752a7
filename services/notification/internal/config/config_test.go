package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_LocalDefaults(t *testing.T) {
	// Очищаем env
	os.Clearenv()
	os.Setenv("APP_ENV", "local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != EnvLocal {
		t.Errorf("Expected AppEnv=local, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != "127.0.0.1:8083" {
		t.Errorf("Expected HTTPAddr=127.0.0.1:8083, got %s", cfg.HTTPAddr)
	}
	if !cfg.EmailEnabled || !cfg.SMSEnabled || !cfg.PushEnabled || !cfg.WebhookEnabled {
		t.Errorf("Expected all channels enabled by default")
	}
	if cfg.MaxNotificationsPerMinute != 100 {
		t.Errorf("Expected MaxNotificationsPerMinute=100, got %d", cfg.MaxNotificationsPerMinute)
	}
	if cfg.RedisAddr != "" {
		t.Errorf("Expected empty RedisAddr for local env, got %s", cfg.RedisAddr)
	}
	if cfg.ConsumerBackoffBase != time.Second {
		t.Errorf("Expected ConsumerBackoffBase=1s, got %s", cfg.ConsumerBackoffBase)
	}
}

func TestLoad_DockerDefaults(t *testing.T) {
	// Очищаем env
	os.Clearenv()
	os.Setenv("APP_ENV", "docker")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.AppEnv != EnvDocker {
		t.Errorf("Expected AppEnv=docker, got %s", cfg.AppEnv)
	}
	if cfg.HTTPAddr != "0.0.0.0:8083" {
		t.Errorf("Expected HTTPAddr=0.0.0.0:8083, got %s", cfg.HTTPAddr)
	}
	if cfg.RedisAddr != "redis:6379" {
		t.Errorf("Expected RedisAddr=redis:6379, got %s", cfg.RedisAddr)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "kafka:9092" {
		t.Errorf("Expected Kafka brokers [kafka:9092], got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")
	os.Setenv("EMAIL_ENABLED", "false")
	os.Setenv("WEBHOOK_ENABLED", "0")
	os.Setenv("MAX_NOTIFICATIONS_PER_MINUTE", "10")
	os.Setenv("REDIS_ADDR", "127.0.0.1:16379")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.EmailEnabled {
		t.Errorf("Expected EmailEnabled=false")
	}
	if cfg.WebhookEnabled {
		t.Errorf("Expected WebhookEnabled=false")
	}
	if cfg.MaxNotificationsPerMinute != 10 {
		t.Errorf("Expected MaxNotificationsPerMinute=10, got %d", cfg.MaxNotificationsPerMinute)
	}
	if cfg.RedisAddr != "127.0.0.1:16379" {
		t.Errorf("Expected RedisAddr=127.0.0.1:16379, got %s", cfg.RedisAddr)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "invalid APP_ENV", key: "APP_ENV", value: "production"},
		{name: "invalid MAX_NOTIFICATIONS_PER_MINUTE", key: "MAX_NOTIFICATIONS_PER_MINUTE", value: "many"},
		{name: "zero MAX_NOTIFICATIONS_PER_MINUTE", key: "MAX_NOTIFICATIONS_PER_MINUTE", value: "0"},
		{name: "invalid KAFKA_RETRY_BACKOFF_BASE", key: "KAFKA_RETRY_BACKOFF_BASE", value: "soon"},
		{name: "invalid SHUTDOWN_TIMEOUT", key: "SHUTDOWN_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			os.Setenv("APP_ENV", "local")
			os.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
