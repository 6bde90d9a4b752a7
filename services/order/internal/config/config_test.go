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
	if cfg.HTTPAddr != "127.0.0.1:8081" {
		t.Errorf("Expected HTTPAddr=127.0.0.1:8081, got %s", cfg.HTTPAddr)
	}
	if cfg.CatalogURL != "http://127.0.0.1:8080" {
		t.Errorf("Expected CatalogURL=http://127.0.0.1:8080, got %s", cfg.CatalogURL)
	}
	if cfg.ProcessingInterval != 5*time.Second {
		t.Errorf("Expected ProcessingInterval=5s, got %s", cfg.ProcessingInterval)
	}
	if cfg.BatchSize != 10 {
		t.Errorf("Expected BatchSize=10, got %d", cfg.BatchSize)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", cfg.MaxRetries)
	}
	if cfg.OutboxRetention != 24*time.Hour {
		t.Errorf("Expected OutboxRetention=24h, got %s", cfg.OutboxRetention)
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
	if cfg.HTTPAddr != "0.0.0.0:8081" {
		t.Errorf("Expected HTTPAddr=0.0.0.0:8081, got %s", cfg.HTTPAddr)
	}
	if cfg.CatalogURL != "http://catalog:8080" {
		t.Errorf("Expected CatalogURL=http://catalog:8080, got %s", cfg.CatalogURL)
	}
	if len(cfg.Kafka.Brokers) != 1 || cfg.Kafka.Brokers[0] != "kafka:9092" {
		t.Errorf("Expected Kafka brokers [kafka:9092], got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	os.Clearenv()
	os.Setenv("APP_ENV", "local")
	os.Setenv("PROCESSING_INTERVAL", "2")
	os.Setenv("BATCH_SIZE", "25")
	os.Setenv("KAFKA_BOOTSTRAP_SERVERS", "broker1:9092,broker2:9092")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.ProcessingInterval != 2*time.Second {
		t.Errorf("Expected ProcessingInterval=2s, got %s", cfg.ProcessingInterval)
	}
	if cfg.BatchSize != 25 {
		t.Errorf("Expected BatchSize=25, got %d", cfg.BatchSize)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("Expected 2 kafka brokers, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "invalid APP_ENV", key: "APP_ENV", value: "production"},
		{name: "invalid BATCH_SIZE", key: "BATCH_SIZE", value: "ten"},
		{name: "invalid SHUTDOWN_TIMEOUT", key: "SHUTDOWN_TIMEOUT", value: "soon"},
		{name: "zero PROCESSING_INTERVAL", key: "PROCESSING_INTERVAL", value: "0"},
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
