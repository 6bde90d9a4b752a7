package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Env представляет окружение приложения
type Env string

const (
	// EnvLocal - локальное окружение (для разработки на хосте)
	EnvLocal Env = "local"
	// EnvDocker - Docker окружение (для запуска в контейнерах)
	EnvDocker Env = "docker"
)

// Config содержит конфигурацию Payment Mock Service.
// Сервис имитирует внешнего провайдера: ни БД, ни Kafka у него нет.
type Config struct {
	AppEnv   Env
	HTTPAddr string

	// Доля отказов провайдера, 0.0..1.0
	FailureRate float64
	// Имитация сетевой задержки провайдера
	Delay time.Duration

	ShutdownTimeout time.Duration

	// OpenTelemetry
	OTELEnabled       bool
	OTELEndpoint      string
	OTELSamplingRatio float64
}

// Load загружает конфигурацию из переменных окружения.
// Читает APP_ENV и устанавливает дефолты в зависимости от окружения.
func Load() (Config, error) {
	cfg := Config{}

	appEnvStr := getString("APP_ENV", string(EnvLocal))
	appEnv := Env(appEnvStr)
	if appEnv != EnvLocal && appEnv != EnvDocker {
		return Config{}, fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", appEnvStr)
	}
	cfg.AppEnv = appEnv

	if cfg.AppEnv == EnvLocal {
		cfg.HTTPAddr = getString("HTTP_ADDR", "127.0.0.1:8084")
	} else {
		cfg.HTTPAddr = getString("HTTP_ADDR", "0.0.0.0:8084")
	}

	var err error
	cfg.FailureRate, err = getFloat("FAILURE_RATE", 0.1)
	if err != nil {
		return Config{}, err
	}

	delayMs, err := getInt("DELAY_MS", 100)
	if err != nil {
		return Config{}, err
	}
	cfg.Delay = time.Duration(delayMs) * time.Millisecond

	cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}

	cfg.OTELEnabled = getString("OTEL_ENABLED", "false") == "true"
	cfg.OTELEndpoint = getString("OTEL_EXPORTER_OTLP_ENDPOINT", "127.0.0.1:4317")
	cfg.OTELSamplingRatio, err = getFloat("OTEL_SAMPLING_RATIO", 1.0)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.FailureRate < 0 || c.FailureRate > 1 {
		return fmt.Errorf("FAILURE_RATE must be between 0.0 and 1.0")
	}
	if c.Delay < 0 {
		return fmt.Errorf("DELAY_MS must not be negative")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// Log выводит конфигурацию в лог
func (c Config) Log() {
	log.Printf("Config loaded:")
	log.Printf("  APP_ENV: %s", c.AppEnv)
	log.Printf("  HTTP_ADDR: %s", c.HTTPAddr)
	log.Printf("  FAILURE_RATE: %.2f", c.FailureRate)
	log.Printf("  DELAY_MS: %d", c.Delay.Milliseconds())
	log.Printf("  SHUTDOWN_TIMEOUT: %s", c.ShutdownTimeout)
}

// getString читает переменную окружения или возвращает дефолт
func getString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getInt читает целочисленную переменную окружения или возвращает дефолт
func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// getFloat читает float переменную окружения или возвращает дефолт
func getFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

// getDuration читает duration переменную окружения или возвращает дефолт
func getDuration(key, defaultValue string) (time.Duration, error) {
	value := getString(key, defaultValue)
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
