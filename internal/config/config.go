package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации приложения.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	World     WorldConfig     `yaml:"world"`
	Storage   StorageConfig   `yaml:"storage"`
	EventBus  EventBusConfig  `yaml:"eventbus"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ServerConfig struct {
	RESTPort    int `yaml:"rest_port"`
	MetricsPort int `yaml:"metrics_port"`
}

// GetRESTPort возвращает REST API порт с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "GAME_REST_PORT", 8088)
}

// GetMetricsPort возвращает Prometheus метрики порт с поддержкой fallback значений
func (s *ServerConfig) GetMetricsPort() int {
	return getPortWithEnvFallback(s.MetricsPort, "GAME_METRICS_PORT", 2112)
}

// WorldConfig описывает мир: сид, роль процесса и каталог ассетов
type WorldConfig struct {
	Seed      int64  `yaml:"seed"`
	Role      string `yaml:"role"`
	AssetsDir string `yaml:"assets_dir"`
	// Размер квадрата, который засевает генератор (в блоках)
	GeneratorSize int `yaml:"generator_size"`
}

const (
	defaultRole          = "server"
	defaultAssetsDir     = "assets"
	defaultGeneratorSize = 32
)

// GetRole возвращает роль ("server" | "client")
func (w *WorldConfig) GetRole() string {
	if w.Role != "" {
		return w.Role
	}
	if env := os.Getenv("GAME_ROLE"); env != "" {
		return env
	}
	return defaultRole
}

// GetAssetsDir возвращает каталог с описаниями блоков и предметов
func (w *WorldConfig) GetAssetsDir() string {
	if w.AssetsDir != "" {
		return w.AssetsDir
	}
	if env := os.Getenv("GAME_ASSETS_DIR"); env != "" {
		return env
	}
	return defaultAssetsDir
}

// GetGeneratorSize возвращает размер области генерации
func (w *WorldConfig) GetGeneratorSize() int {
	if w.GeneratorSize > 0 {
		return w.GeneratorSize
	}
	return defaultGeneratorSize
}

// Поддерживаемые хранилища настроек поведений
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageBadger = "badger"
	StorageRedis  = "redis"
	StorageMaria  = "maria"
)

type StorageConfig struct {
	Backend string `yaml:"backend"`
	// Path – каталог для file/badger
	Path          string `yaml:"path"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	KeyPrefix     string `yaml:"key_prefix"`
	DSN           string `yaml:"dsn"`
}

type EventBusConfig struct {
	URL       string `yaml:"url"`
	Stream    string `yaml:"stream"`
	Retention int    `yaml:"retention_hours"`
}

type TelemetryConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default возвращает конфигурацию для запуска без файла
func Default() *Config {
	return &Config{
		World:     WorldConfig{Role: defaultRole, AssetsDir: defaultAssetsDir, GeneratorSize: defaultGeneratorSize},
		Storage:   StorageConfig{Backend: StorageMemory},
		Telemetry: TelemetryConfig{ServiceName: "resinfarm"},
		Logging:   LoggingConfig{Level: "INFO"},
	}
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	// Используем дефолтное значение
	return defaultPort
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV GAME_CONFIG или возвращает nil, nil.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("GAME_CONFIG")
		if path == "" {
			return nil, nil // конфиг не задан — использовать дефолты
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("ошибка разбора %s: %w", path, err)
	}

	return cfg, nil
}
