package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Роли клиента
const (
	RoleResponder = "responder"
	RoleResident  = "resident"
)

// Config - структура для хранения конфигурации клиента координации
type Config struct {
	APIBaseURL string `env:"API_BASE_URL"`
	SocketURL  string `env:"SOCKET_URL"`
	AuthToken  string `env:"AUTH_TOKEN"`
	Role       string `env:"ROLE" envDefault:"responder"`
	IncidentID string `env:"INCIDENT_ID"`

	HTTPPort  string `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Location Config
	LocationInterval    time.Duration `env:"LOCATION_INTERVAL" envDefault:"5s"`
	LocationMinInterval time.Duration `env:"LOCATION_MIN_INTERVAL" envDefault:"2s"`
	LocationPermission  bool          `env:"LOCATION_PERMISSION" envDefault:"true"`

	// Socket Config
	JoinTimeout        time.Duration `env:"JOIN_TIMEOUT" envDefault:"10s"`
	ReconnectBaseDelay time.Duration `env:"RECONNECT_BASE_DELAY" envDefault:"1s"`
	ReconnectMaxDelay  time.Duration `env:"RECONNECT_MAX_DELAY" envDefault:"30s"`
	HeartbeatInterval  time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"25s"`

	// REST Config
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	RouteServiceURL string        `env:"ROUTE_SERVICE_URL" envDefault:"https://router.project-osrm.org"`

	// Redis Config
	RedisAddr        string        `env:"REDIS_ADDR"`
	RedisPass        string        `env:"REDIS_PASSWORD"`
	RedisDB          int           `env:"REDIS_DB" envDefault:"0"`
	LocationCacheTTL time.Duration `env:"LOCATION_CACHE_TTL" envDefault:"30s"`

	// Webhook Config
	WebhookURL        string        `env:"WEBHOOK_URL"`
	WebhookSecret     string        `env:"WEBHOOK_SECRET"`
	WebhookTimeout    time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"5s"`
	WebhookMaxRetries int           `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	WebhookBaseDelay  time.Duration `env:"WEBHOOK_BASE_DELAY" envDefault:"1s"`

	// API Keys for local control API
	APIKeys []string `env:"API_KEYS"`
}

var apiSuffix = regexp.MustCompile(`/api/?$`)

// LoadConfig загружает конфигурацию из переменных окружения и .env файла
func LoadConfig() (*Config, error) {
	// Загрузка переменных окружения из .env файла (если есть)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("ошибка загрузки файла .env: %w", err)
	}

	cfg := &Config{
		APIBaseURL:          os.Getenv("API_BASE_URL"),
		SocketURL:           os.Getenv("SOCKET_URL"),
		AuthToken:           os.Getenv("AUTH_TOKEN"),
		Role:                strings.ToLower(getEnv("ROLE", RoleResponder)),
		IncidentID:          os.Getenv("INCIDENT_ID"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		LocationInterval:    getEnvAsDuration("LOCATION_INTERVAL", 5*time.Second),
		LocationMinInterval: getEnvAsDuration("LOCATION_MIN_INTERVAL", 2*time.Second),
		LocationPermission:  getEnvAsBool("LOCATION_PERMISSION", true),
		JoinTimeout:         getEnvAsDuration("JOIN_TIMEOUT", 10*time.Second),
		ReconnectBaseDelay:  getEnvAsDuration("RECONNECT_BASE_DELAY", time.Second),
		ReconnectMaxDelay:   getEnvAsDuration("RECONNECT_MAX_DELAY", 30*time.Second),
		HeartbeatInterval:   getEnvAsDuration("HEARTBEAT_INTERVAL", 25*time.Second),
		RequestTimeout:      getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		RouteServiceURL:     getEnv("ROUTE_SERVICE_URL", "https://router.project-osrm.org"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPass:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:             getEnvAsInt("REDIS_DB", 0),
		LocationCacheTTL:    getEnvAsDuration("LOCATION_CACHE_TTL", 30*time.Second),
		WebhookURL:          os.Getenv("WEBHOOK_URL"),
		WebhookSecret:       os.Getenv("WEBHOOK_SECRET"),
		WebhookTimeout:      getEnvAsDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:   getEnvAsInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookBaseDelay:    getEnvAsDuration("WEBHOOK_BASE_DELAY", time.Second),
	}

	// Загрузка API ключей
	apiKeysStr := os.Getenv("API_KEYS")
	if apiKeysStr != "" {
		cfg.APIKeys = strings.Split(apiKeysStr, ",")
		for i, key := range cfg.APIKeys {
			cfg.APIKeys[i] = strings.TrimSpace(key)
		}
	}

	if cfg.SocketURL == "" {
		cfg.SocketURL = SocketURLFromAPI(cfg.APIBaseURL)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет согласованность значений
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL environment variable is required")
	}
	if c.Role != RoleResponder && c.Role != RoleResident {
		return fmt.Errorf("ROLE must be %q or %q, got %q", RoleResponder, RoleResident, c.Role)
	}
	if c.LocationInterval <= 0 {
		return fmt.Errorf("LOCATION_INTERVAL must be positive")
	}
	if c.LocationMinInterval > c.LocationInterval {
		return fmt.Errorf("LOCATION_MIN_INTERVAL (%s) must not exceed LOCATION_INTERVAL (%s)", c.LocationMinInterval, c.LocationInterval)
	}
	if c.JoinTimeout <= 0 {
		return fmt.Errorf("JOIN_TIMEOUT must be positive")
	}
	return nil
}

// SocketURLFromAPI получает адрес сокет-сервера из базового адреса REST API,
// отрезая завершающий "/api".
func SocketURLFromAPI(apiBase string) string {
	if apiBase == "" {
		return ""
	}
	return apiSuffix.ReplaceAllString(apiBase, "/")
}

// getEnv возвращает значение переменной окружения или значение по умолчанию
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt возвращает значение переменной окружения как int или значение по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsDuration возвращает значение переменной окружения как time.Duration или значение по умолчанию
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if durationValue, err := time.ParseDuration(value); err == nil {
			return durationValue
		}
	}
	return defaultValue
}

// getEnvAsBool возвращает значение переменной окружения как bool или значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
