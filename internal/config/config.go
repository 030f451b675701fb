package config

import (
	"flag"
	"time"

	"github.com/caarlos0/env/v6"
)

// Config хранит конфигурацию запуска приложения.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS"` // Адрес для запуска HTTP-сервера
	EnableHTTPS   bool   `env:"ENABLE_HTTPS"`   // Включение HTTPS
	TLSCertFile   string `env:"TLS_CERT_FILE"`  // Путь к сертификату
	TLSKeyFile    string `env:"TLS_KEY_FILE"`   // Путь к приватному ключу
	LogLevel      string `env:"LOG_LEVEL"`      // Уровень логирования
}

// RedirectSettings хранит настройки обработчика перехода.
// Читаются из окружения при каждом запросе.
type RedirectSettings struct {
	AllowedDomains []string      `env:"ALLOWED_DOMAINS" envSeparator:","`
	TrackerURL     string        `env:"TRACKER_URL"`
	TrackerTimeout time.Duration `env:"TRACKER_TIMEOUT" envDefault:"700ms"`
}

// NewConfig инициализирует конфигурацию, читая флаги и переменные окружения.
func NewConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: ":8080",
		TLSCertFile:   "cert.pem",
		TLSKeyFile:    "key.pem",
		LogLevel:      "info",
	}

	flag.StringVar(&cfg.ServerAddress, "a", cfg.ServerAddress, "Адрес запуска HTTP-сервера (env: SERVER_ADDRESS)")
	flag.BoolVar(&cfg.EnableHTTPS, "s", cfg.EnableHTTPS, "Включить HTTPS (env: ENABLE_HTTPS)")
	flag.StringVar(&cfg.TLSCertFile, "c", cfg.TLSCertFile, "Путь к TLS сертификату (env: TLS_CERT_FILE)")
	flag.StringVar(&cfg.TLSKeyFile, "k", cfg.TLSKeyFile, "Путь к TLS ключу (env: TLS_KEY_FILE)")
	flag.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "Уровень логирования (env: LOG_LEVEL)")

	flag.Parse()

	// Переменные окружения имеют наивысший приоритет
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsHTTPSEnabled сообщает, нужно ли запускать HTTPS сервер.
func (c *Config) IsHTTPSEnabled() bool {
	return c.EnableHTTPS
}

// LoadRedirectSettings читает ALLOWED_DOMAINS, TRACKER_URL и TRACKER_TIMEOUT из окружения.
func LoadRedirectSettings() (*RedirectSettings, error) {
	settings := &RedirectSettings{}
	if err := env.Parse(settings); err != nil {
		return nil, err
	}
	return settings, nil
}
