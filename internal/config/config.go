package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DefaultAPIURL   = "http://localhost:8081/api"
	DefaultStubAddr = "localhost:8081"
)

type Config struct {
	// Client-side settings
	APIURL         string        `env:"API_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"15s"`
	TokenFile      string        `env:"TOKEN_FILE"`
	ErrorDismiss   time.Duration `env:"ERROR_DISMISS" envDefault:"5s"`
	LogLevel       string        `env:"LOG_LEVEL"` // пусто — логи CLI выключены

	// Stub server settings
	StubAddr    string        `env:"STUB_ADDR"`
	DatabaseDSN string        `env:"DATABASE_URI"`
	AuthSecret  string        `env:"AUTH_SECRET"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`

	Version bool `env:"-"` // show client version and exit (flag only)
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags перекрывают значения из env
	// Client flags
	flag.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "base URL of the archive API (host:port or full URL)")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	flag.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "path to auth token file (client)")
	flag.DurationVar(&cfg.ErrorDismiss, "error-dismiss", cfg.ErrorDismiss, "auto-dismiss interval for store errors (0 disables)")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "уровень логирования (debug, info, warn, error; пусто — без логов)")
	// Stub server flags
	flag.StringVar(&cfg.StubAddr, "a", cfg.StubAddr, "адрес stub-сервера")
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД (пусто — in-memory SQLite)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи JWT")
	flag.BoolVar(&cfg.Version, "version", cfg.Version, "Show client version and exit")

	flag.Parse()

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.AuthSecret == "" {
		c.AuthSecret = "dev-secret-key"
	}
	if c.StubAddr == "" {
		c.StubAddr = DefaultStubAddr
	}
	c.APIURL = NormalizeAPIURL(c.APIURL)
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = 15 * time.Second
	}
	// 0 отключает автоскрытие ошибок
	if c.ErrorDismiss < 0 {
		c.ErrorDismiss = 5 * time.Second
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = 24 * time.Hour
	}
	if c.TokenFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			c.TokenFile = filepath.Join(dir, "ArchiveDesk", "auth_token")
		}
	}
}

// NormalizeAPIURL дописывает схему и /api к адресу вида host:port и убирает завершающий слэш.
func NormalizeAPIURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultAPIURL
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
		if !strings.Contains(strings.TrimPrefix(raw, "http://"), "/") {
			raw += "/api"
		}
	}
	return strings.TrimRight(raw, "/")
}
