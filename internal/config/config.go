package config

import (
	"flag"
	"regexp"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	// Server settings
	DatabaseDSN string `env:"DATABASE_URI"`
	BaseURL     string `env:"BASE_URL"`
	AuthSecret  string `env:"AUTH_SECRET"`

	// Admin-вход: пустое значение или "disabled" выключают его полностью.
	AdminSecret string `env:"ADMIN_SECRET"`

	// Image storage and limits
	ImageDir    string `env:"IMAGE_DIR"`
	MaxItemSide int    `env:"MAX_ITEM_SIDE"`

	// Шаблоны старше этого возраста удаляются ежедневной зачисткой.
	TemplateMaxAge time.Duration `env:"TEMPLATE_MAX_AGE"`
}

func NewConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	_ = env.Parse(cfg)

	// flags работают ТОЛЬКО если переменные из env не заданы
	flag.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "строка подключения к БД")
	flag.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "адрес сервера (host:port)")
	flag.StringVar(&cfg.AuthSecret, "auth-secret", cfg.AuthSecret, "секрет для подписи auth-cookie")
	flag.StringVar(&cfg.AdminSecret, "admin-secret", cfg.AdminSecret, "общий секрет администратора ('disabled' выключает админ-вход)")
	flag.StringVar(&cfg.ImageDir, "image-dir", cfg.ImageDir, "каталог для хранения изображений")
	flag.IntVar(&cfg.MaxItemSide, "max-item-side", cfg.MaxItemSide, "максимальная сторона загружаемого изображения, px")
	flag.DurationVar(&cfg.TemplateMaxAge, "template-max-age", cfg.TemplateMaxAge, "максимальный возраст шаблона до зачистки")
	flag.Parse()

	// Defaults
	if cfg.AuthSecret == "" {
		cfg.AuthSecret = "dev-secret-key"
	}
	// validate BaseURL: must be in "address:port" (no scheme, no path). Otherwise use default.
	hostPortRe := regexp.MustCompile(`^[A-Za-z0-9\.\-]+:\d{1,5}$`)
	if !hostPortRe.MatchString(cfg.BaseURL) {
		cfg.BaseURL = "localhost:8080"
	}
	if cfg.DatabaseDSN == "" {
		cfg.DatabaseDSN = "file:cotemplate.db"
	}
	if cfg.ImageDir == "" {
		cfg.ImageDir = "./data/images"
	}
	if cfg.MaxItemSide <= 0 {
		cfg.MaxItemSide = 4096
	}
	if cfg.TemplateMaxAge <= 0 {
		cfg.TemplateMaxAge = 31 * 24 * time.Hour
	}

	return cfg
}
