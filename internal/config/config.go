package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the runtime configuration of the bot and its tools.
type Config struct {
	TelegramToken  string `validate:"required_unless=BotDisabled true"`
	BotDisabled    bool
	Store          string `validate:"oneof=memory sqlite postgres"`
	DBPath         string `validate:"required_if=Store sqlite"`
	DatabaseURL    string `validate:"required_if=Store postgres"`
	RoutesSource   string `validate:"oneof=file db"`
	RoutesPath     string `validate:"required_if=RoutesSource file"`
	GeminiAPIKey   string
	GeminiModel    string `validate:"required"`
	Timezone       string `validate:"required"`
	HTTPPort       string `validate:"required,numeric"`
	Workers        int    `validate:"gt=0,lte=64"`
	MaxUploadBytes int    `validate:"gt=0"`

	Location *time.Location `validate:"-"`
}

// Get returns the environment value for key, or fallback when unset or empty.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q: not an integer", key, v)
	}
	return n, nil
}

// Load reads .env (if present) and the environment, then validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg := Config{
		TelegramToken: Get("TELEGRAM_TOKEN", ""),
		BotDisabled:   Get("BOT_DISABLED", "false") == "true",
		Store:         Get("STORE", "sqlite"),
		DBPath:        Get("DB_PATH", "data/bot.db"),
		DatabaseURL:   Get("DATABASE_URL", ""),
		RoutesSource:  Get("ROUTES_SOURCE", "file"),
		RoutesPath:    Get("ROUTES_PATH", "data/routes.yaml"),
		GeminiAPIKey:  Get("GEMINI_API_KEY", ""),
		GeminiModel:   Get("GEMINI_MODEL", "gemini-2.5-flash"),
		Timezone:      Get("TIMEZONE", "Europe/Berlin"),
		HTTPPort:      Get("HTTP_PORT", "8080"),
	}

	var err error
	if cfg.Workers, err = getInt("WORKERS", 4); err != nil {
		return Config{}, err
	}
	if cfg.MaxUploadBytes, err = getInt("MAX_UPLOAD_BYTES", 10<<20); err != nil {
		return Config{}, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	cfg.Location, err = time.LoadLocation(cfg.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("config: TIMEZONE=%q: %w", cfg.Timezone, err)
	}

	return cfg, nil
}
