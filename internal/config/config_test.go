package config

import "testing"

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{
		"TELEGRAM_TOKEN", "BOT_DISABLED", "STORE", "DB_PATH", "DATABASE_URL",
		"ROUTES_SOURCE", "ROUTES_PATH", "GEMINI_API_KEY", "GEMINI_MODEL",
		"TIMEZONE", "HTTP_PORT", "WORKERS", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(k, kv[k])
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, map[string]string{"TELEGRAM_TOKEN": "123:abc"})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Store != "sqlite" || cfg.DBPath != "data/bot.db" || cfg.Workers != 4 {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Location == nil || cfg.Location.String() != "Europe/Berlin" {
		t.Fatalf("location = %v", cfg.Location)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"missing token":         {},
		"unknown store":         {"TELEGRAM_TOKEN": "x", "STORE": "redis"},
		"postgres without url":  {"TELEGRAM_TOKEN": "x", "STORE": "postgres"},
		"workers not a number":  {"TELEGRAM_TOKEN": "x", "WORKERS": "many"},
		"workers out of range":  {"TELEGRAM_TOKEN": "x", "WORKERS": "0"},
		"bad timezone":          {"TELEGRAM_TOKEN": "x", "TIMEZONE": "Mars/Olympus"},
		"non-numeric http port": {"TELEGRAM_TOKEN": "x", "HTTP_PORT": "http"},
	}

	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setEnv(t, env)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadBotDisabledNeedsNoToken(t *testing.T) {
	setEnv(t, map[string]string{"BOT_DISABLED": "true", "STORE": "memory"})

	if _, err := Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
