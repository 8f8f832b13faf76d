package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"CONFIG_FILE", "BOT_TOKEN", "TELEGRAM_APITOKEN", "GROUP_CHAT_ID", "GROUP_ID", "ADMIN_USER_IDS",
	"TZ", "DB_DRIVER", "DATABASE_URL", "SESSION_BACKEND", "REDIS_URL", "SESSION_TTL",
	"SEND_TIMEOUT", "PORT", "ENV", "BOT_USERNAME", "CURRENCY", "CLEAR_TOKENS", "DONE_TOKENS", "EXPORT_DIR",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_APITOKEN", "123:abc")
	t.Setenv("GROUP_ID", "-1001234567890")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TelegramToken != "123:abc" || cfg.GroupChatID != -1001234567890 {
		t.Fatalf("fallback keys not applied: %+v", cfg)
	}
	if cfg.DBDriver != "sqlite3" || cfg.DatabaseURL != DefaultSQLitePath {
		t.Fatalf("db defaults = %q %q", cfg.DBDriver, cfg.DatabaseURL)
	}
	if cfg.SessionBackend != "memory" || cfg.SessionTTL != DefaultSessionTTL || cfg.SendTimeout != DefaultSendTimeout {
		t.Fatalf("session defaults = %+v", cfg)
	}
	if cfg.Location == nil || cfg.Location.String() != DefaultTimezone {
		t.Fatalf("location = %v", cfg.Location)
	}
	if cfg.Currency != "€" || len(cfg.ClearTokens) == 0 || len(cfg.DoneTokens) == 0 {
		t.Fatalf("wizard defaults = %+v", cfg)
	}
	if !cfg.IsAdmin(42) {
		t.Fatal("empty admin list must allow everyone")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_APITOKEN", "ignored")
	t.Setenv("GROUP_CHAT_ID", "-100")
	t.Setenv("ADMIN_USER_IDS", "1, 2 ,3")
	t.Setenv("SEND_TIMEOUT", "3s")
	t.Setenv("CLEAR_TOKENS", "x, y")
	t.Setenv("BOT_USERNAME", "@oranda_bot")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TelegramToken != "tok" {
		t.Fatalf("token = %q", cfg.TelegramToken)
	}
	if len(cfg.AdminUserIDs) != 3 || !cfg.IsAdmin(2) || cfg.IsAdmin(4) {
		t.Fatalf("admins = %v", cfg.AdminUserIDs)
	}
	if cfg.SendTimeout != 3*time.Second {
		t.Fatalf("send timeout = %v", cfg.SendTimeout)
	}
	if strings.Join(cfg.ClearTokens, "|") != "x|y" {
		t.Fatalf("clear tokens = %v", cfg.ClearTokens)
	}
	if cfg.BotUsername != "oranda_bot" {
		t.Fatalf("bot username = %q", cfg.BotUsername)
	}
}

func TestLoadConfigYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "bot_token: file-token\ngroup_chat_id: -500\nsession_ttl: 2h\ncurrency: UAH\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CURRENCY", "$")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.TelegramToken != "file-token" || cfg.GroupChatID != -500 || cfg.SessionTTL != 2*time.Hour {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Currency != "$" {
		t.Fatalf("env must override file, currency = %q", cfg.Currency)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	cases := map[string]map[string]string{
		"missing token":  {"GROUP_CHAT_ID": "-1"},
		"missing group":  {"BOT_TOKEN": "t"},
		"bad driver":     {"BOT_TOKEN": "t", "GROUP_CHAT_ID": "-1", "DB_DRIVER": "mysql"},
		"redis no url":   {"BOT_TOKEN": "t", "GROUP_CHAT_ID": "-1", "SESSION_BACKEND": "redis"},
		"bad group id":   {"BOT_TOKEN": "t", "GROUP_CHAT_ID": "abc"},
		"bad admin list": {"BOT_TOKEN": "t", "GROUP_CHAT_ID": "-1", "ADMIN_USER_IDS": "1,x"},
		"bad timezone":   {"BOT_TOKEN": "t", "GROUP_CHAT_ID": "-1", "TZ": "Mars/Olympus"},
		"postgres no dsn": {"BOT_TOKEN": "t", "GROUP_CHAT_ID": "-1", "DB_DRIVER": "postgres"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}
