// internal/config/config.go
package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"OrandaBot/internal/constants"
)

const (
	DefaultTimezone    = "Europe/Bratislava"
	DefaultSQLitePath  = "data/bot.db"
	DefaultSessionTTL  = 24 * time.Hour
	DefaultSendTimeout = 15 * time.Second
	DefaultCurrency    = "€"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	TelegramToken  string        `yaml:"bot_token" validate:"required"`
	GroupChatID    int64         `yaml:"group_chat_id" validate:"required"`
	AdminUserIDs   []int64       `yaml:"admin_user_ids"`
	Timezone       string        `yaml:"tz"`
	DBDriver       string        `yaml:"db_driver" validate:"oneof=sqlite3 postgres"`
	DatabaseURL    string        `yaml:"database_url" validate:"required"`
	SessionBackend string        `yaml:"session_backend" validate:"oneof=memory redis"`
	RedisURL       string        `yaml:"redis_url" validate:"required_if=SessionBackend redis"`
	SessionTTL     time.Duration `yaml:"session_ttl" validate:"gt=0"`
	SendTimeout    time.Duration `yaml:"send_timeout" validate:"gt=0"`
	Port           string        `yaml:"port"`
	AppEnv         string        `yaml:"env"`
	BotUsername    string        `yaml:"bot_username"`
	Currency       string        `yaml:"currency"`
	ClearTokens    []string      `yaml:"clear_tokens"`
	DoneTokens     []string      `yaml:"done_tokens"`
	ExportDir      string        `yaml:"export_dir"`

	Location *time.Location `yaml:"-" validate:"-"`
}

// IsAdmin проверяет, может ли пользователь выполнять админские команды.
// Пустой список администраторов разрешает всем.
func (c *Config) IsAdmin(userID int64) bool {
	if len(c.AdminUserIDs) == 0 {
		return true
	}
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// IsDev - режим отладки бота.
func (c *Config) IsDev() bool {
	return strings.EqualFold(c.AppEnv, "dev") || strings.EqualFold(c.AppEnv, "development")
}

// LoadConfig загружает конфигурацию: YAML-файл (CONFIG_FILE, необязательно),
// затем переменные окружения, затем значения по умолчанию и валидация.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadYAML(path, cfg); err != nil {
			return nil, err
		}
		log.Printf("LoadConfig: Загружен файл конфигурации %s", path)
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("некорректный часовой пояс TZ=%q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("некорректная конфигурация: %w", err)
	}

	if cfg.BotUsername == "" {
		log.Println("Предупреждение: BOT_USERNAME не установлен.")
	}
	if len(cfg.AdminUserIDs) == 0 {
		log.Println("Предупреждение: ADMIN_USER_IDS не установлен, админские команды доступны всем.")
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}

func loadYAML(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения файла конфигурации %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("ошибка разбора файла конфигурации %s: %w", path, err)
	}
	return nil
}

// firstEnv возвращает первую непустую переменную из списка.
func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func applyEnv(cfg *Config) error {
	if v := firstEnv("BOT_TOKEN", "TELEGRAM_APITOKEN"); v != "" {
		cfg.TelegramToken = v
	}
	if v := firstEnv("GROUP_CHAT_ID", "GROUP_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("не удалось прочитать GROUP_CHAT_ID '%s': %w", v, err)
		}
		cfg.GroupChatID = id
	}
	if v := firstEnv("ADMIN_USER_IDS"); v != "" {
		ids, err := parseIDList(v)
		if err != nil {
			return err
		}
		cfg.AdminUserIDs = ids
	}
	if v := firstEnv("SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("не удалось прочитать SESSION_TTL '%s': %w", v, err)
		}
		cfg.SessionTTL = d
	}
	if v := firstEnv("SEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("не удалось прочитать SEND_TIMEOUT '%s': %w", v, err)
		}
		cfg.SendTimeout = d
	}

	strs := map[string]*string{
		"TZ":              &cfg.Timezone,
		"DB_DRIVER":       &cfg.DBDriver,
		"DATABASE_URL":    &cfg.DatabaseURL,
		"SESSION_BACKEND": &cfg.SessionBackend,
		"REDIS_URL":       &cfg.RedisURL,
		"PORT":            &cfg.Port,
		"ENV":             &cfg.AppEnv,
		"BOT_USERNAME":    &cfg.BotUsername,
		"CURRENCY":        &cfg.Currency,
		"EXPORT_DIR":      &cfg.ExportDir,
	}
	for key, dst := range strs {
		if v := firstEnv(key); v != "" {
			*dst = v
		}
	}

	if v := firstEnv("CLEAR_TOKENS"); v != "" {
		cfg.ClearTokens = splitList(v)
	}
	if v := firstEnv("DONE_TOKENS"); v != "" {
		cfg.DoneTokens = splitList(v)
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Timezone == "" {
		cfg.Timezone = DefaultTimezone
	}
	if cfg.DBDriver == "" {
		cfg.DBDriver = "sqlite3"
	}
	if cfg.DatabaseURL == "" && cfg.DBDriver == "sqlite3" {
		cfg.DatabaseURL = DefaultSQLitePath
	}
	if cfg.SessionBackend == "" {
		cfg.SessionBackend = "memory"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	if len(cfg.ClearTokens) == 0 {
		cfg.ClearTokens = append([]string{}, constants.DefaultClearTokens...)
	}
	if len(cfg.DoneTokens) == 0 {
		cfg.DoneTokens = append([]string{}, constants.DefaultDoneTokens...)
	}
	if cfg.ExportDir == "" {
		cfg.ExportDir = os.TempDir()
	}
	cfg.BotUsername = strings.TrimPrefix(cfg.BotUsername, "@")
}

func parseIDList(s string) ([]int64, error) {
	var ids []int64
	for _, part := range splitList(s) {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("не удалось прочитать ADMIN_USER_IDS, элемент '%s': %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
