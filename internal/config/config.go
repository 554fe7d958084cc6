package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type ReminderConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Time     string   `mapstructure:"time"`     // "17:00"
	Workdays []string `mapstructure:"workdays"` // ["Mon","Tue","Wed","Thu","Fri"]
	Holidays []string `mapstructure:"holidays"` // ["2026-12-25"]
	Timezone string   `mapstructure:"timezone"` // e.g. "Asia/Kolkata" (optional)
}

type StoreConfig struct {
	Path       string `mapstructure:"path"`       // empty: ~/.local/share/reflectboard/reflectboard.db
	Passphrase string `mapstructure:"passphrase"` // enables at-rest encryption
	SaltPath   string `mapstructure:"salt_path"`
}

type BoardConfig struct {
	Width      float64 `mapstructure:"width"`
	Height     float64 `mapstructure:"height"`
	NoteWidth  float64 `mapstructure:"note_width"`
	NoteHeight float64 `mapstructure:"note_height"`
}

type ChatConfig struct {
	Provider    string        `mapstructure:"provider"` // openai | gemini
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxAttempts int           `mapstructure:"max_attempts"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
}

type AutosaveConfig struct {
	Delay time.Duration `mapstructure:"delay"`
}

type ServerConfig struct {
	Addr           string   `mapstructure:"addr"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	ChatRPS        float64  `mapstructure:"chat_rps"`
	ChatBurst      int      `mapstructure:"chat_burst"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug | info | warn | error
	Format string `mapstructure:"format"` // console | json
	File   string `mapstructure:"file"`   // the TUI always logs to a file
}

type Config struct {
	Theme    string         `mapstructure:"theme"`
	Reminder ReminderConfig `mapstructure:"reminder"`
	Store    StoreConfig    `mapstructure:"store"`
	Board    BoardConfig    `mapstructure:"board"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Autosave AutosaveConfig `mapstructure:"autosave"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

func Default() Config {
	return Config{
		Theme: "default",
		Reminder: ReminderConfig{
			Enabled:  true,
			Time:     "17:00",
			Workdays: []string{"Mon", "Tue", "Wed", "Thu", "Fri"},
			Holidays: []string{},
		},
		Board: BoardConfig{Width: 1280, Height: 720, NoteWidth: 224, NoteHeight: 112},
		Chat: ChatConfig{
			Provider:    "openai",
			MaxAttempts: 3,
			Timeout:     30 * time.Second,
			MaxTokens:   150,
			Temperature: 0.7,
		},
		Autosave: AutosaveConfig{Delay: 100 * time.Millisecond},
		Server: ServerConfig{
			Addr:           "127.0.0.1:8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			ChatRPS:        1,
			ChatBurst:      3,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}

// Dir is the directory holding config.yaml.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "reflectboard"), nil
}

func xdgConfigPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads ~/.config/reflectboard/config.yaml.
func Load() (Config, error) {
	path, err := xdgConfigPath()
	if err != nil {
		return Default(), err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path; a missing file yields the defaults.
// REFLECTBOARD_* variables override file values (chat.api_key is
// REFLECTBOARD_CHAT_API_KEY), and OPENAI_API_KEY / GEMINI_API_KEY fill in
// the key for their provider.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile(path)
	v.SetEnvPrefix("REFLECTBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// defaults
	v.SetDefault("theme", cfg.Theme)
	v.SetDefault("reminder.enabled", cfg.Reminder.Enabled)
	v.SetDefault("reminder.time", cfg.Reminder.Time)
	v.SetDefault("reminder.workdays", cfg.Reminder.Workdays)
	v.SetDefault("reminder.holidays", cfg.Reminder.Holidays)
	v.SetDefault("reminder.timezone", cfg.Reminder.Timezone)
	v.SetDefault("store.path", cfg.Store.Path)
	v.SetDefault("store.passphrase", cfg.Store.Passphrase)
	v.SetDefault("store.salt_path", cfg.Store.SaltPath)
	v.SetDefault("board.width", cfg.Board.Width)
	v.SetDefault("board.height", cfg.Board.Height)
	v.SetDefault("board.note_width", cfg.Board.NoteWidth)
	v.SetDefault("board.note_height", cfg.Board.NoteHeight)
	v.SetDefault("chat.provider", cfg.Chat.Provider)
	v.SetDefault("chat.api_key", cfg.Chat.APIKey)
	v.SetDefault("chat.model", cfg.Chat.Model)
	v.SetDefault("chat.base_url", cfg.Chat.BaseURL)
	v.SetDefault("chat.max_attempts", cfg.Chat.MaxAttempts)
	v.SetDefault("chat.timeout", cfg.Chat.Timeout)
	v.SetDefault("chat.max_tokens", cfg.Chat.MaxTokens)
	v.SetDefault("chat.temperature", cfg.Chat.Temperature)
	v.SetDefault("autosave.delay", cfg.Autosave.Delay)
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)
	v.SetDefault("server.chat_rps", cfg.Server.ChatRPS)
	v.SetDefault("server.chat_burst", cfg.Server.ChatBurst)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.file", cfg.Log.File)

	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		if _, missing := err.(viper.ConfigFileNotFoundError); !missing {
			return cfg, fmt.Errorf("config read: %w", err)
		}
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}

	if cfg.Chat.APIKey == "" {
		switch strings.ToLower(cfg.Chat.Provider) {
		case "gemini":
			cfg.Chat.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			cfg.Chat.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}

	// normalize workdays
	days := cfg.Reminder.Workdays[:0]
	for _, d := range cfg.Reminder.Workdays {
		d = strings.TrimSpace(d)
		if len(d) < 3 {
			continue
		}
		days = append(days, strings.ToUpper(d[:1])+strings.ToLower(d[1:3]))
	}
	cfg.Reminder.Workdays = days
	return cfg, nil
}

func (c Config) Location() *time.Location {
	if tz := strings.TrimSpace(c.Reminder.Timezone); tz != "" {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}
	return time.Local
}
