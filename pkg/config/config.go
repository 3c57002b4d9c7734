package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"qnotes/pkg/api"
	"qnotes/pkg/keymaps"
)

// EnvPrefix is prepended to every environment override, e.g. QNOTES_SERVER
const EnvPrefix = "QNOTES"

const (
	DefaultServer  = "http://localhost:8080"
	DefaultTimeout = 10 * time.Second
	DefaultSort    = "date-desc"
)

// Config holds the application configuration
type Config struct {
	Server      string            `mapstructure:"server" json:"server"`
	Database    string            `mapstructure:"database" json:"database"`
	Timeout     time.Duration     `mapstructure:"timeout" json:"timeout"`
	DefaultSort string            `mapstructure:"default_sort" json:"default_sort"`
	KeyMap      map[string]string `mapstructure:"keymap" json:"keymap"`
	StylesFile  string            `mapstructure:"styles_file" json:"styles_file"`
}

// Styles holds the application colors and styling information
type Styles struct {
	// UI element colors
	BorderColor string `json:"border_color"`
	AccentColor string `json:"accent_color"`

	// Text colors
	NormalTextColor   string `json:"normal_text_color"`
	SelectedTextColor string `json:"selected_text_color"`
	SelectedBgColor   string `json:"selected_bg_color"`
	ErrorColor        string `json:"error_color"`
	MutedColor        string `json:"muted_color"`

	// Priority label colors
	NowColor     string `json:"now_color"`
	LaterColor   string `json:"later_color"`
	SomedayColor string `json:"someday_color"`
	DoneColor    string `json:"done_color"`
}

// PriorityColor returns the color for a priority label
func (s Styles) PriorityColor(p api.Priority) string {
	switch p {
	case api.PriorityNow:
		return s.NowColor
	case api.PriorityLater:
		return s.LaterColor
	case api.PrioritySomeday:
		return s.SomedayColor
	case api.PriorityDone:
		return s.DoneColor
	}
	return s.NormalTextColor
}

// DefaultStyles returns the built-in palette
func DefaultStyles() Styles {
	return Styles{
		BorderColor:       "240",
		AccentColor:       "205",
		NormalTextColor:   "86",
		SelectedTextColor: "229",
		SelectedBgColor:   "57",
		ErrorColor:        "9",
		MutedColor:        "241",
		NowColor:          "#d32f2f",
		LaterColor:        "#f57c00",
		SomedayColor:      "#388e3c",
		DoneColor:         "#1976d2",
	}
}

// Dir returns ~/.config/qnotes
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "qnotes"), nil
}

// LoadEnv loads .env files into the process environment. Missing files are
// not an error; variables already set win.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("server", DefaultServer)
	v.SetDefault("database", filepath.Join(configDir, "session.db"))
	v.SetDefault("timeout", DefaultTimeout.String())
	v.SetDefault("default_sort", DefaultSort)
	v.SetDefault("styles_file", filepath.Join(configDir, "styles.json"))
}

// Load reads the configuration into v. Flags must already be bound to v;
// they take precedence over QNOTES_* variables, which take precedence over
// the file. A missing config file is created with default values.
// Keymap keys come back lower-cased, as viper stores them.
func Load(v *viper.Viper, configPath string) (Config, Styles, error) {
	configDir, err := Dir()
	if err != nil {
		return Config{}, Styles{}, err
	}
	if configPath == "" {
		configPath = filepath.Join(configDir, "config.json")
	}

	setDefaults(v, configDir)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, Styles{}, fmt.Errorf("read config: %w", err)
		}
		if err := writeDefaults(configPath, configDir); err != nil {
			return Config{}, Styles{}, err
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, Styles{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, Styles{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	cfg.Database = expandHome(cfg.Database)
	cfg.StylesFile = expandHome(cfg.StylesFile)

	styles, err := loadStyles(cfg.StylesFile)
	if err != nil {
		return cfg, styles, fmt.Errorf("error loading styles: %w", err)
	}
	return cfg, styles, nil
}

// writeDefaults uses a fresh viper so flag and env values (the password in
// particular) never end up in the file
func writeDefaults(configPath, configDir string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return err
	}
	d := viper.New()
	setDefaults(d, configDir)
	d.SetDefault("keymap", keymaps.GetDefaultKeyMappings())
	d.SetConfigType("json")
	if err := d.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("write default config: %w", err)
	}
	return nil
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return homeDir + path[1:]
}

// loadStyles reads the styles file over the defaults, writing the defaults
// out when the file doesn't exist yet
func loadStyles(stylesPath string) (Styles, error) {
	styles := DefaultStyles()

	data, err := os.ReadFile(stylesPath)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(stylesPath), 0755); err != nil {
			return styles, err
		}
		data, err = json.MarshalIndent(styles, "", "  ")
		if err != nil {
			return styles, err
		}
		return styles, os.WriteFile(stylesPath, data, 0644)
	}
	if err != nil {
		return styles, err
	}

	if err := json.Unmarshal(data, &styles); err != nil {
		return DefaultStyles(), err
	}
	return styles, nil
}
