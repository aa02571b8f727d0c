package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// envBindings maps configuration keys to the environment variables that set them
var envBindings = map[string]string{
	"imap.host":            "IMAP_HOST",
	"imap.port":            "IMAP_PORT",
	"imap.user":            "IMAP_USER",
	"imap.password":        "IMAP_PASS",
	"imap.mailbox":         "IMAP_MAILBOX",
	"imap.search_from":     "IMAP_SEARCH_FROM",
	"line.token":           "LINE_TOKEN",
	"line.endpoint":        "LINE_ENDPOINT",
	"line.timeout":         "LINE_TIMEOUT",
	"sound.enabled":        "SOUND_ENABLED",
	"sound.delay":          "SOUND_DELAY",
	"sound.dir":            "SOUND_DIR",
	"sound.player":         "SOUND_PLAYER",
	"sound.alert_cue":      "SOUND_ALERT_CUE",
	"patlite.enabled":      "PATLITE_ENABLED",
	"patlite.active_low":   "PATLITE_ACTIVE_LOW",
	"patlite.hold":         "PATLITE_HOLD",
	"notify.from_keyword":  "NOTIFY_FROM_KEYWORD",
	"notify.began_keyword": "NOTIFY_BEGAN_KEYWORD",
	"notify.soon_keyword":  "NOTIFY_SOON_KEYWORD",
	"logging.level":        "LOG_LEVEL",
	"logging.format":       "LOG_FORMAT",
	"metrics.textfile":     "METRICS_TEXTFILE",
}

// PollerRequiredKeys must be set before the poller touches the network
var PollerRequiredKeys = []string{"imap.host", "imap.user", "imap.password", "line.token"}

// New creates a new configuration instance
func New() (*Config, error) {
	// A missing .env file is normal; the environment alone is enough
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/kopi-bell/")
	v.AddConfigPath("$HOME/.kopi-bell")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	if err := bindEnv(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindEnv(v *viper.Viper) error {
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}
	return nil
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Mailbox defaults
	v.SetDefault("imap.port", 993)
	v.SetDefault("imap.mailbox", "INBOX")
	v.SetDefault("imap.search_from", true)

	// LINE defaults
	v.SetDefault("line.endpoint", "https://api.line.me/v2/bot/message/broadcast")
	v.SetDefault("line.timeout", "10s")

	// Sound defaults
	v.SetDefault("sound.enabled", true)
	v.SetDefault("sound.delay", "1.5")
	v.SetDefault("sound.dir", "./sounds")
	v.SetDefault("sound.player", "aplay")
	v.SetDefault("sound.player_args", []string{"-q"})
	v.SetDefault("sound.alert_cue", "chime.wav")

	// Patlite defaults
	v.SetDefault("patlite.enabled", true)
	v.SetDefault("patlite.active_low", false)
	v.SetDefault("patlite.hold", "10")
	v.SetDefault("patlite.pins.red", "GPIO17")
	v.SetDefault("patlite.pins.yellow", "GPIO27")
	v.SetDefault("patlite.pins.green", "GPIO22")
	v.SetDefault("patlite.pins.blue", "GPIO23")

	// Notification defaults
	v.SetDefault("notify.from_keyword", "noreply@kopichans.com")
	v.SetDefault("notify.began_keyword", "ライブ配信が始まりました")
	v.SetDefault("notify.soon_keyword", "がまもなく始まります")
	v.SetDefault("notify.started.text", "\U0001F514 こぴちゃんず LIVE 開始！\n今すぐチェックだよ?✨")
	v.SetDefault("notify.started.voice_cue", "voice_started.wav")
	v.SetDefault("notify.started.color", "red")
	v.SetDefault("notify.soon.text", "⏰ こぴちゃんず LIVE まもなく開始！\n待っててね✨")
	v.SetDefault("notify.soon.voice_cue", "voice_soon.wav")
	v.SetDefault("notify.soon.color", "yellow")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	// Metrics defaults
	v.SetDefault("metrics.textfile", "")
}

// Validate checks that the given keys are set, reporting all missing ones at once
func (c *Config) Validate(keys ...string) error {
	var missing []string
	for _, key := range keys {
		if strings.TrimSpace(c.v.GetString(key)) == "" {
			name := key
			if env, ok := envBindings[key]; ok {
				name = env
			}
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetSeconds reads a duration given either as plain seconds ("1.5") or as a
// Go duration ("1500ms")
func (c *Config) GetSeconds(key string) (time.Duration, error) {
	raw := strings.TrimSpace(c.GetString(key))
	if raw == "" {
		return 0, nil
	}
	if secs, err := strconv.ParseFloat(raw, 64); err == nil {
		if secs < 0 {
			return 0, fmt.Errorf("%s must not be negative: %s", key, raw)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative: %s", key, raw)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
