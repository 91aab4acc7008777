package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "NSD"
	ConfigDir  = ".nissmart"
	configName = "config"
	configType = "toml"
)

// Config is everything the composition root needs. Keys map one to one to
// the TOML file and to NSD_* environment variables (api.base_url is
// NSD_API_BASE_URL).
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Poll    PollConfig    `mapstructure:"poll"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Overlay OverlayConfig `mapstructure:"overlay"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Users   UsersConfig   `mapstructure:"users"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Log     LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type PollConfig struct {
	Interval time.Duration `mapstructure:"interval" validate:"gt=0"`
}

type NotifyConfig struct {
	Duration time.Duration `mapstructure:"duration" validate:"gt=0"`
}

type OverlayConfig struct {
	Duration time.Duration `mapstructure:"duration" validate:"gt=0"`
}

type AdminConfig struct {
	ActivityLimit int `mapstructure:"activity_limit" validate:"gt=0"`
	FeedSize      int `mapstructure:"feed_size" validate:"gt=0"`
}

type UsersConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
	File   string `mapstructure:"file" validate:"required"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
}

type LoadOptions struct {
	// ConfigFile overrides the search under ~/.nissmart. A missing explicit
	// file is an error; a missing default file is not.
	ConfigFile string
	// EnvFiles are loaded into the process environment first. Missing files
	// are skipped and variables already set win.
	EnvFiles []string
}

// Load reads defaults, the config file, .env files and NSD_* variables, in
// increasing precedence, into v and returns the validated result.
func Load(v *viper.Viper, opts LoadOptions) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}

	loadEnvFiles(opts.EnvFiles)
	SetDefaults(v, homeDir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType(configType)
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(filepath.Join(homeDir, ConfigDir))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Users.Path = expandHome(cfg.Users.Path, homeDir)
	cfg.Log.File = expandHome(cfg.Log.File, homeDir)
	v.Set("users.path", cfg.Users.Path)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func SetDefaults(v *viper.Viper, homeDir string) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("poll.interval", 5*time.Second)
	v.SetDefault("notify.duration", 3*time.Second)
	v.SetDefault("overlay.duration", 3*time.Second)
	v.SetDefault("admin.activity_limit", 20)
	v.SetDefault("admin.feed_size", 10)
	v.SetDefault("users.path", filepath.Join(homeDir, ConfigDir, "users.toml"))
	v.SetDefault("metrics.addr", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", filepath.Join(homeDir, ConfigDir, "nsd.log"))
}

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, getErrorMessage(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(messages, "; "))
}

func getErrorMessage(fe validator.FieldError) string {
	key := fe.Namespace()
	if _, rest, ok := strings.Cut(key, "."); ok {
		key = rest
	}

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", key)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", key)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", key, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", key, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "hostname_port":
		return fmt.Sprintf("%s must be host:port", key)
	default:
		return fmt.Sprintf("%s is invalid", key)
	}
}

func loadEnvFiles(paths []string) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		_ = godotenv.Load(path)
	}
}

func expandHome(path, homeDir string) string {
	switch {
	case path == "~":
		return homeDir
	case strings.HasPrefix(path, "~/"):
		return filepath.Join(homeDir, path[2:])
	default:
		return path
	}
}
