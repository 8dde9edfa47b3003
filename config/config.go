package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sagarc03/bluelist/database"
	bluelisthttp "github.com/sagarc03/bluelist/http"
	"github.com/sagarc03/bluelist/keybackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for bluelist.
type Config struct {
	Env      string                  `mapstructure:"env" validate:"required,oneof=dev prod"`
	Server   ServerConfig            `mapstructure:"server"`
	Database database.Config         `mapstructure:"database"`
	Signing  SigningConfig           `mapstructure:"signing"`
	Keys     keybackend.KeysConfig   `mapstructure:"keys"`
	CORS     bluelisthttp.CORSConfig `mapstructure:"cors"`
	Log      LogConfig               `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	ContextRoot    string        `mapstructure:"context_root"`
	StaticDir      string        `mapstructure:"static_dir"`
	BackendTimeout time.Duration `mapstructure:"backend_timeout" validate:"min=0"`
	MaxBodySize    int64         `mapstructure:"max_body_size" validate:"min=0"`
}

// SigningConfig selects the bucket and key used for upload policies.
// An empty bucket disables the signing route.
type SigningConfig struct {
	Bucket       string `mapstructure:"bucket"`
	AccessKey    string `mapstructure:"access_key" validate:"required_with=Bucket"`
	VerifyBucket bool   `mapstructure:"verify_bucket"`
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type":         "database.type",
	"db-dsn":          "database.dsn",
	"port":            "server.port",
	"context-root":    "server.context_root",
	"static-dir":      "server.static_dir",
	"backend-timeout": "server.backend_timeout",
	"bucket":          "signing.bucket",
	"access-key":      "signing.access_key",
	"keys-file":       "keys.file",
	"log-level":       "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5000)
	v.SetDefault("server.context_root", "/v1/apps/bluelist")
	v.SetDefault("server.static_dir", "public")
	v.SetDefault("server.backend_timeout", "30s")
	v.SetDefault("server.max_body_size", 1<<20)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "bluelist.db")
	v.SetDefault("database.tables.items", "bluelist_items")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.dynamodb.region", "us-east-1")
	v.SetDefault("database.dynamodb.table", "bluelist_items")
	v.SetDefault("database.dynamodb.endpoint", "")
	v.SetDefault("database.dynamodb.access_key", "")
	v.SetDefault("database.dynamodb.secret_key", "")

	v.SetDefault("signing.bucket", "")
	v.SetDefault("signing.access_key", "")
	v.SetDefault("signing.verify_bucket", false)
	v.SetDefault("signing.region", "us-east-1")
	v.SetDefault("signing.endpoint", "")

	v.SetDefault("keys.file", "")

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	v.SetEnvPrefix("BLUELIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		bindFlags(v, flags)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
