package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. FOCUSFLOW_ACCOUNT_UID.
const EnvPrefix = "FOCUSFLOW"

func newViperInstance() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("db_path", "")
	v.SetDefault("account.uid", "")
	v.SetDefault("reset.check_interval", "1m")
	v.SetDefault("inbox.clear_delay", "2s")
	v.SetDefault("reminders.clear_delay", "1s")
	v.SetDefault("log.level", "info")
	v.SetDefault("metrics.addr", "")
}

// Default returns the configuration used when no file or environment
// variable sets anything.
func Default() *Config {
	cfg, err := unmarshal(newViperInstance())
	if err != nil {
		panic(fmt.Sprintf("config defaults do not decode: %v", err))
	}
	return cfg
}

// Load reads the configuration. Precedence, highest first: overrides,
// FOCUSFLOW_* environment variables, the config file, defaults.
//
// path names an explicit config file, which must exist. With an empty path
// the global file ~/.config/focusflow/config.yaml is read when present.
func Load(ctx context.Context, path string, o Overrides) (*Config, error) {
	v := newViperInstance()

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	cfg, err := unmarshal(v)
	if err != nil {
		return nil, err
	}
	cfg.apply(o)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := zerolog.Ctx(ctx).With().Str("component", "config").Logger()
	logger.Debug().
		Str("config_file", v.ConfigFileUsed()).
		Str("db_path", cfg.DBPath).
		Str("uid", cfg.Account.UID).
		Dur("reset.check_interval", cfg.Reset.CheckInterval).
		Msg("configuration loaded")

	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		global, ok := globalConfigPathIfExists()
		if !ok {
			return nil
		}
		path = global
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && !isConfigNotFoundError(err) {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	return nil
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viperDecoderOption()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func isConfigNotFoundError(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound)
}

func globalConfigPathIfExists() (string, bool) {
	path, err := GlobalConfigPath()
	if err != nil {
		return "", false
	}
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

func viperDecoderOption() viper.DecoderConfigOption {
	return viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	)
}

// GlobalConfigDir is ~/.config/focusflow, shared with the database and logs.
func GlobalConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "focusflow"), nil
}

func GlobalConfigPath() (string, error) {
	dir, err := GlobalConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
