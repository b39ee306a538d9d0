// Package config loads FocusFlow settings from defaults, the config file,
// FOCUSFLOW_* environment variables and command-line overrides.
package config

import "time"

// Config is the effective runtime configuration.
type Config struct {
	// DBPath is the SQLite document store file. Empty selects
	// ~/.config/focusflow/focusflow.db.
	DBPath    string        `mapstructure:"db_path" yaml:"db_path"`
	Account   AccountConfig `mapstructure:"account" yaml:"account"`
	Reset     ResetConfig   `mapstructure:"reset" yaml:"reset"`
	Inbox     ClearConfig   `mapstructure:"inbox" yaml:"inbox"`
	Reminders ClearConfig   `mapstructure:"reminders" yaml:"reminders"`
	Log       LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics   MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// AccountConfig selects the document namespace. An empty UID uses
// top-level collections.
type AccountConfig struct {
	UID string `mapstructure:"uid" yaml:"uid"`
}

type ResetConfig struct {
	// CheckInterval re-runs the calendar reset check while the app is open.
	// Zero disables the periodic check.
	CheckInterval time.Duration `mapstructure:"check_interval" yaml:"check_interval"`
}

// ClearConfig controls how long completed items stay visible.
type ClearConfig struct {
	ClearDelay time.Duration `mapstructure:"clear_delay" yaml:"clear_delay"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

type MetricsConfig struct {
	// Addr serves /metrics when set, e.g. "127.0.0.1:9464".
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Overrides carries command-line flag values. Empty fields are ignored.
type Overrides struct {
	DBPath string
	UID    string
}

func (c *Config) apply(o Overrides) {
	if o.DBPath != "" {
		c.DBPath = o.DBPath
	}
	if o.UID != "" {
		c.Account.UID = o.UID
	}
}
