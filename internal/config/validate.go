package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var ErrInvalid = errors.New("invalid config")

// Validate rejects negative durations, unknown log levels and uids that
// would not form a single path segment.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: nil config", ErrInvalid)
	}
	if cfg.Reset.CheckInterval < 0 {
		return fmt.Errorf("%w: reset.check_interval must not be negative, got %s", ErrInvalid, cfg.Reset.CheckInterval)
	}
	if cfg.Inbox.ClearDelay < 0 {
		return fmt.Errorf("%w: inbox.clear_delay must not be negative, got %s", ErrInvalid, cfg.Inbox.ClearDelay)
	}
	if cfg.Reminders.ClearDelay < 0 {
		return fmt.Errorf("%w: reminders.clear_delay must not be negative, got %s", ErrInvalid, cfg.Reminders.ClearDelay)
	}
	if strings.ContainsAny(cfg.Account.UID, "/ ") {
		return fmt.Errorf("%w: account.uid %q must not contain '/' or spaces", ErrInvalid, cfg.Account.UID)
	}
	if _, err := zerolog.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalid, err)
	}
	return nil
}
