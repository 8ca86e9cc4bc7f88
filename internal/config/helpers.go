package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vshulcz/scbridge/internal/domain"
	"github.com/vshulcz/scbridge/internal/misc"
)

// FromEnvOrFlag returns the environment value when present, otherwise falls back to a CLI flag then default.
func FromEnvOrFlag(envKey, flagVal, def string) string {
	if v := misc.Getenv(envKey, ""); v != "" {
		return v
	}
	if v := strings.TrimSpace(flagVal); v != "" {
		return v
	}
	return def
}

// FromEnvOrFlagInt resolves integer values with minimum validation.
func FromEnvOrFlagInt(envKey string, flagVal, def, min int) int {
	if ev := misc.Getenv(envKey, ""); ev != "" {
		if n, err := strconv.Atoi(ev); err == nil && n >= min {
			return n
		}
	}
	if flagVal != 0 && flagVal >= min {
		return flagVal
	}
	return def
}

// FromEnvOrFlagDuration resolves a duration (seconds, Go syntax or hh:mm:ss) with the
// same precedence as FromEnvOrFlag and rejects values that are not > 0.
func FromEnvOrFlagDuration(envKey, flagVal, def string) (time.Duration, error) {
	v := FromEnvOrFlag(envKey, flagVal, def)
	d, err := misc.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidArgument, envKey, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: %s must be > 0, got %v", domain.ErrInvalidArgument, envKey, d)
	}
	return d, nil
}
