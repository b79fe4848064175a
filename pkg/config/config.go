// Package config reads service settings from the environment.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// GetString returns the value of key, or fallback when the variable is unset.
// A variable set to the empty string is returned as is.
func GetString(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// GetInt parses key as a base-10 integer.
func GetInt(key string, fallback int) int {
	return lookup(key, fallback, strconv.Atoi)
}

// GetBool parses key with strconv.ParseBool.
func GetBool(key string, fallback bool) bool {
	return lookup(key, fallback, strconv.ParseBool)
}

// GetSeconds reads an integer number of seconds and returns it as a duration.
func GetSeconds(key string, fallback int) time.Duration {
	return time.Duration(GetInt(key, fallback)) * time.Second
}

// lookup parses a set variable with parse. Unparseable values are reported
// and replaced by fallback so a typo never stops the service from starting.
func lookup[T any](key string, fallback T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := parse(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid environment value, using default", "key", key, "value", raw, "error", err)
		return fallback
	}
	return parsed
}
