// Package config holds viper helpers shared by the CLI.
package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// GetString is a helper to get string values from Viper.
// It checks both OS environment variables and Viper configuration.
func GetString(key string) string {
	osValue := os.Getenv(key)
	viperValue := viper.GetString(key)

	// If Viper doesn't have it but OS does, return OS value
	if viperValue == "" && osValue != "" {
		return osValue
	}
	return strings.TrimSpace(viperValue)
}

// FirstString returns the first non-empty value among keys. It resolves
// settings that accept several environment variable names.
func FirstString(keys ...string) string {
	for _, key := range keys {
		if v := GetString(key); v != "" {
			return v
		}
	}
	return ""
}

// StringList splits a comma-separated setting, dropping blanks.
func StringList(key string) []string {
	var out []string
	for _, part := range strings.Split(GetString(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// BindEnv binds environment variables to Viper keys of the same name.
func BindEnv(keys ...string) error {
	for _, key := range keys {
		if err := viper.BindEnv(key); err != nil {
			return err
		}
	}
	return nil
}
