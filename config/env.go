package config

import (
	"os"
	"strings"

	"github.com/kbukum/apptemplate/errors"
	"github.com/kbukum/apptemplate/logger"
)

// LookupEnv returns the value of the environment variable name. A variable
// that is unset or contains only whitespace is reported as absent and logged
// at error level.
func LookupEnv(name string) (string, bool) {
	value, ok := os.LookupEnv(name)
	if !ok || strings.TrimSpace(value) == "" {
		logger.Error("Environment variable is not set", map[string]interface{}{
			"variable": name,
		})
		return "", false
	}
	return value, true
}

// RequireEnv is LookupEnv for variables that must be present.
func RequireEnv(name string) (string, error) {
	value, ok := LookupEnv(name)
	if !ok {
		return "", errors.MissingField(name).WithDetail("source", "environment")
	}
	return value, nil
}
