package helper

import (
	"fmt"
	"os"
	"strings"

	"github.com/relloyd/sparkify-dwh/constants"
)

// GetEnvVar fetches OS environment variable.
// If the variable is not set it returns empty string.
// It also returns an error if there is a missing value AND mandatory == true.
func GetEnvVar(k string, mandatory bool) (string, error) {
	if value := os.Getenv(k); value != "" {
		return value, nil
	}
	if mandatory {
		return "", fmt.Errorf("environment variable %v is not set", k)
	}
	return "", nil
}

// ReadValueFromEnv reads env var name into val.
// If the env var is not set then return an error and leave val untouched.
func ReadValueFromEnv(name string, val *string) error {
	v := os.Getenv(name)
	if v == "" {
		return fmt.Errorf("value for environment variable %v not found", name)
	}
	*val = v
	return nil
}

// ReadValueFromEnvWithDefault will read the value of name from the environment.
// If it's not set then it returns the supplied defaultValue.
func ReadValueFromEnvWithDefault(name string, defaultValue string) (v string) {
	_ = ReadValueFromEnv(name, &v)
	if v == "" {
		v = defaultValue
	}
	return
}

// GetFlagEnvVarName converts a CLI flag like "open-port" into SDW_OPEN_PORT.
func GetFlagEnvVarName(flagName string) string {
	n := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(flagName), "-", "_"))
	return fmt.Sprintf("%v_%v", constants.EnvVarPrefix, n)
}

// GetDsnEnvVarName returns the variable that overrides a stored connection's DSN.
func GetDsnEnvVarName(connectionName string) string {
	n := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(connectionName), "-", "_"))
	return fmt.Sprintf("%v_%v_DSN", constants.EnvVarPrefix, n)
}
