package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/carbonesdk/internal/config"
)

// ConfigCheckResult holds the result of configuration validation
type ConfigCheckResult struct {
	Missing  []string          // Required settings that are missing
	Present  map[string]string // Settings that are set (secrets masked)
	Warnings []string          // Non-fatal warnings
}

// CheckConfig reports which settings are present and warns about tokens
// that are about to expire.
func CheckConfig(cfg *config.Config, now time.Time) *ConfigCheckResult {
	result := &ConfigCheckResult{
		Missing:  []string{},
		Present:  make(map[string]string),
		Warnings: []string{},
	}

	result.Present["api.url"] = cfg.API.URL
	result.Present["api.version"] = cfg.API.Version
	result.Present["api.timeout"] = fmt.Sprintf("%ds", cfg.API.Timeout)
	if cfg.API.RateLimit > 0 {
		result.Present["api.rate_limit"] = fmt.Sprintf("%d/s", cfg.API.RateLimit)
	}
	if cfg.TokenFile != "" {
		result.Present["token_file"] = cfg.TokenFile
	}

	token, err := cfg.APIToken()
	if err != nil {
		result.Missing = append(result.Missing, "token")
		result.Warnings = append(result.Warnings, err.Error())
		return result
	}
	result.Present["token"] = maskSecret(strings.TrimSpace(cfg.Token))
	if cfg.Token == "" {
		result.Present["token"] = "(from token_file)"
	}

	exp, ok := token.ExpiresAt()
	switch {
	case !ok:
		result.Warnings = append(result.Warnings, "token expiry unknown (not a JWT or no exp claim)")
	case exp.Before(now):
		result.Warnings = append(result.Warnings, fmt.Sprintf("token expired at %s", exp.Format(time.RFC3339)))
	default:
		result.Present["token_expires"] = exp.Format(time.RFC3339)
		if exp.Sub(now) < 7*24*time.Hour {
			result.Warnings = append(result.Warnings, fmt.Sprintf("token expires soon (%s)", exp.Format(time.RFC3339)))
		}
	}

	return result
}

// PrintConfigCheck prints the configuration check results
func PrintConfigCheck(w io.Writer, result *ConfigCheckResult) {
	fmt.Fprintln(w, "=== Configuration Check ===")
	fmt.Fprintln(w, "")

	if len(result.Missing) > 0 {
		fmt.Fprintln(w, "❌ Missing required settings:")
		for _, v := range result.Missing {
			fmt.Fprintf(w, "   - %s\n", v)
		}
		fmt.Fprintln(w, "")
	}

	if len(result.Present) > 0 {
		keys := make([]string, 0, len(result.Present))
		for k := range result.Present {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		fmt.Fprintln(w, "✓ Configured settings:")
		for _, k := range keys {
			fmt.Fprintf(w, "   - %s = %s\n", k, result.Present[k])
		}
		fmt.Fprintln(w, "")
	}

	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "⚠ Warning: %s\n", warning)
	}

	if len(result.Missing) == 0 {
		fmt.Fprintln(w, "✓ All required configuration is present")
	}

	fmt.Fprintln(w, "============================")
}

// maskSecret masks a secret value for display, showing only first and last 2 chars
func maskSecret(value string) string {
	if len(value) <= 8 {
		return "****"
	}
	return value[:2] + "****" + value[len(value)-2:]
}

// LoadEnvFile loads environment variables from a file, overwriting existing ones.
func LoadEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Remove quotes if present
		if len(value) >= 2 && ((value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'')) {
			value = value[1 : len(value)-1]
		}

		if err := os.Setenv(key, value); err != nil {
			return fmt.Errorf("failed to set env var %s: %w", key, err)
		}
	}

	return scanner.Err()
}
