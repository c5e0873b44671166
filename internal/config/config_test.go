package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonesdk/pkg/carbone"
)

var testToken = strings.Repeat("0123456789", 31)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("CARBONE_TOKEN", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, carbone.DefaultAPIURL, cfg.API.URL)
	assert.Equal(t, carbone.DefaultAPITimeout, cfg.API.Timeout)
	assert.Equal(t, carbone.DefaultAPIVersion, cfg.API.Version)
	assert.Empty(t, cfg.Token)
}

func TestLoadConfigFile(t *testing.T) {
	path := writeFile(t, "carbone.toml", `
token = "from-file"

[api]
url = "http://127.0.0.1:4000"
timeout = 5
version = "5"
rate_limit = 3

[log]
dir = "logs"
verbose = true
capture_dir = "captures"
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:4000", cfg.API.URL)
	assert.Equal(t, 5, cfg.API.Timeout)
	assert.Equal(t, "5", cfg.API.Version)
	assert.Equal(t, 3, cfg.API.RateLimit)
	assert.Equal(t, "from-file", cfg.Token)
	assert.Equal(t, "logs", cfg.Log.Dir)
	assert.True(t, cfg.Log.Verbose)
	assert.Equal(t, "captures", cfg.Log.CaptureDir)
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeFile(t, "carbone.toml", "[api]\nurl = \"http://from-file\"\n")
	tokenPath := writeFile(t, "token", testToken+"\n")

	t.Setenv("CARBONE_API_URL", "http://from-env:9000")
	t.Setenv("CARBONE_API_RATE_LIMIT", "7")
	t.Setenv("CARBONE_TOKEN_FILE", tokenPath)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-env:9000", cfg.API.URL)
	assert.Equal(t, 7, cfg.API.RateLimit)
	assert.Equal(t, tokenPath, cfg.TokenFile)

	token, err := cfg.APIToken()
	require.NoError(t, err)
	assert.False(t, token.IsZero())
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "api.url", envKey("CARBONE_API_URL"))
	assert.Equal(t, "api.rate_limit", envKey("CARBONE_API_RATE_LIMIT"))
	assert.Equal(t, "token", envKey("CARBONE_TOKEN"))
	assert.Equal(t, "token_file", envKey("CARBONE_TOKEN_FILE"))
	assert.Equal(t, "log.dir", envKey("CARBONE_LOG_DIR"))
	assert.Equal(t, "log.capture_dir", envKey("CARBONE_LOG_CAPTURE_DIR"))
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "carbone.toml")
	require.NoError(t, InitConfig(path))
	require.Error(t, InitConfig(path))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, carbone.DefaultAPIURL, cfg.API.URL)

	sdk, err := cfg.SDKConfig()
	require.NoError(t, err)
	assert.Equal(t, carbone.DefaultAPIVersion, sdk.APIVersion)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	cfg.API.URL = "http://localhost:4000"
	cfg.API.Timeout = 10
	cfg.API.Version = "4"

	err := Validate(cfg)
	require.ErrorIs(t, err, carbone.ErrInvalidToken)

	cfg.Token = "short"
	require.ErrorIs(t, Validate(cfg), carbone.ErrInvalidToken)

	cfg.Token = testToken
	require.NoError(t, Validate(cfg))

	cfg.API.RateLimit = -1
	require.Error(t, Validate(cfg))

	cfg.API.RateLimit = 0
	cfg.API.URL = "::not-a-url"
	require.ErrorIs(t, Validate(cfg), carbone.ErrInvalidConfig)
}
