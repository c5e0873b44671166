package carbone

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "https://api.carbone.io", cfg.APIURL)
	assert.Equal(t, "4", cfg.APIVersion)
	assert.Equal(t, 60*time.Second, cfg.Timeout())
	require.NoError(t, cfg.Validate())
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig("http://127.0.0.1:57780", 4, "4")
	require.NoError(t, err)
	assert.Equal(t, 4*time.Second, cfg.Timeout())
}

func TestNewConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		timeout int
		version string
		field   string
	}{
		{name: "bad url", url: "127.0.0.1 57780", timeout: 4, version: "4", field: "apiUrl"},
		{name: "empty url", url: "", timeout: 4, version: "4", field: "apiUrl"},
		{name: "negative timeout", url: "http://localhost", timeout: -1, version: "4", field: "apiTimeout"},
		{name: "non numeric version", url: "http://localhost", timeout: 4, version: "v4", field: "apiVersion"},
		{name: "empty version", url: "http://localhost", timeout: 4, version: "", field: "apiVersion"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConfig(tt.url, tt.timeout, tt.version)
			require.ErrorIs(t, err, ErrInvalidConfig)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestConfigFromString(t *testing.T) {
	cfg, err := ConfigFromString(`{
		"apiUrl": "http://127.0.0.1",
		"apiTimeout": 4,
		"apiVersion": "2"
	}`)
	require.NoError(t, err)

	want := &Config{APIURL: "http://127.0.0.1", APITimeout: 4, APIVersion: "2"}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigFromStringNumericVersionAndDefaults(t *testing.T) {
	cfg, err := ConfigFromString(`{"apiVersion": 5}`)
	require.NoError(t, err)
	assert.Equal(t, "5", cfg.APIVersion)
	assert.Equal(t, DefaultAPIURL, cfg.APIURL)
	assert.Equal(t, DefaultAPITimeout, cfg.APITimeout)
}

func TestConfigFromStringInvalid(t *testing.T) {
	_, err := ConfigFromString(`{"apiUrl": `)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ConfigFromString(`{"apiUrl": "not a url"}`)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigFromFile(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "config.test.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"apiUrl":"http://127.0.0.1:8080","apiTimeout":10,"apiVersion":"4"}`), 0o644))

	cfg, err := ConfigFromFile(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.APIURL)
	assert.Equal(t, 10, cfg.APITimeout)

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(tomlPath, []byte("apiUrl = \"https://carbone.internal\"\napiVersion = \"4\"\n"), 0o644))

	cfg, err = ConfigFromFile(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, "https://carbone.internal", cfg.APIURL)
	assert.Equal(t, DefaultAPITimeout, cfg.APITimeout)
}

func TestConfigFromFileMissing(t *testing.T) {
	_, err := ConfigFromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, ErrConfigNotFound)
}
