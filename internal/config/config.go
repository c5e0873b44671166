package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/carbonesdk/pkg/carbone"
)

const envPrefix = "CARBONE_"

// DefaultPaths are searched in order when no config file is given.
var DefaultPaths = []string{"./carbone.toml", "$HOME/.carbone.toml"}

// Config represents the CLI configuration
type Config struct {
	API struct {
		URL       string `koanf:"url"`
		Timeout   int    `koanf:"timeout"`
		Version   string `koanf:"version"`
		RateLimit int    `koanf:"rate_limit"`
	} `koanf:"api"`

	Token     string `koanf:"token"`
	TokenFile string `koanf:"token_file"`

	Log struct {
		Dir        string `koanf:"dir"`
		Verbose    bool   `koanf:"verbose"`
		CaptureDir string `koanf:"capture_dir"`
	} `koanf:"log"`
}

// LoadConfig loads the configuration from a TOML file, then applies
// CARBONE_* environment variables on top.
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	k.Load(confmap.Provider(map[string]interface{}{
		"api.url":     carbone.DefaultAPIURL,
		"api.timeout": carbone.DefaultAPITimeout,
		"api.version": carbone.DefaultAPIVersion,
	}, "."), nil)

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		for _, path := range DefaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
					return nil, fmt.Errorf("error loading config %s: %w", path, err)
				}
				break
			}
		}
	}

	// CARBONE_API_URL -> api.url, CARBONE_TOKEN_FILE -> token_file
	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("error loading environment: %w", err)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, section := range []string{"api", "log"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// InitConfig writes a sample configuration file
func InitConfig(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# Carbone configuration

[api]
url = "https://api.carbone.io"
timeout = 60
version = "4"
# requests per second, 0 disables the limit
rate_limit = 0

# token = "your-carbone-api-token"
# token_file = "/path/to/carbone.token"

[log]
# dir = "carbone_logs"
verbose = false
# record every API exchange as JSON fixtures
# capture_dir = "captures"
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0600)
}

// SDKConfig builds the validated carbone.Config for the API section.
func (c *Config) SDKConfig() (*carbone.Config, error) {
	return carbone.NewConfig(c.API.URL, c.API.Timeout, c.API.Version)
}

// APIToken returns the token, reading token_file when token is not set.
func (c *Config) APIToken() (carbone.APIToken, error) {
	raw := strings.TrimSpace(c.Token)
	if raw == "" && c.TokenFile != "" {
		data, err := os.ReadFile(os.ExpandEnv(c.TokenFile))
		if err != nil {
			return carbone.APIToken{}, fmt.Errorf("failed to read token file: %w", err)
		}
		raw = strings.TrimSpace(string(data))
	}
	if raw == "" {
		return carbone.APIToken{}, fmt.Errorf("%w: set token, token_file or %sTOKEN", carbone.ErrInvalidToken, envPrefix)
	}
	return carbone.NewAPIToken(raw)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if _, err := config.SDKConfig(); err != nil {
		return err
	}
	if config.API.RateLimit < 0 {
		return fmt.Errorf("api rate_limit must not be negative")
	}
	if _, err := config.APIToken(); err != nil {
		return err
	}
	return nil
}
