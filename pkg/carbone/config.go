package carbone

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultAPIURL is the hosted Carbone Service.
	DefaultAPIURL = "https://api.carbone.io"

	// DefaultAPIVersion is sent in the carbone-version header.
	DefaultAPIVersion = "4"

	// DefaultAPITimeout is the per-request timeout in seconds.
	DefaultAPITimeout = 60
)

// Config holds the connection settings shared by every Client call. The
// koanf keys match the JSON config files used by the other Carbone SDKs:
//
//	{"apiUrl": "https://api.carbone.io", "apiTimeout": 60, "apiVersion": "4"}
type Config struct {
	APIURL     string `koanf:"apiUrl" validate:"required,url"`
	APITimeout int    `koanf:"apiTimeout" validate:"gte=0"`
	APIVersion string `koanf:"apiVersion" validate:"required,numeric"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("koanf"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

func defaultValues() map[string]interface{} {
	return map[string]interface{}{
		"apiUrl":     DefaultAPIURL,
		"apiTimeout": DefaultAPITimeout,
		"apiVersion": DefaultAPIVersion,
	}
}

// DefaultConfig points at the hosted Service with the default version and timeout.
func DefaultConfig() *Config {
	return &Config{
		APIURL:     DefaultAPIURL,
		APITimeout: DefaultAPITimeout,
		APIVersion: DefaultAPIVersion,
	}
}

// NewConfig builds and validates a Config. timeout is in seconds.
func NewConfig(apiURL string, timeout int, apiVersion string) (*Config, error) {
	cfg := &Config{
		APIURL:     apiURL,
		APITimeout: timeout,
		APIVersion: apiVersion,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ConfigFromFile loads a Config from a JSON file, or TOML when the file name
// ends in .toml. Keys missing from the file keep their defaults.
func ConfigFromFile(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	var parser koanf.Parser = kjson.Parser()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		parser = toml.Parser()
	}
	return loadConfig(file.Provider(path), parser)
}

// ConfigFromString loads a Config from a JSON document.
func ConfigFromString(s string) (*Config, error) {
	return loadConfig(rawbytes.Provider([]byte(s)), kjson.Parser())
}

func loadConfig(provider koanf.Provider, parser koanf.Parser) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("error loading config defaults: %w", err)
	}
	if err := k.Load(provider, parser); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the URL is well formed, the timeout is not negative
// and the version is numeric.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q check", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// Timeout returns the request timeout. Zero disables it.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.APITimeout) * time.Second
}

func (c *Config) baseURL() string {
	return strings.TrimSuffix(c.APIURL, "/")
}
