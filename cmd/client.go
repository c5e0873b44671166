package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/carbonesdk/internal/capture"
	"github.com/carbonesdk/internal/config"
	"github.com/carbonesdk/internal/logging"
	"github.com/carbonesdk/pkg/carbone"
)

// session bundles what every API command needs for one run.
type session struct {
	cfg    *config.Config
	client *carbone.Client
	logger *logging.RunLogger
}

// loadConfig reads the config file and environment, then applies the
// global flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadConfig(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if url := c.String("url"); url != "" {
		cfg.API.URL = url
	}
	if token := c.String("token"); token != "" {
		cfg.Token = token
	}
	if c.Bool("verbose") {
		cfg.Log.Verbose = true
	}
	if dir := c.String("log-dir"); dir != "" {
		cfg.Log.Dir = dir
	}
	if dir := c.String("capture-dir"); dir != "" {
		cfg.Log.CaptureDir = dir
	}
	return cfg, nil
}

func newSession(c *cli.Context) (*session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Verbose: cfg.Log.Verbose,
		Dir:     cfg.Log.Dir,
		Console: errWriter(c),
	})
	if err != nil {
		return nil, err
	}

	sdkConfig, err := cfg.SDKConfig()
	if err != nil {
		logger.Close()
		return nil, err
	}
	token, err := cfg.APIToken()
	if err != nil {
		logger.Close()
		return nil, err
	}

	opts := []carbone.ClientOption{
		carbone.WithLogger(logger.Logger),
		carbone.WithRateLimit(cfg.API.RateLimit),
	}
	if cfg.Log.CaptureDir != "" {
		transport, err := capture.NewTransport(cfg.Log.CaptureDir, nil, logger.Logger)
		if err != nil {
			logger.Close()
			return nil, err
		}
		logger.Info().Str("dir", transport.SessionDir()).Msg("Capturing API exchanges")
		opts = append(opts, carbone.WithHTTPClient(&http.Client{
			Timeout:   sdkConfig.Timeout(),
			Transport: transport,
		}))
	}

	client, err := carbone.NewClient(sdkConfig, token, opts...)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	logger.Debug().
		Str("api_url", sdkConfig.APIURL).
		Str("api_version", sdkConfig.APIVersion).
		Msg("Carbone client ready")

	return &session{cfg: cfg, client: client, logger: logger}, nil
}

func (s *session) Close() {
	if err := s.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
}

func outWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// writeOutput writes data to path, or to the command's output when path is
// empty or "-".
func writeOutput(c *cli.Context, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := outWriter(c).Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// readInput reads a file, or stdin when path is "-".
func readInput(c *cli.Context, path string) ([]byte, error) {
	if path == "-" {
		reader := io.Reader(os.Stdin)
		if c.App != nil && c.App.Reader != nil {
			reader = c.App.Reader
		}
		return io.ReadAll(reader)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
