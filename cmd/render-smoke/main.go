package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/carbonesdk/internal/config"
	"github.com/carbonesdk/internal/logging"
	"github.com/carbonesdk/pkg/carbone"
)

// This tiny program drives GenerateReport repeatedly against a live service,
// to check that the upload-on-miss path settles into cache hits and that
// concurrent renders do not interfere.
//
//	TEMPLATE=invoice.odt DATA=data.json LOOPS=20 CONCURRENCY=4 go run ./cmd/render-smoke
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "render-smoke: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig(os.Getenv("CARBONE_CONFIG"))
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{Verbose: cfg.Log.Verbose, Dir: cfg.Log.Dir})
	if err != nil {
		return err
	}
	defer logger.Close()

	sdkConfig, err := cfg.SDKConfig()
	if err != nil {
		return err
	}
	token, err := cfg.APIToken()
	if err != nil {
		return err
	}
	client, err := carbone.NewClient(sdkConfig, token,
		carbone.WithLogger(logger.Logger),
		carbone.WithRateLimit(cfg.API.RateLimit),
	)
	if err != nil {
		return err
	}

	template, err := carbone.NewTemplateFile(envOr("TEMPLATE", "template.odt"))
	if err != nil {
		return err
	}
	data, err := os.ReadFile(envOr("DATA", "data.json"))
	if err != nil {
		return err
	}
	options, err := carbone.NewRenderOptions(string(data))
	if err != nil {
		return err
	}

	loops := envInt("LOOPS", 10)
	payload := os.Getenv("PAYLOAD")

	var failures, bytes atomic.Int64
	start := time.Now()

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(envInt("CONCURRENCY", 1))
	for i := 0; i < loops; i++ {
		g.Go(func() error {
			report, err := client.GenerateReport(ctx, template, options, payload)
			if err != nil {
				failures.Add(1)
				logger.Error().Err(err).Int("iteration", i).Msg("Render failed")
				return nil
			}
			bytes.Add(int64(len(report)))
			return nil
		})
	}
	_ = g.Wait()

	logger.Info().
		Int("renders", loops).
		Int64("failures", failures.Load()).
		Int64("bytes", bytes.Load()).
		Dur("elapsed", time.Since(start).Round(time.Millisecond)).
		Msg("render-smoke complete")

	if failures.Load() > 0 {
		return fmt.Errorf("%d of %d renders failed", failures.Load(), loops)
	}
	return nil
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
