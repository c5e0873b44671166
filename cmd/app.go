package cmd

import (
	"github.com/urfave/cli/v2"
)

// NewApp returns the carbone CLI application.
func NewApp(version string) *cli.App {
	return &cli.App{
		Name:    "carbone",
		Usage:   "Upload templates and render reports with the Carbone API",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Load configuration from `FILE` (default: ./carbone.toml, $HOME/.carbone.toml)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from `FILE` before reading the configuration",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Carbone API base `URL`",
			},
			&cli.StringFlag{
				Name:  "token",
				Usage: "Carbone API `TOKEN` (prefer CARBONE_TOKEN or token_file)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:  "log-dir",
				Usage: "Also write a JSON log file for this run into `DIR`",
			},
			&cli.StringFlag{
				Name:  "capture-dir",
				Usage: "Record every API exchange as JSON fixtures under `DIR`",
			},
		},
		Before: func(c *cli.Context) error {
			if path := c.String("env-file"); path != "" {
				return LoadEnvFile(path)
			}
			return nil
		},
		Commands: []*cli.Command{
			TemplateCommand(),
			RenderCommand(),
			ReportCommand(),
			GenerateCommand(),
			StatusCommand(),
			ConfigCommand(),
		},
	}
}
