package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/carbonesdk/pkg/carbone"
)

func renderOptionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "data",
			Aliases: []string{"d"},
			Usage:   "Read render options JSON from `FILE` (- for stdin)",
		},
		&cli.StringFlag{
			Name:  "json",
			Usage: "Render options as an inline JSON string",
		},
	}
}

func renderOptions(c *cli.Context) (carbone.RenderOptions, error) {
	inline, path := c.String("json"), c.String("data")
	switch {
	case inline != "" && path != "":
		return carbone.RenderOptions{}, errors.New("use either --data or --json, not both")
	case inline != "":
		return carbone.NewRenderOptions(inline)
	case path != "":
		data, err := readInput(c, path)
		if err != nil {
			return carbone.RenderOptions{}, err
		}
		return carbone.NewRenderOptions(string(data))
	default:
		return carbone.RenderOptions{}, errors.New("render options are required (--data or --json)")
	}
}

// RenderCommand returns the render command
func RenderCommand() *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "Render a stored template and print the render id",
		ArgsUsage: "TEMPLATE_ID",
		Flags:     renderOptionFlags(),
		Action:    runRender,
	}
}

func runRender(c *cli.Context) error {
	raw, err := requireArg(c, "TEMPLATE_ID")
	if err != nil {
		return err
	}
	id, err := carbone.NewTemplateID(raw)
	if err != nil {
		return err
	}
	options, err := renderOptions(c)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	renderID, err := s.client.RenderReport(c.Context, id, options)
	if err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	fmt.Fprintln(outWriter(c), renderID.String())
	return nil
}

// ReportCommand returns the report command
func ReportCommand() *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "Download a rendered report",
		ArgsUsage: "RENDER_ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the report to `PATH`; a directory keeps the service file name (default: stdout)",
			},
		},
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	raw, err := requireArg(c, "RENDER_ID")
	if err != nil {
		return err
	}
	id, err := carbone.NewRenderID(raw)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	report, err := s.client.GetReportFile(c.Context, id)
	if err != nil {
		return fmt.Errorf("failed to fetch report: %w", err)
	}
	return saveReport(c, s, report)
}

// GenerateCommand returns the generate command
func GenerateCommand() *cli.Command {
	flags := append(renderOptionFlags(),
		&cli.StringFlag{
			Name:  "template-id",
			Usage: "Render a template already stored under `ID` instead of a local file",
		},
		&cli.StringFlag{
			Name:  "payload",
			Usage: "Payload mixed into the derived template id",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to `PATH`; a directory keeps the service file name (default: stdout)",
		},
	)

	return &cli.Command{
		Name:      "generate",
		Usage:     "Upload the template if needed, render it and download the report",
		ArgsUsage: "[TEMPLATE_FILE]",
		Flags:     flags,
		Action:    runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	templateID := c.String("template-id")
	if (templateID == "") == (c.NArg() == 0) {
		return errors.New("give either a TEMPLATE_FILE argument or --template-id")
	}
	options, err := renderOptions(c)
	if err != nil {
		return err
	}

	var template *carbone.TemplateFile
	var id carbone.TemplateID
	if templateID != "" {
		if id, err = carbone.NewTemplateID(templateID); err != nil {
			return err
		}
	} else if template, err = carbone.NewTemplateFile(c.Args().First()); err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	var report *carbone.Report
	if template != nil {
		report, err = s.client.GenerateReportFile(c.Context, template, options, c.String("payload"))
	} else {
		var renderID carbone.RenderID
		if renderID, err = s.client.RenderReport(c.Context, id, options); err == nil {
			report, err = s.client.GetReportFile(c.Context, renderID)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}
	return saveReport(c, s, report)
}

func saveReport(c *cli.Context, s *session, report *carbone.Report) error {
	path := c.String("output")
	if path != "" && path != "-" {
		if isDir(path) {
			path = filepath.Join(path, filepath.Base(report.Name))
		}
	}
	if err := writeOutput(c, path, report.Content); err != nil {
		return err
	}
	s.logger.Info().
		Str("name", report.Name).
		Str("content_type", report.ContentType).
		Int("size", len(report.Content)).
		Msg("Report saved")
	return nil
}
