package cmd

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/carbonesdk/pkg/carbone"
)

// TemplateCommand returns the template command
func TemplateCommand() *cli.Command {
	return &cli.Command{
		Name:  "template",
		Usage: "Manage stored templates",
		Subcommands: []*cli.Command{
			{
				Name:      "upload",
				Usage:     "Upload a template and print its id",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "salt",
						Usage: "Salt mixed into the id the service derives",
					},
				},
				Action: runTemplateUpload,
			},
			{
				Name:      "download",
				Usage:     "Download a stored template",
				ArgsUsage: "TEMPLATE_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the template to `FILE` instead of stdout",
					},
				},
				Action: runTemplateDownload,
			},
			{
				Name:      "delete",
				Usage:     "Delete a stored template",
				ArgsUsage: "TEMPLATE_ID",
				Action:    runTemplateDelete,
			},
			{
				Name:      "id",
				Usage:     "Print the template id derived locally from a file",
				ArgsUsage: "FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "payload",
						Usage: "Payload mixed into the id",
					},
				},
				Action: runTemplateID,
			},
		},
	}
}

func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one %s argument", name)
	}
	return c.Args().First(), nil
}

func runTemplateUpload(c *cli.Context) error {
	path, err := requireArg(c, "FILE")
	if err != nil {
		return err
	}
	template, err := carbone.NewTemplateFile(path)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.client.UploadTemplateFile(c.Context, template, c.String("salt"))
	if err != nil {
		return fmt.Errorf("failed to upload template: %w", err)
	}

	s.logger.Info().Str("template_id", id.String()).Int64("size", template.Size()).Msg("Template uploaded")
	fmt.Fprintln(outWriter(c), id.String())
	return nil
}

func runTemplateDownload(c *cli.Context) error {
	raw, err := requireArg(c, "TEMPLATE_ID")
	if err != nil {
		return err
	}
	id, err := carbone.NewTemplateID(raw)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	content, err := s.client.DownloadTemplate(c.Context, id)
	if err != nil {
		return fmt.Errorf("failed to download template: %w", err)
	}
	return writeOutput(c, c.String("output"), content)
}

func runTemplateDelete(c *cli.Context) error {
	raw, err := requireArg(c, "TEMPLATE_ID")
	if err != nil {
		return err
	}
	id, err := carbone.NewTemplateID(raw)
	if err != nil {
		return err
	}

	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.client.DeleteTemplate(c.Context, id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	s.logger.Info().Str("template_id", id.String()).Msg("Template deleted")
	return nil
}

func runTemplateID(c *cli.Context) error {
	path, err := requireArg(c, "FILE")
	if err != nil {
		return err
	}
	template, err := carbone.NewTemplateFile(path)
	if err != nil {
		return err
	}
	id, err := template.GenerateID(c.String("payload"))
	if err != nil {
		return err
	}
	fmt.Fprintln(outWriter(c), id.String())
	return nil
}
