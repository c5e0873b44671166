package cmd

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"
)

// StatusCommand returns the status command
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Print the Carbone service status",
		Action: runStatus,
	}
}

func runStatus(c *cli.Context) error {
	s, err := newSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	status, err := s.client.Status(c.Context)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	fmt.Fprintln(outWriter(c), strings.TrimSpace(status))
	return nil
}
