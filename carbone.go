package main

import (
	"fmt"
	"os"

	"github.com/carbonesdk/cmd"
	"github.com/carbonesdk/pkg/carbone"
)

func main() {
	app := cmd.NewApp(carbone.Version)

	err := app.Run(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
