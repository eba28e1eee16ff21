// Command accessmatic is the command-line client for the AccessMatic dashboard API.
package main

import (
	"fmt"
	"os"

	"github.com/accessmatic/dashboard/sdk/go/internal/cli/command"
)

func main() {
	app := command.App()
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
