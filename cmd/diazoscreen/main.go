// Command diazoscreen is the command-line interface for evaluating and
// running the diazotroph-origin compound classifier.
package main

import (
	"os"

	"github.com/turtacn/DiazoScreen/internal/interfaces/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
