package main

import (
	"os"

	"github.com/test-pad/testpad/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
