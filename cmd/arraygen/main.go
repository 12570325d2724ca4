package main

import (
	"os"

	"github.com/example/arraygen/cmd/arraygen/internal/cli"
	"github.com/example/arraygen/cmd/arraygen/internal/ui"
)

func main() {
	if err := cli.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
