// Package main is the entry point for the import-cost CLI.
package main

import (
	"os"

	"import-cost/cmd/cli/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
