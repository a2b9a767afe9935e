// Package main provides the CLI entry point for the kobold application.
package main

import (
	"fmt"
	"os"

	"github.com/harrison/kobold/internal/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
