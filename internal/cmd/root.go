// Package cmd wires Kobold's cobra subcommands: run, status, resume,
// inspect. Grounded on internal/cmd/root.go's NewRootCommand shape
// (SilenceUsage, injected Version, subcommand registration).
package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/kobold/internal/insights"
	"github.com/harrison/kobold/internal/projectstore"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

func defaultProjectsDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".kobold"
	}
	return filepath.Join(home, ".kobold", "projects")
}

// NewRootCommand builds the root cobra command.
func NewRootCommand() *cobra.Command {
	var projectsDir string

	root := &cobra.Command{
		Use:     "kobold",
		Short:   "Kobold agent orchestrator",
		Version: Version,
		Long: `Kobold drives per-project plans through a pool of role-typed agents
(Wyrm, Wyvern, Drake, KoboldPlanner, Kobold), dispatching steps wave by
wave subject to concurrency, circuit, and file-overlap admission rules.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&projectsDir, "projects-dir", defaultProjectsDir(), "directory holding projects.json and per-project output")

	newStore := func() *projectstore.Store {
		return projectstore.New(projectsDir)
	}
	newInsights := func() (*insights.Store, error) {
		return insights.NewStore(filepath.Join(projectsDir, "insights.db"))
	}

	root.AddCommand(NewRunCommand(newStore, newInsights))
	root.AddCommand(NewStatusCommand(newStore))
	root.AddCommand(NewResumeCommand(newStore, newInsights))
	root.AddCommand(NewInspectCommand(newStore))
	return root
}
