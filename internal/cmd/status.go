package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/logger"
	"github.com/harrison/kobold/internal/planstore"
	"github.com/harrison/kobold/internal/projectstore"
)

// NewStatusCommand reports a project's status and the progress of every
// plan registered under its output directory.
func NewStatusCommand(newStore func() *projectstore.Store) *cobra.Command {
	return &cobra.Command{
		Use:   "status <project-id>",
		Short: "Show a project's status and plan progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectID := args[0]
			store := newStore()

			project, ok, err := store.Get(projectID)
			if err != nil {
				return err
			}
			if !ok {
				return kerrors.NewConfigError("missing_project", "no project registered with id "+projectID)
			}

			logger.Banner(cmd.OutOrStdout(), fmt.Sprintf("%s (%s)", project.ID, project.Name), []string{
				fmt.Sprintf("status:          %s", project.Status),
				fmt.Sprintf("execution state: %s", project.ExecutionState),
				fmt.Sprintf("output dir:      %s", project.OutputDir),
			})

			if project.OutputDir == "" {
				return nil
			}
			plans, err := planstore.New(project.OutputDir).ListForProject(projectID)
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  plans:           (none)")
				return nil
			}

			fmt.Fprintln(cmd.OutOrStdout(), "  plans:")
			for _, p := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "    %-20s %-12s %d/%d (%.0f%%)\n",
					p.TaskID, p.Status, p.CompletedStepsCount(), len(p.Steps), p.ProgressPercentage())
			}
			return nil
		},
	}
}
