package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/planstore"
	"github.com/harrison/kobold/internal/projectstore"
)

// NewInspectCommand prints one task's plan in detail: every step's status
// and output, the execution log, and the most recent conversation
// checkpoint, if any.
func NewInspectCommand(newStore func() *projectstore.Store) *cobra.Command {
	var taskID string

	inspectCmd := &cobra.Command{
		Use:   "inspect <project-id>",
		Short: "Show one task's plan in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			projectID := args[0]
			if taskID == "" {
				return kerrors.NewConfigError("missing_task_id", "--task is required")
			}

			store := newStore()
			project, ok, err := store.Get(projectID)
			if err != nil {
				return err
			}
			if !ok {
				return kerrors.NewConfigError("missing_project", "no project registered with id "+projectID)
			}

			plans := planstore.New(project.OutputDir)
			plan, err := plans.Load(projectID, taskID)
			if err != nil {
				return err
			}

			out := cc.OutOrStdout()
			fmt.Fprintf(out, "task %s (%s): %s\n", plan.TaskID, plan.Status, plan.TaskDescription)
			fmt.Fprintf(out, "progress: %d/%d steps (%.0f%%)\n", plan.CompletedStepsCount(), len(plan.Steps), plan.ProgressPercentage())
			if plan.ErrorMessage != "" {
				fmt.Fprintf(out, "error: %s\n", plan.ErrorMessage)
			}

			fmt.Fprintln(out, "\nsteps:")
			for _, s := range plan.Steps {
				fmt.Fprintf(out, "  [%d] %-12s %s\n", s.Index, s.Status, s.Title)
				if s.Output != "" {
					fmt.Fprintf(out, "      %s\n", s.Output)
				}
			}

			if len(plan.ExecutionLog) > 0 {
				fmt.Fprintln(out, "\nexecution log:")
				for _, entry := range plan.ExecutionLog {
					fmt.Fprintf(out, "  %s  %s\n", entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Message)
				}
			}

			cp, cpErr := plans.LoadConversationCheckpoint(projectID, taskID)
			if cpErr == nil && cp != nil {
				fmt.Fprintf(out, "\nlast checkpoint: step %d, %d message(s), saved %s\n",
					cp.StepIndex, len(cp.Messages), cp.SavedAt.Format("2006-01-02 15:04:05"))
			}
			return nil
		},
	}

	inspectCmd.Flags().StringVar(&taskID, "task", "", "task id to inspect")
	return inspectCmd
}
