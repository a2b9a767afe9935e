package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/kobold/internal/insights"
	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/projectstore"
)

// NewResumeCommand continues an already-persisted plan from its last
// checkpointed step, refusing to synthesize a new one. Before driving the
// plan further it replays any WAL entries left by an interrupted prior run
// onto the loaded status, re-saves, and checkpoints the WAL — the crash
// recovery protocol that guarantees no status transition is lost.
func NewResumeCommand(newStore func() *projectstore.Store, newInsights func() (*insights.Store, error)) *cobra.Command {
	var (
		taskID      string
		role        string
		command     string
		commandArgs []string
		maxIter     int
		concurrency int
	)

	resumeCmd := &cobra.Command{
		Use:   "resume <project-id>",
		Short: "Resume an existing task's plan from its last checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			if taskID == "" {
				return kerrors.NewConfigError("missing_task_id", "--task is required")
			}
			return driveplan(cc, newStore(), newInsights, args[0], taskID, "", role, command, commandArgs, maxIter, concurrency, true, true)
		},
	}

	resumeCmd.Flags().StringVar(&taskID, "task", "", "task id for the plan to resume")
	resumeCmd.Flags().StringVar(&role, "role", "kobold", "agent role to run as (wyrm, wyvern, drake, kobold-planner, kobold)")
	resumeCmd.Flags().StringVar(&command, "provider-command", "", "subprocess command invoked for model calls (defaults to the role's configured provider name)")
	resumeCmd.Flags().StringSliceVar(&commandArgs, "provider-args", nil, "arguments passed to the provider subprocess")
	resumeCmd.Flags().IntVar(&maxIter, "max-iterations", 10, "maximum tool-loop iterations per step")
	resumeCmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent steps per dependency wave")
	return resumeCmd
}
