package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harrison/kobold/internal/agenttype"
	"github.com/harrison/kobold/internal/circuit"
	"github.com/harrison/kobold/internal/insights"
	"github.com/harrison/kobold/internal/kerrors"
	"github.com/harrison/kobold/internal/logger"
	"github.com/harrison/kobold/internal/models"
	"github.com/harrison/kobold/internal/orchestrator"
	"github.com/harrison/kobold/internal/planning"
	"github.com/harrison/kobold/internal/planstore"
	"github.com/harrison/kobold/internal/projectstore"
	"github.com/harrison/kobold/internal/providers"
	"github.com/harrison/kobold/internal/runtime"
	"github.com/harrison/kobold/internal/scheduler"
	"github.com/harrison/kobold/internal/wal"
)

// NewRunCommand drives one task's plan to completion (or to its next
// blocking point) through the Scheduler and Agent Runtime.
func NewRunCommand(newStore func() *projectstore.Store, newInsights func() (*insights.Store, error)) *cobra.Command {
	var (
		taskID      string
		description string
		role        string
		command     string
		commandArgs []string
		maxIter     int
		concurrency int
	)

	runCmd := &cobra.Command{
		Use:   "run <project-id>",
		Short: "Run or resume a task's plan against a configured provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cc *cobra.Command, args []string) error {
			if taskID == "" {
				return kerrors.NewConfigError("missing_task_id", "--task is required")
			}
			return driveplan(cc, newStore(), newInsights, args[0], taskID, description, role, command, commandArgs, maxIter, concurrency, false, false)
		},
	}

	runCmd.Flags().StringVar(&taskID, "task", "", "task id for the plan to run")
	runCmd.Flags().StringVar(&description, "description", "", "task description, used when creating a new plan")
	runCmd.Flags().StringVar(&role, "role", "kobold", "agent role to run as (wyrm, wyvern, drake, kobold-planner, kobold)")
	runCmd.Flags().StringVar(&command, "provider-command", "", "subprocess command invoked for model calls (defaults to the role's configured provider name)")
	runCmd.Flags().StringSliceVar(&commandArgs, "provider-args", nil, "arguments passed to the provider subprocess")
	runCmd.Flags().IntVar(&maxIter, "max-iterations", 10, "maximum tool-loop iterations per step")
	runCmd.Flags().IntVar(&concurrency, "concurrency", 4, "maximum concurrent steps per dependency wave")
	return runCmd
}

// driveplan loads (or, unless requireExisting, creates) a plan and drives
// it through the Scheduler and Agent Runtime, saving the result before
// returning. Shared by the run and resume commands. When recoverWAL is
// set, it first replays any uncommitted WAL entries onto the loaded plan's
// status before driving it further (the crash-recovery protocol resume
// exercises).
func driveplan(cc *cobra.Command, store *projectstore.Store, newInsights func() (*insights.Store, error), projectID, taskID, description, role, command string, commandArgs []string, maxIter, concurrency int, requireExisting, recoverWAL bool) error {
	project, ok, err := store.Get(projectID)
	if err != nil {
		return err
	}
	if !ok {
		return kerrors.NewConfigError("missing_project", "no project registered with id "+projectID)
	}
	if !project.HasOutputDir() {
		return kerrors.NewConfigError("missing_output_dir", "project "+projectID+" has no output directory yet")
	}

	agentType, ok := agenttype.New().Resolve(role)
	if !ok {
		return kerrors.NewConfigError("unknown_agent_type", "unknown agent type "+role)
	}
	agentRole := roleFor(agentType)
	roleCfg, _ := project.Agents.Get(agentRole)
	if !roleCfg.Enabled {
		return kerrors.NewConfigError("agent_disabled", string(agentRole)+" is disabled for this project")
	}

	plans := planstore.New(project.OutputDir)
	plan, loadErr := plans.Load(projectID, taskID)
	if loadErr != nil {
		if requireExisting {
			return kerrors.NewConfigError("missing_plan", "no plan found for task "+taskID)
		}
		plan = &models.Plan{
			TaskID:          taskID,
			ProjectID:       projectID,
			TaskDescription: description,
			Status:          models.PlanInProgress,
			Steps: []models.Step{{
				Index:       1,
				Title:       taskID,
				Description: description,
				Status:      models.StepPending,
			}},
		}
	}

	log := logger.NewConsoleLogger(cc.OutOrStdout(), "info")

	taskWAL := wal.New(filepath.Join(project.OutputDir, "kobold-plans", taskID+"-plan.json"))
	if recoverWAL {
		entries, warnings, walErr := taskWAL.ReadAll()
		if walErr != nil {
			log.Warn("wal read failed during recovery: %v", walErr)
		} else {
			for _, w := range warnings {
				log.Warn("wal recovery: %s", w)
			}
			if len(entries) > 0 {
				plan.Status = wal.ApplyIdempotent(plan.Status, entries)
				if saveErr := plans.Save(plan); saveErr != nil {
					log.Warn("plan save failed during recovery: %v", saveErr)
				} else if checkErr := taskWAL.Checkpoint(); checkErr != nil {
					log.Warn("wal checkpoint failed during recovery: %v", checkErr)
				}
			}
		}
	}

	providerName := roleCfg.Provider
	if providerName == "" {
		providerName = "default"
	}
	providerCmd := command
	if providerCmd == "" {
		providerCmd = providerName
	}
	provider := providers.New(providerName, providerCmd, commandArgs, 0)

	breaker := circuit.NewDefault()
	planningCtx := planning.New(plans)
	planningCtx.RegisterProjectOutputDir(projectID, project.OutputDir)

	if newInsights != nil {
		if store, storeErr := newInsights(); storeErr != nil {
			log.Warn("insights store open failed: %v", storeErr)
		} else {
			defer store.Close()
			planningCtx.SetInsightsStore(store)
		}
	}

	sched := scheduler.New(breaker, planningCtx)
	if roleCfg.MaxParallel > 0 {
		sched.SetProjectCap(projectID, agentType, roleCfg.MaxParallel)
	}

	previousStatus := plan.Status
	if walErr := taskWAL.Append(models.WalEntry{
		Timestamp:      time.Now(),
		TaskID:         taskID,
		PreviousStatus: previousStatus,
		NewStatus:      models.PlanInProgress,
		AssignedAgent:  string(agentRole),
	}); walErr != nil {
		log.Warn("wal append failed: %v", walErr)
	}

	agentID := uuid.NewString()
	planningCtx.RegisterAgent(agentID, projectID, taskID, string(agentType))
	startedAt := time.Now()

	executor := &orchestrator.Executor{
		Provider: provider,
		Options: runtime.AgentOptions{
			WorkingDirectory: project.OutputDir,
			MaxIterations:    maxIter,
		},
		Progress: func(kind runtime.ProgressType, content string) {
			log.Info("%s: %s", kind, content)
		},
		ProviderName: providerName,
		Breaker:      breaker,
		MaxAttempts:  3,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deferred, runErr := scheduler.RunPlan(ctx, sched, projectID, agentType, providerName, plan, executor, concurrency)
	if runErr != nil {
		log.Error("run failed: %v", runErr)
	}

	finalizePlanStatus(plan)

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	planningCtx.UnregisterAgent(agentID, projectID, plan.Status == models.PlanCompleted, errMsg, plan, string(agentType), startedAt)

	if walErr := taskWAL.Append(models.WalEntry{
		Timestamp:      time.Now(),
		TaskID:         taskID,
		PreviousStatus: models.PlanInProgress,
		NewStatus:      plan.Status,
		AssignedAgent:  string(agentRole),
		ErrorMessage:   errMsg,
	}); walErr != nil {
		log.Warn("wal append failed: %v", walErr)
	}

	if saveErr := plans.Save(plan); saveErr != nil {
		return saveErr
	}
	if checkErr := taskWAL.Checkpoint(); checkErr != nil {
		log.Warn("wal checkpoint failed: %v", checkErr)
	}

	for _, d := range deferred {
		fmt.Fprintf(cc.OutOrStdout(), "deferred step %d: %s\n", d.Index, d.Reason)
	}
	fmt.Fprintf(cc.OutOrStdout(), "plan %s: %s (%d/%d steps)\n", plan.TaskID, plan.Status, plan.CompletedStepsCount(), len(plan.Steps))
	return runErr
}

// roleFor maps an agenttype.Type to the models.AgentRole key used by a
// project's per-role configuration.
func roleFor(t agenttype.Type) models.AgentRole {
	switch t {
	case agenttype.Wyrm:
		return models.RoleWyrm
	case agenttype.Wyvern:
		return models.RoleWyvern
	case agenttype.Drake:
		return models.RoleDrake
	case agenttype.KoboldPlanner:
		return models.RoleKoboldPlanner
	default:
		return models.RoleKobold
	}
}

// finalizePlanStatus derives a plan's terminal status from its steps: any
// Failed step fails the plan; otherwise it completes once every step is
// Completed or Skipped.
func finalizePlanStatus(plan *models.Plan) {
	allDone := true
	anyFailed := false
	for _, s := range plan.Steps {
		if s.Status == models.StepFailed {
			anyFailed = true
		}
		if s.Status != models.StepCompleted && s.Status != models.StepSkipped {
			allDone = false
		}
	}
	switch {
	case anyFailed:
		plan.Status = models.PlanFailed
	case allDone:
		plan.Status = models.PlanCompleted
	default:
		plan.Status = models.PlanInProgress
	}
}
