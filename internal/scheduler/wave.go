package scheduler

import (
	"context"
	"sync"

	"github.com/harrison/kobold/internal/agenttype"
	"github.com/harrison/kobold/internal/depgraph"
	"github.com/harrison/kobold/internal/models"
)

// StepExecutor runs one step to completion (or failure) and returns the
// updated step.
type StepExecutor interface {
	ExecuteStep(ctx context.Context, projectID string, step models.Step) (models.Step, error)
}

// stepOutcome pairs a completed step index with its execution result,
// mirroring the teacher's taskExecutionResult record for a per-task
// result channel.
type stepOutcome struct {
	index int
	step  models.Step
	err   error
}

// Deferred records one step that could not be admitted this pass.
type Deferred struct {
	Index  int
	Reason AdmitReason
}

// RunPlan executes plan.Steps wave by wave (per the Step Dependency
// Analyzer's grouping), dispatching each wave's admissible steps
// concurrently with a semaphore bounded by maxConcurrency. A wave only
// begins once every step in every earlier wave is Completed or Skipped.
// Steps that fail admission (capacity, circuit, file-in-use) within a wave,
// and the unfinished steps of every wave after an incomplete one
// (dependency_wave), are returned as Deferred rather than executed;
// RunPlan does not retry them itself — callers re-invoke RunPlan (or a
// narrower step set) once the blocking condition clears.
func RunPlan(ctx context.Context, s *Scheduler, projectID string, role agenttype.Type, provider string, plan *models.Plan, executor StepExecutor, maxConcurrency int) ([]Deferred, error) {
	groups := depgraph.CalculateWaves(plan.Steps)
	var allDeferred []Deferred

	priorComplete := true
	for _, group := range groups {
		if !priorComplete {
			for _, idx := range group {
				if st := plan.Steps[idx].Status; st != models.StepCompleted && st != models.StepSkipped {
					allDeferred = append(allDeferred, Deferred{Index: idx, Reason: ReasonDependencyWave})
				}
			}
			continue
		}
		deferred, err := runWave(ctx, s, projectID, role, provider, plan, executor, group, maxConcurrency)
		allDeferred = append(allDeferred, deferred...)
		if err != nil {
			return allDeferred, err
		}
		for _, idx := range group {
			if st := plan.Steps[idx].Status; st != models.StepCompleted && st != models.StepSkipped {
				priorComplete = false
			}
		}
	}
	return allDeferred, nil
}

func runWave(ctx context.Context, s *Scheduler, projectID string, role agenttype.Type, provider string, plan *models.Plan, executor StepExecutor, group []int, maxConcurrency int) ([]Deferred, error) {
	var toRun []int
	var deferred []Deferred

	for _, idx := range group {
		step := plan.Steps[idx]
		if step.Status == models.StepCompleted || step.Status == models.StepSkipped {
			continue
		}
		reason := s.AdmitStep(projectID, role, provider, true, step)
		if reason != AdmitOK {
			deferred = append(deferred, Deferred{Index: idx, Reason: reason})
			continue
		}
		toRun = append(toRun, idx)
	}

	if len(toRun) == 0 {
		return deferred, nil
	}

	if maxConcurrency <= 0 || maxConcurrency > len(toRun) {
		maxConcurrency = len(toRun)
	}

	semaphore := make(chan struct{}, maxConcurrency)
	resultsCh := make(chan stepOutcome, len(toRun))
	var wg sync.WaitGroup

	for _, idx := range toRun {
		select {
		case <-ctx.Done():
			return deferred, ctx.Err()
		case semaphore <- struct{}{}:
		}

		s.Acquire(projectID, role)
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			defer func() { <-semaphore }()
			defer s.Release(projectID, role)

			updated, err := executor.ExecuteStep(ctx, projectID, plan.Steps[idx])
			select {
			case resultsCh <- stepOutcome{index: idx, step: updated, err: err}:
			case <-ctx.Done():
			}
		}(idx)
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	var firstErr error
	for outcome := range resultsCh {
		plan.Steps[outcome.index] = outcome.step
		if outcome.err != nil && firstErr == nil {
			firstErr = outcome.err
		}
	}
	return deferred, firstErr
}
