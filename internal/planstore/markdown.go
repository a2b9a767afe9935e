package planstore

import (
	"fmt"
	"strings"

	"github.com/harrison/kobold/internal/models"
)

// statusEmoji maps each PlanStatus to a distinct icon, per spec §6 ("MUST
// differ across status values and MUST be consistent within one store").
var statusEmoji = map[models.PlanStatus]string{
	models.PlanPlanning:   "📝",
	models.PlanReady:      "🟢",
	models.PlanInProgress: "🔄",
	models.PlanCompleted:  "✅",
	models.PlanFailed:     "❌",
}

var stepStatusIcon = map[models.StepStatus]string{
	models.StepPending:    "⬜",
	models.StepInProgress: "🔄",
	models.StepCompleted:  "✅",
	models.StepSkipped:    "⏭️",
	models.StepFailed:     "❌",
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n])
}

// RenderMarkdown produces the human-readable plan document, following the
// exact section order required by spec §6, inverted from the teacher's
// goldmark-based task-section parser (internal/parser/markdown.go) into a
// renderer.
func RenderMarkdown(plan *models.Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Implementation Plan: %s\n\n", truncateRunes(plan.TaskDescription, 60))

	progress := plan.ProgressPercentage()
	fmt.Fprintf(&b, "- **Task ID**: %s\n", plan.TaskID)
	fmt.Fprintf(&b, "- **Project ID**: %s\n", plan.ProjectID)
	fmt.Fprintf(&b, "- **Plan File**: %s\n", plan.PlanFilename)
	fmt.Fprintf(&b, "- **Created**: %s\n", plan.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "- **Updated**: %s\n", plan.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "- **Status**: %s %s\n", statusEmoji[plan.Status], plan.Status)
	fmt.Fprintf(&b, "- **Progress**: %d/%d (%.0f%%)\n\n", plan.CompletedStepsCount(), len(plan.Steps), progress)

	if plan.ErrorMessage != "" {
		fmt.Fprintf(&b, "> ⚠️ %s\n\n", plan.ErrorMessage)
	}

	b.WriteString("## Task Description\n\n")
	fmt.Fprintf(&b, "%s\n\n", plan.TaskDescription)

	b.WriteString("## Steps Overview\n\n")
	b.WriteString("| # | Step | Status | Files |\n")
	b.WriteString("|---|------|--------|-------|\n")
	for _, step := range plan.Steps {
		fmt.Fprintf(&b, "| %d | %s | %s %s | %s |\n",
			step.Index, step.Title, stepStatusIcon[step.Status], step.Status, filesSummary(step))
	}
	b.WriteString("\n")

	b.WriteString("## Step Details\n\n")
	for _, step := range plan.Steps {
		fmt.Fprintf(&b, "### %d. %s %s\n\n", step.Index, stepStatusIcon[step.Status], step.Title)
		if step.StartedAt != nil {
			fmt.Fprintf(&b, "- **Started**: %s\n", step.StartedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		if step.CompletedAt != nil {
			fmt.Fprintf(&b, "- **Completed**: %s\n", step.CompletedAt.Format("2006-01-02T15:04:05Z07:00"))
		}
		if len(step.FilesToCreate) > 0 {
			fmt.Fprintf(&b, "- **Creates**: %s\n", strings.Join(step.FilesToCreate, ", "))
		}
		if len(step.FilesToModify) > 0 {
			fmt.Fprintf(&b, "- **Modifies**: %s\n", strings.Join(step.FilesToModify, ", "))
		}
		fmt.Fprintf(&b, "\n%s\n\n", step.Description)
		if step.Output != "" {
			b.WriteString("```\n")
			b.WriteString(step.Output)
			b.WriteString("\n```\n\n")
		}
		b.WriteString("---\n\n")
	}

	b.WriteString("## Execution Log\n\n")
	log := plan.ExecutionLog
	const maxLogEntries = 20
	if len(log) > maxLogEntries {
		fmt.Fprintf(&b, "_%d earlier entries omitted_\n\n", len(log)-maxLogEntries)
		log = log[len(log)-maxLogEntries:]
	}
	for _, entry := range log {
		fmt.Fprintf(&b, "- `%s` %s\n", entry.Timestamp.Format("2006-01-02T15:04:05Z07:00"), entry.Message)
	}

	return b.String()
}

// filesSummary renders the Steps Overview table's Files column: up to 3
// paths prefixed "+" (create) or "~" (modify), suffixed "(+K)" for the
// remainder.
func filesSummary(step models.Step) string {
	type tagged struct {
		path   string
		prefix string
	}
	var all []tagged
	for _, f := range step.FilesToCreate {
		all = append(all, tagged{f, "+"})
	}
	for _, f := range step.FilesToModify {
		all = append(all, tagged{f, "~"})
	}
	if len(all) == 0 {
		return ""
	}

	const shown = 3
	n := len(all)
	if n > shown {
		n = shown
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = all[i].prefix + all[i].path
	}
	out := strings.Join(parts, ", ")
	if rest := len(all) - shown; rest > 0 {
		out += fmt.Sprintf(" (+%d)", rest)
	}
	return out
}
