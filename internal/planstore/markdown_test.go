package planstore

import (
	"strings"
	"testing"
	"time"

	"github.com/harrison/kobold/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdownSectionOrder(t *testing.T) {
	plan := samplePlan()
	plan.PlanFilename = "stem-abcd"
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = time.Now()
	plan.ErrorMessage = "step 2 failed"
	md := RenderMarkdown(plan)

	order := []string{
		"# Implementation Plan:",
		"## Task Description",
		"## Steps Overview",
		"## Step Details",
		"## Execution Log",
	}
	lastIdx := -1
	for _, marker := range order {
		idx := strings.Index(md, marker)
		assert.Greater(t, idx, lastIdx, "expected %q after previous section", marker)
		lastIdx = idx
	}
	assert.Contains(t, md, "step 2 failed")
}

func TestRenderMarkdownTruncatesTitleTo60Chars(t *testing.T) {
	plan := samplePlan()
	plan.TaskDescription = strings.Repeat("x", 100)
	md := RenderMarkdown(plan)
	titleLine := strings.Split(md, "\n")[0]
	assert.LessOrEqual(t, len(titleLine)-len("# Implementation Plan: "), 60)
}

func TestRenderMarkdownExecutionLogCapsAt20(t *testing.T) {
	plan := samplePlan()
	for i := 0; i < 25; i++ {
		plan.AppendLog("step")
	}
	md := RenderMarkdown(plan)
	assert.Contains(t, md, "5 earlier entries omitted")
}

func TestFilesSummaryCapsAtThree(t *testing.T) {
	step := models.Step{FilesToCreate: []string{"a", "b", "c", "d"}}
	summary := filesSummary(step)
	assert.Contains(t, summary, "(+1)")
}
