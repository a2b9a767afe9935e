package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBannerContainsTitleAndLinesWithinBorders(t *testing.T) {
	var buf bytes.Buffer
	Banner(&buf, "demo project", []string{"status: in_progress", "steps: 2/5"})

	out := buf.String()
	assert.Contains(t, out, "demo project")
	assert.Contains(t, out, "status: in_progress")
	assert.Contains(t, out, "steps: 2/5")
	assert.True(t, strings.HasPrefix(out, boxTopLeft))
}

func TestBoxLineTruncatesOverlongContent(t *testing.T) {
	long := strings.Repeat("x", 200)
	line := boxLine(long, 80)
	assert.LessOrEqual(t, visibleWidth(line), 80)
	assert.Contains(t, line, "...")
}
