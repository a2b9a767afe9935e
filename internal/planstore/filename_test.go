package planstore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestGeneratePlanFilenameScenarioS6 matches spec scenario S6 exactly.
func TestGeneratePlanFilenameScenarioS6(t *testing.T) {
	name := GeneratePlanFilename("[frontend-1] Implement: user authentication flow!", "a1b2c3d4e5")
	assert.True(t, strings.HasPrefix(name, "frontend-1-user-authentication-flow-"), name)

	descPortion := name[:len(name)-5] // trim "-" + 4-char hash
	assert.LessOrEqual(t, len(descPortion), maxDescriptionChars)
}

func TestGeneratePlanFilenameIsPure(t *testing.T) {
	a := GeneratePlanFilename("Build the login page", "task-123")
	b := GeneratePlanFilename("Build the login page", "task-123")
	assert.Equal(t, a, b)
}

func TestGeneratePlanFilenameEmptyDescriptionFallsBackToHash(t *testing.T) {
	name := GeneratePlanFilename("!!!???", "abc123")
	assert.Len(t, name, 4)
}

func TestGeneratePlanFilenameTruncatesDescription(t *testing.T) {
	long := "this is a very long task description that definitely exceeds forty characters of sanitized text"
	name := GeneratePlanFilename(long, "task-1")
	// name = stem + "-" + hash(4); stem must be <= maxDescriptionChars
	stem := name[:len(name)-5]
	assert.LessOrEqual(t, len(stem), maxDescriptionChars)
}
