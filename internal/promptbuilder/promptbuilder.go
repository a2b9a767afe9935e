// Package promptbuilder assembles role-specific system prompts from
// composable fragments instead of a template-inheritance chain, per the
// Design Notes' PromptBuilder strategy. It is grounded on the teacher's
// EnhancePromptForClaude4/XMLSection fragment-composition style in
// internal/agent/invoker.go and internal/agent/xml_format.go.
package promptbuilder

import (
	"fmt"
	"strings"
)

// claude4Enhancements carries the same context-awareness / thinking /
// anti-hallucination / parallel-tool-call guidance the teacher prepends to
// every agent prompt.
const claude4Enhancements = `<context_awareness>
Your context window will be automatically managed. Do not stop tasks early
due to token budget concerns. Complete tasks fully and persist progress.
</context_awareness>

<thinking_guidance>
After receiving tool results, carefully reflect on their quality and
determine optimal next steps before proceeding.
</thinking_guidance>

<anti_hallucination>
NEVER speculate about code you have not read. Use a read tool to examine
files before making claims about them.
</anti_hallucination>

<parallel_tool_calls>
When multiple independent tool operations are needed, execute them in
parallel rather than sequentially. Only serialize operations with
dependencies.
</parallel_tool_calls>
`

// XMLTag wraps content in a single-line XML tag.
func XMLTag(name, content string) string {
	return fmt.Sprintf("<%s>%s</%s>", name, content, name)
}

// XMLSection wraps content in a multi-line XML tag with trimmed inner text.
func XMLSection(name, content string) string {
	return fmt.Sprintf("<%s>\n%s\n</%s>", name, strings.TrimSpace(content), name)
}

// XMLList renders a named list of <item> elements.
func XMLList(name string, items []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<%s>\n", name)
	for _, item := range items {
		fmt.Fprintf(&sb, "<item>%s</item>\n", item)
	}
	fmt.Fprintf(&sb, "</%s>", name)
	return sb.String()
}

// depthGuidance maps an AgentOptions.ModelDepth value to additional prompt
// text adjusting how exhaustively the agent should work.
var depthGuidance = map[string]string{
	"shallow": "Favor the fastest correct approach. Do not explore alternatives beyond the first viable one.",
	"deep":    "Explore the problem thoroughly before acting: read surrounding code, consider edge cases, and verify assumptions.",
}

// Builder assembles a system prompt from composable fragments: file-ops
// guidance, common best practices, depth guidance, and role-specific text.
// There is no inheritance chain; each fragment is appended independently.
type Builder struct {
	fragments []string
}

// New starts an empty Builder.
func New() *Builder {
	return &Builder{}
}

// WithClaude4Enhancements adds the standard context/thinking/
// anti-hallucination/parallel-tool-call guidance as the next fragment.
func (b *Builder) WithClaude4Enhancements() *Builder {
	b.fragments = append(b.fragments, strings.TrimSpace(claude4Enhancements))
	return b
}

// WithRoleText adds role-specific instructions (e.g. a Wyrm/Wyvern/Drake
// prompt body).
func (b *Builder) WithRoleText(text string) *Builder {
	if strings.TrimSpace(text) == "" {
		return b
	}
	b.fragments = append(b.fragments, strings.TrimSpace(text))
	return b
}

// WithFileOpsGuidance adds guidance about file creation/modification
// discipline.
func (b *Builder) WithFileOpsGuidance() *Builder {
	b.fragments = append(b.fragments, strings.TrimSpace(XMLSection("file_ops_guidance",
		`Only create or modify files declared in the current step's file sets.
Read a file before modifying it. Never guess at file contents.`)))
	return b
}

// WithBestPractices adds a list of best-practice bullet lines, typically
// sourced from SharedPlanningContext.GetBestPractices.
func (b *Builder) WithBestPractices(practices []string) *Builder {
	if len(practices) == 0 {
		return b
	}
	b.fragments = append(b.fragments, XMLList("best_practices", practices))
	return b
}

// WithDepthGuidance adds guidance text for the given AgentOptions
// ModelDepth value; unrecognized or empty depths are a no-op.
func (b *Builder) WithDepthGuidance(depth string) *Builder {
	if text, ok := depthGuidance[strings.ToLower(strings.TrimSpace(depth))]; ok {
		b.fragments = append(b.fragments, XMLSection("depth_guidance", text))
	}
	return b
}

// WithResponseFormat adds the trailing JSON-only response-format
// instruction, grounded on PrepareAgentPrompt's response_format section.
func (b *Builder) WithResponseFormat(schemaDescription string) *Builder {
	b.fragments = append(b.fragments, XMLSection("response_format",
		"Respond with ONLY valid JSON matching this schema:\n"+schemaDescription))
	return b
}

// Build joins every fragment, in the order added, separated by a blank
// line.
func (b *Builder) Build() string {
	return strings.Join(b.fragments, "\n\n")
}
