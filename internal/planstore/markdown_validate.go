package planstore

import (
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// requiredSections are the level-2 headings RenderMarkdown must always
// produce, in spec §6's fixed section order.
var requiredSections = []string{"Task Description", "Steps Overview", "Step Details", "Execution Log"}

// validateRenderedMarkdown parses md with goldmark and confirms every
// required section heading is present, the inverse check of the teacher's
// internal/parser/markdown.go (which walks a goldmark AST to *extract*
// `## ` task sections; here we walk one to *confirm* the renderer produced
// them) so a future RenderMarkdown change can't silently drop a section.
func validateRenderedMarkdown(md string) error {
	source := []byte(md)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	seen := make(map[string]bool, len(requiredSections))
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok || heading.Level != 2 {
			return ast.WalkContinue, nil
		}
		seen[headingText(heading, source)] = true
		return ast.WalkContinue, nil
	})
	if err != nil {
		return fmt.Errorf("parse rendered markdown: %w", err)
	}

	for _, want := range requiredSections {
		if !seen[want] {
			return fmt.Errorf("rendered markdown missing required section %q", want)
		}
	}
	return nil
}

func headingText(n ast.Node, source []byte) string {
	var out []byte
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			out = append(out, t.Segment.Value(source)...)
		}
	}
	return string(out)
}
