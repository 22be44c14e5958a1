package validate

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// SyntaxError locates one ERROR or MISSING node in the parse tree.
type SyntaxError struct {
	Line    int // 1-based
	Column  int // 0-based
	Message string
}

func (e SyntaxError) String() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// maxSyntaxErrors bounds collection on heavily malformed input.
const maxSyntaxErrors = 20

// CheckSyntax parses code with the tree-sitter Python grammar and returns the
// syntax errors it found, in source order.
func CheckSyntax(ctx context.Context, code string) ([]SyntaxError, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(python.GetLanguage())

	src := []byte(code)
	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if !root.HasError() {
		return nil, nil
	}
	var found []SyntaxError
	collectSyntaxErrors(root, src, &found, 0)
	if len(found) == 0 {
		// HasError without a concrete node: report the root span.
		found = append(found, SyntaxError{Line: 1, Column: 0, Message: "invalid syntax"})
	}
	return found, nil
}

func collectSyntaxErrors(node *sitter.Node, src []byte, found *[]SyntaxError, depth int) {
	if node == nil || depth > 1000 || len(*found) >= maxSyntaxErrors {
		return
	}

	if node.IsError() || node.IsMissing() {
		start := node.StartPoint()
		msg := "invalid syntax"
		if node.IsMissing() {
			msg = fmt.Sprintf("missing %q", node.Type())
		} else if text := strings.TrimSpace(node.Content(src)); text != "" {
			msg = fmt.Sprintf("unexpected %q", truncate(firstLine(text), 40))
		}
		*found = append(*found, SyntaxError{
			Line:    int(start.Row) + 1,
			Column:  int(start.Column),
			Message: msg,
		})
		if node.IsError() {
			// Children of an ERROR node rarely add information.
			return
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		collectSyntaxErrors(node.Child(i), src, found, depth+1)
	}
}

// syntaxMessage renders the single error reported for a failed parse.
func syntaxMessage(errs []SyntaxError) string {
	msg := "Syntax error: " + errs[0].String()
	if len(errs) > 1 {
		msg += fmt.Sprintf(" (and %d more)", len(errs)-1)
	}
	return msg
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
