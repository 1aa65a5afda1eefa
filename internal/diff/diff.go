// Package diff renders unified diffs between two versions of a method body.
// It uses github.com/pmezard/go-difflib/difflib for the hunks.
package diff

import (
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk
const DefaultContext = 3

// Unified produces a unified patch turning a into b. An empty string means
// the two bodies are identical.
func Unified(aName, bName, a, b string, context int) (string, error) {
	if a == b {
		return "", nil
	}
	if context <= 0 {
		context = DefaultContext
	}

	u := difflib.UnifiedDiff{
		A:        splitLines(a),
		B:        splitLines(b),
		FromFile: aName,
		ToFile:   bName,
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(u)
}

// splitLines splits s into lines that each keep their newline, which is
// the form difflib expects
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	lines := strings.SplitAfter(s, "\n")
	return lines[:len(lines)-1]
}
