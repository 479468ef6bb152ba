package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/tandem/pkg/domain"
)

// CheckResult is the outcome of evaluating one document.
type CheckResult struct {
	Name  string
	Nodes int
	Err   error
}

// CheckReport formats results as a markdown table for NewRenderer.
func CheckReport(results []CheckResult) string {
	var sb strings.Builder
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}

	sb.WriteString("# Check\n\n")
	fmt.Fprintf(&sb, "%d documents, %d failed.\n\n", len(results), failed)
	sb.WriteString("| Document | Status | Detail |\n")
	sb.WriteString("| --- | --- | --- |\n")
	for _, r := range results {
		if r.Err == nil {
			fmt.Fprintf(&sb, "| `%s` | ok | %d nodes |\n", r.Name, r.Nodes)
			continue
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", r.Name, kindOf(r.Err), escapeCell(detail(r.Err)))
	}
	return sb.String()
}

func kindOf(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Kind != nil {
		return de.Kind.Error()
	}
	return "error"
}

func detail(err error) string {
	var de *domain.Error
	if errors.As(err, &de) && de.Message != "" {
		if de.Location != nil {
			return fmt.Sprintf("%s (at %d)", de.Message, de.Location.Start)
		}
		return de.Message
	}
	return err.Error()
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
