package commands

import (
	"fmt"
	"strings"

	"github.com/augmented-finance/augmented-cli/internal/invoke"
)

// Lines renders a result as one block per invocation.
func (r Result) Lines() []string {
	var lines []string
	for _, o := range r.Outcomes {
		lines = append(lines, outcomeLines(o)...)
	}
	return lines
}

func outcomeLines(o invoke.Outcome) []string {
	args := make([]string, 0, len(o.Args))
	for _, a := range o.Args {
		args = append(args, fmt.Sprint(a))
	}
	head := fmt.Sprintf("%s@%s.%s(%s)", o.TargetType, o.Target, o.Function, strings.Join(args, ", "))
	if len(o.Roles) > 0 {
		head += " with " + strings.Join(o.Roles, "|")
	}
	lines := []string{head}
	switch {
	case o.Encoded != nil:
		lines = append(lines, "  to:   "+o.Encoded.To, "  data: "+o.Encoded.Data)
	case o.Static:
		for i, v := range o.Values {
			lines = append(lines, fmt.Sprintf("  [%d] %v", i, v))
		}
	}
	for _, step := range o.Steps {
		line := fmt.Sprintf("  %s %s", step.Status, step.Name)
		if step.TxHash != "" {
			line += " " + step.TxHash
		}
		if step.Error != "" {
			line += ": " + step.Error
		}
		lines = append(lines, line)
	}
	return lines
}
