package main

import (
	"fmt"
	"strings"

	"github.com/CostaMateus/bracketsmith/internal/observ"
)

// timingsSummary renders a phase report in the same shape as observ.Timer's
// own summary, so --timings output stays stable across entry points.
func timingsSummary(report *observ.Report) string {
	var b strings.Builder
	b.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&b, "  %-20s %7.2f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			b.WriteString("  // " + p.Note)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "  %-20s %7.2f ms\n", "total", report.TotalMS)
	return b.String()
}
