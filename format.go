package kcompat

import (
	"fmt"
	"strings"
)

// String returns a human-readable summary of a run.
func (r *RunReport) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Source tree: %s\n", r.Root)
	fmt.Fprintf(&b, "Build config: %s\n", r.Config)
	b.WriteString("\n")

	b.WriteString("Groups:\n")
	for _, g := range r.Groups {
		writeGroup(&b, g)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "Macros emitted: %d\n", r.Emitted)

	return b.String()
}

func writeGroup(b *strings.Builder, g GroupReport) {
	if g.Skipped {
		fmt.Fprintf(b, "  %s: skipped (gate not enabled)\n", g.Name)
		return
	}
	fmt.Fprintf(b, "  %s: %d/%d entries emitted\n", g.Name, g.Emitted, g.Entries)
}
