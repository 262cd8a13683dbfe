package kcompat

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// markerHeader must exist under the source root for the tree to be
// treated as a kernel source tree at all. Its absence means a
// misconfigured or empty root, which is fatal with a distinct exit
// code.
const markerHeader = "include/linux/netdevice.h"

// Runner executes the catalog against one source tree. The run is a
// linear state machine with no retries: validate root, validate config
// input, run the (gated) catalog groups, finalize output. Output is
// buffered and written all-or-nothing, so an aborted run never leaves a
// half-generated macro file behind.
type Runner struct {
	// Root is the kernel source tree to scan.
	Root SourceRoot
	// ConfigPath is the build configuration (.config) whose coarse
	// flags gate catalog groups.
	ConfigPath string
	// OutPath, when set, captures the generated header to a file and
	// echoes it line-numbered to Diag afterwards for operator
	// visibility. When empty, output goes to Out.
	OutPath string
	// Out is the default output stream (stdout when nil).
	Out io.Writer
	// Diag is the diagnostics channel (stderr when nil).
	Diag io.Writer
	// Groups overrides the built-in [Catalog] (tests only).
	Groups []Group
}

// GroupReport records one group's outcome for the run summary.
type GroupReport struct {
	Name    string
	Skipped bool
	Entries int
	Emitted int
}

// RunReport summarizes a completed run.
type RunReport struct {
	Root    string
	Config  string
	Groups  []GroupReport
	Emitted int
}

// Run validates inputs and evaluates every catalog entry in order.
// Fatal failures come back as *[RunError] (carrying the documented exit
// code), *[CatalogError], or *[ScanError]; the engine never retries and
// never continues past an internal failure, since a silently incomplete
// macro set compiles but misbehaves at runtime.
func (r *Runner) Run() (*RunReport, error) {
	out := r.Out
	if out == nil {
		out = os.Stdout
	}
	diag := r.Diag
	if diag == nil {
		diag = os.Stderr
	}

	marker := r.Root.Join(markerHeader)
	if fi, err := os.Stat(marker); err != nil || !fi.Mode().IsRegular() {
		return nil, &RunError{
			Code:   ExitBadSource,
			Path:   marker,
			Reason: "source tree not found or not a kernel tree (marker header missing)",
			Err:    err,
		}
	}

	if _, err := os.Stat(r.ConfigPath); err != nil {
		return nil, &RunError{
			Code:   ExitNoConfig,
			Path:   r.ConfigPath,
			Reason: "build configuration missing",
			Err:    err,
		}
	}
	cfg, err := ReadBuildConfig(r.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("parse build configuration %s: %w", r.ConfigPath, err)
	}

	groups := r.Groups
	if groups == nil {
		groups = Catalog()
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "/* kcompat feature macros, do not edit */\n")
	fmt.Fprintf(&buf, "/* source tree: %s */\n", r.Root)
	fmt.Fprintf(&buf, "/* generated on host kernel %s */\n", hostKernel())

	report := &RunReport{Root: string(r.Root), Config: r.ConfigPath}
	for _, g := range groups {
		gr := GroupReport{Name: g.Name, Entries: len(g.Entries)}
		if g.Gate != "" && !cfg.IsSet(g.Gate) {
			gr.Skipped = true
			report.Groups = append(report.Groups, gr)
			continue
		}

		regions, err := extractRegions(g, r.Root)
		if err != nil {
			return nil, err
		}

		for _, e := range g.Entries {
			q, err := ParseQuery(e.Query)
			if err != nil {
				return nil, err
			}
			if e.Region != "" {
				q = q.WithLiteral(regions[e.Region])
			}

			emitted, err := Gen(q, r.Root, &buf)
			if err != nil {
				return nil, err
			}
			if emitted {
				gr.Emitted++
				report.Emitted++
			}
		}
		report.Groups = append(report.Groups, gr)
	}

	if r.OutPath == "" {
		if _, err := out.Write(buf.Bytes()); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
		return report, nil
	}

	if err := os.WriteFile(r.OutPath, buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("write %s: %w", r.OutPath, err)
	}
	echoNumbered(diag, r.OutPath, buf.Bytes())
	return report, nil
}

// extractRegions pulls each region's struct span out of the first
// candidate file containing it. A region that exists nowhere yields
// empty text: entries querying it then see no declarations, which is
// the correct absent verdict, not an error.
func extractRegions(g Group, root SourceRoot) (map[string]string, error) {
	if len(g.Regions) == 0 {
		return nil, nil
	}
	regions := make(map[string]string, len(g.Regions))
	for _, reg := range g.Regions {
		refs := make([]FileRef, 0, len(reg.Files))
		for _, p := range reg.Files {
			refs = append(refs, FileRef{Path: p})
		}

		var text string
		for _, ref := range root.Resolve(refs) {
			src, err := root.ReadSource(ref)
			if err != nil {
				return nil, &ScanError{Path: ref.Name(), Macro: "region " + reg.Name, Err: err}
			}
			if span := FindStruct(reg.Struct, src); span != nil {
				text = span.Text
				break
			}
		}
		regions[reg.Name] = text
	}
	return regions, nil
}

// echoNumbered mirrors captured file output to the diagnostics channel
// with line numbers. Observational only; it never affects the run
// outcome.
func echoNumbered(diag io.Writer, path string, content []byte) {
	fmt.Fprintf(diag, "--- %s ---\n", path)
	n := 1
	for line := range bytes.Lines(content) {
		fmt.Fprintf(diag, "%4d  %s", n, line)
		n++
	}
}

// hostKernel returns the generating host's kernel release for the
// output banner. Purely informational.
func hostKernel() string {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "unknown"
	}
	return unix.ByteSliceToString(uname.Release[:])
}
