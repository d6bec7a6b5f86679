// Package tui renders kernsweep's operator-facing output: apt-style
// analysis listings, removal progress, and summaries, colored when a
// terminal is attached.
package tui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/kernsweep/kernsweep/pkg/remover"
)

// Level controls output verbosity.
type Level int

const (
	LevelQuiet Level = iota
	LevelNormal
	LevelVerbose
)

// Reporter writes formatted output for sweep operations. Quiet level
// suppresses everything; errors still reach the caller and the log.
type Reporter struct {
	Out   io.Writer
	Level Level
}

// NewReporter returns a stdout reporter at the given level.
func NewReporter(level Level) *Reporter {
	return &Reporter{Out: os.Stdout, Level: level}
}

func (r *Reporter) quiet() bool {
	return r.Level == LevelQuiet
}

// Verbose reports whether step-by-step narration is wanted.
func (r *Reporter) Verbose() bool {
	return r.Level == LevelVerbose
}

// Step narrates one workflow step in verbose mode.
func (r *Reporter) Step(format string, args ...any) {
	if !r.Verbose() {
		return
	}
	fmt.Fprintf(r.Out, format+"\n", args...)
}

// Notice prints a single informational line unless quiet.
func (r *Reporter) Notice(format string, args ...any) {
	if r.quiet() {
		return
	}
	fmt.Fprintf(r.Out, format+"\n", args...)
}

// Analysis prints the analysis outcome.
func (r *Reporter) Analysis(view AnalysisView) {
	if r.quiet() {
		return
	}
	fmt.Fprint(r.Out, RenderAnalysis(view))
}

// Command prints the removal command line.
func (r *Reporter) Command(argv []string, dryRun bool) {
	if r.quiet() {
		return
	}
	fmt.Fprint(r.Out, RenderCommand(argv, dryRun))
}

// Removal prints the outcome for a single package.
func (r *Reporter) Removal(res remover.Removal) {
	if r.quiet() {
		return
	}
	switch res.Status {
	case remover.StatusSuccess:
		fmt.Fprintf(r.Out, "Removing %s ...\n", res.Package)
		if r.Verbose() {
			fmt.Fprintf(r.Out, "  [✓] %s removed successfully\n", res.Package)
		}
	case remover.StatusFailed:
		fmt.Fprintf(r.Out, "Failed to remove %s\n", res.Package)
	case remover.StatusSkipped:
		fmt.Fprintf(r.Out, "Skipped %s\n", res.Package)
	}
}

// Summary prints final removal statistics.
func (r *Reporter) Summary(removed, failed int) {
	if r.quiet() {
		return
	}
	fmt.Fprint(r.Out, RenderSummary(removed, failed))
}

// RebootNotice prints the pending-restart warning.
func (r *Reporter) RebootNotice() {
	if r.quiet() {
		return
	}
	fmt.Fprint(r.Out, RenderRebootNotice())
}

// CleanSystem prints the nothing-to-do notice.
func (r *Reporter) CleanSystem() {
	if r.quiet() {
		return
	}
	fmt.Fprint(r.Out, RenderCleanSystem())
}

// isTerminal checks if stdout is a terminal.
func isTerminal() bool {
	// We print UI output to both stdout and stderr depending on call site.
	// Prefer enabling styles when either stream is a TTY to avoid losing colors
	// when e.g. stdout is redirected but stderr is still interactive.
	return term.IsTerminal(int(os.Stdout.Fd())) || term.IsTerminal(int(os.Stderr.Fd()))
}
