// Package sweep orchestrates the kernel cleanup workflow: detect,
// analyze, report, and optionally remove obsolete kernel packages.
package sweep

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/kernsweep/kernsweep/pkg/detect"
	"github.com/kernsweep/kernsweep/pkg/kernel"
	"github.com/kernsweep/kernsweep/pkg/remover"
	"github.com/kernsweep/kernsweep/pkg/tui"
)

// ErrRebootRequired reports that the sweep succeeded but the system
// must restart before it runs the retained kernel. Callers map it to
// a distinct exit code rather than treating it as a failure.
var ErrRebootRequired = errors.New("reboot required to use the updated kernel")

// for testing.
var (
	hostOS           = detect.HostOS
	runningKernel    = detect.RunningKernel
	installedKernels = detect.InstalledKernels
	installedHeaders = detect.InstalledHeaders
	rebootNeeded     = detect.NeedsReboot
	isRoot           = remover.IsRoot
	lookPath         = exec.LookPath
	newReporter      = tui.NewReporter
	confirmInput     io.Reader = os.Stdin

	removePackages = func(ctx context.Context, packages []string, quiet bool) ([]remover.Removal, error) {
		rem := &remover.Remover{Quiet: quiet}
		return rem.Remove(ctx, packages)
	}
)

// Options configures a sweep run.
type Options struct {
	// Remove executes the removal; without it the run only reports.
	Remove bool
	// DryRun shows the removal command without executing it.
	DryRun bool
	// AssumeYes skips the confirmation prompt before removal.
	AssumeYes bool
	// JSON emits the analysis as a machine-readable document and
	// stops before any removal.
	JSON bool
	// Quiet suppresses all non-essential output.
	Quiet bool
	// Verbose narrates each workflow step.
	Verbose bool
	// Timeout bounds the whole run, detection included.
	Timeout time.Duration
}

// Run executes the sweep workflow for the given options.
func Run(ctx context.Context, opts *Options) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	ch := make(chan error, 1)
	go func() {
		ch <- sweepWithContext(timeoutCtx, opts)
		close(ch)
	}()

	select {
	case err := <-ch:
		if err != nil && !errors.Is(err, ErrRebootRequired) {
			fmt.Fprintln(os.Stderr, tui.RenderError(errorInfo(err)))
		}
		return err
	case <-timeoutCtx.Done():
		<-time.After(1 * time.Second)

		// Check if this was a cancellation (Ctrl+C) or actual timeout
		if ctx.Err() == context.Canceled {
			fmt.Fprintln(os.Stderr, tui.RenderError(tui.ErrorInfo{
				Title:   "Operation Canceled",
				Message: "Sweep was canceled by user",
			}))
			return context.Canceled
		}

		err := errors.Errorf("sweep exceeded timeout %v", opts.Timeout)
		fmt.Fprintln(os.Stderr, tui.RenderError(tui.ErrorInfo{
			Title:   "Operation Timed Out",
			Message: fmt.Sprintf("Sweep exceeded timeout of %v", opts.Timeout),
			Hint:    "Try increasing timeout with --timeout flag (e.g., --timeout 10m)",
		}))
		return err
	}
}

// sweepWithContext runs the main workflow: preflight, detection,
// analysis, reporting, and removal.
func sweepWithContext(ctx context.Context, opts *Options) error {
	if err := Preflight(opts.Remove && !opts.DryRun); err != nil {
		return err
	}

	if info, err := hostOS(ctx); err != nil {
		log.Debugf("could not identify host distribution: %v", err)
	} else {
		log.Debugf("host distribution: %s %s", info.Type, info.Version)
		if !info.DebianFamily() {
			log.Warnf("Distribution %q is not Debian-based; kernel package names may not match", info.Type)
		}
	}

	reporter := newReporter(reporterLevel(opts))

	reporter.Step("Detecting running kernel...")
	running, err := runningKernel()
	if err != nil {
		return err
	}
	reporter.Step("Running kernel: %s", running)

	reporter.Step("Scanning installed kernels...")
	kernels, err := installedKernels(ctx)
	if err != nil {
		return err
	}
	log.Debugf("installed kernel packages: %s", strings.Join(kernels.Packages(), ", "))
	if !kernels.MarkRunning(running) {
		log.Debugf("no package matches running kernel %s", running)
	}
	reporter.Step("Found %d installed kernel(s)", len(kernels))

	reporter.Step("Scanning kernel headers...")
	headers, err := installedHeaders(ctx)
	if err != nil {
		return err
	}
	reporter.Step("Found %d header package(s)", len(headers))

	result, err := kernel.AnalyzeWithHeaders(kernels, headers)
	if err != nil {
		return err
	}
	logProtected(result)

	if opts.JSON {
		return writeJSON(os.Stdout, result)
	}

	reporter.Analysis(tui.AnalysisView{
		RunningKernel:   result.RunningKernel,
		LatestKernel:    result.LatestKernel,
		ObsoleteKernels: result.ObsoleteKernels,
		ObsoleteHeaders: result.ObsoleteHeaders,
	})

	if result.TotalObsolete() == 0 {
		reporter.CleanSystem()
		return nil
	}

	obsolete := result.AllObsolete()

	// A plain scan must not claim it is executing anything.
	if opts.DryRun || opts.Remove {
		argv, err := remover.Command(obsolete)
		if err != nil {
			return err
		}
		reporter.Command(argv, opts.DryRun)
	}

	if opts.DryRun {
		reporter.Notice("[DRY RUN] No packages were removed.")
		return nil
	}

	if !opts.Remove {
		reporter.Notice("Run 'kernsweep clean --dry-run' to see what would be removed")
		reporter.Notice("Run 'kernsweep clean' to remove obsolete packages (requires sudo)")
		return nil
	}

	if !opts.AssumeYes && !opts.Quiet {
		if !confirm(confirmInput, os.Stdout, len(obsolete)) {
			reporter.Notice("Aborted.")
			return nil
		}
	}

	results, err := removePackages(ctx, obsolete, opts.Quiet)
	if err != nil {
		return err
	}

	var removed, failed int
	for _, res := range results {
		reporter.Removal(res)
		switch res.Status {
		case remover.StatusSuccess:
			removed++
		case remover.StatusFailed:
			failed++
		}
	}
	reporter.Summary(removed, failed)

	if failed > 0 {
		return errors.Errorf("failed to remove %d package(s)", failed)
	}

	if rebootNeeded(result.RunningKernel, result.LatestKernel) {
		reporter.RebootNotice()
		return ErrRebootRequired
	}
	return nil
}

// Preflight verifies the host tooling before any dpkg interaction.
// needRoot is set when packages will actually be removed.
func Preflight(needRoot bool) error {
	var errs *multierror.Error
	if _, err := lookPath("dpkg"); err != nil {
		errs = multierror.Append(errs, errors.New("dpkg not found in PATH, kernsweep requires a Debian-based system"))
	}
	if needRoot {
		if _, err := lookPath("apt-get"); err != nil {
			errs = multierror.Append(errs, errors.New("apt-get not found in PATH"))
		}
		if !isRoot() {
			errs = multierror.Append(errs, remover.ErrRootRequired)
		}
	}
	return errs.ErrorOrNil()
}

func reporterLevel(opts *Options) tui.Level {
	switch {
	case opts.Quiet:
		return tui.LevelQuiet
	case opts.Verbose:
		return tui.LevelVerbose
	}
	return tui.LevelNormal
}

// confirm prompts before removal, accepting only y or yes. EOF and
// unreadable input count as a refusal.
func confirm(in io.Reader, out io.Writer, count int) bool {
	fmt.Fprintf(out, "\nAbout to remove %d package(s).\n", count)
	fmt.Fprint(out, "Continue? [y/N]: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

func logProtected(result *kernel.Result) {
	protected := kernel.ProtectedPackages(result.RunningKernel, result.LatestKernel)
	names := make([]string, 0, len(protected))
	for name := range protected {
		names = append(names, name)
	}
	sort.Strings(names)
	log.Debugf("Protected packages: %s", strings.Join(names, ", "))
}

// jsonReport is the document emitted in JSON mode. It carries the
// analysis plus the fields automation most often branches on.
type jsonReport struct {
	*kernel.Result
	ObsoleteCount  int  `json:"obsolete_count"`
	RebootRequired bool `json:"reboot_required"`
}

func writeJSON(w io.Writer, result *kernel.Result) error {
	report := jsonReport{
		Result:         result,
		ObsoleteCount:  result.TotalObsolete(),
		RebootRequired: rebootNeeded(result.RunningKernel, result.LatestKernel),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(report), "failed to encode analysis")
}

// errorInfo maps workflow errors to styled display info with hints
// for the common failure modes.
func errorInfo(err error) tui.ErrorInfo {
	var unsafe *kernel.UnsafeRemovalError
	switch {
	case errors.As(err, &unsafe):
		return tui.ErrorInfo{
			Title:   "Safety Check Failed",
			Message: unsafe.Reason,
			Hint:    "No packages were removed",
		}
	case errors.Is(err, remover.ErrRootRequired):
		return tui.ErrorInfo{
			Title:   "Insufficient Privileges",
			Message: "Root privileges required for package removal",
			Hint:    "Run with sudo: sudo kernsweep clean",
		}
	case errors.Is(err, kernel.ErrRunningKernelNotFound):
		return tui.ErrorInfo{
			Title:   "Running Kernel Not Found",
			Message: err.Error(),
			Hint:    "The running kernel is not in dpkg's package list; was it installed by hand?",
		}
	case errors.Is(err, kernel.ErrNoKernelPackages):
		return tui.ErrorInfo{
			Title:   "No Kernel Packages Found",
			Message: err.Error(),
			Hint:    "kernsweep only understands dpkg-managed kernels on Debian and Ubuntu",
		}
	default:
		return tui.ErrorInfo{
			Title:   "Sweep Failed",
			Message: err.Error(),
		}
	}
}
