// Package remover drives apt-get to purge obsolete kernel packages.
package remover

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"regexp"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	log "github.com/sirupsen/logrus"
)

// ErrRootRequired is returned when removal is attempted without root
// privileges.
var ErrRootRequired = errors.New("root privileges required, run with sudo")

// removingLine matches the per-package progress lines apt-get prints
// while it works.
var removingLine = regexp.MustCompile(`^Removing (\S+)`)

// RemovalStatus is the outcome of removing one package.
type RemovalStatus uint

const (
	StatusSuccess RemovalStatus = iota
	StatusFailed
	StatusSkipped
)

func (s RemovalStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	}
	return "unknown"
}

// Removal pairs a package with its removal outcome.
type Removal struct {
	Package string
	Status  RemovalStatus
}

// Command builds the apt-get invocation for the given packages.
// Purging drops configuration files too, and autoremove sweeps out
// dependencies nothing else needs. The -y flag skips apt's own
// confirmation prompt; confirmation is handled before calling here.
func Command(packages []string) ([]string, error) {
	if len(packages) == 0 {
		return nil, errors.New("no packages provided for removal")
	}
	cmd := []string{"apt-get", "-y", "remove", "--autoremove", "--purge"}
	return append(cmd, packages...), nil
}

// IsRoot reports whether the process runs with root privileges.
func IsRoot() bool {
	return os.Geteuid() == 0
}

// Remover executes package removals.
type Remover struct {
	// DryRun skips execution entirely; every package comes back
	// skipped.
	DryRun bool
	// Quiet suppresses the progress display.
	Quiet bool
}

// Remove purges the given packages with a single apt-get call and
// reports a per-package outcome. apt-get is all-or-nothing here: a
// non-zero exit fails the whole batch and no results are returned.
func (r *Remover) Remove(ctx context.Context, packages []string) ([]Removal, error) {
	if len(packages) == 0 {
		return nil, nil
	}

	if r.DryRun {
		log.Debugf("dry run, skipping removal of %d package(s)", len(packages))
		return statuses(packages, StatusSkipped), nil
	}

	if !IsRoot() {
		return nil, ErrRootRequired
	}

	argv, err := Command(packages)
	if err != nil {
		return nil, err
	}
	log.Debugf("executing %v", argv)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to attach to apt-get output")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "failed to attach to apt-get output")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "failed to execute apt-get")
	}

	// apt-get puts its warnings and errors on stderr.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logPipe(stderr, log.WarnLevel)
	}()

	requested := make(map[string]struct{}, len(packages))
	for _, pkg := range packages {
		requested[pkg] = struct{}{}
	}

	bar := r.newProgressBar(len(packages))
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := scanner.Text()
		log.Debug(line)
		m := removingLine.FindStringSubmatch(line)
		if m == nil || bar == nil {
			continue
		}
		// autoremove pulls in packages beyond the requested set; only
		// those count toward the bar.
		if _, ok := requested[m[1]]; ok {
			bar.Describe("Removing " + m[1])
			_ = bar.Add(1)
		}
	}

	wg.Wait()
	if err := cmd.Wait(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return nil, errors.Errorf("apt-get remove failed with exit code %d", exitErr.ExitCode())
		}
		return nil, errors.Wrap(err, "failed to execute apt-get")
	}
	if bar != nil {
		_ = bar.Finish()
	}

	return statuses(packages, StatusSuccess), nil
}

func (r *Remover) newProgressBar(total int) *progressbar.ProgressBar {
	if r.Quiet || log.GetLevel() >= log.DebugLevel {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionFullWidth(),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetDescription("Removing packages"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
}

// logPipe forwards each line from the pipe to the log at the given
// level.
func logPipe(pipe io.Reader, level log.Level) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		log.StandardLogger().Log(level, scanner.Text())
	}
}

func statuses(packages []string, status RemovalStatus) []Removal {
	out := make([]Removal, 0, len(packages))
	for _, pkg := range packages {
		out = append(out, Removal{Package: pkg, Status: status})
	}
	return out
}
