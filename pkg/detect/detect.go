// Package detect reads kernel state from the host: the booted kernel
// release, the installed kernel image and header packages, and the
// pending-reboot marker.
package detect

import (
	"context"
	"os"
	"os/exec"
	"regexp"
	"strings"

	debVer "github.com/knqyf263/go-deb-version"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/kernsweep/kernsweep/pkg/kernel"
)

// rebootRequiredPath is the marker Debian and Ubuntu create when an
// upgrade needs a restart. Overridable in tests.
var rebootRequiredPath = "/var/run/reboot-required"

var (
	// dpkg -l lines for installed versioned kernel packages. The
	// name must continue with digits, dots, or dashes right after the
	// prefix, which rules out meta-packages like linux-image-generic.
	imageLine  = regexp.MustCompile(`^ii\s+(linux-image-[\d.\-]+\S*)\s+(\S+)`)
	headerLine = regexp.MustCompile(`^ii\s+(linux-headers-[\d.\-]+\S*)\s+(\S+)`)

	// Versioned package names start with a dotted release number.
	// Catches meta-packages that sneak past the line pattern, such as
	// linux-image-686-pae.
	versionedName = regexp.MustCompile(`^\d+\.`)
)

// RunningKernel reports the release string of the booted kernel, the
// same string dpkg embeds in versioned kernel package names.
func RunningKernel() (string, error) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return "", errors.Wrap(err, "failed to detect running kernel")
	}

	release := unix.ByteSliceToString(uts.Release[:])
	if release == "" {
		return "", errors.New("uname returned empty kernel release")
	}
	log.Debugf("running kernel release: %s", release)
	return release, nil
}

// InstalledKernels lists the versioned kernel image packages known to
// dpkg, in listing order. Returns kernel.ErrNoKernelPackages when the
// listing has none.
func InstalledKernels(ctx context.Context) (kernel.Records, error) {
	listing, err := dpkgList(ctx)
	if err != nil {
		return nil, err
	}

	records := ParseKernelPackages(listing)
	if len(records) == 0 {
		return nil, kernel.ErrNoKernelPackages
	}
	log.Debugf("found %d installed kernel package(s)", len(records))
	return records, nil
}

// InstalledHeaders lists the versioned kernel header packages known
// to dpkg. An empty list is not an error.
func InstalledHeaders(ctx context.Context) ([]string, error) {
	listing, err := dpkgList(ctx)
	if err != nil {
		return nil, err
	}

	headers := ParseHeaderPackages(listing)
	log.Debugf("found %d installed header package(s)", len(headers))
	return headers, nil
}

// ParseKernelPackages extracts kernel image records from dpkg -l
// output. Rows with an invalid Debian version column are logged and
// dropped.
func ParseKernelPackages(listing string) kernel.Records {
	records := kernel.Records{}
	for _, line := range strings.Split(listing, "\n") {
		m := imageLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		pkg := m[1]
		version := strings.TrimPrefix(pkg, kernel.ImagePrefix)
		if !versionedName.MatchString(version) {
			log.Debugf("skipping meta-package %s", pkg)
			continue
		}
		if !debVer.Valid(m[2]) {
			log.Warnf("skipping %s: malformed package version %q", pkg, m[2])
			continue
		}

		records = append(records, &kernel.Record{Version: version, Package: pkg})
	}
	return records
}

// ParseHeaderPackages extracts versioned header package names from
// dpkg -l output.
func ParseHeaderPackages(listing string) []string {
	headers := []string{}
	for _, line := range strings.Split(listing, "\n") {
		m := headerLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		pkg := m[1]
		if !versionedName.MatchString(strings.TrimPrefix(pkg, kernel.HeaderPrefix)) {
			log.Debugf("skipping meta-package %s", pkg)
			continue
		}
		headers = append(headers, pkg)
	}
	return headers
}

// NeedsReboot reports whether the system must restart to run the
// newest installed kernel. Debian drops the reboot-required marker on
// kernel upgrades; comparing running against latest catches upgrades
// installed before the marker existed.
func NeedsReboot(runningKernel, latestKernel string) bool {
	if _, err := os.Stat(rebootRequiredPath); err == nil {
		return true
	}
	return runningKernel != latestKernel
}

func dpkgList(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "dpkg", "-l").Output()
	if err != nil {
		return "", errors.Wrap(err, "failed to query installed packages")
	}
	return string(out), nil
}
