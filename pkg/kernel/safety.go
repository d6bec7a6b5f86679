package kernel

import (
	"fmt"
	"strings"
)

const (
	// ImagePrefix and HeaderPrefix are the Debian naming conventions
	// for versioned kernel packages.
	ImagePrefix  = "linux-image-"
	HeaderPrefix = "linux-headers-"

	// MaxBulkRemovals caps how many kernel images one sweep may
	// propose. A larger plan is assumed to be an analysis mistake.
	MaxBulkRemovals = 5
)

// ValidateRemoval vets a proposed removal list against the running
// and latest kernel versions and the full set of installed kernels.
// Checks run in order and the first violation wins; nil means the
// plan is safe. Header packages in the proposal are ignored by the
// remaining-kernel and bulk-size checks.
func ValidateRemoval(proposed []string, runningVersion, latestVersion string, all Records) error {
	runningPkg := ImagePrefix + runningVersion
	for _, pkg := range proposed {
		if pkg == runningPkg {
			return &UnsafeRemovalError{
				Reason: fmt.Sprintf("Safety check failed: Running kernel %s is marked for removal", runningVersion),
			}
		}
	}

	latestPkg := ImagePrefix + latestVersion
	for _, pkg := range proposed {
		if pkg == latestPkg {
			return &UnsafeRemovalError{
				Reason: fmt.Sprintf("Safety check failed: Latest kernel %s is marked for removal", latestVersion),
			}
		}
	}

	images := 0
	for _, pkg := range proposed {
		if strings.Contains(pkg, ImagePrefix) {
			images++
		}
	}
	if len(all)-images < 1 {
		return &UnsafeRemovalError{
			Reason: "Safety check failed: No kernels would remain after removal",
		}
	}
	if images > MaxBulkRemovals {
		return &UnsafeRemovalError{
			Reason: fmt.Sprintf("Safety check warning: Attempting to remove %d kernels at once. This seems excessive.", images),
		}
	}

	return nil
}

// ProtectedPackages returns the image and header package names that
// must never be removed for the given running and latest versions.
func ProtectedPackages(runningVersion, latestVersion string) map[string]struct{} {
	protected := map[string]struct{}{}
	for _, v := range []string{runningVersion, latestVersion} {
		protected[ImagePrefix+v] = struct{}{}
		protected[HeaderPrefix+v] = struct{}{}
	}
	return protected
}
