// Package kernel decides which installed kernel packages are obsolete
// and whether removing them would leave the system bootable. It is
// pure computation over package listings; detection and removal live
// in their own packages.
package kernel

import (
	"regexp"
	"strconv"
	"strings"
)

// Kernel releases lead with a major.minor.patch-build tuple. Whatever
// follows the build number (flavor, architecture) has no bearing on
// ordering.
var releasePattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)-(\d+)`)

// flavorPattern splits a version on its last dash when the trailing
// segment is a single word.
var flavorPattern = regexp.MustCompile(`^(.*)-(\w+)$`)

// dottedTail rejects dotted numeric tails as flavors.
var dottedTail = regexp.MustCompile(`^\d+\.`)

// Compare orders two kernel version strings, returning -1, 0, or 1.
// Versions are compared numerically only when both match the release
// grammar; anything else is an opaque token and falls back to plain
// string comparison. Flavor suffixes are ignored, so
// "5.15.0-82-generic" and "5.15.0-82-lowlatency" compare as equal.
// Components beyond the native int range clamp to the maximum value,
// so two such components compare as equal.
func Compare(v1, v2 string) int {
	m1 := releasePattern.FindStringSubmatch(v1)
	m2 := releasePattern.FindStringSubmatch(v2)
	if m1 == nil || m2 == nil {
		return strings.Compare(v1, v2)
	}

	for i := 1; i < len(m1); i++ {
		n1, _ := strconv.Atoi(m1[i])
		n2, _ := strconv.Atoi(m2[i])
		if n1 != n2 {
			if n1 < n2 {
				return -1
			}
			return 1
		}
	}
	return 0
}

// SplitFlavor separates a kernel version into its base release and
// flavor suffix, e.g. "6.12.47+rpt-rpi-2712" into "6.12.47+rpt-rpi"
// and "2712". Grouping by base release keeps sibling flavor builds of
// the same kernel together. Versions without a qualifying suffix come
// back whole with an empty flavor. Best-effort over free-form vendor
// strings.
func SplitFlavor(version string) (string, string) {
	m := flavorPattern.FindStringSubmatch(version)
	if m == nil {
		return version, ""
	}
	if dottedTail.MatchString(m[2]) {
		return version, ""
	}
	return m[1], m[2]
}
