package kernel

import (
	"testing"
)

// FuzzCompare exercises version comparison with arbitrary strings.
func FuzzCompare(f *testing.F) {
	f.Add("5.15.0-82-generic", "5.15.0-91-generic")
	f.Add("6.1.0-13-amd64", "6.1.0-13-arm64")
	f.Add("6.12.48+deb13-amd64", "6.12.41+deb13-amd64")
	f.Add("", "")
	f.Add("not-a-version", "5.15.0-82")
	f.Add("999999999999999999999.1.1-1", "1.1.1-1")

	f.Fuzz(func(t *testing.T, v1, v2 string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Compare panicked with inputs %q, %q: %v", v1, v2, r)
			}
		}()

		got := Compare(v1, v2)
		if flipped := Compare(v2, v1); got != -flipped {
			t.Errorf("Compare(%q, %q) = %d but Compare(%q, %q) = %d", v1, v2, got, v2, v1, flipped)
		}
		if v1 == v2 && got != 0 {
			t.Errorf("Compare(%q, %q) = %d, want 0", v1, v2, got)
		}
	})
}

// FuzzSplitFlavor checks that splitting a version never loses text.
func FuzzSplitFlavor(f *testing.F) {
	f.Add("5.15.0-82-generic")
	f.Add("6.12.47+rpt-rpi-2712")
	f.Add("6.1.0")
	f.Add("")
	f.Add("---")

	f.Fuzz(func(t *testing.T, version string) {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("SplitFlavor panicked with input %q: %v", version, r)
			}
		}()

		base, flavor := SplitFlavor(version)
		if flavor == "" {
			if base != version {
				t.Errorf("SplitFlavor(%q) = (%q, %q), expected whole version back", version, base, flavor)
			}
		} else if base+"-"+flavor != version {
			t.Errorf("SplitFlavor(%q) = (%q, %q), does not reassemble", version, base, flavor)
		}
	})
}

// FuzzAnalyze verifies that no input ever produces a plan removing
// the running or latest kernel.
func FuzzAnalyze(f *testing.F) {
	f.Add("5.15.0-82-generic", "5.15.0-91-generic", "5.15.0-75-generic")
	f.Add("6.12.47+rpt-rpi-2712", "6.12.47+rpt-rpi-v8", "6.1.0-13-amd64")
	f.Add("a", "b", "c")
	f.Add("", "", "")

	f.Fuzz(func(t *testing.T, v1, v2, v3 string) {
		kernels := Records{
			&Record{Version: v1, Package: ImagePrefix + v1, Running: true},
			&Record{Version: v2, Package: ImagePrefix + v2},
			&Record{Version: v3, Package: ImagePrefix + v3},
		}

		result, err := Analyze(kernels)
		if err != nil {
			return
		}

		runningPkg := ImagePrefix + result.RunningKernel
		latestPkg := ImagePrefix + result.LatestKernel
		for _, pkg := range result.ObsoleteKernels {
			if pkg == runningPkg {
				t.Errorf("running kernel package %q in obsolete list for inputs %q, %q, %q", pkg, v1, v2, v3)
			}
			if pkg == latestPkg {
				t.Errorf("latest kernel package %q in obsolete list for inputs %q, %q, %q", pkg, v1, v2, v3)
			}
		}
	})
}
