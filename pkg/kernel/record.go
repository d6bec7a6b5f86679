package kernel

// Record describes one installed kernel image package. Identity is
// the package name; two packages may carry the same version string.
type Record struct {
	Version string `json:"version"`
	Package string `json:"package_name"`
	Running bool   `json:"is_running"`
	Latest  bool   `json:"is_latest"`
}

// Records holds the installed kernels handed to Analyze, in
// package-listing order.
type Records []*Record

// MarkRunning flags the first record whose version matches exactly
// and reports whether one was found. No match means the booted kernel
// is not tracked by the package manager, or its package is gone.
func (rs Records) MarkRunning(version string) bool {
	for _, r := range rs {
		if r.Version == version {
			r.Running = true
			return true
		}
	}
	return false
}

// Running returns the first record flagged as running, or nil.
func (rs Records) Running() *Record {
	for _, r := range rs {
		if r.Running {
			return r
		}
	}
	return nil
}

// Packages lists the package names in record order.
func (rs Records) Packages() []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Package)
	}
	return out
}
