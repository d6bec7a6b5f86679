package kernel

// Result is the outcome of one obsolescence analysis. ObsoleteHeaders
// stays empty until headers are matched in a second pass; see
// AnalyzeWithHeaders.
type Result struct {
	RunningKernel    string   `json:"running_kernel"`
	LatestKernel     string   `json:"latest_kernel"`
	ObsoleteKernels  []string `json:"obsolete_kernels"`
	ObsoleteHeaders  []string `json:"obsolete_headers"`
	ProtectedKernels []string `json:"protected_kernels"`
}

// TotalObsolete counts removable kernel and header packages.
func (r *Result) TotalObsolete() int {
	return len(r.ObsoleteKernels) + len(r.ObsoleteHeaders)
}

// AllObsolete returns the removal list, kernels first, then headers.
func (r *Result) AllObsolete() []string {
	out := make([]string, 0, r.TotalObsolete())
	out = append(out, r.ObsoleteKernels...)
	return append(out, r.ObsoleteHeaders...)
}

// Analyze partitions the installed kernels into protected and
// obsolete sets. A kernel is protected when it is the running kernel,
// the latest installed kernel, or a sibling flavor build sharing a
// base release with either. The latest record is flagged in place.
// The resulting removal plan is vetted by ValidateRemoval before it
// is returned; an unsafe plan fails the whole analysis.
//
// An empty record set yields an empty result. A non-empty set with no
// record flagged running fails with ErrRunningKernelNotFound.
func Analyze(kernels Records) (*Result, error) {
	result := &Result{
		ObsoleteKernels:  []string{},
		ObsoleteHeaders:  []string{},
		ProtectedKernels: []string{},
	}
	if len(kernels) == 0 {
		return result, nil
	}

	running := kernels.Running()
	if running == nil {
		return nil, ErrRunningKernelNotFound
	}

	latest := kernels[0]
	for _, k := range kernels[1:] {
		if Compare(k.Version, latest.Version) > 0 {
			latest = k
		}
	}

	// A latest that differs from the running kernel only by flavor is
	// the same release; treat the running kernel as latest so the
	// rebuild is not reported as a pending upgrade.
	runningBase, _ := SplitFlavor(running.Version)
	latestBase, _ := SplitFlavor(latest.Version)
	if runningBase == latestBase {
		latest = running
		latestBase = runningBase
	}
	latest.Latest = true

	protectedVersions := map[string]struct{}{
		running.Version: {},
		latest.Version:  {},
	}
	protectedBases := map[string]struct{}{
		runningBase: {},
		latestBase:  {},
	}

	for _, k := range kernels {
		base, _ := SplitFlavor(k.Version)
		_, byVersion := protectedVersions[k.Version]
		_, byBase := protectedBases[base]
		if byVersion || byBase {
			result.ProtectedKernels = append(result.ProtectedKernels, k.Package)
		} else {
			result.ObsoleteKernels = append(result.ObsoleteKernels, k.Package)
		}
	}

	result.RunningKernel = running.Version
	result.LatestKernel = latest.Version

	if err := ValidateRemoval(result.ObsoleteKernels, running.Version, latest.Version, kernels); err != nil {
		return nil, err
	}
	return result, nil
}

// AnalyzeWithHeaders runs Analyze and then fills ObsoleteHeaders by
// matching the header packages against the protected versions.
func AnalyzeWithHeaders(kernels Records, headers []string) (*Result, error) {
	result, err := Analyze(kernels)
	if err != nil {
		return nil, err
	}
	if len(kernels) == 0 {
		return result, nil
	}

	protected := map[string]struct{}{
		result.RunningKernel: {},
		result.LatestKernel:  {},
	}
	result.ObsoleteHeaders = MatchHeaders(headers, protected)
	return result, nil
}
