package kernel

import "errors"

var (
	// ErrRunningKernelNotFound is returned when none of the supplied
	// records carries the running flag.
	ErrRunningKernelNotFound = errors.New("running kernel not found in installed kernels list")

	// ErrNoKernelPackages is returned by detection when the package
	// database lists no versioned kernel images at all.
	ErrNoKernelPackages = errors.New("no kernel packages found")
)

// UnsafeRemovalError reports a removal plan that failed a safety
// check. Reason is the operator-facing message, verbatim.
type UnsafeRemovalError struct {
	Reason string
}

func (e *UnsafeRemovalError) Error() string {
	return e.Reason
}
