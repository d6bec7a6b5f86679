package kernel

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(version string, running bool) *Record {
	return &Record{Version: version, Package: ImagePrefix + version, Running: running}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	result, err := Analyze(Records{})
	require.NoError(t, err)
	assert.Empty(t, result.RunningKernel)
	assert.Empty(t, result.LatestKernel)
	assert.NotNil(t, result.ObsoleteKernels)
	assert.Empty(t, result.ObsoleteKernels)
	assert.NotNil(t, result.ObsoleteHeaders)
	assert.Empty(t, result.ObsoleteHeaders)
	assert.NotNil(t, result.ProtectedKernels)
	assert.Empty(t, result.ProtectedKernels)
}

func TestAnalyzeNoRunningKernel(t *testing.T) {
	kernels := Records{
		record("5.15.0-82-generic", false),
		record("5.15.0-91-generic", false),
	}

	_, err := Analyze(kernels)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunningKernelNotFound))
}

func TestAnalyzeTypicalSystem(t *testing.T) {
	kernels := Records{
		record("5.15.0-82-generic", true),
		record("5.15.0-91-generic", false),
		record("5.15.0-75-generic", false),
	}

	result, err := Analyze(kernels)
	require.NoError(t, err)
	assert.Equal(t, "5.15.0-82-generic", result.RunningKernel)
	assert.Equal(t, "5.15.0-91-generic", result.LatestKernel)
	assert.Equal(t, []string{"linux-image-5.15.0-75-generic"}, result.ObsoleteKernels)
	assert.Equal(t, []string{
		"linux-image-5.15.0-82-generic",
		"linux-image-5.15.0-91-generic",
	}, result.ProtectedKernels)
	assert.True(t, kernels[1].Latest)
	assert.False(t, kernels[0].Latest)
}

func TestAnalyzeRunningIsLatest(t *testing.T) {
	kernels := Records{
		record("5.15.0-75-generic", false),
		record("5.15.0-82-generic", false),
		record("5.15.0-91-generic", true),
	}

	result, err := Analyze(kernels)
	require.NoError(t, err)
	assert.Equal(t, result.RunningKernel, result.LatestKernel)
	assert.Equal(t, []string{
		"linux-image-5.15.0-75-generic",
		"linux-image-5.15.0-82-generic",
	}, result.ObsoleteKernels)
	assert.Equal(t, []string{"linux-image-5.15.0-91-generic"}, result.ProtectedKernels)
}

func TestAnalyzeProtectsSiblingFlavors(t *testing.T) {
	kernels := Records{
		record("5.15.0-82-generic", true),
		record("5.15.0-82-lowlatency", false),
		record("5.15.0-91-generic", false),
		record("5.15.0-91-lowlatency", false),
		record("5.15.0-75-generic", false),
	}

	result, err := Analyze(kernels)
	require.NoError(t, err)
	assert.Equal(t, []string{"linux-image-5.15.0-75-generic"}, result.ObsoleteKernels)
	assert.Len(t, result.ProtectedKernels, 4)
}

func TestAnalyzeCollapsesSameBaseLatest(t *testing.T) {
	// Both records are builds of the same release, differing only by
	// board flavor. The running kernel must be reported as latest so
	// the rebuild does not look like a pending upgrade.
	kernels := Records{
		record("6.12.47+rpt-rpi-2712", true),
		record("6.12.47+rpt-rpi-v8", false),
	}

	result, err := Analyze(kernels)
	require.NoError(t, err)
	assert.Equal(t, "6.12.47+rpt-rpi-2712", result.RunningKernel)
	assert.Equal(t, "6.12.47+rpt-rpi-2712", result.LatestKernel)
	assert.Empty(t, result.ObsoleteKernels)
	assert.Len(t, result.ProtectedKernels, 2)
	assert.True(t, kernels[0].Latest)
}

func TestAnalyzeLatestTieKeepsEarlierRecord(t *testing.T) {
	// Equal versions under Compare; the fold only advances on a
	// strictly greater candidate.
	kernels := Records{
		record("5.15.0-82-generic", true),
		record("5.15.0-82-lowlatency", false),
	}

	result, err := Analyze(kernels)
	require.NoError(t, err)
	assert.Equal(t, "5.15.0-82-generic", result.LatestKernel)
	assert.True(t, kernels[0].Latest)
	assert.False(t, kernels[1].Latest)
}

func TestAnalyzeToleratesDuplicateVersions(t *testing.T) {
	dup := &Record{Version: "5.15.0-91-generic", Package: "linux-image-5.15.0-91-generic-dbg"}
	kernels := Records{
		record("5.15.0-91-generic", true),
		dup,
		record("5.15.0-75-generic", false),
	}

	result, err := Analyze(kernels)
	require.NoError(t, err)
	assert.Equal(t, []string{"linux-image-5.15.0-75-generic"}, result.ObsoleteKernels)
	assert.Contains(t, result.ProtectedKernels, "linux-image-5.15.0-91-generic-dbg")
}

func TestAnalyzeAbortsOnUnsafePlan(t *testing.T) {
	kernels := Records{record("5.15.0-91-generic", true)}
	for i := 10; i < 16; i++ {
		kernels = append(kernels, record(fmt.Sprintf("5.14.0-%d-generic", i), false))
	}

	_, err := Analyze(kernels)
	require.Error(t, err)

	var unsafeErr *UnsafeRemovalError
	require.True(t, errors.As(err, &unsafeErr))
	assert.Contains(t, unsafeErr.Reason, "excessive")
	assert.Contains(t, unsafeErr.Reason, "6 kernels")
}

func TestAnalyzeWithHeaders(t *testing.T) {
	kernels := Records{record("6.12.48+deb13-amd64", true)}
	headers := []string{
		"linux-headers-6.12.48+deb13-amd64",
		"linux-headers-6.12.48+deb13-common",
		"linux-headers-6.12.41+deb13-amd64",
		"linux-headers-6.12.41+deb13-common",
	}

	result, err := AnalyzeWithHeaders(kernels, headers)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"linux-headers-6.12.41+deb13-amd64",
		"linux-headers-6.12.41+deb13-common",
	}, result.ObsoleteHeaders)
	assert.Empty(t, result.ObsoleteKernels)
}

func TestAnalyzeWithHeadersEmptyKernels(t *testing.T) {
	result, err := AnalyzeWithHeaders(Records{}, []string{"linux-headers-5.15.0-82-generic"})
	require.NoError(t, err)
	assert.Empty(t, result.ObsoleteHeaders)
}

func TestResultAllObsolete(t *testing.T) {
	result := &Result{
		ObsoleteKernels: []string{"linux-image-5.15.0-75-generic"},
		ObsoleteHeaders: []string{"linux-headers-5.15.0-75-generic"},
	}
	assert.Equal(t, 2, result.TotalObsolete())
	assert.Equal(t, []string{
		"linux-image-5.15.0-75-generic",
		"linux-headers-5.15.0-75-generic",
	}, result.AllObsolete())
}

func TestRecordsMarkRunning(t *testing.T) {
	kernels := Records{
		record("5.15.0-82-generic", false),
		record("5.15.0-91-generic", false),
	}

	assert.True(t, kernels.MarkRunning("5.15.0-91-generic"))
	assert.Equal(t, kernels[1], kernels.Running())
	assert.False(t, kernels.MarkRunning("4.19.0-20-amd64"))
}

func TestRecordsPackages(t *testing.T) {
	kernels := Records{
		record("5.15.0-82-generic", false),
		record("5.15.0-91-generic", true),
	}

	assert.Equal(t, []string{
		"linux-image-5.15.0-82-generic",
		"linux-image-5.15.0-91-generic",
	}, kernels.Packages())
}
