package sweep

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernsweep/kernsweep/pkg/kernel"
	"github.com/kernsweep/kernsweep/pkg/remover"
)

func TestNewScanCmd(t *testing.T) {
	cmd := NewScanCmd()

	assert.Equal(t, "scan", cmd.Use)

	jsonFlag := cmd.Flags().Lookup("json")
	require.NotNil(t, jsonFlag)
	assert.Equal(t, "false", jsonFlag.DefValue)

	timeoutFlag := cmd.Flags().Lookup("timeout")
	require.NotNil(t, timeoutFlag)
	assert.Equal(t, "5m0s", timeoutFlag.DefValue)
}

func TestNewCleanCmd(t *testing.T) {
	cmd := NewCleanCmd()

	assert.Equal(t, "clean", cmd.Use)

	dryRun := cmd.Flags().Lookup("dry-run")
	require.NotNil(t, dryRun)
	assert.Equal(t, "false", dryRun.DefValue)

	yes := cmd.Flags().Lookup("yes")
	require.NotNil(t, yes)
	assert.Equal(t, "y", yes.Shorthand)

	require.NotNil(t, cmd.Flags().Lookup("json"))

	timeoutFlag := cmd.Flags().Lookup("timeout")
	require.NotNil(t, timeoutFlag)
	assert.Equal(t, "5m0s", timeoutFlag.DefValue)
}

// bindEnv mirrors the root command's viper wiring so KERNSWEEP_*
// variables resolve when a subcommand runs detached from the root.
func bindEnv(t *testing.T) {
	t.Helper()
	viper.SetEnvPrefix("kernsweep")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	t.Cleanup(viper.Reset)
}

func TestNewCleanCmdEnvPresetsDryRun(t *testing.T) {
	resetStubs(t)
	stubDetection("5.15.0-91-generic", kernel.Records{
		rec("5.15.0-91-generic", "linux-image-5.15.0-91-generic"),
		rec("5.15.0-82-generic", "linux-image-5.15.0-82-generic"),
	}, nil)
	out := captureReporter()
	bindEnv(t)
	t.Setenv("KERNSWEEP_DRY_RUN", "1")

	var calls int
	removePackages = func(ctx context.Context, packages []string, quiet bool) ([]remover.Removal, error) {
		calls++
		return nil, nil
	}

	cmd := NewCleanCmd()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Zero(t, calls)
	assert.Contains(t, out.String(), "[DRY RUN] No packages were removed.")
}

func TestNewCleanCmdFlagBeatsEnv(t *testing.T) {
	resetStubs(t)
	stubDetection("5.15.0-91-generic", kernel.Records{
		rec("5.15.0-91-generic", "linux-image-5.15.0-91-generic"),
		rec("5.15.0-82-generic", "linux-image-5.15.0-82-generic"),
	}, nil)
	captureReporter()
	bindEnv(t)
	t.Setenv("KERNSWEEP_DRY_RUN", "1")

	var got []string
	removePackages = func(ctx context.Context, packages []string, quiet bool) ([]remover.Removal, error) {
		got = packages
		res := make([]remover.Removal, 0, len(packages))
		for _, pkg := range packages {
			res = append(res, remover.Removal{Package: pkg, Status: remover.StatusSuccess})
		}
		return res, nil
	}

	// An explicit --dry-run=false outranks the env preset.
	cmd := NewCleanCmd()
	cmd.SetArgs([]string{"--dry-run=false", "--yes"})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, []string{"linux-image-5.15.0-82-generic"}, got)
}

func TestNewCleanCmdEnvPresetsAssumeYes(t *testing.T) {
	resetStubs(t)
	stubDetection("5.15.0-91-generic", kernel.Records{
		rec("5.15.0-91-generic", "linux-image-5.15.0-91-generic"),
		rec("5.15.0-82-generic", "linux-image-5.15.0-82-generic"),
	}, nil)
	captureReporter()
	bindEnv(t)
	t.Setenv("KERNSWEEP_ASSUME_YES", "1")
	// Were the prompt consulted anyway, EOF would abort the removal.
	confirmInput = strings.NewReader("")

	var calls int
	removePackages = func(ctx context.Context, packages []string, quiet bool) ([]remover.Removal, error) {
		calls++
		res := make([]remover.Removal, 0, len(packages))
		for _, pkg := range packages {
			res = append(res, remover.Removal{Package: pkg, Status: remover.StatusSuccess})
		}
		return res, nil
	}

	cmd := NewCleanCmd()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())

	assert.Equal(t, 1, calls)
}

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd("1.2.3")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "kernsweep version 1.2.3")
}

func TestNewVersionCmdDefaultsToDev(t *testing.T) {
	cmd := NewVersionCmd("")
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "kernsweep version dev")
}
