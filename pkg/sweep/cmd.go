package sweep

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tcnksm/go-latest"
)

// NewScanCmd builds the read-only analysis command.
func NewScanCmd() *cobra.Command {
	opts := Options{}
	scanCmd := &cobra.Command{
		Use:     "scan",
		Short:   "Detect obsolete kernels and headers without changing anything",
		Example: "  kernsweep scan\n  kernsweep scan --json",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			applyPersistentFlags(cmd, &opts)
			return Run(ctx, &opts)
		},
	}
	flags := scanCmd.Flags()
	flags.BoolVar(&opts.JSON, "json", false, "Emit the analysis as JSON for scripting")
	flags.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "Timeout for the operation, defaults to '5m'")

	return scanCmd
}

// NewCleanCmd builds the removal command.
func NewCleanCmd() *cobra.Command {
	opts := Options{Remove: true}
	cleanCmd := &cobra.Command{
		Use:     "clean",
		Short:   "Remove obsolete kernels and headers (requires root)",
		Example: "  kernsweep clean --dry-run\n  sudo kernsweep clean --yes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer cancel()
			applyPersistentFlags(cmd, &opts)
			// Env presets the knobs (KERNSWEEP_ASSUME_YES=1); an
			// explicit flag wins.
			if !cmd.Flags().Changed("yes") {
				opts.AssumeYes = viper.GetBool("assume-yes")
			}
			if !cmd.Flags().Changed("dry-run") {
				opts.DryRun = viper.GetBool("dry-run")
			}
			return Run(ctx, &opts)
		},
	}
	flags := cleanCmd.Flags()
	flags.BoolVar(&opts.DryRun, "dry-run", false, "Show what would be removed without removing anything")
	flags.BoolVarP(&opts.AssumeYes, "yes", "y", false, "Assume yes to the removal confirmation prompt")
	flags.BoolVar(&opts.JSON, "json", false, "Emit the analysis as JSON and skip removal")
	flags.DurationVar(&opts.Timeout, "timeout", 5*time.Minute, "Timeout for the operation, defaults to '5m'")

	return cleanCmd
}

// NewVersionCmd builds the version command. The release check is
// best-effort and never fails the command.
func NewVersionCmd(version string) *cobra.Command {
	if version == "" {
		version = "dev"
	}
	var check bool
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the kernsweep version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "kernsweep version %s\n", version)
			if !check {
				return nil
			}
			githubTag := &latest.GithubTag{
				Owner:      "kernsweep",
				Repository: "kernsweep",
			}
			res, err := latest.Check(githubTag, version)
			if err != nil {
				log.Warnf("Release check failed: %v", err)
				return nil
			}
			if res.Outdated {
				fmt.Fprintf(cmd.OutOrStdout(), "A new version is available: %s (you have %s)\n", res.Current, version)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "You are using the latest version: %s\n", version)
			}
			return nil
		},
	}
	versionCmd.Flags().BoolVar(&check, "check", false, "Check GitHub for a newer release")

	return versionCmd
}

// applyPersistentFlags copies the root command's verbosity flags into
// the options. The flags are absent when a command runs detached from
// the root, as in tests.
func applyPersistentFlags(cmd *cobra.Command, opts *Options) {
	opts.Quiet, _ = cmd.Flags().GetBool("quiet")
	opts.Verbose, _ = cmd.Flags().GetBool("verbose")
}
