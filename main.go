package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kernsweep/kernsweep/pkg/sweep"
)

// Globals for logging flags and version reporting.
var (
	debug   bool
	quiet   bool
	verbose bool
	version string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kernsweep",
		Short: "KernSweep",
		Long:  "KernSweep: detect and remove obsolete Linux kernels and headers",
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if quiet && verbose {
				return errors.New("--quiet and --verbose cannot be used together")
			}
			switch {
			case debug:
				log.SetLevel(log.DebugLevel)
			case quiet:
				log.SetLevel(log.WarnLevel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Usage()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debug, "debug", false, "enable debug level logging")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	flags.BoolVarP(&verbose, "verbose", "v", false, "narrate each workflow step")

	rootCmd.AddCommand(sweep.NewScanCmd())
	rootCmd.AddCommand(sweep.NewCleanCmd())
	rootCmd.AddCommand(sweep.NewVersionCmd(version))
	return rootCmd
}

func initConfig() {
	viper.SetEnvPrefix("kernsweep")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func main() {
	cobra.OnInitialize(initConfig)
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, sweep.ErrRebootRequired) {
			os.Exit(2)
		}
		log.Errorf("Error: %v", err)
		os.Exit(1)
	}
}
