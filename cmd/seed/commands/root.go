// Package commands implements the seed CLI.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/okian/rollcall/pkg/logger"
)

var (
	verbose bool
	jsonLog bool
)

var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Generate synthetic attendance feeds and verify a running rollcall server",
	Long: `seed writes shuffled attendance CSV files with planted duplicate and invalid
rows, and recomputes the expected top attendance of a file to compare it
with the summary served by a rollcall instance.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		opts := []logger.Option{logger.WithWriter(cmd.ErrOrStderr())}
		if jsonLog {
			opts = append(opts, logger.WithFormat(logger.FormatJSON))
		}
		if verbose {
			opts = append(opts, logger.WithLevel("debug"))
		}
		return logger.Init(opts...)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() { //nolint:gochecknoinits // cobra command registration
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLog, "json", false, "log in JSON")
	rootCmd.AddCommand(newGenerateCmd(), newVerifyCmd())
}
