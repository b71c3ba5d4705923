package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/okian/rollcall/internal/domain/model"
	"github.com/okian/rollcall/internal/seed"
	"github.com/okian/rollcall/pkg/logger"
)

// File permission constants.
const outputFilePermission = 0o600

func newGenerateCmd() *cobra.Command {
	cfg := seed.DefaultConfig()
	var (
		start  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic attendance CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := model.ParseDate(start)
			if err != nil {
				return fmt.Errorf("--start: %w", err)
			}
			cfg.Start = d

			rows, stats, err := seed.Generate(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.OpenFile(output, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, outputFilePermission)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				w = f
			}
			if err := seed.WriteCSV(w, rows); err != nil {
				return err
			}

			logger.Get().Info(cmd.Context(), "generated attendance feed",
				logger.String("run_id", stats.RunID),
				logger.Any("seed", stats.Seed),
				logger.Int("valid", stats.Valid),
				logger.Int("duplicates", stats.Duplicates),
				logger.Int("invalid", stats.Invalid),
				logger.String("output", output),
			)
			return nil
		},
	}

	f := cmd.Flags()
	f.IntVar(&cfg.Users, "users", cfg.Users, "number of distinct attendees")
	f.IntVar(&cfg.Days, "days", cfg.Days, "number of consecutive days")
	f.StringVar(&start, "start", cfg.Start.String(), "first day (YYYY-MM-DD)")
	f.Float64Var(&cfg.AttendProb, "attend", cfg.AttendProb, "probability a user checks in on a day")
	f.Float64Var(&cfg.DuplicateRatio, "dup-ratio", cfg.DuplicateRatio, "duplicate rows per valid row")
	f.Float64Var(&cfg.InvalidRatio, "invalid-ratio", cfg.InvalidRatio, "invalid rows per valid row")
	f.Uint64Var(&cfg.Seed, "seed", 0, "random seed (0 picks one)")
	f.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
