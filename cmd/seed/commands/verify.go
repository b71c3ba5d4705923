package commands

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/rollcall/internal/seed"
	"github.com/okian/rollcall/pkg/logger"
)

// ErrMismatch is returned when the served summary disagrees with the file.
var ErrMismatch = errors.New("summary mismatch")

func newVerifyCmd() *cobra.Command {
	var (
		baseURL string
		input   string
		k       int
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare a server's top attendance with one recomputed from a CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()

			rows, err := seed.ReadCSV(f)
			if err != nil {
				return err
			}
			exp := seed.Expect(rows, k)

			log := logger.Get()
			rep, err := seed.Verify(cmd.Context(), &http.Client{Timeout: timeout}, baseURL, exp)
			if err != nil {
				return err
			}
			for _, m := range rep.Mismatches {
				log.Warn(cmd.Context(), "mismatch", logger.String("detail", m.String()))
			}
			if !rep.OK() {
				return fmt.Errorf("%w: %d entries differ", ErrMismatch, len(rep.Mismatches))
			}
			log.Info(cmd.Context(), "summary verified",
				logger.String("start", exp.Start.String()),
				logger.String("end", exp.End.String()),
				logger.Int("entries", len(rep.Actual)),
			)
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&baseURL, "url", "http://localhost:9080", "base URL of the rollcall server")
	fl.StringVarP(&input, "input", "i", "attendance.csv", "CSV the server was loaded from")
	fl.IntVar(&k, "k", seed.DefaultTopK, "top_attendance_k configured on the server")
	fl.DurationVar(&timeout, "timeout", seed.DefaultTimeout, "HTTP request timeout")
	return cmd
}
