package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pinchtab/todobench/internal/config"
	"github.com/pinchtab/todobench/internal/report"
	"github.com/pinchtab/todobench/internal/runner"
	"github.com/pinchtab/todobench/internal/suite"
)

var runCmd = &cobra.Command{
	Use:   "run [url]",
	Short: "Run the suite against a TodoMVC page in Chrome",
	Long: `Opens the page in Chrome, locates the .new-todo input and replays the
add/complete/delete steps. The report goes to stdout, logs to stderr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if len(args) == 1 {
			cfg.URL = args[0]
		}
		if cfg.URL == "" {
			return fmt.Errorf("no url: pass one as argument, --url or TODOBENCH_URL")
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		driver, err := newChromeDriver(cfg)
		if err != nil {
			return err
		}
		driver.opts.Logger = logger

		limit, _ := cmd.Flags().GetInt("limit")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runSuite(ctx, driver, cfg, limit, logger, cmd.OutOrStdout())
	},
}

// runSuite opens cfg.URL with driver, runs the configured suite and writes
// the report, also when the run failed part way.
func runSuite(ctx context.Context, driver Driver, cfg config.Config, limit int, logger *slog.Logger, out io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	page, err := driver.Open(ctx, cfg.URL)
	if err != nil {
		return err
	}
	defer page.Close()

	s := suite.New(cfg.Items).Only(cfg.Only...)
	r := runner.New(
		runner.WithLogger(logger),
		runner.WithStepTimeout(cfg.StepTimeout),
		runner.WithLimit(limit),
	)

	rep, runErr := r.Run(page.Context(), page.Document(), s)
	if errors.Is(runErr, suite.ErrNoFacts) {
		return fmt.Errorf("%s: %w", cfg.URL, runErr)
	}
	if rep != nil {
		if err := report.Write(out, rep, cfg.Format); err != nil {
			return err
		}
	}
	return runErr
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("url", "", "TodoMVC page to drive")
	runCmd.Flags().Int("limit", 0, "stop after this many steps (0 = all)")
	addSuiteFlags(runCmd)
	addBrowserFlags(runCmd)
}
