package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"racefeatures/internal/batch"
	"racefeatures/internal/config"
	"racefeatures/internal/features"
	"racefeatures/internal/logging"
	"racefeatures/internal/provider"
	"racefeatures/internal/race"
	"racefeatures/internal/report"
	"racefeatures/internal/services"
)

type extractFlags struct {
	from   int
	to     int
	output string
	delay  time.Duration
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.from, "from", 0, "First season (default seasons.from)")
	cmd.Flags().IntVar(&f.to, "to", 0, "Last season, inclusive (default seasons.to)")
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "CSV destination (default derived from paths.output_dir)")
	cmd.Flags().DurationVar(&f.delay, "delay", 0, "Pause after each processed event (default batch.event_delay_seconds)")
}

// apply overlays explicitly set flags onto cfg and revalidates it.
func (f *extractFlags) apply(cmd *cobra.Command, cfg *config.Config, setOutput func(string)) (time.Duration, error) {
	flags := cmd.Flags()
	if flags.Changed("from") {
		cfg.Seasons.From = f.from
	}
	if flags.Changed("to") {
		cfg.Seasons.To = f.to
	}
	if flags.Changed("output") {
		expanded, err := config.ExpandPath(f.output)
		if err != nil {
			return 0, fmt.Errorf("resolve output path: %w", err)
		}
		setOutput(expanded)
	}
	delay := cfg.EventDelay()
	if flags.Changed("delay") {
		if f.delay < 0 {
			return 0, fmt.Errorf("--delay must not be negative")
		}
		delay = f.delay
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	return delay, nil
}

func newFeaturesCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags
	cmd := &cobra.Command{
		Use:   "features",
		Short: "Build one row per driver per race and write driver_features CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			delay, err := flags.apply(cmd, cfg, func(p string) { cfg.Batch.FeaturesFile = p })
			if err != nil {
				return err
			}
			return runExtraction(cmd, ctx, cfg, batch.FeaturesJob, extraction[features.DriverRaceRow]{
				delay:   delay,
				path:    cfg.FeaturesOutputPath(),
				header:  features.DriverFeatureColumns,
				noun:    "driver rows",
				records: report.Records[features.DriverRaceRow],
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newLapsCommand(ctx *commandContext) *cobra.Command {
	var flags extractFlags
	cmd := &cobra.Command{
		Use:   "laps",
		Short: "Extract every race lap and write lap_level_data CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			delay, err := flags.apply(cmd, cfg, func(p string) { cfg.Batch.LapsFile = p })
			if err != nil {
				return err
			}
			return runExtraction(cmd, ctx, cfg, batch.LapsJob, extraction[features.LapRow]{
				delay:   delay,
				path:    cfg.LapsOutputPath(),
				header:  features.LapColumns,
				noun:    "lap rows",
				records: report.Records[features.LapRow],
			})
		},
	}
	flags.register(cmd)
	return cmd
}

type extraction[R any] struct {
	delay   time.Duration
	path    string
	header  []string
	noun    string
	records func([]R) [][]string
}

func runExtraction[R any](cmd *cobra.Command, cc *commandContext, cfg *config.Config, job batch.Job[R], ex extraction[R]) error {
	logger, err := cc.logger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger = logging.NewComponentLogger(logger, "cli")

	runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	runCtx = services.WithRunID(runCtx, cc.runID)

	prov, err := provider.New(runCtx, provider.ConfigFrom(cfg), logger)
	if err != nil {
		return fmt.Errorf("open provider: %w", err)
	}
	defer func() {
		if closeErr := prov.Close(); closeErr != nil {
			logger.Warn("close provider", logging.Error(closeErr))
		}
	}()

	kind, _ := race.ParseSessionKind(cfg.Batch.SessionType)
	logger.Info("extraction started",
		logging.String(logging.FieldJob, job.Name),
		logging.Int("from", cfg.Seasons.From),
		logging.Int("to", cfg.Seasons.To),
		logging.String("output", ex.path),
	)
	rows, _, err := batch.Run(runCtx, prov, job, batch.Options{
		Seasons: race.Seasons(cfg.Seasons.From, cfg.Seasons.To),
		Session: kind,
		Delay:   ex.delay,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	records := ex.records(rows)
	if len(records) == 0 {
		logging.WarnWithContext(logger, "no data was extracted", "empty_output",
			logging.String(logging.FieldJob, job.Name),
			logging.String(logging.FieldImpact, "headers-only file written"),
		)
	}
	if err := report.WriteCSV(ex.path, ex.header, records); err != nil {
		logging.ErrorWithContext(logger, "could not write output", "output_failed",
			logging.String("output", ex.path),
			logging.Error(err),
		)
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.Summary(len(records), ex.noun, ex.path))
	if preview := report.RenderPreview(out, ex.header, records, cfg.Batch.PreviewRows); preview != "" {
		fmt.Fprintln(out, preview)
	}
	return nil
}
