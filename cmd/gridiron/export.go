package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fortuna/gridiron/internal/config"
	"github.com/fortuna/gridiron/internal/export"
	"github.com/fortuna/gridiron/internal/season"
)

type exportOptions struct {
	season     int
	dryRun     bool
	outputDir  string
	layout     string
	seasonType string
	noInjuries bool
	noDefense  bool
	noRosters  bool
	fallback   string
}

func newExportCmd(root *rootOptions) *cobra.Command {
	opts := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Fetch one season and write the weekly stats JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger := root.loadConfig()
			opts.apply(cmd, &cfg)
			if err := cfg.Validate(); err != nil {
				logger.WithError(err).Error("invalid configuration")
				return err
			}
			return runExport(cmd.Context(), cfg, opts, logger)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.season, "season", 0, "season to export (overrides SEASON)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "load and transform without writing")
	f.StringVar(&opts.outputDir, "output-dir", "", "output directory (overrides OUTPUT_DIR)")
	f.StringVar(&opts.layout, "layout", "", "output layout: season or static (overrides OUTPUT_LAYOUT)")
	f.StringVar(&opts.seasonType, "season-type", "", "REG, POST or ALL (overrides SEASON_TYPE)")
	f.BoolVar(&opts.noInjuries, "no-injuries", false, "skip the injuries table")
	f.BoolVar(&opts.noDefense, "no-defense", false, "skip team defense records")
	f.BoolVar(&opts.noRosters, "no-rosters", false, "skip roster headshot backfill")
	f.StringVar(&opts.fallback, "injury-fallback", "", "none or espn (overrides INJURY_FALLBACK)")
	return cmd
}

// apply copies explicitly set flags over the env configuration.
func (o *exportOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.Output.Dir = o.outputDir
	}
	if flags.Changed("layout") {
		cfg.Output.Layout = o.layout
	}
	if flags.Changed("season-type") {
		cfg.Pipeline.SeasonType = o.seasonType
	}
	if flags.Changed("injury-fallback") {
		cfg.Pipeline.InjuryFallback = o.fallback
	}
	if o.noInjuries {
		cfg.Pipeline.IncludeInjuries = false
	}
	if o.noDefense {
		cfg.Pipeline.IncludeTeamDefense = false
	}
	if o.noRosters {
		cfg.Pipeline.IncludeRosters = false
	}
}

func runExport(ctx context.Context, cfg config.Config, opts *exportOptions, logger *logrus.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	seasonYear, source := season.Resolve(season.Options{
		Override: opts.season,
		Env:      cfg.Season,
		Logger:   logger,
	})
	logger.WithFields(logrus.Fields{"season": seasonYear, "source": string(source)}).Info("resolved season")

	b, err := connectBackends(ctx, cfg, logger, false)
	if err != nil {
		return err
	}
	defer b.Close()

	p, err := buildPipeline(ctx, cfg, b, nil, logger)
	if err != nil {
		return err
	}
	defer p.cleanup()

	reporter := &consoleReporter{logger: logger, start: time.Now()}
	result, err := p.runner.Run(ctx, export.Spec{
		Season:  seasonYear,
		DryRun:  opts.dryRun,
		Trigger: export.TriggerManual,
	}, reporter)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	if result.DryRun {
		logger.WithField("records", result.Records).Info("dry run complete, nothing written")
		return nil
	}
	logger.WithFields(logrus.Fields{"path": result.Path, "records": result.Records}).Info("export written")
	return nil
}

type consoleReporter struct {
	logger logrus.FieldLogger
	start  time.Time
}

func (c *consoleReporter) OnRunStart(spec export.Spec) {
	c.logger.WithFields(logrus.Fields{"season": spec.Season, "dry_run": spec.DryRun}).Info("starting export")
}

func (c *consoleReporter) OnStage(stage export.Stage, message string) {
	c.logger.WithField("stage", string(stage)).Info(message)
}

func (c *consoleReporter) OnRunComplete(result *export.Result) {
	entry := c.logger.WithFields(logrus.Fields{
		"records":  result.Records,
		"players":  result.Summary.Players,
		"defenses": result.Summary.Defenses,
		"elapsed":  time.Since(c.start).Round(time.Millisecond).String(),
	})
	for _, w := range result.Warnings {
		entry.WithField("warning", w).Warn("completed with warning")
	}
	entry.Info("export complete")
}

func (c *consoleReporter) OnRunError(err error) {
	c.logger.WithError(err).Error("export error")
}
