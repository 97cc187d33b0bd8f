package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"trustgate/internal/config"
	"trustgate/internal/gather"
	"trustgate/internal/metrics"
	"trustgate/internal/monitoring"
	"trustgate/internal/providers"
	"trustgate/internal/runner"
	"trustgate/internal/store"
)

var (
	name    = "trustgate"
	version = "v0.1.0-default"
	commit  = ""

	debug      = false
	configPath = ""
	dataDir    = ""

	appLogger = monitoring.NewLogger(slog.LevelInfo)

	debugFlag = &cli.BoolFlag{
		Name:        "debug",
		Usage:       "Prints verbose logs (optional, default: false)",
		Destination: &debug,
	}

	configFlag = &cli.StringFlag{
		Name:        "config",
		Usage:       "Path to the YAML config file (optional)",
		Destination: &configPath,
	}

	dataDirFlag = &cli.StringFlag{
		Name:        "db",
		Usage:       "Directory for the evaluation history database (optional, persistence off when empty)",
		Destination: &dataDir,
	}
)

func main() {
	app := &cli.App{
		Name:     name,
		Version:  fmt.Sprintf("%s - (commit: %s)", version, commit),
		Compiled: time.Now(),
		Usage:    "Trust and quality scoring for model, dataset and code artifacts",
		Flags: []cli.Flag{
			debugFlag,
			configFlag,
			dataDirFlag,
		},
		Commands: []*cli.Command{
			scoreCmd,
			batchCmd,
		},
		Before: func(c *cli.Context) error {
			level := slog.LevelInfo
			if c.Bool(debugFlag.Name) {
				level = slog.LevelDebug
			}
			appLogger = monitoring.NewLogger(level)
			slog.SetDefault(appLogger.Logger)
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// buildRunner assembles the scoring pipeline from configuration.
func buildRunner() (*runner.Runner, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	observer := monitoring.Observer{Logger: appLogger, Metrics: monitoring.NewMetrics()}

	judge := providers.NewJudgeClient(cfg.JudgeAPIKey, providers.WithJudgeObserver(observer))
	catalog := metrics.Catalog(judgeOrNil(judge), cfg.SizeCeilings)

	gatherer := gather.New(
		providers.NewGitHubClient(cfg.GitHubToken, providers.WithGitHubObserver(observer)),
		providers.NewHFClient(providers.WithHFObserver(observer)),
		slog.Default(),
	)

	r, err := runner.New(gatherer, catalog, cfg.MetricWeights(),
		runner.WithMetricTimeout(cfg.MetricTimeout),
		runner.WithBatchConcurrency(cfg.BatchConcurrency),
		runner.WithMetricsRecorder(observer.Metrics),
	)
	if err != nil {
		return nil, nil, err
	}
	return r, cfg, nil
}

// judgeOrNil keeps a typed-nil *JudgeClient from sneaking into the Judge
// interface value.
func judgeOrNil(j *providers.JudgeClient) metrics.Judge {
	if j == nil {
		return nil
	}
	return j
}

// openStore opens the history database when a data directory was given.
func openStore() (*store.Store, error) {
	if dataDir == "" {
		return nil, nil
	}
	return store.Open(dataDir)
}
