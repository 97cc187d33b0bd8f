package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"trustgate/internal/runner"
	"trustgate/internal/types"
)

var (
	modelURLFlag = &cli.StringFlag{
		Name:     "model",
		Usage:    "Model hub URL (required)",
		Required: true,
	}

	datasetURLFlag = &cli.StringFlag{
		Name:  "dataset",
		Usage: "Dataset hub URL (optional)",
	}

	codeURLFlag = &cli.StringFlag{
		Name:  "code",
		Usage: "Code repository URL (optional)",
	}

	revisionFlag = &cli.StringFlag{
		Name:  "revision",
		Usage: "Revision to pin metadata fetches to (optional, default: repository default)",
	}

	modeFlag = &cli.StringFlag{
		Name:  "mode",
		Usage: "Metric execution mode: sequential or concurrent (optional, default: concurrent)",
		Value: string(runner.ModeConcurrent),
	}

	scoreCmd = &cli.Command{
		Name:  "score",
		Usage: "Evaluate a single artifact and print its report",
		Flags: []cli.Flag{
			modelURLFlag,
			datasetURLFlag,
			codeURLFlag,
			revisionFlag,
			modeFlag,
		},
		Action: runScore,
	}
)

func parseMode(raw string) (runner.Mode, error) {
	switch runner.Mode(raw) {
	case runner.ModeSequential:
		return runner.ModeSequential, nil
	case runner.ModeConcurrent, "":
		return runner.ModeConcurrent, nil
	default:
		return "", fmt.Errorf("unknown mode %q, want sequential or concurrent", raw)
	}
}

func runScore(c *cli.Context) error {
	mode, err := parseMode(c.String(modeFlag.Name))
	if err != nil {
		return err
	}

	r, _, err := buildRunner()
	if err != nil {
		return err
	}

	ref := types.ArtifactReference{
		ModelURL:   c.String(modelURLFlag.Name),
		DatasetURL: c.String(datasetURLFlag.Name),
		CodeURL:    c.String(codeURLFlag.Name),
		Revision:   c.String(revisionFlag.Name),
	}

	start := time.Now()
	outcomes := r.RunBatch(c.Context, []types.ArtifactReference{ref}, mode)
	outcome := outcomes[0]
	if outcome.Report != nil {
		appLogger.EvaluationLogger(ref.ModelURL, outcome.Report.NetScore, outcome.Report.Admitted(), string(mode), time.Since(start))
	}

	if st, storeErr := openStore(); storeErr != nil {
		return storeErr
	} else if st != nil {
		defer st.Close()
		if _, err := st.SaveOutcome(c.Context, outcome); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(outcome); err != nil {
		return err
	}
	if outcome.Status == runner.StatusFailed {
		return fmt.Errorf("evaluation failed: %s", outcome.Error)
	}
	return nil
}
