package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"trustgate/internal/runner"
	"trustgate/internal/store"
	"trustgate/internal/types"
)

var batchCmd = &cli.Command{
	Name:      "batch",
	Usage:     "Evaluate a file of artifact references and print one outcome per line",
	ArgsUsage: "FILE",
	Flags: []cli.Flag{
		modeFlag,
	},
	Action: runBatch,
}

// parseBatchLine reads one "code_url,dataset_url,model_url" line. The first
// two fields may be empty; the model URL is mandatory.
func parseBatchLine(line string) (types.ArtifactReference, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 {
		return types.ArtifactReference{}, fmt.Errorf("want 3 comma-separated fields, got %d", len(fields))
	}
	ref := types.ArtifactReference{
		CodeURL:    strings.TrimSpace(fields[0]),
		DatasetURL: strings.TrimSpace(fields[1]),
		ModelURL:   strings.TrimSpace(fields[2]),
	}
	return ref, ref.Validate()
}

func readBatchFile(path string) ([]types.ArtifactReference, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var refs []types.ArtifactReference
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ref, err := parseBatchLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		refs = append(refs, ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

func runBatch(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("usage: %s batch FILE", name)
	}
	mode, err := parseMode(c.String(modeFlag.Name))
	if err != nil {
		return err
	}

	refs, err := readBatchFile(c.Args().First())
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("no references in %s", c.Args().First())
	}

	r, _, err := buildRunner()
	if err != nil {
		return err
	}

	var st *store.Store
	if st, err = openStore(); err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	start := time.Now()
	outcomes := r.RunBatch(c.Context, refs, mode)

	enc := json.NewEncoder(os.Stdout)
	completed, rejected, failed := 0, 0, 0
	for _, outcome := range outcomes {
		if st != nil {
			if _, err := st.SaveOutcome(c.Context, outcome); err != nil {
				return err
			}
		}
		if err := enc.Encode(outcome); err != nil {
			return err
		}
		switch outcome.Status {
		case runner.StatusCompleted:
			completed++
		case runner.StatusRejected:
			rejected++
		case runner.StatusFailed:
			failed++
		}
	}
	appLogger.BatchLogger(len(outcomes), completed, rejected, failed, time.Since(start))

	if failed > 0 {
		return fmt.Errorf("%d of %d evaluations failed (took %s)", failed, len(outcomes), time.Since(start).Round(time.Millisecond))
	}
	return nil
}
